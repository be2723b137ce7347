/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gridwarp/internal/domain"
	"gridwarp/internal/mesh"
)

// SVG writes st as an SVG document. The viewBox is the internal canvas; the
// width/height attributes apply Scale.
func SVG(path string, st domain.EditorState, o Options) error {
	data, err := encodeSVG(st, o)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func encodeSVG(st domain.EditorState, o Options) ([]byte, error) {
	o = o.withDefaults()
	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	pxW := int(math.Round(mesh.Width * o.Scale))
	pxH := int(math.Round(mesh.Height * o.Scale))
	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%dpx\" height=\"%dpx\" viewBox=\"0 0 %g %g\">\n", pxW, pxH, mesh.Width, mesh.Height)
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", mesh.Width, mesh.Height, o.Background.Hex())

	wf("  <g id=\"cells\" stroke=\"%s\" stroke-width=\"%g\">\n", o.GridColor.Hex(), o.LineWidth)
	for _, c := range st.Cells {
		col, ok := cellColor(c, st, o)
		if !ok {
			col = o.Unfilled
		}
		wf("    <polygon data-cell=\"%d\" points=\"%s\" fill=\"%s\"/>\n", c.ID, svgPoints(mesh.CellPolygon(c, st.Vertices)), col.Hex())
	}
	wf("  </g>\n")

	if o.LabelCells {
		wf("  <g id=\"labels\" font-family=\"monospace\" font-size=\"11\" text-anchor=\"middle\" dominant-baseline=\"middle\" fill=\"%s\">\n", o.GridColor.Hex())
		for _, c := range st.Cells {
			ctr := mesh.CellCenter(c, st.Vertices)
			wf("    <text x=\"%g\" y=\"%g\">%d</text>\n", round2(ctr.X), round2(ctr.Y), c.ID)
		}
		wf("  </g>\n")
	}

	if o.IncludeMask && len(st.Boundary) > 0 {
		wf("  <polygon id=\"mask\" points=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"%g\" stroke-dasharray=\"6 4\"/>\n",
			svgPoints(st.Boundary), o.MaskColor.Hex(), 2*o.LineWidth)
	}
	wf("</svg>\n")
	if werr != nil {
		return nil, fmt.Errorf("encode svg: %w", werr)
	}
	return buf.Bytes(), nil
}

func svgPoints(pts []domain.Point) string {
	var b bytes.Buffer
	for i, p := range pts {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%g,%g", round2(p.X), round2(p.Y))
	}
	return b.String()
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
