/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"

	"gridwarp/internal/domain"
	"gridwarp/internal/mesh"
)

// Render draws st into a new image of size (mesh.Width, mesh.Height)*Scale.
func Render(st domain.EditorState, o Options) image.Image {
	return draw(st, o).Image()
}

func draw(st domain.EditorState, o Options) *gg.Context {
	o = o.withDefaults()
	w := int(math.Round(mesh.Width * o.Scale))
	h := int(math.Round(mesh.Height * o.Scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dc := gg.NewContext(w, h)
	dc.SetColor(rgba(o.Background))
	dc.Clear()
	dc.Scale(o.Scale, o.Scale)

	// cells
	for _, c := range st.Cells {
		poly := mesh.CellPolygon(c, st.Vertices)
		tracePolygon(dc, poly)
		col, ok := cellColor(c, st, o)
		if !ok {
			col = o.Unfilled
		}
		dc.SetColor(rgba(col))
		dc.FillPreserve()
		dc.SetColor(rgba(o.GridColor))
		dc.SetLineWidth(o.LineWidth * o.Scale)
		dc.Stroke()
	}

	if o.LabelCells {
		dc.SetFontFace(labelFace(o.LabelSize))
		dc.SetColor(rgba(o.GridColor))
		for _, c := range st.Cells {
			ctr := mesh.CellCenter(c, st.Vertices)
			dc.DrawStringAnchored(strconv.Itoa(c.ID), ctr.X, ctr.Y, 0.5, 0.5)
		}
	}

	if o.IncludeMask && len(st.Boundary) > 0 {
		tracePolygon(dc, st.Boundary)
		dc.SetColor(rgba(o.MaskColor))
		dc.SetLineWidth(2 * o.LineWidth * o.Scale)
		dc.SetDash(6*o.Scale, 4*o.Scale)
		dc.Stroke()
		dc.SetDash()
		for i, p := range st.Boundary {
			r := 3.0
			if i+1 == o.Highlight {
				r = 5
			}
			dc.DrawCircle(p.X, p.Y, r)
			dc.Fill()
		}
	}

	if len(o.Pen) > 0 {
		dc.SetColor(rgba(o.MaskColor))
		dc.SetLineWidth(o.LineWidth * o.Scale)
		dc.MoveTo(o.Pen[0].X, o.Pen[0].Y)
		for _, p := range o.Pen[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.Stroke()
		for _, p := range o.Pen {
			dc.DrawCircle(p.X, p.Y, 2.5)
			dc.Fill()
		}
	}
	return dc
}

func tracePolygon(dc *gg.Context, pts []domain.Point) {
	if len(pts) == 0 {
		return
	}
	dc.NewSubPath()
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.ClosePath()
}

// labelFace returns the bitmap face for size <= 0, else Go Mono at size points.
func labelFace(size float64) font.Face {
	if size <= 0 {
		return basicfont.Face7x13
	}
	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return basicfont.Face7x13
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
}

func rgba(c domain.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// PNG renders st and writes it to path.
func PNG(path string, st domain.EditorState, o Options) error {
	if err := draw(st, o).SavePNG(path); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}
