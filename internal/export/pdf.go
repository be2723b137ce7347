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
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"gridwarp/internal/domain"
	"gridwarp/internal/mesh"
	"gridwarp/internal/version"
)

// PDF writes st as a single page whose size in points equals the internal
// canvas, so document coordinates map 1:1.
func PDF(path string, st domain.EditorState, o Options) error {
	o = o.withDefaults()
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: mesh.Width, Ht: mesh.Height},
	})
	pdf.SetTitle("gridwarp mesh", false)
	pdf.SetCreator("gridwarp "+version.String(), false)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	setFillColor(pdf, o.Background)
	pdf.Rect(0, 0, mesh.Width, mesh.Height, "F")

	setDrawColor(pdf, o.GridColor)
	pdf.SetLineWidth(o.LineWidth)
	for _, c := range st.Cells {
		col, ok := cellColor(c, st, o)
		if !ok {
			col = o.Unfilled
		}
		setFillColor(pdf, col)
		pdf.Polygon(toPDFPoints(mesh.CellPolygon(c, st.Vertices)), "FD")
	}

	if o.LabelCells {
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(int(o.GridColor.R), int(o.GridColor.G), int(o.GridColor.B))
		for _, c := range st.Cells {
			ctr := mesh.CellCenter(c, st.Vertices)
			s := strconv.Itoa(c.ID)
			pdf.Text(ctr.X-pdf.GetStringWidth(s)/2, ctr.Y+3, s)
		}
	}

	if o.IncludeMask && len(st.Boundary) > 0 {
		setDrawColor(pdf, o.MaskColor)
		pdf.SetLineWidth(2 * o.LineWidth)
		pdf.SetDashPattern([]float64{6, 4}, 0)
		pdf.Polygon(toPDFPoints(st.Boundary), "D")
		pdf.SetDashPattern([]float64{}, 0)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func toPDFPoints(pts []domain.Point) []gofpdf.PointType {
	out := make([]gofpdf.PointType, len(pts))
	for i, p := range pts {
		out[i] = gofpdf.PointType{X: p.X, Y: p.Y}
	}
	return out
}

func setDrawColor(pdf *gofpdf.Fpdf, c domain.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c domain.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
