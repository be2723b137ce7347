/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mesh

import "gridwarp/internal/domain"

// Grid is the output of GenerateGrid. XStops/YStops are the physical strip
// boundaries along each axis (len = strips+1).
type Grid struct {
	Vertices []domain.Vertex
	Cells    []domain.Cell
	XStops   []float64
	YStops   []float64
}

// GenerateGrid lays out baseCols x baseRows logical divisions over the
// drawable rectangle. Logical division i of an axis is split into
// rules[i] equal physical strips, so subdivision never changes the width of
// the logical division itself. Counts are clamped like GridConfig.Sanitized.
func GenerateGrid(baseCols, baseRows int, rules Rules) Grid {
	cfg := domain.GridConfig{BaseCols: baseCols, BaseRows: baseRows}.Sanitized()
	baseCols, baseRows = cfg.BaseCols, cfg.BaseRows
	x0, y0, w, h := Drawable()
	xs := stops(x0, w, baseCols, rules.Col)
	ys := stops(y0, h, baseRows, rules.Row)

	stride := len(xs)
	verts := make([]domain.Vertex, 0, len(xs)*len(ys))
	for _, y := range ys {
		for _, x := range xs {
			verts = append(verts, domain.Vertex{ID: len(verts), X: x, Y: y, OriginalX: x, OriginalY: y})
		}
	}

	cells := make([]domain.Cell, 0, (len(xs)-1)*(len(ys)-1))
	for r := 0; r < len(ys)-1; r++ {
		for c := 0; c < len(xs)-1; c++ {
			tl := r*stride + c
			cells = append(cells, domain.Cell{
				ID:       len(cells),
				Vertices: [4]int{tl, tl + 1, tl + stride + 1, tl + stride},
			})
		}
	}
	return Grid{Vertices: verts, Cells: cells, XStops: xs, YStops: ys}
}

// stops expands base logical divisions of span into physical strip boundaries.
// Positions are computed from the division origin rather than accumulated so
// the last stop lands exactly on origin+span.
func stops(origin, span float64, base int, mult func(int) int) []float64 {
	unit := span / float64(base)
	out := make([]float64, 0, base+1)
	for i := 0; i < base; i++ {
		m := mult(i)
		start := origin + float64(i)*unit
		for k := 0; k < m; k++ {
			out = append(out, start+float64(k)*unit/float64(m))
		}
	}
	return append(out, origin+span)
}

// Generate builds a fresh EditorState from a grid configuration.
func Generate(cfg domain.GridConfig) domain.EditorState {
	cfg = cfg.Sanitized()
	g := GenerateGrid(cfg.BaseCols, cfg.BaseRows, ParseRules(cfg.Rules, cfg.BaseCols, cfg.BaseRows))
	return domain.EditorState{
		Vertices: g.Vertices,
		Cells:    g.Cells,
		Boundary: []domain.Point{},
		Config:   cfg,
	}
}
