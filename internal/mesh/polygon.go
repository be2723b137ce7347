/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mesh

import (
	"math"

	"gridwarp/internal/domain"
)

// PointInPolygon reports whether p lies inside poly using the crossing-number
// rule. The polygon is closed implicitly. Fewer than three points never
// contain anything. Points exactly on an edge get whatever the crossing test
// yields; no special handling is applied.
func PointInPolygon(p domain.Point, poly []domain.Point) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// vertexAt resolves a vertex id against a row-major vertex slice. Unknown ids
// resolve to the zero vertex so callers never index out of range.
func vertexAt(vertices []domain.Vertex, id int) domain.Vertex {
	if id >= 0 && id < len(vertices) && vertices[id].ID == id {
		return vertices[id]
	}
	for _, v := range vertices {
		if v.ID == id {
			return v
		}
	}
	return domain.Vertex{}
}

// CellPolygon returns the current corner positions in winding order.
func CellPolygon(cell domain.Cell, vertices []domain.Vertex) []domain.Point {
	out := make([]domain.Point, 4)
	for i, id := range cell.Vertices {
		out[i] = vertexAt(vertices, id).Pos()
	}
	return out
}

// CellCenter is the mean of the four current corner positions.
func CellCenter(cell domain.Cell, vertices []domain.Vertex) domain.Point {
	var c domain.Point
	for _, id := range cell.Vertices {
		v := vertexAt(vertices, id)
		c.X += v.X
		c.Y += v.Y
	}
	return domain.Point{X: c.X / 4, Y: c.Y / 4}
}

// CellAt returns the index of the topmost (last) cell whose current quad contains p.
func CellAt(p domain.Point, cells []domain.Cell, vertices []domain.Vertex) (int, bool) {
	for i := len(cells) - 1; i >= 0; i-- {
		if PointInPolygon(p, CellPolygon(cells[i], vertices)) {
			return i, true
		}
	}
	return -1, false
}

// Nearest returns the index of the point closest to p within radius.
func Nearest(p domain.Point, pts []domain.Point, radius float64) (int, bool) {
	best, bestD := -1, math.Inf(1)
	for i, q := range pts {
		d := math.Hypot(q.X-p.X, q.Y-p.Y)
		if d <= radius && d < bestD {
			best, bestD = i, d
		}
	}
	return best, best >= 0
}

// NearestVertex is Nearest over current vertex positions; it returns the vertex id.
func NearestVertex(p domain.Point, vertices []domain.Vertex, radius float64) (int, bool) {
	pts := make([]domain.Point, len(vertices))
	for i, v := range vertices {
		pts[i] = v.Pos()
	}
	i, ok := Nearest(p, pts, radius)
	if !ok {
		return -1, false
	}
	return vertices[i].ID, true
}

// Clamp limits p to the internal canvas bounds. NaN coordinates collapse to 0.
func Clamp(p domain.Point) domain.Point {
	return domain.Point{X: clampF(p.X, 0, Width), Y: clampF(p.Y, 0, Height)}
}

func clampF(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v):
		return lo
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
