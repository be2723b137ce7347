/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package interact maps pointer input from an arbitrarily scaled on-screen
// surface into the internal canvas space and tracks the drag lifecycle of
// grid vertices and mask points.
package interact

import (
	"gridwarp/internal/domain"
	"gridwarp/internal/mesh"
)

// Viewport is the rectangle (client coordinates) the canvas is rendered into.
type Viewport struct {
	Left, Top     float64
	Width, Height float64
}

// Mapper converts between client and internal coordinates. X and Y scale
// independently, so a stretched presentation still maps correctly.
type Mapper struct {
	View      Viewport
	InternalW float64
	InternalH float64
}

// NewMapper returns a mapper for the editor's fixed internal canvas.
func NewMapper(view Viewport) Mapper {
	return Mapper{View: view, InternalW: mesh.Width, InternalH: mesh.Height}
}

// Scale returns internal units per client pixel along each axis. A surface
// that has not been laid out yet (zero size) maps 1:1.
func (m Mapper) Scale() (sx, sy float64) {
	sx, sy = 1, 1
	if m.View.Width > 0 {
		sx = m.InternalW / m.View.Width
	}
	if m.View.Height > 0 {
		sy = m.InternalH / m.View.Height
	}
	return sx, sy
}

// ToInternal maps a client position to internal coordinates, clamped to the canvas.
func (m Mapper) ToInternal(clientX, clientY float64) domain.Point {
	sx, sy := m.Scale()
	p := domain.Point{X: (clientX - m.View.Left) * sx, Y: (clientY - m.View.Top) * sy}
	return m.clamp(p)
}

// DeltaToInternal scales a client-space delta without clamping.
func (m Mapper) DeltaToInternal(dx, dy float64) (float64, float64) {
	sx, sy := m.Scale()
	return dx * sx, dy * sy
}

// ToClient maps an internal position back to client coordinates.
func (m Mapper) ToClient(p domain.Point) (x, y float64) {
	sx, sy := m.Scale()
	return m.View.Left + p.X/sx, m.View.Top + p.Y/sy
}

func (m Mapper) clamp(p domain.Point) domain.Point {
	if m.InternalW == mesh.Width && m.InternalH == mesh.Height {
		return mesh.Clamp(p)
	}
	return domain.Point{X: clamp(p.X, m.InternalW), Y: clamp(p.Y, m.InternalH)}
}

func clamp(v, hi float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
