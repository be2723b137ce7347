/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the editor document model. The EditorState is the unit of
// undo/redo history and is serialized verbatim by the persistence layer.

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Point is a position in the internal canvas coordinate space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Color is an 8-bit RGBA color. Alpha is informational; exporters treat
// zero alpha on a set color as opaque.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Gray returns an opaque neutral color with R=G=B=v.
func Gray(v uint8) Color { return Color{R: v, G: v, B: v, A: 255} }

// Hex renders the color as #rrggbb.
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

func (c Color) String() string { return c.Hex() }

var errBadHex = errors.New("invalid hex color")

// ParseHex parses #rgb or #rrggbb (the leading # is optional, case-insensitive).
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return Color{}, fmt.Errorf("%w: %q", errBadHex, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", errBadHex, s)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// Vertex is a grid point. OriginalX/OriginalY is the rest position fixed at
// generation time; X/Y only change through drag commits or a reset.
type Vertex struct {
	ID        int     `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	OriginalX float64 `json:"originalX"`
	OriginalY float64 `json:"originalY"`
}

func (v Vertex) Pos() Point  { return Point{X: v.X, Y: v.Y} }
func (v Vertex) Rest() Point { return Point{X: v.OriginalX, Y: v.OriginalY} }

// Cell is a quadrilateral referencing four vertex ids ordered
// [topLeft, topRight, bottomRight, bottomLeft].
// IsFilled is the authoritative paint flag; Color is nil whenever IsFilled is false.
type Cell struct {
	ID       int    `json:"id"`
	Vertices [4]int `json:"vertices"`
	Color    *Color `json:"color"`
	IsFilled bool   `json:"isFilled"`
}

// Fill marks the cell painted with c.
func (c *Cell) Fill(col Color) {
	cc := col
	c.Color = &cc
	c.IsFilled = true
}

// Clear removes any paint from the cell.
func (c *Cell) Clear() {
	c.Color = nil
	c.IsFilled = false
}

// GridConfig is the compact description a grid topology is generated from.
type GridConfig struct {
	BaseCols int    `json:"baseCols"`
	BaseRows int    `json:"baseRows"`
	Rules    string `json:"rules"`
}

// MaxBaseCount bounds the logical divisions per axis.
const MaxBaseCount = 500

// Sanitized returns a copy with counts clamped to [1, MaxBaseCount].
func (g GridConfig) Sanitized() GridConfig {
	g.BaseCols = clampCount(g.BaseCols)
	g.BaseRows = clampCount(g.BaseRows)
	g.Rules = strings.TrimSpace(g.Rules)
	return g
}

func clampCount(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxBaseCount {
		return MaxBaseCount
	}
	return n
}

// EditorState is one immutable snapshot of the document. Callers must Clone
// before mutating a state obtained from history.
type EditorState struct {
	Vertices []Vertex   `json:"vertices"`
	Cells    []Cell     `json:"cells"`
	Boundary []Point    `json:"boundaryPoints"`
	Config   GridConfig `json:"gridConfig"`
}

// Clone returns a deep copy.
func (s EditorState) Clone() EditorState {
	out := EditorState{
		Vertices: append([]Vertex(nil), s.Vertices...),
		Cells:    make([]Cell, len(s.Cells)),
		Boundary: append([]Point(nil), s.Boundary...),
		Config:   s.Config,
	}
	for i, c := range s.Cells {
		if c.Color != nil {
			col := *c.Color
			c.Color = &col
		}
		out.Cells[i] = c
	}
	if out.Vertices == nil {
		out.Vertices = []Vertex{}
	}
	if out.Boundary == nil {
		out.Boundary = []Point{}
	}
	return out
}

// Vertex looks a vertex up by id. Ids equal generation indices, so this is
// a direct index with a fallback scan for documents edited by hand.
func (s EditorState) Vertex(id int) (Vertex, bool) {
	if id >= 0 && id < len(s.Vertices) && s.Vertices[id].ID == id {
		return s.Vertices[id], true
	}
	for _, v := range s.Vertices {
		if v.ID == id {
			return v, true
		}
	}
	return Vertex{}, false
}

// HasMask reports whether a boundary polygon restricts painting.
func (s EditorState) HasMask() bool { return len(s.Boundary) > 0 }

func (s EditorState) FilledCount() int {
	n := 0
	for _, c := range s.Cells {
		if c.IsFilled {
			n++
		}
	}
	return n
}

// CheckRefs verifies every cell references existing vertices.
func (s EditorState) CheckRefs() error {
	for _, c := range s.Cells {
		for _, id := range c.Vertices {
			if _, ok := s.Vertex(id); !ok {
				return fmt.Errorf("cell %d references missing vertex %d", c.ID, id)
			}
		}
	}
	return nil
}
