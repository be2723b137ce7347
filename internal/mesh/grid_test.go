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
	"testing"

	"gridwarp/internal/domain"
)

func sumMultipliers(base int, mult func(int) int) int {
	s := 0
	for i := 0; i < base; i++ {
		s += mult(i)
	}
	return s
}

func TestGenerateGridCounts(t *testing.T) {
	cases := []struct {
		cols, rows int
		rule       string
	}{
		{1, 1, ""},
		{10, 14, ""},
		{10, 14, "C1:4,R3:2"},
		{3, 2, "C0:2,C2:3,R1:5"},
	}
	for _, c := range cases {
		rules := ParseRules(c.rule, c.cols, c.rows)
		g := GenerateGrid(c.cols, c.rows, rules)
		tx := sumMultipliers(c.cols, rules.Col) + 1
		ty := sumMultipliers(c.rows, rules.Row) + 1
		if len(g.Vertices) != tx*ty {
			t.Fatalf("%+v: vertices = %d, want %d", c, len(g.Vertices), tx*ty)
		}
		if len(g.Cells) != (tx-1)*(ty-1) {
			t.Fatalf("%+v: cells = %d, want %d", c, len(g.Cells), (tx-1)*(ty-1))
		}
		for _, cell := range g.Cells {
			for _, id := range cell.Vertices {
				if id < 0 || id >= len(g.Vertices) {
					t.Fatalf("%+v: cell %d references invalid vertex %d", c, cell.ID, id)
				}
			}
			if cell.IsFilled || cell.Color != nil {
				t.Fatalf("cells must start unfilled")
			}
		}
	}
}

func TestGenerateGridSpanPreserved(t *testing.T) {
	g := GenerateGrid(10, 14, ParseRules("C1:4,C9:3,R3:2", 10, 14))
	_, _, w, h := Drawable()
	var sw, sh float64
	for i := 1; i < len(g.XStops); i++ {
		sw += g.XStops[i] - g.XStops[i-1]
	}
	for i := 1; i < len(g.YStops); i++ {
		sh += g.YStops[i] - g.YStops[i-1]
	}
	if math.Abs(sw-w) > 1e-9 || math.Abs(sh-h) > 1e-9 {
		t.Fatalf("strip sums = (%v,%v), want (%v,%v)", sw, sh, w, h)
	}
	// logical column 1 keeps the uniform width even though it is split in four
	unit := w / 10
	if got := g.XStops[5] - g.XStops[1]; math.Abs(got-unit) > 1e-9 {
		t.Fatalf("subdivided column width = %v, want %v", got, unit)
	}
}

func TestGenerateGridLayoutAndWinding(t *testing.T) {
	g := GenerateGrid(2, 1, NewRules())
	if len(g.Vertices) != 6 || len(g.Cells) != 2 {
		t.Fatalf("unexpected sizes: %d vertices, %d cells", len(g.Vertices), len(g.Cells))
	}
	for i, v := range g.Vertices {
		if v.ID != i {
			t.Fatalf("vertex %d has id %d", i, v.ID)
		}
		if v.X != v.OriginalX || v.Y != v.OriginalY {
			t.Fatalf("vertex %d rest position differs from position", i)
		}
	}
	first := g.Vertices[0]
	if first.X != Margin || first.Y != Margin {
		t.Fatalf("first vertex at (%v,%v), want margin", first.X, first.Y)
	}
	if want := [4]int{0, 1, 4, 3}; g.Cells[0].Vertices != want {
		t.Fatalf("cell 0 corners = %v, want %v", g.Cells[0].Vertices, want)
	}
	tl := g.Vertices[g.Cells[1].Vertices[0]]
	br := g.Vertices[g.Cells[1].Vertices[2]]
	if !(tl.X < br.X && tl.Y < br.Y) {
		t.Fatalf("winding order broken: tl=%+v br=%+v", tl, br)
	}
}

func TestGenerateGridSanitizesCounts(t *testing.T) {
	g := GenerateGrid(0, -5, NewRules())
	if len(g.Vertices) != 4 || len(g.Cells) != 1 {
		t.Fatalf("expected single cell grid, got %d vertices %d cells", len(g.Vertices), len(g.Cells))
	}
	g = GenerateGrid(MaxBase+50, 1, NewRules())
	if len(g.XStops) != MaxBase+1 {
		t.Fatalf("expected columns clamped to %d, got %d stops", MaxBase, len(g.XStops))
	}
}

func TestGenerateConfigMatchesTopology(t *testing.T) {
	s := Generate(domain.GridConfig{BaseCols: MaxBase + 100, BaseRows: 1, Rules: "C0:150"})
	if s.Config.BaseCols != MaxBase {
		t.Fatalf("stored BaseCols = %d, want %d", s.Config.BaseCols, MaxBase)
	}
	// (cols - 1 + 150 + 1) x 2 vertices
	if want := (MaxBase + 150) * 2; len(s.Vertices) != want {
		t.Fatalf("vertices = %d, want %d", len(s.Vertices), want)
	}
	again := Generate(s.Config)
	if len(again.Vertices) != len(s.Vertices) || len(again.Cells) != len(s.Cells) {
		t.Fatalf("regenerating from the stored config changed the topology")
	}
}

func TestGenerateFromConfig(t *testing.T) {
	s := Generate(domain.GridConfig{BaseCols: 0, BaseRows: 2, Rules: "R1:3"})
	if s.Config.BaseCols != 1 {
		t.Fatalf("config not sanitized: %+v", s.Config)
	}
	if len(s.Cells) != 4 {
		t.Fatalf("cells = %d, want 4", len(s.Cells))
	}
	if s.Boundary == nil || len(s.Boundary) != 0 {
		t.Fatalf("expected empty non-nil boundary")
	}
	if err := s.CheckRefs(); err != nil {
		t.Fatalf("CheckRefs: %v", err)
	}
}
