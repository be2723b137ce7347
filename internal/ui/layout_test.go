/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"math"
	"strings"
	"testing"

	"gridwarp/internal/domain"
	"gridwarp/internal/editor"
	"gridwarp/internal/mesh"
)

func almostEqual(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestFitRect_Letterbox(t *testing.T) {
	// Wider than 4:3: bars left and right.
	v := fitRect(1000, 600, 1)
	if !almostEqual(v.Width, 800, 1e-9) || !almostEqual(v.Height, 600, 1e-9) {
		t.Fatalf("size got %vx%v, want 800x600", v.Width, v.Height)
	}
	if !almostEqual(v.Left, 100, 1e-9) || v.Top != 0 {
		t.Fatalf("origin got (%v,%v), want (100,0)", v.Left, v.Top)
	}

	// Taller: bars top and bottom, half size.
	v = fitRect(400, 600, 1)
	if !almostEqual(v.Width, 400, 1e-9) || !almostEqual(v.Height, 300, 1e-9) || !almostEqual(v.Top, 150, 1e-9) {
		t.Fatalf("got %+v", v)
	}
}

func TestFitRect_ZoomCentres(t *testing.T) {
	v := fitRect(800, 600, 0.5)
	if !almostEqual(v.Width, 400, 1e-9) || !almostEqual(v.Left, 200, 1e-9) || !almostEqual(v.Top, 150, 1e-9) {
		t.Fatalf("got %+v", v)
	}
	v = fitRect(800, 600, 2)
	if !almostEqual(v.Left, -400, 1e-9) || !almostEqual(v.Top, -300, 1e-9) {
		t.Fatalf("zoomed origin got (%v,%v)", v.Left, v.Top)
	}
}

func TestFitRect_Degenerate(t *testing.T) {
	v := fitRect(0, 0, 0)
	if v.Width != mesh.Width || v.Height != mesh.Height {
		t.Fatalf("got %+v", v)
	}
}

func TestRenderScale(t *testing.T) {
	if s := renderScale(fitRect(1600, 1200, 1)); !almostEqual(s, 2, 1e-9) {
		t.Fatalf("got %v, want 2", s)
	}
	if s := renderScale(fitRect(800, 600, 0.1)); s != 0.25 {
		t.Fatalf("got %v, want lower bound 0.25", s)
	}
	if s := renderScale(fitRect(800, 600, 4)); s != 3 {
		t.Fatalf("got %v, want upper bound 3", s)
	}
}

func TestStatusText(t *testing.T) {
	st := mesh.Generate(domain.GridConfig{BaseCols: 2, BaseRows: 2, Rules: "C0:2"})
	s := statusText(st, editor.ToolPaint, 1.5, true)
	for _, want := range []string{"2 x 2", "[C0:2]", "6 cells", "0 filled", "tool paint", "zoom 150%", "modified"} {
		if !strings.Contains(s, want) {
			t.Fatalf("status %q missing %q", s, want)
		}
	}
	if strings.Contains(s, "mask") {
		t.Fatalf("status %q mentions a mask", s)
	}
}

func TestParseCount(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"12", 12}, {" 3 ", 3}, {"0", 7}, {"x", 7}, {"100000", mesh.MaxBase},
	}
	for _, c := range cases {
		if got := parseCount(c.in, 7); got != c.want {
			t.Fatalf("parseCount(%q) got %d, want %d", c.in, got, c.want)
		}
	}
}
