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
)

func TestDisplacementColorAtRestIsBlack(t *testing.T) {
	cell, verts := quad()
	if got := DisplacementColor(cell, verts, 1).Hex(); got != "#000000" {
		t.Fatalf("DisplacementColor at rest = %s, want #000000", got)
	}
}

func TestDisplacementColorFormula(t *testing.T) {
	cell, verts := quad()
	// move one corner by 0.5 -> average 0.125 -> 0.125*1*200 = 25
	verts[cell.Vertices[0]].X += 0.5
	c := DisplacementColor(cell, verts, 1)
	if c.R != 25 || c.G != 25 || c.B != 25 {
		t.Fatalf("color = %+v, want grey 25", c)
	}
	if AverageDisplacement(cell, verts) != 0.125 {
		t.Fatalf("average = %v", AverageDisplacement(cell, verts))
	}
}

func TestDisplacementColorMonotonicAndClamped(t *testing.T) {
	cell, verts := quad()
	prev := -1
	for step := 0; step < 40; step++ {
		verts[cell.Vertices[1]].Y = verts[cell.Vertices[1]].OriginalY + float64(step)*0.1
		v := int(DisplacementColor(cell, verts, 0.8).R)
		if v < prev {
			t.Fatalf("step %d: value %d decreased from %d", step, v, prev)
		}
		prev = v
	}
	verts[cell.Vertices[1]].Y += 1000
	if got := DisplacementColor(cell, verts, 1).R; got != 255 {
		t.Fatalf("expected clamp to 255, got %d", got)
	}
	if got := DisplacementColor(cell, verts, -3).R; got != 0 {
		t.Fatalf("negative scale should clamp to 0, got %d", got)
	}
	if got := DisplacementColor(cell, verts, math.NaN()).R; got != 0 {
		t.Fatalf("NaN scale should clamp to 0, got %d", got)
	}
}
