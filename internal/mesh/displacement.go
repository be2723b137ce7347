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

// AverageDisplacement is the mean distance between current and rest
// position over the four corners of cell.
func AverageDisplacement(cell domain.Cell, vertices []domain.Vertex) float64 {
	var sum float64
	for _, id := range cell.Vertices {
		v := vertexAt(vertices, id)
		sum += math.Hypot(v.X-v.OriginalX, v.Y-v.OriginalY)
	}
	return sum / 4
}

// DisplacementColor maps average corner displacement to a grey level:
// floor(clamp(avg*scale*200, 0, 255)). Undisplaced cells are #000000 and more
// displacement renders lighter. scale is a sensitivity knob, not a unit.
func DisplacementColor(cell domain.Cell, vertices []domain.Vertex, scale float64) domain.Color {
	v := math.Floor(clampF(AverageDisplacement(cell, vertices)*scale*200, 0, 255))
	return domain.Gray(uint8(v))
}
