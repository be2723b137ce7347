/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package mesh is the geometry engine of the editor: grid rule parsing,
// subdivided grid generation and the geometric queries used for masking and
// displacement visualisation. All functions are pure and total; malformed
// numeric input degrades to a defined result instead of panicking.
package mesh

import "gridwarp/internal/domain"

// Internal canvas coordinate space. The grid is laid out inside the drawable
// rectangle inset by Margin on every side.
const (
	Width  = 800.0
	Height = 600.0
	Margin = 50.0
)

// MaxBase is the largest base count per axis; larger counts are clamped by
// GridConfig.Sanitized.
const MaxBase = domain.MaxBaseCount

// Drawable returns the origin and size of the grid area.
func Drawable() (x, y, w, h float64) {
	return Margin, Margin, Width - 2*Margin, Height - 2*Margin
}
