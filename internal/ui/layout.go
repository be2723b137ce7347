/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gridwarp/internal/domain"
	"gridwarp/internal/editor"
	"gridwarp/internal/interact"
	"gridwarp/internal/mesh"
)

// fitRect places the internal canvas inside a w x h area, letterboxed to keep
// its aspect ratio, scaled by zoom and centred.
func fitRect(w, h, zoom float64) interact.Viewport {
	if !(zoom > 0) {
		zoom = 1
	}
	if w <= 0 || h <= 0 {
		return interact.Viewport{Width: mesh.Width * zoom, Height: mesh.Height * zoom}
	}
	fit := math.Min(w/mesh.Width, h/mesh.Height) * zoom
	vw, vh := mesh.Width*fit, mesh.Height*fit
	return interact.Viewport{Left: (w - vw) / 2, Top: (h - vh) / 2, Width: vw, Height: vh}
}

// renderScale picks the raster scale for a viewport so the image is drawn
// near its on-screen size, within [0.25, 3].
func renderScale(v interact.Viewport) float64 {
	s := v.Width / mesh.Width
	if !(s >= 0.25) {
		return 0.25
	}
	if s > 3 {
		return 3
	}
	return s
}

// statusText summarises the document for the status bar.
func statusText(st domain.EditorState, tool editor.Tool, zoom float64, dirty bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d x %d", st.Config.BaseCols, st.Config.BaseRows)
	if st.Config.Rules != "" {
		fmt.Fprintf(&b, " [%s]", st.Config.Rules)
	}
	fmt.Fprintf(&b, " | %d cells, %d filled", len(st.Cells), st.FilledCount())
	if st.HasMask() {
		fmt.Fprintf(&b, " | mask %d pts", len(st.Boundary))
	}
	fmt.Fprintf(&b, " | tool %s | zoom %d%%", tool, int(math.Round(zoom*100)))
	if dirty {
		b.WriteString(" | modified")
	}
	return b.String()
}

// parseCount reads a positive base count from an entry; bad input keeps def.
func parseCount(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	if n > mesh.MaxBase {
		return mesh.MaxBase
	}
	return n
}
