/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"gridwarp/internal/domain"
	"gridwarp/internal/interact"
)

// SetViewport tells the editor where the canvas is rendered on screen.
func (e *Editor) SetViewport(v interact.Viewport) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mapper = interact.NewMapper(v)
	e.drag.Mapper = e.mapper
}

// ToInternal maps a client position through the current viewport.
func (e *Editor) ToInternal(clientX, clientY float64) domain.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mapper.ToInternal(clientX, clientY)
}

// PointerDown dispatches a press to the active tool. A drag whose release
// was never delivered is committed first. Paint errors such as
// ErrOutsideMask are returned for the caller to report.
func (e *Editor) PointerDown(clientX, clientY float64, mods Mods) error {
	e.mu.Lock()
	settled := e.settleDragLocked()
	p := e.mapper.ToInternal(clientX, clientY)
	tool := e.tool
	if tool == ToolMove {
		t, ok := e.handleAtLocked(p)
		if ok {
			cur := e.hist.Current()
			start, found := handlePos(cur, t)
			if found {
				w := cur.Clone()
				e.working = &w
				e.drag.Begin(t, clientX, clientY, start)
				e.log.Debug("drag begin", "target", t.Kind.String(), "id", t.ID)
			}
		}
		e.mu.Unlock()
		e.notifyIf(settled)
		return nil
	}
	e.mu.Unlock()
	e.notifyIf(settled)

	switch tool {
	case ToolPaint, ToolErase:
		id, ok := e.CellAt(p)
		if !ok {
			return nil
		}
		if tool == ToolPaint {
			return e.PaintCell(id)
		}
		return e.EraseCell(id)
	case ToolPen:
		e.AddPenPoint(p)
	}
	return nil
}

// PointerMove updates the working copy while dragging.
func (e *Editor) PointerMove(clientX, clientY float64, mods Mods) {
	e.mu.Lock()
	u, ok := e.drag.Move(clientX, clientY, mods&ModAxisLock != 0)
	if ok {
		e.applyLocked(u)
	}
	e.mu.Unlock()
	if ok {
		e.notify()
	}
}

// PointerUp completes a drag and commits it to history.
func (e *Editor) PointerUp(clientX, clientY float64, mods Mods) {
	e.mu.Lock()
	u, ok := e.drag.End(clientX, clientY, mods&ModAxisLock != 0)
	e.finishLocked(u, ok)
}

// PointerLeave treats leaving the surface mid-drag as a release.
func (e *Editor) PointerLeave(clientX, clientY float64, mods Mods) {
	e.mu.Lock()
	u, ok := e.drag.Leave(clientX, clientY, mods&ModAxisLock != 0)
	e.finishLocked(u, ok)
}

// EndDrag commits a drag at its last position, for release events that carry
// no coordinates.
func (e *Editor) EndDrag() {
	e.mu.Lock()
	u, ok := e.drag.Finish()
	e.finishLocked(u, ok)
}

// finishLocked applies the final update, pushes the working copy and unlocks.
func (e *Editor) finishLocked(u interact.Update, ok bool) {
	if !ok {
		e.mu.Unlock()
		return
	}
	e.applyLocked(u)
	w := *e.working
	e.working = nil
	e.commit("drag", w)
	e.mu.Unlock()
	e.notify()
}

// settleDragLocked commits a drag still in progress at its last position so
// a following edit builds on it. It reports whether a commit happened.
func (e *Editor) settleDragLocked() bool {
	u, ok := e.drag.Finish()
	if !ok {
		return false
	}
	e.applyLocked(u)
	if e.working != nil {
		w := *e.working
		e.working = nil
		e.commit("drag", w)
	}
	return true
}

func (e *Editor) applyLocked(u interact.Update) {
	if e.working == nil {
		return
	}
	switch u.Target.Kind {
	case interact.TargetVertex:
		if i := vertexIndex(*e.working, u.Target.ID); i >= 0 {
			e.working.Vertices[i].X = u.Pos.X
			e.working.Vertices[i].Y = u.Pos.Y
		}
	case interact.TargetBoundary:
		if i := u.Target.ID; i >= 0 && i < len(e.working.Boundary) {
			e.working.Boundary[i] = u.Pos
		}
	}
}

func handlePos(st domain.EditorState, t interact.Target) (domain.Point, bool) {
	switch t.Kind {
	case interact.TargetVertex:
		if v, ok := st.Vertex(t.ID); ok {
			return v.Pos(), true
		}
	case interact.TargetBoundary:
		if t.ID >= 0 && t.ID < len(st.Boundary) {
			return st.Boundary[t.ID], true
		}
	}
	return domain.Point{}, false
}
