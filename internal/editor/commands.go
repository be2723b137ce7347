/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"fmt"
	"math"

	"gridwarp/internal/domain"
	"gridwarp/internal/mesh"
)

// PaintCell fills a cell with the active colour. Painting a cell that
// already carries that colour clears it.
func (e *Editor) PaintCell(cellID int) error {
	e.mu.Lock()
	settled := e.settleDragLocked()
	cur := e.hist.Current()
	i := cellIndex(cur, cellID)
	if i < 0 {
		e.mu.Unlock()
		e.notifyIf(settled)
		return fmt.Errorf("paint %d: %w", cellID, ErrUnknownCell)
	}
	if !insideMask(cur, cur.Cells[i]) {
		e.mu.Unlock()
		e.notifyIf(settled)
		return fmt.Errorf("paint %d: %w", cellID, ErrOutsideMask)
	}
	next := cur.Clone()
	c := &next.Cells[i]
	if c.IsFilled && c.Color != nil && *c.Color == e.color {
		c.Clear()
	} else {
		c.Fill(e.color)
	}
	e.commit("paint", next)
	e.mu.Unlock()
	e.notify()
	return nil
}

// EraseCell clears a cell's paint. Erasing ignores the mask so paint left
// outside a newly drawn mask can still be removed.
func (e *Editor) EraseCell(cellID int) error {
	e.mu.Lock()
	settled := e.settleDragLocked()
	cur := e.hist.Current()
	i := cellIndex(cur, cellID)
	if i < 0 {
		e.mu.Unlock()
		e.notifyIf(settled)
		return fmt.Errorf("erase %d: %w", cellID, ErrUnknownCell)
	}
	if !cur.Cells[i].IsFilled {
		e.mu.Unlock()
		e.notifyIf(settled)
		return nil
	}
	next := cur.Clone()
	next.Cells[i].Clear()
	e.commit("erase", next)
	e.mu.Unlock()
	e.notify()
	return nil
}

// AddPenPoint appends a point to the mask being drawn.
func (e *Editor) AddPenPoint(p domain.Point) {
	e.mu.Lock()
	e.pen = append(e.pen, mesh.Clamp(p))
	e.mu.Unlock()
	e.notify()
}

// FinishPen commits the drawn points as the new mask. With fewer than three
// points nothing is committed and the points are kept for further drawing.
func (e *Editor) FinishPen() error {
	e.mu.Lock()
	settled := e.settleDragLocked()
	if len(e.pen) < 3 {
		n := len(e.pen)
		e.mu.Unlock()
		e.notifyIf(settled)
		return fmt.Errorf("finish mask with %d points: %w", n, ErrTooFewPoints)
	}
	next := e.hist.Current().Clone()
	next.Boundary = append([]domain.Point(nil), e.pen...)
	e.pen = nil
	e.commit("mask", next)
	e.mu.Unlock()
	e.notify()
	return nil
}

// CancelPen discards the points drawn so far.
func (e *Editor) CancelPen() {
	e.mu.Lock()
	had := len(e.pen) > 0
	e.pen = nil
	e.mu.Unlock()
	if had {
		e.notify()
	}
}

// ClearMask removes the mask polygon.
func (e *Editor) ClearMask() {
	e.mu.Lock()
	settled := e.settleDragLocked()
	cur := e.hist.Current()
	if !cur.HasMask() {
		e.mu.Unlock()
		e.notifyIf(settled)
		return
	}
	next := cur.Clone()
	next.Boundary = []domain.Point{}
	e.commit("clear-mask", next)
	e.mu.Unlock()
	e.notify()
}

// ResetVertices moves every vertex back to its rest position.
func (e *Editor) ResetVertices() {
	e.mu.Lock()
	settled := e.settleDragLocked()
	cur := e.hist.Current()
	next := cur.Clone()
	moved := false
	for i := range next.Vertices {
		v := &next.Vertices[i]
		if v.X != v.OriginalX || v.Y != v.OriginalY {
			v.X, v.Y = v.OriginalX, v.OriginalY
			moved = true
		}
	}
	if !moved {
		e.mu.Unlock()
		e.notifyIf(settled)
		return
	}
	e.commit("reset", next)
	e.mu.Unlock()
	e.notify()
}

// SetGridConfig regenerates the grid. Vertex edits and paint are lost; the
// mask is kept.
func (e *Editor) SetGridConfig(cfg domain.GridConfig) {
	e.mu.Lock()
	e.settleDragLocked()
	cur := e.hist.Current()
	next := mesh.Generate(cfg)
	next.Boundary = append([]domain.Point{}, cur.Boundary...)
	e.commit("regenerate", next)
	e.log.Info("grid regenerated", "cols", next.Config.BaseCols, "rows", next.Config.BaseRows,
		"rules", next.Config.Rules, "cells", len(next.Cells))
	e.mu.Unlock()
	e.notify()
}

// SetRules regenerates the grid with a new rule string.
func (e *Editor) SetRules(rules string) {
	cfg := e.State().Config
	cfg.Rules = rules
	e.SetGridConfig(cfg)
}

// SetBaseSize regenerates the grid with new base counts.
func (e *Editor) SetBaseSize(cols, rows int) {
	cfg := e.State().Config
	cfg.BaseCols, cfg.BaseRows = cols, rows
	e.SetGridConfig(cfg)
}

// Undo steps back in history. It is refused while a drag is in progress.
func (e *Editor) Undo() bool {
	e.mu.Lock()
	ok := !e.drag.Dragging() && e.hist.Undo()
	e.mu.Unlock()
	if ok {
		e.notify()
	}
	return ok
}

// Redo steps forward in history. It is refused while a drag is in progress.
func (e *Editor) Redo() bool {
	e.mu.Lock()
	ok := !e.drag.Dragging() && e.hist.Redo()
	e.mu.Unlock()
	if ok {
		e.notify()
	}
	return ok
}

// Load replaces the whole history with st, typically a document read from disk.
func (e *Editor) Load(st domain.EditorState) error {
	if err := st.CheckRefs(); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	e.mu.Lock()
	e.hist.Reset(st.Clone())
	e.working = nil
	e.drag.Finish()
	e.pen = nil
	e.log.Info("document loaded", "cells", len(st.Cells), "mask", len(st.Boundary))
	e.mu.Unlock()
	e.notify()
	return nil
}

func (e *Editor) SetTool(t Tool) {
	e.mu.Lock()
	if t != ToolPen {
		e.pen = nil
	}
	e.tool = t
	e.mu.Unlock()
	e.notify()
}

func (e *Editor) SetColor(c domain.Color) {
	e.mu.Lock()
	e.color = c
	e.mu.Unlock()
}

func (e *Editor) SetViewMode(v ViewMode) {
	e.mu.Lock()
	e.view = v
	e.mu.Unlock()
	e.notify()
}

// SetDisplacementScale sets the displacement colour gain. Negative and NaN
// values are treated as zero.
func (e *Editor) SetDisplacementScale(s float64) {
	if !(s > 0) {
		s = 0
	}
	e.mu.Lock()
	e.scale = s
	e.mu.Unlock()
	e.notify()
}

// SetBackground stores the reference of an uploaded background image.
func (e *Editor) SetBackground(ref string) {
	e.mu.Lock()
	e.background = ref
	e.mu.Unlock()
	e.notify()
}

func (e *Editor) Background() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.background
}

func (e *Editor) Zoom() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.zoom
}

// ZoomBy changes the zoom by step, clamped to the configured bounds.
func (e *Editor) ZoomBy(step float64) float64 {
	e.mu.Lock()
	z := e.zoom + step
	e.mu.Unlock()
	return e.SetZoom(z)
}

// SetZoom sets the zoom clamped to the configured bounds and returns the result.
func (e *Editor) SetZoom(z float64) float64 {
	if math.IsNaN(z) {
		z = 1
	}
	z = math.Max(e.opts.ZoomMin, math.Min(e.opts.ZoomMax, z))
	e.mu.Lock()
	e.zoom = z
	e.mu.Unlock()
	e.notify()
	return z
}

func (e *Editor) ResetZoom() { e.SetZoom(1) }
