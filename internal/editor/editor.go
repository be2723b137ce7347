/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor composes the mesh engine, the history store and the drag
// controller into the interactive editing model. The presentation layer
// feeds it pointer events and renders State().
package editor

import (
	"errors"
	"log/slog"
	"sync"

	"gridwarp/internal/domain"
	"gridwarp/internal/history"
	"gridwarp/internal/interact"
	gwlog "gridwarp/internal/log"
	"gridwarp/internal/mesh"
)

var (
	// ErrTooFewPoints is returned by FinishPen when fewer than three points were drawn.
	ErrTooFewPoints = errors.New("mask needs at least 3 points")
	// ErrOutsideMask is returned when painting a cell whose centre lies outside the mask.
	ErrOutsideMask = errors.New("cell is outside the mask")
	ErrUnknownCell = errors.New("unknown cell")
)

// Tool is the active pointer tool.
type Tool int

const (
	ToolMove Tool = iota
	ToolPaint
	ToolErase
	ToolPen
)

func (t Tool) String() string {
	switch t {
	case ToolMove:
		return "move"
	case ToolPaint:
		return "paint"
	case ToolErase:
		return "erase"
	case ToolPen:
		return "pen"
	}
	return "unknown"
}

// ParseTool maps a tool name back to its value.
func ParseTool(s string) (Tool, bool) {
	for _, t := range []Tool{ToolMove, ToolPaint, ToolErase, ToolPen} {
		if t.String() == s {
			return t, true
		}
	}
	return ToolMove, false
}

// ViewMode selects how cells are coloured.
type ViewMode int

const (
	ViewPaint ViewMode = iota
	ViewDisplacement
)

// Mods is the set of keyboard modifiers held during a pointer event.
type Mods uint8

const (
	// ModAxisLock constrains an active drag to one axis.
	ModAxisLock Mods = 1 << iota
)

// Options configures an Editor. Zero fields fall back to defaults.
type Options struct {
	Grid              domain.GridConfig
	Palette           []domain.Color
	DisplacementScale float64
	HistoryDepth      int
	ZoomMin, ZoomMax  float64
	// HandleRadius is the pick radius for vertices and mask points, in internal units.
	HandleRadius float64
	Logger       *slog.Logger
}

// DefaultPalette is used when Options.Palette is empty.
var DefaultPalette = []domain.Color{
	{R: 0xe6, G: 0x39, B: 0x46, A: 0xff},
	{R: 0xf4, G: 0xa2, B: 0x61, A: 0xff},
	{R: 0xe9, G: 0xc4, B: 0x6a, A: 0xff},
	{R: 0x2a, G: 0x9d, B: 0x8f, A: 0xff},
	{R: 0x26, G: 0x46, B: 0x53, A: 0xff},
	{R: 0x45, G: 0x7b, B: 0x9d, A: 0xff},
}

// DefaultOptions returns the built-in editor settings.
func DefaultOptions() Options {
	return Options{
		Grid:              domain.GridConfig{BaseCols: 10, BaseRows: 8},
		Palette:           append([]domain.Color(nil), DefaultPalette...),
		DisplacementScale: 0.05,
		HistoryDepth:      history.DefaultDepth,
		ZoomMin:           0.1,
		ZoomMax:           4,
		HandleRadius:      8,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Grid.BaseCols <= 0 && o.Grid.BaseRows <= 0 && o.Grid.Rules == "" {
		o.Grid = d.Grid
	}
	if len(o.Palette) == 0 {
		o.Palette = d.Palette
	}
	if o.DisplacementScale <= 0 {
		o.DisplacementScale = d.DisplacementScale
	}
	if o.HistoryDepth <= 0 {
		o.HistoryDepth = d.HistoryDepth
	}
	if o.ZoomMin <= 0 {
		o.ZoomMin = d.ZoomMin
	}
	if o.ZoomMax < o.ZoomMin {
		o.ZoomMax = d.ZoomMax
		if o.ZoomMax < o.ZoomMin {
			o.ZoomMax = o.ZoomMin
		}
	}
	if o.HandleRadius <= 0 {
		o.HandleRadius = d.HandleRadius
	}
	if o.Logger == nil {
		o.Logger = gwlog.WithComponent("editor")
	}
	return o
}

// Editor is the editing model. Documents live in the history store; the
// remaining fields are UI-only and never enter history.
type Editor struct {
	mu   sync.Mutex
	opts Options
	log  *slog.Logger

	hist    *history.Store[domain.EditorState]
	mapper  interact.Mapper
	drag    *interact.Controller
	working *domain.EditorState

	tool       Tool
	color      domain.Color
	view       ViewMode
	scale      float64
	zoom       float64
	pen        []domain.Point
	background string

	listeners []func()
}

// New returns an editor whose only snapshot is the grid generated from opts.Grid.
func New(opts Options) *Editor {
	opts = opts.withDefaults()
	m := interact.NewMapper(interact.Viewport{Width: mesh.Width, Height: mesh.Height})
	e := &Editor{
		opts:   opts,
		log:    opts.Logger,
		hist:   history.New(mesh.Generate(opts.Grid), history.Config{MaxDepth: opts.HistoryDepth}),
		mapper: m,
		drag:   interact.NewController(m),
		color:  opts.Palette[0],
		scale:  opts.DisplacementScale,
		zoom:   1,
	}
	st := e.hist.Current()
	e.log.Debug("editor ready", "cells", len(st.Cells), "vertices", len(st.Vertices))
	return e
}

// OnChange registers fn to run after every visible change.
func (e *Editor) OnChange(fn func()) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	e.listeners = append(e.listeners, fn)
	e.mu.Unlock()
}

func (e *Editor) notify() {
	e.mu.Lock()
	ls := append([]func(){}, e.listeners...)
	e.mu.Unlock()
	for _, fn := range ls {
		fn()
	}
}

func (e *Editor) notifyIf(changed bool) {
	if changed {
		e.notify()
	}
}

// commit pushes next as the new current snapshot.
func (e *Editor) commit(op string, next domain.EditorState) {
	e.hist.Push(next)
	n, idx := e.hist.Stats()
	e.log.Debug("commit", "op", op, "history", n, "index", idx)
}

// State returns the working copy while a drag is in progress, otherwise the
// current history snapshot. The result must be treated as read-only.
func (e *Editor) State() domain.EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Editor) stateLocked() domain.EditorState {
	if e.working != nil {
		return *e.working
	}
	return e.hist.Current()
}

func (e *Editor) Options() Options { return e.opts }

func (e *Editor) Tool() Tool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tool
}

func (e *Editor) Color() domain.Color {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.color
}

func (e *Editor) ViewMode() ViewMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

func (e *Editor) DisplacementScale() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scale
}

// Pen returns a copy of the points drawn so far with the pen tool.
func (e *Editor) Pen() []domain.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.Point(nil), e.pen...)
}

func (e *Editor) CanUndo() bool { return e.hist.CanUndo() }
func (e *Editor) CanRedo() bool { return e.hist.CanRedo() }

func (e *Editor) Dragging() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drag.Dragging()
}

// CellFill returns the colour a cell should be drawn with under the active
// view mode. In paint mode unfilled cells report false.
func (e *Editor) CellFill(cell domain.Cell) (domain.Color, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.view == ViewDisplacement {
		return mesh.DisplacementColor(cell, e.stateLocked().Vertices, e.scale), true
	}
	if cell.IsFilled && cell.Color != nil {
		return *cell.Color, true
	}
	return domain.Color{}, false
}

// Paintable reports whether the cell may be painted under the current mask.
func (e *Editor) Paintable(cellID int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.hist.Current()
	i := cellIndex(st, cellID)
	return i >= 0 && insideMask(st, st.Cells[i])
}

// CellAt returns the id of the topmost cell containing p.
func (e *Editor) CellAt(p domain.Point) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.stateLocked()
	i, ok := mesh.CellAt(p, st.Cells, st.Vertices)
	if !ok {
		return -1, false
	}
	return st.Cells[i].ID, true
}

// HandleAt returns the draggable handle under p. Mask points take precedence
// over vertices since they are drawn above the grid.
func (e *Editor) HandleAt(p domain.Point) (interact.Target, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handleAtLocked(p)
}

func (e *Editor) handleAtLocked(p domain.Point) (interact.Target, bool) {
	st := e.stateLocked()
	if i, ok := mesh.Nearest(p, st.Boundary, e.opts.HandleRadius); ok {
		return interact.Target{Kind: interact.TargetBoundary, ID: i}, true
	}
	if id, ok := mesh.NearestVertex(p, st.Vertices, e.opts.HandleRadius); ok {
		return interact.Target{Kind: interact.TargetVertex, ID: id}, true
	}
	return interact.Target{}, false
}

func cellIndex(st domain.EditorState, id int) int {
	if id >= 0 && id < len(st.Cells) && st.Cells[id].ID == id {
		return id
	}
	for i, c := range st.Cells {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func vertexIndex(st domain.EditorState, id int) int {
	if id >= 0 && id < len(st.Vertices) && st.Vertices[id].ID == id {
		return id
	}
	for i, v := range st.Vertices {
		if v.ID == id {
			return i
		}
	}
	return -1
}

func insideMask(st domain.EditorState, c domain.Cell) bool {
	if !st.HasMask() {
		return true
	}
	return mesh.PointInPolygon(mesh.CellCenter(c, st.Vertices), st.Boundary)
}
