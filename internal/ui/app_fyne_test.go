//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"io"
	"log/slog"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"

	"gridwarp/internal/domain"
	"gridwarp/internal/editor"
)

func newCanvas(t *testing.T) (*MeshCanvas, *meshCanvasRenderer) {
	t.Helper()
	test.NewTempApp(t)
	opts := editor.DefaultOptions()
	opts.Grid = domain.GridConfig{BaseCols: 2, BaseRows: 2}
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	mc := NewMeshCanvas(editor.New(opts), false)
	r, ok := mc.CreateRenderer().(*meshCanvasRenderer)
	if !ok {
		t.Fatalf("expected meshCanvasRenderer, got %T", mc.CreateRenderer())
	}
	mc.Resize(fyne.NewSize(1000, 600))
	r.Layout(fyne.NewSize(1000, 600))
	return mc, r
}

func TestMeshCanvas_LayoutLetterboxes(t *testing.T) {
	_, r := newCanvas(t)
	if got := r.img.Size(); !almostEqual(float64(got.Width), 800, 0.5) || !almostEqual(float64(got.Height), 600, 0.5) {
		t.Fatalf("image size got %v, want 800x600", got)
	}
	if got := r.img.Position(); !almostEqual(float64(got.X), 100, 0.5) {
		t.Fatalf("image x got %v, want 100", got.X)
	}
}

func TestMeshCanvas_DragMovesVertex(t *testing.T) {
	mc, _ := newCanvas(t)
	// Centre vertex of a 2x2 grid sits at internal (400,300), client (500,300).
	down := &desktop.MouseEvent{Button: desktop.MouseButtonPrimary}
	down.Position = fyne.NewPos(500, 300)
	mc.MouseDown(down)
	if !mc.ed.Dragging() {
		t.Fatalf("expected drag to start on the centre vertex")
	}
	mc.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(520, 310)}})
	mc.DragEnd()
	if mc.ed.Dragging() {
		t.Fatalf("drag should have ended")
	}
	st := mc.ed.State()
	v, ok := st.Vertex(4)
	if !ok || !almostEqual(v.X, 420, 1e-6) || !almostEqual(v.Y, 310, 1e-6) {
		t.Fatalf("vertex got %+v, want (420,310)", v.Pos())
	}
	if !mc.ed.CanUndo() {
		t.Fatalf("drag should be undoable")
	}
}

func TestMeshCanvas_ScrollZooms(t *testing.T) {
	mc, _ := newCanvas(t)
	mc.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: 1}})
	if z := mc.ed.Zoom(); !almostEqual(z, 1.1, 1e-9) {
		t.Fatalf("zoom got %v, want 1.1", z)
	}
	mc.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: -1}})
	if z := mc.ed.Zoom(); !almostEqual(z, 1.0, 1e-9) {
		t.Fatalf("zoom got %v, want 1", z)
	}
}

func TestWindowTitle(t *testing.T) {
	if got := windowTitle("", false); got != "untitled - gridwarp" {
		t.Fatalf("got %q", got)
	}
	if got := windowTitle("/tmp/a.json", true); got != "*a.json - gridwarp" {
		t.Fatalf("got %q", got)
	}
}

func TestMeshCanvas_MouseOutCommitsAtLastDragPosition(t *testing.T) {
	mc, _ := newCanvas(t)
	down := &desktop.MouseEvent{Button: desktop.MouseButtonPrimary}
	down.Position = fyne.NewPos(500, 300)
	mc.MouseDown(down)
	mc.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(530, 300)}})
	mc.MouseOut()
	if mc.ed.Dragging() {
		t.Fatalf("leaving the canvas should end the drag")
	}
	v, _ := mc.ed.State().Vertex(4)
	if !almostEqual(v.X, 430, 1e-6) || !almostEqual(v.Y, 300, 1e-6) {
		t.Fatalf("vertex got %+v, want (430,300)", v.Pos())
	}
	mc.DragEnd()
	mc.ed.Undo()
	if mc.ed.CanUndo() {
		t.Fatalf("late DragEnd should not commit again")
	}
}
