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
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"gridwarp/internal/config"
	"gridwarp/internal/crash"
	"gridwarp/internal/domain"
	"gridwarp/internal/editor"
	"gridwarp/internal/export"
	"gridwarp/internal/interact"
	gwlog "gridwarp/internal/log"
	"gridwarp/internal/mesh"
	"gridwarp/internal/storage"
	"gridwarp/internal/telemetry"
	"gridwarp/internal/version"
)

// Run opens the desktop mesh editor. An empty path starts a new document
// from the configured grid.
func Run(path string, cfg config.AppConfig) error {
	l := gwlog.WithComponent("ui")
	ed := editor.New(cfg.EditorOptions(l))
	docPath := path

	defer crash.Recover(path, func() *domain.EditorState { s := ed.State(); return &s })

	if path != "" {
		st, recovered, err := storage.Open(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err == nil {
			if err := ed.Load(st); err != nil {
				return err
			}
			if recovered {
				l.Warn("document restored from backup", slog.String("path", path))
			}
		}
	}
	l.Info("starting UI", slog.String("doc", docPath))

	fyneApp := app.NewWithID("gridwarp")
	w := fyneApp.NewWindow(windowTitle(docPath, false))
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	mc := NewMeshCanvas(ed, cfg.Export.LabelCells)
	// saved is the encoding of the last saved or loaded state.
	var saved []byte
	markClean := func() { saved, _ = storage.Encode(ed.State()) }
	dirty := func() bool {
		cur, err := storage.Encode(ed.State())
		return err != nil || !bytes.Equal(cur, saved)
	}
	markClean()

	refreshStatus := func() {
		d := dirty()
		status.SetText(statusText(ed.State(), ed.Tool(), ed.Zoom(), d))
		w.SetTitle(windowTitle(docPath, d))
	}
	mc.OnError = func(err error) { status.SetText(err.Error()) }

	var undoBtn, redoBtn *widget.Button
	syncButtons := func() {
		if undoBtn == nil {
			return
		}
		if ed.CanUndo() {
			undoBtn.Enable()
		} else {
			undoBtn.Disable()
		}
		if ed.CanRedo() {
			redoBtn.Enable()
		} else {
			redoBtn.Disable()
		}
	}
	ed.OnChange(func() {
		fyne.Do(func() {
			mc.Refresh()
			syncButtons()
			refreshStatus()
		})
	})

	// Grid controls
	st0 := ed.State()
	colsEntry := widget.NewEntry()
	colsEntry.SetText(fmt.Sprint(st0.Config.BaseCols))
	rowsEntry := widget.NewEntry()
	rowsEntry.SetText(fmt.Sprint(st0.Config.BaseRows))
	rulesEntry := widget.NewEntry()
	rulesEntry.SetPlaceHolder("C0:2,R1:3")
	rulesEntry.SetText(st0.Config.Rules)
	applyGrid := func() {
		cur := ed.State().Config
		gc := domain.GridConfig{
			BaseCols: parseCount(colsEntry.Text, cur.BaseCols),
			BaseRows: parseCount(rowsEntry.Text, cur.BaseRows),
		}
		gc.Rules = mesh.ParseRules(rulesEntry.Text, gc.BaseCols, gc.BaseRows).String()
		colsEntry.SetText(fmt.Sprint(gc.BaseCols))
		rowsEntry.SetText(fmt.Sprint(gc.BaseRows))
		rulesEntry.SetText(gc.Rules)
		ed.SetGridConfig(gc)
	}
	rulesEntry.OnSubmitted = func(string) { applyGrid() }
	gridForm := widget.NewForm(
		widget.NewFormItem("Columns", colsEntry),
		widget.NewFormItem("Rows", rowsEntry),
		widget.NewFormItem("Rules", rulesEntry),
	)
	applyGridBtn := widget.NewButton("Regenerate", applyGrid)

	// Tools
	toolNames := []string{}
	for _, t := range []editor.Tool{editor.ToolMove, editor.ToolPaint, editor.ToolErase, editor.ToolPen} {
		toolNames = append(toolNames, t.String())
	}
	toolGroup := widget.NewRadioGroup(toolNames, func(s string) {
		if t, ok := editor.ParseTool(s); ok {
			ed.SetTool(t)
		}
	})
	toolGroup.Horizontal = true
	toolGroup.SetSelected(ed.Tool().String())

	// Palette
	swatch := canvas.NewRectangle(rgba(ed.Color()))
	swatch.SetMinSize(fyne.NewSize(48, 24))
	paletteBox := container.NewGridWithColumns(3)
	for _, c := range ed.Options().Palette {
		c := c
		paletteBox.Add(widget.NewButton(c.Hex(), func() {
			ed.SetColor(c)
			swatch.FillColor = rgba(c)
			swatch.Refresh()
			if ed.Tool() != editor.ToolPaint {
				toolGroup.SetSelected(editor.ToolPaint.String())
			}
		}))
	}

	// Displacement view
	scaleLabel := widget.NewLabel(fmt.Sprintf("Scale %.3f", ed.DisplacementScale()))
	scaleSlider := widget.NewSlider(0.005, 0.5)
	scaleSlider.Step = 0.005
	scaleSlider.SetValue(ed.DisplacementScale())
	scaleSlider.OnChanged = func(v float64) {
		ed.SetDisplacementScale(v)
		scaleLabel.SetText(fmt.Sprintf("Scale %.3f", v))
	}
	viewCheck := widget.NewCheck("Displacement view", func(on bool) {
		if on {
			ed.SetViewMode(editor.ViewDisplacement)
		} else {
			ed.SetViewMode(editor.ViewPaint)
		}
	})

	// Mask
	finishPenBtn := widget.NewButton("Finish mask", func() {
		if err := ed.FinishPen(); err != nil {
			status.SetText(err.Error())
		}
	})
	cancelPenBtn := widget.NewButton("Cancel pen", ed.CancelPen)
	clearMaskBtn := widget.NewButton("Clear mask", ed.ClearMask)
	resetBtn := widget.NewButton("Reset vertices", ed.ResetVertices)

	undo := func() {
		if !ed.Undo() {
			status.SetText("Nothing to undo")
		}
	}
	redo := func() {
		if !ed.Redo() {
			status.SetText("Nothing to redo")
		}
	}
	undoBtn = widget.NewButton("Undo", undo)
	redoBtn = widget.NewButton("Redo", redo)
	syncButtons()

	zoomChanged := func() { refreshStatus(); mc.Refresh() }
	zoomOut := widget.NewButton("-", func() { ed.ZoomBy(-0.1); zoomChanged() })
	zoomIn := widget.NewButton("+", func() { ed.ZoomBy(0.1); zoomChanged() })
	zoomReset := widget.NewButton("100%", func() { ed.ResetZoom(); zoomChanged() })

	side := container.NewVBox(
		widget.NewLabelWithStyle("Grid", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		gridForm, applyGridBtn,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Tool", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		toolGroup,
		container.NewHBox(widget.NewLabel("Colour"), swatch),
		paletteBox,
		widget.NewSeparator(),
		viewCheck, scaleLabel, scaleSlider,
		widget.NewSeparator(),
		container.NewGridWithColumns(2, finishPenBtn, cancelPenBtn),
		clearMaskBtn, resetBtn,
		widget.NewSeparator(),
		container.NewGridWithColumns(2, undoBtn, redoBtn),
		container.NewHBox(widget.NewLabel("Zoom"), zoomOut, zoomReset, zoomIn),
	)

	// File actions
	saveTo := func(p string) {
		ctx := gwlog.WithDocument(context.Background(), p)
		if err := storage.Save(p, ed.State()); err != nil {
			l.ErrorContext(ctx, "save failed", slog.Any("err", err))
			dialog.ShowError(err, w)
			return
		}
		docPath = p
		markClean()
		refreshStatus()
		l.InfoContext(ctx, "document saved")
	}
	saveAs := func() {
		d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			p := uc.URI().Path()
			_ = uc.Close()
			if !strings.EqualFold(filepath.Ext(p), ".json") {
				p += ".json"
			}
			saveTo(p)
		}, w)
		d.SetFileName("mesh.json")
		d.SetFilter(fstorage.NewExtensionFileFilter([]string{".json"}))
		d.Show()
	}
	save := func() {
		if docPath == "" {
			saveAs()
			return
		}
		saveTo(docPath)
	}
	openDoc := func() {
		d := dialog.NewFileOpen(func(uc fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			p := uc.URI().Path()
			_ = uc.Close()
			st, recovered, err := storage.Open(p)
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if err := ed.Load(st); err != nil {
				dialog.ShowError(err, w)
				return
			}
			docPath = p
			markClean()
			colsEntry.SetText(fmt.Sprint(st.Config.BaseCols))
			rowsEntry.SetText(fmt.Sprint(st.Config.BaseRows))
			rulesEntry.SetText(st.Config.Rules)
			refreshStatus()
			if recovered {
				dialog.ShowInformation("Open", "The document was damaged and has been restored from its latest backup.", w)
			}
		}, w)
		d.SetFilter(fstorage.NewExtensionFileFilter([]string{".json"}))
		d.Show()
	}
	newDoc := func() {
		start := func() {
			gc := domain.GridConfig{BaseCols: cfg.Editor.Grid.Cols, BaseRows: cfg.Editor.Grid.Rows, Rules: cfg.Editor.Grid.Rules}
			if err := ed.Load(mesh.Generate(gc)); err != nil {
				dialog.ShowError(err, w)
				return
			}
			docPath = ""
			markClean()
			refreshStatus()
		}
		if !dirty() {
			start()
			return
		}
		dialog.ShowConfirm("New document", "Discard unsaved changes?", func(ok bool) {
			if ok {
				start()
			}
		}, w)
	}
	exportDoc := func() {
		d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			p := uc.URI().Path()
			_ = uc.Close()
			opts := export.Options{
				Scale:             cfg.Export.PNGScale,
				Displacement:      ed.ViewMode() == editor.ViewDisplacement,
				DisplacementScale: ed.DisplacementScale(),
				LabelCells:        cfg.Export.LabelCells,
				IncludeMask:       cfg.Export.IncludeMask,
			}
			if err := export.ByExtension(gwlog.WithDocument(context.Background(), docPath), p, ed.State(), opts); err != nil {
				dialog.ShowError(err, w)
				return
			}
			telemetry.Event("export", map[string]any{"format": strings.TrimPrefix(filepath.Ext(p), "."), "source": "ui"})
			status.SetText("Exported " + p)
		}, w)
		d.SetFileName("mesh.png")
		d.SetFilter(fstorage.NewExtensionFileFilter([]string{".png", ".svg", ".pdf", ".json", ".sqlite", ".db"}))
		d.Show()
	}

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New", newDoc),
		fyne.NewMenuItem("Open…", openDoc),
		fyne.NewMenuItem("Save", save),
		fyne.NewMenuItem("Save As…", saveAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export…", exportDoc),
	)
	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", undo),
		fyne.NewMenuItem("Redo", redo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Reset vertices", ed.ResetVertices),
		fyne.NewMenuItem("Clear mask", ed.ClearMask),
	)
	helpMenu := fyne.NewMenu("Help", fyne.NewMenuItem("About", func() {
		dialog.ShowInformation("About", "gridwarp "+version.String(), w)
	}))
	w.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, helpMenu))

	c := w.Canvas()
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { undo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { redo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift}, func(fyne.Shortcut) { redo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { save() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { openDoc() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyE, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { exportDoc() })
	if dc, ok := c.(desktop.Canvas); ok {
		dc.SetOnKeyDown(func(ev *fyne.KeyEvent) {
			switch ev.Name {
			case desktop.KeyShiftLeft, desktop.KeyShiftRight:
				mc.shift = true
			case fyne.KeyReturn, fyne.KeyEnter:
				if ed.Tool() == editor.ToolPen {
					if err := ed.FinishPen(); err != nil {
						status.SetText(err.Error())
					}
				}
			case fyne.KeyEscape:
				if ed.Dragging() {
					ed.EndDrag()
				} else {
					ed.CancelPen()
				}
			}
		})
		dc.SetOnKeyUp(func(ev *fyne.KeyEvent) {
			if ev.Name == desktop.KeyShiftLeft || ev.Name == desktop.KeyShiftRight {
				mc.shift = false
			}
		})
	}

	body := container.NewBorder(nil, status, nil, container.NewVScroll(side), mc)
	w.SetContent(body)
	refreshStatus()

	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		if !dirty() {
			w.Close()
			return
		}
		dialog.ShowConfirm("Quit", "Discard unsaved changes?", func(ok bool) {
			if ok {
				w.Close()
			}
		}, w)
	})
	w.ShowAndRun()
	l.Info("UI closed")
	return nil
}

func windowTitle(path string, dirty bool) string {
	name := "untitled"
	if path != "" {
		name = filepath.Base(path)
	}
	if dirty {
		name = "*" + name
	}
	return name + " - gridwarp"
}

func rgba(c domain.Color) color.RGBA { return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// MeshCanvas shows the rendered document and forwards pointer input to the
// editor. The rendered image is letterboxed to the internal aspect ratio and
// scaled by the editor zoom.
type MeshCanvas struct {
	widget.BaseWidget

	ed     *editor.Editor
	labels bool
	shift  bool
	hover  int // 1-based mask point under the pointer, 0 if none

	OnError func(error)
}

func NewMeshCanvas(ed *editor.Editor, labels bool) *MeshCanvas {
	m := &MeshCanvas{ed: ed, labels: labels}
	m.ExtendBaseWidget(m)
	return m
}

func (m *MeshCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 30, G: 30, B: 34, A: 255})
	img := canvas.NewImageFromImage(export.Render(m.ed.State(), m.renderOptions()))
	img.FillMode = canvas.ImageFillStretch
	img.ScaleMode = canvas.ImageScaleFastest
	return &meshCanvasRenderer{m: m, bg: bg, img: img, objects: []fyne.CanvasObject{bg, img}}
}

func (m *MeshCanvas) MinSize() fyne.Size { return fyne.NewSize(mesh.Width/2, mesh.Height/2) }

func (m *MeshCanvas) renderOptions() export.Options {
	return export.Options{
		Displacement:      m.ed.ViewMode() == editor.ViewDisplacement,
		DisplacementScale: m.ed.DisplacementScale(),
		LabelCells:        m.labels,
		IncludeMask:       true,
		Pen:               m.ed.Pen(),
		Highlight:         m.hover,
	}
}

func (m *MeshCanvas) mods() editor.Mods {
	if m.shift {
		return editor.ModAxisLock
	}
	return 0
}

func (m *MeshCanvas) report(err error) {
	if err != nil && m.OnError != nil {
		m.OnError(err)
	}
}

func (m *MeshCanvas) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	if ev.Modifier&fyne.KeyModifierShift != 0 {
		m.shift = true
	}
	m.report(m.ed.PointerDown(float64(ev.Position.X), float64(ev.Position.Y), m.mods()))
}

func (m *MeshCanvas) MouseUp(ev *desktop.MouseEvent) {
	m.ed.PointerUp(float64(ev.Position.X), float64(ev.Position.Y), m.mods())
}

func (m *MeshCanvas) Dragged(ev *fyne.DragEvent) {
	m.ed.PointerMove(float64(ev.Position.X), float64(ev.Position.Y), m.mods())
}

func (m *MeshCanvas) DragEnd() { m.ed.EndDrag() }

func (m *MeshCanvas) MouseIn(*desktop.MouseEvent) {}

func (m *MeshCanvas) MouseMoved(ev *desktop.MouseEvent) {
	hover := 0
	if t, ok := m.ed.HandleAt(m.ed.ToInternal(float64(ev.Position.X), float64(ev.Position.Y))); ok && t.Kind == interact.TargetBoundary {
		hover = t.ID + 1
	}
	if hover != m.hover {
		m.hover = hover
		m.Refresh()
	}
}

// MouseOut commits a drag at its last dragged position.
func (m *MeshCanvas) MouseOut() {
	m.ed.EndDrag()
	if m.hover != 0 {
		m.hover = 0
		m.Refresh()
	}
}

// Scrolled zooms by 0.1 per wheel notch.
func (m *MeshCanvas) Scrolled(ev *fyne.ScrollEvent) {
	switch {
	case ev.Scrolled.DY > 0:
		m.ed.ZoomBy(0.1)
	case ev.Scrolled.DY < 0:
		m.ed.ZoomBy(-0.1)
	default:
		return
	}
	m.Refresh()
}

type meshCanvasRenderer struct {
	m       *MeshCanvas
	bg      *canvas.Rectangle
	img     *canvas.Image
	objects []fyne.CanvasObject
}

func (r *meshCanvasRenderer) Destroy()                     {}
func (r *meshCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *meshCanvasRenderer) MinSize() fyne.Size           { return r.m.MinSize() }

func (r *meshCanvasRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	v := fitRect(float64(size.Width), float64(size.Height), r.m.ed.Zoom())
	r.m.ed.SetViewport(v)
	r.img.Move(fyne.NewPos(float32(v.Left), float32(v.Top)))
	r.img.Resize(fyne.NewSize(float32(v.Width), float32(v.Height)))
}

func (r *meshCanvasRenderer) Refresh() {
	size := r.m.Size()
	o := r.m.renderOptions()
	o.Scale = renderScale(fitRect(float64(size.Width), float64(size.Height), r.m.ed.Zoom()))
	r.img.Image = export.Render(r.m.ed.State(), o)
	r.Layout(size)
	r.img.Refresh()
	canvas.Refresh(r.m)
}
