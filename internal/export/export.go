/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes editor documents to raster, vector, tabular and
// JSON formats.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gridwarp/internal/domain"
	gwlog "gridwarp/internal/log"
	"gridwarp/internal/mesh"
)

// ErrUnknownFormat is returned by ByExtension for unsupported file extensions.
var ErrUnknownFormat = errors.New("unknown export format")

// Options controls how a document is drawn. Zero values select defaults.
type Options struct {
	// Scale multiplies the internal canvas size for raster output.
	Scale float64
	// Displacement colours cells by vertex displacement instead of paint.
	Displacement      bool
	DisplacementScale float64
	LabelCells        bool
	// LabelSize > 0 draws labels with a scalable TrueType face instead of the bitmap font.
	LabelSize   float64
	IncludeMask bool
	// Pen is an unfinished mask outline drawn as an open polyline.
	Pen []domain.Point
	// Highlight is the 1-based index of a mask point drawn enlarged; 0 disables it.
	Highlight int

	Background domain.Color
	GridColor  domain.Color
	MaskColor  domain.Color
	Unfilled   domain.Color
	LineWidth  float64
}

var zeroColor domain.Color

func (o Options) withDefaults() Options {
	if !(o.Scale > 0) {
		o.Scale = 1
	}
	if !(o.DisplacementScale > 0) {
		o.DisplacementScale = 0.05
	}
	if o.Background == zeroColor {
		o.Background = domain.Color{R: 255, G: 255, B: 255, A: 255}
	}
	if o.GridColor == zeroColor {
		o.GridColor = domain.Color{R: 60, G: 60, B: 60, A: 255}
	}
	if o.MaskColor == zeroColor {
		o.MaskColor = domain.Color{R: 220, G: 30, B: 120, A: 255}
	}
	if o.Unfilled == zeroColor {
		o.Unfilled = domain.Color{R: 245, G: 245, B: 245, A: 255}
	}
	if !(o.LineWidth > 0) {
		o.LineWidth = 1
	}
	return o
}

// cellColor is the fill a cell is drawn with; false means draw as unfilled.
func cellColor(c domain.Cell, st domain.EditorState, o Options) (domain.Color, bool) {
	if o.Displacement {
		return mesh.DisplacementColor(c, st.Vertices, o.DisplacementScale), true
	}
	if c.IsFilled && c.Color != nil {
		col := *c.Color
		if col.A == 0 {
			col.A = 255
		}
		return col, true
	}
	return domain.Color{}, false
}

// ByExtension writes st to path in the format named by its extension:
// .png, .svg, .pdf, .json, .sqlite or .db.
func ByExtension(ctx context.Context, path string, st domain.EditorState, o Options) error {
	l := gwlog.WithOperation(gwlog.WithComponent("export"), "by_extension")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		err = PNG(path, st, o)
	case ".svg":
		err = SVG(path, st, o)
	case ".pdf":
		err = PDF(path, st, o)
	case ".json":
		err = JSON(path, st)
	case ".sqlite", ".db":
		err = SQLite(ctx, path, st)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		l.Error("export failed", "path", path, "err", err)
		return err
	}
	l.Info("exported", "path", path, "cells", len(st.Cells))
	return nil
}
