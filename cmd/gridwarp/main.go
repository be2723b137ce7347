/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gridwarp/internal/config"
	"gridwarp/internal/crash"
	"gridwarp/internal/domain"
	"gridwarp/internal/export"
	gwlog "gridwarp/internal/log"
	"gridwarp/internal/mesh"
	"gridwarp/internal/storage"
	"gridwarp/internal/telemetry"
	"gridwarp/internal/ui"
	"gridwarp/internal/version"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "gridwarp: mesh grid editor")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  gridwarp version|-v|--version                 Show version")
	fmt.Fprintln(w, "  gridwarp new <file> [cols rows [rules]]        Create a document with a fresh grid")
	fmt.Fprintln(w, "  gridwarp info <file>                           Print a document summary")
	fmt.Fprintln(w, "  gridwarp rules <rules> [cols rows]             Parse a rule string and show the resulting grid")
	fmt.Fprintln(w, "  gridwarp export [flags] <file> <out>           Export to .png .svg .pdf .json .sqlite")
	fmt.Fprintln(w, "  gridwarp publish <file> [name]                 Publish to the Postgres mesh library")
	fmt.Fprintln(w, "  gridwarp pull <name[@version]> <file>          Fetch a mesh from the library")
	fmt.Fprintln(w, "  gridwarp library                               List meshes in the library")
	fmt.Fprintln(w, "  gridwarp library-password <user>               Store the library password (read from stdin) in the OS keychain")
	fmt.Fprintln(w, "  gridwarp schema                                Print the document JSON schema")
	fmt.Fprintln(w, "  gridwarp ui [<file>]                           Launch desktop UI (build with -tags fyne)")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) (code int) {
	cfg, cerr := config.Load()
	gwlog.Init(cfg.LogOptions())
	l := gwlog.WithComponent("cli")
	if cerr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cerr))
	}
	defer telemetry.Default().Close()

	var doc string
	if len(args) > 1 {
		doc = args[1]
	}
	var current *domain.EditorState
	defer crash.Recover(doc, func() *domain.EditorState { return current })

	if len(args) == 0 {
		usage(stdout)
		return 0
	}
	l.Debug("start", slog.String("cmd", args[0]), slog.Int("args", len(args)))

	fail := func(err error) int {
		l.Error(args[0]+" failed", slog.Any("err", err))
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}

	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(stdout, "gridwarp", version.String())
		return 0

	case "new":
		if len(args) < 2 {
			fmt.Fprintln(stderr, "new requires <file>")
			usage(stderr)
			return 2
		}
		gc := domain.GridConfig{BaseCols: cfg.Editor.Grid.Cols, BaseRows: cfg.Editor.Grid.Rows, Rules: cfg.Editor.Grid.Rules}
		if len(args) >= 4 {
			gc.BaseCols, gc.BaseRows = atoiOr(args[2], 1), atoiOr(args[3], 1)
			gc.Rules = ""
		}
		if len(args) >= 5 {
			gc.Rules = strings.Join(args[4:], " ")
		}
		st := mesh.Generate(gc)
		current = &st
		abs, _ := filepath.Abs(args[1])
		if err := storage.Save(abs, st); err != nil {
			return fail(err)
		}
		fmt.Fprintf(stdout, "Created %s: %d cells, %d vertices\n", abs, len(st.Cells), len(st.Vertices))
		return 0

	case "info":
		if len(args) < 2 {
			fmt.Fprintln(stderr, "info requires <file>")
			return 2
		}
		st, recovered, err := storage.Open(args[1])
		if err != nil {
			return fail(err)
		}
		current = &st
		if recovered {
			fmt.Fprintln(stdout, "Note: document was damaged; showing latest backup")
		}
		printInfo(stdout, st)
		return 0

	case "rules":
		if len(args) < 2 {
			fmt.Fprintln(stderr, "rules requires <rules>")
			return 2
		}
		cols, rows := cfg.Editor.Grid.Cols, cfg.Editor.Grid.Rows
		if len(args) >= 4 {
			cols, rows = atoiOr(args[2], 1), atoiOr(args[3], 1)
		}
		printRules(stdout, args[1], cols, rows)
		return 0

	case "export":
		return runExport(args[1:], cfg, stdout, stderr, fail, &current)

	case "publish", "pull", "library", "library-password":
		return runLibrary(args, cfg, stdout, stderr, fail, &current)

	case "schema":
		_, _ = stdout.Write(storage.Schema())
		return 0

	case "ui":
		var path string
		if len(args) >= 2 {
			path = args[1]
		}
		if err := ui.Run(path, cfg); err != nil {
			return fail(err)
		}
		return 0
	}

	usage(stderr)
	return 2
}

func runExport(args []string, cfg config.AppConfig, stdout, stderr io.Writer, fail func(error) int, current **domain.EditorState) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	scale := fs.Float64("scale", cfg.Export.PNGScale, "raster scale factor")
	disp := fs.Bool("displacement", false, "colour cells by vertex displacement")
	dscale := fs.Float64("displacement-scale", cfg.Editor.DisplacementScale, "displacement colour gain")
	labels := fs.Bool("labels", cfg.Export.LabelCells, "draw cell ids")
	mask := fs.Bool("mask", cfg.Export.IncludeMask, "draw the mask outline")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 2 {
		fmt.Fprintln(stderr, "export requires <file> <out>")
		return 2
	}
	st, _, err := storage.Open(fs.Arg(0))
	if err != nil {
		return fail(err)
	}
	*current = &st

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	out := fs.Arg(1)
	opts := export.Options{
		Scale:             *scale,
		Displacement:      *disp,
		DisplacementScale: *dscale,
		LabelCells:        *labels,
		IncludeMask:       *mask,
	}
	if err := export.ByExtension(gwlog.WithDocument(ctx, fs.Arg(0)), out, st, opts); err != nil {
		if errors.Is(err, export.ErrUnknownFormat) {
			fmt.Fprintln(stderr, "Error:", err)
			return 2
		}
		return fail(err)
	}
	telemetry.Event("export", map[string]any{"format": strings.TrimPrefix(filepath.Ext(out), ".")})
	fmt.Fprintln(stdout, "Exported", out)
	return 0
}

func printInfo(w io.Writer, st domain.EditorState) {
	fmt.Fprintf(w, "Grid: %d x %d", st.Config.BaseCols, st.Config.BaseRows)
	if st.Config.Rules != "" {
		fmt.Fprintf(w, " rules %q", st.Config.Rules)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Cells: %d (%d painted)\n", len(st.Cells), st.FilledCount())
	moved := 0
	for _, v := range st.Vertices {
		if v.X != v.OriginalX || v.Y != v.OriginalY {
			moved++
		}
	}
	fmt.Fprintf(w, "Vertices: %d (%d moved)\n", len(st.Vertices), moved)
	if st.HasMask() {
		fmt.Fprintf(w, "Mask: %d points\n", len(st.Boundary))
	} else {
		fmt.Fprintln(w, "Mask: none")
	}
}

func printRules(w io.Writer, rule string, cols, rows int) {
	r := mesh.ParseRules(rule, cols, rows)
	fmt.Fprintf(w, "Canonical: %s\n", r.String())
	for _, axis := range []struct {
		name string
		m    map[int]int
	}{{"Column", r.Cols}, {"Row", r.Rows}} {
		keys := make([]int, 0, len(axis.m))
		for k := range axis.m {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s %d x%d\n", axis.name, k, axis.m[k])
		}
	}
	g := mesh.GenerateGrid(cols, rows, r)
	fmt.Fprintf(w, "Grid: %d x %d strips, %d cells, %d vertices\n", len(g.XStops)-1, len(g.YStops)-1, len(g.Cells), len(g.Vertices))
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
