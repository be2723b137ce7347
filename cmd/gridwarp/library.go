/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"gridwarp/internal/backend"
	"gridwarp/internal/config"
	"gridwarp/internal/domain"
	gwlog "gridwarp/internal/log"
	"gridwarp/internal/storage"
	"gridwarp/internal/telemetry"
)

// stdin is swapped in tests.
var stdin io.Reader = os.Stdin

func runLibrary(args []string, cfg config.AppConfig, stdout, stderr io.Writer, fail func(error) int, current **domain.EditorState) int {
	ctx := context.Background()

	if args[0] == "library-password" {
		if len(args) < 2 {
			fmt.Fprintln(stderr, "library-password requires <user>")
			return 2
		}
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return fail(err)
		}
		if err := config.SetLibraryPassword(args[1], strings.TrimRight(line, "\r\n")); err != nil {
			return fail(err)
		}
		fmt.Fprintln(stdout, "Password stored for", args[1])
		return 0
	}

	switch args[0] {
	case "publish":
		if len(args) < 2 {
			fmt.Fprintln(stderr, "publish requires <file>")
			return 2
		}
	case "pull":
		if len(args) < 3 {
			fmt.Fprintln(stderr, "pull requires <name[@version]> <file>")
			return 2
		}
	}

	db, err := backend.Open(ctx, cfg.Library.DSN, config.LibraryPassword)
	if err != nil {
		return fail(err)
	}
	defer func() { _ = db.Close() }()

	switch args[0] {
	case "publish":
		st, _, err := storage.Open(args[1])
		if err != nil {
			return fail(err)
		}
		*current = &st
		name := strings.TrimSuffix(filepath.Base(args[1]), filepath.Ext(args[1]))
		if len(args) >= 3 {
			name = args[2]
		}
		v, err := backend.Publish(gwlog.WithDocument(ctx, args[1]), db, name, st)
		if err != nil {
			return fail(err)
		}
		telemetry.Event("publish", map[string]any{"cells": len(st.Cells)})
		fmt.Fprintln(stdout, "Published", backend.Ref(name, v))

	case "pull":
		name, v := backend.ParseRef(args[1])
		st, err := backend.Fetch(ctx, db, name, v)
		if err != nil {
			return fail(err)
		}
		*current = &st
		if err := storage.Save(args[2], st); err != nil {
			return fail(err)
		}
		fmt.Fprintf(stdout, "Pulled %s into %s\n", args[1], args[2])

	case "library":
		list, err := backend.List(ctx, db)
		if err != nil {
			return fail(err)
		}
		tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tVERSION\tGRID\tCELLS\tFILLED\tMASK\tPUBLISHED")
		for _, e := range list {
			grid := fmt.Sprintf("%dx%d", e.Cols, e.Rows)
			if e.Rules != "" {
				grid += " " + e.Rules
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%d\t%v\t%s\n", e.Name, e.Version, grid, e.Cells, e.Filled, e.HasMask, e.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		_ = tw.Flush()
	}
	return 0
}
