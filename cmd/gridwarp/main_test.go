/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("GW_CONFIG", filepath.Join(dir, "config.yaml"))
	t.Setenv("GW_LOG_LEVEL", "error")
	t.Setenv("GW_TELEMETRY_OPT_IN", "")
	return dir
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errb bytes.Buffer
	code := run(args, &out, &errb)
	return code, out.String(), errb.String()
}

func TestRun_NewInfoExport(t *testing.T) {
	dir := isolate(t)
	doc := filepath.Join(dir, "mesh.json")

	code, out, errs := runCLI(t, "new", doc, "2", "2", "C0:2")
	if code != 0 {
		t.Fatalf("new exit %d: %s", code, errs)
	}
	if !strings.Contains(out, "6 cells") {
		t.Fatalf("new output: %q", out)
	}

	code, out, _ = runCLI(t, "info", doc)
	if code != 0 || !strings.Contains(out, `Grid: 2 x 2 rules "C0:2"`) || !strings.Contains(out, "Mask: none") {
		t.Fatalf("info exit %d output %q", code, out)
	}

	png := filepath.Join(dir, "out", "mesh.png")
	code, _, errs = runCLI(t, "export", "-labels", "-scale", "0.5", doc, png)
	if code != 0 {
		t.Fatalf("export exit %d: %s", code, errs)
	}
	if fi, err := os.Stat(png); err != nil || fi.Size() == 0 {
		t.Fatalf("png not written: %v", err)
	}

	code, _, _ = runCLI(t, "export", doc, filepath.Join(dir, "mesh.tiff"))
	if code != 2 {
		t.Fatalf("unknown format exit got %d, want 2", code)
	}
}

func TestRun_Rules(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, "rules", "r1:3, c0:2, bogus, C9:2", "2", "2")
	if code != 0 {
		t.Fatalf("rules exit %d", code)
	}
	for _, want := range []string{"Canonical: C0:2,R1:3", "Column 0 x2", "Row 1 x3", "Grid: 3 x 4 strips, 12 cells, 20 vertices"} {
		if !strings.Contains(out, want) {
			t.Fatalf("rules output %q missing %q", out, want)
		}
	}
}

func TestRun_UsageAndErrors(t *testing.T) {
	isolate(t)
	if code, out, _ := runCLI(t); code != 0 || !strings.Contains(out, "Usage:") {
		t.Fatalf("no-arg run: %d %q", code, out)
	}
	if code, _, _ := runCLI(t, "frobnicate"); code != 2 {
		t.Fatalf("unknown command exit got %d, want 2", code)
	}
	if code, _, _ := runCLI(t, "info", filepath.Join(t.TempDir(), "nope.json")); code != 1 {
		t.Fatalf("missing document exit got %d, want 1", code)
	}
	if code, out, _ := runCLI(t, "version"); code != 0 || !strings.HasPrefix(out, "gridwarp ") {
		t.Fatalf("version: %d %q", code, out)
	}
	if code, out, _ := runCLI(t, "schema"); code != 0 || !strings.Contains(out, "boundaryPoints") {
		t.Fatalf("schema: %d", code)
	}
}
