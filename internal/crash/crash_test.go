/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gridwarp/internal/domain"
	"gridwarp/internal/mesh"
	"gridwarp/internal/storage"
)

func silenceStderr(t *testing.T) {
	t.Helper()
	old := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stderr = w
	done := make(chan struct{})
	go func() { _, _ = io.Copy(io.Discard, r); close(done) }()
	t.Cleanup(func() {
		_ = w.Close()
		<-done
		os.Stderr = old
	})
}

func TestWriteReport_TempDir(t *testing.T) {
	path, err := writeReport("", "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(path) })
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "gridwarp crash report") || !strings.Contains(s, "Panic: boom") {
		t.Fatalf("report content: %s", s)
	}
}

func TestWriteReport_NextToDocument(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "mesh.json")
	path, err := writeReport(doc, "kaboom", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(dir, storage.BackupsDirName) {
		t.Fatalf("report path got %s, want under backups", path)
	}
}

func TestRecover_WritesReportAndAutosave(t *testing.T) {
	silenceStderr(t)
	code := 0
	old := exitFn
	exitFn = func(c int) { code = c }
	t.Cleanup(func() { exitFn = old })

	dir := t.TempDir()
	doc := filepath.Join(dir, "mesh.json")
	st := mesh.Generate(domain.GridConfig{BaseCols: 2, BaseRows: 2})

	func() {
		defer Recover(doc, func() *domain.EditorState { return &st })
		panic("boom")
	}()

	if code != 2 {
		t.Fatalf("exit code got %d, want 2", code)
	}
	ents, err := os.ReadDir(filepath.Join(dir, storage.BackupsDirName))
	if err != nil {
		t.Fatalf("read backups: %v", err)
	}
	var report, save string
	for _, e := range ents {
		switch {
		case strings.HasPrefix(e.Name(), "crash-"):
			report = e.Name()
		case strings.HasPrefix(e.Name(), "mesh.json.crash-"):
			save = filepath.Join(dir, storage.BackupsDirName, e.Name())
		}
	}
	if report == "" || save == "" {
		t.Fatalf("missing report or autosave: %v", ents)
	}
	got, _, err := storage.Open(save)
	if err != nil {
		t.Fatalf("autosave unreadable: %v", err)
	}
	if len(got.Cells) != 4 {
		t.Fatalf("autosave cells got %d, want 4", len(got.Cells))
	}
}

func TestAutosave_PanickingSnapshot(t *testing.T) {
	path, err := autosave(filepath.Join(t.TempDir(), "x.json"), func() *domain.EditorState { panic("bad state") })
	if err == nil || path != "" {
		t.Fatalf("got path=%q err=%v, want error", path, err)
	}
	if path, err := autosave("", nil); path != "" || err != nil {
		t.Fatalf("nil snapshot got %q %v", path, err)
	}
}

func TestRecover_NoPanicIsNoop(t *testing.T) {
	called := false
	old := exitFn
	exitFn = func(int) { called = true }
	t.Cleanup(func() { exitFn = old })
	func() {
		defer Recover("", nil)
	}()
	if called {
		t.Fatalf("exit called without panic")
	}
}
