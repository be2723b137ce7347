/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic at the process edge into a crash report and
// an autosave of the open document.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"gridwarp/internal/domain"
	gwlog "gridwarp/internal/log"
	"gridwarp/internal/storage"
	"gridwarp/internal/telemetry"
	"gridwarp/internal/version"
)

// exitFn is swapped in tests so Recover does not end the test binary.
var exitFn = os.Exit

// Snapshot returns the state to autosave; nil means nothing to save.
type Snapshot func() *domain.EditorState

// Recover must be deferred directly. On panic it logs the stack, writes a
// report next to docPath (or into the temp dir), autosaves the snapshot and
// exits with code 2.
//
// Usage: defer crash.Recover(path, func() *domain.EditorState { s := ed.State(); return &s })
func Recover(docPath string, snap Snapshot) {
	r := recover()
	if r == nil {
		return
	}
	l := gwlog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(docPath, r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if path, err := autosave(docPath, snap); err != nil {
		l.Error("crash autosave failed", slog.Any("err", err))
	} else if path != "" {
		l.Info("crash autosave written", slog.String("path", path))
		_, _ = fmt.Fprintf(os.Stderr, "Your document was autosaved to: %s\n", path)
	}

	_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

func reportDir(docPath string) string {
	if docPath == "" {
		return os.TempDir()
	}
	dir := filepath.Join(filepath.Dir(docPath), storage.BackupsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return os.TempDir()
	}
	return dir
}

// autosave writes the snapshot to <reportDir>/<name>.crash-<stamp>.json.
// A snapshot func that panics itself is treated as having nothing to save.
func autosave(docPath string, snap Snapshot) (path string, err error) {
	if snap == nil {
		return "", nil
	}
	var st *domain.EditorState
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("snapshot: %v", r)
			}
		}()
		st = snap()
	}()
	if err != nil || st == nil {
		return "", err
	}
	name := "untitled.json"
	if docPath != "" {
		name = filepath.Base(docPath)
	}
	path = filepath.Join(reportDir(docPath), fmt.Sprintf("%s.crash-%s.json", name, time.Now().Format("20060102-150405")))
	return path, storage.Save(path, *st)
}

func writeReport(docPath string, panicVal any, stack []byte) (string, error) {
	path := filepath.Join(reportDir(docPath), fmt.Sprintf("crash-%s.log", time.Now().Format("20060102-150405.000")))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "gridwarp crash report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if docPath != "" {
		_, _ = fmt.Fprintf(&buf, "Document: %s\n", docPath)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	// opt-in via GW_TELEMETRY_OPT_IN and GW_CRASH_UPLOAD_URL
	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}
