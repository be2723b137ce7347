/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists editor documents as JSON files. Writes are
// transactional (temp file + rename) and the previous file is kept as a
// timestamped backup that Open falls back to when the main file is damaged.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gridwarp/internal/domain"
	gwlog "gridwarp/internal/log"
)

const (
	BackupsDirName = "backups"
	// MaxBackups is the number of backups kept per document.
	MaxBackups = 10
)

// Encode renders st as indented JSON, verbatim.
func Encode(st domain.EditorState) ([]byte, error) {
	data, err := json.MarshalIndent(st.Clone(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode validates data against the schema, unmarshals it and checks that
// every cell references existing vertices.
func Decode(data []byte) (domain.EditorState, error) {
	if err := Validate(data); err != nil {
		return domain.EditorState{}, err
	}
	var st domain.EditorState
	if err := json.Unmarshal(data, &st); err != nil {
		return domain.EditorState{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := st.CheckRefs(); err != nil {
		return domain.EditorState{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return st.Clone(), nil
}

// Save writes st to path. An existing file is first copied to
// <dir>/backups/<name>.<stamp>.bak.
func Save(path string, st domain.EditorState) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("document path is required")
	}
	l := gwlog.WithOperation(gwlog.WithComponent("storage"), "save")
	data, err := Encode(st)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create document dir: %w", err)
	}

	if _, statErr := os.Stat(path); statErr == nil {
		bpath := filepath.Join(dir, BackupsDirName, backupName(filepath.Base(path), time.Now()))
		if cerr := copyFile(path, bpath); cerr != nil {
			return fmt.Errorf("backup current document: %w", cerr)
		}
		pruneBackups(dir, filepath.Base(path), MaxBackups)
	}

	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp document: %w", werr)
	}
	// Windows cannot rename over an existing file.
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace document: %w", rerr)
	}
	l.Info("document saved", "path", path, "cells", len(st.Cells), "bytes", len(data))
	return nil
}

// Open reads the document at path. If it is missing or invalid, the most
// recent backup is tried instead; recovered reports whether that happened.
func Open(path string) (st domain.EditorState, recovered bool, err error) {
	l := gwlog.WithOperation(gwlog.WithComponent("storage"), "open")
	data, rerr := os.ReadFile(path)
	if rerr == nil {
		st, err = Decode(data)
		if err == nil {
			return st, false, nil
		}
	} else {
		err = fmt.Errorf("read document: %w", rerr)
	}
	bst, berr := openLatestBackup(filepath.Dir(path), filepath.Base(path))
	if berr != nil {
		return domain.EditorState{}, false, fmt.Errorf("%w; backup attempt: %v", err, berr)
	}
	l.Warn("document recovered from backup", "path", path, "err", err)
	return bst, true, nil
}

// Backups lists the backups of the document at path, oldest first.
func Backups(path string) ([]string, error) {
	dir := filepath.Join(filepath.Dir(path), BackupsDirName)
	ents, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range ents {
		n := e.Name()
		if !e.IsDir() && strings.HasPrefix(n, prefix) && strings.HasSuffix(n, ".bak") {
			out = append(out, filepath.Join(dir, n))
		}
	}
	// the stamp sorts lexicographically
	sort.Strings(out)
	return out, nil
}

func backupName(base string, t time.Time) string {
	return fmt.Sprintf("%s.%s.bak", base, t.Format("20060102-150405.000000000"))
}

func pruneBackups(dir, base string, keep int) {
	list, err := Backups(filepath.Join(dir, base))
	if err != nil || len(list) <= keep {
		return
	}
	for _, p := range list[:len(list)-keep] {
		_ = os.Remove(p)
	}
}

func openLatestBackup(dir, base string) (domain.EditorState, error) {
	list, err := Backups(filepath.Join(dir, base))
	if err != nil {
		return domain.EditorState{}, err
	}
	if len(list) == 0 {
		return domain.EditorState{}, errors.New("no backups found")
	}
	// newest first; skip backups that are themselves damaged
	var lastErr error
	for i := len(list) - 1; i >= 0; i-- {
		b, err := os.ReadFile(list[i])
		if err != nil {
			lastErr = err
			continue
		}
		st, err := Decode(b)
		if err != nil {
			lastErr = err
			continue
		}
		return st, nil
	}
	return domain.EditorState{}, fmt.Errorf("no usable backup: %w", lastErr)
}

func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sf.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
