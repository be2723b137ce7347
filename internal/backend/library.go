/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gridwarp/internal/domain"
	gwlog "gridwarp/internal/log"
	"gridwarp/internal/storage"
)

// ErrNotFound is returned by Fetch when no matching mesh exists.
var ErrNotFound = errors.New("mesh not found in library")

// Entry summarises one published mesh version.
type Entry struct {
	Name      string
	Version   int
	Cols      int
	Rows      int
	Rules     string
	Cells     int
	Filled    int
	HasMask   bool
	CreatedAt time.Time
}

// Publish stores st under name as the next version and returns that version.
func Publish(ctx context.Context, db *sql.DB, name string, st domain.EditorState) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.New("mesh name is empty")
	}
	doc, err := storage.Encode(st)
	if err != nil {
		return 0, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	// Serialise concurrent publishers of the same name.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, name); err != nil {
		return 0, fmt.Errorf("lock %s: %w", name, err)
	}
	var version int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) + 1 FROM meshes WHERE name = $1`, name).Scan(&version); err != nil {
		return 0, fmt.Errorf("next version: %w", err)
	}
	var id int64
	err = tx.QueryRowContext(ctx, `INSERT INTO meshes(name, version, base_cols, base_rows, rules, cells, filled, has_mask, document)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		name, version, st.Config.BaseCols, st.Config.BaseRows, st.Config.Rules,
		len(st.Cells), st.FilledCount(), st.HasMask(), string(doc)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert mesh: %w", err)
	}
	for _, c := range st.Cells {
		var col any
		if c.IsFilled && c.Color != nil {
			col = c.Color.Hex()
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO mesh_cells(mesh_id, cell_id, color) VALUES($1, $2, $3)`, id, c.ID, col); err != nil {
			return 0, fmt.Errorf("insert cell %d: %w", c.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	gwlog.WithComponent("backend").InfoContext(ctx, "mesh published", "name", name, "version", version, "cells", len(st.Cells))
	return version, nil
}

// List returns the latest version of every mesh, ordered by name.
func List(ctx context.Context, db *sql.DB) ([]Entry, error) {
	rows, err := db.QueryContext(ctx, `SELECT DISTINCT ON (name) name, version, base_cols, base_rows, rules, cells, filled, has_mask, created_at
		FROM meshes ORDER BY name, version DESC`)
	if err != nil {
		return nil, fmt.Errorf("list meshes: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Version, &e.Cols, &e.Rows, &e.Rules, &e.Cells, &e.Filled, &e.HasMask, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Fetch loads a published mesh. version 0 selects the latest.
func Fetch(ctx context.Context, db *sql.DB, name string, version int) (domain.EditorState, error) {
	var doc []byte
	var err error
	if version > 0 {
		err = db.QueryRowContext(ctx, `SELECT document FROM meshes WHERE name = $1 AND version = $2`, name, version).Scan(&doc)
	} else {
		err = db.QueryRowContext(ctx, `SELECT document FROM meshes WHERE name = $1 ORDER BY version DESC LIMIT 1`, name).Scan(&doc)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.EditorState{}, fmt.Errorf("%w: %s", ErrNotFound, Ref(name, version))
	}
	if err != nil {
		return domain.EditorState{}, fmt.Errorf("fetch %s: %w", Ref(name, version), err)
	}
	return storage.Decode(doc)
}

// Ref formats a name and version as "name@version"; version 0 is just the name.
func Ref(name string, version int) string {
	if version > 0 {
		return fmt.Sprintf("%s@%d", name, version)
	}
	return name
}

// ParseRef splits "name@version". A missing or invalid version yields 0.
func ParseRef(ref string) (name string, version int) {
	ref = strings.TrimSpace(ref)
	i := strings.LastIndexByte(ref, '@')
	if i < 0 {
		return ref, 0
	}
	v, err := strconv.Atoi(ref[i+1:])
	if err != nil || v < 1 {
		return ref[:i], 0
	}
	return ref[:i], v
}
