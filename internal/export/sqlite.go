/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gridwarp/internal/domain"
	gwlog "gridwarp/internal/log"
	"gridwarp/internal/mesh"
	"gridwarp/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// sqliteSchemaVersion is recorded in the version table of every export.
const sqliteSchemaVersion = 1

var sqliteDDL = []string{
	`CREATE TABLE version (
		id         INTEGER PRIMARY KEY CHECK(id=1),
		schema     INTEGER NOT NULL,
		app        TEXT,
		created_at TEXT NOT NULL
	);`,
	`CREATE TABLE grid_config (
		id        INTEGER PRIMARY KEY CHECK(id=1),
		base_cols INTEGER NOT NULL,
		base_rows INTEGER NOT NULL,
		rules     TEXT NOT NULL
	);`,
	`CREATE TABLE vertices (
		id         INTEGER PRIMARY KEY,
		x          REAL NOT NULL,
		y          REAL NOT NULL,
		original_x REAL NOT NULL,
		original_y REAL NOT NULL
	);`,
	`CREATE TABLE cells (
		id           INTEGER PRIMARY KEY,
		v_tl         INTEGER NOT NULL REFERENCES vertices(id),
		v_tr         INTEGER NOT NULL REFERENCES vertices(id),
		v_br         INTEGER NOT NULL REFERENCES vertices(id),
		v_bl         INTEGER NOT NULL REFERENCES vertices(id),
		is_filled    INTEGER NOT NULL,
		color        TEXT,
		center_x     REAL NOT NULL,
		center_y     REAL NOT NULL,
		displacement REAL NOT NULL
	);`,
	`CREATE TABLE boundary (
		seq INTEGER PRIMARY KEY,
		x   REAL NOT NULL,
		y   REAL NOT NULL
	);`,
}

// SQLite writes st into a fresh database at path, replacing any existing file.
func SQLite(ctx context.Context, path string, st domain.EditorState) error {
	l := gwlog.WithOperation(gwlog.WithComponent("export"), "sqlite").With(slog.String("path", path))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove previous export: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := writeTables(ctx, tx, st); err != nil {
		_ = tx.Rollback()
		l.Error("sqlite export failed", slog.Any("err", err))
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	l.Debug("sqlite export written", slog.Int("vertices", len(st.Vertices)), slog.Int("cells", len(st.Cells)))
	return nil
}

func writeTables(ctx context.Context, tx *sql.Tx, st domain.EditorState) error {
	for _, q := range sqliteDDL {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at) VALUES (1, ?, ?, ?)`,
		sqliteSchemaVersion, version.String(), now); err != nil {
		return fmt.Errorf("insert version: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO grid_config (id, base_cols, base_rows, rules) VALUES (1, ?, ?, ?)`,
		st.Config.BaseCols, st.Config.BaseRows, st.Config.Rules); err != nil {
		return fmt.Errorf("insert grid_config: %w", err)
	}

	vs, err := tx.PrepareContext(ctx, `INSERT INTO vertices (id, x, y, original_x, original_y) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare vertices: %w", err)
	}
	defer vs.Close()
	for _, v := range st.Vertices {
		if _, err := vs.ExecContext(ctx, v.ID, v.X, v.Y, v.OriginalX, v.OriginalY); err != nil {
			return fmt.Errorf("insert vertex %d: %w", v.ID, err)
		}
	}

	cs, err := tx.PrepareContext(ctx, `INSERT INTO cells
		(id, v_tl, v_tr, v_br, v_bl, is_filled, color, center_x, center_y, displacement)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare cells: %w", err)
	}
	defer cs.Close()
	for _, c := range st.Cells {
		var col sql.NullString
		if c.IsFilled && c.Color != nil {
			col = sql.NullString{String: c.Color.Hex(), Valid: true}
		}
		ctr := mesh.CellCenter(c, st.Vertices)
		if _, err := cs.ExecContext(ctx, c.ID, c.Vertices[0], c.Vertices[1], c.Vertices[2], c.Vertices[3],
			c.IsFilled, col, ctr.X, ctr.Y, mesh.AverageDisplacement(c, st.Vertices)); err != nil {
			return fmt.Errorf("insert cell %d: %w", c.ID, err)
		}
	}

	for i, p := range st.Boundary {
		if _, err := tx.ExecContext(ctx, `INSERT INTO boundary (seq, x, y) VALUES (?, ?, ?)`, i, p.X, p.Y); err != nil {
			return fmt.Errorf("insert boundary %d: %w", i, err)
		}
	}
	return nil
}
