/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration: a YAML file in the user's
// config directory, overlaid with GW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"gridwarp/internal/domain"
	"gridwarp/internal/editor"
	gwlog "gridwarp/internal/log"
)

// AppConfig is the user-editable configuration. Environment variables are
// read-only overrides applied after the file.
//
// config_version: bump when the structure changes incompatibly.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Editor        EditorConfig  `yaml:"editor"`
	Export        ExportConfig  `yaml:"export"`
	Library       LibraryConfig `yaml:"library"`
	Logging       LoggingConfig `yaml:"logging"`
}

type GridConfig struct {
	Cols  int    `yaml:"cols"`
	Rows  int    `yaml:"rows"`
	Rules string `yaml:"rules"`
}

type EditorConfig struct {
	Grid              GridConfig `yaml:"grid"`
	Palette           []string   `yaml:"palette"` // hex colours, "#rrggbb" or "#rgb"
	DisplacementScale float64    `yaml:"displacement_scale"`
	HistoryDepth      int        `yaml:"history_depth"`
	ZoomMin           float64    `yaml:"zoom_min"`
	ZoomMax           float64    `yaml:"zoom_max"`
	HandleRadius      float64    `yaml:"handle_radius"`
}

type ExportConfig struct {
	PNGScale    float64 `yaml:"png_scale"`
	LabelCells  bool    `yaml:"label_cells"`
	IncludeMask bool    `yaml:"include_mask"`
}

// LibraryConfig points at the shared Postgres mesh library. The password is
// not stored on disk; it lives in the OS keychain (see SetLibraryPassword).
type LibraryConfig struct {
	DSN string `yaml:"dsn"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	d := editor.DefaultOptions()
	pal := make([]string, len(d.Palette))
	for i, c := range d.Palette {
		pal[i] = c.Hex()
	}
	return AppConfig{
		ConfigVersion: 1,
		Editor: EditorConfig{
			Grid:              GridConfig{Cols: d.Grid.BaseCols, Rows: d.Grid.BaseRows},
			Palette:           pal,
			DisplacementScale: d.DisplacementScale,
			HistoryDepth:      d.HistoryDepth,
			ZoomMin:           d.ZoomMin,
			ZoomMax:           d.ZoomMax,
			HandleRadius:      d.HandleRadius,
		},
		Export:  ExportConfig{PNGScale: 1, LabelCells: false, IncludeMask: true},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath        = "GW_CONFIG"
	EnvGridCols          = "GW_GRID_COLS"
	EnvGridRows          = "GW_GRID_ROWS"
	EnvGridRules         = "GW_GRID_RULES"
	EnvDisplacementScale = "GW_DISPLACEMENT_SCALE"
	EnvHistoryDepth      = "GW_HISTORY_DEPTH"
	EnvLibraryDSN        = "GW_PG_DSN"
	EnvLogLevel          = "GW_LOG_LEVEL"
	EnvLogFormat         = "GW_LOG_FORMAT"
	EnvLogSource         = "GW_LOG_SOURCE"
	EnvLogFile           = "GW_LOG_FILE"
)

// envKeys maps dotted config keys to the variable overriding them.
var envKeys = map[string]string{
	"editor.grid.cols":          EnvGridCols,
	"editor.grid.rows":          EnvGridRows,
	"editor.grid.rules":         EnvGridRules,
	"editor.displacement_scale": EnvDisplacementScale,
	"editor.history_depth":      EnvHistoryDepth,
	"library.dsn":               EnvLibraryDSN,
	"logging.level":             EnvLogLevel,
	"logging.format":            EnvLogFormat,
	"logging.source":            EnvLogSource,
	"logging.file":              EnvLogFile,
}

// ConfigPath returns the per-user config file path. GW_CONFIG takes precedence.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GridWarp")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GridWarp")
	default:
		home := os.Getenv("HOME")
		if home == "" {
			return "", errors.New("cannot resolve config directory")
		}
		base = filepath.Join(home, ".config", "gridwarp")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the config file if present, merges it over the defaults and
// applies environment overrides. A malformed file is reported but the
// defaults are still returned.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes cfg as YAML to ConfigPath.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// editor
	if src.Editor.Grid.Cols > 0 {
		dst.Editor.Grid.Cols = src.Editor.Grid.Cols
	}
	if src.Editor.Grid.Rows > 0 {
		dst.Editor.Grid.Rows = src.Editor.Grid.Rows
	}
	if r := strings.TrimSpace(src.Editor.Grid.Rules); r != "" {
		dst.Editor.Grid.Rules = r
	}
	if len(src.Editor.Palette) > 0 {
		dst.Editor.Palette = append([]string(nil), src.Editor.Palette...)
	}
	if src.Editor.DisplacementScale > 0 {
		dst.Editor.DisplacementScale = src.Editor.DisplacementScale
	}
	if src.Editor.HistoryDepth > 0 {
		dst.Editor.HistoryDepth = src.Editor.HistoryDepth
	}
	if src.Editor.ZoomMin > 0 {
		dst.Editor.ZoomMin = src.Editor.ZoomMin
	}
	if src.Editor.ZoomMax > 0 {
		dst.Editor.ZoomMax = src.Editor.ZoomMax
	}
	if src.Editor.HandleRadius > 0 {
		dst.Editor.HandleRadius = src.Editor.HandleRadius
	}
	// export: booleans copied so user preferences persist
	if src.Export.PNGScale > 0 {
		dst.Export.PNGScale = src.Export.PNGScale
	}
	dst.Export.LabelCells = src.Export.LabelCells
	dst.Export.IncludeMask = src.Export.IncludeMask
	if v := strings.TrimSpace(src.Library.DSN); v != "" {
		dst.Library.DSN = v
	}
	// logging
	if v := strings.TrimSpace(src.Logging.Level); v != "" {
		dst.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Logging.Format); v != "" {
		dst.Logging.Format = strings.ToLower(v)
	}
	dst.Logging.Source = src.Logging.Source
	if v := strings.TrimSpace(src.Logging.File); v != "" {
		dst.Logging.File = v
	}
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func applyEnvOverrides(cfg *AppConfig) {
	env := func(k string) string { return strings.TrimSpace(os.Getenv(k)) }
	if v := env(EnvGridCols); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Editor.Grid.Cols = n
		}
	}
	if v := env(EnvGridRows); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Editor.Grid.Rows = n
		}
	}
	if v := env(EnvGridRules); v != "" {
		cfg.Editor.Grid.Rules = v
	}
	if v := env(EnvDisplacementScale); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.Editor.DisplacementScale = f
		}
	}
	if v := env(EnvHistoryDepth); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Editor.HistoryDepth = n
		}
	}
	if v := env(EnvLibraryDSN); v != "" {
		cfg.Library.DSN = v
	}
	if v := env(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := env(EnvLogFormat); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := env(EnvLogSource); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := env(EnvLogFile); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the variable name if key is currently overridden by the environment.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// LogOptions converts the logging section for log.Init.
func (c AppConfig) LogOptions() gwlog.Options {
	return gwlog.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}

// EditorOptions converts the editor section. Unparseable palette entries
// are skipped and logged.
func (c AppConfig) EditorOptions(l *slog.Logger) editor.Options {
	pal := make([]domain.Color, 0, len(c.Editor.Palette))
	for _, s := range c.Editor.Palette {
		col, err := domain.ParseHex(s)
		if err != nil {
			if l != nil {
				l.Warn("skipping palette entry", "value", s, "err", err)
			}
			continue
		}
		pal = append(pal, col)
	}
	return editor.Options{
		Grid:              domain.GridConfig{BaseCols: c.Editor.Grid.Cols, BaseRows: c.Editor.Grid.Rows, Rules: c.Editor.Grid.Rules},
		Palette:           pal,
		DisplacementScale: c.Editor.DisplacementScale,
		HistoryDepth:      c.Editor.HistoryDepth,
		ZoomMin:           c.Editor.ZoomMin,
		ZoomMax:           c.Editor.ZoomMax,
		HandleRadius:      c.Editor.HandleRadius,
		Logger:            l,
	}
}
