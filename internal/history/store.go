/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package history provides a bounded linear undo/redo store over immutable snapshots.
package history

import "sync"

// DefaultDepth is the number of snapshots retained when Config.MaxDepth is unset.
const DefaultDepth = 50

// Config controls the retention bound.
type Config struct {
	// MaxDepth caps the number of retained snapshots; the oldest are evicted first.
	MaxDepth int
}

// Store keeps an ordered sequence of snapshots and a cursor into it.
// The sequence always holds at least one snapshot and the cursor is always
// a valid position. Snapshots are treated as immutable; callers clone before
// mutating. It is safe for concurrent use.
type Store[T any] struct {
	cfg   Config
	mu    sync.Mutex
	items []T
	index int
}

// New creates a store whose only snapshot is initial.
func New[T any](initial T, cfg Config) *Store[T] {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultDepth
	}
	return &Store[T]{cfg: cfg, items: []T{initial}}
}

// Push discards every snapshot after the cursor, appends s and makes it current.
// When the depth bound is exceeded the oldest snapshots are evicted.
func (s *Store[T]) Push(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Any new change invalidates redo
	s.items = append(s.items[:s.index+1], v)
	s.enforceCapLocked()
	s.index = len(s.items) - 1
}

// Undo moves the cursor one step back. It reports false at the oldest snapshot.
func (s *Store[T]) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == 0 {
		return false
	}
	s.index--
	return true
}

// Redo moves the cursor one step forward. It reports false at the newest snapshot.
func (s *Store[T]) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index >= len(s.items)-1 {
		return false
	}
	s.index++
	return true
}

// Current returns the snapshot under the cursor.
func (s *Store[T]) Current() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[s.index]
}

// CanUndo reports whether an older snapshot exists.
func (s *Store[T]) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index > 0
}

// CanRedo reports whether a newer snapshot exists.
func (s *Store[T]) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index < len(s.items)-1
}

// Reset drops all snapshots and starts over from initial.
func (s *Store[T]) Reset(initial T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.items)
	s.items = append(s.items[:0], initial)
	s.index = 0
}

// Stats returns the number of retained snapshots and the cursor position for diagnostics.
func (s *Store[T]) Stats() (length int, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items), s.index
}

// Len returns the number of retained snapshots.
func (s *Store[T]) Len() int {
	n, _ := s.Stats()
	return n
}

// Index returns the cursor position.
func (s *Store[T]) Index() int {
	_, i := s.Stats()
	return i
}

func (s *Store[T]) enforceCapLocked() {
	if len(s.items) <= s.cfg.MaxDepth {
		return
	}
	// drop the oldest extras; copy so evicted snapshots can be collected
	toDrop := len(s.items) - s.cfg.MaxDepth
	s.items = append([]T(nil), s.items[toDrop:]...)
}
