/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package history

import "testing"

func TestCapacityEvictsOldest(t *testing.T) {
	// 52 states in sequence: the first is the initial snapshot
	s := New(1, Config{})
	for i := 2; i <= 52; i++ {
		s.Push(i)
	}
	if n := s.Len(); n != DefaultDepth {
		t.Fatalf("Len() = %d, want %d", n, DefaultDepth)
	}
	if s.Current() != 52 || s.Index() != DefaultDepth-1 {
		t.Fatalf("cursor at %d (index %d), want 52 at %d", s.Current(), s.Index(), DefaultDepth-1)
	}
	if !s.CanUndo() || s.CanRedo() {
		t.Fatalf("expected undo available and no redo")
	}
	steps := 0
	for s.Undo() {
		steps++
	}
	if steps != DefaultDepth-1 {
		t.Fatalf("undo steps = %d, want %d", steps, DefaultDepth-1)
	}
	if s.Current() != 3 {
		t.Fatalf("oldest retained = %d, want 3 (1 and 2 evicted)", s.Current())
	}
}

func TestCapacityAfterUndoKeepsIndexValid(t *testing.T) {
	s := New(0, Config{MaxDepth: 3})
	s.Push(1)
	s.Push(2)
	s.Push(3)
	s.Undo()
	s.Push(4)
	if n, idx := s.Stats(); n != 3 || idx != 2 {
		t.Fatalf("Stats() = (%d,%d), want (3,2)", n, idx)
	}
	if s.Current() != 4 {
		t.Fatalf("Current() = %d, want 4", s.Current())
	}
	s.Undo()
	s.Undo()
	if s.Current() != 1 || s.CanUndo() {
		t.Fatalf("expected oldest retained 1, got %d", s.Current())
	}
}

func TestReset(t *testing.T) {
	s := New("a", Config{MaxDepth: 5})
	s.Push("b")
	s.Push("c")
	s.Reset("z")
	if s.Len() != 1 || s.Current() != "z" || s.CanUndo() || s.CanRedo() {
		t.Fatalf("reset did not clear history: len=%d current=%q", s.Len(), s.Current())
	}
}
