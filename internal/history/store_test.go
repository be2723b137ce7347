/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package history

import "testing"

func TestUndoRedoBasic(t *testing.T) {
	s := New("A", Config{})
	s.Push("B")
	s.Push("C")
	if !s.Undo() {
		t.Fatalf("undo should move the cursor")
	}
	if got := s.Current(); got != "B" {
		t.Fatalf("Current() = %q, want B", got)
	}
	if !s.CanRedo() || !s.CanUndo() {
		t.Fatalf("expected both undo and redo available")
	}
	if !s.Redo() || s.Current() != "C" {
		t.Fatalf("redo expected C, got %q", s.Current())
	}
}

func TestPushAfterUndoDiscardsFuture(t *testing.T) {
	s := New("A", Config{})
	s.Push("B")
	s.Push("C")
	s.Undo()
	s.Push("D")
	if s.CanRedo() {
		t.Fatalf("push must discard redo targets")
	}
	if s.Redo() {
		t.Fatalf("redo should be a no-op after push")
	}
	if s.Current() != "D" {
		t.Fatalf("Current() = %q, want D", s.Current())
	}
	s.Undo()
	if s.Current() != "B" {
		t.Fatalf("after undo got %q, want B (C must be gone)", s.Current())
	}
	if n := s.Len(); n != 3 {
		t.Fatalf("Len() = %d, want 3", n)
	}
}

func TestBoundariesAreNoOps(t *testing.T) {
	s := New(1, Config{})
	if s.Undo() || s.Redo() {
		t.Fatalf("single snapshot store must not move")
	}
	if s.CanUndo() || s.CanRedo() {
		t.Fatalf("no undo/redo expected on a fresh store")
	}
	s.Push(2)
	s.Undo()
	s.Undo()
	if s.Current() != 1 || s.Index() != 0 {
		t.Fatalf("undo must floor at 0, got current=%d index=%d", s.Current(), s.Index())
	}
	s.Redo()
	s.Redo()
	if s.Current() != 2 || s.Index() != 1 {
		t.Fatalf("redo must cap at the end, got current=%d index=%d", s.Current(), s.Index())
	}
}
