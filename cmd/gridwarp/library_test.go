/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"strings"
	"testing"

	"github.com/zalando/go-keyring"

	"gridwarp/internal/config"
)

func TestRun_LibraryPasswordStoresSecret(t *testing.T) {
	isolate(t)
	keyring.MockInit()
	old := stdin
	stdin = strings.NewReader("hunter2\n")
	t.Cleanup(func() { stdin = old })

	code, out, errOut := runCLI(t, "library-password", "mesh")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "Password stored for mesh") {
		t.Fatalf("stdout got %q", out)
	}
	pw, err := config.LibraryPassword("mesh")
	if err != nil || pw != "hunter2" {
		t.Fatalf("stored password got (%q, %v)", pw, err)
	}
}

func TestRun_LibraryCommandsNeedArgsAndDSN(t *testing.T) {
	isolate(t)
	t.Setenv("GW_PG_DSN", "")
	if code, _, _ := runCLI(t, "library-password"); code != 2 {
		t.Fatalf("library-password without user exit got %d, want 2", code)
	}
	if code, _, _ := runCLI(t, "publish"); code != 2 {
		t.Fatalf("publish without file exit got %d, want 2", code)
	}
	if code, _, _ := runCLI(t, "pull", "city"); code != 2 {
		t.Fatalf("pull without target exit got %d, want 2", code)
	}
	code, _, errOut := runCLI(t, "library")
	if code != 1 || !strings.Contains(errOut, "no library DSN") {
		t.Fatalf("library without dsn: %d %q", code, errOut)
	}
}
