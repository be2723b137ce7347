/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

const keyringService = "gridwarp"

// SecretStore abstracts the OS keyring so tests can stub it.
type SecretStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

var secretStore SecretStore = osKeyring{}

// osKeyring implements SecretStore using github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

func libraryKey(user string) string { return "library:" + strings.TrimSpace(user) }

// LibraryPassword returns the stored password for the library user. A
// missing entry is not an error.
func LibraryPassword(user string) (string, error) {
	pw, err := secretStore.Get(keyringService, libraryKey(user))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return pw, err
}

// SetLibraryPassword stores the password for user in the OS keychain.
func SetLibraryPassword(user, password string) error {
	if strings.TrimSpace(user) == "" {
		return errors.New("library user is empty")
	}
	return secretStore.Set(keyringService, libraryKey(user), password)
}

// DeleteLibraryPassword removes the stored password. Deleting a missing entry succeeds.
func DeleteLibraryPassword(user string) error {
	err := secretStore.Delete(keyringService, libraryKey(user))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
