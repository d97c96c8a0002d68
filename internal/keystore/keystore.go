// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package keystore provides secure storage for the Groq API key.
//
// A single secret is held under a fixed service name, in a file with
// owner-only permissions, entirely separate from conversation storage.
// No other component persists the secret.
package keystore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/aira-tui/internal/util"
)

// ServiceName is the fixed identifier the credential is stored under. It
// matches the keychain service name used by the mobile client so the two
// remain conceptually interchangeable.
const ServiceName = "groqApiKey"

// =============================================================================
// KEY STORE
// =============================================================================

// Store persists the API key in a file with restricted permissions
// (0600 file, 0700 directory).
type Store struct {
	path string
}

// New returns a store rooted at the default credential path
// (~/.aira/credentials/groqApiKey).
func New() *Store {
	return &Store{path: defaultPath()}
}

// NewWithPath returns a store for a specific file path. Used in tests.
func NewWithPath(path string) *Store {
	return &Store{path: path}
}

// Get retrieves the stored secret. Any read failure - missing file,
// unreadable storage, empty content - is reported as absent, never as an
// error: a broken credential store must not be fatal at startup.
func (s *Store) Get() (string, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", false
	}
	return secret, true
}

// Set stores the secret, overwriting any previous value.
// RELIABILITY: Atomic write with fsync prevents a torn credential file.
func (s *Store) Set(secret string) error {
	if strings.TrimSpace(secret) == "" {
		return fmt.Errorf("refusing to store empty secret")
	}
	if err := util.AtomicWriteFileWithDir(s.path, []byte(secret), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write credential: %w", err)
	}
	return nil
}

// Exists reports whether a usable secret is stored.
func (s *Store) Exists() bool {
	_, ok := s.Get()
	return ok
}

// Delete removes the stored secret. Removing an absent secret is not an
// error.
func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

// defaultPath returns the default credential file location.
func defaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".aira", "credentials", ServiceName)
	}
	return filepath.Join(home, ".aira", "credentials", ServiceName)
}
