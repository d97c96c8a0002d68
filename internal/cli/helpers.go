// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/jeranaias/aira-tui/internal/config"
	"github.com/jeranaias/aira-tui/internal/keystore"
	"github.com/jeranaias/aira-tui/internal/storage"
)

// newKeystore honors a configured credential path, falling back to the
// default location under ~/.aira.
func newKeystore(cfg *config.Config) *keystore.Store {
	if cfg.Storage.CredentialPath != "" {
		return keystore.NewWithPath(cfg.Storage.CredentialPath)
	}
	return keystore.New()
}

// openStore honors a configured database path, falling back to the
// default location under ~/.aira.
func openStore(cfg *config.Config) (*storage.MessageStore, error) {
	if cfg.Storage.DatabasePath != "" {
		return storage.Open(cfg.Storage.DatabasePath)
	}
	return storage.OpenDefault()
}
