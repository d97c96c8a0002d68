// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation persistence for aira-tui.
//
// History is kept in a small SQLite key-value table, the desktop analog of
// the mobile client's AsyncStorage: one JSON-encoded list of
// {role, content} records under a fixed key. Persistence is strictly
// best-effort - the in-memory conversation is the source of truth within a
// session, and a failed write is logged and forgotten, never retried and
// never surfaced to the user.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/aira-tui/internal/model"
)

// MessagesKey is the fixed key the conversation is stored under. It
// matches the AsyncStorage key used by the mobile client.
const MessagesKey = "chat_messages"

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// =============================================================================
// MESSAGE STORE
// =============================================================================

// MessageStore persists the ordered turn list.
type MessageStore struct {
	db *sql.DB
}

// Open opens (creating if necessary) the message database at path.
func Open(path string) (*MessageStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single writer keeps things simple; the app is single-user anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &MessageStore{db: db}, nil
}

// OpenDefault opens the store at the default location (~/.aira/aira.db).
func OpenDefault() (*MessageStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return Open(filepath.Join(home, ".aira", "aira.db"))
}

// Close releases the underlying database handle.
func (s *MessageStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// LOAD / SAVE / CLEAR
// =============================================================================

// Load returns the stored conversation in insertion order. A missing
// record, an unreadable database, or an undecodable value all yield an
// empty conversation: corrupt history is treated as absent rather than
// propagated, at the cost of silently discarding whatever it held.
func (s *MessageStore) Load() []model.Turn {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, MessagesKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []model.Turn{}
	}
	if err != nil {
		slog.Warn("message store read failed, starting empty", "error", err)
		return []model.Turn{}
	}

	var turns []model.Turn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		slog.Warn("stored conversation is not valid JSON, starting empty", "error", err)
		return []model.Turn{}
	}
	for _, t := range turns {
		if !t.Role.Valid() {
			slog.Warn("stored conversation has unknown role, starting empty", "role", t.Role)
			return []model.Turn{}
		}
	}
	if turns == nil {
		turns = []model.Turn{}
	}
	return turns
}

// Save replaces the stored conversation with the given turns. Callers
// treat this as fire-and-forget: the returned error is for logging only.
func (s *MessageStore) Save(turns []model.Turn) error {
	data, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("failed to encode conversation: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		MessagesKey, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to write conversation: %w", err)
	}
	return nil
}

// Clear removes the stored conversation. Clearing an absent record
// succeeds.
func (s *MessageStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, MessagesKey); err != nil {
		return fmt.Errorf("failed to clear conversation: %w", err)
	}
	return nil
}
