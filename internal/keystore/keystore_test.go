// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package keystore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreSetAndGet(t *testing.T) {
	store := NewWithPath(filepath.Join(t.TempDir(), "credentials", ServiceName))

	if store.Exists() {
		t.Error("fresh store should not report a secret")
	}
	if _, ok := store.Get(); ok {
		t.Error("Get on fresh store should report absent")
	}

	if err := store.Set("gsk_test_key_123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	secret, ok := store.Get()
	if !ok {
		t.Fatal("Get should find the stored secret")
	}
	if secret != "gsk_test_key_123" {
		t.Errorf("secret = %q", secret)
	}
	if !store.Exists() {
		t.Error("Exists should be true after Set")
	}
}

func TestStoreOverwrite(t *testing.T) {
	store := NewWithPath(filepath.Join(t.TempDir(), ServiceName))

	if err := store.Set("first"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set("second"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	secret, _ := store.Get()
	if secret != "second" {
		t.Errorf("secret = %q, want %q", secret, "second")
	}
}

func TestStoreRejectsEmptySecret(t *testing.T) {
	store := NewWithPath(filepath.Join(t.TempDir(), ServiceName))
	if err := store.Set("   "); err == nil {
		t.Error("Set should reject a blank secret")
	}
}

func TestStorePermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "credentials")
	store := NewWithPath(filepath.Join(dir, ServiceName))

	if err := store.Set("secret"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, ServiceName))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file perm = %o, want 0600", perm)
	}
}

func TestStoreGetTreatsUnreadableAsAbsent(t *testing.T) {
	// Point at a directory rather than a file: reads fail, Get must not panic
	dir := t.TempDir()
	store := NewWithPath(dir)

	if _, ok := store.Get(); ok {
		t.Error("unreadable storage should report absent")
	}
	if store.Exists() {
		t.Error("Exists should be false for unreadable storage")
	}
}

func TestStoreDelete(t *testing.T) {
	store := NewWithPath(filepath.Join(t.TempDir(), ServiceName))

	if err := store.Delete(); err != nil {
		t.Errorf("Delete on absent secret should succeed, got %v", err)
	}

	_ = store.Set("secret")
	if err := store.Delete(); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if store.Exists() {
		t.Error("secret should be gone after Delete")
	}
}
