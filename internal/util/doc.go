// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the aira-tui application.
//
// This package contains common helper functions used throughout the
// application for display-text cleanup, speech sanitization, and file
// operations.
//
// # Key Functions
//
// String Utilities:
//   - CleanDisplayText: Normalizes whitespace for on-screen message bubbles
//   - SanitizeForSpeech: Strips content a TTS engine cannot pronounce
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	// Clean assistant text before rendering a bubble
//	display := util.CleanDisplayText(turn.Content)
//
//	// Write files atomically to prevent data loss
//	err := util.AtomicWriteFile(path, data, 0644)
package util
