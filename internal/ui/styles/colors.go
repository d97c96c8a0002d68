// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the Aira TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// BRAND COLORS
// =============================================================================

// Blue - User messages, primary actions
var Blue = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#3B82F6"}

// BlueDeep - Darker blue for backgrounds
var BlueDeep = lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#1D4ED8"}

// Violet - Brand accent, voice mode, highlights
var Violet = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#8B5CF6"}

// VioletDeep - Darker violet for backgrounds
var VioletDeep = lipgloss.AdaptiveColor{Light: "#5B21B6", Dark: "#4C1D95"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Red - Errors, destructive actions, active recording
var Red = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#E63946"}

// Green - Success states, verified key
var Green = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Amber - Warnings, notices
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#121212"}

// SurfaceDim - Header and footer background
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#0F172A"}

// SurfaceBright - Assistant bubbles, drawer background
var SurfaceBright = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#1A1A25"}

// Overlay - Borders, separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#2A2A35"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#F9FAFB"}

// TextSecondary - Labels, status lines
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}

// TextMuted - Hints, placeholders
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"}

// TextInverse - Text on colored backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#F9FAFB"}

// =============================================================================
// MESSAGE BUBBLE COLORS
// =============================================================================

// User bubble - solid blue, right-aligned
var UserBubbleBg = lipgloss.AdaptiveColor{Light: "#DBEAFE", Dark: "#1D4ED8"}
var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#E0F2FE"}
var UserBubbleBorder = Blue

// Assistant bubble - dark slate, left-aligned
var AssistantBubbleBg = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#1A1A25"}
var AssistantBubbleFg = lipgloss.AdaptiveColor{Light: "#374151", Dark: "#E5E7EB"}
var AssistantBubbleBorder = Violet
