// Copyright (c) 2025 Tong Gia Bao (BaroDev)
// SPDX-License-Identifier: MIT

// Package styles provides the visual styling system for the chatcv TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette colors, one set per theme.
var (
	lightAccent    = lipgloss.Color("#7C3AED")
	lightAccentAlt = lipgloss.Color("#2563EB")
	lightText      = lipgloss.Color("#1F2937")
	lightSubtle    = lipgloss.Color("#6B7280")
	lightWarn      = lipgloss.Color("#B45309")
	lightUserBg    = lipgloss.Color("#EDE9FE")
	lightBotBg     = lipgloss.Color("#F3F4F6")

	darkAccent    = lipgloss.Color("#A78BFA")
	darkAccentAlt = lipgloss.Color("#60A5FA")
	darkText      = lipgloss.Color("#E5E7EB")
	darkSubtle    = lipgloss.Color("#9CA3AF")
	darkWarn      = lipgloss.Color("#FBBF24")
	darkUserBg    = lipgloss.Color("#3B3362")
	darkBotBg     = lipgloss.Color("#27272A")
)

// Theme holds the styled components for the application.
type Theme struct {
	IsDark bool

	// ==========================================================================
	// CHROME
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	StatusBar   lipgloss.Style
	ShortcutKey lipgloss.Style

	// ==========================================================================
	// CONVERSATION
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	WarningBubble   lipgloss.Style
	Typing          lipgloss.Style
	Suggestion      lipgloss.Style

	// ==========================================================================
	// SIDEBAR AND MODE PICKER
	// ==========================================================================

	SidebarTitle       lipgloss.Style
	SidebarItem        lipgloss.Style
	SidebarItemActive  lipgloss.Style
	SidebarTimestamp   lipgloss.Style
	ModeButton         lipgloss.Style
	ModeButtonSelected lipgloss.Style

	// ==========================================================================
	// INPUT
	// ==========================================================================

	InputBorder lipgloss.Style
}

// DetectDark reports whether the terminal background looks dark. Used as
// the theme default when no preference is stored.
func DetectDark() bool {
	return termenv.HasDarkBackground()
}

// New builds the theme for the requested variant.
func New(dark bool) *Theme {
	accent, accentAlt := lightAccent, lightAccentAlt
	text, subtle, warn := lightText, lightSubtle, lightWarn
	userBg, botBg := lightUserBg, lightBotBg
	if dark {
		accent, accentAlt = darkAccent, darkAccentAlt
		text, subtle, warn = darkText, darkSubtle, darkWarn
		userBg, botBg = darkUserBg, darkBotBg
	}

	return &Theme{
		IsDark: dark,

		Header:      lipgloss.NewStyle().Padding(0, 1),
		HeaderTitle: lipgloss.NewStyle().Foreground(accent).Bold(true),
		StatusBar:   lipgloss.NewStyle().Foreground(subtle),
		ShortcutKey: lipgloss.NewStyle().Foreground(accentAlt).Bold(true),

		UserBubble: lipgloss.NewStyle().
			Foreground(text).
			Background(userBg).
			Padding(0, 1),
		AssistantBubble: lipgloss.NewStyle().
			Foreground(text).
			Background(botBg).
			Padding(0, 1),
		WarningBubble: lipgloss.NewStyle().
			Foreground(warn).
			Italic(true),
		Typing: lipgloss.NewStyle().
			Foreground(subtle).
			Italic(true),
		Suggestion: lipgloss.NewStyle().
			Foreground(accentAlt).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentAlt).
			Padding(0, 1),

		SidebarTitle: lipgloss.NewStyle().Foreground(accent).Bold(true),
		SidebarItem:  lipgloss.NewStyle().Foreground(text),
		SidebarItemActive: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),
		SidebarTimestamp: lipgloss.NewStyle().Foreground(subtle),
		ModeButton: lipgloss.NewStyle().
			Foreground(text).
			Border(lipgloss.NormalBorder()).
			BorderForeground(subtle).
			Padding(0, 2),
		ModeButtonSelected: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			Border(lipgloss.NormalBorder()).
			BorderForeground(accent).
			Padding(0, 2),

		InputBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent),
	}
}
