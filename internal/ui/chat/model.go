// Copyright (c) 2025 Tong Gia Bao (BaroDev)
// SPDX-License-Identifier: MIT

// Package chat provides the chat view for the chatcv TUI.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/barodev/chatcv-tui/internal/orchestrator"
	"github.com/barodev/chatcv-tui/internal/store"
	"github.com/barodev/chatcv-tui/internal/ui/styles"
)

// focusArea tracks which pane receives key input.
type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

// sidebarWidth is the fixed width of the history pane.
const sidebarWidth = 32

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures the chat view.
type Options struct {
	// Markdown renders assistant replies through glamour.
	Markdown bool
	// RecentLimit caps the sidebar history list (0 = store default).
	RecentLimit int
	// RequestTimeout bounds each send round trip.
	RequestTimeout time.Duration
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	orch  *orchestrator.Orchestrator
	prefs *store.Prefs
	theme *styles.Theme
	opts  Options

	// Components
	viewport viewport.Model
	textarea textarea.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer

	// Layout
	width  int
	height int
	ready  bool

	// View state
	focus       focusArea
	showSidebar bool
	sidebarIdx  int
	recent      []*store.Chat
	suggestions []string
	notice      string
	quitting    bool
}

// New creates the chat view over a wired orchestrator.
func New(orch *orchestrator.Orchestrator, prefs *store.Prefs, theme *styles.Theme, opts Options) *Model {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}

	ta := textarea.New()
	ta.Placeholder = "Ask me anything..."
	ta.CharLimit = orchestrator.MaxMessageRunes
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		orch:     orch,
		prefs:    prefs,
		theme:    theme,
		opts:     opts,
		textarea: ta,
		spin:     sp,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// rebuildRenderer recreates the markdown renderer for the current width
// and theme. A nil renderer falls back to plain text.
func (m *Model) rebuildRenderer() {
	if !m.opts.Markdown {
		m.renderer = nil
		return
	}

	style := "light"
	if m.theme.IsDark {
		style = "dark"
	}

	width := m.transcriptWidth() - 2
	if width < 20 {
		width = 20
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = r
}

// transcriptWidth is the width available to the message log.
func (m *Model) transcriptWidth() int {
	w := m.width
	if m.showSidebar {
		w -= sidebarWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

// refreshRecent re-reads the sidebar history list and clamps the cursor.
func (m *Model) refreshRecent() {
	m.recent = m.orch.Store().ListRecent(m.opts.RecentLimit)
	if m.sidebarIdx >= len(m.recent) {
		m.sidebarIdx = len(m.recent) - 1
	}
	if m.sidebarIdx < 0 {
		m.sidebarIdx = 0
	}
}
