// Copyright (c) 2025 Tong Gia Bao (BaroDev)
// SPDX-License-Identifier: MIT

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	conv "github.com/barodev/chatcv-tui/internal/chat"
	"github.com/barodev/chatcv-tui/internal/util"
)

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	return vp
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if !m.orch.State().ModeSet() {
		b.WriteString(m.renderModePicker())
	} else {
		main := m.viewport.View()
		if m.showSidebar {
			main = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), main)
		}
		b.WriteString(main)
		b.WriteString("\n")
		b.WriteString(m.renderSuggestions())
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.WarningBubble.Render(m.notice))
	}

	b.WriteString("\n")
	b.WriteString(m.theme.InputBorder.Render(m.textarea.View()))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	return b.String()
}

// =============================================================================
// SECTIONS
// =============================================================================

func (m *Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("ChatCV")
	subtitle := "select a chat mode"
	if mode := m.orch.State().Mode(); mode != "" {
		subtitle = mode.Marker() + " " + mode.DisplayName()
	}
	return m.theme.Header.Render(title + "  " + m.theme.StatusBar.Render(subtitle))
}

// renderModePicker is shown until a mode is selected; input stays locked.
func (m *Model) renderModePicker() string {
	var b strings.Builder

	b.WriteString(m.theme.SidebarTitle.Render("Who do you want to talk to?"))
	b.WriteString("\n\n")

	for i, mode := range conv.Modes() {
		label := fmt.Sprintf("[%d] %s %s", i+1, mode.Marker(), mode.DisplayName())
		b.WriteString(m.theme.ModeButton.Render(label))
		b.WriteString("\n")
		b.WriteString(m.theme.StatusBar.Render("    " + mode.Description()))
		b.WriteString("\n\n")
	}

	b.WriteString(m.theme.StatusBar.Render("Press 1 or 2 to choose."))
	return b.String()
}

func (m *Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("History"))
	b.WriteString("\n")

	if len(m.recent) == 0 {
		b.WriteString(m.theme.StatusBar.Render("No past chats yet."))
	}

	for i, c := range m.recent {
		title := util.TruncateWidth(c.Title, sidebarWidth-4)
		when := util.RelativeTime(c.LastUpdated)

		style := m.theme.SidebarItem
		prefix := "  "
		if i == m.sidebarIdx && m.focus == focusSidebar {
			style = m.theme.SidebarItemActive
			prefix = "> "
		}

		b.WriteString(style.Render(prefix + title))
		b.WriteString("\n")
		b.WriteString(m.theme.SidebarTimestamp.Render("    " + when))
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Width(sidebarWidth).Render(b.String())
}

func (m *Model) renderSuggestions() string {
	if len(m.suggestions) == 0 {
		return ""
	}
	chips := make([]string, len(m.suggestions))
	for i, s := range m.suggestions {
		chips[i] = m.theme.Suggestion.Render(s)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

func (m *Model) renderStatusBar() string {
	parts := []string{
		m.theme.ShortcutKey.Render("enter") + m.theme.StatusBar.Render(" send"),
		m.theme.ShortcutKey.Render("^n") + m.theme.StatusBar.Render(" new chat"),
		m.theme.ShortcutKey.Render("^h") + m.theme.StatusBar.Render(" history"),
		m.theme.ShortcutKey.Render("^t") + m.theme.StatusBar.Render(" theme"),
		m.theme.ShortcutKey.Render("^c") + m.theme.StatusBar.Render(" quit"),
	}
	return strings.Join(parts, "  ")
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshTranscript re-renders the message log into the viewport and
// keeps it pinned to the latest message.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m *Model) renderTranscript() string {
	var b strings.Builder

	mode := m.orch.State().Mode()
	if mode != "" {
		b.WriteString(m.theme.StatusBar.Render(mode.Description()))
		b.WriteString("\n\n")
	}

	for _, msg := range m.orch.State().History() {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n\n")
	}

	if m.orch.State().IsTyping() {
		b.WriteString(m.theme.Typing.Render(m.spin.View() + " typing..."))
		b.WriteString("\n")
	}

	return b.String()
}

func (m *Model) renderMessage(msg conv.Message) string {
	if msg.Role == conv.RoleUser {
		return m.theme.UserBubble.Render("You: " + msg.Content)
	}

	content := msg.Content
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(content); err == nil {
			content = strings.TrimRight(rendered, "\n")
		}
	}
	return m.theme.AssistantBubble.Render(content)
}
