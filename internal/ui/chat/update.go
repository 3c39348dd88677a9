// Copyright (c) 2025 Tong Gia Bao (BaroDev)
// SPDX-License-Identifier: MIT

package chat

import (
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/barodev/chatcv-tui/internal/orchestrator"
	"github.com/barodev/chatcv-tui/internal/ui/styles"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SendResultMsg:
		return m.handleSendResult(msg)

	case spinner.TickMsg:
		if m.orch.State().IsTyping() {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			m.refreshTranscript()
			return m, cmd
		}
		return m, nil
	}

	return m.updateComponents(msg)
}

// =============================================================================
// HANDLERS
// =============================================================================

func (m *Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	chromeHeight := 8 // header, suggestions, notice, input, statusbar
	vpHeight := m.height - chromeHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = newViewport(m.transcriptWidth(), vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.transcriptWidth()
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(m.width - 4)

	m.rebuildRenderer()
	m.refreshTranscript()
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "ctrl+n":
		m.orch.StartNewChat()
		m.suggestions = nil
		m.notice = ""
		m.refreshRecent()
		m.refreshTranscript()
		return m, nil

	case "ctrl+h":
		m.showSidebar = !m.showSidebar
		if m.showSidebar {
			m.refreshRecent()
			m.focus = focusSidebar
		} else {
			m.focus = focusInput
		}
		if m.ready {
			m.viewport.Width = m.transcriptWidth()
		}
		m.rebuildRenderer()
		m.refreshTranscript()
		return m, nil

	case "ctrl+t":
		m.toggleTheme()
		return m, nil

	case "tab":
		if m.showSidebar {
			if m.focus == focusInput {
				m.focus = focusSidebar
			} else {
				m.focus = focusInput
			}
			return m, nil
		}
	}

	if !m.orch.State().ModeSet() {
		return m.handleModePickerKey(msg)
	}
	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}

	if msg.Type == tea.KeyEnter {
		return m.submit()
	}

	return m.updateComponents(msg)
}

// handleModePickerKey selects a mode; all other input is held until one
// is chosen.
func (m *Model) handleModePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "1":
		m.selectMode("cv")
	case "2":
		m.selectMode("digital-twin")
	}
	return m, nil
}

func (m *Model) selectMode(name string) {
	if err := m.orch.ChangeMode(name); err != nil {
		var warn *orchestrator.Warning
		if errors.As(err, &warn) {
			m.notice = warn.Text
		}
		return
	}
	m.notice = ""
	m.suggestions = nil
	m.refreshTranscript()
}

func (m *Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.sidebarIdx > 0 {
			m.sidebarIdx--
		}
	case "down", "j":
		if m.sidebarIdx < len(m.recent)-1 {
			m.sidebarIdx++
		}
	case "enter":
		if m.sidebarIdx < len(m.recent) {
			if _, err := m.orch.LoadChatFromHistory(m.recent[m.sidebarIdx].ID); err == nil {
				m.suggestions = nil
				m.notice = ""
				m.focus = focusInput
				m.refreshTranscript()
			}
		}
	case "d":
		if m.sidebarIdx < len(m.recent) {
			m.orch.DeleteChatFromHistory(m.recent[m.sidebarIdx].ID)
			m.refreshRecent()
			m.refreshTranscript()
		}
	}
	return m, nil
}

// submit starts a send round trip from the textarea contents.
func (m *Model) submit() (tea.Model, tea.Cmd) {
	turn, err := m.orch.BeginSend(m.textarea.Value())
	if err != nil {
		var warn *orchestrator.Warning
		if errors.As(err, &warn) {
			m.notice = warn.Text
		}
		// Busy and empty submissions are dropped silently.
		return m, nil
	}

	m.textarea.Reset()
	m.suggestions = nil
	m.notice = ""
	m.refreshRecent()
	m.refreshTranscript()

	return m, tea.Batch(m.spin.Tick, m.sendCmd(turn))
}

func (m *Model) handleSendResult(msg SendResultMsg) (tea.Model, tea.Cmd) {
	out := m.orch.FinishSend(msg.Result)
	if !out.Applied {
		return m, nil
	}

	if out.ErrorText != "" {
		m.notice = out.ErrorText
	} else {
		m.suggestions = out.Suggestions
	}

	m.refreshRecent()
	m.refreshTranscript()
	return m, nil
}

func (m *Model) toggleTheme() {
	dark := !m.theme.IsDark
	m.theme = styles.New(dark)
	if m.prefs != nil {
		theme := "light"
		if dark {
			theme = "dark"
		}
		m.prefs.SetTheme(theme)
	}
	m.rebuildRenderer()
	m.refreshTranscript()
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}
