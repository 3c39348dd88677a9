// Copyright (c) 2025 Tong Gia Bao (BaroDev)
// SPDX-License-Identifier: MIT

package chat

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	conv "github.com/barodev/chatcv-tui/internal/chat"
	"github.com/barodev/chatcv-tui/internal/orchestrator"
	"github.com/barodev/chatcv-tui/internal/session"
	"github.com/barodev/chatcv-tui/internal/store"
	"github.com/barodev/chatcv-tui/internal/ui/styles"
)

type stubAPI struct{}

func (stubAPI) SendMessage(_ context.Context, _, _, _ string, _ []conv.Message) (string, error) {
	return "stub answer", nil
}
func (stubAPI) GetSuggestions(_ context.Context, _, _ string) []string { return []string{} }
func (stubAPI) ClearSession(_ context.Context, _ string)               {}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	kv, err := store.OpenFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("OpenFileKV failed: %v", err)
	}

	st := store.New(kv, nil)
	state := conv.NewState(session.NewProvider(), st)
	orch := orchestrator.New(state, st, store.NewPrefs(kv, nil), stubAPI{}, nil)

	m := New(orch, nil, styles.New(true), Options{Markdown: false})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModePickerShownUntilSelection(t *testing.T) {
	m := newTestModel(t)

	view := m.View()
	if !strings.Contains(view, "CV Ask") || !strings.Contains(view, "Digital Twin") {
		t.Errorf("mode picker missing mode names:\n%s", view)
	}

	m.Update(keyMsg("1"))
	if m.orch.State().Mode() != conv.ModeCV {
		t.Errorf("mode = %q after pressing 1, want cv", m.orch.State().Mode())
	}
	if strings.Contains(m.View(), "Press 1 or 2") {
		t.Error("mode picker still shown after selection")
	}
}

func TestSubmitStartsRoundTrip(t *testing.T) {
	m := newTestModel(t)
	m.Update(keyMsg("2"))

	m.textarea.SetValue("What is your name?")
	_, cmd := m.submit()
	if cmd == nil {
		t.Fatal("submit returned no command")
	}

	if !m.orch.State().IsTyping() {
		t.Error("typing guard not raised")
	}
	if m.textarea.Value() != "" {
		t.Error("input not cleared after submit")
	}
	if !strings.Contains(m.renderTranscript(), "What is your name?") {
		t.Error("user message missing from transcript")
	}
}

func TestSubmitEmptyIsSilentNoop(t *testing.T) {
	m := newTestModel(t)
	m.Update(keyMsg("1"))

	m.textarea.SetValue("   ")
	_, cmd := m.submit()
	if cmd != nil {
		t.Error("empty submit produced a command")
	}
	if m.notice != "" {
		t.Errorf("empty submit produced a notice: %q", m.notice)
	}
}

func TestSendResultAppliesAnswerAndSuggestions(t *testing.T) {
	m := newTestModel(t)
	m.Update(keyMsg("1"))
	m.textarea.SetValue("skills?")
	m.submit()

	m.Update(SendResultMsg{Result: &orchestrator.Result{
		Epoch:       0,
		Answer:      "Go, mostly.",
		Suggestions: []string{"Which projects?"},
	}})

	if m.orch.State().IsTyping() {
		t.Error("typing guard still raised after result")
	}
	if !strings.Contains(m.renderTranscript(), "Go, mostly.") {
		t.Error("assistant answer missing from transcript")
	}
	if len(m.suggestions) != 1 || m.suggestions[0] != "Which projects?" {
		t.Errorf("suggestions = %v", m.suggestions)
	}
	if !strings.Contains(m.View(), "Which projects?") {
		t.Error("suggestion chip not rendered")
	}
}

func TestSendFailureShowsNotice(t *testing.T) {
	m := newTestModel(t)
	m.Update(keyMsg("1"))
	m.textarea.SetValue("hello?")
	m.submit()

	m.Update(SendResultMsg{Result: &orchestrator.Result{
		Epoch: 0,
		Err:   context.DeadlineExceeded,
	}})

	if m.notice == "" {
		t.Error("failed send produced no notice")
	}
	if !strings.Contains(m.View(), m.notice) {
		t.Error("notice not rendered")
	}
}

func TestSidebarToggleAndNavigation(t *testing.T) {
	m := newTestModel(t)
	m.Update(keyMsg("1"))

	// Seed two chats directly through the orchestrator.
	if _, err := m.orch.SendMessage(context.Background(), "first"); err != nil {
		t.Fatal(err)
	}
	m.orch.StartNewChat()
	m.orch.ChangeMode("cv")
	if _, err := m.orch.SendMessage(context.Background(), "second"); err != nil {
		t.Fatal(err)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlH})
	if !m.showSidebar || m.focus != focusSidebar {
		t.Fatal("ctrl+h did not open sidebar")
	}
	if len(m.recent) != 2 {
		t.Fatalf("recent = %d chats, want 2", len(m.recent))
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.sidebarIdx != 1 {
		t.Errorf("sidebarIdx = %d after down, want 1", m.sidebarIdx)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.orch.State().HistoryLen() != 2 {
		t.Errorf("history len = %d after loading chat, want 2", m.orch.State().HistoryLen())
	}
	if m.focus != focusInput {
		t.Error("focus not returned to input after load")
	}
}

func TestThemeToggle(t *testing.T) {
	m := newTestModel(t)
	wasDark := m.theme.IsDark

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	if m.theme.IsDark == wasDark {
		t.Error("ctrl+t did not flip the theme")
	}
}
