// Copyright (c) 2025 Tong Gia Bao (BaroDev)
// SPDX-License-Identifier: MIT

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/barodev/chatcv-tui/internal/orchestrator"
)

// =============================================================================
// MESSAGES
// =============================================================================

// SendResultMsg carries a completed round trip back into the update loop.
type SendResultMsg struct {
	Result *orchestrator.Result
}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// sendCmd runs the network round trip for a turn off the update loop.
func (m *Model) sendCmd(turn *orchestrator.Turn) tea.Cmd {
	timeout := m.opts.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return SendResultMsg{Result: m.orch.Execute(ctx, turn)}
	}
}
