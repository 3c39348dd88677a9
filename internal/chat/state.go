// Copyright (c) 2025 Tong Gia Bao (BaroDev)
// SPDX-License-Identifier: MIT

package chat

import (
	"github.com/barodev/chatcv-tui/internal/session"
)

// MessageSink receives the durable copy of every message appended while a
// persisted chat is active. The conversation store implements it.
type MessageSink interface {
	AddMessage(chatID, role, content string)
}

// =============================================================================
// STATE
// =============================================================================

// State is the transient, per-run conversation state: the selected mode,
// the active chat reference, the content-only message log transmitted to
// the remote API, and the in-flight guard.
//
// Invariant: when currentChatID is set, the history is the content-only
// projection of that chat's persisted messages. AddMessage maintains this
// by dual-writing to the sink.
type State struct {
	sessions *session.Provider
	sink     MessageSink

	currentMode   Mode
	history       []Message
	isTyping      bool
	currentChatID string
}

// NewState creates a chat state with no mode selected and no active chat.
func NewState(sessions *session.Provider, sink MessageSink) *State {
	return &State{
		sessions: sessions,
		sink:     sink,
		history:  make([]Message, 0),
	}
}

// SessionID returns the session id for outgoing requests.
func (s *State) SessionID() string {
	return s.sessions.Get()
}

// ResetSession discards the session id so the next request mints a new one.
func (s *State) ResetSession() {
	s.sessions.Reset()
}

// =============================================================================
// MESSAGE LOG
// =============================================================================

// AddMessage appends to the transient history and forwards the message to
// the durable store when a persisted chat is active.
func (s *State) AddMessage(role, content string) {
	s.history = append(s.history, Message{Role: role, Content: content})

	if s.currentChatID != "" && s.sink != nil {
		s.sink.AddMessage(s.currentChatID, role, content)
	}
}

// History returns a copy of the conversational context.
func (s *State) History() []Message {
	out := make([]Message, len(s.history))
	copy(out, s.history)
	return out
}

// HistoryLen returns the number of messages in the transient log.
func (s *State) HistoryLen() int {
	return len(s.history)
}

// ClearHistory empties the transient log and detaches the active chat.
func (s *State) ClearHistory() {
	s.history = make([]Message, 0)
	s.currentChatID = ""
}

// LoadFromPersisted replaces the transient log with the content-only
// projection of a loaded chat's messages.
func (s *State) LoadFromPersisted(messages []Message) {
	s.history = make([]Message, len(messages))
	copy(s.history, messages)
}

// =============================================================================
// MODE AND CHAT POINTER
// =============================================================================

// SetMode selects the current mode.
func (s *State) SetMode(mode Mode) {
	s.currentMode = mode
}

// ClearMode deselects the mode; input must be rejected until one is chosen.
func (s *State) ClearMode() {
	s.currentMode = ""
}

// Mode returns the current mode ("" when none is selected).
func (s *State) Mode() Mode {
	return s.currentMode
}

// ModeSet reports whether a mode has been selected.
func (s *State) ModeSet() bool {
	return s.currentMode != ""
}

// BackendMode returns the wire-level token for the current mode.
func (s *State) BackendMode() string {
	return s.currentMode.Backend()
}

// SetCurrentChat points the state at a persisted chat.
func (s *State) SetCurrentChat(id string) {
	s.currentChatID = id
}

// CurrentChatID returns the active chat id ("" when none).
func (s *State) CurrentChatID() string {
	return s.currentChatID
}

// SetTyping sets the in-flight request guard.
func (s *State) SetTyping(typing bool) {
	s.isTyping = typing
}

// IsTyping reports whether a send is in flight.
func (s *State) IsTyping() bool {
	return s.isTyping
}
