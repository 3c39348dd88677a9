// Copyright (c) 2025 Tong Gia Bao (BaroDev)
// SPDX-License-Identifier: MIT

// Package chat holds the transient conversation state and the chat modes.
package chat

// =============================================================================
// ROLES
// =============================================================================

// Message roles as transmitted to the remote API.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of the conversational context sent to the remote
// API: role and content only, no timestamps.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// =============================================================================
// MODES
// =============================================================================

// Mode is a conversational persona selectable by the user.
type Mode string

const (
	// ModeCV chats with the assistant about career, skills and projects.
	ModeCV Mode = "cv"

	// ModeDigitalTwin chats with the digital twin persona.
	ModeDigitalTwin Mode = "digital-twin"
)

// backendModes translates the UI-facing mode into the token the remote
// API expects. The digital twin mode maps to a different wire token.
var backendModes = map[Mode]string{
	ModeCV:          "cv",
	ModeDigitalTwin: "human_chat",
}

// titleMarkers prefix chat titles derived from the first user message.
var titleMarkers = map[Mode]string{
	ModeCV:          "💼",
	ModeDigitalTwin: "🤖",
}

// Modes lists all recognized modes in display order.
func Modes() []Mode {
	return []Mode{ModeCV, ModeDigitalTwin}
}

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, bool) {
	m := Mode(s)
	return m, m.Valid()
}

// Valid reports whether the mode is in the recognized set.
func (m Mode) Valid() bool {
	_, ok := backendModes[m]
	return ok
}

// Backend returns the wire-level mode token. Unrecognized modes pass
// through unchanged, matching the original client's fallback.
func (m Mode) Backend() string {
	if backend, ok := backendModes[m]; ok {
		return backend
	}
	return string(m)
}

// Marker returns the title marker for the mode.
func (m Mode) Marker() string {
	if marker, ok := titleMarkers[m]; ok {
		return marker
	}
	return "🤖"
}

// DisplayName returns the human-facing mode name.
func (m Mode) DisplayName() string {
	switch m {
	case ModeCV:
		return "CV Ask"
	case ModeDigitalTwin:
		return "Digital Twin"
	default:
		return string(m)
	}
}

// Description returns the welcome description for the mode.
func (m Mode) Description() string {
	switch m {
	case ModeCV:
		return "Chat with Jarvis, my assistant. She can tell you about my education, work and personal projects."
	case ModeDigitalTwin:
		return "Chat with Bora, my digital twin. The goal is that you cannot tell which one of us is the real me."
	default:
		return "Start chatting!"
	}
}

// Examples returns suggested opening questions for the mode.
func (m Mode) Examples() []string {
	switch m {
	case ModeCV:
		return []string{
			"What is your work experience like?",
			"What technical skills do you have?",
			"Which projects have you built?",
			"Have you graduated yet?",
		}
	case ModeDigitalTwin:
		return []string{
			"What is your name?",
			"Do you have a girlfriend?",
			"Who are your closest friends?",
			"Tell me about your childhood",
		}
	default:
		return []string{"Hello!"}
	}
}
