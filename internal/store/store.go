// Copyright (c) 2025 Tong Gia Bao (BaroDev)
// SPDX-License-Identifier: MIT

package store

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/barodev/chatcv-tui/internal/chat"
)

// DefaultRecentLimit bounds ListRecent when no limit is given.
const DefaultRecentLimit = 20

// titleMaxRunes is where first-message titles get cut.
const titleMaxRunes = 50

// ErrChatNotFound is returned when a chat id is not in the collection.
var ErrChatNotFound = errors.New("chat not found")

// =============================================================================
// TYPES
// =============================================================================

// Chat is one persisted conversation thread.
type Chat struct {
	ID          string    `json:"id"`
	Mode        chat.Mode `json:"mode"`
	Title       string    `json:"title"`
	Timestamp   time.Time `json:"timestamp"`
	LastUpdated time.Time `json:"lastUpdated"`
	Messages    []Message `json:"messages"`
}

// Message is one persisted chat message.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// History returns the content-only projection transmitted to the remote
// API when this chat is resumed.
func (c *Chat) History() []chat.Message {
	out := make([]chat.Message, len(c.Messages))
	for i, m := range c.Messages {
		out[i] = chat.Message{Role: m.Role, Content: m.Content}
	}
	return out
}

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore keeps the chat collection in memory and writes it
// through to the KV backend after every mutation. Storage failures never
// propagate to callers: a failed read degrades to an empty collection, a
// failed write is logged and the in-memory state stays authoritative.
type ConversationStore struct {
	kv     KV
	logger *zap.Logger

	chats     []*Chat // insertion order, newest first
	currentID string
}

// New creates a store over the given backend and loads the persisted
// collection and current-chat pointer.
func New(kv KV, logger *zap.Logger) *ConversationStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ConversationStore{kv: kv, logger: logger}
	s.load()
	return s
}

func (s *ConversationStore) load() {
	s.chats = make([]*Chat, 0)

	data, err := s.kv.Get(chatHistoryKey)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			s.logger.Warn("failed to load chat history", zap.Error(err))
		}
	} else if err := json.Unmarshal(data, &s.chats); err != nil {
		s.logger.Warn("corrupt chat history, starting empty", zap.Error(err))
		s.chats = make([]*Chat, 0)
	}

	if data, err := s.kv.Get(currentChatKey); err == nil {
		s.currentID = string(data)
	}

	// A dangling pointer can survive a partial clear; drop it.
	if s.currentID != "" {
		if _, ok := s.find(s.currentID); !ok {
			s.currentID = ""
		}
	}
}

func (s *ConversationStore) find(id string) (*Chat, bool) {
	for _, c := range s.chats {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// =============================================================================
// MUTATIONS
// =============================================================================

// CreateChat mints a new chat for the given mode, derives its title from
// the first user message, inserts it at the front of the collection and
// makes it current.
func (s *ConversationStore) CreateChat(mode chat.Mode, firstMessage string) *Chat {
	now := time.Now()
	c := &Chat{
		ID:          "chat_" + uuid.NewString(),
		Mode:        mode,
		Title:       deriveTitle(firstMessage, mode),
		Timestamp:   now,
		LastUpdated: now,
		Messages:    make([]Message, 0),
	}

	s.chats = append([]*Chat{c}, s.chats...)
	s.currentID = c.ID

	s.persistChats()
	s.persistCurrent()

	return c
}

// AddMessage appends a message to the chat and bumps its lastUpdated
// timestamp. Unknown chat ids are a silent no-op. Implements
// chat.MessageSink.
func (s *ConversationStore) AddMessage(chatID, role, content string) {
	c, ok := s.find(chatID)
	if !ok {
		return
	}

	c.Messages = append(c.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	c.LastUpdated = time.Now()

	s.persistChats()
}

// SetTitle overwrites a chat's title. Unknown ids are a no-op.
func (s *ConversationStore) SetTitle(chatID, title string) {
	c, ok := s.find(chatID)
	if !ok {
		return
	}
	c.Title = title
	s.persistChats()
}

// LoadChat makes the chat current and returns it.
func (s *ConversationStore) LoadChat(chatID string) (*Chat, error) {
	c, ok := s.find(chatID)
	if !ok {
		return nil, ErrChatNotFound
	}

	s.currentID = chatID
	s.persistCurrent()

	return c, nil
}

// DeleteChat removes the chat from the collection. Deleting the current
// chat clears the current pointer.
func (s *ConversationStore) DeleteChat(chatID string) {
	kept := s.chats[:0]
	for _, c := range s.chats {
		if c.ID != chatID {
			kept = append(kept, c)
		}
	}
	s.chats = kept

	if s.currentID == chatID {
		s.currentID = ""
		s.persistCurrent()
	}

	s.persistChats()
}

// ClearCurrent detaches the current chat without deleting it.
func (s *ConversationStore) ClearCurrent() {
	if s.currentID == "" {
		return
	}
	s.currentID = ""
	s.persistCurrent()
}

// ClearAll empties the collection and the current pointer.
func (s *ConversationStore) ClearAll() {
	s.chats = make([]*Chat, 0)
	s.currentID = ""
	s.persistChats()
	s.persistCurrent()
}

// =============================================================================
// QUERIES
// =============================================================================

// ListRecent returns up to limit chats sorted by lastUpdated descending.
// A non-positive limit applies DefaultRecentLimit.
func (s *ConversationStore) ListRecent(limit int) []*Chat {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	out := make([]*Chat, len(s.chats))
	copy(out, s.chats)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastUpdated.After(out[j].LastUpdated)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CurrentID returns the current chat id ("" when none).
func (s *ConversationStore) CurrentID() string {
	return s.currentID
}

// Count returns the number of stored chats.
func (s *ConversationStore) Count() int {
	return len(s.chats)
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func (s *ConversationStore) persistChats() {
	data, err := json.Marshal(s.chats)
	if err != nil {
		s.logger.Warn("failed to encode chat history", zap.Error(err))
		return
	}
	if err := s.kv.Set(chatHistoryKey, data); err != nil {
		s.logger.Warn("failed to save chat history", zap.Error(err))
	}
}

func (s *ConversationStore) persistCurrent() {
	if s.currentID == "" {
		if err := s.kv.Delete(currentChatKey); err != nil {
			s.logger.Warn("failed to clear current chat pointer", zap.Error(err))
		}
		return
	}
	if err := s.kv.Set(currentChatKey, []byte(s.currentID)); err != nil {
		s.logger.Warn("failed to save current chat pointer", zap.Error(err))
	}
}

// =============================================================================
// TITLE DERIVATION
// =============================================================================

// deriveTitle builds the display title from the first user message: trim,
// rune-truncate at titleMaxRunes with an ellipsis, prepend the mode marker.
func deriveTitle(message string, mode chat.Mode) string {
	title := strings.TrimSpace(message)

	runes := []rune(title)
	if len(runes) > titleMaxRunes {
		title = string(runes[:titleMaxRunes]) + "..."
	}

	return mode.Marker() + " " + title
}
