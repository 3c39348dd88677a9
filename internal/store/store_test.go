// Copyright (c) 2025 Tong Gia Bao (BaroDev)
// SPDX-License-Identifier: MIT

package store

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/barodev/chatcv-tui/internal/chat"
)

func newTestStore(t *testing.T) (*ConversationStore, KV) {
	t.Helper()
	kv, err := OpenFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("OpenFileKV failed: %v", err)
	}
	return New(kv, nil), kv
}

func TestCreateChat_TitleAndOrdering(t *testing.T) {
	s, _ := newTestStore(t)

	c := s.CreateChat(chat.ModeCV, "Tell me about your experience")

	if c.ID == "" || !strings.HasPrefix(c.ID, "chat_") {
		t.Errorf("chat id = %q, want chat_ prefix", c.ID)
	}
	if !strings.HasPrefix(c.Title, "💼 ") {
		t.Errorf("title = %q, want cv marker prefix", c.Title)
	}
	if !strings.Contains(c.Title, "Tell me about your experience") {
		t.Errorf("title = %q, want full short message", c.Title)
	}
	if s.CurrentID() != c.ID {
		t.Errorf("current id = %q, want %q", s.CurrentID(), c.ID)
	}

	recent := s.ListRecent(0)
	if len(recent) != 1 || recent[0].ID != c.ID {
		t.Fatalf("ListRecent = %+v, want the new chat first", recent)
	}
}

func TestCreateChat_TitleTruncation(t *testing.T) {
	s, _ := newTestStore(t)

	long := strings.Repeat("a", 80)
	c := s.CreateChat(chat.ModeDigitalTwin, "  "+long+"  ")

	if !strings.HasPrefix(c.Title, "🤖 ") {
		t.Errorf("title = %q, want digital-twin marker", c.Title)
	}
	if !strings.HasSuffix(c.Title, "...") {
		t.Errorf("title = %q, want ellipsis", c.Title)
	}
	body := strings.TrimSuffix(strings.TrimPrefix(c.Title, "🤖 "), "...")
	if len([]rune(body)) != 50 {
		t.Errorf("title body has %d runes, want 50", len([]rune(body)))
	}
}

func TestAddMessage(t *testing.T) {
	s, _ := newTestStore(t)
	c := s.CreateChat(chat.ModeCV, "hi")
	created := c.LastUpdated

	time.Sleep(5 * time.Millisecond)
	s.AddMessage(c.ID, chat.RoleUser, "hi")
	s.AddMessage(c.ID, chat.RoleAssistant, "hello!")

	if len(c.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(c.Messages))
	}
	if c.Messages[0].Role != chat.RoleUser || c.Messages[1].Role != chat.RoleAssistant {
		t.Errorf("roles = %q,%q, want user,assistant", c.Messages[0].Role, c.Messages[1].Role)
	}
	if !c.LastUpdated.After(created) {
		t.Error("lastUpdated not bumped by AddMessage")
	}
}

func TestAddMessage_UnknownChatIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	s.CreateChat(chat.ModeCV, "hi")

	// Must not panic or create anything.
	s.AddMessage("chat_nope", chat.RoleUser, "lost")

	if s.Count() != 1 {
		t.Errorf("count = %d, want 1", s.Count())
	}
	if len(s.ListRecent(0)[0].Messages) != 0 {
		t.Error("message leaked into an unrelated chat")
	}
}

func TestListRecent_OrderAndLimit(t *testing.T) {
	s, _ := newTestStore(t)

	a := s.CreateChat(chat.ModeCV, "first")
	b := s.CreateChat(chat.ModeCV, "second")
	c := s.CreateChat(chat.ModeCV, "third")

	// Touch the oldest chat so it becomes the most recently updated.
	time.Sleep(5 * time.Millisecond)
	s.AddMessage(a.ID, chat.RoleUser, "bump")

	recent := s.ListRecent(2)
	if len(recent) != 2 {
		t.Fatalf("ListRecent(2) = %d chats, want 2", len(recent))
	}
	if recent[0].ID != a.ID {
		t.Errorf("most recent = %q, want bumped chat %q", recent[0].ID, a.ID)
	}
	if recent[1].ID != c.ID {
		t.Errorf("second = %q, want %q", recent[1].ID, c.ID)
	}
	_ = b
}

func TestLoadChat(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.CreateChat(chat.ModeCV, "first")
	s.CreateChat(chat.ModeDigitalTwin, "second")

	loaded, err := s.LoadChat(a.ID)
	if err != nil {
		t.Fatalf("LoadChat failed: %v", err)
	}
	if loaded.ID != a.ID || loaded.Mode != chat.ModeCV {
		t.Errorf("loaded = %+v, want chat %q", loaded, a.ID)
	}
	if s.CurrentID() != a.ID {
		t.Errorf("current = %q, want %q", s.CurrentID(), a.ID)
	}

	if _, err := s.LoadChat("chat_missing"); !errors.Is(err, ErrChatNotFound) {
		t.Errorf("err = %v, want ErrChatNotFound", err)
	}
}

func TestDeleteChat_CurrentClearsPointer(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.CreateChat(chat.ModeCV, "first")
	b := s.CreateChat(chat.ModeCV, "second")

	// Deleting a non-current chat keeps the pointer.
	s.DeleteChat(a.ID)
	if s.CurrentID() != b.ID {
		t.Errorf("current = %q, want %q", s.CurrentID(), b.ID)
	}

	// Deleting the current chat clears it.
	s.DeleteChat(b.ID)
	if s.CurrentID() != "" {
		t.Errorf("current = %q after deleting current chat, want empty", s.CurrentID())
	}
	if s.Count() != 0 {
		t.Errorf("count = %d, want 0", s.Count())
	}
}

func TestClearAll(t *testing.T) {
	s, kv := newTestStore(t)
	s.CreateChat(chat.ModeCV, "one")
	s.CreateChat(chat.ModeCV, "two")

	s.ClearAll()

	if s.Count() != 0 || s.CurrentID() != "" {
		t.Errorf("count=%d current=%q after ClearAll", s.Count(), s.CurrentID())
	}

	// A fresh store over the same backend sees the cleared state.
	if reloaded := New(kv, nil); reloaded.Count() != 0 {
		t.Errorf("reloaded count = %d, want 0", reloaded.Count())
	}
}

func TestRoundTrip(t *testing.T) {
	s, kv := newTestStore(t)
	c := s.CreateChat(chat.ModeDigitalTwin, "Bạn tên là gì?")
	s.AddMessage(c.ID, chat.RoleUser, "Bạn tên là gì?")
	s.AddMessage(c.ID, chat.RoleAssistant, "Mình là Bora!")

	reloaded := New(kv, nil)
	got, err := reloaded.LoadChat(c.ID)
	if err != nil {
		t.Fatalf("LoadChat after reload failed: %v", err)
	}

	if got.Mode != chat.ModeDigitalTwin || got.Title != c.Title {
		t.Errorf("reloaded chat = %+v", got)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("reloaded messages = %d, want 2", len(got.Messages))
	}
	if got.Messages[0].Content != "Bạn tên là gì?" || got.Messages[1].Content != "Mình là Bora!" {
		t.Errorf("message contents changed across reload: %+v", got.Messages)
	}

	history := got.History()
	if len(history) != 2 || history[1].Role != chat.RoleAssistant {
		t.Errorf("projection = %+v", history)
	}
}

func TestCurrentPointerSurvivesReload(t *testing.T) {
	s, kv := newTestStore(t)
	c := s.CreateChat(chat.ModeCV, "keep me current")

	reloaded := New(kv, nil)
	if reloaded.CurrentID() != c.ID {
		t.Errorf("reloaded current = %q, want %q", reloaded.CurrentID(), c.ID)
	}
}

func TestCorruptHistoryDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	kv, err := OpenFileKV(dir)
	if err != nil {
		t.Fatalf("OpenFileKV failed: %v", err)
	}
	if err := kv.Set(chatHistoryKey, []byte("{not json")); err != nil {
		t.Fatalf("seed corrupt blob: %v", err)
	}

	s := New(kv, nil)
	if s.Count() != 0 {
		t.Errorf("count = %d over corrupt blob, want 0", s.Count())
	}

	// The store must stay usable afterwards.
	c := s.CreateChat(chat.ModeCV, "recovered")
	if _, err := s.LoadChat(c.ID); err != nil {
		t.Errorf("store unusable after corrupt load: %v", err)
	}
}

func TestSQLiteKVRoundTrip(t *testing.T) {
	kv, err := OpenSQLiteKV(filepath.Join(t.TempDir(), "chatcv.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteKV failed: %v", err)
	}
	defer kv.Close()

	if _, err := kv.Get("missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get missing = %v, want ErrKeyNotFound", err)
	}

	if err := kv.Set("k", []byte("v1")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := kv.Set("k", []byte("v2")); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	got, err := kv.Get("k")
	if err != nil || string(got) != "v2" {
		t.Errorf("Get = %q,%v, want v2", got, err)
	}

	if err := kv.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := kv.Get("k"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get after delete = %v, want ErrKeyNotFound", err)
	}
}

func TestPrefs(t *testing.T) {
	kv, err := OpenFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("OpenFileKV failed: %v", err)
	}
	p := NewPrefs(kv, nil)

	if got := p.Theme(); got != ThemeLight {
		t.Errorf("default theme = %q, want light", got)
	}
	p.SetTheme(ThemeDark)
	if got := p.Theme(); got != ThemeDark {
		t.Errorf("theme = %q after SetTheme, want dark", got)
	}

	if got := p.LastMode(); got != "" {
		t.Errorf("default last mode = %q, want empty", got)
	}
	p.SetLastMode(chat.ModeDigitalTwin)
	if got := p.LastMode(); got != chat.ModeDigitalTwin {
		t.Errorf("last mode = %q, want digital-twin", got)
	}

	// Stale values from an older build are ignored.
	kv.Set("chatbot_last_mode", []byte("retired-mode"))
	if got := p.LastMode(); got != "" {
		t.Errorf("unrecognized last mode = %q, want empty", got)
	}
}
