// Copyright (c) 2025 Tong Gia Bao (BaroDev)
// SPDX-License-Identifier: MIT

// Package orchestrator ties session, state, store and the remote client
// together into the chat state machine driven by the presentation layer.
//
// All methods except Execute must be called from the presenter's single
// event loop. Execute performs network I/O and is safe to run from a
// worker goroutine; its result is handed back to the loop via FinishSend.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/barodev/chatcv-tui/internal/api"
	"github.com/barodev/chatcv-tui/internal/chat"
	"github.com/barodev/chatcv-tui/internal/store"
)

// MaxMessageRunes is the ceiling on outgoing message length.
const MaxMessageRunes = 5000

// User-facing failure wording for the primary send.
const (
	connectivityErrorText = "Unable to connect to the server. Please check your internet connection and try again."
	genericErrorText      = "Sorry, I encountered an error. Please try again later."
)

// Silent rejections: the presenter drops these without rendering anything.
var (
	ErrBusy         = errors.New("a request is already in flight")
	ErrEmptyMessage = errors.New("empty message")
)

// Warning is a validation failure surfaced to the user as an inline
// assistant-style message. It never reaches the wire.
type Warning struct {
	Text string
}

func (w *Warning) Error() string {
	return w.Text
}

var (
	// ErrNoModeSelected rejects input before a mode is chosen.
	ErrNoModeSelected = &Warning{Text: "Please select a chat mode first."}

	// ErrMessageTooLong rejects messages over MaxMessageRunes.
	ErrMessageTooLong = &Warning{Text: "That message is too long. Please keep it under 5000 characters."}
)

// ChatAPI is the remote surface the orchestrator drives. *api.Client
// implements it; tests substitute a fake.
type ChatAPI interface {
	SendMessage(ctx context.Context, message, mode, sessionID string, history []chat.Message) (string, error)
	GetSuggestions(ctx context.Context, question, mode string) []string
	ClearSession(ctx context.Context, sessionID string)
}

// =============================================================================
// TURN TYPES
// =============================================================================

// Turn is the immutable snapshot of one outgoing round trip, captured by
// BeginSend on the event loop and carried into Execute.
type Turn struct {
	Epoch     uint64
	Message   string
	Mode      string
	SessionID string
	History   []chat.Message
}

// Result is what Execute produced for a turn.
type Result struct {
	Epoch       uint64
	Answer      string
	Suggestions []string
	Err         error
}

// Outcome is FinishSend's report back to the presenter.
type Outcome struct {
	// Applied is false when the turn was stale and discarded.
	Applied bool
	// Answer is the assistant reply appended to state (success only).
	Answer string
	// Suggestions replace the presenter's suggestion set (success only).
	Suggestions []string
	// ErrorText is the user-facing failure message ("" on success).
	ErrorText string
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator is the chat state machine. The epoch counter increments on
// every operation that invalidates in-flight work (new chat, mode change,
// load, clear); a Result minted under an older epoch is discarded.
type Orchestrator struct {
	state  *chat.State
	store  *store.ConversationStore
	prefs  *store.Prefs
	client ChatAPI
	logger *zap.Logger

	epoch uint64
}

// New wires an orchestrator. prefs may be nil when last-mode persistence
// is not wanted.
func New(state *chat.State, st *store.ConversationStore, prefs *store.Prefs, client ChatAPI, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		state:  state,
		store:  st,
		prefs:  prefs,
		client: client,
		logger: logger,
	}
}

// State exposes the transient conversation state to presenters.
func (o *Orchestrator) State() *chat.State {
	return o.state
}

// Store exposes the conversation store to presenters.
func (o *Orchestrator) Store() *store.ConversationStore {
	return o.store
}

// =============================================================================
// SEND ROUND TRIP
// =============================================================================

// BeginSend validates the message and transitions into the awaiting
// state: creates the persisted chat when this is the first message of a
// fresh conversation, appends the user message, raises the typing guard,
// and snapshots everything Execute needs.
func (o *Orchestrator) BeginSend(text string) (*Turn, error) {
	if o.state.IsTyping() {
		return nil, ErrBusy
	}
	if !o.state.ModeSet() {
		return nil, ErrNoModeSelected
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}
	if len([]rune(trimmed)) > MaxMessageRunes {
		return nil, ErrMessageTooLong
	}

	if o.state.CurrentChatID() == "" {
		c := o.store.CreateChat(o.state.Mode(), trimmed)
		o.state.SetCurrentChat(c.ID)
	}

	o.state.SetTyping(true)
	o.state.AddMessage(chat.RoleUser, trimmed)

	return &Turn{
		Epoch:     o.epoch,
		Message:   trimmed,
		Mode:      o.state.BackendMode(),
		SessionID: o.state.SessionID(),
		History:   o.state.History(),
	}, nil
}

// Execute performs the network round trip for a turn: the primary send,
// then a best-effort suggestions fetch for the same turn. Safe to call
// off the event loop.
func (o *Orchestrator) Execute(ctx context.Context, turn *Turn) *Result {
	answer, err := o.client.SendMessage(ctx, turn.Message, turn.Mode, turn.SessionID, turn.History)
	if err != nil {
		o.logger.Warn("send failed",
			zap.String("mode", turn.Mode),
			zap.Error(err))
		return &Result{Epoch: turn.Epoch, Err: err}
	}

	return &Result{
		Epoch:       turn.Epoch,
		Answer:      answer,
		Suggestions: o.client.GetSuggestions(ctx, turn.Message, turn.Mode),
	}
}

// FinishSend applies a completed turn on the event loop. A result minted
// under an older epoch belongs to an abandoned conversation and is
// discarded untouched.
func (o *Orchestrator) FinishSend(res *Result) Outcome {
	if res.Epoch != o.epoch {
		return Outcome{Applied: false}
	}

	o.state.SetTyping(false)

	if res.Err != nil {
		return Outcome{Applied: true, ErrorText: errorText(res.Err)}
	}

	o.state.AddMessage(chat.RoleAssistant, res.Answer)
	return Outcome{
		Applied:     true,
		Answer:      res.Answer,
		Suggestions: res.Suggestions,
	}
}

// SendMessage runs the full round trip synchronously. Used by the REPL
// and anywhere blocking on the network is acceptable.
func (o *Orchestrator) SendMessage(ctx context.Context, text string) (Outcome, error) {
	turn, err := o.BeginSend(text)
	if err != nil {
		return Outcome{}, err
	}
	return o.FinishSend(o.Execute(ctx, turn)), nil
}

// =============================================================================
// CONVERSATION LIFECYCLE
// =============================================================================

// ChangeMode selects a chat mode. Switching away from an active mode
// discards the current conversation; mode switches always start fresh.
func (o *Orchestrator) ChangeMode(name string) error {
	mode, ok := chat.ParseMode(name)
	if !ok {
		return &Warning{Text: fmt.Sprintf("Unknown chat mode %q.", name)}
	}

	prev := o.state.Mode()
	o.state.SetMode(mode)
	if o.prefs != nil {
		o.prefs.SetLastMode(mode)
	}

	if prev != "" && prev != mode {
		o.discardConversation()
	}
	return nil
}

// StartNewChat abandons the current conversation entirely: mode cleared,
// history and chat pointer dropped, remote session cleared best-effort,
// session id regenerated.
func (o *Orchestrator) StartNewChat() {
	o.discardConversation()
	o.state.ClearMode()
	o.state.ResetSession()
}

// LoadChatFromHistory resumes a persisted chat: makes it current, adopts
// its mode, and replays its messages into the transient state. Unknown
// ids return store.ErrChatNotFound and change nothing.
func (o *Orchestrator) LoadChatFromHistory(chatID string) (*store.Chat, error) {
	c, err := o.store.LoadChat(chatID)
	if err != nil {
		return nil, err
	}

	o.epoch++
	o.state.SetTyping(false)
	o.state.SetMode(c.Mode)
	o.state.SetCurrentChat(c.ID)
	o.state.LoadFromPersisted(c.History())

	if o.prefs != nil {
		o.prefs.SetLastMode(c.Mode)
	}
	return c, nil
}

// DeleteChatFromHistory removes a persisted chat. Deleting the active
// chat behaves as StartNewChat.
func (o *Orchestrator) DeleteChatFromHistory(chatID string) {
	wasActive := o.state.CurrentChatID() == chatID
	o.store.DeleteChat(chatID)
	if wasActive {
		o.StartNewChat()
	}
}

// ClearAllHistory deletes every persisted chat and abandons the current
// conversation.
func (o *Orchestrator) ClearAllHistory() {
	o.store.ClearAll()
	o.StartNewChat()
}

// discardConversation drops the transient conversation and detaches the
// persisted chat, telling the remote side to forget its session state.
// Bumping the epoch strands any in-flight turn.
func (o *Orchestrator) discardConversation() {
	o.epoch++
	o.state.SetTyping(false)

	sessionID := o.state.SessionID()
	go o.client.ClearSession(context.Background(), sessionID)

	o.state.ClearHistory()
	o.store.ClearCurrent()
}

// =============================================================================
// HELPERS
// =============================================================================

// errorText picks the user-facing wording for a failed send. A
// *api.RemoteError means the server responded; anything else is treated
// as a connectivity failure.
func errorText(err error) string {
	var remoteErr *api.RemoteError
	if errors.As(err, &remoteErr) {
		return genericErrorText
	}
	return connectivityErrorText
}
