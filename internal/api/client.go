// Copyright (c) 2025 Tong Gia Bao (BaroDev)
// SPDX-License-Identifier: MIT

// Package api is the client for the remote portfolio chatbot API.
//
// The API exposes three independent request/response operations: the
// primary send, a best-effort suggestions fetch, and a fire-and-forget
// session clear. There are no retries; each operation is a single HTTP
// round trip.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/barodev/chatcv-tui/internal/chat"
)

// DefaultBaseURL points at the hosted backend.
const DefaultBaseURL = "https://chatbotcv-backend-2.onrender.com/"

// DefaultTimeout is the transport timeout for all requests. The backend
// cold-starts on its free tier, so this is generous.
const DefaultTimeout = 60 * time.Second

// maxResponseSize caps response bodies to keep a misbehaving server from
// exhausting memory.
const maxResponseSize = 4 * 1024 * 1024

// sharedHTTPClient pools connections across all requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
	Timeout: DefaultTimeout,
}

// =============================================================================
// ERRORS
// =============================================================================

// RemoteError is a non-success response from the chat endpoint. Detail
// carries the server-provided message when the error body had one.
type RemoteError struct {
	Status int
	Detail string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

// =============================================================================
// WIRE TYPES
// =============================================================================

type chatRequest struct {
	Message             string         `json:"message"`
	ChatMode            string         `json:"chat_mode"`
	SessionID           string         `json:"session_id"`
	ConversationHistory []chat.Message `json:"conversation_history"`
}

// ChatResponse is the successful reply of the chat endpoint.
type ChatResponse struct {
	Answer string `json:"answer"`
}

type suggestionsRequest struct {
	CurrentQuestion string `json:"current_question"`
	ChatMode        string `json:"chat_mode"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

type clearSessionRequest struct {
	SessionID string `json:"session_id"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the remote chat API. It is stateless; all conversation
// context travels with each request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for the given base URL. An empty base URL
// falls back to DefaultBaseURL.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: sharedHTTPClient,
		logger:     logger,
	}
}

// SendMessage posts a user message with its conversational context and
// returns the assistant's answer. Non-2xx statuses and transport failures
// surface as errors; a *RemoteError means the server responded.
func (c *Client) SendMessage(ctx context.Context, message, mode, sessionID string, history []chat.Message) (string, error) {
	if history == nil {
		history = []chat.Message{}
	}

	body := chatRequest{
		Message:             message,
		ChatMode:            mode,
		SessionID:           sessionID,
		ConversationHistory: history,
	}

	resp, err := c.post(ctx, "/chat", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		remoteErr := &RemoteError{Status: resp.StatusCode}
		var errBody errorResponse
		if json.Unmarshal(data, &errBody) == nil {
			remoteErr.Detail = errBody.Detail
		}
		return "", remoteErr
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(data, &chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return chatResp.Answer, nil
}

// GetSuggestions fetches follow-up question suggestions. Suggestions are
// best-effort: every failure degrades to an empty slice and is only
// logged, never returned.
func (c *Client) GetSuggestions(ctx context.Context, question, mode string) []string {
	body := suggestionsRequest{
		CurrentQuestion: question,
		ChatMode:        mode,
	}

	resp, err := c.post(ctx, "/suggestions", body)
	if err != nil {
		c.logger.Warn("suggestions request failed", zap.Error(err))
		return []string{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("suggestions request rejected", zap.Int("status", resp.StatusCode))
		return []string{}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		c.logger.Warn("failed to read suggestions", zap.Error(err))
		return []string{}
	}

	var suggResp suggestionsResponse
	if err := json.Unmarshal(data, &suggResp); err != nil {
		c.logger.Warn("failed to decode suggestions", zap.Error(err))
		return []string{}
	}
	if suggResp.Suggestions == nil {
		return []string{}
	}
	return suggResp.Suggestions
}

// ClearSession tells the backend to forget the server-side session state.
// Fire-and-forget: failures are logged and otherwise ignored.
func (c *Client) ClearSession(ctx context.Context, sessionID string) {
	resp, err := c.post(ctx, "/clear-session", clearSessionRequest{SessionID: sessionID})
	if err != nil {
		c.logger.Warn("clear-session request failed", zap.Error(err))
		return
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
	resp.Body.Close()
}

// post sends a JSON body to the given path.
func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}
