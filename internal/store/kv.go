// Copyright (c) 2025 Tong Gia Bao (BaroDev)
// SPDX-License-Identifier: MIT

// Package store persists chat threads and small preferences in a local
// key-value store, mirroring the per-origin storage of the web client.
package store

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/barodev/chatcv-tui/internal/util"
)

// Storage keys. These match the keys of the original web client so the
// persisted layout stays recognizable.
const (
	chatHistoryKey = "chatbot_chat_history"
	currentChatKey = "chatbot_current_chat"
	themeKey       = "chatbot_theme"
	lastModeKey    = "chatbot_last_mode"
)

// ErrKeyNotFound is returned by KV.Get for absent keys.
var ErrKeyNotFound = errors.New("key not found")

// KV is the durable key-value backend. Values are small JSON blobs.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// =============================================================================
// FILE BACKEND
// =============================================================================

// fileKV stores each key as one JSON file in a directory. Writes are
// atomic so a crash never leaves a half-written blob.
type fileKV struct {
	dir string
}

// OpenFileKV creates a file-backed KV rooted at dir.
func OpenFileKV(dir string) (KV, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &fileKV{dir: dir}, nil
}

func (f *fileKV) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *fileKV) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return data, nil
}

func (f *fileKV) Set(key string, value []byte) error {
	return util.AtomicWriteFile(f.path(key), value, 0644)
}

func (f *fileKV) Delete(key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (f *fileKV) Close() error {
	return nil
}
