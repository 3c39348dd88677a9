// Copyright (c) 2025 Tong Gia Bao (BaroDev)
// SPDX-License-Identifier: MIT

package store

import (
	"errors"

	"go.uber.org/zap"

	"github.com/barodev/chatcv-tui/internal/chat"
)

// Theme preference values.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// =============================================================================
// PREFERENCES
// =============================================================================

// Prefs reads and writes the small persistent preferences that share the
// KV backend with the chat collection: theme and last-used mode. Failures
// follow the same policy as the store: log, fall back to defaults.
type Prefs struct {
	kv     KV
	logger *zap.Logger
}

// NewPrefs creates a preference accessor over the backend.
func NewPrefs(kv KV, logger *zap.Logger) *Prefs {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prefs{kv: kv, logger: logger}
}

// Theme returns the stored theme preference, defaulting to ThemeLight.
func (p *Prefs) Theme() string {
	data, err := p.kv.Get(themeKey)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			p.logger.Warn("failed to load theme preference", zap.Error(err))
		}
		return ThemeLight
	}
	if theme := string(data); theme == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// ThemeSet reports whether a theme preference was ever stored.
func (p *Prefs) ThemeSet() bool {
	_, err := p.kv.Get(themeKey)
	return err == nil
}

// SetTheme stores the theme preference.
func (p *Prefs) SetTheme(theme string) {
	if err := p.kv.Set(themeKey, []byte(theme)); err != nil {
		p.logger.Warn("failed to save theme preference", zap.Error(err))
	}
}

// LastMode returns the most recently selected mode, or "" when none was
// stored or the stored value is no longer recognized.
func (p *Prefs) LastMode() chat.Mode {
	data, err := p.kv.Get(lastModeKey)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			p.logger.Warn("failed to load last mode", zap.Error(err))
		}
		return ""
	}
	if mode, ok := chat.ParseMode(string(data)); ok {
		return mode
	}
	return ""
}

// SetLastMode stores the most recently selected mode.
func (p *Prefs) SetLastMode(mode chat.Mode) {
	if err := p.kv.Set(lastModeKey, []byte(mode)); err != nil {
		p.logger.Warn("failed to save last mode", zap.Error(err))
	}
}
