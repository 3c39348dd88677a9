// Copyright (c) 2025 Tong Gia Bao (BaroDev)
// SPDX-License-Identifier: MIT

package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"truncated with ellipsis", "hello world", 5, "hello..."},
		{"zero max", "hello", 0, ""},
		{"unicode safe", "xin chào các bạn", 8, "xin chào..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.input, tt.maxRunes); got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.input, tt.maxRunes, got, tt.want)
			}
		})
	}
}

func TestTruncateWidth(t *testing.T) {
	if got := TruncateWidth("hello", 10); got != "hello" {
		t.Errorf("TruncateWidth short = %q", got)
	}
	got := TruncateWidth("hello world and more", 10)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("TruncateWidth long = %q, want ellipsis suffix", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("PadRight = %q, want %q", got, "ab   ")
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Now()

	if got := RelativeTime(now.Add(-10 * time.Second)); got != "just now" {
		t.Errorf("seconds ago = %q", got)
	}
	if got := RelativeTime(now.Add(-5 * time.Minute)); got != "5m ago" {
		t.Errorf("minutes ago = %q", got)
	}
	if got := RelativeTime(now.Add(-3 * time.Hour)); got != "3h ago" {
		t.Errorf("hours ago = %q", got)
	}
	if got := RelativeTime(now.Add(-48 * time.Hour)); got != "2d ago" {
		t.Errorf("days ago = %q", got)
	}
}

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.json")

	if err := AtomicWriteFile(path, []byte(`{"ok":true}`), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("content = %q", data)
	}

	// Overwrite must replace, not append.
	if err := AtomicWriteFile(path, []byte("v2"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile overwrite failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "v2" {
		t.Errorf("content after overwrite = %q", data)
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(filepath.Dir(path))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}
