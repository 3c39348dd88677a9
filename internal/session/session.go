// Copyright (c) 2025 Tong Gia Bao (BaroDev)
// SPDX-License-Identifier: MIT

// Package session provides the session identity for the remote chat API.
package session

import (
	"crypto/rand"
	"strconv"
	"sync"
	"time"
)

// suffixLength is the number of base-36 characters appended to the
// timestamp component. Nine characters (~46 bits) make collisions within
// one backend deployment vanishingly unlikely; there is no recovery path
// for a collision, only the generation guarantee.
const suffixLength = 9

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// =============================================================================
// PROVIDER
// =============================================================================

// Provider hands out the session identifier that correlates all requests
// to the remote chat API for one run of the client. The id is minted
// lazily on first use and cached for the life of the process, mirroring
// the per-tab session of the original web client. Reset discards the
// cached value so the next Get mints a fresh one.
type Provider struct {
	mu sync.Mutex
	id string
}

// NewProvider creates an empty provider. No id is generated until Get.
func NewProvider() *Provider {
	return &Provider{}
}

// Get returns the current session id, minting one on first call.
func (p *Provider) Get() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.id == "" {
		p.id = generateSessionID()
	}
	return p.id
}

// Reset discards the cached session id. The next Get returns a new one.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.id = ""
}

// =============================================================================
// ID GENERATION
// =============================================================================

// generateSessionID combines a millisecond timestamp with a random base-36
// suffix: session_<unix-ms>_<suffix>.
func generateSessionID() string {
	return "session_" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + randBase36(suffixLength)
}

// randBase36 returns n cryptographically random base-36 characters.
func randBase36(n int) string {
	buf := make([]byte, n)
	rand.Read(buf)
	for i, b := range buf {
		buf[i] = base36[int(b)%len(base36)]
	}
	return string(buf)
}
