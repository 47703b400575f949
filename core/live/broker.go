package live

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	mrand "math/rand"
	"sync"
	"time"

	"github.com/trezcool/kelasi/core"
)

// RotationInterval is how often a live session's presence code changes.
const RotationInterval = 5 * time.Second

const codeBytes = 4

// NotifyFunc receives every code published for a session, the initial one included.
type NotifyFunc func(sessionID, code string)

type (
	// Broker owns the live presence windows: one rotating code per started
	// session, regenerated on a fixed interval until the window is stopped.
	// A single Broker instance is shared by the realtime connections (which
	// start/stop windows and receive rotations) and the attendance resolver
	// (which reads the current code to verify claims).
	Broker struct {
		mu       sync.Mutex
		windows  map[string]*window
		interval time.Duration
		logger   core.Logger
	}

	window struct {
		code   string
		notify NotifyFunc
		stop   chan struct{}
	}
)

func NewBroker(interval time.Duration, logger core.Logger) *Broker {
	if interval <= 0 {
		interval = RotationInterval
	}
	return &Broker{
		windows:  make(map[string]*window),
		interval: interval,
		logger:   logger,
	}
}

// Start opens a live window for the session and returns its initial code.
// Any window already open for the session is discarded first: restarting is
// idempotent, always begins a fresh window and never leaks a rotation timer.
func (b *Broker) Start(sessionID string, notify NotifyFunc) string {
	// the rotate goroutine owns w.code once spawned; publish the local copy
	code := generateCode()
	w := &window{
		code:   code,
		notify: notify,
		stop:   make(chan struct{}),
	}

	b.mu.Lock()
	if old, ok := b.windows[sessionID]; ok {
		close(old.stop)
	}
	b.windows[sessionID] = w
	b.mu.Unlock()

	go b.rotate(sessionID, w)

	b.logger.Debug(fmt.Sprintf("live: window started for session %s", sessionID))
	if notify != nil {
		notify(sessionID, code)
	}
	return code
}

// rotate regenerates the window's code every interval until the window is
// stopped or replaced. The new code is stored under the lock; subscribers are
// notified outside it.
func (b *Broker) rotate(sessionID string, w *window) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			code := generateCode()

			b.mu.Lock()
			if b.windows[sessionID] != w { // stopped or replaced; stale tick
				b.mu.Unlock()
				return
			}
			w.code = code
			b.mu.Unlock()

			if w.notify != nil {
				w.notify(sessionID, code)
			}
		}
	}
}

// Stop closes the session's live window. Once Stop returns, Current reports
// no code and no further rotation is published. Stopping a session with no
// window is a no-op.
func (b *Broker) Stop(sessionID string) {
	b.mu.Lock()
	if w, ok := b.windows[sessionID]; ok {
		delete(b.windows, sessionID)
		close(w.stop)
		b.logger.Debug(fmt.Sprintf("live: window stopped for session %s", sessionID))
	}
	b.mu.Unlock()
}

// Current returns the session's current code, if it has a live window.
func (b *Broker) Current(sessionID string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[sessionID]
	if !ok {
		return "", false
	}
	return w.code, true
}

// Shutdown closes every live window; used on process teardown.
func (b *Broker) Shutdown() {
	b.mu.Lock()
	for id, w := range b.windows {
		delete(b.windows, id)
		close(w.stop)
	}
	b.mu.Unlock()
}

func generateCode() string {
	buf := make([]byte, codeBytes)
	if _, err := rand.Read(buf); err != nil {
		binary.BigEndian.PutUint32(buf, mrand.Uint32())
	}
	return hex.EncodeToString(buf)
}
