package live

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                        {}
func (nopLogger) Debug(string, ...interface{})       {}
func (nopLogger) Info(string, ...interface{})        {}
func (nopLogger) Warn(string, ...interface{})        {}
func (nopLogger) Error(msg string, _ ...interface{}) {}

type recorder struct {
	mu    sync.Mutex
	codes []string
}

func (r *recorder) notify(_, code string) {
	r.mu.Lock()
	r.codes = append(r.codes, code)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.codes...)
}

func TestBroker_StartPublishesAndRotates(t *testing.T) {
	b := NewBroker(10*time.Millisecond, nopLogger{})
	defer b.Shutdown()

	rec := new(recorder)
	initial := b.Start("sess1", rec.notify)
	require.Len(t, initial, 8) // 4 random bytes, hex encoded

	// initial code is published immediately and readable
	codes := rec.snapshot()
	require.NotEmpty(t, codes)
	assert.Equal(t, initial, codes[0])
	cur, ok := b.Current("sess1")
	require.True(t, ok)
	assert.Equal(t, initial, cur)

	// wait for a few rotations
	assert.Eventually(t, func() bool {
		cur, ok := b.Current("sess1")
		return ok && cur != initial
	}, time.Second, 5*time.Millisecond)

	cur, ok = b.Current("sess1")
	require.True(t, ok)
	codes = rec.snapshot()
	assert.Contains(t, codes, cur) // Current always matches the last published code
}

func TestBroker_RestartReplacesWindow(t *testing.T) {
	b := NewBroker(time.Hour, nopLogger{}) // no rotation during the test
	defer b.Shutdown()

	rec := new(recorder)
	first := b.Start("sess1", rec.notify)
	second := b.Start("sess1", rec.notify)
	assert.NotEqual(t, first, second)

	cur, ok := b.Current("sess1")
	require.True(t, ok)
	assert.Equal(t, second, cur) // only the fresh window is live
}

func TestBroker_StopEndsWindow(t *testing.T) {
	b := NewBroker(10*time.Millisecond, nopLogger{})
	defer b.Shutdown()

	rec := new(recorder)
	b.Start("sess1", rec.notify)
	b.Stop("sess1")

	_, ok := b.Current("sess1")
	assert.False(t, ok)

	// no tick lands after Stop returns
	n := len(rec.snapshot())
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, rec.snapshot(), n)

	b.Stop("sess1") // no-op
}

func TestBroker_CurrentUnknownSession(t *testing.T) {
	b := NewBroker(time.Hour, nopLogger{})
	defer b.Shutdown()

	_, ok := b.Current("nope")
	assert.False(t, ok)
}

func TestBroker_SessionsAreIndependent(t *testing.T) {
	b := NewBroker(time.Hour, nopLogger{})
	defer b.Shutdown()

	c1 := b.Start("sess1", nil)
	c2 := b.Start("sess2", nil)
	assert.NotEqual(t, c1, c2)

	b.Stop("sess1")
	_, ok := b.Current("sess1")
	assert.False(t, ok)
	cur, ok := b.Current("sess2")
	require.True(t, ok)
	assert.Equal(t, c2, cur)
}
