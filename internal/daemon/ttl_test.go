package daemon_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mcpmux/mcpmux/internal/daemon"
)

func TestIdleTimer_FiresAfterTTLWithoutTouch(t *testing.T) {
	var fired atomic.Bool
	tm := daemon.NewIdleTimer(30*time.Millisecond, func() { fired.Store(true) })
	defer tm.Stop()

	time.Sleep(80 * time.Millisecond)
	assert.True(t, fired.Load())
}

func TestIdleTimer_TouchPostponesExpiry(t *testing.T) {
	var fired atomic.Bool
	tm := daemon.NewIdleTimer(60*time.Millisecond, func() { fired.Store(true) })
	defer tm.Stop()

	// Keep touching for longer than the original TTL would have allowed.
	deadline := time.Now().Add(150 * time.Millisecond)
	for time.Now().Before(deadline) {
		tm.Touch()
		time.Sleep(10 * time.Millisecond)
	}
	assert.False(t, fired.Load())
}

func TestIdleTimer_StopPreventsFiring(t *testing.T) {
	var fired atomic.Bool
	tm := daemon.NewIdleTimer(20*time.Millisecond, func() { fired.Store(true) })
	tm.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired.Load())
	tm.Touch() // must not panic after Stop
}
