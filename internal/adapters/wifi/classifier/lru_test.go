package classifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRUAllowSuppressesWithinWindow(t *testing.T) {
	l := newLRU(64)
	base := time.Now()

	assert.True(t, l.allowAt("a", base))
	assert.False(t, l.allowAt("a", base.Add(500*time.Millisecond)))
	assert.False(t, l.allowAt("a", base.Add(999*time.Millisecond)))
}

func TestLRUAllowReAllowsAfterWindowElapses(t *testing.T) {
	l := newLRU(64)
	base := time.Now()

	assert.True(t, l.allowAt("a", base))
	assert.True(t, l.allowAt("a", base.Add(1000*time.Millisecond)))
	assert.True(t, l.allowAt("a", base.Add(2500*time.Millisecond)))
}

func TestLRUAllowEvictsOldestPastCapacity(t *testing.T) {
	l := newLRU(2)
	base := time.Now()

	assert.True(t, l.allowAt("a", base))
	assert.True(t, l.allowAt("b", base))
	assert.True(t, l.allowAt("c", base))

	// "a" was the oldest entry and should have been evicted, so it is
	// allowed again immediately even though the window has not elapsed.
	assert.True(t, l.allowAt("a", base))
}
