package pineap

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// stopTimers cancels every pending log-task timer so a test doesn't leave
// a goroutine writing to a logger after the test has returned.
func stopTimers(t *testing.T, d *Detector) {
	t.Cleanup(func() {
		d.mu.Lock()
		for _, timer := range d.timers {
			timer.Stop()
		}
		d.mu.Unlock()
	})
}

func TestDjb2IsStable(t *testing.T) {
	assert.Equal(t, djb2("hello"), djb2("hello"))
	assert.NotEqual(t, djb2("hello"), djb2("world"))
}

func TestBeaconFlagsIsPineapAfterTwoDistinctSSIDs(t *testing.T) {
	logger := &recordingLogger{}
	d := New(logger)
	stopTimers(t, d)
	bssid := [6]byte{1, 2, 3, 4, 5, 6}

	d.Beacon(bssid, 6, -40, "NetworkOne")
	net := d.networks[bssid]
	require.NotNil(t, net)
	assert.False(t, net.IsPineap)

	d.Beacon(bssid, 6, -40, "NetworkTwo")
	assert.True(t, net.IsPineap)
	assert.Equal(t, 2, len(net.SSIDHashes))
}

func TestBeaconIgnoresRepeatedSSIDAndHiddenSentinel(t *testing.T) {
	d := New(nil)
	bssid := [6]byte{1, 2, 3, 4, 5, 6}

	d.Beacon(bssid, 1, -50, "SameNet")
	d.Beacon(bssid, 1, -50, "SameNet")
	d.Beacon(bssid, 1, -50, "<HIDDEN>")

	net := d.networks[bssid]
	require.NotNil(t, net)
	assert.Equal(t, 1, len(net.SSIDHashes))
	assert.False(t, net.IsPineap)
}

func TestBeaconRespectsTableCap(t *testing.T) {
	d := New(nil)
	for i := 0; i < TableCap+5; i++ {
		bssid := [6]byte{byte(i), byte(i >> 8), 0, 0, 0, 1}
		d.Beacon(bssid, 1, -50, "Net")
	}
	assert.Len(t, d.networks, TableCap)
}

func TestPineappleOUILogsOnlyOnce(t *testing.T) {
	logger := &recordingLogger{}
	d := New(logger)
	stopTimers(t, d)
	bssid := [6]byte{0x00, 0x13, 0x37, 0x01, 0x02, 0x03}

	d.Beacon(bssid, 1, -50, "Net1")
	d.Beacon(bssid, 1, -50, "Net1") // repeated SSID, same OUI check path

	lines := logger.snapshot()
	ouiHits := 0
	for _, l := range lines {
		if strings.Contains(l, "Pineapple OUI match") {
			ouiHits++
		}
	}
	assert.Equal(t, 1, ouiHits)
}

func TestFireLogTaskSkipsStaleGeneration(t *testing.T) {
	logger := &recordingLogger{}
	d := New(logger)
	stopTimers(t, d)
	bssid := [6]byte{1, 2, 3, 4, 5, 6}
	d.Beacon(bssid, 1, -50, "A")
	d.Beacon(bssid, 1, -50, "B")

	d.mu.Lock()
	currentGen := d.generation[bssid]
	d.mu.Unlock()

	// A stale generation (as if a superseded timer fired late) must be a no-op.
	d.fireLogTask(bssid, currentGen+1)
	assert.Empty(t, logger.snapshot())

	d.fireLogTask(bssid, currentGen)
	assert.NotEmpty(t, logger.snapshot())
}

func TestEvilTwinMatchesFlagsSharedSSID(t *testing.T) {
	d := New(nil)
	apA := [6]byte{1, 1, 1, 1, 1, 1}
	apB := [6]byte{2, 2, 2, 2, 2, 2}

	d.Beacon(apA, 1, -50, "HomeWifi")
	d.Beacon(apB, 1, -50, "homewifi")

	d.mu.Lock()
	netA := d.networks[apA]
	matches := d.evilTwinMatches(apA, netA)
	d.mu.Unlock()

	require.Len(t, matches, 1)
	assert.Equal(t, apB, matches[0].other)
}
