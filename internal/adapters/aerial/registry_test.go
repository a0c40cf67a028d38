package aerial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

func TestUpdatePreservesTrackedFlagAcrossSightings(t *testing.T) {
	reg := NewRegistry()
	mac := [6]byte{1, 2, 3, 4, 5, 6}

	reg.Update(domain.AerialDevice{MAC: mac, DeviceID: "GHOST-1"})
	assert.True(t, reg.Track(mac))

	reg.Update(domain.AerialDevice{MAC: mac, DeviceID: "GHOST-1-UPDATED"})

	snap := reg.Snapshot()
	assert.Len(t, snap, 1)
	assert.True(t, snap[0].IsTracked)
	assert.Equal(t, "GHOST-1-UPDATED", snap[0].DeviceID)
}

func TestAgeEvictsDevicesPastThreshold(t *testing.T) {
	reg := NewRegistry()
	staleMAC := [6]byte{9, 9, 9, 9, 9, 9}
	freshMAC := [6]byte{8, 8, 8, 8, 8, 8}
	now := time.Now()

	reg.Update(domain.AerialDevice{MAC: staleMAC, LastSeenMs: uint32(now.Add(-time.Hour).UnixMilli())})
	reg.Update(domain.AerialDevice{MAC: freshMAC, LastSeenMs: uint32(now.UnixMilli())})

	removed := reg.Age(now, 10*time.Minute)

	assert.Equal(t, 1, removed)
	snap := reg.Snapshot()
	assert.Len(t, snap, 1)
	assert.Equal(t, freshMAC, snap[0].MAC)
}

func TestAgeEvictsTrackedDevicesToo(t *testing.T) {
	reg := NewRegistry()
	mac := [6]byte{7, 7, 7, 7, 7, 7}
	now := time.Now()

	reg.Update(domain.AerialDevice{MAC: mac, LastSeenMs: uint32(now.Add(-time.Hour).UnixMilli())})
	reg.Track(mac)

	removed := reg.Age(now, 10*time.Minute)

	assert.Equal(t, 1, removed)
	assert.Len(t, reg.Snapshot(), 0)
}

func TestCompactEvictsUnknownTypeOnly(t *testing.T) {
	reg := NewRegistry()
	unknownMAC := [6]byte{1, 1, 1, 1, 1, 1}
	djiMAC := [6]byte{2, 2, 2, 2, 2, 2}

	reg.Update(domain.AerialDevice{MAC: unknownMAC, Type: domain.AerialUnknown})
	reg.Update(domain.AerialDevice{MAC: djiMAC, Type: domain.AerialDJI})

	removed := reg.Compact()

	assert.Equal(t, 1, removed)
	snap := reg.Snapshot()
	assert.Len(t, snap, 1)
	assert.Equal(t, djiMAC, snap[0].MAC)
}
