// Package aerial merges OpenDroneID and DJI BLE sightings into one
// tracked-device table, spec §3's AerialDevice lifecycle. Ageing and
// compaction are kept as two distinct sweep passes rather than one
// combined sweep, grounded on
// original_source/include/managers/aerial_detector_manager.h exposing
// them as separate entry points rather than a single "cleanup" call.
package aerial

import (
	"sync"
	"time"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

// Registry is the merged aerial-device table fed by every BLE aerial
// handler (DJIHandler, OpenDroneIDHandler). One entry per MAC.
type Registry struct {
	mu      sync.Mutex
	devices map[[6]byte]*domain.AerialDevice
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{devices: make(map[[6]byte]*domain.AerialDevice)}
}

// Update merges a fresh sighting into the table. A device already marked
// IsTracked keeps that flag across updates; everything else is replaced
// by the newer sighting.
func (r *Registry) Update(dev domain.AerialDevice) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.devices[dev.MAC]
	if ok && existing.IsTracked {
		dev.IsTracked = true
	}
	stored := dev
	r.devices[dev.MAC] = &stored
}

// Track sets the is_tracked flag mirrored from the `aerialtrack` operator
// command. It has no effect on Age or Compact; see the Open Question in
// DESIGN.md on whether tracked devices should be exempt from eviction.
func (r *Registry) Track(mac [6]byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, ok := r.devices[mac]
	if !ok {
		return false
	}
	dev.IsTracked = true
	return true
}

// Untrack clears the pin set by Track.
func (r *Registry) Untrack(mac [6]byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, ok := r.devices[mac]
	if !ok {
		return false
	}
	dev.IsTracked = false
	return true
}

// Age evicts every device whose last sighting is older than threshold,
// mirroring aerial_detector_remove_old_devices: last_seen_ms past the
// caller-supplied cutoff is removed outright, tracked or not.
func (r *Registry) Age(now time.Time, threshold time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := uint32(now.Add(-threshold).UnixMilli())
	removed := 0
	for mac, dev := range r.devices {
		if dev.LastSeenMs < cutoff {
			delete(r.devices, mac)
			removed++
		}
	}
	return removed
}

// Compact evicts every device still of type AerialUnknown, mirroring
// aerial_detector_compact_known_devices: a sighting that was never
// classified into a known aerial type is dropped regardless of age or
// tracked status.
func (r *Registry) Compact() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for mac, dev := range r.devices {
		if dev.Type == domain.AerialUnknown {
			delete(r.devices, mac)
			removed++
		}
	}
	return removed
}

// Snapshot returns a copy of every tracked-or-not device currently held.
func (r *Registry) Snapshot() []domain.AerialDevice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AerialDevice, 0, len(r.devices))
	for _, dev := range r.devices {
		out = append(out, *dev)
	}
	return out
}
