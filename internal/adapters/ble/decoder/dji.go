package decoder

import (
	"sync"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

const djiServiceDataUUID = 0xFFE0

// DJIHandler recognizes DJI's BLE service-data UUID and attempts a
// best-effort printable-string extraction for a device description,
// grounded on original_source's decode_dji_message (DJI's wire format is
// proprietary; the source settles for scanning for an embedded printable
// run rather than a full decode).
type DJIHandler struct {
	mu      sync.Mutex
	devices map[[6]byte]*domain.AerialDevice
}

// NewDJIHandler returns an empty handler.
func NewDJIHandler() *DJIHandler {
	return &DJIHandler{devices: make(map[[6]byte]*domain.AerialDevice)}
}

// HandleAdvertisement implements Handler.
func (h *DJIHandler) HandleAdvertisement(ev domain.GapEvent) {
	data, ok := ServiceData16(Walk(ev.AdvData), djiServiceDataUUID)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	device, exists := h.devices[ev.Addr]
	if !exists {
		device = domain.NewAerialDevice(ev.Addr)
		device.Type = domain.AerialDJI
		device.Vendor = "DJI"
		h.devices[ev.Addr] = device
	}
	device.RSSI = ev.RSSI
	if desc, ok := extractPrintableRun(data, 4); ok {
		device.Description = desc
	}
}

// extractPrintableRun scans data for the first run of at least minLen
// printable ASCII bytes, the same best-effort heuristic
// original_source's decode_dji_message uses in place of a real decode.
func extractPrintableRun(data []byte, minLen int) (string, bool) {
	start := -1
	for i := 0; i <= len(data); i++ {
		printable := i < len(data) && data[i] >= 0x20 && data[i] <= 0x7E
		if printable && start == -1 {
			start = i
		}
		if !printable && start != -1 {
			if i-start >= minLen {
				return string(data[start:i]), true
			}
			start = -1
		}
	}
	return "", false
}

// Devices returns a snapshot of tracked DJI sightings.
func (h *DJIHandler) Devices() []domain.AerialDevice {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.AerialDevice, 0, len(h.devices))
	for _, d := range h.devices {
		out = append(out, *d)
	}
	return out
}
