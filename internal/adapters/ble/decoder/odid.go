package decoder

import (
	"sync"

	"github.com/lcalzada-xor/wmap-radio/internal/adapters/odid"
	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

const odidServiceDataUUID = 0xFFFA

// OpenDroneIDHandler decodes OpenDroneID-over-BLE service data, spec
// §4.5: the byte after the service-data UUID is a rolling message
// counter, followed by a fixed-size ODID message.
type OpenDroneIDHandler struct {
	mu      sync.Mutex
	devices map[[6]byte]*domain.AerialDevice
}

// NewOpenDroneIDHandler returns an empty handler.
func NewOpenDroneIDHandler() *OpenDroneIDHandler {
	return &OpenDroneIDHandler{devices: make(map[[6]byte]*domain.AerialDevice)}
}

// HandleAdvertisement implements Handler.
func (h *OpenDroneIDHandler) HandleAdvertisement(ev domain.GapEvent) {
	data, ok := ServiceData16(Walk(ev.AdvData), odidServiceDataUUID)
	if !ok || len(data) < 1+odid.MessageSize {
		return
	}
	msg := data[1:] // data[0] is the rolling message counter

	h.mu.Lock()
	device, exists := h.devices[ev.Addr]
	if !exists {
		device = domain.NewAerialDevice(ev.Addr)
		device.Type = domain.AerialOpenDroneID
		h.devices[ev.Addr] = device
	}
	device.RSSI = ev.RSSI
	odid.Decode(device, msg)
	h.mu.Unlock()
}

// Devices returns a snapshot of tracked aerial devices.
func (h *OpenDroneIDHandler) Devices() []domain.AerialDevice {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.AerialDevice, 0, len(h.devices))
	for _, d := range h.devices {
		out = append(out, *d)
	}
	return out
}
