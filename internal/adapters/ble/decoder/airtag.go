package decoder

import (
	"bytes"
	"log"
	"sync"
	"time"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

var (
	airtagNearby         = []byte{0x1E, 0xFF, 0x4C, 0x00}
	airtagOfflineFinding = []byte{0x4C, 0x00, 0x12, 0x19}
)

const airtagRSSILogInterval = 3 * time.Second

// AirtagHandler matches the Apple nearby/offline-finding byte patterns
// anywhere in the raw advertisement and keeps a capped sighting table,
// grounded on original_source's airtag_scanner_callback.
type AirtagHandler struct {
	cap    int
	logger *log.Logger

	mu      sync.Mutex
	entries map[[6]byte]*domain.AirtagRecord
	lastLog map[[6]byte]time.Time
}

// NewAirtagHandler returns a handler capped at capacity entries.
func NewAirtagHandler(capacity int, logger *log.Logger) *AirtagHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &AirtagHandler{
		cap:     capacity,
		logger:  logger,
		entries: make(map[[6]byte]*domain.AirtagRecord),
		lastLog: make(map[[6]byte]time.Time),
	}
}

// HandleAdvertisement implements Handler.
func (h *AirtagHandler) HandleAdvertisement(ev domain.GapEvent) {
	if len(ev.AdvData) < 4 {
		return
	}
	if !containsAny(ev.AdvData, airtagNearby, airtagOfflineFinding) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	entry, ok := h.entries[ev.Addr]
	if !ok {
		if len(h.entries) >= h.cap {
			return
		}
		entry = &domain.AirtagRecord{Addr: ev.Addr}
		h.entries[ev.Addr] = entry
		h.logger.Printf("ble: new AirTag mac=%x rssi=%d", ev.Addr, ev.RSSI)
	}
	entry.RSSI = ev.RSSI
	entry.Payload = append(entry.Payload[:0], ev.AdvData...)

	last, logged := h.lastLog[ev.Addr]
	if !logged || time.Since(last) >= airtagRSSILogInterval {
		h.logger.Printf("ble: AirTag RSSI update mac=%x rssi=%d", ev.Addr, ev.RSSI)
		h.lastLog[ev.Addr] = time.Now()
	}
}

// Entries returns a snapshot of tracked AirTags.
func (h *AirtagHandler) Entries() []domain.AirtagRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.AirtagRecord, 0, len(h.entries))
	for _, e := range h.entries {
		out = append(out, *e)
	}
	return out
}

func containsAny(haystack []byte, patterns ...[]byte) bool {
	for _, p := range patterns {
		if bytes.Contains(haystack, p) {
			return true
		}
	}
	return false
}
