package decoder

import (
	"log"
	"sync"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

const (
	flipperUUIDWhite       = 0x3082
	flipperUUIDBlack       = 0x3081
	flipperUUIDTransparent = 0x3083
)

// FlipperHandler recognizes Flipper Zero service-UUID advertisements,
// grounded on original_source's detect_flipper_type_from_adv (16/32/128
// bit service UUID AD types, matched against the three known Flipper
// color-variant UUIDs).
type FlipperHandler struct {
	cap    int
	logger *log.Logger

	mu      sync.Mutex
	entries map[[6]byte]*domain.FlipperRecord
}

// NewFlipperHandler returns a handler capped at capacity entries.
func NewFlipperHandler(capacity int, logger *log.Logger) *FlipperHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &FlipperHandler{cap: capacity, logger: logger, entries: make(map[[6]byte]*domain.FlipperRecord)}
}

// HandleAdvertisement implements Handler.
func (h *FlipperHandler) HandleAdvertisement(ev domain.GapEvent) {
	variant, ok := detectFlipperVariant(Walk(ev.AdvData))
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.entries[ev.Addr]; exists {
		h.entries[ev.Addr].RSSI = ev.RSSI
		return
	}
	if len(h.entries) >= h.cap {
		return
	}
	rec := &domain.FlipperRecord{Addr: ev.Addr, RSSI: ev.RSSI, Name: CompleteName(Walk(ev.AdvData)), Variant: variant}
	h.entries[ev.Addr] = rec
	h.logger.Printf("ble: found Flipper Zero (%s) mac=%x rssi=%d", variant.String(), ev.Addr, ev.RSSI)
}

func detectFlipperVariant(structs []ADStructure) (domain.FlipperVariant, bool) {
	for _, s := range structs {
		var uuid16 uint16
		switch s.Type {
		case adUUID16Incomplete, adUUID16Complete:
			if len(s.Value) < 2 {
				continue
			}
			uuid16 = uint16(s.Value[0]) | uint16(s.Value[1])<<8
		case adUUID32Incomplete, adUUID32Complete:
			if len(s.Value) < 2 {
				continue
			}
			uuid16 = uint16(s.Value[0]) | uint16(s.Value[1])<<8
		case adUUID128Incomplete, adUUID128Complete:
			if len(s.Value) < 2 {
				continue
			}
			uuid16 = uint16(s.Value[0]) | uint16(s.Value[1])<<8
		default:
			continue
		}

		switch uuid16 {
		case flipperUUIDWhite:
			return domain.FlipperWhite, true
		case flipperUUIDBlack:
			return domain.FlipperBlack, true
		case flipperUUIDTransparent:
			return domain.FlipperTransparent, true
		}
	}
	return domain.FlipperUnknown, false
}

// Entries returns a snapshot of tracked Flipper Zero sightings.
func (h *FlipperHandler) Entries() []domain.FlipperRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.FlipperRecord, 0, len(h.entries))
	for _, e := range h.entries {
		out = append(out, *e)
	}
	return out
}
