package decoder

import (
	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
	"github.com/lcalzada-xor/wmap-radio/internal/core/ports"
)

// Wardriver accepts a finished wardriving record, shared with the Wi-Fi
// classifier's wardriving sink.
type Wardriver interface {
	Record(rec domain.WardrivingRecord)
}

// WardrivingHandler emits a wardriving record for every BLE
// advertisement seen while wardriving is active, spec §4.5.
type WardrivingHandler struct {
	sink Wardriver
	geo  ports.GeoProvider
}

// NewWardrivingHandler returns a handler that forwards records to sink,
// tagging them with the current GPS fix from geo (if any).
func NewWardrivingHandler(sink Wardriver, geo ports.GeoProvider) *WardrivingHandler {
	return &WardrivingHandler{sink: sink, geo: geo}
}

// HandleAdvertisement implements Handler.
func (h *WardrivingHandler) HandleAdvertisement(ev domain.GapEvent) {
	structs := Walk(ev.AdvData)
	rec := domain.WardrivingRecord{
		IsBLE: true,
		MAC:   ev.Addr,
		RSSI:  ev.RSSI,
		Name:  CompleteName(structs),
	}
	if mfg := ManufacturerData(structs); len(mfg) > 0 {
		rec.ManufacturerID = mfg[0].CompanyID
	}
	if h.geo != nil {
		if fix := h.geo.CurrentFix(); fix.Valid {
			rec.Latitude = fix.Latitude
			rec.Longitude = fix.Longitude
			rec.Altitude = fix.Altitude
			rec.HasFix = true
		}
	}
	h.sink.Record(rec)
}
