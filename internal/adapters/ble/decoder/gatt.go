package decoder

import (
	"strings"
	"sync"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

const (
	companyTile           = 0x00D8
	companySamsung        = 0x0075
	companyChipolo        = 0x0231
	companyApple          = 0x004C
	companyGoogleFindMy   = 0x004F
	tileServiceUUIDFeed   = 0xFEED
	tileServiceUUIDFeec   = 0xFEEC
	appleAirtagSubtype    = 0x12
	appleAirtagSubtypeLen = 0x19
)

// tileBaseUUID is the first 12 bytes of Tile's 128-bit GATT service base
// UUID, used to correct a tracker's classification once a connect +
// service-discovery pass completes.
var tileBaseUUID = []byte{0x6C, 0xD6, 0xF8, 0x28, 0x97, 0x8D, 0xAA, 0x86, 0x51, 0x49, 0x1C, 0x7D}

// GattHandler classifies connectable BLE advertisements into a known
// tracker type, grounded on original_source's detect_tracker_type: AD
// service-UUID/manufacturer-data inspection first, then a name-substring
// fallback.
type GattHandler struct {
	mu      sync.Mutex
	devices map[[6]byte]*domain.GattDevice
}

// NewGattHandler returns an empty handler.
func NewGattHandler() *GattHandler {
	return &GattHandler{devices: make(map[[6]byte]*domain.GattDevice)}
}

// HandleAdvertisement implements Handler. Only connectable advertisement
// types (ADV_IND, DIRECT_IND) are considered.
func (h *GattHandler) HandleAdvertisement(ev domain.GapEvent) {
	if ev.AdvType != domain.AdvInd && ev.AdvType != domain.AdvDirectInd {
		return
	}
	structs := Walk(ev.AdvData)
	name := CompleteName(structs)
	tracker := detectTrackerType(structs, name)

	h.mu.Lock()
	defer h.mu.Unlock()
	dev, ok := h.devices[ev.Addr]
	if !ok {
		dev = &domain.GattDevice{Addr: ev.Addr}
		h.devices[ev.Addr] = dev
	}
	dev.RSSI = ev.RSSI
	if name != "" {
		dev.Name = name
	}
	if tracker != domain.TrackerNone {
		dev.TrackerType = tracker
	}
}

func detectTrackerType(structs []ADStructure, name string) domain.TrackerType {
	for _, s := range structs {
		switch s.Type {
		case adUUID16Incomplete, adUUID16Complete:
			if len(s.Value) >= 2 {
				uuid := uint16(s.Value[0]) | uint16(s.Value[1])<<8
				if uuid == tileServiceUUIDFeed || uuid == tileServiceUUIDFeec {
					return domain.TrackerTile
				}
			}
		case adServiceData16:
			if len(s.Value) >= 2 {
				uuid := uint16(s.Value[0]) | uint16(s.Value[1])<<8
				if uuid == tileServiceUUIDFeed || uuid == tileServiceUUIDFeec {
					return domain.TrackerTile
				}
			}
		}
	}

	for _, mfg := range ManufacturerData(structs) {
		switch mfg.CompanyID {
		case companyTile:
			return domain.TrackerTile
		case companySamsung:
			return domain.TrackerSamsungSmartTag
		case companyChipolo:
			return domain.TrackerChipolo
		case companyApple:
			if len(mfg.Data) >= 3 {
				subtype, subtypeLen := mfg.Data[0], mfg.Data[1]
				switch {
				case subtype == appleAirtagSubtype && subtypeLen == appleAirtagSubtypeLen && len(mfg.Data) >= 25:
					return domain.TrackerAppleAirtag
				case subtype == 0x07 || subtype == 0x10:
					return domain.TrackerAppleFindMy
				}
			}
		case companyGoogleFindMy:
			if len(mfg.Data) >= 2 && mfg.Data[0] == 0x12 {
				return domain.TrackerGenericFindMy
			}
		}
	}

	return trackerFromName(name)
}

func trackerFromName(name string) domain.TrackerType {
	if name == "" {
		return domain.TrackerNone
	}
	switch {
	case strings.Contains(name, "Tile"):
		return domain.TrackerTile
	case strings.Contains(name, "Chipolo"):
		return domain.TrackerChipolo
	case strings.Contains(name, "SmartTag"):
		return domain.TrackerSamsungSmartTag
	case strings.Contains(name, "FindMy"):
		return domain.TrackerGenericFindMy
	default:
		return domain.TrackerNone
	}
}

// CorrectFromServices re-classifies addr as Tile if serviceUUID128 begins
// with the Tile base UUID, the correction original_source applies after
// a GATT service-discovery pass completes.
func (h *GattHandler) CorrectFromServices(addr [6]byte, serviceUUID128 []byte) {
	if len(serviceUUID128) < 12 {
		return
	}
	for i := 0; i < 12; i++ {
		if serviceUUID128[i] != tileBaseUUID[i] {
			return
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if dev, ok := h.devices[addr]; ok {
		dev.TrackerType = domain.TrackerTile
	}
}

// Devices returns a snapshot of tracked GATT-capable devices.
func (h *GattHandler) Devices() []domain.GattDevice {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.GattDevice, 0, len(h.devices))
	for _, d := range h.devices {
		out = append(out, *d)
	}
	return out
}
