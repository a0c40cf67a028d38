// Package decoder implements the BLE advertising decode/handler set,
// spec §4.5: a single AD-structure walker dispatches to an independent,
// idempotent handler for each recognized pattern. Grounded on
// original_source's ble_manager.c, whose GAP discovery callback walks the
// same `(len, type, value[len-1])` structure this package's Walk
// implements.
package decoder

// ADStructure is one `(length, type, value)` triple from a BLE
// advertising payload.
type ADStructure struct {
	Type  byte
	Value []byte
}

// AD type bytes used by the handlers in this package.
const (
	adUUID16Incomplete      = 0x02
	adUUID16Complete        = 0x03
	adUUID32Incomplete      = 0x04
	adUUID32Complete        = 0x05
	adUUID128Incomplete     = 0x06
	adUUID128Complete       = 0x07
	adShortenedName         = 0x08
	adCompleteName          = 0x09
	adServiceData16         = 0x16
	adManufacturerSpecific  = 0xFF
)

// Walk parses adv into its AD structures. A malformed trailing fragment
// (declared length longer than the remaining bytes) stops the walk
// rather than reading out of bounds.
func Walk(adv []byte) []ADStructure {
	var out []ADStructure
	i := 0
	for i < len(adv) {
		length := int(adv[i])
		if length == 0 {
			break
		}
		if i+1+length > len(adv) {
			break
		}
		typ := adv[i+1]
		value := adv[i+2 : i+1+length]
		out = append(out, ADStructure{Type: typ, Value: value})
		i += 1 + length
	}
	return out
}

// CompleteName returns the AD_COMPLETE_LOCAL_NAME value, if present,
// falling back to the shortened name.
func CompleteName(structs []ADStructure) string {
	var shortened string
	for _, s := range structs {
		switch s.Type {
		case adCompleteName:
			return string(s.Value)
		case adShortenedName:
			shortened = string(s.Value)
		}
	}
	return shortened
}

// ServiceData16 returns the payload following a 16-bit service-data AD
// structure whose UUID matches uuid, and whether one was found.
func ServiceData16(structs []ADStructure, uuid uint16) ([]byte, bool) {
	for _, s := range structs {
		if s.Type != adServiceData16 || len(s.Value) < 2 {
			continue
		}
		got := uint16(s.Value[0]) | uint16(s.Value[1])<<8
		if got == uuid {
			return s.Value[2:], true
		}
	}
	return nil, false
}

// ManufacturerEntry is one manufacturer-specific AD structure's company
// ID and payload.
type ManufacturerEntry struct {
	CompanyID uint16
	Data      []byte
}

// ManufacturerData returns every manufacturer-specific AD structure, in
// advertisement order.
func ManufacturerData(structs []ADStructure) []ManufacturerEntry {
	var out []ManufacturerEntry
	for _, s := range structs {
		if s.Type != adManufacturerSpecific || len(s.Value) < 2 {
			continue
		}
		companyID := uint16(s.Value[0]) | uint16(s.Value[1])<<8
		out = append(out, ManufacturerEntry{CompanyID: companyID, Data: s.Value[2:]})
	}
	return out
}
