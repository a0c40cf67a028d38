package ie

import "github.com/lcalzada-xor/wmap-radio/internal/core/domain"

// WPSInfo holds details extracted from a WPS Data Element (vendor IE with
// OUI 00:50:F2 type 0x04).
type WPSInfo struct {
	Manufacturer  string
	Model         string
	DeviceName    string
	State         string // "Unconfigured" | "Configured"
	Version       string // "1.0" | "2.0"
	Locked        bool
	ConfigMethods domain.WPSMethod
}

// WPSOUI and WPSVendorType identify the WPS vendor-specific IE: OUI
// 00:50:F2, type 0x04.
var WPSOUI = [3]byte{0x00, 0x50, 0xF2}

const WPSVendorType = 0x04

// IsWPSVendorIE reports whether a vendor-specific IE value (tag 221) is
// the WPS element.
func IsWPSVendorIE(val []byte) bool {
	return len(val) >= 4 && val[0] == WPSOUI[0] && val[1] == WPSOUI[1] && val[2] == WPSOUI[2] && val[3] == WPSVendorType
}

// ParseWPSAttributes parses the TLV attributes within a WPS Data Element,
// after the 4-byte OUI/type header has already been stripped.
func ParseWPSAttributes(data []byte) *WPSInfo {
	info := &WPSInfo{}
	offset := 0
	limit := len(data)

	for offset+4 <= limit {
		attrType := int(data[offset])<<8 | int(data[offset+1])
		attrLen := int(data[offset+2])<<8 | int(data[offset+3])
		offset += 4

		if offset+attrLen > limit {
			break
		}
		valBytes := data[offset : offset+attrLen]

		switch attrType {
		case 0x1021: // Manufacturer
			info.Manufacturer = string(valBytes)
		case 0x1023: // Model Name
			info.Model = string(valBytes)
		case 0x1011: // Device Name
			info.DeviceName = string(valBytes)
		case 0x1044: // WPS State
			if len(valBytes) > 0 {
				switch valBytes[0] {
				case 0x01:
					info.State = "Unconfigured"
				case 0x02:
					info.State = "Configured"
				}
			}
		case 0x104A: // WPS Version
			if len(valBytes) > 0 {
				switch {
				case valBytes[0] == 0x10:
					info.Version = "1.0"
				case valBytes[0] >= 0x20:
					info.Version = "2.0"
				}
			}
		case 0x1057: // AP Setup Locked
			if len(valBytes) > 0 && valBytes[0] == 0x01 {
				info.Locked = true
			}
		case 0x1008: // Config Methods
			if len(valBytes) >= 2 {
				methods := uint16(valBytes[0])<<8 | uint16(valBytes[1])
				if methods&0x0080 != 0 {
					info.ConfigMethods |= domain.WPSMethodPBC
				}
				if methods&0x0004 != 0 || methods&0x0008 != 0 {
					info.ConfigMethods |= domain.WPSMethodPIN
				}
			}
		}

		offset += attrLen
	}

	return info
}
