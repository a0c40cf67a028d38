// Package ie walks and parses 802.11 Information Elements out of
// management-frame bodies, bounding every length to the IE's own 1-byte
// field and to the remaining buffer, per the classifier's IE-walk
// invariant: abort on truncation, never read out of bounds.
package ie

import "github.com/lcalzada-xor/wmap-radio/internal/core/domain"

// MaxIELen is the largest value a single IE's length byte can encode.
const MaxIELen = 255

// Walk calls fn for every well-formed IE in data, in order. It stops
// silently at the first malformed IE (header doesn't fit, or declared
// length runs past the end of data) rather than attempting recovery.
func Walk(data []byte, fn func(domain.InformationElement)) {
	offset := 0
	limit := len(data)

	for offset+2 <= limit {
		id := data[offset]
		length := data[offset+1]
		offset += 2

		if offset+int(length) > limit {
			break
		}

		fn(domain.InformationElement{ID: id, Len: length, Value: data[offset : offset+int(length)]})
		offset += int(length)
	}
}

// Find returns the value of the first IE with the given id, or nil.
func Find(data []byte, id uint8) []byte {
	var result []byte
	found := false
	Walk(data, func(e domain.InformationElement) {
		if !found && e.ID == id {
			result = e.Value
			found = true
		}
	})
	return result
}

// ParseSSID extracts and sanitizes the SSID IE (tag 0). A missing or empty
// value, or one whose first byte is zero, is reported as the hidden
// sentinel; non-printable bytes are sanitized to '?'.
func ParseSSID(data []byte) string {
	val := Find(data, 0)
	if val == nil || len(val) == 0 || val[0] == 0x00 {
		return "<HIDDEN>"
	}
	out := make([]byte, len(val))
	for i, b := range val {
		if b < 0x20 || b > 0x7E {
			out[i] = '?'
		} else {
			out[i] = b
		}
	}
	if len(out) > 32 {
		out = out[:32]
	}
	return string(out)
}

// ParseChannel extracts the channel number from the DS Parameter Set IE
// (tag 3).
func ParseChannel(data []byte) uint8 {
	val := Find(data, 3)
	if len(val) >= 1 {
		return val[0]
	}
	return 0
}

// VendorSpecific returns every vendor-specific IE (tag 221) in data.
func VendorSpecific(data []byte) [][]byte {
	var results [][]byte
	Walk(data, func(e domain.InformationElement) {
		if e.ID == 221 {
			results = append(results, e.Value)
		}
	})
	return results
}

// HasPMKID reports whether keyData (the EAPOL Key Data field) contains a
// PMKID KDE: a vendor-specific element (0xDD) with OUI 00-0F-AC and type 4.
func HasPMKID(keyData []byte) bool {
	found := false
	Walk(keyData, func(e domain.InformationElement) {
		if e.ID == 0xDD && len(e.Value) >= 4 {
			if e.Value[0] == 0x00 && e.Value[1] == 0x0F && e.Value[2] == 0xAC && e.Value[3] == 0x04 {
				found = true
			}
		}
	})
	return found
}

// CapabilityPrivacy reports whether the Privacy bit is set in an 802.11
// capability-info field, used by the wardriving classifier to distinguish
// WEP from Open when no RSN/vendor IE is present.
func CapabilityPrivacy(capInfo uint16) bool {
	return capInfo&0x0010 != 0
}
