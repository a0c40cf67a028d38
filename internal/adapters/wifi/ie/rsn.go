package ie

import (
	"fmt"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

// RSNInfo is the parsed RSN Information Element (tag 48).
type RSNInfo struct {
	Version         uint16
	GroupCipher     string
	PairwiseCiphers []string
	AKMSuites       []string
	Capabilities    RSNCapabilities
}

// RSNCapabilities is the capabilities field of an RSN IE.
type RSNCapabilities struct {
	PreAuth          bool
	NoPairwise       bool
	PTKSAReplayCount uint8
	GTKSAReplayCount uint8
	MFPRequired      bool
	MFPCapable       bool
	PeerKeyEnabled   bool
}

// ParseRSN parses IE 48 (RSN Information Element).
func ParseRSN(data []byte) (*RSNInfo, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("ie: RSN IE too short: %w", domain.ErrParseTruncated)
	}

	rsn := &RSNInfo{}
	offset := 0

	rsn.Version = uint16(data[offset]) | uint16(data[offset+1])<<8
	offset += 2

	if offset+4 <= len(data) {
		rsn.GroupCipher = parseCipherSuite(data[offset : offset+4])
		offset += 4
	}

	if offset+2 <= len(data) {
		count := int(data[offset]) | int(data[offset+1])<<8
		offset += 2
		for i := 0; i < count && offset+4 <= len(data); i++ {
			rsn.PairwiseCiphers = append(rsn.PairwiseCiphers, parseCipherSuite(data[offset:offset+4]))
			offset += 4
		}
	}

	if offset+2 <= len(data) {
		count := int(data[offset]) | int(data[offset+1])<<8
		offset += 2
		for i := 0; i < count && offset+4 <= len(data); i++ {
			rsn.AKMSuites = append(rsn.AKMSuites, parseAKMSuite(data[offset:offset+4]))
			offset += 4
		}
	}

	if offset+2 <= len(data) {
		caps := uint16(data[offset]) | uint16(data[offset+1])<<8
		rsn.Capabilities = parseRSNCapabilities(caps)
	}

	return rsn, nil
}

func parseCipherSuite(data []byte) string {
	if len(data) < 4 {
		return "UNKNOWN"
	}
	switch data[3] {
	case 1:
		return "WEP-40"
	case 2:
		return "TKIP"
	case 4:
		return "CCMP"
	case 5:
		return "WEP-104"
	case 8:
		return "GCMP-128"
	case 9:
		return "GCMP-256"
	case 10:
		return "CCMP-256"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", data[3])
	}
}

func parseAKMSuite(data []byte) string {
	if len(data) < 4 {
		return "UNKNOWN"
	}
	switch data[3] {
	case 1:
		return "802.1X"
	case 2:
		return "PSK"
	case 3:
		return "FT-802.1X"
	case 4:
		return "FT-PSK"
	case 5:
		return "802.1X-SHA256"
	case 6:
		return "PSK-SHA256"
	case 8:
		return "SAE"
	case 9:
		return "FT-SAE"
	case 18:
		return "OWE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", data[3])
	}
}

func parseRSNCapabilities(caps uint16) RSNCapabilities {
	return RSNCapabilities{
		PreAuth:          caps&0x0001 != 0,
		NoPairwise:       caps&0x0002 != 0,
		PTKSAReplayCount: uint8((caps >> 2) & 0x03),
		GTKSAReplayCount: uint8((caps >> 4) & 0x03),
		MFPRequired:      caps&0x0040 != 0,
		MFPCapable:       caps&0x0080 != 0,
		PeerKeyEnabled:   caps&0x0200 != 0,
	}
}

// AuthFromAKM derives the wardriving auth classification from an RSN's AKM
// suite list, per the classifier rule: SAE -> WPA3, OWE -> OWE, else WPA2.
func AuthFromAKM(akms []string) domain.AuthType {
	for _, akm := range akms {
		if akm == "SAE" || akm == "FT-SAE" {
			return domain.AuthWPA3
		}
	}
	for _, akm := range akms {
		if akm == "OWE" {
			return domain.AuthOWE
		}
	}
	return domain.AuthWPA2
}

// CipherFromSuite maps a cipher-suite label from parseCipherSuite to the
// domain CipherType enum.
func CipherFromSuite(label string) domain.CipherType {
	switch label {
	case "WEP-40":
		return domain.CipherWEP40
	case "WEP-104":
		return domain.CipherWEP104
	case "TKIP":
		return domain.CipherTKIP
	case "CCMP", "CCMP-256":
		return domain.CipherCCMP
	case "GCMP-128":
		return domain.CipherGCMP
	case "GCMP-256":
		return domain.CipherGCMP256
	default:
		return domain.CipherNone
	}
}
