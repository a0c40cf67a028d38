package handshake

import (
	"fmt"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

// EtherTypeEAPOL is the EtherType an LLC/SNAP-encapsulated EAPOL frame
// carries, used by the classifier to recognize handshake traffic inside
// data frames.
const EtherTypeEAPOL = 0x888E

const eapolKeyFixedLen = 1 + 2 + 2 + 8 + 32 + 16 + 8 + 8 + 16 + 2

// KeyFrame is the decoded subset of an EAPOL-Key frame body (the payload
// following the 4-byte 802.1X header) this tracker needs.
type KeyFrame struct {
	DescriptorType uint8
	KeyInfo        domain.EapolKeyInfo
	ReplayCounter  uint64
	ANonce         [32]byte
	KeyData        []byte
}

// ParseEAPOLKey parses an EAPOL-Key frame body. It returns
// domain.ErrParseTruncated if body is shorter than the fixed portion of
// the frame.
func ParseEAPOLKey(body []byte) (*KeyFrame, error) {
	if len(body) < eapolKeyFixedLen {
		return nil, fmt.Errorf("handshake: eapol-key body too short: %w", domain.ErrParseTruncated)
	}

	kf := &KeyFrame{}
	kf.DescriptorType = body[0]

	keyInfo := uint16(body[1])<<8 | uint16(body[2])
	kf.KeyInfo = domain.EapolKeyInfo{
		DescriptorType: kf.DescriptorType,
		Pairwise:       keyInfo&0x0008 != 0,
		Install:        keyInfo&0x0040 != 0,
		Ack:            keyInfo&0x0080 != 0,
		HasMIC:         keyInfo&0x0100 != 0,
	}

	off := 5 // descriptor_type(1) + key_info(2) + key_length(2)
	for i := 0; i < 8; i++ {
		kf.ReplayCounter = kf.ReplayCounter<<8 | uint64(body[off+i])
	}
	off += 8

	copy(kf.ANonce[:], body[off:off+32])
	off += 32 + 16 + 8 + 8 + 16 // skip key_iv, key_rsc, key_id, key_mic

	keyDataLen := int(body[off])<<8 | int(body[off+1])
	off += 2

	if off+keyDataLen > len(body) {
		return nil, fmt.Errorf("handshake: eapol-key data truncated: %w", domain.ErrParseTruncated)
	}
	kf.KeyData = body[off : off+keyDataLen]

	return kf, nil
}

// KeyToTrackerInput converts a parsed KeyFrame into the (key, msg) pair
// Tracker.Observe expects; its fromAP argument comes from IsFromAP(msg).
func KeyToTrackerInput(apMac, staMac [6]byte, kf *KeyFrame) (domain.EapolHandshakeKey, domain.EapolMsg) {
	msg := domain.ClassifyEapolMsg(kf.KeyInfo)
	key := domain.EapolHandshakeKey{APMac: apMac, STAMac: staMac, ReplayCounter: kf.ReplayCounter}
	return key, msg
}

// IsFromAP reports whether msg originated at the AP (M1 or M3).
func IsFromAP(msg domain.EapolMsg) bool {
	return msg == domain.EapolM1 || msg == domain.EapolM3
}
