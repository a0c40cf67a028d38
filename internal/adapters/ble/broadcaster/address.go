// Package broadcaster drives the BLE advertising-set API for spam,
// AirTag spoofing, and OpenDroneID emulation, grounded on
// original_source's ble_manager.c spam task and aerial_detector_manager.c
// emulation_broadcast_callback.
package broadcaster

import (
	cryptorand "crypto/rand"
)

// RandomAddress generates a BLE device address with bits 47:46 set to
// either static (11) or non-resolvable (00) with equal probability,
// spec §4.9: the all-zero and all-one 46-bit random address are
// rejected and retried up to 10 times before a deterministic tweak.
func RandomAddress() [6]byte {
	for attempt := 0; attempt < 10; attempt++ {
		var addr [6]byte
		if _, err := cryptorand.Read(addr[:]); err != nil {
			continue
		}
		static := addr[0]&0x01 == 0 // coin flip off a random byte
		if static {
			addr[5] = (addr[5] & 0x3f) | 0xc0
		} else {
			addr[5] = addr[5] & 0x3f
		}
		if isAllZeroOrOneRandomBits(addr) {
			continue
		}
		return addr
	}
	return deterministicFallback()
}

// isAllZeroOrOneRandomBits reports whether the 46 random bits of addr
// (everything but the top two bits of the last octet) are all zero or
// all one.
func isAllZeroOrOneRandomBits(addr [6]byte) bool {
	allZero := true
	allOne := true
	for i := 0; i < 5; i++ {
		if addr[i] != 0x00 {
			allZero = false
		}
		if addr[i] != 0xff {
			allOne = false
		}
	}
	low6 := addr[5] & 0x3f
	if low6 != 0x00 {
		allZero = false
	}
	if low6 != 0x3f {
		allOne = false
	}
	return allZero || allOne
}

// deterministicFallback returns a fixed, valid static random address
// used only if ten random draws in a row collide with the reserved
// all-zero/all-one patterns, which in practice never happens.
func deterministicFallback() [6]byte {
	return [6]byte{0x01, 0x00, 0x00, 0x00, 0x00, 0xc0}
}
