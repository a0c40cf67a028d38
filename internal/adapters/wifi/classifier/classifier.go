// Package classifier implements the Wi-Fi frame classifier, spec §4.3: a
// single installed operation dispatches every promiscuous frame to
// exactly one of RawCapture / ProbeRequestListen / BeaconCapture /
// DeauthCapture / EAPOLCapture / WPSDetect / Wardriving / PineapDetect.
// Grounded on the teacher's packet_handler.go HandlePacket/handleMgmtFrame
// dispatch, generalized from "always run every classification" to "run
// only the installed operation."
package classifier

import (
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/lcalzada-xor/wmap-radio/internal/adapters/capture"
	"github.com/lcalzada-xor/wmap-radio/internal/adapters/wifi/handshake"
	"github.com/lcalzada-xor/wmap-radio/internal/adapters/wifi/ie"
	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
	"github.com/lcalzada-xor/wmap-radio/internal/core/ports"
)

// APTable receives WifiAp updates as beacons/probe-responses are parsed.
type APTable interface {
	Update(ap domain.WifiAp)
}

// AssociationTable receives station<->AP associations observed on data
// frames.
type AssociationTable interface {
	Update(assoc domain.StationAssociation)
}

// WPSSightings records a unique (bssid, ssid, method) WPS detection and
// reports whether the sighting table has reached its cap. The classifier
// discards that result; the application watches the table's cap itself
// and stops the session when it is reached.
type WPSSightings interface {
	Record(bssid [6]byte, ssid string, methods domain.WPSMethod) (capReached bool)
}

// Wardriver receives wardriving records.
type Wardriver interface {
	Record(rec domain.WardrivingRecord)
}

// PineapSink receives every beacon observed while PineapDetect is active.
type PineapSink interface {
	Beacon(bssid [6]byte, channel uint8, rssi int8, ssid string)
}

// ProbeLog receives deduplicated probe-request sightings.
type ProbeLog interface {
	Log(src [6]byte, ssid string)
}

// DeauthAlert receives deauth/disassoc frame observations.
type DeauthAlert interface {
	Alert(subtype uint8, addr1, addr2, bssid [6]byte)
}

// Classifier holds the installed operation and the sinks each operation
// may emit to. Only one operation is active on the Wi-Fi radio at a time,
// matching the "current operation" design note in spec §9.
type Classifier struct {
	Operation domain.WifiOperation
	Pipeline  *capture.Pipeline
	Tracker   *handshake.Tracker
	Geo       ports.GeoProvider

	APs          APTable
	Associations AssociationTable
	WPS          WPSSightings
	Wardriving   Wardriver
	Pineap       PineapSink
	Probes       ProbeLog
	Deauth       DeauthAlert

	probeDedup  *lru
	beaconCount map[[6]byte]int
	beaconSeen  map[[6]byte]bool
}

// New returns a Classifier with the given operation installed and all
// sinks wired. Any sink may be nil if the operation never needs it.
func New(op domain.WifiOperation, pipeline *capture.Pipeline, tracker *handshake.Tracker, geo ports.GeoProvider) *Classifier {
	return &Classifier{
		Operation:   op,
		Pipeline:    pipeline,
		Tracker:     tracker,
		Geo:         geo,
		probeDedup:  newLRU(64),
		beaconCount: make(map[[6]byte]int),
		beaconSeen:  make(map[[6]byte]bool),
	}
}

// HandleFrame is the capture callback's entry point: early-filter, parse
// the fixed header, and dispatch to the installed operation. frame.Raw is
// the 802.11 MPDU starting at the frame-control field (no radiotap).
func (c *Classifier) HandleFrame(frame domain.PromiscuousFrame) {
	pkt := gopacket.NewPacket(frame.Raw, layers.LayerTypeDot11, gopacket.NoCopy)
	dot11, ok := pkt.Layer(layers.LayerTypeDot11).(*layers.Dot11)
	if !ok {
		c.Pipeline.Filtered()
		return
	}

	hdr := toHeader(dot11, frame.Raw)
	dtype := mainType(dot11.Type)
	if capture.ShouldFilter(frame, dtype) {
		c.Pipeline.Filtered()
		return
	}

	switch dtype {
	case domain.Dot11TypeMgmt:
		c.handleMgmt(frame, pkt, dot11, hdr)
	case domain.Dot11TypeData:
		c.handleData(frame, pkt, dot11, hdr)
	default:
		if c.Operation == domain.OpRawCapture {
			c.Pipeline.Enqueue(frame.Raw, domain.CaptureWifi)
		}
	}
}

func mainType(t layers.Dot11Type) domain.Dot11Type {
	switch t.MainType() {
	case layers.Dot11TypeMgmt:
		return domain.Dot11TypeMgmt
	case layers.Dot11TypeCtrl:
		return domain.Dot11TypeCtrl
	case layers.Dot11TypeData:
		return domain.Dot11TypeData
	default:
		return domain.Dot11TypeMisc
	}
}

// rawSubtype reads the 802.11 subtype directly out of the frame-control
// field (bits 4-7 of the first octet) rather than trusting a decoded-layer
// accessor, preserving the packed-field-read discipline spec §9 asks for.
func rawSubtype(raw []byte) uint8 {
	if len(raw) < 1 {
		return 0
	}
	return raw[0] >> 4
}

func toHeader(d *layers.Dot11, raw []byte) domain.Ieee80211Header {
	var h domain.Ieee80211Header
	h.Subtype = rawSubtype(raw)
	h.Flags = flagsByte(d)
	copy(h.Addr1[:], d.Address1)
	copy(h.Addr2[:], d.Address2)
	copy(h.Addr3[:], d.Address3)
	h.SeqCtrl = d.SequenceNumber
	return h
}

func flagsByte(d *layers.Dot11) uint8 {
	var f uint8
	if d.Flags.ToDS() {
		f |= 0x01
	}
	if d.Flags.FromDS() {
		f |= 0x02
	}
	return f
}

func (c *Classifier) handleMgmt(frame domain.PromiscuousFrame, pkt gopacket.Packet, dot11 *layers.Dot11, hdr domain.Ieee80211Header) {
	subtype := hdr.Subtype

	switch c.Operation {
	case domain.OpRawCapture:
		c.Pipeline.Enqueue(frame.Raw, domain.CaptureWifi)
		return
	case domain.OpProbeRequestListen:
		if subtype == domain.SubtypeProbeReq {
			c.handleProbeReq(frame, pkt, dot11)
		}
		return
	case domain.OpDeauthCapture:
		if subtype == domain.SubtypeDeauth || subtype == domain.SubtypeDisassoc {
			c.Pipeline.Enqueue(frame.Raw, domain.CaptureWifi)
			if c.Deauth != nil {
				var bssid [6]byte
				copy(bssid[:], dot11.Address3)
				c.Deauth.Alert(hdr.Subtype, hdr.Addr1, hdr.Addr2, bssid)
			}
		}
		return
	}

	isBeacon := subtype == domain.SubtypeBeacon
	isProbeResp := subtype == domain.SubtypeProbeResp

	switch c.Operation {
	case domain.OpBeaconCapture:
		if isBeacon {
			c.Pipeline.Enqueue(frame.Raw, domain.CaptureWifi)
		}
	case domain.OpBeaconLimitedCapture:
		if isBeacon {
			c.handleBeaconLimited(frame, dot11)
		}
	case domain.OpWPSDetect:
		if isBeacon || isProbeResp {
			c.handleWPS(frame, dot11, subtype)
		}
	case domain.OpWardriving:
		if isBeacon || isProbeResp {
			c.handleWardriving(frame, dot11, subtype)
		}
	case domain.OpPineapDetect:
		if isBeacon {
			c.handlePineap(frame, dot11)
		}
	case domain.OpEAPOLCapture:
		c.handleEAPOLMgmt(frame, dot11, subtype)
	}
}

func (c *Classifier) handleEAPOLMgmt(frame domain.PromiscuousFrame, dot11 *layers.Dot11, subtype uint8) {
	switch {
	case subtype <= domain.SubtypeReassocResp:
		c.Pipeline.Enqueue(frame.Raw, domain.CaptureWifi)
	case subtype == domain.SubtypeAuth:
		c.Pipeline.Enqueue(frame.Raw, domain.CaptureWifi)
	case subtype == domain.SubtypeProbeReq:
		ssid := ie.ParseSSID(mgmtIEBody(frame.Raw, domain.SubtypeProbeReq))
		var src [6]byte
		copy(src[:], dot11.Address2)
		key := fmt.Sprintf("%x:%s", src, ssid)
		if !c.probeDedup.Allow(key) {
			return
		}
		c.Pipeline.Enqueue(frame.Raw, domain.CaptureWifi)
	case subtype == domain.SubtypeBeacon || subtype == domain.SubtypeProbeResp:
		var bssid [6]byte
		if len(frame.Raw) >= 16 {
			copy(bssid[:], frame.Raw[10:16])
		}
		if c.beaconCount[bssid] < 3 {
			c.beaconCount[bssid]++
			c.Pipeline.Enqueue(frame.Raw, domain.CaptureWifi)
		}
	}
}

// mgmtIEBody returns the IE sequence of a management frame: the 24-byte
// fixed header, plus the subtype's fixed parameters (12 bytes for
// Beacon/ProbeResp, none for ProbeReq), skipped.
func mgmtIEBody(raw []byte, subtype uint8) []byte {
	const fixedHeaderLen = 24
	off := fixedHeaderLen
	switch subtype {
	case domain.SubtypeBeacon, domain.SubtypeProbeResp:
		off += 12
	}
	if off > len(raw) {
		return nil
	}
	return raw[off:]
}

func (c *Classifier) handleProbeReq(frame domain.PromiscuousFrame, pkt gopacket.Packet, dot11 *layers.Dot11) {
	ssid := ie.ParseSSID(mgmtIEBody(frame.Raw, domain.SubtypeProbeReq))
	var src [6]byte
	copy(src[:], dot11.Address2)

	key := fmt.Sprintf("%x:%s", src, ssid)
	if !c.probeDedup.Allow(key) {
		return
	}
	c.Pipeline.Enqueue(frame.Raw, domain.CaptureWifi)
	if c.Probes != nil {
		c.Probes.Log(src, ssid)
	}
}

func (c *Classifier) handleBeaconLimited(frame domain.PromiscuousFrame, dot11 *layers.Dot11) {
	var bssid [6]byte
	copy(bssid[:], dot11.Address3)
	ssid := ie.ParseSSID(mgmtIEBody(frame.Raw, domain.SubtypeBeacon))

	count := c.beaconCount[bssid]
	seenNonHidden := c.beaconSeen[bssid]

	if count < 3 {
		c.beaconCount[bssid] = count + 1
		c.Pipeline.Enqueue(frame.Raw, domain.CaptureWifi)
		if ssid != "<HIDDEN>" {
			c.beaconSeen[bssid] = true
		}
		return
	}
	if ssid != "<HIDDEN>" && !seenNonHidden {
		c.beaconSeen[bssid] = true
		c.Pipeline.Enqueue(frame.Raw, domain.CaptureWifi)
	}
}

func (c *Classifier) handleWPS(frame domain.PromiscuousFrame, dot11 *layers.Dot11, subtype uint8) {
	body := mgmtIEBody(frame.Raw, subtype)
	ssid := ie.ParseSSID(body)
	var bssid [6]byte
	copy(bssid[:], dot11.Address3)

	for _, vendor := range ie.VendorSpecific(body) {
		if !ie.IsWPSVendorIE(vendor) {
			continue
		}
		info := ie.ParseWPSAttributes(vendor[4:])
		if info.ConfigMethods == 0 || c.WPS == nil {
			continue
		}
		c.WPS.Record(bssid, ssid, info.ConfigMethods)
	}
}

func (c *Classifier) handleWardriving(frame domain.PromiscuousFrame, dot11 *layers.Dot11, subtype uint8) {
	body := mgmtIEBody(frame.Raw, subtype)
	ssid := ie.ParseSSID(body)
	var bssid [6]byte
	copy(bssid[:], dot11.Address3)

	auth, cipher, wps := classifyAuth(body)
	// Capability info sits after the 8-byte timestamp and 2-byte interval.
	if auth == domain.AuthOpen && len(frame.Raw) >= 36 && ie.CapabilityPrivacy(uint16(frame.Raw[34])|uint16(frame.Raw[35])<<8) {
		auth = domain.AuthWEP
	}

	rec := domain.WardrivingRecord{
		Name:    ssid,
		MAC:     bssid,
		Channel: frame.Channel,
		RSSI:    frame.RSSI,
		Auth:    auth,
		Cipher:  cipher,
		WPS:     wps,
	}
	if c.Geo != nil {
		fix := c.Geo.CurrentFix()
		rec.HasFix = fix.Valid
		rec.Latitude = fix.Latitude
		rec.Longitude = fix.Longitude
		rec.Altitude = fix.Altitude
	}
	if c.Wardriving != nil {
		c.Wardriving.Record(rec)
	}
}

// classifyAuth implements the wardriving auth-classification rule from
// spec §4.3: RSN IE -> WPA2/WPA3/OWE by AKM suite; vendor WPA1 IE -> WPA;
// else Open. The Privacy bit -> WEP step needs the capability field, which
// is outside body, so handleWardriving applies it to an Open result.
func classifyAuth(body []byte) (domain.AuthType, domain.CipherType, bool) {
	hasWPS := false
	hasWPA := false
	for _, vendor := range ie.VendorSpecific(body) {
		if ie.IsWPSVendorIE(vendor) {
			hasWPS = true
		}
		if len(vendor) >= 4 && vendor[0] == 0x00 && vendor[1] == 0x50 && vendor[2] == 0xF2 && vendor[3] == 0x01 {
			hasWPA = true
		}
	}

	if rsnVal := ie.Find(body, 48); rsnVal != nil {
		if rsn, err := ie.ParseRSN(rsnVal); err == nil {
			auth := ie.AuthFromAKM(rsn.AKMSuites)
			cipher := domain.CipherNone
			if len(rsn.PairwiseCiphers) > 0 {
				cipher = ie.CipherFromSuite(rsn.PairwiseCiphers[0])
			}
			return auth, cipher, hasWPS
		}
	}
	if hasWPA {
		return domain.AuthWPA, domain.CipherTKIP, hasWPS
	}

	return domain.AuthOpen, domain.CipherNone, hasWPS
}

func (c *Classifier) handlePineap(frame domain.PromiscuousFrame, dot11 *layers.Dot11) {
	if c.Pineap == nil {
		return
	}
	var bssid [6]byte
	copy(bssid[:], dot11.Address3)
	ssid := ie.ParseSSID(mgmtIEBody(frame.Raw, domain.SubtypeBeacon))
	c.Pineap.Beacon(bssid, frame.Channel, frame.RSSI, ssid)
}

func (c *Classifier) handleData(frame domain.PromiscuousFrame, pkt gopacket.Packet, dot11 *layers.Dot11, hdr domain.Ieee80211Header) {
	if c.Operation == domain.OpRawCapture {
		c.Pipeline.Enqueue(frame.Raw, domain.CaptureWifi)
	}
	if c.Operation != domain.OpEAPOLCapture {
		return
	}

	apMac, staMac, ok := apStationFromFlags(dot11)
	if !ok {
		return
	}
	if c.Associations != nil {
		c.Associations.Update(domain.StationAssociation{StationMAC: staMac, APBSSID: apMac})
	}

	body, ok := llcSnapEapolPayload(frame.Raw, hdr)
	if !ok {
		return
	}

	c.Pipeline.Enqueue(frame.Raw, domain.CaptureWifi)

	kf, err := handshake.ParseEAPOLKey(body[4:])
	if err != nil {
		return
	}
	key, msg := handshake.KeyToTrackerInput(apMac, staMac, kf)
	if msg == domain.EapolMsgNone {
		return
	}
	c.Tracker.Observe(key, handshake.IsFromAP(msg), msg)
}

// llcSnapEapolPayload walks past the fixed 802.11 data header (24 bytes,
// +2 for a QoS control field) and the 8-byte LLC/SNAP header, and returns
// the EAPOL payload (802.1X header + EAPOL-Key body) if the SNAP EtherType
// is 0x888E. Read directly off the packed byte layout, matching the
// manual-offset discipline the rest of this decoder uses.
func llcSnapEapolPayload(raw []byte, hdr domain.Ieee80211Header) ([]byte, bool) {
	const fixedHeaderLen = 24
	const llcSnapLen = 8

	off := fixedHeaderLen
	if hdr.Subtype&0x08 != 0 { // QoS data subtypes carry a 2-byte QoS control field
		off += 2
	}
	if off+llcSnapLen > len(raw) {
		return nil, false
	}

	llcSnap := raw[off : off+llcSnapLen]
	if llcSnap[0] != 0xAA || llcSnap[1] != 0xAA || llcSnap[2] != 0x03 {
		return nil, false
	}
	etherType := uint16(llcSnap[6])<<8 | uint16(llcSnap[7])
	if etherType != handshake.EtherTypeEAPOL {
		return nil, false
	}

	body := raw[off+llcSnapLen:]
	if len(body) < 4 {
		return nil, false
	}
	return body, true
}

// apStationFromFlags derives (ap, station) MACs from ToDS/FromDS, the
// same rule the teacher's handshake manager uses to orient a captured
// frame regardless of link direction.
func apStationFromFlags(dot11 *layers.Dot11) (ap, station [6]byte, ok bool) {
	toDS := dot11.Flags.ToDS()
	fromDS := dot11.Flags.FromDS()
	switch {
	case toDS && !fromDS:
		copy(ap[:], dot11.Address1)
		copy(station[:], dot11.Address2)
		return ap, station, true
	case !toDS && fromDS:
		copy(ap[:], dot11.Address2)
		copy(station[:], dot11.Address1)
		return ap, station, true
	default:
		return ap, station, false
	}
}
