package classifier

import (
	"testing"
	"time"

	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/wmap-radio/internal/adapters/capture"
	"github.com/lcalzada-xor/wmap-radio/internal/adapters/wifi/handshake"
	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

// buildMgmtFrame assembles a raw 802.11 management frame: the 24-byte
// fixed header, the subtype's fixed parameters, and the given IEs.
func buildMgmtFrame(subtype uint8, addr1, addr2, addr3 [6]byte, fixedParams, ies []byte) []byte {
	buf := []byte{subtype << 4, 0x00, 0x00, 0x00}
	buf = append(buf, addr1[:]...)
	buf = append(buf, addr2[:]...)
	buf = append(buf, addr3[:]...)
	buf = append(buf, 0x00, 0x00)
	buf = append(buf, fixedParams...)
	buf = append(buf, ies...)
	return buf
}

func ssidIE(ssid string) []byte {
	return append([]byte{0, byte(len(ssid))}, []byte(ssid)...)
}

func beaconFixedParams() []byte {
	return make([]byte, 12)
}

type recordingProbes struct {
	src  [6]byte
	ssid string
	n    int
}

func (r *recordingProbes) Log(src [6]byte, ssid string) {
	r.src = src
	r.ssid = ssid
	r.n++
}

type recordingWardriver struct{ records []domain.WardrivingRecord }

func (r *recordingWardriver) Record(rec domain.WardrivingRecord) { r.records = append(r.records, rec) }

type recordingSink struct{ records [][]byte }

func (s *recordingSink) WriteRecord(_ domain.CaptureType, _, _ uint32, payload []byte) error {
	cp := make([]byte, len(payload))
	copy(cp, payload)
	s.records = append(s.records, cp)
	return nil
}
func (s *recordingSink) Flush() error { return nil }
func (s *recordingSink) Close() error { return nil }

func TestHandleFrameProbeRequestDedup(t *testing.T) {
	sink := &recordingSink{}
	pipeline := capture.New(sink)
	probes := &recordingProbes{}
	c := New(domain.OpProbeRequestListen, pipeline, nil, nil)
	c.Probes = probes

	var addr1, bssid [6]byte
	for i := range addr1 {
		addr1[i] = 0xFF
	}
	src := [6]byte{0x02, 0, 0, 0, 1, 0}
	raw := buildMgmtFrame(domain.SubtypeProbeReq, addr1, src, bssid, nil, ssidIE("hello"))

	c.HandleFrame(domain.PromiscuousFrame{Raw: raw, RSSI: -50})
	c.HandleFrame(domain.PromiscuousFrame{Raw: raw, RSSI: -50})

	assert.Equal(t, 1, probes.n)
	assert.Equal(t, "hello", probes.ssid)
	assert.Equal(t, src, probes.src)
}

// TestHandleFrameProbeRequestDedupReAllowsAfterWindow exercises the dedup
// table directly rather than via HandleFrame, since HandleFrame always
// dedups against time.Now() and this test needs to simulate ten seconds of
// continuous probing without actually sleeping. A device probing for 10s
// should produce one allow per 1000ms window, not one ever.
func TestHandleFrameProbeRequestDedupReAllowsAfterWindow(t *testing.T) {
	l := newLRU(64)
	base := time.Now()

	allowed := 0
	for i := 0; i < 10; i++ {
		if l.allowAt("key", base.Add(time.Duration(i)*time.Second)) {
			allowed++
		}
	}

	assert.Equal(t, 10, allowed)
}

func TestHandleFrameWardrivingClassifiesOpenAP(t *testing.T) {
	sink := &recordingSink{}
	pipeline := capture.New(sink)
	wd := &recordingWardriver{}
	c := New(domain.OpWardriving, pipeline, nil, nil)
	c.Wardriving = wd

	var addr1 [6]byte
	for i := range addr1 {
		addr1[i] = 0xFF
	}
	bssid := [6]byte{0xAA, 0xBB, 0xCC, 0, 0, 1}
	raw := buildMgmtFrame(domain.SubtypeBeacon, addr1, bssid, bssid, beaconFixedParams(), ssidIE("OpenNet"))

	c.HandleFrame(domain.PromiscuousFrame{Raw: raw, RSSI: -40, Channel: 6})

	require.Len(t, wd.records, 1)
	assert.Equal(t, "OpenNet", wd.records[0].Name)
	assert.Equal(t, domain.AuthOpen, wd.records[0].Auth)
	assert.Equal(t, bssid, wd.records[0].MAC)
}

func TestHandleFrameBeaconLimitedCapsAtThreeThenStopsOnHiddenReveal(t *testing.T) {
	sink := &recordingSink{}
	pipeline := capture.New(sink)
	c := New(domain.OpBeaconLimitedCapture, pipeline, nil, nil)

	var addr1 [6]byte
	for i := range addr1 {
		addr1[i] = 0xFF
	}
	bssid := [6]byte{1, 2, 3, 4, 5, 6}
	hidden := buildMgmtFrame(domain.SubtypeBeacon, addr1, bssid, bssid, beaconFixedParams(), ssidIE(""))

	for i := 0; i < 3; i++ {
		c.HandleFrame(domain.PromiscuousFrame{Raw: hidden, RSSI: -40})
	}
	// fourth hidden beacon beyond the cap should not enqueue another record
	c.HandleFrame(domain.PromiscuousFrame{Raw: hidden, RSSI: -40})

	counters := pipeline.Counters()
	assert.Equal(t, uint64(3), counters.PacketsProcessed)

	// the first beacon revealing the SSID is let through once past the cap
	revealed := buildMgmtFrame(domain.SubtypeBeacon, addr1, bssid, bssid, beaconFixedParams(), ssidIE("Revealed"))
	c.HandleFrame(domain.PromiscuousFrame{Raw: revealed, RSSI: -40})
	c.HandleFrame(domain.PromiscuousFrame{Raw: revealed, RSSI: -40})

	assert.Equal(t, uint64(4), pipeline.Counters().PacketsProcessed)
}

func TestClassifyAuthOpenWPA2WPA3(t *testing.T) {
	tests := []struct {
		name      string
		ies       []byte
		wantAuth  domain.AuthType
		wantCiphr domain.CipherType
	}{
		{"no security IEs", ssidIE("plain"), domain.AuthOpen, domain.CipherNone},
		{"RSN PSK", append(ssidIE("wpa2"), 48, 20, 0x01, 0x00, 0x00, 0x0F, 0xAC, 0x04, 0x01, 0x00, 0x00, 0x0F, 0xAC, 0x04, 0x01, 0x00, 0x00, 0x0F, 0xAC, 0x02, 0x00, 0x00), domain.AuthWPA2, domain.CipherCCMP},
		{"RSN SAE", append(ssidIE("wpa3"), 48, 20, 0x01, 0x00, 0x00, 0x0F, 0xAC, 0x04, 0x01, 0x00, 0x00, 0x0F, 0xAC, 0x04, 0x01, 0x00, 0x00, 0x0F, 0xAC, 0x08, 0x00, 0x00), domain.AuthWPA3, domain.CipherCCMP},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			auth, cipher, _ := classifyAuth(tc.ies)
			assert.Equal(t, tc.wantAuth, auth)
			assert.Equal(t, tc.wantCiphr, cipher)
		})
	}
}

func TestRawSubtypeAndMgmtIEBody(t *testing.T) {
	var a1, a2, a3 [6]byte
	raw := buildMgmtFrame(domain.SubtypeBeacon, a1, a2, a3, beaconFixedParams(), ssidIE("x"))
	assert.Equal(t, uint8(domain.SubtypeBeacon), rawSubtype(raw))

	body := mgmtIEBody(raw, domain.SubtypeBeacon)
	require.NotEmpty(t, body)
	assert.Equal(t, uint8(0), body[0]) // SSID tag
	assert.Equal(t, "x", string(body[2:3]))
}

func TestApStationFromFlags(t *testing.T) {
	dot11 := &layers.Dot11{Flags: 0x02} // FromDS set, ToDS clear
	dot11.Address1 = []byte{1, 1, 1, 1, 1, 1}
	dot11.Address2 = []byte{2, 2, 2, 2, 2, 2}

	ap, station, ok := apStationFromFlags(dot11)
	require.True(t, ok)
	assert.Equal(t, [6]byte{2, 2, 2, 2, 2, 2}, ap)
	assert.Equal(t, [6]byte{1, 1, 1, 1, 1, 1}, station)
}

func TestLLCSnapEapolPayloadRejectsNonEAPOLEtherType(t *testing.T) {
	raw := make([]byte, 24+8)
	llc := []byte{0xAA, 0xAA, 0x03, 0x00, 0x00, 0x00, 0x08, 0x00} // EtherType 0x0800 (IPv4)
	copy(raw[24:], llc)

	hdr := domain.Ieee80211Header{Subtype: 0}
	_, ok := llcSnapEapolPayload(raw, hdr)
	assert.False(t, ok)
}

func buildEAPOLDataFrame(apMac, staMac [6]byte, ack bool) []byte {
	buf := []byte{0x08, 0x02, 0x00, 0x00} // type=Data subtype=0, FromDS=1
	buf = append(buf, staMac[:]...)       // Addr1 = DA = station
	buf = append(buf, apMac[:]...)        // Addr2 = BSSID
	buf = append(buf, apMac[:]...)        // Addr3 = SA
	buf = append(buf, 0x00, 0x00)         // seq ctrl

	llc := []byte{0xAA, 0xAA, 0x03, 0x00, 0x00, 0x00, 0x88, 0x8E}
	buf = append(buf, llc...)

	buf = append(buf, 0x01, 0x03, 0x00, 95) // 802.1X: version, type=key, length hi/lo (lo byte only for brevity)

	key := make([]byte, 95)
	key[0] = 2 // descriptor type
	if ack {
		key[2] = 0x80 // Ack bit of key_info low byte
	} else {
		key[2] = 0x00
		key[1] = 0x01 // HasMIC bit (0x0100) in key_info high byte
	}
	buf = append(buf, key...)
	return buf
}

func TestHandleDataCompletesHandshake(t *testing.T) {
	sink := &recordingSink{}
	pipeline := capture.New(sink)

	var found []handshake.FoundEvent
	tr := handshake.New(func(e handshake.FoundEvent) { found = append(found, e) })
	c := New(domain.OpEAPOLCapture, pipeline, tr, nil)

	apMac := [6]byte{0xAA, 0, 0, 0, 0, 1}
	staMac := [6]byte{0xBB, 0, 0, 0, 0, 2}

	m1 := buildEAPOLDataFrame(apMac, staMac, true)
	c.HandleFrame(domain.PromiscuousFrame{Raw: m1, RSSI: -40})

	m2 := buildEAPOLDataFrame(apMac, staMac, false)
	c.HandleFrame(domain.PromiscuousFrame{Raw: m2, RSSI: -40})

	assert.Equal(t, uint64(1), tr.FoundCount())
	require.Len(t, found, 1)
}
