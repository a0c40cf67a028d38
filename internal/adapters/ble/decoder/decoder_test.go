package decoder

import (
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/wmap-radio/internal/adapters/odid"
	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
	"github.com/lcalzada-xor/wmap-radio/internal/core/ports"
)

func adStruct(typ byte, value []byte) []byte {
	return append([]byte{byte(len(value) + 1), typ}, value...)
}

func concatAD(structs ...[]byte) []byte {
	var out []byte
	for _, s := range structs {
		out = append(out, s...)
	}
	return out
}

func TestWalkParsesMultipleStructures(t *testing.T) {
	adv := concatAD(
		adStruct(adCompleteName, []byte("Hello")),
		adStruct(adUUID16Complete, []byte{0x82, 0x30}),
	)
	structs := Walk(adv)
	require.Len(t, structs, 2)
	assert.Equal(t, "Hello", string(structs[0].Value))
	assert.Equal(t, byte(adUUID16Complete), structs[1].Type)
}

func TestWalkStopsOnTruncatedStructure(t *testing.T) {
	adv := []byte{0x05, adCompleteName, 'a', 'b'} // declares 4 more bytes, only 2 present
	structs := Walk(adv)
	assert.Empty(t, structs)
}

func TestAirtagHandlerMatchesNearbyPattern(t *testing.T) {
	h := NewAirtagHandler(16, nil)
	ev := domain.GapEvent{Addr: [6]byte{1, 2, 3, 4, 5, 6}, RSSI: -50, AdvData: []byte{0x1E, 0xFF, 0x4C, 0x00, 0x99}}
	h.HandleAdvertisement(ev)
	require.Len(t, h.Entries(), 1)
}

func TestAirtagHandlerIgnoresNonMatchingPayload(t *testing.T) {
	h := NewAirtagHandler(16, nil)
	h.HandleAdvertisement(domain.GapEvent{AdvData: []byte{0, 1, 2, 3}})
	assert.Empty(t, h.Entries())
}

func TestAirtagHandlerRespectsCapacity(t *testing.T) {
	h := NewAirtagHandler(1, nil)
	h.HandleAdvertisement(domain.GapEvent{Addr: [6]byte{1}, AdvData: []byte{0x1E, 0xFF, 0x4C, 0x00}})
	h.HandleAdvertisement(domain.GapEvent{Addr: [6]byte{2}, AdvData: []byte{0x1E, 0xFF, 0x4C, 0x00}})
	assert.Len(t, h.Entries(), 1)
}

func TestFlipperHandlerDetectsWhiteVariant(t *testing.T) {
	h := NewFlipperHandler(16, nil)
	adv := adStruct(adUUID16Complete, []byte{0x82, 0x30}) // little-endian 0x3082
	h.HandleAdvertisement(domain.GapEvent{Addr: [6]byte{9}, AdvData: adv})
	require.Len(t, h.Entries(), 1)
	assert.Equal(t, domain.FlipperWhite, h.Entries()[0].Variant)
}

func TestOpenDroneIDHandlerDecodesServiceData(t *testing.T) {
	h := NewOpenDroneIDHandler()
	basicID := odid.EncodeBasicID("UAS123")
	value := append([]byte{0xFA, 0xFF, 0x00}, basicID...) // uuid(2) + rolling counter(1) + message
	ev := domain.GapEvent{Addr: [6]byte{1}, AdvData: adStruct(adServiceData16, value)}

	h.HandleAdvertisement(ev)
	devices := h.Devices()
	require.Len(t, devices, 1)
	assert.Equal(t, "UAS123", devices[0].DeviceID)
}

func TestDJIHandlerExtractsPrintableRun(t *testing.T) {
	h := NewDJIHandler()
	data := append([]byte{0x00, 0x01, 0x02, 0x03}, []byte("Mavic3Pro")...)
	value := append([]byte{0xE0, 0xFF}, data...)
	ev := domain.GapEvent{Addr: [6]byte{1}, AdvData: adStruct(adServiceData16, value)}
	h.HandleAdvertisement(ev)
	devices := h.Devices()
	require.Len(t, devices, 1)
	assert.Contains(t, devices[0].Description, "Mavic3Pro")
}

type fakeCaptureWriter struct{ records []domain.SkimmerRecord }

func (f *fakeCaptureWriter) WriteSkimmerRecord(rec domain.SkimmerRecord) error {
	f.records = append(f.records, rec)
	return nil
}

func TestSkimmerHandlerMatchesSuspiciousName(t *testing.T) {
	writer := &fakeCaptureWriter{}
	h := NewSkimmerHandler(writer, log.Default())
	ev := domain.GapEvent{Addr: [6]byte{1}, AdvData: adStruct(adCompleteName, []byte("HC-05-dev"))}
	h.HandleAdvertisement(ev)
	require.Len(t, writer.records, 1)
	assert.Equal(t, "HC-05-dev", writer.records[0].Name)
}

func TestSkimmerHandlerIgnoresBenignName(t *testing.T) {
	writer := &fakeCaptureWriter{}
	h := NewSkimmerHandler(writer, log.Default())
	ev := domain.GapEvent{Addr: [6]byte{1}, AdvData: adStruct(adCompleteName, []byte("MyHeadphones"))}
	h.HandleAdvertisement(ev)
	assert.Empty(t, writer.records)
}

type fakeWardriver struct{ records []domain.WardrivingRecord }

func (f *fakeWardriver) Record(rec domain.WardrivingRecord) { f.records = append(f.records, rec) }

type fakeGeo struct{ fix ports.GeoFix }

func (f *fakeGeo) CurrentFix() ports.GeoFix { return f.fix }

func TestWardrivingHandlerEmitsRecordWithFix(t *testing.T) {
	sink := &fakeWardriver{}
	geo := &fakeGeo{fix: ports.GeoFix{Latitude: 1, Longitude: 2, Valid: true}}
	h := NewWardrivingHandler(sink, geo)

	ev := domain.GapEvent{
		Addr: [6]byte{1, 2, 3, 4, 5, 6},
		RSSI: -60,
		AdvData: concatAD(
			adStruct(adCompleteName, []byte("Thing")),
			adStruct(adManufacturerSpecific, []byte{0x4C, 0x00, 0x01}),
		),
	}
	h.HandleAdvertisement(ev)

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.True(t, rec.IsBLE)
	assert.Equal(t, "Thing", rec.Name)
	assert.Equal(t, uint16(0x004C), rec.ManufacturerID)
	assert.True(t, rec.HasFix)
}

func TestGattHandlerIgnoresNonConnectableAdv(t *testing.T) {
	h := NewGattHandler()
	h.HandleAdvertisement(domain.GapEvent{AdvType: domain.AdvNonconnInd, Addr: [6]byte{1}})
	assert.Empty(t, h.Devices())
}

func TestGattHandlerDetectsAirtagViaManufacturerData(t *testing.T) {
	h := NewGattHandler()
	mfgData := append([]byte{0x4C, 0x00, 0x12, 0x19}, make([]byte, 25)...)
	ev := domain.GapEvent{
		AdvType: domain.AdvInd,
		Addr:    [6]byte{1},
		AdvData: adStruct(adManufacturerSpecific, mfgData),
	}
	h.HandleAdvertisement(ev)
	devices := h.Devices()
	require.Len(t, devices, 1)
	assert.Equal(t, domain.TrackerAppleAirtag, devices[0].TrackerType)
}

func TestGattHandlerCorrectFromServicesFlagsTile(t *testing.T) {
	h := NewGattHandler()
	addr := [6]byte{7}
	h.HandleAdvertisement(domain.GapEvent{AdvType: domain.AdvInd, Addr: addr})
	h.CorrectFromServices(addr, tileBaseUUID)
	devices := h.Devices()
	require.Len(t, devices, 1)
	assert.Equal(t, domain.TrackerTile, devices[0].TrackerType)
}

func TestSetDispatchesToEveryHandler(t *testing.T) {
	airtag := NewAirtagHandler(4, nil)
	flipper := NewFlipperHandler(4, nil)
	set := NewSet(airtag, flipper)

	set.Dispatch(domain.GapEvent{Addr: [6]byte{1}, AdvData: []byte{0x1E, 0xFF, 0x4C, 0x00}})
	assert.Len(t, airtag.Entries(), 1)
	assert.Empty(t, flipper.Entries())
}
