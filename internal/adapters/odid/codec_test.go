package odid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

func TestDecodeBasicID(t *testing.T) {
	msg := EncodeBasicID("UAS-12345")
	device := domain.NewAerialDevice([6]byte{1, 2, 3, 4, 5, 6})
	Decode(device, msg)

	assert.Equal(t, "UAS-12345", device.DeviceID)
	assert.Equal(t, uint8(2), device.UAType) // HelicopterOrMultirotor
	assert.Equal(t, uint8(1), device.IDType) // SerialNumber
	assert.NotZero(t, device.MessagesSeen&domain.MsgSeenBasicID)
}

func TestDecodeLocationRoundTripsWithinTolerance(t *testing.T) {
	msg := EncodeLocation(37.7749, -122.4194, 100.0)
	device := domain.NewAerialDevice([6]byte{})
	Decode(device, msg)

	require.True(t, device.HasLocation)
	assert.InDelta(t, 37.7749, device.Latitude, 1e-6)
	assert.InDelta(t, -122.4194, device.Longitude, 1e-6)
	assert.InDelta(t, 100.0, device.Altitude, 0.5)
	assert.Equal(t, domain.AerialStatusActive, device.Status)
}

func TestDecodeLocationUnknownAltitudeLeavesSentinel(t *testing.T) {
	msg := make([]byte, MessageSize)
	msg[0] = msgLocation << 4
	msg[15], msg[16] = 0xFF, 0xFF
	msg[3] = 255 // unknown speed

	device := domain.NewAerialDevice([6]byte{})
	Decode(device, msg)

	assert.Equal(t, float32(domain.UnknownAltitude), device.Altitude)
	assert.Zero(t, device.SpeedH)
}

func TestDecodeSelfIDTruncatesAtNonPrintable(t *testing.T) {
	msg := make([]byte, MessageSize)
	msg[0] = msgSelfID << 4
	copy(msg[2:], "Search and rescue")
	msg[2+16] = 0x00 // premature terminator mid-string

	device := domain.NewAerialDevice([6]byte{})
	Decode(device, msg)

	assert.Equal(t, "Search and rescu", device.Description)
}

func TestDecodeSystemOperatorLocation(t *testing.T) {
	msg := make([]byte, MessageSize)
	msg[0] = msgSystem << 4
	encodeCoordsInto(msg, 2, 12.5, 34.5)
	msg[18], msg[19] = 0, 0 // altitude 0 -> -1000m after offset

	device := domain.NewAerialDevice([6]byte{})
	Decode(device, msg)

	require.True(t, device.HasOperatorLocation)
	assert.InDelta(t, 12.5, device.OperatorLatitude, 1e-6)
	assert.InDelta(t, 34.5, device.OperatorLongitude, 1e-6)
}

func TestDecodePackedRecursesIntoSubMessages(t *testing.T) {
	sub1 := EncodeBasicID("PACKED-ID")
	sub2 := EncodeLocation(1.0, 2.0, 50.0)

	packed := make([]byte, 3+2*MessageSize)
	packed[0] = msgPacked << 4
	packed[1] = MessageSize
	packed[2] = 2
	copy(packed[3:], sub1)
	copy(packed[3+MessageSize:], sub2)

	device := domain.NewAerialDevice([6]byte{})
	Decode(device, packed)

	assert.Equal(t, "PACKED-ID", device.DeviceID)
	assert.True(t, device.HasLocation)
}

func TestDecodeShortMessageIsIgnored(t *testing.T) {
	device := domain.NewAerialDevice([6]byte{})
	Decode(device, []byte{0x01, 0x02})
	assert.Equal(t, domain.MessagesSeenBit(0), device.MessagesSeen)
}

// encodeCoordsInto writes lat/lon at offset using the same 1e-7-degree
// little-endian encoding EncodeLocation uses, for constructing a System
// message in tests.
func encodeCoordsInto(msg []byte, offset int, lat, lon float64) {
	latEnc := int32(lat * coordScale)
	lonEnc := int32(lon * coordScale)
	msg[offset] = byte(latEnc)
	msg[offset+1] = byte(latEnc >> 8)
	msg[offset+2] = byte(latEnc >> 16)
	msg[offset+3] = byte(latEnc >> 24)
	msg[offset+4] = byte(lonEnc)
	msg[offset+5] = byte(lonEnc >> 8)
	msg[offset+6] = byte(lonEnc >> 16)
	msg[offset+7] = byte(lonEnc >> 24)
}
