// Package odid decodes and encodes OpenDroneID (ASTM F3411) messages,
// spec §4.6. Field offsets and units are grounded on
// original_source/main/managers/aerial_detector_manager.c's
// decode_opendroneid_message/encode_basic_id_message/
// encode_location_message, expressed with explicit slice indexing rather
// than a struct overlay since the source itself reads the wire format by
// fixed byte offset.
package odid

import (
	"encoding/binary"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

// MessageSize is the fixed size of every ODID message, including a Packed
// message's sub-messages.
const MessageSize = 25

const (
	msgBasicID    = 0
	msgLocation   = 1
	msgSelfID     = 3
	msgSystem     = 4
	msgOperatorID = 5
	msgPacked     = 0xF

	idTypeSerialNumber            = 1
	uaTypeHelicopterOrMultirotor  = 2
	statusAirborne                = 2

	idFieldSize  = 20
	strFieldSize = 23

	altitudeOffsetM = -1000.0
	altitudeStepM   = 0.5
	coordScale      = 10_000_000.0
)

// Decode dissects a single ODID message (or, for a Packed message, its
// sub-messages recursively up to 9 deep) into device. len(data) must be
// at least MessageSize; shorter input is ignored rather than causing a
// panic.
func Decode(device *domain.AerialDevice, data []byte) {
	decode(device, data, 0)
}

func decode(device *domain.AerialDevice, data []byte, depth int) {
	if len(data) < MessageSize || depth > 9 {
		return
	}
	msgType := (data[0] >> 4) & 0x0F

	switch msgType {
	case msgBasicID:
		device.MessagesSeen |= domain.MsgSeenBasicID
		device.UAType = data[1] & 0x0F
		device.IDType = (data[1] >> 4) & 0x0F
		device.DeviceID = asciiField(data[2 : 2+idFieldSize])

	case msgLocation:
		device.MessagesSeen |= domain.MsgSeenLocation
		device.HasLocation = true
		device.Status = decodeStatus(data[1])

		device.Latitude = float64(int32(binary.LittleEndian.Uint32(data[5:9]))) / coordScale
		device.Longitude = float64(int32(binary.LittleEndian.Uint32(data[9:13]))) / coordScale

		if alt := binary.LittleEndian.Uint16(data[15:17]); alt != 0xFFFF {
			device.Altitude = float32(alt)*altitudeStepM + altitudeOffsetM
		}
		if data[3] != 255 {
			device.SpeedH = float32(data[3]) * 0.25
		}
		device.Direction = float32(data[2])

	case msgSelfID:
		device.MessagesSeen |= domain.MsgSeenSelfID
		device.Description = asciiField(data[2 : 2+strFieldSize])

	case msgSystem:
		device.MessagesSeen |= domain.MsgSeenSystem
		device.HasOperatorLocation = true
		device.OperatorLatitude = float64(int32(binary.LittleEndian.Uint32(data[2:6]))) / coordScale
		device.OperatorLongitude = float64(int32(binary.LittleEndian.Uint32(data[6:10]))) / coordScale
		if alt := binary.LittleEndian.Uint16(data[18:20]); alt != 0xFFFF {
			device.OperatorAltitude = float32(alt)*altitudeStepM + altitudeOffsetM
		}

	case msgOperatorID:
		device.MessagesSeen |= domain.MsgSeenOperatorID
		device.OperatorID = asciiField(data[2 : 2+idFieldSize])

	case msgPacked:
		if len(data) > 3 && data[1] == MessageSize && data[2] > 0 {
			count := int(data[2])
			if count > 9 {
				count = 9
			}
			for i := 0; i < count; i++ {
				start := 3 + i*MessageSize
				end := start + MessageSize
				if end > len(data) {
					break
				}
				decode(device, data[start:end], depth+1)
			}
		}
	}
}

// decodeStatus mirrors the source's "airborne" field extraction: the high
// nibble of byte 1.
func decodeStatus(b byte) domain.AerialStatus {
	if (b>>4)&0x0F == statusAirborne {
		return domain.AerialStatusActive
	}
	return domain.AerialStatusStale
}

// asciiField extracts a printable-ASCII string from field, terminating at
// the first byte outside 0x20..0x7E.
func asciiField(field []byte) string {
	for i, b := range field {
		if b < 0x20 || b > 0x7E {
			return string(field[:i])
		}
	}
	return string(field)
}

// EncodeBasicID produces a BasicID message identifying uasID as a
// helicopter/multirotor with a serial-number ID type, the emulation path
// spec §4.6 requires for symmetry with Decode.
func EncodeBasicID(uasID string) []byte {
	msg := make([]byte, MessageSize)
	msg[0] = msgBasicID << 4
	msg[1] = (idTypeSerialNumber << 4) | uaTypeHelicopterOrMultirotor
	copy(msg[2:2+idFieldSize], uasID)
	return msg
}

// EncodeLocation produces a Location message reporting lat/lon/alt with
// status Airborne and direction/speed zeroed, per spec §4.6.
func EncodeLocation(lat, lon float64, alt float32) []byte {
	msg := make([]byte, MessageSize)
	msg[0] = msgLocation << 4
	msg[1] = statusAirborne << 4

	binary.LittleEndian.PutUint32(msg[5:9], uint32(int32(lat*coordScale)))
	binary.LittleEndian.PutUint32(msg[9:13], uint32(int32(lon*coordScale)))

	altEnc := uint16((alt - altitudeOffsetM) / altitudeStepM)
	binary.LittleEndian.PutUint16(msg[15:17], altEnc)

	return msg
}
