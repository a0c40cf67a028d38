package domain

// UnknownAltitude is the sentinel value used for altitude/height fields that
// have not been decoded from any message yet, or decode to "unknown".
const UnknownAltitude = -1000.0

// AerialDeviceType classifies how an AerialDevice was first detected.
type AerialDeviceType int

const (
	AerialUnknown AerialDeviceType = iota
	AerialOpenDroneID
	AerialDJI
	AerialGenericDroneNetwork
)

// AerialStatus is a coarse liveness/quality indicator for an AerialDevice.
type AerialStatus int

const (
	AerialStatusActive AerialStatus = iota
	AerialStatusStale
)

// MessagesSeenBit indexes ODID message-type bits within AerialDevice's
// MessagesSeen bitset.
type MessagesSeenBit uint16

const (
	MsgSeenBasicID MessagesSeenBit = 1 << iota
	MsgSeenLocation
	MsgSeenSelfID
	MsgSeenSystem
	MsgSeenOperatorID
)

// AerialDevice is a tracked unmanned-aircraft sighting, built up over one or
// more OpenDroneID / DJI / drone-network messages.
type AerialDevice struct {
	MAC         [6]byte
	Type        AerialDeviceType
	Status      AerialStatus
	RSSI        int8
	Channel     uint8
	DeviceID    string
	OperatorID  string
	Description string
	Vendor      string
	UAType      uint8
	IDType      uint8

	Latitude  float64
	Longitude float64
	Altitude  float32
	SpeedH    float32
	Direction float32
	HeightAGL float32

	OperatorLatitude  float64
	OperatorLongitude float64
	OperatorAltitude  float32

	MessagesSeen       MessagesSeenBit
	HasLocation        bool
	HasOperatorLocation bool
	IsTracked          bool
	LastSeenMs         uint32
}

// NewAerialDevice returns a device in its initial Unknown state with
// altitude fields set to the unknown sentinel.
func NewAerialDevice(mac [6]byte) *AerialDevice {
	return &AerialDevice{
		MAC:               mac,
		Type:              AerialUnknown,
		Altitude:          UnknownAltitude,
		HeightAGL:         UnknownAltitude,
		OperatorAltitude:  UnknownAltitude,
	}
}
