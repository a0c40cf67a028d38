package domain

// TrackerType classifies a BLE GATT device by manufacturer or service
// signature.
type TrackerType int

const (
	TrackerNone TrackerType = iota
	TrackerAppleAirtag
	TrackerAppleFindMy
	TrackerSamsungSmartTag
	TrackerTile
	TrackerChipolo
	TrackerGenericFindMy
)

func (t TrackerType) String() string {
	switch t {
	case TrackerAppleAirtag:
		return "AppleAirtag"
	case TrackerAppleFindMy:
		return "AppleFindMy"
	case TrackerSamsungSmartTag:
		return "SamsungSmartTag"
	case TrackerTile:
		return "Tile"
	case TrackerChipolo:
		return "Chipolo"
	case TrackerGenericFindMy:
		return "GenericFindMy"
	default:
		return "None"
	}
}

// AirtagRecord is an entry in the AirTag/offline-finding sighting table.
type AirtagRecord struct {
	Addr    [6]byte
	RSSI    int8
	Name    string
	Payload []byte
}

// FlipperVariant identifies which Flipper Zero color scheme advertised.
type FlipperVariant int

const (
	FlipperUnknown FlipperVariant = iota
	FlipperWhite
	FlipperBlack
	FlipperTransparent
)

func (v FlipperVariant) String() string {
	switch v {
	case FlipperWhite:
		return "White"
	case FlipperBlack:
		return "Black"
	case FlipperTransparent:
		return "Transparent"
	default:
		return "Unknown"
	}
}

// FlipperRecord is an entry in the Flipper Zero sighting table.
type FlipperRecord struct {
	Addr    [6]byte
	RSSI    int8
	Name    string
	Variant FlipperVariant
}

// GattDevice is an entry produced by the connectable-device scan handler.
type GattDevice struct {
	Addr        [6]byte
	RSSI        int8
	Name        string
	TrackerType TrackerType
}

// AdvEventType is the BLE GAP discovery event kind; only connectable
// advertisements (ADV_IND, DIRECT_IND) are eligible for the GATT scan
// handler's enumerate pass.
type AdvEventType uint8

const (
	AdvInd AdvEventType = iota
	AdvDirectInd
	AdvScanInd
	AdvNonconnInd
	AdvScanResp
)

// GapEvent is a single BLE advertising discovery report, the input to
// every registered BLE handler.
type GapEvent struct {
	Addr     [6]byte
	AddrType uint8
	RSSI     int8
	AdvData  []byte
	AdvType  AdvEventType
}

// SkimmerRecord is an entry logged by the skimmer-name detector.
type SkimmerRecord struct {
	Addr   [6]byte
	RSSI   int8
	Name   string
	Reason string
}

// AdvConnMode is the BLE GAP connectable mode of an advertising set.
type AdvConnMode uint8

const (
	AdvConnNone AdvConnMode = iota
	AdvConnDirected
	AdvConnUndirected
)

// AdvDiscMode is the BLE GAP discoverable mode of an advertising set.
type AdvDiscMode uint8

const (
	AdvDiscNone AdvDiscMode = iota
	AdvDiscLimited
	AdvDiscGeneral
)

// AdvAddrType selects which address the controller advertises from.
type AdvAddrType uint8

const (
	AdvAddrPublic AdvAddrType = iota
	AdvAddrRandom
)

// SpamType names a BLE advertisement-flood vendor profile.
type SpamType int

const (
	SpamApple SpamType = iota
	SpamSamsung
	SpamGoogle
	SpamMicrosoft
	SpamRandom
)

func (s SpamType) String() string {
	switch s {
	case SpamApple:
		return "apple"
	case SpamSamsung:
		return "samsung"
	case SpamGoogle:
		return "google"
	case SpamMicrosoft:
		return "microsoft"
	case SpamRandom:
		return "random"
	default:
		return "unknown"
	}
}

// SpamStats reports the progress of a running BLE spam session.
type SpamStats struct {
	Type        SpamType
	PacketsSent uint64
}
