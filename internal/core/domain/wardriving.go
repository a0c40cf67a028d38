package domain

// WardrivingRecord is one row of the wardriving CSV output: columns
// Type,Name,MAC,Associated MAC,Channel,Frequency,RSSI,Auth,Cipher,802.11,WPS,Latitude,Longitude,Altitude,First Seen.
type WardrivingRecord struct {
	IsBLE         bool
	Name          string
	MAC           [6]byte
	AssociatedMAC [6]byte
	HasAssociated bool
	Channel       uint8
	FreqMHz       uint16
	RSSI          int8
	Auth          AuthType
	Cipher        CipherType
	PhyModes      PhyMode
	WPS           bool
	Latitude      float64
	Longitude     float64
	Altitude      float64
	HasFix        bool
	FirstSeenUs   uint64
	ManufacturerID uint16
}
