package storage

import (
	"encoding/hex"
	"encoding/json"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

// WifiApModel is the GORM row for a discovered Wi-Fi access point,
// keyed by BSSID the same way the teacher keys its device table.
type WifiApModel struct {
	BSSID      string `gorm:"primaryKey;column:bssid"`
	SSID       string `gorm:"index"`
	Channel    uint8
	FreqMHz    uint16
	RSSI       int8
	LastSeenUs uint64
	Auth       int
	Cipher     int
	PhyModes   uint8
	WPS        bool
	WPSMethods uint8
}

func (WifiApModel) TableName() string { return "wifi_ap_models" }

func wifiApToModel(ap domain.WifiAp) WifiApModel {
	return WifiApModel{
		BSSID:      macString(ap.BSSID),
		SSID:       ap.SSID,
		Channel:    ap.Channel,
		FreqMHz:    ap.FreqMHz,
		RSSI:       ap.RSSI,
		LastSeenUs: ap.LastSeenUs,
		Auth:       int(ap.Auth),
		Cipher:     int(ap.Cipher),
		PhyModes:   uint8(ap.PhyModes),
		WPS:        ap.WPS,
		WPSMethods: uint8(ap.WPSMethods),
	}
}

// PineapNetworkModel is the GORM row for a suspected PineAP/evil-twin
// network. SSIDHashes and RecentSSIDs have no natural SQL column type,
// so they are JSON-encoded text columns, the same approach the teacher
// takes for its own slice/struct fields.
type PineapNetworkModel struct {
	BSSID           string `gorm:"primaryKey;column:bssid"`
	FirstSeenUs     uint64
	LastChannel     uint8
	LastRSSI        int8
	SSIDHashesJSON  string
	RecentSSIDsJSON string
	RecentCount     int
	RecentIndex     int
	IsPineap        bool
	HasPineappleOUI bool
	OUILogged       bool
}

func (PineapNetworkModel) TableName() string { return "pineap_network_models" }

func pineapToModel(n domain.PineapNetwork) PineapNetworkModel {
	hashes, _ := json.Marshal(n.SSIDHashes)
	recent, _ := json.Marshal(n.RecentSSIDs)
	return PineapNetworkModel{
		BSSID:           macString(n.BSSID),
		FirstSeenUs:     n.FirstSeenUs,
		LastChannel:     n.LastChannel,
		LastRSSI:        n.LastRSSI,
		SSIDHashesJSON:  string(hashes),
		RecentSSIDsJSON: string(recent),
		RecentCount:     n.RecentCount,
		RecentIndex:     n.RecentIndex,
		IsPineap:        n.IsPineap,
		HasPineappleOUI: n.HasPineappleOUI,
		OUILogged:       n.OUILogged,
	}
}

// AerialDeviceModel is the GORM row for a tracked drone/OpenDroneID
// sighting.
type AerialDeviceModel struct {
	MAC                 string `gorm:"primaryKey;column:mac"`
	Type                int
	Status              int
	RSSI                int8
	Channel             uint8
	DeviceID            string `gorm:"index"`
	OperatorID          string
	Description         string
	Vendor              string
	UAType              uint8
	IDType              uint8
	Latitude            float64
	Longitude           float64
	Altitude            float32
	SpeedH              float32
	Direction           float32
	HeightAGL           float32
	OperatorLatitude    float64
	OperatorLongitude   float64
	OperatorAltitude    float32
	MessagesSeen        uint16
	HasLocation         bool
	HasOperatorLocation bool
	IsTracked           bool
	LastSeenMs          uint32
}

func (AerialDeviceModel) TableName() string { return "aerial_device_models" }

func aerialToModel(d domain.AerialDevice) AerialDeviceModel {
	return AerialDeviceModel{
		MAC:                 macString(d.MAC),
		Type:                int(d.Type),
		Status:              int(d.Status),
		RSSI:                d.RSSI,
		Channel:             d.Channel,
		DeviceID:            d.DeviceID,
		OperatorID:          d.OperatorID,
		Description:         d.Description,
		Vendor:              d.Vendor,
		UAType:              d.UAType,
		IDType:              d.IDType,
		Latitude:            d.Latitude,
		Longitude:           d.Longitude,
		Altitude:            d.Altitude,
		SpeedH:              d.SpeedH,
		Direction:           d.Direction,
		HeightAGL:           d.HeightAGL,
		OperatorLatitude:    d.OperatorLatitude,
		OperatorLongitude:   d.OperatorLongitude,
		OperatorAltitude:    d.OperatorAltitude,
		MessagesSeen:        uint16(d.MessagesSeen),
		HasLocation:         d.HasLocation,
		HasOperatorLocation: d.HasOperatorLocation,
		IsTracked:           d.IsTracked,
		LastSeenMs:          d.LastSeenMs,
	}
}

func macString(mac [6]byte) string {
	return hex.EncodeToString(mac[:])
}
