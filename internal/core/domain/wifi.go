package domain

// AuthType enumerates the authentication scheme advertised by an AP.
type AuthType int

const (
	AuthOpen AuthType = iota
	AuthWEP
	AuthWPA
	AuthWPA2
	AuthWPA3
	AuthWPA2Enterprise
	AuthWPA2WPA3
	AuthOWE
)

func (a AuthType) String() string {
	switch a {
	case AuthOpen:
		return "Open"
	case AuthWEP:
		return "WEP"
	case AuthWPA:
		return "WPA"
	case AuthWPA2:
		return "WPA2"
	case AuthWPA3:
		return "WPA3"
	case AuthWPA2Enterprise:
		return "WPA2_Enterprise"
	case AuthWPA2WPA3:
		return "WPA2/WPA3"
	case AuthOWE:
		return "OWE"
	default:
		return "Unknown"
	}
}

// CipherType enumerates the pairwise/group cipher advertised in an RSN IE.
type CipherType int

const (
	CipherNone CipherType = iota
	CipherWEP40
	CipherWEP104
	CipherTKIP
	CipherCCMP
	CipherTKIPCCMP
	CipherGCMP
	CipherGCMP256
)

func (c CipherType) String() string {
	switch c {
	case CipherWEP40:
		return "WEP40"
	case CipherWEP104:
		return "WEP104"
	case CipherTKIP:
		return "TKIP"
	case CipherCCMP:
		return "CCMP"
	case CipherTKIPCCMP:
		return "TKIP_CCMP"
	case CipherGCMP:
		return "GCMP"
	case CipherGCMP256:
		return "GCMP256"
	default:
		return "None"
	}
}

// PhyMode bits track which 802.11 amendments an AP advertises support for.
type PhyMode uint8

const (
	PhyB PhyMode = 1 << iota
	PhyG
	PhyN
	PhyA
	PhyAC
	PhyAX
)

// WPSMethod bits identify WPS configuration methods advertised by an AP.
type WPSMethod uint8

const (
	WPSMethodPBC WPSMethod = 1 << iota
	WPSMethodPIN
)

// WifiAp is a discovered access point, built up incrementally as beacons and
// probe responses are classified.
type WifiAp struct {
	BSSID      [6]byte
	SSID       string
	Channel    uint8
	FreqMHz    uint16
	RSSI       int8
	LastSeenUs uint64
	Auth       AuthType
	Cipher     CipherType
	PhyModes   PhyMode
	WPS        bool
	WPSMethods WPSMethod
}

// StationAssociation records an observed station-to-AP data-frame link.
type StationAssociation struct {
	StationMAC [6]byte
	APBSSID    [6]byte
	LastSeenUs uint64
}
