package domain

import "fmt"

// RadioMode identifies which stack currently owns the shared RF front end.
type RadioMode int

const (
	RadioOff RadioMode = iota
	RadioWifiUp
	RadioWifiStation
	RadioWifiPromiscuous
	RadioBleUp
	RadioBleObserver
	RadioBleBroadcaster
)

func (m RadioMode) String() string {
	switch m {
	case RadioOff:
		return "Off"
	case RadioWifiUp:
		return "WifiUp"
	case RadioWifiStation:
		return "WifiStation"
	case RadioWifiPromiscuous:
		return "WifiPromiscuous"
	case RadioBleUp:
		return "BleUp"
	case RadioBleObserver:
		return "BleObserver"
	case RadioBleBroadcaster:
		return "BleBroadcaster"
	default:
		return fmt.Sprintf("RadioMode(%d)", int(m))
	}
}

// WifiStackSnapshot captures enough of the prior Wi-Fi stack state for the
// arbiter to restore it after a BLE request releases the front end.
type WifiStackSnapshot struct {
	Mode      RadioMode
	Interface string
	Channel   int
	SSID      string
	PSK       string
	Running   bool
}

// Band identifies the RF band a PromiscuousFrame was observed on.
type Band int

const (
	Band2G4 Band = iota
	Band5G
)

func (b Band) String() string {
	if b == Band5G {
		return "5g"
	}
	return "2g4"
}
