// Package ports declares the small interfaces the radio core depends on
// but does not implement itself: hardware channel control, location,
// persistence, and packet injection. Adapters in internal/adapters satisfy
// these; command/CLI glue, settings persistence, and UI live entirely
// outside this module and are reached only through these seams.
package ports

import (
	"context"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

// ChannelSwitcher abstracts the mechanism for changing the Wi-Fi radio's
// current channel.
type ChannelSwitcher interface {
	SetChannel(iface string, channel int) error
}

// GeoProvider supplies the current GPS fix for wardriving records. A zero
// Fix with Valid=false is the documented "no value" case some handlers
// conflate with a genuine (0,0) reading — see DESIGN.md.
type GeoProvider interface {
	CurrentFix() GeoFix
}

// GeoFix is a single location sample.
type GeoFix struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
	Valid     bool
}

// PacketInjector transmits raw 802.11 frames built by the frame injector.
type PacketInjector interface {
	Inject(ctx context.Context, frame []byte) error
	Close() error
}

// Storage persists discovered entities for operator review across
// sessions. It never stores raw captures; those stream only through the
// PCAP writer.
type Storage interface {
	UpsertAP(ctx context.Context, ap domain.WifiAp) error
	UpsertPineapNetwork(ctx context.Context, net domain.PineapNetwork) error
	UpsertAerialDevice(ctx context.Context, dev domain.AerialDevice) error
	Close() error
}

// AdvParams configures one BLE advertising interval, mirroring the
// controller's ble_gap_adv_params.
type AdvParams struct {
	ConnMode    domain.AdvConnMode
	DiscMode    domain.AdvDiscMode
	IntervalMin uint16 // units of 0.625 ms
	IntervalMax uint16
	OwnAddrType domain.AdvAddrType
}

// BleAdvertiser abstracts the BLE controller's advertising-set API:
// set_adv_data/adv_start/adv_stop plus the random-address identity used
// by spam and spoofing sequences.
type BleAdvertiser interface {
	SetAdvData(data []byte) error
	SetRandomAddress(addr [6]byte) error
	AdvStart(ctx context.Context, params AdvParams) error
	AdvStop() error
}

// Arbiter serializes exclusive ownership of the shared RF front end.
type Arbiter interface {
	Request(ctx context.Context, mode domain.RadioMode) error
	Release(mode domain.RadioMode) error
	Current() domain.RadioMode
}
