package capture

import (
	"context"
	"fmt"
	"log"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

const (
	liveSnaplen = 65536
	liveTimeout = pcap.BlockForever
)

// FrameHandler receives every 802.11 frame the live reader strips its
// radiotap header from.
type FrameHandler interface {
	HandleFrame(frame domain.PromiscuousFrame)
}

// LiveReader opens iface (already in monitor mode) and feeds every
// captured frame to a FrameHandler, grounded on the teacher's
// sniffer/injector.go StartMonitor loop and
// sniffer/parser/packet_handler.go's radiotap RSSI/frequency extraction,
// generalized from a single-target BPF filter to "every frame, let the
// classifier decide."
type LiveReader struct {
	iface   string
	handler FrameHandler
	handle  *pcap.Handle
}

// NewLiveReader opens a pcap live-capture handle on iface.
func NewLiveReader(iface string, handler FrameHandler) (*LiveReader, error) {
	handle, err := pcap.OpenLive(iface, liveSnaplen, true, liveTimeout)
	if err != nil {
		return nil, fmt.Errorf("capture: open live handle on %s: %w", iface, err)
	}
	return &LiveReader{iface: iface, handler: handler, handle: handle}, nil
}

// Run reads packets until ctx is canceled or the handle errors out.
func (r *LiveReader) Run(ctx context.Context) error {
	source := gopacket.NewPacketSource(r.handle, r.handle.LinkType())
	packets := source.Packets()

	for {
		select {
		case <-ctx.Done():
			return nil
		case packet, ok := <-packets:
			if !ok {
				return nil
			}
			r.handler.HandleFrame(toPromiscuousFrame(packet))
		}
	}
}

// Close releases the underlying pcap handle.
func (r *LiveReader) Close() error {
	r.handle.Close()
	return nil
}

// toPromiscuousFrame strips the radiotap header (if present) and reports
// its RSSI/channel, leaving frame.Raw starting at the 802.11 frame-control
// field as the classifier expects.
func toPromiscuousFrame(packet gopacket.Packet) domain.PromiscuousFrame {
	frame := domain.PromiscuousFrame{RSSI: -100, Band: domain.Band2G4}

	dot11Layer := packet.Layer(layers.LayerTypeDot11)
	if dot11Layer == nil {
		log.Printf("capture: dropped non-802.11 frame on live reader")
		return frame
	}
	raw := make([]byte, 0, len(dot11Layer.LayerContents())+len(dot11Layer.LayerPayload()))
	raw = append(raw, dot11Layer.LayerContents()...)
	raw = append(raw, dot11Layer.LayerPayload()...)
	frame.Raw = raw

	if rtLayer := packet.Layer(layers.LayerTypeRadioTap); rtLayer != nil {
		if rt, ok := rtLayer.(*layers.RadioTap); ok {
			frame.RSSI = int8(rt.DBMAntennaSignal)
			frame.Channel = freqToChannel(int(rt.ChannelFrequency))
			if rt.ChannelFrequency > 4000 && rt.ChannelFrequency < 5000 {
				frame.Band = domain.Band2G4
			} else if rt.ChannelFrequency >= 5000 {
				frame.Band = domain.Band5G
			}
		}
	}

	return frame
}

// freqToChannel converts a center frequency in MHz to an 802.11 channel
// number for the 2.4 GHz and 5 GHz bands.
func freqToChannel(freqMHz int) uint8 {
	switch {
	case freqMHz == 2484:
		return 14
	case freqMHz >= 2412 && freqMHz <= 2472:
		return uint8((freqMHz-2412)/5 + 1)
	case freqMHz >= 5000 && freqMHz < 6000:
		return uint8((freqMHz - 5000) / 5)
	default:
		return 0
	}
}
