package capture

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

func newCaptureInfo(tsSec, tsUsec uint32, length int) gopacket.CaptureInfo {
	return gopacket.CaptureInfo{
		Timestamp:     time.Unix(int64(tsSec), int64(tsUsec)*1000),
		CaptureLength: length,
		Length:        length,
	}
}

// linkType maps a CaptureType to the PCAP global-header network type this
// appliance emits. Wi-Fi frames are written radiotap-less (105, not the
// 127 DLT_IEEE802_11_RADIO the teacher's handshake writer uses), per the
// external PCAP format contract.
func linkType(c domain.CaptureType) layers.LinkType {
	return layers.LinkType(c.LinkType())
}

// FileSink writes PCAP records to an on-disk file, flushing on the writer
// task's cadence. One FileSink is created per capture session and closed
// when the session stops.
type FileSink struct {
	mu     sync.Mutex
	f      *os.File
	w      *pcapgo.Writer
	link   layers.LinkType
	opened bool
}

// NewFileSink creates (or truncates) path and writes the PCAP global header
// for the given capture type.
func NewFileSink(path string, capture domain.CaptureType) (*FileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("capture: create pcap file: %w", err)
	}
	link := linkType(capture)
	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(domain.MaxFrameLen, link); err != nil {
		f.Close()
		return nil, fmt.Errorf("capture: write pcap header: %w", err)
	}
	return &FileSink{f: f, w: w, link: link, opened: true}, nil
}

// WriteRecord writes one PCAP record. capture is accepted for symmetry
// with Sink but a FileSink is single-link-type per session; callers must
// not mix capture types within one sink.
func (s *FileSink) WriteRecord(capture domain.CaptureType, tsSec, tsUsec uint32, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ci := newCaptureInfo(tsSec, tsUsec, len(payload))
	return s.w.WritePacket(ci, payload)
}

func (s *FileSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Sync()
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.opened {
		return nil
	}
	s.opened = false
	return s.f.Close()
}

// StreamSink writes PCAP records to an arbitrary io.Writer (a UART or a
// "wireshark mode" TCP pipe), flushing more aggressively than a file sink.
type StreamSink struct {
	mu sync.Mutex
	w  *pcapgo.Writer
	wc io.WriteCloser
}

// NewStreamSink writes the PCAP global header to wc and returns a sink
// ready for live streaming.
func NewStreamSink(wc io.WriteCloser, capture domain.CaptureType) (*StreamSink, error) {
	w := pcapgo.NewWriter(wc)
	if err := w.WriteFileHeader(domain.MaxFrameLen, linkType(capture)); err != nil {
		return nil, fmt.Errorf("capture: write pcap stream header: %w", err)
	}
	return &StreamSink{w: w, wc: wc}, nil
}

func (s *StreamSink) WriteRecord(capture domain.CaptureType, tsSec, tsUsec uint32, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ci := newCaptureInfo(tsSec, tsUsec, len(payload))
	return s.w.WritePacket(ci, payload)
}

func (s *StreamSink) Flush() error { return nil }

func (s *StreamSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wc.Close()
}

// EncodeHCIEvent synthesizes the HCI H4 advertising-report event this
// appliance's BLE PCAP records carry, per the external interface contract:
// [0x04][0x3E][param_len][0x02][0x01][evt_type=0x00][addr_type][addr*6][adv_len][adv...][rssi]
func EncodeHCIEvent(addrType uint8, addr [6]byte, adv []byte, rssi int8) []byte {
	paramLen := 1 + 1 + 1 + 1 + 6 + 1 + len(adv) + 1
	buf := make([]byte, 0, paramLen+3)
	buf = append(buf, 0x04, 0x3E, byte(paramLen))
	buf = append(buf, 0x02, 0x01, 0x00, addrType)
	for i := 5; i >= 0; i-- {
		buf = append(buf, addr[i])
	}
	buf = append(buf, byte(len(adv)))
	buf = append(buf, adv...)
	buf = append(buf, byte(rssi))
	return buf
}
