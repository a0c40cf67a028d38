// Package scanner drives the host Bluetooth controller's GAP discovery
// scan and feeds every advertisement into the decoder handler set,
// grounded on original_source's ble_manager.c generic scan callback
// (ble_gap_event_general's BLE_GAP_EVENT_DISC case) and dispatched the
// idiomatic-Go way through decoder.Set.
package scanner

import (
	"context"
	"fmt"
	"sync"

	"tinygo.org/x/bluetooth"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

// Dispatcher receives every BLE advertisement observed during a scan.
type Dispatcher interface {
	Dispatch(ev domain.GapEvent)
}

// Scanner implements arbiter.BleStack by running a continuous GAP scan
// on the host's default Bluetooth adapter and handing every result to a
// Dispatcher.
type Scanner struct {
	adapter    *bluetooth.Adapter
	dispatcher Dispatcher

	mu   sync.Mutex
	done chan struct{}
}

// New returns a scanner over the host's default adapter.
func New(dispatcher Dispatcher) *Scanner {
	return &Scanner{adapter: bluetooth.DefaultAdapter, dispatcher: dispatcher}
}

// Start enables the adapter and begins scanning in the background.
// Start returns once the scan has been requested; scanning itself runs
// until ctx is canceled or Stop is called.
func (s *Scanner) Start(ctx context.Context) error {
	if err := s.adapter.Enable(); err != nil {
		return fmt.Errorf("scanner: enable adapter: %w", err)
	}

	s.mu.Lock()
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.adapter.StopScan()
		close(done)
	}()

	go func() {
		err := s.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			s.dispatcher.Dispatch(toGapEvent(result))
		})
		if err != nil {
			// scan loop ended (context canceled via StopScan, or a
			// controller error); nothing further to report here.
			_ = err
		}
	}()

	return nil
}

// Stop ends the active scan.
func (s *Scanner) Stop(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	if err := s.adapter.StopScan(); err != nil {
		return fmt.Errorf("scanner: stop scan: %w", err)
	}
	select {
	case <-done:
	case <-ctx.Done():
	}
	return nil
}

// toGapEvent converts a tinygo bluetooth scan result into the domain
// event every decoder handler consumes.
func toGapEvent(result bluetooth.ScanResult) domain.GapEvent {
	ev := domain.GapEvent{
		RSSI:    int8(result.RSSI),
		AdvData: rawAdvData(result),
		AdvType: domain.AdvInd,
	}
	mac := result.Address.MAC
	copy(ev.Addr[:], mac[:])
	return ev
}

// rawAdvData re-encodes the parsed advertisement fields the library
// exposes back into raw AD structures, so downstream decoder.Walk-based
// handlers (written against the wire format, not this library's parsed
// view) work unmodified regardless of which BLE backend is driving them.
func rawAdvData(result bluetooth.ScanResult) []byte {
	var out []byte
	if name := result.LocalName(); name != "" {
		out = append(out, byte(len(name)+1), 0x09)
		out = append(out, []byte(name)...)
	}
	for _, mfg := range result.ManufacturerData() {
		data := append([]byte{byte(mfg.CompanyID), byte(mfg.CompanyID >> 8)}, mfg.Data...)
		out = append(out, byte(len(data)+1), 0xff)
		out = append(out, data...)
	}
	return out
}
