// Package arbiter serializes exclusive ownership of the shared RF front end
// between the Wi-Fi and BLE stacks, and handles suspend/restore of the
// previously active stack across a switch.
package arbiter

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

// WifiStack is the minimal lifecycle surface the arbiter needs from the
// Wi-Fi adapter to suspend and restore it.
type WifiStack interface {
	Stop() error
	Start(snapshot domain.WifiStackSnapshot) error
	Snapshot() domain.WifiStackSnapshot
}

// BleStack is the minimal lifecycle surface the arbiter needs from the BLE
// adapter to suspend and restore it.
type BleStack interface {
	Stop(ctx context.Context) error
	Start(ctx context.Context) error
}

// HeapProbe reports the largest free heap block available, used to decide
// whether the Wi-Fi stack should reinitialize with a reduced buffer count.
// On a hosted Go build this is always "plenty of heap"; the seam exists so
// the decision point survives the port, matching the source's "pre-init
// heap" / "post-init heap" log pair.
type HeapProbe func() (largestFreeBlock int)

// DefaultHeapProbe reports a large headroom value, since a hosted process
// does not face the embedded target's fragmentation concerns.
func DefaultHeapProbe() int { return 1 << 20 }

const wifiHeapReducedThreshold = 40 * 1024

const bleTeardownTimeout = 1 * time.Second

// Arbiter implements ports.Arbiter. One Wi-Fi stack and one BLE stack are
// registered at construction; requests flow through Request/Release over
// these modes:
//
//	Off -> WifiUp -> WifiPromiscuous <-> WifiStation -> Off
//	Off -> BleUp -> (BleObserver | BleBroadcaster) -> Off
//
// legalFrom does not enforce the intermediate steps: from Off, or from
// any Wi-Fi or BLE mode, a request may go directly to any Wi-Fi or BLE
// mode (for example Off -> WifiPromiscuous, or WifiStation -> BleObserver
// through a suspend/restore). A mode outside these sets is refused with
// an error wrapping both ErrIllegalTransition and ErrRadioBusy.
type Arbiter struct {
	mu sync.Mutex

	wifi WifiStack
	ble  BleStack
	heap HeapProbe

	current  domain.RadioMode
	wifiSnap domain.WifiStackSnapshot
}

// New returns an Arbiter in the Off state.
func New(wifi WifiStack, ble BleStack, heap HeapProbe) *Arbiter {
	if heap == nil {
		heap = DefaultHeapProbe
	}
	return &Arbiter{wifi: wifi, ble: ble, heap: heap, current: domain.RadioOff}
}

// Current returns the mode currently owning the front end.
func (a *Arbiter) Current() domain.RadioMode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func isWifiMode(m domain.RadioMode) bool {
	return m == domain.RadioWifiUp || m == domain.RadioWifiStation || m == domain.RadioWifiPromiscuous
}

func isBleMode(m domain.RadioMode) bool {
	return m == domain.RadioBleUp || m == domain.RadioBleObserver || m == domain.RadioBleBroadcaster
}

// Request claims the front end for mode, suspending the other stack if
// necessary. A failure to bring up the requested stack unwinds the
// suspension and restores whatever was running before; a failure to
// restore that prior stack is logged and leaves the arbiter Off. Either
// failure is returned as an error wrapping ErrDriverError.
func (a *Arbiter) Request(ctx context.Context, mode domain.RadioMode) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if mode == a.current {
		return nil
	}
	if !a.legalFrom(a.current, mode) {
		return fmt.Errorf("arbiter: %s -> %s: %w: %w", a.current, mode, domain.ErrIllegalTransition, domain.ErrRadioBusy)
	}

	switch {
	case isBleMode(mode) && isWifiMode(a.current):
		return a.switchWifiToBle(ctx, mode)
	case isWifiMode(mode) && isBleMode(a.current):
		return a.switchBleToWifi(ctx, mode)
	case isWifiMode(mode):
		a.current = mode
		return nil
	case isBleMode(mode):
		if err := a.ble.Start(ctx); err != nil {
			return fmt.Errorf("arbiter: ble start: %w", domain.ErrDriverError)
		}
		a.current = mode
		return nil
	case mode == domain.RadioOff:
		a.current = domain.RadioOff
		return nil
	default:
		return fmt.Errorf("arbiter: %s -> %s: %w: %w", a.current, mode, domain.ErrIllegalTransition, domain.ErrRadioBusy)
	}
}

// switchWifiToBle snapshots the running Wi-Fi stack, tears it down, and
// brings BLE up. On BLE init failure it attempts to restore Wi-Fi from the
// snapshot; if that also fails the arbiter reports Idle.
func (a *Arbiter) switchWifiToBle(ctx context.Context, mode domain.RadioMode) error {
	a.wifiSnap = a.wifi.Snapshot()
	log.Printf("arbiter: pre-init heap=%d", a.heap())

	if err := a.wifi.Stop(); err != nil {
		return fmt.Errorf("arbiter: wifi stop: %w", domain.ErrDriverError)
	}

	if err := a.ble.Start(ctx); err != nil {
		if restoreErr := a.wifi.Start(a.wifiSnap); restoreErr != nil {
			log.Printf("arbiter: ble init failed (%v) and wifi restore failed (%v); reporting idle", err, restoreErr)
			a.current = domain.RadioOff
			return fmt.Errorf("arbiter: ble init and wifi restore both failed: %w", domain.ErrDriverError)
		}
		a.current = a.wifiSnap.Mode
		return fmt.Errorf("arbiter: ble init failed, wifi restored: %w", domain.ErrDriverError)
	}

	log.Printf("arbiter: post-init heap=%d", a.heap())
	a.current = mode
	return nil
}

// switchBleToWifi stops BLE advertising/scanning, waits for the host task
// to exit (bounded), then reinitializes Wi-Fi from the saved snapshot.
// When the heap probe reports less than wifiHeapReducedThreshold it logs
// a reduced-buffer reinit; WifiStack.Start takes no buffer setting, so
// the same snapshot is passed either way and no buffers are trimmed. On
// Wi-Fi init failure it restarts BLE; if that also fails the arbiter
// reports Off.
func (a *Arbiter) switchBleToWifi(ctx context.Context, mode domain.RadioMode) error {
	stopCtx, cancel := context.WithTimeout(ctx, bleTeardownTimeout)
	defer cancel()

	if err := a.ble.Stop(stopCtx); err != nil {
		log.Printf("arbiter: ble stop did not complete cleanly: %v", err)
	}

	log.Printf("arbiter: pre-init heap=%d", a.heap())
	reduced := a.heap() < wifiHeapReducedThreshold
	snap := a.wifiSnap
	if reduced {
		log.Printf("arbiter: reinitializing wifi with reduced buffers")
	}

	if err := a.wifi.Start(snap); err != nil {
		if restoreErr := a.ble.Start(ctx); restoreErr != nil {
			log.Printf("arbiter: wifi init failed (%v) and ble restore failed (%v); reporting idle", err, restoreErr)
			a.current = domain.RadioOff
			return fmt.Errorf("arbiter: wifi init and ble restore both failed: %w", domain.ErrDriverError)
		}
		return fmt.Errorf("arbiter: wifi init failed, ble restored: %w", domain.ErrDriverError)
	}
	log.Printf("arbiter: post-init heap=%d", a.heap())
	a.current = mode
	return nil
}

// Release returns the arbiter to Off (or, for a wifi<->ble suspend/restore,
// the caller is expected to Request the other side rather than Release).
func (a *Arbiter) Release(mode domain.RadioMode) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current != mode {
		return fmt.Errorf("arbiter: release %s while in %s: %w", mode, a.current, domain.ErrIllegalTransition)
	}
	a.current = domain.RadioOff
	return nil
}

func (a *Arbiter) legalFrom(from, to domain.RadioMode) bool {
	if to == domain.RadioOff {
		return true
	}
	if from == domain.RadioOff {
		return true
	}
	if isWifiMode(from) && isWifiMode(to) {
		return true
	}
	if isWifiMode(from) && isBleMode(to) {
		return true
	}
	if isBleMode(from) && isWifiMode(to) {
		return true
	}
	if isBleMode(from) && isBleMode(to) {
		return true
	}
	return false
}
