package app

import (
	"context"
	"fmt"

	"tinygo.org/x/bluetooth"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

// bleController implements arbiter.BleStack as the generic "controller
// enabled" lifecycle, distinct from the mode-specific sessions layered on
// top of it (scanner.Scanner for BleObserver, the broadcaster engines for
// BleBroadcaster). Grounded on TinygoAdvertiser's own precedent of a
// best-effort no-op where the portable tinygo.org/x/bluetooth adapter API
// has no matching teardown call: there is no Disable() to pair with
// Enable(), so Stop does nothing and returns nil.
type bleController struct {
	adapter *bluetooth.Adapter
}

func newBleController(adapter *bluetooth.Adapter) *bleController {
	return &bleController{adapter: adapter}
}

func (b *bleController) Start(ctx context.Context) error {
	if err := b.adapter.Enable(); err != nil {
		return fmt.Errorf("app: enable ble adapter: %w", err)
	}
	return nil
}

func (b *bleController) Stop(ctx context.Context) error {
	return nil
}

// StartBlescan claims the front end for BLE observation and begins a
// continuous GAP scan, dispatching every advertisement to the decoder
// handler set.
func (a *Application) StartBlescan(ctx context.Context) error {
	if err := a.Arbiter.Request(ctx, domain.RadioBleObserver); err != nil {
		return fmt.Errorf("app: claim ble front end: %w", err)
	}
	if err := a.bleScanner.Start(ctx); err != nil {
		_ = a.Arbiter.Release(domain.RadioBleObserver)
		return fmt.Errorf("app: start ble scan: %w", err)
	}
	return nil
}

// StopBlescan ends the active GAP scan and releases the front end.
func (a *Application) StopBlescan(ctx context.Context) error {
	if a.Arbiter.Current() != domain.RadioBleObserver {
		return nil
	}
	if err := a.bleScanner.Stop(ctx); err != nil {
		a.Log.Warn("app: stop ble scan", "err", err)
	}
	return a.Arbiter.Release(domain.RadioBleObserver)
}

// StartBlespam claims the front end for BLE broadcasting and begins a
// vendor-spam advertisement flood of the given type.
func (a *Application) StartBlespam(ctx context.Context, spamType domain.SpamType) error {
	if a.spamEngine == nil {
		return fmt.Errorf("app: ble advertiser unavailable")
	}
	if err := a.Arbiter.Request(ctx, domain.RadioBleBroadcaster); err != nil {
		return fmt.Errorf("app: claim ble front end: %w", err)
	}
	a.spamEngine.Start(ctx, spamType)
	return nil
}

// StopBlespam ends the active spam session and releases the front end.
func (a *Application) StopBlespam() error {
	if a.spamEngine != nil {
		a.spamEngine.Stop()
	}
	if a.Arbiter.Current() == domain.RadioBleBroadcaster {
		return a.Arbiter.Release(domain.RadioBleBroadcaster)
	}
	return nil
}

// AirtagSpoofStart replays a previously captured AirTag's advertisement
// (addr plus its raw manufacturer-data payload) under the appliance's own
// BLE controller.
func (a *Application) AirtagSpoofStart(ctx context.Context, addr [6]byte, payload []byte) error {
	if a.airtagSpoof == nil {
		return fmt.Errorf("app: ble advertiser unavailable")
	}
	if err := a.Arbiter.Request(ctx, domain.RadioBleBroadcaster); err != nil {
		return fmt.Errorf("app: claim ble front end: %w", err)
	}
	if err := a.airtagSpoof.Start(ctx, addr, payload); err != nil {
		_ = a.Arbiter.Release(domain.RadioBleBroadcaster)
		return fmt.Errorf("app: start airtag spoof: %w", err)
	}
	return nil
}

// AirtagSpoofStop ends the active AirTag spoof session and releases the
// front end.
func (a *Application) AirtagSpoofStop() error {
	if a.airtagSpoof != nil {
		a.airtagSpoof.Stop()
	}
	if a.Arbiter.Current() == domain.RadioBleBroadcaster {
		return a.Arbiter.Release(domain.RadioBleBroadcaster)
	}
	return nil
}

// AerialSpoofStart begins emulating an OpenDroneID aircraft identity at
// (lat, lon, alt), using the configured spoof device ID.
func (a *Application) AerialSpoofStart(ctx context.Context, lat, lon, alt float64) error {
	if a.odidEmu == nil {
		return fmt.Errorf("app: ble advertiser unavailable")
	}
	if err := a.Arbiter.Request(ctx, domain.RadioBleBroadcaster); err != nil {
		return fmt.Errorf("app: claim ble front end: %w", err)
	}
	if err := a.odidEmu.Start(ctx, a.Config.OdidSpoofID, lat, lon, alt); err != nil {
		_ = a.Arbiter.Release(domain.RadioBleBroadcaster)
		return fmt.Errorf("app: start odid emulation: %w", err)
	}
	return nil
}

// AerialSpoofStop ends the active OpenDroneID emulation and releases the
// front end.
func (a *Application) AerialSpoofStop() error {
	if a.odidEmu != nil {
		a.odidEmu.Stop()
	}
	if a.Arbiter.Current() == domain.RadioBleBroadcaster {
		return a.Arbiter.Release(domain.RadioBleBroadcaster)
	}
	return nil
}

// AerialList returns a snapshot of every tracked aerial device (DJI or
// OpenDroneID), merged by MAC.
func (a *Application) AerialList() []domain.AerialDevice {
	return a.aerial.Snapshot()
}

// AerialTrack pins mac so periodic compaction never evicts it.
func (a *Application) AerialTrack(mac [6]byte) bool {
	return a.aerial.Track(mac)
}

// AerialUntrack clears a previous AerialTrack pin.
func (a *Application) AerialUntrack(mac [6]byte) bool {
	return a.aerial.Untrack(mac)
}

// AirtagSightings returns every AirTag the BLE decoder has observed,
// the source table AirtagSpoofStart's caller selects a target from.
func (a *Application) AirtagSightings() []domain.AirtagRecord {
	return a.airtagH.Entries()
}

// FlipperSightings returns every Flipper Zero the BLE decoder has
// observed.
func (a *Application) FlipperSightings() []domain.FlipperRecord {
	return a.flipperH.Entries()
}

// GattDevices returns every connectable BLE device the decoder has
// classified, with its best-guess tracker type.
func (a *Application) GattDevices() []domain.GattDevice {
	return a.gattH.Devices()
}
