package broadcaster

import (
	"context"
	"fmt"
	"log"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/lcalzada-xor/wmap-radio/internal/adapters/ble/decoder"
	"github.com/lcalzada-xor/wmap-radio/internal/core/ports"
)

// TinygoAdvertiser implements ports.BleAdvertiser over the host's
// Bluetooth controller via tinygo.org/x/bluetooth, the one BLE stack
// this module's dependency set carries. Because the raw byte-level
// advertisement format our spam/spoof/emulation code builds has no
// "write these exact bytes" entry point in that library's portable
// advertising API, SetAdvData re-parses the finished AD structures with
// decoder.Walk and re-expresses them as the library's structured
// ManufacturerData/ServiceData fields; AdvStart then configures and
// starts the adapter's single advertisement instance with those fields.
type TinygoAdvertiser struct {
	adapter *bluetooth.Adapter
	logger  *log.Logger

	pending bluetooth.AdvertisementOptions
}

// NewTinygoAdvertiser returns an advertiser bound to the host's default
// Bluetooth adapter.
func NewTinygoAdvertiser(logger *log.Logger) (*TinygoAdvertiser, error) {
	if logger == nil {
		logger = log.Default()
	}
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("broadcaster: enable adapter: %w", err)
	}
	return &TinygoAdvertiser{adapter: adapter, logger: logger}, nil
}

// SetAdvData decodes the raw AD structures in data and stages them as
// the advertisement's manufacturer/service-data fields for the next
// AdvStart call.
func (a *TinygoAdvertiser) SetAdvData(data []byte) error {
	structs := decoder.Walk(data)
	opts := bluetooth.AdvertisementOptions{}

	for _, s := range structs {
		switch s.Type {
		case 0xff: // manufacturer specific
			if len(s.Value) < 2 {
				continue
			}
			companyID := uint16(s.Value[0]) | uint16(s.Value[1])<<8
			opts.ManufacturerData = append(opts.ManufacturerData, bluetooth.ManufacturerDataElement{
				CompanyID: companyID,
				Data:      append([]byte(nil), s.Value[2:]...),
			})
		case 0x16: // 16-bit service data
			if len(s.Value) < 2 {
				continue
			}
			uuid := bluetooth.New16BitUUID(uint16(s.Value[0]) | uint16(s.Value[1])<<8)
			opts.ServiceData = append(opts.ServiceData, bluetooth.ServiceDataElement{
				UUID: uuid,
				Data: append([]byte(nil), s.Value[2:]...),
			})
		}
	}

	a.pending = opts
	return nil
}

// SetRandomAddress is best-effort: tinygo.org/x/bluetooth's portable
// adapter API has no per-advertisement random-address rotation entry
// point (the host's Bluetooth controller owns address assignment), so
// this logs the requested identity and proceeds with the controller's
// own address. Spam/spoof cadence and payload content still rotate
// correctly; only the on-air address does not follow addr.
func (a *TinygoAdvertiser) SetRandomAddress(addr [6]byte) error {
	a.logger.Printf("broadcaster: requested random address %02x:%02x:%02x:%02x:%02x:%02x not settable through the portable adapter API", addr[0], addr[1], addr[2], addr[3], addr[4], addr[5])
	return nil
}

// AdvStart configures and starts the adapter's advertisement with the
// fields staged by the most recent SetAdvData call.
func (a *TinygoAdvertiser) AdvStart(ctx context.Context, params ports.AdvParams) error {
	adv := a.adapter.DefaultAdvertisement()
	opts := a.pending
	if params.IntervalMin > 0 {
		opts.Interval = bluetooth.NewAdvertisingInterval(advIntervalDuration(params.IntervalMin))
	}
	if err := adv.Configure(opts); err != nil {
		return fmt.Errorf("broadcaster: configure advertisement: %w", err)
	}
	return adv.Start()
}

// AdvStop stops the adapter's currently running advertisement.
func (a *TinygoAdvertiser) AdvStop() error {
	return a.adapter.DefaultAdvertisement().Stop()
}

// advIntervalDuration converts a controller interval unit (0.625 ms) to
// a time.Duration.
func advIntervalDuration(units uint16) time.Duration {
	return time.Duration(units) * 625 * time.Microsecond
}
