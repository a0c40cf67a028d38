package broadcaster

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lcalzada-xor/wmap-radio/internal/adapters/odid"
	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
	"github.com/lcalzada-xor/wmap-radio/internal/core/ports"
)

// odidServiceUUID is the OpenDroneID 16-bit service-data UUID, spec
// §4.6/§4.9.
const odidServiceUUID = 0xfffa

// odidEmulationInterval is the cadence at which BasicID and Location
// alternate, spec §3's ~1 s scenario.
const odidEmulationInterval = 1 * time.Second

// OdidEmulator broadcasts a fabricated OpenDroneID identity over BLE
// service data, alternating BasicID and Location messages each cycle,
// grounded on original_source's emulation_broadcast_callback /
// aerial_detector_start_emulation.
type OdidEmulator struct {
	adv    ports.BleAdvertiser
	logger *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewOdidEmulator returns an emulator driving adv.
func NewOdidEmulator(adv ports.BleAdvertiser, logger *log.Logger) *OdidEmulator {
	if logger == nil {
		logger = log.Default()
	}
	return &OdidEmulator{adv: adv, logger: logger}
}

// Start begins emulating a drone identified by deviceID at the given
// position, running until ctx is canceled or Stop is called.
func (e *OdidEmulator) Start(ctx context.Context, deviceID string, lat, lon, alt float64) error {
	e.Stop()

	basicID := odid.EncodeBasicID(deviceID)
	location := odid.EncodeLocation(lat, lon, float32(alt))

	sessionCtx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	params := ports.AdvParams{
		ConnMode:    domain.AdvConnNone,
		DiscMode:    domain.AdvDiscGeneral,
		IntervalMin: 160, // 100 ms, units of 0.625 ms
		IntervalMax: 160,
		OwnAddrType: domain.AdvAddrRandom,
	}
	if err := e.adv.AdvStart(sessionCtx, params); err != nil {
		return err
	}

	go e.run(sessionCtx, basicID, location)
	return nil
}

func (e *OdidEmulator) run(ctx context.Context, basicID, location []byte) {
	ticker := time.NewTicker(odidEmulationInterval)
	defer ticker.Stop()

	var counter byte
	for {
		msg := basicID
		if counter%2 != 0 {
			msg = location
		}
		payload := append([]byte{counter}, msg...)
		if err := e.adv.SetAdvData(wrapServiceData16(odidServiceUUID, payload)); err != nil {
			e.logger.Printf("broadcaster: odid emulation: %v", err)
		}
		counter++

		select {
		case <-ctx.Done():
			e.adv.AdvStop()
			return
		case <-ticker.C:
		}
	}
}

// Stop ends a running emulation session.
func (e *OdidEmulator) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// wrapServiceData16 wraps value behind uuid (little-endian on air) as a
// single 16-bit service-data AD structure.
func wrapServiceData16(uuid uint16, value []byte) []byte {
	body := append([]byte{byte(uuid), byte(uuid >> 8)}, value...)
	return append([]byte{byte(len(body) + 1), 0x16}, body...)
}
