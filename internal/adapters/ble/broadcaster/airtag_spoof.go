package broadcaster

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
	"github.com/lcalzada-xor/wmap-radio/internal/core/ports"
)

// spoofSetRetries and spoofShrinkPerAttempt implement spec §4.9's
// truncate-and-retry rule: on an advertising-data-set failure, retry up
// to 3 times, each time removing 3*attempt bytes from the captured
// payload.
const (
	spoofSetRetries       = 3
	spoofShrinkPerAttempt = 3
)

// AirtagSpoofer replays a captured AirTag's advertisement under its own
// random static address, grounded on original_source's
// ble_spoof_selected_airtag: reuse the tag's captured address (it is
// passed to SetRandomAddress as given, without checking that it is a
// random static address), set the captured manufacturer payload
// (truncating on repeated set-data failure), and advertise indefinitely
// until stopped.
type AirtagSpoofer struct {
	adv    ports.BleAdvertiser
	logger *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewAirtagSpoofer returns a spoofer driving adv.
func NewAirtagSpoofer(adv ports.BleAdvertiser, logger *log.Logger) *AirtagSpoofer {
	if logger == nil {
		logger = log.Default()
	}
	return &AirtagSpoofer{adv: adv, logger: logger}
}

// Start begins spoofing addr using payload, the raw manufacturer-data
// bytes captured from the genuine tag's advertisement (company ID
// included). It advertises until ctx is canceled or Stop is called.
func (s *AirtagSpoofer) Start(ctx context.Context, addr [6]byte, payload []byte) error {
	s.Stop()

	if err := s.adv.SetRandomAddress(addr); err != nil {
		return err
	}

	if _, err := setTruncatedAdvData(s.adv, payload); err != nil {
		return err
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	return s.adv.AdvStart(sessionCtx, spoofAdvParams())
}

// Stop ends a running spoof session, waiting (best-effort) 20 ms for
// the advertising set to drain, spec §5's spoofing-stop rule.
func (s *AirtagSpoofer) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
		s.adv.AdvStop()
		time.Sleep(20 * time.Millisecond)
	}
}

func spoofAdvParams() ports.AdvParams {
	return ports.AdvParams{
		ConnMode: domain.AdvConnNone,
		DiscMode: domain.AdvDiscGeneral,
	}
}

// setTruncatedAdvData sets adv data built from the flags AD plus
// manufacturer-specific payload, retrying with progressively truncated
// payload on failure.
func setTruncatedAdvData(adv ports.BleAdvertiser, payload []byte) ([]byte, error) {
	build := func(p []byte) []byte {
		out := []byte{0x02, 0x01, 0x1a}
		return append(out, wrapManufacturerData(p)...)
	}

	data := build(payload)
	err := adv.SetAdvData(data)
	if err == nil {
		return data, nil
	}

	for attempt := 1; attempt <= spoofSetRetries; attempt++ {
		shrink := spoofShrinkPerAttempt * attempt
		if shrink >= len(payload) {
			break
		}
		truncated := payload[:len(payload)-shrink]
		data = build(truncated)
		if err = adv.SetAdvData(data); err == nil {
			return data, nil
		}
	}
	return nil, err
}
