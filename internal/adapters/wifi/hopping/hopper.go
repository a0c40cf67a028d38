// Package hopping implements the timer-driven channel-hopping scheduler,
// spec §4.7. Two independent instances run the same algorithm: one for
// capture/PineAP detection, one for wardriving.
package hopping

import (
	"log"
	"sync"
	"time"

	"github.com/lcalzada-xor/wmap-radio/internal/adapters/wifi/driver"
	"github.com/lcalzada-xor/wmap-radio/internal/core/ports"
)

// DefaultDwell is the hopper's default dwell time per channel.
const DefaultDwell = 250 * time.Millisecond

// Hopper cycles a radio interface through a channel list at a fixed dwell
// time, round robin. Setting a fixed channel (outside the hopper) cancels
// hopping by calling Stop.
type Hopper struct {
	Interface string
	Delay     time.Duration

	switcher ports.ChannelSwitcher

	mu           sync.RWMutex
	channels     []int
	currentIndex int

	stopChan  chan struct{}
	resetChan chan time.Duration
	stopOnce  sync.Once

	errorCount int
}

// New returns a Hopper ready to Start. If switcher is nil, a
// driver.Driver backed by the real `iw` binary is used.
func New(iface string, channels []int, delay time.Duration, switcher ports.ChannelSwitcher) *Hopper {
	if switcher == nil {
		switcher = driver.New(nil)
	}
	if delay <= 0 {
		delay = DefaultDwell
	}
	return &Hopper{
		Interface: iface,
		Delay:     delay,
		channels:  channels,
		switcher:  switcher,
		stopChan:  make(chan struct{}),
		resetChan: make(chan time.Duration, 1),
	}
}

// SetChannels replaces the channel list and resets the round-robin index.
func (h *Hopper) SetChannels(channels []int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.channels = channels
	h.currentIndex = 0
	log.Printf("hopping: %s channel list updated: %v", h.Interface, channels)
}

// Channels returns a copy of the current channel list.
func (h *Hopper) Channels() []int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]int, len(h.channels))
	copy(out, h.channels)
	return out
}

// Stop signals the hopper to shut down. Safe to call once.
func (h *Hopper) Stop() {
	h.stopOnce.Do(func() { close(h.stopChan) })
}

// Start runs the hopping loop until Stop is called. Intended to run in its
// own goroutine.
func (h *Hopper) Start() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("hopping: recovered from panic on %s: %v", h.Interface, r)
		}
	}()

	log.Printf("hopping: starting on %s (dwell=%v)", h.Interface, h.Delay)
	ticker := time.NewTicker(h.Delay)
	defer ticker.Stop()

	h.hop()

	for {
		select {
		case <-h.stopChan:
			log.Printf("hopping: stopping on %s", h.Interface)
			return
		case d := <-h.resetChan:
			log.Printf("hopping: %s paused for %v", h.Interface, d)
			ticker.Stop()
			select {
			case <-time.After(d):
				log.Printf("hopping: %s resuming", h.Interface)
				ticker.Reset(h.Delay)
			case <-h.stopChan:
				return
			}
		case <-ticker.C:
			h.hop()
		}
	}
}

// Pause suspends hopping for duration, used when a higher-priority
// operation (e.g. an EAPOL capture mid-handshake) needs a fixed channel.
func (h *Hopper) Pause(duration time.Duration) {
	select {
	case h.resetChan <- duration:
	default:
	}
}

func (h *Hopper) hop() {
	h.mu.Lock()
	if len(h.channels) == 0 {
		h.mu.Unlock()
		return
	}
	if h.currentIndex >= len(h.channels) {
		h.currentIndex = 0
	}
	ch := h.channels[h.currentIndex]
	h.currentIndex = (h.currentIndex + 1) % len(h.channels)
	h.mu.Unlock()

	if err := h.switcher.SetChannel(h.Interface, ch); err != nil {
		h.errorCount++
		if h.errorCount == 1 || h.errorCount%10 == 0 {
			log.Printf("hopping: failed to set channel %d on %s: %v (consecutive errors: %d)", ch, h.Interface, err, h.errorCount)
		}
		return
	}
	if h.errorCount > 0 {
		log.Printf("hopping: %s recovered after %d errors", h.Interface, h.errorCount)
		h.errorCount = 0
	}
}
