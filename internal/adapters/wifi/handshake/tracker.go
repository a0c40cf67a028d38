// Package handshake implements the EAPOL 4-way handshake tracker, spec
// §4.4: a fixed-capacity FIFO table pairing M1-M4 by (ap, sta, replay
// counter) and firing exactly one "Handshake found" event per completed
// pair.
package handshake

import (
	"fmt"
	"log"
	"sync"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

// FoundEvent is emitted when both halves of a handshake (AP- and
// station-originated messages) are observed for the same key.
type FoundEvent struct {
	Key    domain.EapolHandshakeKey
	APMsg  domain.EapolMsg
	STAMsg domain.EapolMsg
}

func (e FoundEvent) String() string {
	return fmt.Sprintf("Handshake found! AP=%x Pair=%s/%s", e.Key.APMac, e.APMsg, e.STAMsg)
}

// Tracker is the 16-entry FIFO handshake table. Observe and FoundCount
// are safe for concurrent use: a single mutex guards the whole table
// rather than per-entry locking.
type Tracker struct {
	mu      sync.Mutex
	entries []domain.EapolHandshakeEntry
	onFound func(FoundEvent)

	foundCount uint64
}

// New returns an empty tracker. onFound is invoked (synchronously, under
// the tracker's lock released) whenever a pair completes; pass nil to
// just observe FoundCount.
func New(onFound func(FoundEvent)) *Tracker {
	return &Tracker{onFound: onFound}
}

// FoundCount returns the number of completed handshakes observed so far.
func (t *Tracker) FoundCount() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.foundCount
}

// Observe records one EAPOL-Key message and returns true if it completed a
// handshake pair (both halves present). On completion both halves reset to
// None so the same replay counter cannot re-fire.
func (t *Tracker) Observe(key domain.EapolHandshakeKey, fromAP bool, msg domain.EapolMsg) bool {
	t.mu.Lock()

	idx := -1
	for i := range t.entries {
		if t.entries[i].Key == key {
			idx = i
			break
		}
	}
	if idx == -1 {
		entry := domain.EapolHandshakeEntry{Key: key}
		if len(t.entries) >= domain.EapolTableCap {
			t.entries = append(t.entries[1:], entry)
			idx = len(t.entries) - 1
		} else {
			t.entries = append(t.entries, entry)
			idx = len(t.entries) - 1
		}
	}

	if fromAP {
		t.entries[idx].APMsg = msg
	} else {
		t.entries[idx].STAMsg = msg
	}

	completed := t.entries[idx].APMsg != domain.EapolMsgNone && t.entries[idx].STAMsg != domain.EapolMsgNone
	var event FoundEvent
	if completed {
		event = FoundEvent{Key: key, APMsg: t.entries[idx].APMsg, STAMsg: t.entries[idx].STAMsg}
		t.entries[idx].APMsg = domain.EapolMsgNone
		t.entries[idx].STAMsg = domain.EapolMsgNone
		t.foundCount++
	}
	t.mu.Unlock()

	if completed {
		log.Print(event.String())
		if t.onFound != nil {
			t.onFound(event)
		}
	}
	return completed
}
