package decoder

import "github.com/lcalzada-xor/wmap-radio/internal/core/domain"

// Handler is the common interface every BLE advertisement handler
// implements. Handlers are independent and idempotent: a discovery event
// is delivered to every handler in the active set regardless of whether
// another handler already matched it, per spec §4.5's note that the
// active handler set determines which classifications are attempted.
type Handler interface {
	HandleAdvertisement(ev domain.GapEvent)
}

// Set fans a single GAP discovery event out to every registered handler.
type Set struct {
	handlers []Handler
}

// NewSet returns a dispatcher over handlers.
func NewSet(handlers ...Handler) *Set {
	return &Set{handlers: handlers}
}

// Dispatch delivers ev to every handler in the set.
func (s *Set) Dispatch(ev domain.GapEvent) {
	for _, h := range s.handlers {
		h.HandleAdvertisement(ev)
	}
}
