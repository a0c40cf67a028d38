package classifier

import (
	"container/list"
	"sync"
	"time"
)

// probeDedupWindow is the minimum gap between two Allow-ed sightings of the
// same key, spec §4.3/§8's 1000 ms minimum inter-emit interval for probe
// requests.
const probeDedupWindow = 1000 * time.Millisecond

// lru is a fixed-capacity least-recently-used set with a per-key re-allow
// window, used to dedup probe request sightings by (src, ssid). Grounded on
// the OUI lookup cache's container/list + map eviction pattern, extended
// with a last-allowed timestamp since the probe dedup table needs to
// re-allow a key after the window elapses rather than suppress it forever.
type lru struct {
	capacity int
	mu       sync.Mutex
	items    map[string]*list.Element
	order    *list.List
}

type lruEntry struct {
	key         string
	lastAllowed time.Time
}

func newLRU(capacity int) *lru {
	return &lru{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Allow reports whether key has not been allowed within the last
// probeDedupWindow, recording it and moving it to the front if so. A key
// seen again before the window elapses returns false without being moved.
func (l *lru) Allow(key string) bool {
	return l.allowAt(key, time.Now())
}

func (l *lru) allowAt(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if elem, ok := l.items[key]; ok {
		entry := elem.Value.(*lruEntry)
		if now.Sub(entry.lastAllowed) < probeDedupWindow {
			return false
		}
		entry.lastAllowed = now
		l.order.MoveToFront(elem)
		return true
	}

	elem := l.order.PushFront(&lruEntry{key: key, lastAllowed: now})
	l.items[key] = elem
	if l.order.Len() > l.capacity {
		oldest := l.order.Back()
		if oldest != nil {
			l.order.Remove(oldest)
			delete(l.items, oldest.Value.(*lruEntry).key)
		}
	}
	return true
}
