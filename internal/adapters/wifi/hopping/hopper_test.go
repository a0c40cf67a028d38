package hopping

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeSwitcher struct {
	mu   sync.Mutex
	sets []int
	fail int32
}

func (f *fakeSwitcher) SetChannel(iface string, channel int) error {
	if atomic.LoadInt32(&f.fail) == 1 {
		return errors.New("busy")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets = append(f.sets, channel)
	return nil
}

func (f *fakeSwitcher) snapshot() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, len(f.sets))
	copy(out, f.sets)
	return out
}

func TestHopperRoundRobin(t *testing.T) {
	sw := &fakeSwitcher{}
	h := New("wlan0mon", []int{1, 6, 11}, 10*time.Millisecond, sw)

	go h.Start()
	time.Sleep(55 * time.Millisecond)
	h.Stop()
	time.Sleep(5 * time.Millisecond)

	sets := sw.snapshot()
	assert.GreaterOrEqual(t, len(sets), 3)
	assert.Equal(t, 1, sets[0])
	assert.Equal(t, 6, sets[1])
	assert.Equal(t, 11, sets[2])
}

func TestHopperPauseSuspendsHopping(t *testing.T) {
	sw := &fakeSwitcher{}
	h := New("wlan0mon", []int{1, 6}, 10*time.Millisecond, sw)

	go h.Start()
	time.Sleep(5 * time.Millisecond)
	h.Pause(50 * time.Millisecond)
	countAtPause := len(sw.snapshot())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, countAtPause, len(sw.snapshot()))
	h.Stop()
}

func TestBuildChannelListOrdersNonOverlappingFirst(t *testing.T) {
	list := BuildChannelList(RegDefault, false)
	assert.Equal(t, []int{1, 6, 11}, list[:3])
	assert.NotContains(t, list, 36)
}

func TestBuildChannelListIncludesCountry5GHz(t *testing.T) {
	us := BuildChannelList(RegUS, true)
	assert.Contains(t, us, 165)
	jp := BuildChannelList(RegJP, true)
	assert.NotContains(t, jp, 165)
	assert.Contains(t, jp, 116)
	def := BuildChannelList(RegDefault, true)
	assert.Contains(t, def, 36)
	assert.NotContains(t, def, 100)
}
