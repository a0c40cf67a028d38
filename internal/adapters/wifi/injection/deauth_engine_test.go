package injection

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

type recordingInjector struct {
	mu     sync.Mutex
	frames [][]byte
}

func (r *recordingInjector) Inject(_ context.Context, frame []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]byte, len(frame))
	copy(cp, frame)
	r.frames = append(r.frames, cp)
	return nil
}

func (r *recordingInjector) Close() error { return nil }

func (r *recordingInjector) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func TestDeauthEngineTransmitsUntilStopped(t *testing.T) {
	injector := &recordingInjector{}
	engine := NewDeauthEngine(NewTransmitter(injector), nil)

	cfg := domain.DeauthAttackConfig{
		Interface: "wlan0mon",
		TargetMAC: [6]byte{1, 2, 3, 4, 5, 6},
		ClientMAC: [6]byte{7, 8, 9, 10, 11, 12},
		Channel:   6,
		Type:      domain.DeauthUnicast,
	}

	id := engine.Start(context.Background(), cfg)
	require.NotEmpty(t, id)

	require.Eventually(t, func() bool { return injector.count() >= 2 }, time.Second, 5*time.Millisecond)

	state, ok := engine.Status(id)
	require.True(t, ok)
	assert.Equal(t, domain.AttackRunning, state.Status)
	assert.GreaterOrEqual(t, state.PacketsSent, uint64(2))

	engine.Stop(id)
	require.Eventually(t, func() bool {
		state, _ := engine.Status(id)
		return state.Status == domain.AttackStopped
	}, time.Second, 5*time.Millisecond)
}

func TestDeauthEngineStopAllCancelsEverySession(t *testing.T) {
	injector := &recordingInjector{}
	engine := NewDeauthEngine(NewTransmitter(injector), nil)

	id1 := engine.Start(context.Background(), domain.DeauthAttackConfig{Type: domain.DeauthBroadcast})
	id2 := engine.Start(context.Background(), domain.DeauthAttackConfig{Type: domain.DeauthBroadcast})

	engine.StopAll()

	require.Eventually(t, func() bool {
		s1, _ := engine.Status(id1)
		s2, _ := engine.Status(id2)
		return s1.Status == domain.AttackStopped && s2.Status == domain.AttackStopped
	}, time.Second, 5*time.Millisecond)
}

func TestDeauthEngineStatusUnknownSessionReturnsFalse(t *testing.T) {
	engine := NewDeauthEngine(NewTransmitter(&recordingInjector{}), nil)
	_, ok := engine.Status("does-not-exist")
	assert.False(t, ok)
}
