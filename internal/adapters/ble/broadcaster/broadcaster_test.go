package broadcaster

import (
	"context"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/wmap-radio/internal/adapters/ble/decoder"
	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
	"github.com/lcalzada-xor/wmap-radio/internal/core/ports"
)

type fakeAdvertiser struct {
	mu sync.Mutex

	setCalls    int
	failUntil   int
	lastData    []byte
	started     bool
	stopped     int
	lastParams  ports.AdvParams
	lastAddress [6]byte
}

func (f *fakeAdvertiser) SetAdvData(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	if f.setCalls <= f.failUntil {
		return assert.AnError
	}
	f.lastData = data
	return nil
}

func (f *fakeAdvertiser) SetRandomAddress(addr [6]byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastAddress = addr
	return nil
}

func (f *fakeAdvertiser) AdvStart(ctx context.Context, params ports.AdvParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = true
	f.lastParams = params
	return nil
}

func (f *fakeAdvertiser) AdvStop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
	return nil
}

func (f *fakeAdvertiser) snapshot() fakeAdvertiser {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f
}

func TestRandomAddressSetsLocallyAdministeredBits(t *testing.T) {
	for i := 0; i < 50; i++ {
		addr := RandomAddress()
		top := addr[5] & 0xc0
		assert.True(t, top == 0xc0 || top == 0x00, "unexpected top bits %02x", top)
	}
}

func TestRandomAddressRejectsAllZeroAndAllOne(t *testing.T) {
	assert.True(t, isAllZeroOrOneRandomBits([6]byte{0, 0, 0, 0, 0, 0x00}))
	assert.True(t, isAllZeroOrOneRandomBits([6]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x3f}))
	assert.False(t, isAllZeroOrOneRandomBits([6]byte{0x01, 0, 0, 0, 0, 0x00}))
}

func TestSpamEngineSendsAppleContinuityPayload(t *testing.T) {
	adv := &fakeAdvertiser{}
	engine := NewSpamEngine(adv, log.New(nilWriter{}, "", 0))

	ctx, cancel := context.WithCancel(context.Background())
	engine.Start(ctx, domain.SpamApple)

	require.Eventually(t, func() bool {
		return adv.snapshot().started
	}, time.Second, 5*time.Millisecond)

	snap := adv.snapshot()
	assert.Equal(t, domain.AdvAddrPublic, snap.lastParams.OwnAddrType)
	structs := decoder.Walk(snap.lastData)
	require.NotEmpty(t, structs)
	mfg := decoder.ManufacturerData(structs)
	require.Len(t, mfg, 1)
	assert.Equal(t, uint16(0x004c), mfg[0].CompanyID)

	cancel()
	engine.Stop()
}

func TestSpamEngineRandomizesAddressForNonAppleProfiles(t *testing.T) {
	adv := &fakeAdvertiser{}
	engine := NewSpamEngine(adv, log.New(nilWriter{}, "", 0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine.Start(ctx, domain.SpamSamsung)

	require.Eventually(t, func() bool {
		return adv.snapshot().started
	}, time.Second, 5*time.Millisecond)

	snap := adv.snapshot()
	assert.Equal(t, domain.AdvAddrRandom, snap.lastParams.OwnAddrType)
	assert.NotEqual(t, [6]byte{}, snap.lastAddress)
}

func TestAirtagSpooferTruncatesPayloadOnRepeatedFailure(t *testing.T) {
	adv := &fakeAdvertiser{failUntil: 2}
	spoofer := NewAirtagSpoofer(adv, log.New(nilWriter{}, "", 0))

	payload := append([]byte{0x4c, 0x00}, make([]byte, 25)...)
	err := spoofer.Start(context.Background(), [6]byte{0xc0, 1, 2, 3, 4, 5}, payload)
	require.NoError(t, err)

	snap := adv.snapshot()
	assert.True(t, snap.started)
	assert.Equal(t, [6]byte{0xc0, 1, 2, 3, 4, 5}, snap.lastAddress)
	// attempt 2 succeeded: shrink = 3*2 = 6 bytes removed from the 27-byte payload.
	assert.Len(t, snap.lastData, 3+(27-6)+2)

	spoofer.Stop()
}

func TestOdidEmulatorAlternatesBasicIDAndLocation(t *testing.T) {
	adv := &fakeAdvertiser{}
	emulator := NewOdidEmulator(adv, log.New(nilWriter{}, "", 0))

	ctx, cancel := context.WithCancel(context.Background())
	err := emulator.Start(ctx, "GHOST-TEST", 37.7749, -122.4194, 100.0)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return adv.snapshot().setCalls >= 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	emulator.Stop()
}

type nilWriter struct{}

func (nilWriter) Write(p []byte) (int, error) { return len(p), nil }
