package capture

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

type recordingSink struct {
	mu      sync.Mutex
	records [][]byte
	closed  bool
}

func (s *recordingSink) WriteRecord(capture domain.CaptureType, tsSec, tsUsec uint32, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(payload))
	copy(cp, payload)
	s.records = append(s.records, cp)
	return nil
}

func (s *recordingSink) Flush() error { return nil }

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func TestPipelineEnqueueOrderPreserved(t *testing.T) {
	sink := &recordingSink{}
	p := New(sink)

	for i := 0; i < 10; i++ {
		p.Enqueue([]byte{byte(i)}, domain.CaptureWifi)
	}

	summary := p.Stop(context.Background())
	require.Equal(t, uint64(10), summary.Captured)
	require.Equal(t, 10, sink.count())
	for i := 0; i < 10; i++ {
		assert.Equal(t, byte(i), sink.records[i][0])
	}
	assert.True(t, sink.closed)
}

func TestPipelineDropsOnFullQueueWithoutBlocking(t *testing.T) {
	sink := &recordingSink{}
	p := New(sink)
	// Fill well beyond queue depth; none of this should block the test.
	for i := 0; i < domain.CaptureQueueDepth*4; i++ {
		p.Enqueue([]byte{0xAA}, domain.CaptureBluetooth)
	}
	p.Stop(context.Background())

	counters := p.Counters()
	assert.Equal(t, counters.PacketsProcessed+counters.Dropped, counters.TotalReceived)
}

func TestShouldFilterRejectsMiscShortAndWeakFrames(t *testing.T) {
	longEnough := make([]byte, 24)
	cases := []struct {
		name   string
		frame  domain.PromiscuousFrame
		typ    domain.Dot11Type
		expect bool
	}{
		{"misc type", domain.PromiscuousFrame{Raw: longEnough, RSSI: -50}, domain.Dot11TypeMisc, true},
		{"too short", domain.PromiscuousFrame{Raw: make([]byte, 10), RSSI: -50}, domain.Dot11TypeMgmt, true},
		{"weak rssi", domain.PromiscuousFrame{Raw: longEnough, RSSI: -95}, domain.Dot11TypeMgmt, true},
		{"accepted", domain.PromiscuousFrame{Raw: longEnough, RSSI: -60}, domain.Dot11TypeMgmt, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expect, ShouldFilter(c.frame, c.typ))
		})
	}
}
