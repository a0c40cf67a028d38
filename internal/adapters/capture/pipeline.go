// Package capture implements the bounded-queue pipeline from radio
// callbacks to a single writer task, and PCAP framing for the three
// capture types this appliance emits. It is grounded on the teacher's
// handshake save-queue/save-loop pattern, generalized to every capture
// type rather than just completed EAPOL sessions.
package capture

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

// Sink is the destination a Pipeline's writer task drains into. File and
// UART/streaming sinks both implement it; see FileSink and StreamSink.
type Sink interface {
	WriteRecord(capture domain.CaptureType, tsSec, tsUsec uint32, payload []byte) error
	Flush() error
	Close() error
}

// Counters are the race-tolerant plain counters the callback path
// increments; exact accuracy under concurrent callbacks is not required.
type Counters struct {
	TotalReceived    uint64
	PacketsFiltered  uint64
	PacketsProcessed uint64
	Dropped          uint64
}

func (c *Counters) addReceived()  { atomic.AddUint64(&c.TotalReceived, 1) }
func (c *Counters) addFiltered()  { atomic.AddUint64(&c.PacketsFiltered, 1) }
func (c *Counters) addProcessed() { atomic.AddUint64(&c.PacketsProcessed, 1) }
func (c *Counters) addDropped()   { atomic.AddUint64(&c.Dropped, 1) }

// Snapshot returns a copy of the current counter values.
func (c *Counters) Snapshot() Counters {
	return Counters{
		TotalReceived:    atomic.LoadUint64(&c.TotalReceived),
		PacketsFiltered:  atomic.LoadUint64(&c.PacketsFiltered),
		PacketsProcessed: atomic.LoadUint64(&c.PacketsProcessed),
		Dropped:          atomic.LoadUint64(&c.Dropped),
	}
}

const writerTimeout = 500 * time.Millisecond

// Pipeline owns the bounded SPSC-style queue and the writer task. A
// Pipeline exists only while a capture operation is active; Stop tears the
// queue down and releases the sink, exactly as the teacher's cleanup
// routine finalizes a handshake session's pcap writer.
type Pipeline struct {
	sink     Sink
	queue    chan domain.CaptureItem
	counters Counters

	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}

	sinceFlush int
}

// New starts a pipeline's writer task against sink. The caller is
// responsible for calling Stop exactly once.
func New(sink Sink) *Pipeline {
	p := &Pipeline{
		sink:     sink,
		queue:    make(chan domain.CaptureItem, domain.CaptureQueueDepth),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go p.writerLoop()
	return p
}

// Enqueue copies buf into a freshly allocated owned buffer and posts it to
// the bounded queue. Callback-context callers MUST treat this as
// non-blocking: on a full queue the copy is dropped and a drop counter
// incremented, matching the "no stall in callback context" contract.
func (p *Pipeline) Enqueue(buf []byte, capture domain.CaptureType) {
	p.counters.addReceived()
	owned := make([]byte, len(buf))
	copy(owned, buf)
	item := domain.CaptureItem{Buffer: owned, CaptureType: capture, Length: uint16(len(owned))}

	select {
	case p.queue <- item:
		p.counters.addProcessed()
	default:
		p.counters.addDropped()
	}
}

// Filtered records a frame that the classifier's early-filtering rejected
// (misc type, too short, RSSI floor) without ever reaching Enqueue.
func (p *Pipeline) Filtered() {
	p.counters.addReceived()
	p.counters.addFiltered()
}

// Counters returns a snapshot of the pipeline's running counters.
func (p *Pipeline) Counters() Counters {
	return p.counters.Snapshot()
}

func (p *Pipeline) writerLoop() {
	defer close(p.done)
	ticker := time.NewTicker(writerTimeout)
	defer ticker.Stop()

	for {
		select {
		case item, ok := <-p.queue:
			if !ok {
				return
			}
			now := time.Now()
			if err := p.sink.WriteRecord(item.CaptureType, uint32(now.Unix()), uint32(now.Nanosecond()/1000), item.Buffer); err != nil {
				log.Printf("capture: write record: %v", err)
			}
			p.sinceFlush++
			if p.sinceFlush >= domain.CaptureFlushInterval {
				p.flush()
			}
		case <-ticker.C:
			p.flush()
		case <-p.stopChan:
			p.drain()
			return
		}
	}
}

func (p *Pipeline) flush() {
	if err := p.sink.Flush(); err != nil {
		log.Printf("capture: flush: %v", err)
	}
	p.sinceFlush = 0
}

// drain writes every item still queued to the sink, in queue order, so a
// frame accepted by Enqueue is not lost when Stop races the writer task.
func (p *Pipeline) drain() {
	for {
		select {
		case item := <-p.queue:
			now := time.Now()
			if err := p.sink.WriteRecord(item.CaptureType, uint32(now.Unix()), uint32(now.Nanosecond()/1000), item.Buffer); err != nil {
				log.Printf("capture: write record: %v", err)
			}
		default:
			return
		}
	}
}

// Stop removes the pipeline from service: it writes out any items still
// queued, finalizes the sink, and returns a capture summary.
// Safe to call once; subsequent calls are no-ops.
func (p *Pipeline) Stop(ctx context.Context) domain.CaptureSummary {
	p.stopOnce.Do(func() {
		close(p.stopChan)
		select {
		case <-p.done:
		case <-ctx.Done():
		}
		if err := p.sink.Close(); err != nil {
			log.Printf("capture: close sink: %v", err)
		}
	})
	snap := p.counters.Snapshot()
	return domain.CaptureSummary{Captured: snap.PacketsProcessed, Filtered: snap.PacketsFiltered}
}

// ShouldFilter applies the early-filtering contract: drop Misc frames,
// frames shorter than 24 bytes, and frames below the RSSI floor.
func ShouldFilter(frame domain.PromiscuousFrame, dot11Type domain.Dot11Type) bool {
	const rssiFloor = -90
	if dot11Type == domain.Dot11TypeMisc {
		return true
	}
	if len(frame.Raw) < 24 {
		return true
	}
	if frame.RSSI < rssiFloor {
		return true
	}
	return false
}

// ErrQueueTorn builds the error describing an operation attempted after
// Stop. No Pipeline method returns it: Enqueue after Stop does not check
// for a stopped pipeline.
func ErrQueueTorn() error { return fmt.Errorf("capture: pipeline stopped: %w", domain.ErrQueueFull) }
