package capture

import (
	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

// SkimmerWriter implements decoder.CaptureWriter, encoding a skimmer
// match as an enhanced PCAP entry
// ([mac][rssi][name_len][name][reason_len][reason]) and enqueuing it on
// the pipeline under CaptureBluetooth. The entry ends after the reason:
// domain.SkimmerRecord carries no raw advertisement bytes, so no raw_adv
// tail is written.
type SkimmerWriter struct {
	pipeline *Pipeline
}

// NewSkimmerWriter wraps pipeline for skimmer-match persistence.
func NewSkimmerWriter(pipeline *Pipeline) *SkimmerWriter {
	return &SkimmerWriter{pipeline: pipeline}
}

// WriteSkimmerRecord encodes rec and enqueues it for the pcap writer.
func (w *SkimmerWriter) WriteSkimmerRecord(rec domain.SkimmerRecord) error {
	name := []byte(rec.Name)
	reason := []byte(rec.Reason)

	buf := make([]byte, 0, 6+1+1+len(name)+1+len(reason))
	buf = append(buf, rec.Addr[:]...)
	buf = append(buf, byte(rec.RSSI))
	buf = append(buf, byte(len(name)))
	buf = append(buf, name...)
	buf = append(buf, byte(len(reason)))
	buf = append(buf, reason...)

	w.pipeline.Enqueue(buf, domain.CaptureBluetooth)
	return nil
}
