package decoder

import (
	"log"
	"strings"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

// suspiciousNamePatterns are substrings of BLE local names historically
// associated with cheap serial-to-BLE modules found embedded in card
// skimmers (HC-05/HC-06 clones, JDY boards, CC41 SPP modules).
var suspiciousNamePatterns = []string{
	"hc-05", "hc-06", "jdy", "cc41", "mlt-bt", "spp-ble", "ffd0", "linvor",
}

// CaptureWriter persists an enhanced PCAP entry for a skimmer match.
type CaptureWriter interface {
	WriteSkimmerRecord(rec domain.SkimmerRecord) error
}

// SkimmerHandler flags BLE local names that match known suspicious
// serial-bridge module naming, spec §4.5.
type SkimmerHandler struct {
	writer CaptureWriter
	logger *log.Logger
}

// NewSkimmerHandler returns a handler that logs matches through logger
// and, if writer is non-nil, persists an enhanced capture record.
func NewSkimmerHandler(writer CaptureWriter, logger *log.Logger) *SkimmerHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &SkimmerHandler{writer: writer, logger: logger}
}

// HandleAdvertisement implements Handler.
func (h *SkimmerHandler) HandleAdvertisement(ev domain.GapEvent) {
	name := CompleteName(Walk(ev.AdvData))
	if name == "" {
		return
	}
	lower := strings.ToLower(name)
	for _, pattern := range suspiciousNamePatterns {
		if !strings.Contains(lower, pattern) {
			continue
		}
		rec := domain.SkimmerRecord{Addr: ev.Addr, RSSI: ev.RSSI, Name: name, Reason: "name matches " + pattern}
		h.logger.Printf("ble: possible skimmer mac=%x name=%q reason=%q", ev.Addr, name, rec.Reason)
		if h.writer != nil {
			_ = h.writer.WriteSkimmerRecord(rec)
		}
		return
	}
}
