package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// PacketsReceived counts raw frames handed to the capture pipeline by
	// the pcap reader, before any filtering.
	PacketsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wmap_radio",
			Name:      "packets_received_total",
			Help:      "Total number of frames received by the capture pipeline",
		},
		[]string{"interface"},
	)

	// PacketsFiltered counts frames the classifier discarded before
	// dispatch.
	PacketsFiltered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wmap_radio",
			Name:      "packets_filtered_out_total",
			Help:      "Total number of frames filtered out before processing",
		},
		[]string{"interface"},
	)

	// PacketsProcessed counts frames successfully dispatched to a handler.
	PacketsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wmap_radio",
			Name:      "packets_processed_total",
			Help:      "Total number of frames processed by the capture pipeline",
		},
		[]string{"interface"},
	)

	// PacketsDropped counts frames dropped because the pipeline's queue
	// was full.
	PacketsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wmap_radio",
			Name:      "packets_dropped_total",
			Help:      "Total number of frames dropped due to a full processing queue",
		},
		[]string{"interface"},
	)

	// HandshakesFound counts WPA/WPA2 handshake message pairs the tracker
	// completes.
	HandshakesFound = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wmap_radio",
			Name:      "hs_found_count",
			Help:      "Total number of completed handshakes captured",
		},
		[]string{"interface"},
	)

	// InjectionsTotal counts total injection attempts by the deauth,
	// EAPOL-logoff and SAE auth-flood sessions, labelled by type.
	InjectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wmap_radio",
			Name:      "injection_total",
			Help:      "Total number of packet injection attempts",
		},
		[]string{"interface", "type"},
	)

	// InjectionErrors counts failed injection attempts.
	InjectionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wmap_radio",
			Name:      "injection_errors_total",
			Help:      "Total number of failed packet injection attempts",
		},
		[]string{"interface", "type"},
	)

	// BleSpamFrames counts BLE advertisements sent by the spam engine,
	// by spam profile.
	BleSpamFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wmap_radio",
			Name:      "ble_spam_frames_total",
			Help:      "Total number of BLE spam advertisements transmitted",
		},
		[]string{"profile"},
	)

	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// Idempotent; safe to call multiple times.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(PacketsReceived)
		prometheus.DefaultRegisterer.Register(PacketsFiltered)
		prometheus.DefaultRegisterer.Register(PacketsProcessed)
		prometheus.DefaultRegisterer.Register(PacketsDropped)
		prometheus.DefaultRegisterer.Register(HandshakesFound)
		prometheus.DefaultRegisterer.Register(InjectionsTotal)
		prometheus.DefaultRegisterer.Register(InjectionErrors)
		prometheus.DefaultRegisterer.Register(BleSpamFrames)
	})
}
