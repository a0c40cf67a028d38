package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/lcalzada-xor/wmap-radio/internal/adapters/capture"
	"github.com/lcalzada-xor/wmap-radio/internal/adapters/wifi/classifier"
	"github.com/lcalzada-xor/wmap-radio/internal/adapters/wifi/driver"
	"github.com/lcalzada-xor/wmap-radio/internal/adapters/wifi/hopping"
	"github.com/lcalzada-xor/wmap-radio/internal/adapters/wifi/tables"
	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
	"github.com/lcalzada-xor/wmap-radio/internal/telemetry"
)

// wpsPollInterval is how often StartCapture(OpWPSDetect) checks whether
// the WPS table has reached capacity, since classifier.handleWPS itself
// discards WPSTable.Record's capReached return value.
const wpsPollInterval = 1 * time.Second

func newDriver() *driver.Driver {
	return driver.New(nil)
}

// wifiSession is one running (or paused) Wi-Fi capture session: the
// channel hopper, live packet reader, and classifier bound to a single
// operation and interface. It persists across a BLE interlude so the
// arbiter's suspend/restore can hand it back without losing classifier
// or handshake-tracker state (those live on Application, not here).
type wifiSession struct {
	op       domain.WifiOperation
	iface    string
	channels []int
	running  bool

	hopper   *hopping.Hopper
	reader   *capture.LiveReader
	pipeline *capture.Pipeline
	class    *classifier.Classifier
	cancel   context.CancelFunc
}

// wifiStackAdapter implements arbiter.WifiStack over the Application's
// single active wifiSession, so a BLE request can pause Wi-Fi capture
// and a later Wi-Fi request resumes it with the same operation.
type wifiStackAdapter struct {
	app *Application
}

func (w *wifiStackAdapter) Stop() error {
	return w.app.pauseWifiSession()
}

func (w *wifiStackAdapter) Start(snapshot domain.WifiStackSnapshot) error {
	if !snapshot.Running {
		return nil
	}
	return w.app.resumeWifiSession()
}

func (w *wifiStackAdapter) Snapshot() domain.WifiStackSnapshot {
	return w.app.wifiSnapshot()
}

func radioModeForOperation(op domain.WifiOperation) domain.RadioMode {
	if op == domain.OpNone {
		return domain.RadioWifiUp
	}
	return domain.RadioWifiPromiscuous
}

// StartCapture installs op as the active Wi-Fi capture operation on
// iface, claiming the RF front end through the arbiter (suspending BLE
// if it is currently active) and starting the channel hopper and live
// packet reader. channels, if empty, defaults to the full regulatory
// channel list for the configured country.
func (a *Application) StartCapture(ctx context.Context, op domain.WifiOperation, iface string, channels []int) error {
	a.wifiMu.Lock()
	if a.session != nil && a.session.running {
		a.wifiMu.Unlock()
		return fmt.Errorf("app: capture already active: %w", domain.ErrRadioBusy)
	}
	a.wifiMu.Unlock()

	if iface == "" {
		iface = a.primaryInterface()
	}
	if iface == "" {
		return fmt.Errorf("app: no Wi-Fi interface configured")
	}
	if len(channels) == 0 {
		channels = hopping.BuildChannelList(a.regDomain, a.Config.FiveGHzCapable)
	}

	if err := a.Arbiter.Request(ctx, radioModeForOperation(op)); err != nil {
		return fmt.Errorf("app: claim wifi front end: %w", err)
	}

	session := &wifiSession{op: op, iface: iface, channels: channels}
	a.wifiMu.Lock()
	a.session = session
	a.wifiMu.Unlock()

	if err := a.startSessionLocked(session); err != nil {
		a.wifiMu.Lock()
		a.session = nil
		a.wifiMu.Unlock()
		_ = a.Arbiter.Release(radioModeForOperation(op))
		return err
	}

	if op == domain.OpWPSDetect {
		go a.watchWPSCap(session)
	}
	return nil
}

// StopCapture tears down the active Wi-Fi capture session (if any) and
// releases the RF front end back to Off.
func (a *Application) StopCapture(ctx context.Context) error {
	a.wifiMu.Lock()
	session := a.session
	a.session = nil
	a.wifiMu.Unlock()

	if session == nil || !session.running {
		return nil
	}

	summary := a.teardownSession(ctx, session)
	a.Log.Info("app: capture stopped", "iface", session.iface, "captured", summary.Captured, "filtered", summary.Filtered)

	mode := radioModeForOperation(session.op)
	if err := a.Arbiter.Release(mode); err != nil {
		return fmt.Errorf("app: release wifi front end: %w", err)
	}
	return nil
}

func (a *Application) watchWPSCap(session *wifiSession) {
	ticker := time.NewTicker(wpsPollInterval)
	defer ticker.Stop()
	for range ticker.C {
		a.wifiMu.Lock()
		current := a.session
		a.wifiMu.Unlock()
		if current != session || !session.running {
			return
		}
		if len(a.wpsTable.Snapshot()) >= tables.DefaultWPSCap {
			a.Log.Info("app: WPS table reached capacity, stopping capture")
			_ = a.StopCapture(context.Background())
			return
		}
	}
}

// startSessionLocked builds and starts the pipeline, classifier, hopper,
// and live reader for session. Called with a freshly assigned
// a.session; not safe to call concurrently with itself.
func (a *Application) startSessionLocked(session *wifiSession) error {
	captureType := domain.CaptureWifi
	sinkPath := a.capturePathFor(session.op)

	var sink capture.Sink
	if sinkPath != "" {
		fileSink, err := capture.NewFileSink(sinkPath, captureType)
		if err != nil {
			return fmt.Errorf("app: open capture sink: %w", err)
		}
		sink = fileSink
	} else {
		sink = discardSink{}
	}

	pipeline := capture.New(sink)
	class := classifier.New(session.op, pipeline, a.tracker, a.Geo)
	class.APs = a.apTable
	class.Associations = a.assocTable
	class.WPS = a.wpsTable
	class.Wardriving = a.wdriver
	class.Pineap = a.pineap
	class.Probes = a.probeLog
	class.Deauth = a.deauthLog

	hop := hopping.New(session.iface, session.channels, time.Duration(a.Config.DwellTimeMs)*time.Millisecond, newDriver())

	reader, err := capture.NewLiveReader(session.iface, class)
	if err != nil {
		pipeline.Stop(context.Background())
		return fmt.Errorf("app: open live reader on %s: %w", session.iface, err)
	}

	readerCtx, cancel := context.WithCancel(context.Background())
	session.pipeline = pipeline
	session.class = class
	session.hopper = hop
	session.reader = reader
	session.cancel = cancel
	session.running = true

	go hop.Start()
	go func() {
		if err := reader.Run(readerCtx); err != nil && readerCtx.Err() == nil {
			a.Log.Warn("app: live reader exited", "iface", session.iface, "err", err)
		}
	}()

	return nil
}

// teardownSession stops the hopper and reader, drains the pipeline, and
// reports the capture summary. It does not release the arbiter mode;
// callers decide whether that follows (StopCapture does, pauseWifiSession
// does not).
func (a *Application) teardownSession(ctx context.Context, session *wifiSession) domain.CaptureSummary {
	session.hopper.Stop()
	session.cancel()
	session.reader.Close()

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	summary := session.pipeline.Stop(stopCtx)

	iface := session.iface
	telemetry.PacketsProcessed.WithLabelValues(iface).Add(float64(summary.Captured))
	telemetry.PacketsFiltered.WithLabelValues(iface).Add(float64(summary.Filtered))

	session.running = false
	return summary
}

// pauseWifiSession implements the arbiter.WifiStack.Stop half of the
// suspend/restore contract: it tears the session down but keeps its
// configuration so resumeWifiSession can rebuild an equivalent session.
func (a *Application) pauseWifiSession() error {
	a.wifiMu.Lock()
	session := a.session
	a.wifiMu.Unlock()
	if session == nil || !session.running {
		return nil
	}
	a.teardownSession(context.Background(), session)
	return nil
}

// resumeWifiSession implements arbiter.WifiStack.Start: it rebuilds the
// paused session's pipeline/classifier/hopper/reader from its retained
// configuration. The handshake tracker and sighting tables are
// Application-level and are not rebuilt, so state observed before the
// pause is preserved.
func (a *Application) resumeWifiSession() error {
	a.wifiMu.Lock()
	session := a.session
	a.wifiMu.Unlock()
	if session == nil {
		return nil
	}
	return a.startSessionLocked(session)
}

func (a *Application) wifiSnapshot() domain.WifiStackSnapshot {
	a.wifiMu.Lock()
	defer a.wifiMu.Unlock()
	if a.session == nil {
		return domain.WifiStackSnapshot{}
	}
	return domain.WifiStackSnapshot{
		Mode:      radioModeForOperation(a.session.op),
		Interface: a.session.iface,
		Running:   a.session.running,
	}
}

// capturePathFor returns the PCAP output path for op, or "" if no
// capture directory is configured for that kind of operation (the
// session then writes to a sink that discards every record — useful for
// detection-only operations like WPSDetect or PineapDetect that have
// their own sinks and need no raw PCAP).
func (a *Application) capturePathFor(op domain.WifiOperation) string {
	dir := a.Config.PcapDir
	if op == domain.OpEAPOLCapture && a.Config.HandshakeDir != "" {
		dir = a.Config.HandshakeDir
	}
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, fmt.Sprintf("op%d-%d.pcap", int(op), time.Now().UnixNano()))
}

// discardSink implements capture.Sink by dropping every record, for
// operations that only need classifier side-effects (table updates,
// log lines) and no raw PCAP trail.
type discardSink struct{}

func (discardSink) WriteRecord(domain.CaptureType, uint32, uint32, []byte) error { return nil }
func (discardSink) Flush() error                                                { return nil }
func (discardSink) Close() error                                                 { return nil }
