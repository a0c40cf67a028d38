// Package app wires every adapter in this module into one running radio
// appliance: the arbiter, the capture pipeline and its classifier sinks,
// the BLE decoder/scanner/broadcaster set, persistence, and telemetry.
// Grounded on the teacher's internal/app/app.go bootstrap/Run/cleanup
// shape, narrowed to this module's radio-core scope (no web or gRPC
// servers — see SPEC_FULL.md's dropped-dependency list).
package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/lcalzada-xor/wmap-radio/internal/adapters/aerial"
	"github.com/lcalzada-xor/wmap-radio/internal/adapters/arbiter"
	"github.com/lcalzada-xor/wmap-radio/internal/adapters/ble/broadcaster"
	"github.com/lcalzada-xor/wmap-radio/internal/adapters/ble/decoder"
	"github.com/lcalzada-xor/wmap-radio/internal/adapters/ble/scanner"
	"github.com/lcalzada-xor/wmap-radio/internal/adapters/storage"
	"github.com/lcalzada-xor/wmap-radio/internal/adapters/wardriving"
	"github.com/lcalzada-xor/wmap-radio/internal/adapters/wifi/handshake"
	"github.com/lcalzada-xor/wmap-radio/internal/adapters/wifi/hopping"
	"github.com/lcalzada-xor/wmap-radio/internal/adapters/wifi/injection"
	"github.com/lcalzada-xor/wmap-radio/internal/adapters/wifi/pineap"
	"github.com/lcalzada-xor/wmap-radio/internal/adapters/wifi/tables"
	"github.com/lcalzada-xor/wmap-radio/internal/config"
	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
	"github.com/lcalzada-xor/wmap-radio/internal/core/ports"
	"github.com/lcalzada-xor/wmap-radio/internal/geo"
	"github.com/lcalzada-xor/wmap-radio/internal/telemetry"
)

// maintenanceInterval is how often the background housekeeping loop ages
// aerial devices, compacts the registry, persists aerial and PineAP
// tables, and samples the BLE spam counter into Prometheus. Pipeline
// counters are added when a capture session is torn down.
const maintenanceInterval = 5 * time.Second

// aerialStaleAfter marks an aerial device stale once this long has
// passed since its last sighting, matching spec §3's ageing rule.
const aerialStaleAfter = 60 * time.Second

// Application is the assembled radio appliance: one arbiter guarding the
// shared RF front end, one Wi-Fi capture session at a time, one BLE
// scanner and one set of BLE broadcaster engines, and the shared sinks
// (PCAP, CSV, SQLite) they all write through.
type Application struct {
	Config *config.Config
	Log    *slog.Logger

	Arbiter  *arbiter.Arbiter
	Geo      ports.GeoProvider
	Storage  ports.Storage
	shutdown func(context.Context) error

	regDomain hopping.RegDomain
	pcapDir   string

	tracker *handshake.Tracker
	pineap  *pineap.Detector
	wdriver *wardriving.Writer
	aerial  *aerial.Registry

	apTable    *tables.APTable
	assocTable *tables.AssociationTable
	wpsTable   *tables.WPSTable
	probeLog   *tables.ProbeLogger
	deauthLog  *tables.DeauthLogger

	wifiMu  sync.Mutex
	session *wifiSession

	bleAdapter  *bluetooth.Adapter
	bleCtl      *bleController
	decoderSet  *decoder.Set
	bleScanner  *scanner.Scanner
	airtagH     *decoder.AirtagHandler
	flipperH    *decoder.FlipperHandler
	djiH        *decoder.DJIHandler
	odidH       *decoder.OpenDroneIDHandler
	gattH       *decoder.GattHandler
	advertiser  *broadcaster.TinygoAdvertiser
	spamEngine  *broadcaster.SpamEngine
	airtagSpoof *broadcaster.AirtagSpoofer
	odidEmu     *broadcaster.OdidEmulator

	deauthEngine *injection.DeauthEngine
	logoffEngine *injection.EapolLogoffEngine
	authEngine   *injection.AuthFloodEngine
	injector     ports.PacketInjector

	spamPrevSent int
}

// New assembles an Application from cfg but does not start any radio
// activity; call Run to start the background maintenance loop and block
// until ctx is canceled.
func New(cfg *config.Config) (*Application, error) {
	a := &Application{
		Config:  cfg,
		Log:     slog.Default(),
		pcapDir: cfg.PcapDir,
	}

	shutdownTracer, err := telemetry.InitTracer()
	if err != nil {
		return nil, fmt.Errorf("app: init tracer: %w", err)
	}
	a.shutdown = shutdownTracer
	telemetry.InitMetrics()

	a.regDomain = hopping.ParseRegDomain(cfg.Country)
	a.Geo = geo.NewStaticProvider(cfg.Latitude, cfg.Longitude)

	store, err := storage.NewSQLiteAdapter(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("app: open storage: %w", err)
	}
	a.Storage = store

	a.tracker = handshake.New(func(ev handshake.FoundEvent) {
		iface := a.primaryInterface()
		telemetry.HandshakesFound.WithLabelValues(iface).Inc()
	})
	a.pineap = pineap.New(nil)

	if cfg.PcapDir != "" {
		if err := os.MkdirAll(cfg.PcapDir, 0755); err != nil {
			return nil, fmt.Errorf("app: create pcap dir: %w", err)
		}
	}

	wardrivePath := filepath.Join(wardrivingDir(cfg), "wardriving.csv")
	wd, err := wardriving.NewWriter(wardrivePath)
	if err != nil {
		return nil, fmt.Errorf("app: open wardriving writer: %w", err)
	}
	a.wdriver = wd

	a.aerial = aerial.NewRegistry()

	a.apTable = tables.NewAPTable()
	a.assocTable = tables.NewAssociationTable()
	a.wpsTable = tables.NewWPSTable(tables.DefaultWPSCap)
	a.probeLog = tables.NewProbeLogger(nil)
	a.deauthLog = tables.NewDeauthLogger(nil)

	a.bleAdapter = bluetooth.DefaultAdapter
	a.bleCtl = newBleController(a.bleAdapter)

	a.airtagH = decoder.NewAirtagHandler(50, nil)
	a.flipperH = decoder.NewFlipperHandler(50, nil)
	a.djiH = decoder.NewDJIHandler()
	a.odidH = decoder.NewOpenDroneIDHandler()
	a.gattH = decoder.NewGattHandler()
	skimmerH := decoder.NewSkimmerHandler(nil, nil)
	wardrivingH := decoder.NewWardrivingHandler(a.wdriver, a.Geo)

	a.decoderSet = decoder.NewSet(a.airtagH, a.flipperH, a.djiH, a.odidH, a.gattH, skimmerH, wardrivingH)
	a.bleScanner = scanner.New(a.decoderSet)

	advertiser, err := broadcaster.NewTinygoAdvertiser(nil)
	if err != nil {
		log.Printf("app: BLE advertiser unavailable, broadcast operations will fail: %v", err)
	}
	a.advertiser = advertiser
	if a.advertiser != nil {
		a.spamEngine = broadcaster.NewSpamEngine(a.advertiser, nil)
		a.airtagSpoof = broadcaster.NewAirtagSpoofer(a.advertiser, nil)
		a.odidEmu = broadcaster.NewOdidEmulator(a.advertiser, nil)
	}

	wifiStack := &wifiStackAdapter{app: a}
	a.Arbiter = arbiter.New(wifiStack, a.bleCtl, nil)

	return a, nil
}

// wardrivingDir returns the directory the wardriving CSV is written to,
// falling back to the PCAP directory and finally the current directory.
func wardrivingDir(cfg *config.Config) string {
	if cfg.PcapDir != "" {
		return cfg.PcapDir
	}
	if cfg.HandshakeDir != "" {
		return cfg.HandshakeDir
	}
	return "."
}

func (a *Application) primaryInterface() string {
	if len(a.Config.WifiInterfaces) == 0 {
		return ""
	}
	return a.Config.WifiInterfaces[0]
}

// Run starts the background maintenance loop (aerial ageing/compaction,
// BLE spam counter sampling) and blocks until ctx is canceled, then
// shuts every running session down.
func (a *Application) Run(ctx context.Context) error {
	if !a.Config.MockMode {
		if err := a.bringUpInterfaces(); err != nil {
			a.Log.Warn("app: bringing up monitor mode failed, continuing anyway", "err", err)
		}
	}

	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.cleanup()
			return ctx.Err()
		case <-ticker.C:
			a.runMaintenance()
		}
	}
}

func (a *Application) runMaintenance() {
	a.aerial.Age(time.Now(), aerialStaleAfter)
	a.aerial.Compact()

	for _, dev := range a.djiH.Devices() {
		a.aerial.Update(dev)
	}
	for _, dev := range a.odidH.Devices() {
		a.aerial.Update(dev)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, dev := range a.aerial.Snapshot() {
		if err := a.Storage.UpsertAerialDevice(ctx, dev); err != nil {
			a.Log.Warn("app: persist aerial device failed", "mac", dev.MAC, "err", err)
		}
	}
	for _, net := range a.pineap.Snapshot() {
		if err := a.Storage.UpsertPineapNetwork(ctx, net); err != nil {
			a.Log.Warn("app: persist pineap network failed", "bssid", net.BSSID, "err", err)
		}
	}

	if a.spamEngine != nil {
		sent := a.spamEngine.Stats().PacketsSent
		if delta := sent - a.spamPrevSent; delta > 0 {
			telemetry.BleSpamFrames.WithLabelValues(a.spamEngine.Stats().Type.String()).Add(float64(delta))
		}
		a.spamPrevSent = sent
	}
}

func (a *Application) bringUpInterfaces() error {
	for _, iface := range a.Config.WifiInterfaces {
		if err := newDriver().EnableMonitorMode(iface); err != nil {
			return fmt.Errorf("app: enable monitor mode on %s: %w", iface, err)
		}
	}
	return nil
}

func (a *Application) restoreInterfaces() {
	for _, iface := range a.Config.WifiInterfaces {
		newDriver().DisableMonitorMode(iface)
	}
}

// cleanup stops every running session, restores the host's network
// services, and closes every sink.
func (a *Application) cleanup() {
	_ = a.StopCapture(context.Background())
	_ = a.StopBlescan(context.Background())
	if a.spamEngine != nil {
		a.spamEngine.Stop()
	}
	if a.airtagSpoof != nil {
		a.airtagSpoof.Stop()
	}
	if a.odidEmu != nil {
		a.odidEmu.Stop()
	}
	a.deauthStopAll()

	if !a.Config.MockMode {
		a.restoreInterfaces()
	}

	if a.wdriver != nil {
		a.wdriver.Close()
	}
	if a.Storage != nil {
		a.Storage.Close()
	}
	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		a.shutdown(ctx)
	}
}

// HandshakeCount returns the number of completed WPA handshakes observed
// since startup.
func (a *Application) HandshakeCount() uint64 {
	return a.tracker.FoundCount()
}

// WPSSnapshot returns every unique WPS sighting recorded so far.
func (a *Application) WPSSnapshot() []tables.WPSSighting {
	return a.wpsTable.Snapshot()
}

// PineapSnapshot returns every tracked PineAP/evil-twin network.
func (a *Application) PineapSnapshot() []domain.PineapNetwork {
	return a.pineap.Snapshot()
}

// AssociationSnapshot returns every observed station<->AP association.
func (a *Application) AssociationSnapshot() []domain.StationAssociation {
	return a.assocTable.Snapshot()
}
