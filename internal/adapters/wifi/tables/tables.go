// Package tables implements the small in-memory sighting tables the Wi-Fi
// classifier dispatches into: discovered APs, station associations, WPS
// sightings, deduplicated probe-request sightings, and deauth/disassoc
// alerts. Grounded on the teacher's registry.DeviceMerger/DeviceRegistry
// pattern (mutex-guarded map keyed by MAC, update-in-place on repeat
// sightings) narrowed to the single-field-set each table here actually
// needs.
package tables

import (
	"fmt"
	"log"
	"sync"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

// APTable is the discovered-AP table, spec §3's WifiAp, keyed by BSSID.
// Declared to satisfy classifier.APTable; no classifier operation feeds it
// today (AP detail in this appliance comes from the wardriving sink's own
// WifiAp-shaped record), so it exists for a future "list -a" consumer and
// for driver-level active-scan results to share the same sink shape.
type APTable struct {
	mu  sync.Mutex
	aps map[[6]byte]domain.WifiAp
}

// NewAPTable returns an empty AP table.
func NewAPTable() *APTable {
	return &APTable{aps: make(map[[6]byte]domain.WifiAp)}
}

// Update implements classifier.APTable.
func (t *APTable) Update(ap domain.WifiAp) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.aps[ap.BSSID] = ap
}

// Snapshot returns every discovered AP, driver-assigned order not
// preserved (this table has no notion of scan order, only sighting time).
func (t *APTable) Snapshot() []domain.WifiAp {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.WifiAp, 0, len(t.aps))
	for _, ap := range t.aps {
		out = append(out, ap)
	}
	return out
}

// AssociationTable is the observed station<->AP link table, spec §3's
// StationAssociation, keyed by station MAC (a station associates with one
// AP at a time).
type AssociationTable struct {
	mu     sync.Mutex
	assocs map[[6]byte]domain.StationAssociation
}

// NewAssociationTable returns an empty association table.
func NewAssociationTable() *AssociationTable {
	return &AssociationTable{assocs: make(map[[6]byte]domain.StationAssociation)}
}

// Update implements classifier.AssociationTable.
func (t *AssociationTable) Update(assoc domain.StationAssociation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.assocs[assoc.StationMAC] = assoc
}

// Snapshot returns every tracked association.
func (t *AssociationTable) Snapshot() []domain.StationAssociation {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.StationAssociation, 0, len(t.assocs))
	for _, a := range t.assocs {
		out = append(out, a)
	}
	return out
}

// DefaultWPSCap is the default WPS sighting table capacity: the table
// caps itself at N unique sightings and reports capReached so the caller
// can stop monitor mode, per spec §4.3.
const DefaultWPSCap = 20

// WPSSighting is one unique (bssid, ssid, method) WPS detection.
type WPSSighting struct {
	BSSID   [6]byte
	SSID    string
	Methods domain.WPSMethod
}

// WPSTable records unique WPS sightings up to a fixed capacity, spec
// §4.3: "record (bssid, ssid, method) uniquely; cap list at N and stop
// monitor mode when reached."
type WPSTable struct {
	mu        sync.Mutex
	cap       int
	seen      map[string]bool
	sightings []WPSSighting
}

// NewWPSTable returns a table capped at capacity unique sightings.
func NewWPSTable(capacity int) *WPSTable {
	return &WPSTable{cap: capacity, seen: make(map[string]bool)}
}

// Record implements classifier.WPSSightings. It returns true once the
// table has reached capacity, signaling the caller to stop monitor mode.
func (t *WPSTable) Record(bssid [6]byte, ssid string, methods domain.WPSMethod) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := fmt.Sprintf("%x:%s:%d", bssid, ssid, methods)
	if !t.seen[key] {
		t.seen[key] = true
		t.sightings = append(t.sightings, WPSSighting{BSSID: bssid, SSID: ssid, Methods: methods})
	}
	return t.cap > 0 && len(t.sightings) >= t.cap
}

// Snapshot returns every unique WPS sighting recorded so far.
func (t *WPSTable) Snapshot() []WPSSighting {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]WPSSighting, len(t.sightings))
	copy(out, t.sightings)
	return out
}

// ProbeLogger implements classifier.ProbeLog by logging each deduplicated
// probe-request sighting the classifier's own per-(src,ssid) LRU already
// rate-limited to one per 1000 ms window.
type ProbeLogger struct {
	logger *log.Logger
}

// NewProbeLogger returns a logger writing through l (log.Default() if nil).
func NewProbeLogger(l *log.Logger) *ProbeLogger {
	if l == nil {
		l = log.Default()
	}
	return &ProbeLogger{logger: l}
}

// Log implements classifier.ProbeLog.
func (p *ProbeLogger) Log(src [6]byte, ssid string) {
	p.logger.Printf("Probe Req: %x for %q", src, ssid)
}

// DeauthLogger implements classifier.DeauthAlert by logging every
// deauth/disassoc frame observed while DeauthCapture is active.
type DeauthLogger struct {
	logger *log.Logger
}

// NewDeauthLogger returns a logger writing through l (log.Default() if nil).
func NewDeauthLogger(l *log.Logger) *DeauthLogger {
	if l == nil {
		l = log.Default()
	}
	return &DeauthLogger{logger: l}
}

// Alert implements classifier.DeauthAlert.
func (d *DeauthLogger) Alert(subtype uint8, addr1, addr2, bssid [6]byte) {
	kind := "disassoc"
	if subtype == domain.SubtypeDeauth {
		kind = "deauth"
	}
	d.logger.Printf("%s observed: %x -> %x (bssid=%x)", kind, addr2, addr1, bssid)
}
