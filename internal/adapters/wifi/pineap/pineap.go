// Package pineap implements the PineAP / evil-twin detector, spec §4.8: a
// single BSSID broadcasting two or more distinct SSIDs is flagged, with a
// delayed log summary and a separate evil-twin cross-check against other
// tracked networks. Grounded on the teacher's security/detectors.go
// Detector.Analyze pattern (threshold check -> one-shot alert), narrowed
// from a generic anomaly-alert list to this spec's find-or-create BSSID
// table and djb2-hash dedup rule.
package pineap

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

// TableCap bounds the number of distinct BSSIDs tracked at once.
const TableCap = 20

// blacklistWindow is how long a BSSID's is_pineap flag suppresses a
// re-fire once already reported.
const blacklistWindow = 30 * time.Second

// logTaskDelay is how long after qualifying a log summary is emitted,
// giving a few more beacons a chance to arrive first.
const logTaskDelay = 5 * time.Second

// pineappleOUIs are vendor OUIs historically associated with WiFi
// Pineapple hardware.
var pineappleOUIs = [][3]byte{
	{0x00, 0x13, 0x37},
}

// Logger receives the multi-line summary text pineap detections and
// Pineapple-OUI matches produce. *log.Logger satisfies this.
type Logger interface {
	Printf(format string, args ...any)
}

// Detector is the PineAP / evil-twin table: one entry per BSSID, with a
// delayed log task scheduled the moment a BSSID first qualifies.
//
// Log tasks are the one place this package has to be careful about
// lifetime: a scheduled task must not act on a network that has since
// been replaced or evicted. Rather than have the task hold a pointer
// back into the network (the cyclic-reference shape spec §9 warns
// about), each task closes over the BSSID and a generation counter
// snapshotted at schedule time, and checks that generation is still
// current before doing anything.
type Detector struct {
	mu         sync.Mutex
	networks   map[[6]byte]*domain.PineapNetwork
	blacklist  map[[6]byte]time.Time
	generation map[[6]byte]uint64
	timers     map[[6]byte]*time.Timer
	logger     Logger
}

// New returns an empty detector. logger may be nil to use the standard
// library's default logger.
func New(logger Logger) *Detector {
	if logger == nil {
		logger = log.Default()
	}
	return &Detector{
		networks:   make(map[[6]byte]*domain.PineapNetwork),
		blacklist:  make(map[[6]byte]time.Time),
		generation: make(map[[6]byte]uint64),
		timers:     make(map[[6]byte]*time.Timer),
		logger:     logger,
	}
}

// Beacon implements classifier.PineapSink: it is called for every beacon
// observed while PineapDetect is the installed operation.
func (d *Detector) Beacon(bssid [6]byte, channel uint8, rssi int8, ssid string) {
	trimmed := strings.TrimSpace(ssid)

	d.mu.Lock()
	net, ok := d.networks[bssid]
	if !ok {
		if len(d.networks) >= TableCap {
			d.mu.Unlock()
			return
		}
		net = &domain.PineapNetwork{BSSID: bssid}
		d.networks[bssid] = net
	}
	net.LastChannel = channel
	net.LastRSSI = rssi

	qualifies := isValidUniqueSSID(trimmed, net)
	var scheduleLog bool
	if qualifies {
		hash := djb2(trimmed)
		if net.HasHash(hash) || len(net.SSIDHashes) >= domain.PineapSSIDCap {
			qualifies = false
		} else {
			net.SSIDHashes = append(net.SSIDHashes, hash)
			net.PushSSID(trimmed)

			blacklistedAt, blacklisted := d.blacklist[bssid]
			staleEntry := !blacklisted || time.Since(blacklistedAt) >= blacklistWindow
			if len(net.SSIDHashes) >= 2 && staleEntry {
				net.IsPineap = true
				d.blacklist[bssid] = time.Now()
				scheduleLog = true
			}
		}
	}
	d.mu.Unlock()

	if scheduleLog {
		d.scheduleLogTask(bssid)
	}
	d.checkPineappleOUI(bssid, net)
}

// isValidUniqueSSID rejects the hidden/empty SSID and a beacon repeating
// the network's own most-recent SSID (normal beacon churn, not a new
// identity).
func isValidUniqueSSID(ssid string, net *domain.PineapNetwork) bool {
	if ssid == "" || ssid == "<HIDDEN>" {
		return false
	}
	return ssid != net.LastSSID()
}

// djb2 is Dan Bernstein's string hash, used here only to dedup SSIDs
// cheaply rather than for any security property.
func djb2(s string) uint32 {
	var hash uint32 = 5381
	for i := 0; i < len(s); i++ {
		hash = hash*33 + uint32(s[i])
	}
	return hash
}

func (d *Detector) checkPineappleOUI(bssid [6]byte, net *domain.PineapNetwork) {
	matches := false
	for _, oui := range pineappleOUIs {
		if bssid[0] == oui[0] && bssid[1] == oui[1] && bssid[2] == oui[2] {
			matches = true
			break
		}
	}
	if !matches {
		return
	}

	d.mu.Lock()
	alreadyLogged := net.OUILogged
	net.HasPineappleOUI = true
	net.OUILogged = true
	d.mu.Unlock()

	if !alreadyLogged {
		d.logger.Printf("pineap: Pineapple OUI match bssid=%x", bssid)
	}
}

func (d *Detector) scheduleLogTask(bssid [6]byte) {
	d.mu.Lock()
	d.generation[bssid]++
	gen := d.generation[bssid]
	if existing, ok := d.timers[bssid]; ok {
		existing.Stop()
	}
	d.timers[bssid] = time.AfterFunc(logTaskDelay, func() { d.fireLogTask(bssid, gen) })
	d.mu.Unlock()
}

func (d *Detector) fireLogTask(bssid [6]byte, gen uint64) {
	d.mu.Lock()
	if d.generation[bssid] != gen {
		d.mu.Unlock()
		return
	}
	net, ok := d.networks[bssid]
	if !ok {
		d.mu.Unlock()
		return
	}
	delete(d.timers, bssid)

	summary := summarize(bssid, net)
	twins := d.evilTwinMatches(bssid, net)
	d.mu.Unlock()

	d.logger.Printf("%s", summary)
	for _, t := range twins {
		d.logger.Printf("pineap: evil twin SSID %q shared by %x and %x", t.ssid, bssid, t.other)
	}
}

func summarize(bssid [6]byte, net *domain.PineapNetwork) string {
	var b strings.Builder
	fmt.Fprintf(&b, "pineap: PineAP detected bssid=%x channel=%d rssi=%d ssids=%d\n", bssid, net.LastChannel, net.LastRSSI, len(net.SSIDHashes))
	for i := 0; i < net.RecentCount; i++ {
		idx := (net.RecentIndex - net.RecentCount + i + domain.PineapRecentCap) % domain.PineapRecentCap
		fmt.Fprintf(&b, "  - %s\n", net.RecentSSIDs[idx])
	}
	return strings.TrimRight(b.String(), "\n")
}

type evilTwinMatch struct {
	ssid  string
	other [6]byte
}

// evilTwinMatches must be called with d.mu held. It reports every other
// tracked network whose most recent SSID case-insensitively matches this
// network's.
func (d *Detector) evilTwinMatches(bssid [6]byte, net *domain.PineapNetwork) []evilTwinMatch {
	last := strings.ToLower(net.LastSSID())
	if last == "" {
		return nil
	}
	var matches []evilTwinMatch
	for other, otherNet := range d.networks {
		if other == bssid {
			continue
		}
		if strings.ToLower(otherNet.LastSSID()) == last {
			matches = append(matches, evilTwinMatch{ssid: net.LastSSID(), other: other})
		}
	}
	return matches
}

// Snapshot returns a copy of every tracked network, for periodic
// persistence outside the detector's own log-summary path.
func (d *Detector) Snapshot() []domain.PineapNetwork {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.PineapNetwork, 0, len(d.networks))
	for _, net := range d.networks {
		out = append(out, *net)
	}
	return out
}
