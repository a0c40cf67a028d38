// Package wardriving writes WardrivingRecord rows to the wardriving CSV
// file, spec §4.5's exact column schema, grounded on the teacher's
// pcap.FileSink for the "one writer goroutine owns the file handle, the
// caller only ever calls a thread-safe append method" shape.
package wardriving

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

var csvHeader = []string{
	"Type", "Name", "MAC", "Associated MAC", "Channel", "Frequency", "RSSI",
	"Auth", "Cipher", "802.11", "WPS", "Latitude", "Longitude", "Altitude",
	"First Seen",
}

// Writer appends WardrivingRecord rows to a CSV file. Safe for concurrent
// use by both the Wi-Fi classifier (Wardriver) and the BLE wardriving
// handler (decoder.Wardriver) sharing a single sink, per spec §4.5.
type Writer struct {
	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

// NewWriter creates (or truncates) path and writes the header row.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wardriving: create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("wardriving: write header: %w", err)
	}
	w.Flush()
	return &Writer{f: f, w: w}, nil
}

// Record implements both classifier.Wardriver and decoder.Wardriver,
// appending one CSV row. encoding/csv handles the comma/quote/newline
// escaping spec §4.5 calls out explicitly.
func (wr *Writer) Record(rec domain.WardrivingRecord) {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	row := []string{
		recordType(rec.IsBLE),
		rec.Name,
		macString(rec.MAC),
		associatedMAC(rec),
		strconv.Itoa(int(rec.Channel)),
		strconv.Itoa(int(rec.FreqMHz)),
		strconv.Itoa(int(rec.RSSI)),
		rec.Auth.String(),
		rec.Cipher.String(),
		phyString(rec.PhyModes),
		strconv.FormatBool(rec.WPS),
		latLng(rec.HasFix, rec.Latitude),
		latLng(rec.HasFix, rec.Longitude),
		latLng(rec.HasFix, rec.Altitude),
		firstSeen(rec.FirstSeenUs),
	}
	if err := wr.w.Write(row); err != nil {
		return
	}
	wr.w.Flush()
}

// Close flushes and closes the underlying file.
func (wr *Writer) Close() error {
	wr.mu.Lock()
	defer wr.mu.Unlock()
	wr.w.Flush()
	return wr.f.Close()
}

func recordType(isBLE bool) string {
	if isBLE {
		return "BLE"
	}
	return "WiFi"
}

func associatedMAC(rec domain.WardrivingRecord) string {
	if !rec.HasAssociated {
		return ""
	}
	return macString(rec.AssociatedMAC)
}

func macString(mac [6]byte) string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", mac[0], mac[1], mac[2], mac[3], mac[4], mac[5])
}

func latLng(hasFix bool, v float64) string {
	if !hasFix {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func firstSeen(us uint64) string {
	if us == 0 {
		return ""
	}
	return time.UnixMicro(int64(us)).UTC().Format(time.RFC3339)
}

func phyString(modes domain.PhyMode) string {
	var out string
	add := func(bit domain.PhyMode, label string) {
		if modes&bit != 0 {
			if out != "" {
				out += "/"
			}
			out += label
		}
	}
	add(domain.PhyB, "b")
	add(domain.PhyG, "g")
	add(domain.PhyN, "n")
	add(domain.PhyA, "a")
	add(domain.PhyAC, "ac")
	add(domain.PhyAX, "ax")
	return out
}
