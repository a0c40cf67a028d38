package domain

// PineapSSIDCap bounds the number of distinct SSID hashes a PineapNetwork
// remembers before it stops accepting new ones.
const PineapSSIDCap = 10

// PineapRecentCap is the size of the most-recent-SSIDs ring buffer.
const PineapRecentCap = 5

// PineapNetwork tracks how many distinct SSIDs a single BSSID has broadcast,
// the signature of an evil-twin / PineAP access point.
type PineapNetwork struct {
	BSSID           [6]byte
	FirstSeenUs     uint64
	LastChannel     uint8
	LastRSSI        int8
	SSIDHashes      []uint32
	RecentSSIDs     [PineapRecentCap]string
	RecentCount     int
	RecentIndex     int
	IsPineap        bool
	HasPineappleOUI bool
	OUILogged       bool
}

// HasHash reports whether the given DJB2 hash has already been recorded.
func (n *PineapNetwork) HasHash(h uint32) bool {
	for _, existing := range n.SSIDHashes {
		if existing == h {
			return true
		}
	}
	return false
}

// PushSSID records ssid in the recent-SSID ring buffer, most recent wins.
func (n *PineapNetwork) PushSSID(ssid string) {
	n.RecentSSIDs[n.RecentIndex] = ssid
	n.RecentIndex = (n.RecentIndex + 1) % PineapRecentCap
	if n.RecentCount < PineapRecentCap {
		n.RecentCount++
	}
}

// LastSSID returns the most recently inserted SSID, or "" if none.
func (n *PineapNetwork) LastSSID() string {
	if n.RecentCount == 0 {
		return ""
	}
	idx := (n.RecentIndex - 1 + PineapRecentCap) % PineapRecentCap
	return n.RecentSSIDs[idx]
}
