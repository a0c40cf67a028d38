package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

func TestAPTableUpdateAndSnapshot(t *testing.T) {
	tbl := NewAPTable()
	bssid := [6]byte{1, 2, 3, 4, 5, 6}

	tbl.Update(domain.WifiAp{BSSID: bssid, SSID: "first", Channel: 6})
	tbl.Update(domain.WifiAp{BSSID: bssid, SSID: "second", Channel: 6})

	snap := tbl.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "second", snap[0].SSID)
}

func TestAssociationTableKeyedByStation(t *testing.T) {
	tbl := NewAssociationTable()
	sta := [6]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	ap1 := [6]byte{1, 1, 1, 1, 1, 1}
	ap2 := [6]byte{2, 2, 2, 2, 2, 2}

	tbl.Update(domain.StationAssociation{StationMAC: sta, APBSSID: ap1})
	tbl.Update(domain.StationAssociation{StationMAC: sta, APBSSID: ap2})

	snap := tbl.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, ap2, snap[0].APBSSID)
}

func TestWPSTableDedupsAndReportsCapReached(t *testing.T) {
	tbl := NewWPSTable(2)
	bssid := [6]byte{1, 2, 3, 4, 5, 6}

	capReached := tbl.Record(bssid, "net", domain.WPSMethodPBC)
	assert.False(t, capReached)

	capReached = tbl.Record(bssid, "net", domain.WPSMethodPBC)
	assert.False(t, capReached, "repeat sighting must not count twice")
	assert.Len(t, tbl.Snapshot(), 1)

	other := [6]byte{6, 5, 4, 3, 2, 1}
	capReached = tbl.Record(other, "net2", domain.WPSMethodPIN)
	assert.True(t, capReached)
	assert.Len(t, tbl.Snapshot(), 2)
}

func TestWPSTableUncappedWhenCapacityZero(t *testing.T) {
	tbl := NewWPSTable(0)
	for i := 0; i < 5; i++ {
		bssid := [6]byte{byte(i), 0, 0, 0, 0, 0}
		capReached := tbl.Record(bssid, "net", domain.WPSMethodPBC)
		assert.False(t, capReached)
	}
	assert.Len(t, tbl.Snapshot(), 5)
}

func TestProbeLoggerDoesNotPanicWithoutLogger(t *testing.T) {
	logger := NewProbeLogger(nil)
	assert.NotPanics(t, func() {
		logger.Log([6]byte{1, 2, 3, 4, 5, 6}, "ssid")
	})
}

func TestDeauthLoggerDistinguishesSubtype(t *testing.T) {
	logger := NewDeauthLogger(nil)
	addr1 := [6]byte{1, 1, 1, 1, 1, 1}
	addr2 := [6]byte{2, 2, 2, 2, 2, 2}
	bssid := [6]byte{3, 3, 3, 3, 3, 3}

	assert.NotPanics(t, func() {
		logger.Alert(domain.SubtypeDeauth, addr1, addr2, bssid)
		logger.Alert(domain.SubtypeDisassoc, addr1, addr2, bssid)
	})
}
