package wardriving

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

func TestWriterEmitsHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wardriving.csv")
	w, err := NewWriter(path)
	require.NoError(t, err)

	w.Record(domain.WardrivingRecord{
		Name:      "Coffee, Shop",
		MAC:       [6]byte{1, 2, 3, 4, 5, 6},
		Channel:   6,
		FreqMHz:   2437,
		RSSI:      -55,
		Auth:      domain.AuthWPA2,
		Cipher:    domain.CipherCCMP,
		PhyModes:  domain.PhyG | domain.PhyN,
		WPS:       true,
		Latitude:  37.7749,
		Longitude: -122.4194,
		HasFix:    true,
	})
	w.Record(domain.WardrivingRecord{
		IsBLE: true,
		Name:  "AirTag",
		MAC:   [6]byte{9, 9, 9, 9, 9, 9},
		RSSI:  -70,
	})

	require.NoError(t, w.Close())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(contents)

	assert.Contains(t, text, "Type,Name,MAC,Associated MAC,Channel,Frequency,RSSI,Auth,Cipher,802.11,WPS,Latitude,Longitude,Altitude,First Seen")
	assert.Contains(t, text, `"Coffee, Shop"`)
	assert.Contains(t, text, "WPA2")
	assert.Contains(t, text, "g/n")
	assert.Contains(t, text, "BLE")
}

func TestPhyStringCombinesModes(t *testing.T) {
	assert.Equal(t, "", phyString(0))
	assert.Equal(t, "b", phyString(domain.PhyB))
	assert.Equal(t, "b/g/n/ac", phyString(domain.PhyB|domain.PhyG|domain.PhyN|domain.PhyAC))
}
