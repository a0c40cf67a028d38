package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

// setupInMemoryDB creates a new SQLiteAdapter for testing, skipping the
// tracing plugin and pragma tuning NewSQLiteAdapter applies against a
// real file.
func setupInMemoryDB(t *testing.T) *SQLiteAdapter {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&WifiApModel{}, &PineapNetworkModel{}, &AerialDeviceModel{})
	require.NoError(t, err)

	return &SQLiteAdapter{db: db}
}

func TestUpsertAPInsertsAndUpdates(t *testing.T) {
	adapter := setupInMemoryDB(t)
	bssid := [6]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}

	ap := domain.WifiAp{
		BSSID:   bssid,
		SSID:    "CoffeeShop",
		Channel: 6,
		RSSI:    -60,
		Auth:    domain.AuthWPA2,
		Cipher:  domain.CipherCCMP,
	}
	require.NoError(t, adapter.UpsertAP(context.Background(), ap))

	var stored WifiApModel
	require.NoError(t, adapter.db.First(&stored, "bssid = ?", macString(bssid)).Error)
	assert.Equal(t, "CoffeeShop", stored.SSID)
	assert.Equal(t, int8(-60), stored.RSSI)

	ap.RSSI = -40
	ap.SSID = "CoffeeShop-5G"
	require.NoError(t, adapter.UpsertAP(context.Background(), ap))

	require.NoError(t, adapter.db.First(&stored, "bssid = ?", macString(bssid)).Error)
	assert.Equal(t, "CoffeeShop-5G", stored.SSID)
	assert.Equal(t, int8(-40), stored.RSSI)

	var count int64
	adapter.db.Model(&WifiApModel{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpsertPineapNetworkEncodesRecentSSIDs(t *testing.T) {
	adapter := setupInMemoryDB(t)
	bssid := [6]byte{1, 2, 3, 4, 5, 6}

	net := domain.PineapNetwork{
		BSSID:       bssid,
		SSIDHashes:  []uint32{0xdeadbeef, 0xcafef00d},
		RecentCount: 2,
		IsPineap:    true,
	}
	net.RecentSSIDs[0] = "Free WiFi"
	net.RecentSSIDs[1] = "Starbucks"

	require.NoError(t, adapter.UpsertPineapNetwork(context.Background(), net))

	var stored PineapNetworkModel
	require.NoError(t, adapter.db.First(&stored, "bssid = ?", macString(bssid)).Error)
	assert.True(t, stored.IsPineap)
	assert.Contains(t, stored.SSIDHashesJSON, "3735928559")
	assert.Contains(t, stored.RecentSSIDsJSON, "Starbucks")
}

func TestUpsertAerialDevicePersistsLocation(t *testing.T) {
	adapter := setupInMemoryDB(t)
	mac := [6]byte{9, 9, 9, 9, 9, 9}

	dev := *domain.NewAerialDevice(mac)
	dev.Type = domain.AerialOpenDroneID
	dev.DeviceID = "GHOST-1234"
	dev.Latitude = 37.7749
	dev.Longitude = -122.4194
	dev.HasLocation = true

	require.NoError(t, adapter.UpsertAerialDevice(context.Background(), dev))

	var stored AerialDeviceModel
	require.NoError(t, adapter.db.First(&stored, "mac = ?", macString(mac)).Error)
	assert.Equal(t, "GHOST-1234", stored.DeviceID)
	assert.True(t, stored.HasLocation)
	assert.Equal(t, 37.7749, stored.Latitude)
}
