// Package storage persists discovered Wi-Fi APs, PineAP/evil-twin
// networks, and aerial (OpenDroneID/DJI) devices with GORM and SQLite,
// adapted from the teacher's storage/sqlite.go: same WAL/busy-timeout
// pragma tuning, same OpenTelemetry tracing plugin, same upsert idiom,
// narrowed to the three tables this module's domain model tracks.
package storage

import (
	"context"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
	"github.com/lcalzada-xor/wmap-radio/internal/core/ports"
)

// SQLiteAdapter implements ports.Storage using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// NewSQLiteAdapter opens path, migrates the schema, and applies the
// teacher's WAL/busy-timeout/synchronous pragma tuning for a
// single-writer, many-reader capture workload.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&WifiApModel{}, &PineapNetworkModel{}, &AerialDeviceModel{}); err != nil {
		return nil, err
	}

	if err := db.Use(tracing.NewPlugin()); err != nil {
		return nil, err
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA busy_timeout=5000;")
	db.Exec("PRAGMA synchronous=NORMAL;")

	db.Exec("CREATE INDEX IF NOT EXISTS idx_wifi_aps_ssid ON wifi_ap_models(ssid)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_aerial_devices_device_id ON aerial_device_models(device_id)")

	return &SQLiteAdapter{db: db}, nil
}

// UpsertAP inserts or updates ap by BSSID.
func (a *SQLiteAdapter) UpsertAP(ctx context.Context, ap domain.WifiAp) error {
	model := wifiApToModel(ap)
	return a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "bssid"}},
		UpdateAll: true,
	}).Create(&model).Error
}

// UpsertPineapNetwork inserts or updates net by BSSID.
func (a *SQLiteAdapter) UpsertPineapNetwork(ctx context.Context, net domain.PineapNetwork) error {
	model := pineapToModel(net)
	return a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "bssid"}},
		UpdateAll: true,
	}).Create(&model).Error
}

// UpsertAerialDevice inserts or updates dev by MAC.
func (a *SQLiteAdapter) UpsertAerialDevice(ctx context.Context, dev domain.AerialDevice) error {
	model := aerialToModel(dev)
	return a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mac"}},
		UpdateAll: true,
	}).Create(&model).Error
}

// Close releases the underlying database handle.
func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ ports.Storage = (*SQLiteAdapter)(nil)
