// Command wmap-radio runs the radio-core appliance: Wi-Fi capture, BLE
// scanning/broadcasting, aerial-device tracking, and their shared sinks.
// Grounded on the teacher's cmd/wmap/main.go bootstrap shape, narrowed to
// this module's radio scope (no web UI or gRPC server).
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lcalzada-xor/wmap-radio/internal/app"
	"github.com/lcalzada-xor/wmap-radio/internal/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	slog.Info("wmap-radio starting", "interfaces", cfg.WifiInterfaces, "ble", cfg.BleEnabled, "mock", cfg.MockMode)

	application, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize application", "err", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("application exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("wmap-radio stopped")
}
