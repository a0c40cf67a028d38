package config

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all application configuration for the radio appliance.
type Config struct {
	WifiInterfaces []string
	BleEnabled     bool
	Latitude       float64
	Longitude      float64
	MockMode       bool
	DBPath         string
	PcapDir        string
	HandshakeDir   string
	Debug          bool
	DwellTimeMs    int
	Country        string
	OdidSpoofID    string
	FiveGHzCapable bool
}

// Load parses command line flags and environment variables to populate Config.
// Flags take precedence over environment variables.
func Load() *Config {
	cfg := &Config{}

	ifaceStr := getEnv("WMAP_RADIO_INTERFACE", "wlan0")
	cfg.BleEnabled = getEnvBool("WMAP_RADIO_BLE", true)
	cfg.Latitude = getEnvFloat("WMAP_RADIO_LAT", 40.4168)
	cfg.Longitude = getEnvFloat("WMAP_RADIO_LNG", -3.7038)
	cfg.MockMode = getEnvBool("WMAP_RADIO_MOCK", false)
	cfg.DBPath = getEnv("WMAP_RADIO_DB", getDefaultDBPath())
	cfg.Country = getEnv("WMAP_RADIO_COUNTRY", "US")
	cfg.OdidSpoofID = getEnv("WMAP_RADIO_ODID_ID", "GHOST-0001")
	cfg.FiveGHzCapable = getEnvBool("WMAP_RADIO_5GHZ", false)

	flag.StringVar(&ifaceStr, "i", ifaceStr, "Wi-Fi interface(s) in monitor mode (comma separated)")
	flag.BoolVar(&cfg.BleEnabled, "ble", cfg.BleEnabled, "Enable the BLE radio (scan/broadcast)")
	flag.Float64Var(&cfg.Latitude, "lat", cfg.Latitude, "Static latitude used when no GPS fix is available")
	flag.Float64Var(&cfg.Longitude, "lng", cfg.Longitude, "Static longitude used when no GPS fix is available")
	flag.BoolVar(&cfg.MockMode, "mock", cfg.MockMode, "Run against simulated radios instead of real hardware")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the SQLite sightings database")
	flag.StringVar(&cfg.PcapDir, "pcap-dir", "", "Directory for PCAP capture output (empty to disable)")
	flag.StringVar(&cfg.HandshakeDir, "handshake-dir", "", "Directory for captured WPA handshake PCAPs (empty to disable)")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable verbose debug logging")
	flag.IntVar(&cfg.DwellTimeMs, "dwell", 300, "Channel dwell time in milliseconds")
	flag.StringVar(&cfg.Country, "country", cfg.Country, "Regulatory domain for 5 GHz channel list (US/CA/JP/CN/EU)")
	flag.StringVar(&cfg.OdidSpoofID, "odid-id", cfg.OdidSpoofID, "Device ID advertised by the OpenDroneID BLE emulator")
	flag.BoolVar(&cfg.FiveGHzCapable, "5ghz", cfg.FiveGHzCapable, "Build the 5 GHz channel list for the monitored interface(s)")

	flag.Parse()

	cfg.WifiInterfaces = parseInterfaces(ifaceStr)

	return cfg
}

func parseInterfaces(s string) []string {
	var ifaces []string
	if s == "" {
		return ifaces
	}
	for _, p := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			ifaces = append(ifaces, trimmed)
		}
	}
	return ifaces
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getDefaultDBPath returns the default sightings database path in the
// user's home directory, creating the containing directory if needed.
func getDefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("warning: could not get user home directory, using current dir: %v", err)
		return "wmap-radio.db"
	}

	dir := filepath.Join(home, ".wmap-radio")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("warning: could not create %s, using current dir: %v", dir, err)
		return "wmap-radio.db"
	}

	return filepath.Join(dir, "wmap-radio.db")
}
