// Package geo supplies location fixes to the core via ports.GeoProvider.
// GPS NMEA parsing is out of scope for this module (spec Non-goals); the
// only provider here is a static fallback for operators without a GPS
// receiver wired in, matching the teacher's StaticProvider.
package geo

import "github.com/lcalzada-xor/wmap-radio/internal/core/ports"

// StaticProvider implements ports.GeoProvider with a fixed location,
// always reporting Valid.
type StaticProvider struct {
	lat float64
	lng float64
}

// NewStaticProvider creates a provider that always returns the same fix.
func NewStaticProvider(lat, lng float64) *StaticProvider {
	return &StaticProvider{lat: lat, lng: lng}
}

// CurrentFix returns the fixed coordinate with Valid set.
func (s *StaticProvider) CurrentFix() ports.GeoFix {
	return ports.GeoFix{
		Latitude:  s.lat,
		Longitude: s.lng,
		Valid:     true,
	}
}

var _ ports.GeoProvider = (*StaticProvider)(nil)
