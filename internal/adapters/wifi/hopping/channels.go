package hopping

import "strings"

// RegDomain identifies a regulatory country used to build 5 GHz channel
// lists, per spec §4.7 and the table in original_source/include/managers/wifi_manager.h.
type RegDomain int

const (
	RegDefault RegDomain = iota
	RegUS
	RegCA
	RegJP
	RegCN
	RegEU
	// RegAbsent marks a country that was never configured, distinct from
	// RegDefault's "configured but unrecognized" case. Spec §4.7 narrows
	// the channel list to {1,6,11}+UNII-1 only for the absent case; an
	// unrecognized country still gets the full 2.4 GHz set plus the
	// RegDefault 5 GHz fallback.
	RegAbsent
)

// nonOverlapping2G4 are the three non-overlapping 2.4 GHz channels,
// preferred first in the constructed list.
var nonOverlapping2G4 = []int{1, 6, 11}

// remaining2G4 are the rest of the 2.4 GHz channels, added after the
// non-overlapping set.
var remaining2G4 = []int{2, 3, 4, 5, 7, 8, 9, 10, 12, 13}

var (
	unii1  = []int{36, 40, 44, 48}
	unii2a = []int{52, 56, 60, 64}
	unii2c = []int{100, 104, 108, 112, 116, 120, 124, 128, 132, 136, 140, 144}
	unii3  = []int{149, 153, 157, 161, 165}
)

// fiveGHzChannels returns the country-specific 5 GHz channel list.
func fiveGHzChannels(domain RegDomain) []int {
	switch domain {
	case RegUS, RegCA:
		return concat(unii1, unii2a, unii2c, unii3)
	case RegJP:
		return concat(unii1, unii2a, unii2c)
	case RegCN:
		return concat(unii1, unii2a, unii3)
	case RegEU:
		return concat(unii1, unii2a, unii2c)
	case RegAbsent:
		return concat(unii1)
	default:
		return concat(unii1)
	}
}

func concat(lists ...[]int) []int {
	var out []int
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// BuildChannelList constructs the allowed-channel list per spec §4.7. If
// country was absent (RegAbsent), the list is narrowed to the three
// non-overlapping 2.4 GHz channels plus UNII-1 only when fiveGHzCapable.
// Otherwise it's the non-overlapping 2.4 GHz channels, the rest of 2.4 GHz,
// then the country's 5 GHz list if fiveGHzCapable — an unrecognized but
// present country (RegDefault) still gets the full 2.4 GHz set and the
// UNII-1 fallback.
func BuildChannelList(domain RegDomain, fiveGHzCapable bool) []int {
	channels := append([]int{}, nonOverlapping2G4...)
	if domain != RegAbsent {
		channels = append(channels, remaining2G4...)
	}
	if fiveGHzCapable {
		channels = append(channels, fiveGHzChannels(domain)...)
	}
	return channels
}

// ParseRegDomain maps a config country code to a RegDomain: empty/unset
// maps to RegAbsent (spec §4.7's narrow {1,6,11}+UNII-1 path), anything
// non-empty but unrecognized maps to RegDefault (the full 2.4 GHz set plus
// the UNII-1 fallback).
func ParseRegDomain(country string) RegDomain {
	trimmed := strings.ToUpper(strings.TrimSpace(country))
	switch trimmed {
	case "":
		return RegAbsent
	case "US":
		return RegUS
	case "CA":
		return RegCA
	case "JP":
		return RegJP
	case "CN":
		return RegCN
	case "EU":
		return RegEU
	default:
		return RegDefault
	}
}

// ProbeChannelList builds a channel list by probing every channel number
// 1..196 against accept, retaining those the driver accepts — the
// alternate construction strategy spec §4.7 names for some 5 GHz-capable
// variants.
func ProbeChannelList(accept func(channel int) bool) []int {
	var out []int
	for ch := 1; ch <= 196; ch++ {
		if accept(ch) {
			out = append(out, ch)
		}
	}
	return out
}
