package hopping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRegDomainAbsentVsUnrecognized(t *testing.T) {
	assert.Equal(t, RegAbsent, ParseRegDomain(""))
	assert.Equal(t, RegAbsent, ParseRegDomain("   "))
	assert.Equal(t, RegDefault, ParseRegDomain("XX"))
	assert.Equal(t, RegUS, ParseRegDomain("us"))
}

func TestBuildChannelListAbsentCountryIsNarrow(t *testing.T) {
	channels := BuildChannelList(RegAbsent, true)
	assert.Equal(t, append(append([]int{}, nonOverlapping2G4...), unii1...), channels)
}

func TestBuildChannelListUnrecognizedCountryIsFull(t *testing.T) {
	channels := BuildChannelList(RegDefault, true)
	want := append(append([]int{}, nonOverlapping2G4...), remaining2G4...)
	want = append(want, unii1...)
	assert.Equal(t, want, channels)
}
