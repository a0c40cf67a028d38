package injection

import (
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw []byte) *layers.Dot11 {
	t.Helper()
	pkt := gopacket.NewPacket(raw, layers.LayerTypeRadioTap, gopacket.NoCopy)
	dot11Layer := pkt.Layer(layers.LayerTypeDot11)
	require.NotNil(t, dot11Layer)
	dot11, ok := dot11Layer.(*layers.Dot11)
	require.True(t, ok)
	return dot11
}

func TestBuildBeaconRoundTrips(t *testing.T) {
	bssid, _ := net.ParseMAC("02:00:00:00:00:01")
	raw, err := BuildBeacon("rogue-ap", bssid, bssid, 6, 1)
	require.NoError(t, err)

	dot11 := decode(t, raw)
	assert.Equal(t, layers.Dot11TypeMgmtBeacon, dot11.Type)
	assert.Equal(t, net.HardwareAddr(bssid), dot11.Address3)
}

func TestBuildDeauthRoundTrips(t *testing.T) {
	bssid, _ := net.ParseMAC("02:00:00:00:00:01")
	station, _ := net.ParseMAC("02:00:00:00:00:02")
	raw, err := BuildDeauth(station, bssid, 7, 42)
	require.NoError(t, err)

	dot11 := decode(t, raw)
	assert.Equal(t, layers.Dot11TypeMgmtDeauthentication, dot11.Type)
	assert.Equal(t, net.HardwareAddr(station), dot11.Address1)
	assert.Equal(t, uint16(42), dot11.SequenceNumber)
}

func TestBuildProbeResponseRoundTrips(t *testing.T) {
	bssid, _ := net.ParseMAC("02:00:00:00:00:01")
	station, _ := net.ParseMAC("02:00:00:00:00:02")
	raw, err := BuildProbeResponse("FreeWiFi", station, bssid, 11, 1)
	require.NoError(t, err)

	dot11 := decode(t, raw)
	assert.Equal(t, layers.Dot11TypeMgmtProbeResp, dot11.Type)
	assert.Equal(t, net.HardwareAddr(station), dot11.Address1)
}

func TestRandomMACIsLocallyAdministeredUnicast(t *testing.T) {
	for i := 0; i < 20; i++ {
		mac := RandomMAC()
		assert.Equal(t, byte(0x02), mac[0]&0x02, "locally administered bit must be set")
		assert.Equal(t, byte(0x00), mac[0]&0x01, "unicast bit must be clear")
	}
}
