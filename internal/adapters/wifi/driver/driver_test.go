package driver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	calls [][]string
	fail  map[string]error
}

func (f *fakeExecutor) Execute(name string, args ...string) ([]byte, error) {
	call := append([]string{name}, args...)
	f.calls = append(f.calls, call)
	if err, ok := f.fail[name]; ok {
		return []byte("boom"), err
	}
	return nil, nil
}

func TestSetChannelRejectsNonPositive(t *testing.T) {
	d := New(&fakeExecutor{})
	assert.Error(t, d.SetChannel("wlan0mon", 0))
}

func TestSetChannelInvokesIW(t *testing.T) {
	exec := &fakeExecutor{}
	d := New(exec)
	require.NoError(t, d.SetChannel("wlan0mon", 11))
	require.Len(t, exec.calls, 1)
	assert.Equal(t, []string{"iw", "wlan0mon", "set", "channel", "11"}, exec.calls[0])
}

func TestSetChannelWithRetryGivesUpAfterMaxRetries(t *testing.T) {
	exec := &fakeExecutor{fail: map[string]error{"iw": errors.New("device busy")}}
	d := New(exec)
	err := d.SetChannelWithRetry("wlan0mon", 6, 3)
	require.Error(t, err)
	assert.Len(t, exec.calls, 3)
}

func TestEnableMonitorModeSequencesCommands(t *testing.T) {
	exec := &fakeExecutor{}
	d := New(exec)
	require.NoError(t, d.EnableMonitorMode("wlan0"))

	require.Len(t, exec.calls, 4)
	assert.Equal(t, []string{"ip", "link", "set", "wlan0", "down"}, exec.calls[0])
	assert.Equal(t, []string{"iw", "wlan0", "set", "type", "monitor"}, exec.calls[1])
	assert.Equal(t, []string{"iw", "wlan0", "set", "channel", "6"}, exec.calls[2])
	assert.Equal(t, []string{"ip", "link", "set", "wlan0", "up"}, exec.calls[3])
}

func TestDisableMonitorModeBestEffort(t *testing.T) {
	exec := &fakeExecutor{fail: map[string]error{"iw": errors.New("no such device")}}
	d := New(exec)
	d.DisableMonitorMode("wlan0")
	assert.Len(t, exec.calls, 3)
}

func TestKillConflictingProcessesStopsBothDaemons(t *testing.T) {
	exec := &fakeExecutor{}
	d := New(exec)
	require.NoError(t, d.KillConflictingProcesses())
	assert.Equal(t, []string{"systemctl", "stop", "NetworkManager"}, exec.calls[0])
	assert.Equal(t, []string{"systemctl", "stop", "wpa_supplicant"}, exec.calls[1])
}

func TestRestoreNetworkServicesAttemptsBothEvenOnFailure(t *testing.T) {
	exec := &fakeExecutor{fail: map[string]error{"systemctl": errors.New("unit not found")}}
	d := New(exec)
	err := d.RestoreNetworkServices()
	require.Error(t, err)
	assert.Len(t, exec.calls, 2)
}
