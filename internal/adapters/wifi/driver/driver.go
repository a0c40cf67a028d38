// Package driver shells out to iw/ip to bring the Wi-Fi interface into
// and out of monitor mode and to change its channel, grounded on the
// teacher's sniffer/driver/wireless_utils.go.
package driver

import (
	"fmt"
	"log"
	"os/exec"
	"time"

	"github.com/lcalzada-xor/wmap-radio/internal/core/ports"
)

// CommandExecutor abstracts process execution so tests can substitute a
// fake without touching the host network stack.
type CommandExecutor interface {
	Execute(name string, args ...string) ([]byte, error)
}

// SystemCommandExecutor runs real commands via os/exec.
type SystemCommandExecutor struct{}

func (SystemCommandExecutor) Execute(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// Driver manages a single wireless interface's mode and channel.
type Driver struct {
	executor CommandExecutor
}

// New returns a Driver that runs commands through executor. A nil
// executor uses SystemCommandExecutor.
func New(executor CommandExecutor) *Driver {
	if executor == nil {
		executor = SystemCommandExecutor{}
	}
	return &Driver{executor: executor}
}

// SetChannel implements ports.ChannelSwitcher.
func (d *Driver) SetChannel(iface string, channel int) error {
	if channel <= 0 {
		return fmt.Errorf("driver: invalid channel %d", channel)
	}
	out, err := d.executor.Execute("iw", iface, "set", "channel", fmt.Sprintf("%d", channel))
	if err != nil {
		return fmt.Errorf("driver: set channel %d on %s: %w (%s)", channel, iface, err, string(out))
	}
	return nil
}

// SetChannelWithRetry retries SetChannel with linear backoff, grounded on
// the teacher's SetInterfaceChannelWithRetry (a flaky driver occasionally
// rejects the first `iw ... set channel` call right after a mode switch).
func (d *Driver) SetChannelWithRetry(iface string, channel, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if err := d.SetChannel(iface, channel); err == nil {
			return nil
		} else {
			lastErr = err
			time.Sleep(100 * time.Millisecond * time.Duration(i+1))
		}
	}
	return fmt.Errorf("driver: set channel failed after %d retries: %w", maxRetries, lastErr)
}

// KillConflictingProcesses stops the host's own Wi-Fi management daemons
// so monitor mode and channel changes aren't fought by NetworkManager or
// wpa_supplicant.
func (d *Driver) KillConflictingProcesses() error {
	for _, cmd := range [][]string{
		{"systemctl", "stop", "NetworkManager"},
		{"systemctl", "stop", "wpa_supplicant"},
	} {
		if out, err := d.executor.Execute(cmd[0], cmd[1:]...); err != nil {
			return fmt.Errorf("driver: %s %v: %w (%s)", cmd[0], cmd[1:], err, string(out))
		}
	}
	return nil
}

// RestoreNetworkServices restarts the daemons KillConflictingProcesses
// stopped. Both commands are attempted even if the first fails, and the
// last error (if any) is returned.
func (d *Driver) RestoreNetworkServices() error {
	var lastErr error
	for _, cmd := range [][]string{
		{"systemctl", "start", "wpa_supplicant"},
		{"systemctl", "start", "NetworkManager"},
	} {
		if out, err := d.executor.Execute(cmd[0], cmd[1:]...); err != nil {
			lastErr = fmt.Errorf("driver: %s %v: %w (%s)", cmd[0], cmd[1:], err, string(out))
		}
	}
	return lastErr
}

// EnableMonitorMode takes iface down, switches it to monitor type, and
// brings it back up on a default channel.
func (d *Driver) EnableMonitorMode(iface string) error {
	log.Printf("driver: enabling monitor mode on %s", iface)
	if err := d.run("ip", "link", "set", iface, "down"); err != nil {
		return err
	}
	if err := d.run("iw", iface, "set", "type", "monitor"); err != nil {
		return fmt.Errorf("driver: set monitor type on %s (try killing conflicting processes): %w", iface, err)
	}
	_ = d.SetChannel(iface, 6)
	return d.run("ip", "link", "set", iface, "up")
}

// DisableMonitorMode restores iface to managed mode. Errors are logged
// rather than returned, mirroring the teacher's best-effort teardown.
func (d *Driver) DisableMonitorMode(iface string) {
	log.Printf("driver: restoring managed mode on %s", iface)
	_ = d.run("ip", "link", "set", iface, "down")
	_ = d.run("iw", iface, "set", "type", "managed")
	_ = d.run("ip", "link", "set", iface, "up")
}

func (d *Driver) run(name string, args ...string) error {
	out, err := d.executor.Execute(name, args...)
	if err != nil {
		log.Printf("driver: command failed: %s %v: %s", name, args, string(out))
		return err
	}
	return nil
}

var _ ports.ChannelSwitcher = (*Driver)(nil)
