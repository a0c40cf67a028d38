package app

import (
	"context"
	"fmt"

	"github.com/lcalzada-xor/wmap-radio/internal/adapters/wifi/injection"
	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
	"github.com/lcalzada-xor/wmap-radio/internal/core/ports"
	"github.com/lcalzada-xor/wmap-radio/internal/telemetry"
)

// countingInjector wraps a ports.PacketInjector to sample injection
// counts into Prometheus, keyed by interface and attack type. Grounded on
// the wrap-and-forward shape classifier.Classifier already uses for its
// own sinks.
type countingInjector struct {
	ports.PacketInjector
	iface     string
	attackTyp string
}

func (c *countingInjector) Inject(ctx context.Context, frame []byte) error {
	err := c.PacketInjector.Inject(ctx, frame)
	telemetry.InjectionsTotal.WithLabelValues(c.iface, c.attackTyp).Inc()
	if err != nil {
		telemetry.InjectionErrors.WithLabelValues(c.iface, c.attackTyp).Inc()
	}
	return err
}

// StartDeauth claims the RF front end for injection (suspending BLE if
// active), opens a raw injector on iface, and launches a deauth/disassoc
// attack session per cfg. The session runs until StopDeauth(id) or app
// shutdown.
func (a *Application) StartDeauth(ctx context.Context, iface string, cfg domain.DeauthAttackConfig) (string, error) {
	if iface == "" {
		iface = a.primaryInterface()
	}
	if iface == "" {
		return "", fmt.Errorf("app: no Wi-Fi interface configured")
	}

	if err := a.Arbiter.Request(ctx, domain.RadioWifiPromiscuous); err != nil {
		return "", fmt.Errorf("app: claim wifi front end: %w", err)
	}

	raw, err := injection.NewPcapInjector(iface)
	if err != nil {
		_ = a.Arbiter.Release(domain.RadioWifiPromiscuous)
		return "", fmt.Errorf("app: open injector on %s: %w", iface, err)
	}
	counted := &countingInjector{PacketInjector: raw, iface: iface, attackTyp: cfg.Type.String()}
	transmitter := injection.NewTransmitter(counted)
	engine := injection.NewDeauthEngine(transmitter, nil)

	id := engine.Start(ctx, cfg)

	a.wifiMu.Lock()
	a.deauthEngine = engine
	a.injector = raw
	a.wifiMu.Unlock()

	return id, nil
}

// StopDeauth cancels session id. It does not release the front end: other
// sessions on the same engine, or an active capture, may still need it.
func (a *Application) StopDeauth(id string) {
	a.wifiMu.Lock()
	engine := a.deauthEngine
	a.wifiMu.Unlock()
	if engine != nil {
		engine.Stop(id)
	}
}

// DeauthStatus reports the current state of session id.
func (a *Application) DeauthStatus(id string) (domain.DeauthAttackState, bool) {
	a.wifiMu.Lock()
	engine := a.deauthEngine
	a.wifiMu.Unlock()
	if engine == nil {
		return domain.DeauthAttackState{}, false
	}
	return engine.Status(id)
}

// StartEapolLogoff claims the RF front end for injection and launches an
// EAPOL-Logoff flood session per cfg, spec §6's `attack -e`.
func (a *Application) StartEapolLogoff(ctx context.Context, iface string, cfg domain.EapolLogoffAttackConfig) (string, error) {
	if iface == "" {
		iface = a.primaryInterface()
	}
	if iface == "" {
		return "", fmt.Errorf("app: no Wi-Fi interface configured")
	}
	if err := a.Arbiter.Request(ctx, domain.RadioWifiPromiscuous); err != nil {
		return "", fmt.Errorf("app: claim wifi front end: %w", err)
	}
	raw, err := injection.NewPcapInjector(iface)
	if err != nil {
		_ = a.Arbiter.Release(domain.RadioWifiPromiscuous)
		return "", fmt.Errorf("app: open injector on %s: %w", iface, err)
	}
	counted := &countingInjector{PacketInjector: raw, iface: iface, attackTyp: "eapol-logoff"}
	engine := injection.NewEapolLogoffEngine(injection.NewTransmitter(counted), nil)
	id := engine.Start(ctx, cfg)

	a.wifiMu.Lock()
	a.logoffEngine = engine
	a.injector = raw
	a.wifiMu.Unlock()
	return id, nil
}

// StopEapolLogoff cancels session id.
func (a *Application) StopEapolLogoff(id string) {
	a.wifiMu.Lock()
	engine := a.logoffEngine
	a.wifiMu.Unlock()
	if engine != nil {
		engine.Stop(id)
	}
}

// EapolLogoffStatus reports the current state of session id.
func (a *Application) EapolLogoffStatus(id string) (domain.EapolLogoffAttackState, bool) {
	a.wifiMu.Lock()
	engine := a.logoffEngine
	a.wifiMu.Unlock()
	if engine == nil {
		return domain.EapolLogoffAttackState{}, false
	}
	return engine.Status(id)
}

// StartAuthFlood claims the RF front end for injection and launches a
// forged SAE commit authentication flood per cfg, spec §6's `attack -s`.
func (a *Application) StartAuthFlood(ctx context.Context, iface string, cfg domain.AuthFloodAttackConfig) (string, error) {
	if iface == "" {
		iface = a.primaryInterface()
	}
	if iface == "" {
		return "", fmt.Errorf("app: no Wi-Fi interface configured")
	}
	if err := a.Arbiter.Request(ctx, domain.RadioWifiPromiscuous); err != nil {
		return "", fmt.Errorf("app: claim wifi front end: %w", err)
	}
	raw, err := injection.NewPcapInjector(iface)
	if err != nil {
		_ = a.Arbiter.Release(domain.RadioWifiPromiscuous)
		return "", fmt.Errorf("app: open injector on %s: %w", iface, err)
	}
	counted := &countingInjector{PacketInjector: raw, iface: iface, attackTyp: "sae-auth-flood"}
	engine := injection.NewAuthFloodEngine(injection.NewTransmitter(counted), nil)
	id := engine.Start(ctx, cfg)

	a.wifiMu.Lock()
	a.authEngine = engine
	a.injector = raw
	a.wifiMu.Unlock()
	return id, nil
}

// StopAuthFlood cancels session id.
func (a *Application) StopAuthFlood(id string) {
	a.wifiMu.Lock()
	engine := a.authEngine
	a.wifiMu.Unlock()
	if engine != nil {
		engine.Stop(id)
	}
}

// AuthFloodStatus reports the current state of session id.
func (a *Application) AuthFloodStatus(id string) (domain.AuthFloodAttackState, bool) {
	a.wifiMu.Lock()
	engine := a.authEngine
	a.wifiMu.Unlock()
	if engine == nil {
		return domain.AuthFloodAttackState{}, false
	}
	return engine.Status(id)
}

// deauthStopAll cancels every running injection session (deauth,
// EAPOL-logoff, SAE auth-flood), closes the shared injector, and releases
// the front end. Called from cleanup.
func (a *Application) deauthStopAll() {
	a.wifiMu.Lock()
	deauth := a.deauthEngine
	logoff := a.logoffEngine
	authFlood := a.authEngine
	injector := a.injector
	a.deauthEngine = nil
	a.logoffEngine = nil
	a.authEngine = nil
	a.injector = nil
	a.wifiMu.Unlock()

	if deauth != nil {
		deauth.StopAll()
	}
	if logoff != nil {
		logoff.StopAll()
	}
	if authFlood != nil {
		authFlood.StopAll()
	}
	if injector != nil {
		_ = injector.Close()
	}
	if deauth == nil && logoff == nil && authFlood == nil {
		return
	}
	if a.Arbiter.Current() == domain.RadioWifiPromiscuous {
		_ = a.Arbiter.Release(domain.RadioWifiPromiscuous)
	}
}
