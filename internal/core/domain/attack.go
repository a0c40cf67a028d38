package domain

import "time"

// DeauthAttackType selects the deauth engine's targeting strategy.
type DeauthAttackType int

const (
	DeauthBroadcast DeauthAttackType = iota
	DeauthUnicast
	DeauthTargeted
	DeauthCombo
)

func (t DeauthAttackType) String() string {
	switch t {
	case DeauthBroadcast:
		return "broadcast"
	case DeauthUnicast:
		return "unicast"
	case DeauthTargeted:
		return "targeted"
	case DeauthCombo:
		return "combo"
	default:
		return "unknown"
	}
}

// DeauthAttackConfig describes a single deauth/disassoc attack session.
type DeauthAttackConfig struct {
	Interface string
	TargetMAC [6]byte
	ClientMAC [6]byte
	Channel   uint8
	Type      DeauthAttackType
}

// AttackStatus is the lifecycle state of a running attack session.
type AttackStatus int

const (
	AttackRunning AttackStatus = iota
	AttackStopped
	AttackFailed
)

// DeauthAttackState is the live, mutable state of a deauth session, read by
// status queries.
type DeauthAttackState struct {
	ID                string
	Config            DeauthAttackConfig
	Status            AttackStatus
	PacketsSent       uint64
	HandshakeCaptured bool
	StartedAt         time.Time
}

// AuthFloodAttackConfig describes an SAE/auth-frame flood session.
type AuthFloodAttackConfig struct {
	Interface string
	TargetMAC [6]byte
	Channel   uint8
}

// AuthFloodAttackState is the live, mutable state of an auth-flood session.
type AuthFloodAttackState struct {
	ID          string
	Config      AuthFloodAttackConfig
	Status      AttackStatus
	PacketsSent uint64
	StartedAt   time.Time
}

// EapolLogoffAttackConfig describes a forged-EAPOL-Logoff flood session,
// which knocks a station off its AP without ever deauthenticating it at
// the 802.11 layer.
type EapolLogoffAttackConfig struct {
	Interface string
	TargetMAC [6]byte // AP (EAPOL logoff's destination)
	ClientMAC [6]byte // station being logged off
	Channel   uint8
}

// EapolLogoffAttackState is the live, mutable state of an EAPOL-logoff
// session.
type EapolLogoffAttackState struct {
	ID          string
	Config      EapolLogoffAttackConfig
	Status      AttackStatus
	PacketsSent uint64
	StartedAt   time.Time
}

// WifiOperation is the single "current operation" tag the classifier
// dispatches on. Only one is active on the Wi-Fi radio at a time.
type WifiOperation int

const (
	OpNone WifiOperation = iota
	OpRawCapture
	OpProbeRequestListen
	OpBeaconCapture
	OpBeaconLimitedCapture
	OpDeauthCapture
	OpEAPOLCapture
	OpWPSDetect
	OpWardriving
	OpPineapDetect
)
