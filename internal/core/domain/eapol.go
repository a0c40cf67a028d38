package domain

// EapolMsg identifies which message of the WPA2 4-way handshake a frame
// represents, derived from its key_info flags.
type EapolMsg int

const (
	EapolMsgNone EapolMsg = iota
	EapolM1
	EapolM2
	EapolM3
	EapolM4
)

func (m EapolMsg) String() string {
	switch m {
	case EapolM1:
		return "M1"
	case EapolM2:
		return "M2"
	case EapolM3:
		return "M3"
	case EapolM4:
		return "M4"
	default:
		return "None"
	}
}

// EapolKeyInfo is the decoded subset of the EAPOL-Key info field the
// handshake tracker needs to classify a message.
type EapolKeyInfo struct {
	DescriptorType uint8
	HasMIC         bool
	Install        bool
	Ack            bool
	Pairwise       bool
}

// ClassifyEapolMsg derives the handshake message number from key_info flags,
// per the WPA2 4-way handshake state table.
func ClassifyEapolMsg(info EapolKeyInfo) EapolMsg {
	switch {
	case !info.HasMIC && info.Ack && !info.Install:
		return EapolM1
	case info.HasMIC && !info.Ack && !info.Install:
		return EapolM2
	case info.HasMIC && info.Ack && info.Install:
		return EapolM3
	case info.HasMIC && !info.Ack && info.Install:
		return EapolM4
	default:
		return EapolMsgNone
	}
}

// EapolHandshakeKey identifies one handshake attempt by its participants and
// replay counter.
type EapolHandshakeKey struct {
	APMac         [6]byte
	STAMac        [6]byte
	ReplayCounter uint64
}

// EapolHandshakeEntry is a table slot tracking the two halves of a single
// handshake attempt.
type EapolHandshakeEntry struct {
	Key    EapolHandshakeKey
	APMsg  EapolMsg
	STAMsg EapolMsg
}

// EapolTableCap is the fixed capacity of the handshake tracker's table.
const EapolTableCap = 16
