package domain

import "errors"

// Sentinel errors shared across the radio core. Adapters wrap these with
// fmt.Errorf("...: %w", ...) to add context; callers compare with errors.Is.
var (
	// ErrRadioBusy is returned when the requested stack cannot claim the RF
	// front end: the arbiter wraps it together with ErrIllegalTransition
	// when it refuses a mode, and the application returns it when a capture
	// session is already active.
	ErrRadioBusy = errors.New("radio busy")

	// ErrParseTruncated is returned when an IE, ODID message, or EAPOL
	// frame is shorter than its declared length.
	ErrParseTruncated = errors.New("truncated frame")

	// ErrQueueFull is returned when the capture writer queue is saturated.
	ErrQueueFull = errors.New("capture queue full")

	// ErrResourceExhausted is returned when a bounded device table is full.
	ErrResourceExhausted = errors.New("device table full")

	// ErrProtocolTimeout is returned when a GATT, handshake, or injection
	// operation exceeds its deadline.
	ErrProtocolTimeout = errors.New("protocol timeout")

	// ErrPersistFailure is returned when a settings or metadata write fails.
	ErrPersistFailure = errors.New("persist failure")

	// ErrDriverError wraps an underlying radio driver failure.
	ErrDriverError = errors.New("driver error")

	// ErrIllegalTransition is returned by the arbiter on a request for a
	// mode outside the Wi-Fi and BLE mode sets, and on a Release of a mode
	// that is not the current one.
	ErrIllegalTransition = errors.New("illegal radio transition")
)
