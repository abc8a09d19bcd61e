// Package gpio provides the igniter board's hardware abstraction: three
// output lines (two indicator LEDs and the MOS gate) and a gated pulse
// counter on the PWM input line.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Device drives the igniter board I/O.
//
// The counter is gated: edges on the input line accumulate only between
// EnableCounter and DisableCounter. ReadCounter is valid only after
// DisableCounter has taken effect — reading a still-open window yields an
// inconsistent value, so implementations should reject it. Resetting the
// count before each window is the caller's responsibility.
type Device interface {
	// SetIgnitionLED sets the ignition indicator LED.
	SetIgnitionLED(on bool) error

	// SetLinkLED sets the link (heartbeat) indicator LED.
	SetLinkLED(on bool) error

	// SetMOSGate sets the MOS gate driving the spark plug.
	// This is the one safety-critical output: ON energizes the igniter.
	SetMOSGate(on bool) error

	// EnableCounter opens the counting window.
	EnableCounter() error

	// DisableCounter closes the counting window.
	DisableCounter() error

	// ReadCounter returns the number of rising edges counted during the
	// last closed window. Valid only after DisableCounter.
	ReadCounter() (uint16, error)

	// ResetCounter zeroes the counter.
	ResetCounter() error

	// Close releases GPIO resources.
	Close() error
}

// Default pin assignments (BCM numbering)
const (
	DefaultPinInput       = 17 // PWM clock input from the control board
	DefaultPinIgnitionLED = 27
	DefaultPinLinkLED     = 22
	DefaultPinMOSGate     = 23
)

// Pins holds the BCM pin assignment for a Device.
type Pins struct {
	Input       int
	IgnitionLED int
	LinkLED     int
	MOSGate     int
}

// DefaultPins returns the default pin assignment.
func DefaultPins() Pins {
	return Pins{
		Input:       DefaultPinInput,
		IgnitionLED: DefaultPinIgnitionLED,
		LinkLED:     DefaultPinLinkLED,
		MOSGate:     DefaultPinMOSGate,
	}
}
