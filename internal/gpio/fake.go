package gpio

import "errors"

// FakeDevice is a test double that returns scripted window counts and
// records output writes and counter call ordering.
type FakeDevice struct {
	// Counts contains scripted window counts. Each Enable/Disable cycle
	// consumes the next count. If exhausted, the last count repeats.
	Counts []uint16

	// index tracks current position in Counts
	index int

	// register models the hardware count register: zeroed by ResetCounter,
	// loaded with the next scripted count on DisableCounter.
	register uint16

	// enabled tracks whether the counting window is open
	enabled bool

	// IgnitionLED, LinkLED, MOSGate hold the last written output values.
	IgnitionLED bool
	LinkLED     bool
	MOSGate     bool

	// Writes records every output write in order, e.g. "mos_gate=true".
	Writes []string

	// Calls records counter lifecycle calls in order:
	// "reset", "enable", "disable", "read".
	Calls []string

	// Closed tracks if Close was called
	Closed bool

	// SetError, if set, will be returned by all Set* methods
	SetError error
}

// NewFakeDevice creates a FakeDevice with the given scripted counts.
func NewFakeDevice(counts []uint16) *FakeDevice {
	return &FakeDevice{Counts: counts}
}

func (f *FakeDevice) set(name string, dst *bool, on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	*dst = on
	f.Writes = append(f.Writes, name+"="+boolString(on))
	return nil
}

// SetIgnitionLED records an ignition LED write.
func (f *FakeDevice) SetIgnitionLED(on bool) error {
	return f.set("ignition_led", &f.IgnitionLED, on)
}

// SetLinkLED records a link LED write.
func (f *FakeDevice) SetLinkLED(on bool) error {
	return f.set("link_led", &f.LinkLED, on)
}

// SetMOSGate records a MOS gate write.
func (f *FakeDevice) SetMOSGate(on bool) error {
	return f.set("mos_gate", &f.MOSGate, on)
}

// EnableCounter opens the window.
func (f *FakeDevice) EnableCounter() error {
	f.Calls = append(f.Calls, "enable")
	f.enabled = true
	return nil
}

// DisableCounter closes the window, loading the next scripted count.
func (f *FakeDevice) DisableCounter() error {
	f.Calls = append(f.Calls, "disable")
	f.enabled = false

	if len(f.Counts) == 0 {
		return nil
	}
	f.register = f.Counts[f.index]
	if f.index < len(f.Counts)-1 {
		f.index++
	}
	return nil
}

// ReadCounter returns the register value. Reading while the window is
// still open is the one ordering bug the real hardware punishes silently;
// the fake makes it an error so tests catch it.
func (f *FakeDevice) ReadCounter() (uint16, error) {
	f.Calls = append(f.Calls, "read")
	if f.enabled {
		return 0, errors.New("read counter: window still open")
	}
	return f.register, nil
}

// ResetCounter zeroes the register.
func (f *FakeDevice) ResetCounter() error {
	f.Calls = append(f.Calls, "reset")
	f.register = 0
	return nil
}

// Close marks the device as closed.
func (f *FakeDevice) Close() error {
	f.Closed = true
	return nil
}

// Register returns the current register value without recording a read.
// Lets tests assert the reset discipline mid-cycle.
func (f *FakeDevice) Register() uint16 {
	return f.register
}

// Reset restores the device to its initial state, keeping the scripted counts.
func (f *FakeDevice) Reset() {
	f.index = 0
	f.register = 0
	f.enabled = false
	f.IgnitionLED = false
	f.LinkLED = false
	f.MOSGate = false
	f.Writes = nil
	f.Calls = nil
	f.Closed = false
	f.SetError = nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
