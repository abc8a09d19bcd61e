//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealDevice is not available on non-Linux platforms.
type RealDevice struct{}

// NewRealDevice returns an error on non-Linux platforms.
func NewRealDevice(pins Pins) (*RealDevice, error) {
	return nil, errUnsupported
}

func (d *RealDevice) SetIgnitionLED(on bool) error { return errUnsupported }
func (d *RealDevice) SetLinkLED(on bool) error     { return errUnsupported }
func (d *RealDevice) SetMOSGate(on bool) error     { return errUnsupported }
func (d *RealDevice) EnableCounter() error         { return errUnsupported }
func (d *RealDevice) DisableCounter() error        { return errUnsupported }
func (d *RealDevice) ReadCounter() (uint16, error) { return 0, errUnsupported }
func (d *RealDevice) ResetCounter() error          { return errUnsupported }
func (d *RealDevice) Close() error                 { return nil }
