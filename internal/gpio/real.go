//go:build linux

package gpio

import (
	"fmt"
	"sync/atomic"

	"github.com/warthog618/go-gpiocdev"
)

// RealDevice drives actual hardware using the Linux GPIO character device.
//
// The PIC original gated a hardware timer register from the input pin; here
// the kernel delivers rising-edge events and we accumulate them in software,
// gated by an enable flag. The count is latched on DisableCounter so a read
// always sees a fully closed window.
type RealDevice struct {
	chip     *gpiocdev.Chip
	input    *gpiocdev.Line
	ignition *gpiocdev.Line
	link     *gpiocdev.Line
	mosGate  *gpiocdev.Line

	enabled atomic.Bool
	edges   atomic.Uint32
	latched uint16
}

// NewRealDevice requests the four lines from gpiochip0.
// The MOS gate is requested with initial value low so the igniter cannot
// fire during startup.
func NewRealDevice(pins Pins) (*RealDevice, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	d := &RealDevice{chip: chip}

	// Rising edges are counted only while the gate is enabled. The handler
	// runs on the gpiocdev event goroutine; enabled/edges are atomics.
	d.input, err = chip.RequestLine(pins.Input,
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
			if d.enabled.Load() {
				d.edges.Add(1)
			}
		}))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request input pin %d: %w", pins.Input, err)
	}

	outputs := []struct {
		pin  int
		name string
		dst  **gpiocdev.Line
	}{
		{pins.IgnitionLED, "ignition led", &d.ignition},
		{pins.LinkLED, "link led", &d.link},
		{pins.MOSGate, "mos gate", &d.mosGate},
	}
	for _, o := range outputs {
		line, err := chip.RequestLine(o.pin, gpiocdev.AsOutput(0))
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", o.name, o.pin, err)
		}
		*o.dst = line
	}

	return d, nil
}

func setLine(line *gpiocdev.Line, on bool, name string) error {
	v := 0
	if on {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	return nil
}

// SetIgnitionLED sets the ignition indicator LED.
func (d *RealDevice) SetIgnitionLED(on bool) error {
	return setLine(d.ignition, on, "ignition led")
}

// SetLinkLED sets the link indicator LED.
func (d *RealDevice) SetLinkLED(on bool) error {
	return setLine(d.link, on, "link led")
}

// SetMOSGate sets the MOS gate output.
func (d *RealDevice) SetMOSGate(on bool) error {
	return setLine(d.mosGate, on, "mos gate")
}

// EnableCounter opens the counting window.
func (d *RealDevice) EnableCounter() error {
	d.enabled.Store(true)
	return nil
}

// DisableCounter closes the counting window and latches the count.
func (d *RealDevice) DisableCounter() error {
	d.enabled.Store(false)
	// Truncate to 16 bits, matching the width of a hardware count register.
	d.latched = uint16(d.edges.Load())
	return nil
}

// ReadCounter returns the count latched by the last DisableCounter.
func (d *RealDevice) ReadCounter() (uint16, error) {
	if d.enabled.Load() {
		return 0, fmt.Errorf("read counter: window still open")
	}
	return d.latched, nil
}

// ResetCounter zeroes the counter.
func (d *RealDevice) ResetCounter() error {
	d.edges.Store(0)
	d.latched = 0
	return nil
}

// Close drives all outputs low, then releases GPIO resources. Failing to
// de-assert the MOS gate on the way out would leave the igniter energized,
// so the output writes happen before any line is released.
func (d *RealDevice) Close() error {
	var errs []error

	for _, o := range []struct {
		line *gpiocdev.Line
		name string
	}{
		{d.mosGate, "mos gate"},
		{d.ignition, "ignition led"},
		{d.link, "link led"},
	} {
		if o.line == nil {
			continue
		}
		if err := o.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear %s: %w", o.name, err))
		}
		if err := o.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", o.name, err))
		}
	}
	if d.input != nil {
		if err := d.input.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close input: %w", err))
		}
	}
	if d.chip != nil {
		if err := d.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
