// Package logic contains the pure decision core: frequency classification
// and output mapping for the ignition circuit.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Band is the frequency classification of one measurement window.
type Band string

const (
	// BandIgnition means the control board commands ignition: the MOS gate
	// is energized and the spark plug fires.
	BandIgnition Band = "IGNITION"

	// BandLinkOK is the link-test frequency: the control board is alive and
	// the line between it and this circuit works.
	BandLinkOK Band = "LINK_OK"

	// BandIdle is everything else, including no signal at all. Idle and
	// signal-absent are deliberately indistinguishable: both keep the
	// gate off.
	BandIdle Band = "IDLE"
)

// Classification thresholds in counted edges per window, which equals Hz
// at the nominal 1 s window. Bounds are inclusive on both ends; the two
// accepted bands are disjoint and non-adjacent, so there is no ambiguity
// at the edges.
const (
	IgnitionMin uint16 = 300
	IgnitionMax uint16 = 600
	LinkMin     uint16 = 4500
	LinkMax     uint16 = 5500
)

// Outputs is the state of the three output lines for one cycle.
type Outputs struct {
	IgnitionLED bool
	LinkLED     bool
	MOSGate     bool
}

// Cycle is the result of one completed measurement window.
type Cycle struct {
	Timestamp time.Time
	Count     uint16
	Band      Band
	Outputs   Outputs

	// BandChanged is true when Band differs from the previous cycle's.
	BandChanged bool
}

// CycleCounts tracks the number of windows classified into each band
// since startup.
type CycleCounts struct {
	Ignition int
	LinkOK   int
	Idle     int
}

// Total returns the number of completed windows.
func (c CycleCounts) Total() int {
	return c.Ignition + c.LinkOK + c.Idle
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    CycleCounts
}
