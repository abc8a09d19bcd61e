package internal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/skyward-er/ignition-sensor/internal/gpio"
	"github.com/skyward-er/ignition-sensor/internal/logic"
	"github.com/skyward-er/ignition-sensor/internal/mqtt"
)

// stepWindow runs one full measurement cycle against the device:
// reset → enable → (window elapses) → disable → read.
func stepWindow(t *testing.T, dev gpio.Device) uint16 {
	t.Helper()
	if err := dev.ResetCounter(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := dev.EnableCounter(); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if err := dev.DisableCounter(); err != nil {
		t.Fatalf("disable: %v", err)
	}
	count, err := dev.ReadCounter()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return count
}

// TestIntegrationFullFlow runs the fake device through a launch sequence:
// idle pad → link check → ignition command → back to idle, verifying the
// outputs and the events published at each band transition.
func TestIntegrationFullFlow(t *testing.T) {
	counts := []uint16{
		0,    // pad idle, no signal
		0,    // still idle
		5000, // control board link check
		5050, // link holds, LED should toggle
		4980, // link holds
		450,  // ignition command
		430,  // ignition holds
		0,    // signal gone, fail safe
	}

	dev := gpio.NewFakeDevice(counts)
	publisher := mqtt.NewFakePublisher()
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	controller := logic.NewController(start)

	window := time.Second
	var lastOutputs logic.Outputs

	for i := range counts {
		count := stepWindow(t, dev)
		now := start.Add(time.Duration(i+1) * window)

		cycle := controller.Step(count, now)
		lastOutputs = cycle.Outputs

		if cycle.BandChanged {
			if err := publisher.Publish(cycle); err != nil {
				t.Fatalf("cycle %d: publish: %v", i, err)
			}
		}

		// Gate invariant holds on every single cycle.
		wantGate := count >= logic.IgnitionMin && count <= logic.IgnitionMax
		if cycle.Outputs.MOSGate != wantGate {
			t.Errorf("cycle %d (count=%d): mos_gate=%v, want %v",
				i, count, cycle.Outputs.MOSGate, wantGate)
		}
	}

	// Transitions: IDLE, LINK_OK, IGNITION, IDLE.
	wantBands := []logic.Band{logic.BandIdle, logic.BandLinkOK, logic.BandIgnition, logic.BandIdle}
	if len(publisher.Cycles) != len(wantBands) {
		t.Fatalf("published events: got %d, want %d", len(publisher.Cycles), len(wantBands))
	}
	for i, want := range wantBands {
		if publisher.Cycles[i].Band != want {
			t.Errorf("event %d: band %s, want %s", i, publisher.Cycles[i].Band, want)
		}
	}

	// Final state is the fail-safe default.
	if lastOutputs.MOSGate || lastOutputs.IgnitionLED {
		t.Errorf("final outputs: %+v, want everything off but the link LED", lastOutputs)
	}
	if !lastOutputs.LinkLED {
		t.Error("link LED should be constantly on while idle")
	}

	// The published payloads decode to the wire schema.
	var decoded mqtt.Payload
	if err := json.Unmarshal(publisher.Payloads[2], &decoded); err != nil {
		t.Fatalf("decode ignition payload: %v", err)
	}
	if decoded.Igniter.Band != "IGNITION" || !decoded.Igniter.MOSGate {
		t.Errorf("ignition payload: %+v", decoded.Igniter)
	}
	if decoded.Igniter.Count != 450 {
		t.Errorf("ignition payload count: got %d, want 450", decoded.Igniter.Count)
	}
}

// TestIntegrationLinkHeartbeat holds the link band for several windows and
// verifies the link LED blinks while the gate stays off.
func TestIntegrationLinkHeartbeat(t *testing.T) {
	counts := []uint16{5000, 5000, 5000, 5000, 5000, 5000}

	dev := gpio.NewFakeDevice(counts)
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	controller := logic.NewController(start)

	var leds []bool
	for i := range counts {
		count := stepWindow(t, dev)
		cycle := controller.Step(count, start.Add(time.Duration(i)*time.Second))
		if cycle.Outputs.MOSGate {
			t.Fatalf("cycle %d: gate asserted during link check", i)
		}
		leds = append(leds, cycle.Outputs.LinkLED)
	}

	for i, led := range leds {
		if want := i%2 == 0; led != want {
			t.Errorf("cycle %d: link LED %v, want %v (heartbeat)", i, led, want)
		}
	}
}

// TestIntegrationNoCarryOver verifies a huge count cannot leak into the
// next window through the register.
func TestIntegrationNoCarryOver(t *testing.T) {
	dev := gpio.NewFakeDevice([]uint16{65535, 450})

	if got := stepWindow(t, dev); got != 65535 {
		t.Fatalf("first window: got %d", got)
	}

	// Reset happens at the top of the next cycle; the register must be
	// clean before the window opens.
	if err := dev.ResetCounter(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if dev.Register() != 0 {
		t.Errorf("register after reset: got %d, want 0", dev.Register())
	}
}
