package logic

import (
	"testing"
	"time"
)

func TestNewController(t *testing.T) {
	startTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewController(startTime)
	if c == nil {
		t.Fatal("NewController returned nil")
	}
	if c.CurrentBand() != BandIdle {
		t.Errorf("initial band: got %s, want %s (fail-safe default)", c.CurrentBand(), BandIdle)
	}
	if c.Counts().Total() != 0 {
		t.Errorf("initial cycle counts: got %d, want 0", c.Counts().Total())
	}
}

// TestStepScenarioIgnition: count 450 → IGNITION, ignition LED and gate on.
func TestStepScenarioIgnition(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewController(now)

	cycle := c.Step(450, now)
	if cycle.Band != BandIgnition {
		t.Fatalf("band: got %s, want %s", cycle.Band, BandIgnition)
	}
	want := Outputs{IgnitionLED: true, LinkLED: false, MOSGate: true}
	if cycle.Outputs != want {
		t.Errorf("outputs: got %+v, want %+v", cycle.Outputs, want)
	}
	if !cycle.BandChanged {
		t.Error("first cycle should report a band change")
	}
	if c.Counts().Ignition != 1 {
		t.Errorf("ignition count: got %d, want 1", c.Counts().Ignition)
	}
}

// TestStepScenarioLink: count 5000 with link LED previously off → LINK_OK,
// link LED toggled on, gate off.
func TestStepScenarioLink(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewController(now)

	cycle := c.Step(5000, now)
	if cycle.Band != BandLinkOK {
		t.Fatalf("band: got %s, want %s", cycle.Band, BandLinkOK)
	}
	want := Outputs{IgnitionLED: false, LinkLED: true, MOSGate: false}
	if cycle.Outputs != want {
		t.Errorf("outputs: got %+v, want %+v", cycle.Outputs, want)
	}
}

// TestStepScenarioIdle: count 0 → IDLE, link LED constantly on, gate off.
func TestStepScenarioIdle(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewController(now)

	cycle := c.Step(0, now)
	if cycle.Band != BandIdle {
		t.Fatalf("band: got %s, want %s", cycle.Band, BandIdle)
	}
	want := Outputs{IgnitionLED: false, LinkLED: true, MOSGate: false}
	if cycle.Outputs != want {
		t.Errorf("outputs: got %+v, want %+v", cycle.Outputs, want)
	}
}

// TestStepHeartbeatAcrossCycles: consecutive LINK_OK windows alternate the
// link LED while the gate stays off throughout.
func TestStepHeartbeatAcrossCycles(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewController(now)

	for i := 0; i < 6; i++ {
		cycle := c.Step(5000, now.Add(time.Duration(i)*time.Second))
		wantLED := i%2 == 0
		if cycle.Outputs.LinkLED != wantLED {
			t.Fatalf("cycle %d: link LED = %v, want %v", i, cycle.Outputs.LinkLED, wantLED)
		}
		if cycle.Outputs.MOSGate {
			t.Fatalf("cycle %d: MOS gate asserted during LINK_OK", i)
		}
		if changed := cycle.BandChanged; changed != (i == 0) {
			t.Errorf("cycle %d: BandChanged = %v", i, changed)
		}
	}
	if c.Counts().LinkOK != 6 {
		t.Errorf("link cycle count: got %d, want 6", c.Counts().LinkOK)
	}
}

// TestStepToggleSurvivesOtherBands: the toggle bit may go stale while out
// of LINK_OK; that is harmless, but the gate must de-assert the moment the
// band leaves IGNITION.
func TestStepToggleSurvivesOtherBands(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewController(now)

	c.Step(5000, now) // LINK_OK, LED → true
	ign := c.Step(450, now.Add(time.Second))
	if !ign.Outputs.MOSGate {
		t.Fatal("IGNITION must assert the gate")
	}
	idle := c.Step(0, now.Add(2*time.Second))
	if idle.Outputs.MOSGate {
		t.Fatal("gate must drop on the first non-IGNITION cycle")
	}
	if !idle.BandChanged {
		t.Error("IGNITION→IDLE must report a band change")
	}
}

func TestStepBandChangedOnlyOnTransitions(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewController(now)

	counts := []uint16{0, 0, 450, 450, 5000, 0}
	wantChanged := []bool{true, false, true, false, true, true}
	for i, n := range counts {
		cycle := c.Step(n, now.Add(time.Duration(i)*time.Second))
		if cycle.BandChanged != wantChanged[i] {
			t.Errorf("cycle %d (count=%d): BandChanged = %v, want %v",
				i, n, cycle.BandChanged, wantChanged[i])
		}
	}
}

func TestCheckHeartbeat(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewController(start)
	interval := 15 * time.Minute

	c.Step(5000, start)

	if hb := c.CheckHeartbeat(start.Add(interval-time.Second), interval); hb != nil {
		t.Error("heartbeat fired before the interval elapsed")
	}

	hb := c.CheckHeartbeat(start.Add(interval), interval)
	if hb == nil {
		t.Fatal("expected heartbeat at the interval")
	}
	if hb.Uptime != interval {
		t.Errorf("uptime: got %v, want %v", hb.Uptime, interval)
	}
	if hb.Counts.LinkOK != 1 {
		t.Errorf("heartbeat link count: got %d, want 1", hb.Counts.LinkOK)
	}

	// Interval restarts from the last heartbeat.
	if hb := c.CheckHeartbeat(start.Add(interval+time.Minute), interval); hb != nil {
		t.Error("heartbeat fired again before a full interval")
	}
}

func TestCheckHeartbeatDisabled(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewController(start)

	if hb := c.CheckHeartbeat(start.Add(time.Hour), 0); hb != nil {
		t.Error("heartbeat with interval 0 should be disabled")
	}
	if hb := c.CheckHeartbeat(start.Add(time.Hour), -time.Minute); hb != nil {
		t.Error("heartbeat with negative interval should be disabled")
	}
}
