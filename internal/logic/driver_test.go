package logic

import "testing"

func TestDriveIgnition(t *testing.T) {
	for _, prior := range []bool{false, true} {
		out, next := Drive(BandIgnition, prior)
		if !out.IgnitionLED {
			t.Errorf("prior=%v: ignition LED off, want on", prior)
		}
		if out.LinkLED {
			t.Errorf("prior=%v: link LED on, want off", prior)
		}
		if !out.MOSGate {
			t.Errorf("prior=%v: MOS gate off, want on", prior)
		}
		if next {
			t.Errorf("prior=%v: nextLinkLED=true, want false", prior)
		}
	}
}

func TestDriveIdle(t *testing.T) {
	for _, prior := range []bool{false, true} {
		out, next := Drive(BandIdle, prior)
		if out.IgnitionLED {
			t.Errorf("prior=%v: ignition LED on, want off", prior)
		}
		if !out.LinkLED {
			t.Errorf("prior=%v: link LED off, want on (powered-and-waiting)", prior)
		}
		if out.MOSGate {
			t.Errorf("prior=%v: MOS gate on, want off", prior)
		}
		if !next {
			t.Errorf("prior=%v: nextLinkLED=false, want true", prior)
		}
	}
}

func TestDriveLinkToggles(t *testing.T) {
	out, next := Drive(BandLinkOK, false)
	if out.IgnitionLED || out.MOSGate {
		t.Error("LINK_OK must keep ignition LED and MOS gate off")
	}
	if !out.LinkLED || !next {
		t.Error("link LED should toggle from false to true")
	}

	out, next = Drive(BandLinkOK, true)
	if out.LinkLED || next {
		t.Error("link LED should toggle from true to false")
	}
}

// TestDriveHeartbeatSequence feeds nextLinkLED back across consecutive
// LINK_OK cycles: starting from false the LED must alternate
// true, false, true, false, ...
func TestDriveHeartbeatSequence(t *testing.T) {
	prior := false
	for i := 0; i < 8; i++ {
		out, next := Drive(BandLinkOK, prior)
		want := i%2 == 0
		if out.LinkLED != want {
			t.Fatalf("cycle %d: link LED = %v, want %v", i, out.LinkLED, want)
		}
		prior = next
	}
}

// TestDriveMOSGateNeverSticky verifies the gate is a pure function of the
// current band regardless of any prior state.
func TestDriveMOSGateNeverSticky(t *testing.T) {
	for _, prior := range []bool{false, true} {
		if out, _ := Drive(BandIgnition, prior); !out.MOSGate {
			t.Error("IGNITION must assert MOS gate")
		}
		if out, _ := Drive(BandLinkOK, prior); out.MOSGate {
			t.Error("LINK_OK must de-assert MOS gate")
		}
		if out, _ := Drive(BandIdle, prior); out.MOSGate {
			t.Error("IDLE must de-assert MOS gate")
		}
	}
}
