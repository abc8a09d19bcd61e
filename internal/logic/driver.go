package logic

// Drive maps a band to the three output lines.
//
// priorLinkLED is the link LED value from the previous cycle; in the
// LINK_OK band the LED toggles each cycle (a heartbeat — constantly on
// would only prove the board is powered). nextLinkLED must be fed back
// into the next call.
//
// The MOS gate is ON if and only if band is BandIgnition. Every other
// branch de-asserts it: a missing or unrecognized signal fails safe to
// off, and the gate never carries state between cycles.
func Drive(band Band, priorLinkLED bool) (out Outputs, nextLinkLED bool) {
	switch band {
	case BandIgnition:
		out = Outputs{IgnitionLED: true, LinkLED: false, MOSGate: true}
	case BandLinkOK:
		out = Outputs{IgnitionLED: false, LinkLED: !priorLinkLED, MOSGate: false}
	default:
		// Idle: link LED constantly on means powered and waiting.
		out = Outputs{IgnitionLED: false, LinkLED: true, MOSGate: false}
	}
	return out, out.LinkLED
}
