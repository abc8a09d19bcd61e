package logic

// Classify maps a window's edge count to its frequency band. It is a pure
// total function over the uint16 domain: anything outside the two accepted
// ranges, including zero and counter-wraparound values, is BandIdle.
//
// There is deliberately no hysteresis and no multi-window debounce. A count
// oscillating across a boundary flips the band every window; smoothing it
// would delay a genuine ignition command, which is worse than flicker.
func Classify(n uint16) Band {
	switch {
	case n >= IgnitionMin && n <= IgnitionMax:
		return BandIgnition
	case n >= LinkMin && n <= LinkMax:
		return BandLinkOK
	default:
		return BandIdle
	}
}
