package logic

import "time"

// Controller sequences classification and output mapping across cycles.
// It owns the only two pieces of cross-cycle state in the core: the link
// LED toggle bit and the previous band (used to flag transitions for
// telemetry — the outputs themselves never depend on it).
type Controller struct {
	linkLED       bool
	prevBand      Band
	haveBand      bool
	cycleCounts   CycleCounts
	startTime     time.Time
	lastHeartbeat time.Time
}

// NewController creates a Controller. The startTime is used for calculating
// uptime in heartbeat events.
func NewController(startTime time.Time) *Controller {
	return &Controller{
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Step processes one closed window's count: classify, derive outputs,
// update the toggle bit and cycle counts. The returned Cycle carries
// everything the caller needs to drive hardware and telemetry.
func (c *Controller) Step(count uint16, now time.Time) Cycle {
	band := Classify(count)

	out, next := Drive(band, c.linkLED)
	c.linkLED = next

	switch band {
	case BandIgnition:
		c.cycleCounts.Ignition++
	case BandLinkOK:
		c.cycleCounts.LinkOK++
	default:
		c.cycleCounts.Idle++
	}

	changed := !c.haveBand || band != c.prevBand
	c.prevBand = band
	c.haveBand = true

	return Cycle{
		Timestamp:   now,
		Count:       count,
		Band:        band,
		Outputs:     out,
		BandChanged: changed,
	}
}

// CurrentBand returns the band of the most recent cycle, or BandIdle if no
// cycle has completed yet (the fail-safe default).
func (c *Controller) CurrentBand() Band {
	if !c.haveBand {
		return BandIdle
	}
	return c.prevBand
}

// Counts returns a snapshot of the per-band cycle counts.
func (c *Controller) Counts() CycleCounts {
	return c.cycleCounts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since
// the last heartbeat (or startup). Returns nil if the interval has not
// elapsed or if interval is <= 0 (disabled).
func (c *Controller) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(c.lastHeartbeat) < interval {
		return nil
	}

	c.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(c.startTime),
		Counts:    c.cycleCounts,
	}
}
