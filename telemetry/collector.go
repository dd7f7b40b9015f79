package telemetry

// Collector accumulates per-step particle system events within a time
// window and produces WindowStats, mirroring the teacher's windowed
// bite/birth/death accumulation but over particles, contacts and groups.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	windowStartTick int32

	particlesCreated   int
	particlesDestroyed int
	groupsCreated      int
	groupsDestroyed    int
	groupsJoined       int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordParticleCreated records a particle creation.
func (c *Collector) RecordParticleCreated() { c.particlesCreated++ }

// RecordParticleDestroyed records a particle destruction.
func (c *Collector) RecordParticleDestroyed() { c.particlesDestroyed++ }

// RecordGroupCreated records a group creation.
func (c *Collector) RecordGroupCreated() { c.groupsCreated++ }

// RecordGroupDestroyed records a group destruction.
func (c *Collector) RecordGroupDestroyed() { c.groupsDestroyed++ }

// RecordGroupJoined records two groups being merged.
func (c *Collector) RecordGroupJoined() { c.groupsJoined++ }

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// SolveCounts holds per-step structure counts, sampled at window end
// (spec §3: proxies, contacts, pairs and triads are all transient).
type SolveCounts struct {
	ParticleCount    int
	LiveGroupCount   int
	ProxyCount       int
	ContactCount     int
	BodyContactCount int
	PairCount        int
	TriadCount       int
	CollisionEnergy  float32
}

// Flush produces a WindowStats snapshot and resets the event counters for
// the next window.
func (c *Collector) Flush(currentTick int32, counts SolveCounts) WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		ParticleCount:  counts.ParticleCount,
		LiveGroupCount: counts.LiveGroupCount,

		ParticlesCreated:   c.particlesCreated,
		ParticlesDestroyed: c.particlesDestroyed,
		GroupsCreated:      c.groupsCreated,
		GroupsDestroyed:    c.groupsDestroyed,
		GroupsJoined:       c.groupsJoined,

		ProxyCount:       counts.ProxyCount,
		ContactCount:      counts.ContactCount,
		BodyContactCount:  counts.BodyContactCount,
		PairCount:         counts.PairCount,
		TriadCount:        counts.TriadCount,
		CollisionEnergy:   counts.CollisionEnergy,
	}

	c.windowStartTick = currentTick
	c.particlesCreated = 0
	c.particlesDestroyed = 0
	c.groupsCreated = 0
	c.groupsDestroyed = 0
	c.groupsJoined = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
