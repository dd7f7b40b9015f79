package telemetry

import "log/slog"

// WindowStats holds aggregated particle-system statistics for a time window
// (spec §6 "supplemented features" — structured output was not named by the
// distilled spec but every ambient concern the teacher carries is kept).
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	ParticleCount  int `csv:"particles"`
	LiveGroupCount int `csv:"groups"`

	ParticlesCreated   int `csv:"particles_created"`
	ParticlesDestroyed int `csv:"particles_destroyed"`
	GroupsCreated      int `csv:"groups_created"`
	GroupsDestroyed    int `csv:"groups_destroyed"`
	GroupsJoined       int `csv:"groups_joined"`

	ProxyCount       int `csv:"proxies"`
	ContactCount     int `csv:"contacts"`
	BodyContactCount int `csv:"body_contacts"`
	PairCount        int `csv:"pairs"`
	TriadCount       int `csv:"triads"`

	CollisionEnergy float32 `csv:"collision_energy"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.ParticleCount),
		slog.Int("groups", s.LiveGroupCount),
		slog.Int("particles_created", s.ParticlesCreated),
		slog.Int("particles_destroyed", s.ParticlesDestroyed),
		slog.Int("groups_created", s.GroupsCreated),
		slog.Int("groups_destroyed", s.GroupsDestroyed),
		slog.Int("groups_joined", s.GroupsJoined),
		slog.Int("proxies", s.ProxyCount),
		slog.Int("contacts", s.ContactCount),
		slog.Int("body_contacts", s.BodyContactCount),
		slog.Int("pairs", s.PairCount),
		slog.Int("triads", s.TriadCount),
		slog.Float64("collision_energy", float64(s.CollisionEnergy)),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"particles", s.ParticleCount,
		"groups", s.LiveGroupCount,
		"particles_created", s.ParticlesCreated,
		"particles_destroyed", s.ParticlesDestroyed,
		"groups_created", s.GroupsCreated,
		"groups_destroyed", s.GroupsDestroyed,
		"groups_joined", s.GroupsJoined,
		"proxies", s.ProxyCount,
		"contacts", s.ContactCount,
		"body_contacts", s.BodyContactCount,
		"pairs", s.PairCount,
		"triads", s.TriadCount,
		"collision_energy", s.CollisionEnergy,
	)
}
