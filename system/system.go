// Package system wires the particle core's packages into the single
// top-level type a host world drives: buffer manager, spatial-hash proxies,
// contacts, pairs/triads, the group registry and the per-step solver
// pipeline (spec §4, §6 "ParticleSystem").
package system

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/particlecore/compact"
	"github.com/pthm-cable/particlecore/config"
	"github.com/pthm-cable/particlecore/contact"
	"github.com/pthm-cable/particlecore/geom"
	"github.com/pthm-cable/particlecore/group"
	"github.com/pthm-cable/particlecore/host"
	"github.com/pthm-cable/particlecore/internal/invariant"
	"github.com/pthm-cable/particlecore/internal/simdsum"
	"github.com/pthm-cable/particlecore/pair"
	"github.com/pthm-cable/particlecore/particle"
	"github.com/pthm-cable/particlecore/proxy"
	"github.com/pthm-cable/particlecore/query"
	"github.com/pthm-cable/particlecore/solver"
	"github.com/pthm-cable/particlecore/telemetry"
)

// System is the particle core's top-level type: one per simulated fluid/soft
// body cloud, driven once per tick by Solve (spec §6).
type System struct {
	Buffers *particle.Buffers
	Groups  *group.Registry
	World   host.World
	Cfg     *config.Config
	Log     *slog.Logger

	proxies      []proxy.Proxy
	contacts     []contact.Contact
	bodyContacts []contact.BodyContact
	pairs        []pair.Pair
	triads       []pair.Triad

	timestamp int

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager
}

// New builds a System over a fresh buffer manager and group registry, and
// constructs its telemetry sinks from cfg.Telemetry (spec §6 "supplemented
// features"; grounded on pthm-soup/game's collector/perfCollector/
// outputManager fields, set up once at construction rather than lazily).
func New(cfg *config.Config, world host.World, log *slog.Logger) (*System, error) {
	if log == nil {
		log = slog.Default()
	}
	buf := particle.NewBuffers(cfg.Buffer.MinParticleBufferCapacity, cfg.Buffer.MaxParticleCount)

	output, err := telemetry.NewOutputManager(cfg.Telemetry.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("system: %w", err)
	}
	if output != nil {
		if err := output.WriteConfig(cfg); err != nil {
			return nil, fmt.Errorf("system: %w", err)
		}
	}

	windowTicks := cfg.Telemetry.WindowSize
	if windowTicks < 1 {
		windowTicks = 60
	}
	tickRate := cfg.Telemetry.TickRate
	if tickRate <= 0 {
		tickRate = 1.0 / 60
	}

	return &System{
		Buffers:   buf,
		Groups:    group.NewRegistry(),
		World:     world,
		Cfg:       cfg,
		Log:       log,
		collector: telemetry.NewCollector(float64(windowTicks)*float64(tickRate), tickRate),
		perf:      telemetry.NewPerfCollector(windowTicks),
		output:    output,
	}, nil
}

// PerfStats returns the current rolling-window per-phase timing breakdown
// tracked internally by Solve (spec §6 "supplemented features").
func (s *System) PerfStats() telemetry.PerfStats {
	return s.perf.Stats()
}

// Close releases the telemetry output manager's open files, if any.
func (s *System) Close() error {
	if s.output == nil {
		return nil
	}
	return s.output.Close()
}

// CreateParticle appends one particle and a matching proxy, returning its
// dense index or particle.InvalidIndex if capacity is exhausted (spec §6
// CreateParticle).
func (s *System) CreateParticle(def particle.Def) int {
	idx := s.Buffers.Append(def)
	if idx == particle.InvalidIndex {
		s.Log.Warn("particle buffer exhausted", "requested_flags", def.Flags)
		return idx
	}
	s.proxies = append(s.proxies, proxy.Proxy{Index: idx})
	s.collector.RecordParticleCreated()
	return idx
}

// DestroyParticle flags a particle zombie; it is physically removed at the
// next Solve's compaction pass (spec §6 DestroyParticle).
func (s *System) DestroyParticle(index int) {
	flags := s.Buffers.Flags.Data()
	flags[index] |= particle.Zombie
	s.collector.RecordParticleDestroyed()
}

// DestroyParticlesInShape flags every particle inside test as zombie and
// returns how many were newly flagged (spec §6 DestroyParticlesInShape).
func (s *System) DestroyParticlesInShape(test func(p geom.Vec2) bool) int {
	flags := s.Buffers.Flags.Data()
	positions := s.Buffers.Position.Data()
	n := 0
	for i, p := range positions {
		if flags[i]&particle.Zombie != 0 {
			continue
		}
		if test(p) {
			flags[i] |= particle.Zombie
			n++
			s.collector.RecordParticleDestroyed()
		}
	}
	return n
}

// CreateParticleGroup fills shapeTest's bounding region with a regular grid
// of particles at the configured diameter stride, registers a new group
// over the resulting range, and builds its internal pairs/triads (spec §6
// CreateParticleGroup, §4.D).
func (s *System) CreateParticleGroup(def group.Def, shapeTest func(p geom.Vec2) bool, bounds geom.AABB, templateDef particle.Def) *group.Group {
	diameter := s.Cfg.Derived.Diameter
	first := s.Buffers.Count()

	for y := bounds.Lower.Y; y <= bounds.Upper.Y; y += diameter {
		for x := bounds.Lower.X; x <= bounds.Upper.X; x += diameter {
			local := geom.Vec2{X: x, Y: y}
			if !shapeTest(local) {
				continue
			}
			world := def.Transform.Mul(local)
			pdef := templateDef
			pdef.Position = world
			if s.CreateParticle(pdef) == particle.InvalidIndex {
				break
			}
		}
	}

	last := s.Buffers.Count()
	g := s.Groups.Create(def, first, last)

	groupRef := s.Buffers.GroupRef.Data()
	for i := first; i < last; i++ {
		groupRef[i] = g.ID()
	}

	s.refreshContacts()
	s.rebuildPairsAndTriads(g.FirstIndex, g.LastIndex, g.Strength)
	s.collector.RecordGroupCreated()
	return g
}

// refreshContacts re-detects particle-particle contacts over the whole
// buffer so a freshly created or joined group's pairs/triads are built from
// contacts that actually include its newly appended particles, rather than
// the prior step's stale s.contacts (spec §4.D "On join"; ParticleSystem.
// java calls updateContacts(true) at both sites for the same reason).
func (s *System) refreshContacts() {
	s.contacts = contact.UpdateContacts(s.proxies, s.Buffers.Position.Data(), s.Buffers.Flags.Data(), s.Cfg.Derived.Diameter, s.Cfg.Derived.InverseDiameter, true)
}

// JoinParticleGroups merges b's range into a's by rotating the particle
// buffer so the two ranges become contiguous, unions their flags, and
// rebuilds pairs/triads across the new boundary (spec §4.D "On join",
// §4.F rotateBuffer).
func (s *System) JoinParticleGroups(a, b *group.Group) {
	invariant.Check(a != b, "system: JoinParticleGroups(a, a)")
	if a.LastIndex != b.FirstIndex {
		s.rotateBuffer(a.LastIndex, b.FirstIndex, b.LastIndex)
		shift := b.LastIndex - b.FirstIndex
		b.FirstIndex = a.LastIndex
		b.LastIndex = a.LastIndex + shift
	}

	boundary := b.FirstIndex
	a.GroupFlags |= b.GroupFlags
	a.LastIndex = b.LastIndex
	strength := minf(a.Strength, b.Strength)
	a.Strength = strength

	groupRef := s.Buffers.GroupRef.Data()
	for i := boundary; i < b.LastIndex; i++ {
		groupRef[i] = a.ID()
	}
	s.Groups.Destroy(b)

	s.refreshContacts()
	positions := s.Buffers.Position.Data()
	flags := s.Buffers.Flags.Data()
	s.pairs = pair.BuildPairsAcrossBoundary(s.pairs, s.contacts, positions, strength, a.FirstIndex, a.LastIndex, boundary)
	s.triads = pair.BuildTriadsAcrossBoundary(s.triads, positions, flags, strength, a.FirstIndex, a.LastIndex, boundary, s.Cfg.Derived.Diameter, s.Cfg.Solver.MaxTriadDistanceMult)
	s.collector.RecordGroupJoined()
}

// rotateBuffer applies group.RotateIndex to every particle column and every
// group's range so that [mid,end) moves immediately after start (spec §4.F).
func (s *System) rotateBuffer(start, mid, end int) {
	remap := func(i int) int { return group.RotateIndex(start, mid, end, i) }

	rotateColumn(s.Buffers.Flags.Data(), start, mid, end)
	rotateColumn(s.Buffers.Position.Data(), start, mid, end)
	rotateColumn(s.Buffers.Velocity.Data(), start, mid, end)
	rotateColumn(s.Buffers.GroupRef.Data(), start, mid, end)
	if s.Buffers.Color != nil {
		rotateColumn(s.Buffers.Color.Data(), start, mid, end)
	}
	if s.Buffers.UserData != nil {
		rotateColumn(s.Buffers.UserData.Data(), start, mid, end)
	}
	if s.Buffers.Depth != nil {
		rotateColumn(s.Buffers.Depth.Data(), start, mid, end)
	}

	for i := range s.proxies {
		s.proxies[i].Index = remap(s.proxies[i].Index)
	}
	for i := range s.contacts {
		s.contacts[i].IndexA = remap(s.contacts[i].IndexA)
		s.contacts[i].IndexB = remap(s.contacts[i].IndexB)
	}
	for i := range s.bodyContacts {
		s.bodyContacts[i].Index = remap(s.bodyContacts[i].Index)
	}
	for i := range s.pairs {
		s.pairs[i].IndexA = remap(s.pairs[i].IndexA)
		s.pairs[i].IndexB = remap(s.pairs[i].IndexB)
	}
	for i := range s.triads {
		s.triads[i].IndexA = remap(s.triads[i].IndexA)
		s.triads[i].IndexB = remap(s.triads[i].IndexB)
		s.triads[i].IndexC = remap(s.triads[i].IndexC)
	}
	s.Groups.RemapRanges(remap)
}

// rotateColumn performs the classic three-reversal in-place rotation of
// [start,end) so [mid,end) comes first, generically over any slice type.
func rotateColumn[T any](data []T, start, mid, end int) {
	reverse(data[start:mid])
	reverse(data[mid:end])
	reverse(data[start:end])
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// DestroyParticleGroup flags every member particle zombie and removes g from
// the registry immediately (spec §6 DestroyParticleGroup).
func (s *System) DestroyParticleGroup(g *group.Group) {
	invariant.Check(g != nil, "system: DestroyParticleGroup(nil)")
	flags := s.Buffers.Flags.Data()
	for i := g.FirstIndex; i < g.LastIndex; i++ {
		flags[i] |= particle.Zombie
		s.collector.RecordParticleDestroyed()
	}
	s.Groups.Destroy(g)
	s.collector.RecordGroupDestroyed()
}

// rebuildPairsAndTriads seeds new pairs/triads with the owning group's own
// Strength (spec §3/§6 groupDef.strength), not the global solver constant —
// SolveSpring/SolveElastic already multiply by the global strength
// themselves (spec §4.G), so using it again here would make the effective
// force proportional to strength squared instead of strength*group.Strength
// (ParticleSystem.java:914,923).
func (s *System) rebuildPairsAndTriads(first, last int, strength float32) {
	positions := s.Buffers.Position.Data()
	flags := s.Buffers.Flags.Data()
	s.pairs = pair.BuildPairs(s.pairs, s.contacts, positions, strength, first, last)
	s.triads = pair.BuildTriads(s.triads, positions, flags, strength, first, last, s.Cfg.Derived.Diameter, s.Cfg.Solver.MaxTriadDistanceMult)
}

// QueryAABB visits every live particle index within aabb (spec §4.I).
func (s *System) QueryAABB(aabb geom.AABB, cb query.Callback) {
	query.QueryAABB(s.proxies, s.Buffers.Position.Data(), aabb, s.Cfg.Derived.InverseDiameter, cb)
}

// RayCast visits every live particle whose disc intersects p1->p2 (spec
// §4.I).
func (s *System) RayCast(p1, p2 geom.Vec2, cb func(index int, fraction float32, point, normal geom.Vec2) float32) {
	query.RayCast(s.proxies, s.Buffers.Position.Data(), p1, p2, s.Cfg.Derived.Diameter, s.Cfg.Derived.InverseDiameter, cb)
}

// ComputeParticleCollisionEnergy sums ½·m·(v·n)² over every damped contact,
// a diagnostic not exposed by the distilled spec but present in the
// original's computeParticleCollisionEnergy (SPEC_FULL.md "supplemented
// features").
func (s *System) ComputeParticleCollisionEnergy() float32 {
	velocities := s.Buffers.Velocity.Data()
	terms := make([]float32, 0, len(s.contacts))
	for _, c := range s.contacts {
		vn := geom.Dot(velocities[c.IndexB].Sub(velocities[c.IndexA]), c.Normal)
		if vn < 0 {
			terms = append(terms, vn*vn)
		}
	}
	return 0.5 / s.Cfg.Derived.ParticleInvMass * simdsum.Sum(terms)
}

func (s *System) nextTimestamp() int {
	s.timestamp++
	return s.timestamp
}

// Solve advances the simulation by one fixed step. Zombie compaction runs
// first (spec §4.G step 2, §4.H) so that every subsequent stage — flag
// aggregation, gravity, collision, position integration, contact rebuild,
// and the force solvers — operates on post-compaction state, matching
// ParticleSystem.java's solve() calling solveZombie() before anything else.
// The remaining ten stages then run in order from spec §4.G.
func (s *System) Solve(dt float32, onZombieRemoved func(oldIndex int)) error {
	if dt <= 0 {
		return fmt.Errorf("system: Solve called with non-positive dt %f", dt)
	}
	step := solver.Step{Dt: dt, InvDt: 1 / dt}
	cfg := s.Cfg

	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhaseCompaction)
	if s.Buffers.AllFlags().Any(particle.Zombie) {
		res := compact.Compact(s.Buffers, s.Groups, s.proxies, s.contacts, s.bodyContacts, s.pairs, s.triads, func(i int) {
			if onZombieRemoved != nil {
				onZombieRemoved(i)
			}
		})
		s.proxies = res.Proxies
		s.contacts = res.Contacts
		s.bodyContacts = res.BodyContacts
		s.pairs = res.Pairs
		s.triads = res.Triads
		if res.GroupsDestroyed > 0 {
			s.Log.Debug("groups destroyed by compaction", "count", res.GroupsDestroyed)
		}
	}

	positions := s.Buffers.Position.Data()
	velocities := s.Buffers.Velocity.Data()
	flags := s.Buffers.Flags.Data()
	groupRef := s.Buffers.GroupRef.Data()

	allFlags := s.Buffers.AllFlags() | particle.Flags(s.Groups.AllGroupFlags())

	s.perf.StartPhase(telemetry.PhaseGravity)
	solver.IntegrateGravity(velocities, step, s.World.Gravity(), cfg.Particle.GravityScale, cfg.Derived.Diameter)

	s.perf.StartPhase(telemetry.PhaseCollision)
	solver.SolveCollision(step, s.World, positions, velocities, flags, cfg.Derived.ParticleInvMass)

	s.perf.StartPhase(telemetry.PhaseRigid)
	timestamp := s.nextTimestamp()
	solver.SolveRigid(step, positions, velocities, s.Groups, cfg.Derived.ParticleInvMass, timestamp)

	s.perf.StartPhase(telemetry.PhaseIntegrate)
	solver.SolveWall(velocities, flags)
	solver.IntegratePositions(positions, velocities, step.Dt)

	s.perf.StartPhase(telemetry.PhaseBodyContacts)
	s.bodyContacts = contact.UpdateBodyContacts(func(cb host.FixtureCallback, aabb geom.AABB) {
		s.World.QueryAABB(cb, aabb)
	}, s.proxies, positions, flags, cfg.Derived.Diameter, cfg.Derived.InverseDiameter, cfg.Derived.ParticleInvMass)

	s.perf.StartPhase(telemetry.PhaseContacts)
	s.contacts = contact.UpdateContacts(s.proxies, positions, flags, cfg.Derived.Diameter, cfg.Derived.InverseDiameter, false)

	s.perf.StartPhase(telemetry.PhaseForces)
	if allFlags.Any(particle.ViscousFlag) {
		solver.SolveViscous(positions, velocities, flags, s.contacts, s.bodyContacts, cfg.Solver.ViscousStrength, cfg.Derived.ParticleInvMass)
	}
	if allFlags.Any(particle.PowderFlag) {
		solver.SolvePowder(step, positions, velocities, flags, s.contacts, s.bodyContacts, cfg.Solver, cfg.Derived.Diameter, cfg.Derived.ParticleInvMass)
	}
	if allFlags.Any(particle.TensileFlag) {
		solver.SolveTensile(step, velocities, s.contacts, cfg.Solver, cfg.Derived.Diameter)
	}
	if allFlags.Any(particle.ElasticFlag) {
		solver.SolveElastic(step, positions, velocities, s.triads, cfg.Solver.ElasticStrength)
	}
	if allFlags.Any(particle.SpringFlag) {
		solver.SolveSpring(step, positions, velocities, s.pairs, cfg.Solver.SpringStrength)
	}
	if hasSolidGroup(s.Groups) {
		depth := s.Buffers.RequireDepth().Data()
		solver.ComputeDepth(s.contacts, s.Groups, groupRef, depth, cfg.Derived.Diameter)
		solver.SolveSolid(step, velocities, s.contacts, groupRef, depth, cfg.Solver.EjectionStrength)
	}
	if allFlags.Any(particle.ColorMixingFlag) {
		solver.SolveColorMixing(s.contacts, flags, s.Buffers.RequireColor().Data(), cfg.Solver.ColorMixingStrength)
	}

	s.perf.StartPhase(telemetry.PhasePressureDamp)
	solver.SolvePressure(step, positions, velocities, flags, s.contacts, s.bodyContacts, cfg.Solver, cfg.Particle.Density, cfg.Derived.ParticleInvMass, cfg.Derived.Diameter)
	solver.SolveDamping(step, positions, velocities, s.contacts, s.bodyContacts, cfg.Solver.DampingStrength, cfg.Derived.ParticleInvMass)

	s.perf.EndTick()
	s.flushTelemetry()

	return nil
}

// flushTelemetry checks whether the stats/perf window has elapsed and, if
// so, logs and (when an output directory is configured) writes the window's
// WindowStats/PerfStats to CSV (spec §6 "supplemented features"; grounded on
// pthm-soup/game/telemetry_hooks.go's flushTelemetry).
func (s *System) flushTelemetry() {
	currentTick := int32(s.timestamp)
	if !s.collector.ShouldFlush(currentTick) {
		return
	}

	counts := telemetry.SolveCounts{
		ParticleCount:    s.Buffers.Count(),
		LiveGroupCount:   len(s.Groups.Live()),
		ProxyCount:       len(s.proxies),
		ContactCount:     len(s.contacts),
		BodyContactCount: len(s.bodyContacts),
		PairCount:        len(s.pairs),
		TriadCount:       len(s.triads),
		CollisionEnergy:  s.ComputeParticleCollisionEnergy(),
	}
	stats := s.collector.Flush(currentTick, counts)
	perfStats := s.perf.Stats()

	stats.LogStats()
	perfStats.LogStats()

	if s.output == nil {
		return
	}
	if err := s.output.WriteTelemetry(stats); err != nil {
		s.Log.Error("failed to write telemetry", "error", err)
	}
	if err := s.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		s.Log.Error("failed to write perf", "error", err)
	}
}

// Snapshot captures the full particle and group state for later replay or
// debugging (SPEC_FULL.md "supplemented features").
func (s *System) Snapshot(tick int32) *telemetry.Snapshot {
	positions := s.Buffers.Position.Data()
	velocities := s.Buffers.Velocity.Data()
	flags := s.Buffers.Flags.Data()
	groupRef := s.Buffers.GroupRef.Data()

	snap := &telemetry.Snapshot{
		Version:   telemetry.SnapshotVersion,
		Tick:      tick,
		Particles: make([]telemetry.ParticleState, len(positions)),
	}
	for i := range positions {
		ps := telemetry.ParticleState{
			Index: i, Flags: uint32(flags[i]),
			X: positions[i].X, Y: positions[i].Y,
			VelX: velocities[i].X, VelY: velocities[i].Y,
			GroupID: groupRef[i],
		}
		if s.Buffers.Color != nil {
			c := s.Buffers.Color.Data()[i]
			ps.ColorR, ps.ColorG, ps.ColorB, ps.ColorA = c.R, c.G, c.B, c.A
		}
		snap.Particles[i] = ps
	}
	for _, g := range s.Groups.Live() {
		snap.Groups = append(snap.Groups, telemetry.GroupState{
			ID: g.ID(), FirstIndex: g.FirstIndex, LastIndex: g.LastIndex,
			GroupFlags: uint32(g.GroupFlags), Strength: g.Strength,
			DestroyAutomatically: g.DestroyAutomatically,
		})
	}
	return snap
}

func hasSolidGroup(groups *group.Registry) bool {
	for _, g := range groups.Live() {
		if g.GroupFlags&group.Solid != 0 {
			return true
		}
	}
	return false
}
