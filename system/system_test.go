package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/particlecore/config"
	"github.com/pthm-cable/particlecore/geom"
	"github.com/pthm-cable/particlecore/group"
	"github.com/pthm-cable/particlecore/host"
	"github.com/pthm-cable/particlecore/particle"
	"github.com/pthm-cable/particlecore/telemetry"
)

type noopWorld struct{}

func (noopWorld) QueryAABB(cb host.FixtureCallback, aabb geom.AABB) {}
func (noopWorld) Gravity() geom.Vec2                                { return geom.Vec2{X: 0, Y: -10} }

func testConfig() *config.Config {
	cfg := &config.Config{
		Buffer:   config.BufferConfig{MinParticleBufferCapacity: 8},
		Particle: config.ParticleConfig{Radius: 0.5, Density: 1, GravityScale: 1},
		Solver: config.SolverConfig{
			PressureStrength: 1, DampingStrength: 1, ViscousStrength: 1, PowderStrength: 1,
			SurfaceTensionA: 0.1, SurfaceTensionB: 0.1, ElasticStrength: 1, SpringStrength: 1,
			EjectionStrength: 1, ColorMixingStrength: 0.5, MaxParticleWeight: 1, MinParticleWeight: 0,
			ParticleStride: 0.5, MaxTriadDistanceMult: 10,
		},
	}
	cfg.Derived.Diameter = cfg.Particle.Radius * 2
	cfg.Derived.InverseDiameter = 1 / cfg.Derived.Diameter
	cfg.Derived.InverseDensity = 1 / cfg.Particle.Density
	cfg.Derived.ParticleInvMass = 1.777777 * cfg.Derived.InverseDensity * cfg.Derived.InverseDiameter * cfg.Derived.InverseDiameter
	return cfg
}

func newTestSystem(t *testing.T) *System {
	sys, err := New(testConfig(), noopWorld{}, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return sys
}

func TestCreateParticleAndSolveOneStep(t *testing.T) {
	sys := newTestSystem(t)

	idx := sys.CreateParticle(particle.Def{Position: geom.Vec2{X: 0, Y: 10}})
	if idx != 0 {
		t.Fatalf("expected first particle at index 0, got %d", idx)
	}

	if err := sys.Solve(1.0/60, nil); err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}

	y := sys.Buffers.Position.Data()[0].Y
	if y >= 10 {
		t.Errorf("expected particle to have fallen under gravity, got y=%f", y)
	}
}

func TestDestroyParticleCompactsOnNextSolve(t *testing.T) {
	sys := newTestSystem(t)
	sys.CreateParticle(particle.Def{Position: geom.Vec2{X: 0}})
	sys.CreateParticle(particle.Def{Position: geom.Vec2{X: 5}})

	sys.DestroyParticle(0)

	var removed []int
	if err := sys.Solve(1.0/60, func(old int) { removed = append(removed, old) }); err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}

	if sys.Buffers.Count() != 1 {
		t.Fatalf("expected 1 surviving particle, got %d", sys.Buffers.Count())
	}
}

func TestCreateParticleGroupFillsShape(t *testing.T) {
	sys := newTestSystem(t)

	def := group.Def{Transform: geom.Identity()}
	bounds := geom.AABB{Lower: geom.Vec2{X: -1, Y: -1}, Upper: geom.Vec2{X: 1, Y: 1}}
	g := sys.CreateParticleGroup(def, func(geom.Vec2) bool { return true }, bounds, particle.Def{})

	if g.Count() == 0 {
		t.Fatalf("expected at least one particle in the filled group")
	}
	if sys.Buffers.Count() != g.Count() {
		t.Errorf("expected buffer count to match group count, got %d vs %d", sys.Buffers.Count(), g.Count())
	}
}

func TestJoinParticleGroupsMergesRanges(t *testing.T) {
	sys := newTestSystem(t)
	def := group.Def{Transform: geom.Identity()}
	small := geom.AABB{Lower: geom.Vec2{X: -0.4, Y: -0.4}, Upper: geom.Vec2{X: 0.4, Y: 0.4}}

	a := sys.CreateParticleGroup(def, func(geom.Vec2) bool { return true }, small, particle.Def{})
	b := sys.CreateParticleGroup(def, func(geom.Vec2) bool { return true }, small, particle.Def{})

	totalBefore := a.Count() + b.Count()
	sys.JoinParticleGroups(a, b)

	if a.Count() != totalBefore {
		t.Errorf("expected merged group to contain %d particles, got %d", totalBefore, a.Count())
	}
	if sys.Groups.Get(b.ID()) != nil {
		t.Errorf("expected group b to be destroyed after join")
	}
}

func TestSolveFlushesTelemetryToCSV(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.OutputDir = t.TempDir()
	cfg.Telemetry.WindowSize = 2
	cfg.Telemetry.TickRate = 1.0 / 60

	sys, err := New(cfg, noopWorld{}, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer sys.Close()

	sys.CreateParticle(particle.Def{Position: geom.Vec2{X: 0, Y: 10}})

	for i := 0; i < 3; i++ {
		if err := sys.Solve(1.0/60, nil); err != nil {
			t.Fatalf("Solve returned error: %v", err)
		}
	}

	if err := sys.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	telemetryPath := filepath.Join(cfg.Telemetry.OutputDir, "telemetry.csv")
	data, err := os.ReadFile(telemetryPath)
	if err != nil {
		t.Fatalf("expected telemetry.csv to exist: %v", err)
	}
	if len(data) == 0 {
		t.Errorf("expected telemetry.csv to contain at least a header row")
	}

	perfPath := filepath.Join(cfg.Telemetry.OutputDir, "perf.csv")
	if _, err := os.Stat(perfPath); err != nil {
		t.Fatalf("expected perf.csv to exist: %v", err)
	}
}

func TestRecordHooksIncrementTelemetryCollector(t *testing.T) {
	sys := newTestSystem(t)

	sys.CreateParticle(particle.Def{Position: geom.Vec2{X: 0}})
	sys.CreateParticle(particle.Def{Position: geom.Vec2{X: 1}})
	sys.DestroyParticle(1)

	def := group.Def{Transform: geom.Identity()}
	small := geom.AABB{Lower: geom.Vec2{X: -0.1, Y: -0.1}, Upper: geom.Vec2{X: 0.1, Y: 0.1}}
	a := sys.CreateParticleGroup(def, func(geom.Vec2) bool { return true }, small, particle.Def{})
	b := sys.CreateParticleGroup(def, func(geom.Vec2) bool { return true }, small, particle.Def{})
	sys.JoinParticleGroups(a, b)

	stats := sys.collector.Flush(1, telemetry.SolveCounts{ParticleCount: sys.Buffers.Count()})
	if stats.ParticlesCreated < 2 {
		t.Errorf("expected at least 2 recorded particle creations, got %d", stats.ParticlesCreated)
	}
	if stats.ParticlesDestroyed != 1 {
		t.Errorf("expected 1 recorded particle destruction, got %d", stats.ParticlesDestroyed)
	}
	if stats.GroupsCreated != 2 {
		t.Errorf("expected 2 recorded group creations, got %d", stats.GroupsCreated)
	}
	if stats.GroupsJoined != 1 {
		t.Errorf("expected 1 recorded group join, got %d", stats.GroupsJoined)
	}
}
