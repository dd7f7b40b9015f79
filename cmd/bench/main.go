// Command bench runs a headless particle simulation for a fixed number of
// ticks and reports per-phase timing, for profiling solver changes without a
// renderer attached (spec §6 "supplemented features"; teacher pattern:
// pthm-soup/cmd/optimize runs headless evaluation loops the same way).
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/pthm-cable/particlecore/config"
	"github.com/pthm-cable/particlecore/geom"
	"github.com/pthm-cable/particlecore/group"
	"github.com/pthm-cable/particlecore/host"
	"github.com/pthm-cable/particlecore/internal/groupset"
	"github.com/pthm-cable/particlecore/particle"
	"github.com/pthm-cable/particlecore/system"
)

type emptyWorld struct{ gravity geom.Vec2 }

func (w emptyWorld) QueryAABB(cb host.FixtureCallback, aabb geom.AABB) {}
func (w emptyWorld) Gravity() geom.Vec2                                { return w.gravity }

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	particleCount := flag.Int("particles", 2000, "Number of particles to seed")
	ticks := flag.Int("ticks", 600, "Number of solve ticks to run")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// the perf window covers the whole run, so the avg_tick reported below
	// is an average over every tick rather than just the trailing window.
	cfg.Telemetry.WindowSize = *ticks

	world := emptyWorld{gravity: geom.Vec2{X: 0, Y: 9.8}}
	sys, err := system.New(cfg, world, logger)
	if err != nil {
		slog.Error("failed to build system", "error", err)
		os.Exit(1)
	}
	defer sys.Close()

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < *particleCount; i++ {
		sys.CreateParticle(particle.Def{
			Position: geom.Vec2{X: float32(rng.Float64()*10 - 5), Y: float32(rng.Float64() * -8)},
			Flags:    particle.ElasticFlag,
		})
	}
	sys.CreateParticleGroup(group.Def{Transform: geom.Identity(), GroupFlags: group.Rigid},
		func(p geom.Vec2) bool { return true },
		geom.AABB{Lower: geom.Vec2{X: -2, Y: -8}, Upper: geom.Vec2{X: 2, Y: -6}},
		particle.Def{})

	// groups is rebuilt every tick purely to exercise the ark-backed query
	// surface alongside the hot loop, the same way the demo overlay does.
	groups := groupset.New()

	for i := 0; i < *ticks; i++ {
		if err := sys.Solve(1.0/60, nil); err != nil {
			slog.Error("solve failed", "error", err)
			os.Exit(1)
		}

		groups.Rebuild(sys.Groups)
		liveGroups := 0
		groups.Each(func(groupset.Slot) { liveGroups++ })
		if i%100 == 0 {
			slog.Debug("tick", "i", i, "live_groups", liveGroups, "particles", sys.Buffers.Count())
		}
	}

	stats := sys.PerfStats()
	fmt.Printf("ticks=%d avg_tick=%s energy=%.6f\n", *ticks, stats.AvgTickDuration, sys.ComputeParticleCollisionEnergy())
}
