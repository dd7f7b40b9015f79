// Command demo renders a live particle simulation with raylib, for visually
// inspecting solver behavior (spec §6 "supplemented features" — the
// distilled spec never mandates a renderer, but the teacher always ships an
// interactive driver alongside the headless one).
package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/gen2brain/raylib-go/raygui"

	"github.com/pthm-cable/particlecore/config"
	"github.com/pthm-cable/particlecore/geom"
	"github.com/pthm-cable/particlecore/group"
	"github.com/pthm-cable/particlecore/host"
	"github.com/pthm-cable/particlecore/internal/groupset"
	"github.com/pthm-cable/particlecore/particle"
	"github.com/pthm-cable/particlecore/system"
)

// emptyWorld is a host.World with no fixtures: the demo shows a bounded
// particle cloud falling under gravity with no rigid obstacles, since this
// repo has no rigid-body engine of its own to host one (spec §6 "Outbound"
// interfaces are implemented by the surrounding engine, not this core).
type emptyWorld struct {
	gravity geom.Vec2
}

func (w emptyWorld) QueryAABB(cb host.FixtureCallback, aabb geom.AABB) {}
func (w emptyWorld) Gravity() geom.Vec2                                { return w.gravity }

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	particleCount := flag.Int("particles", 400, "Number of particles to seed")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	world := emptyWorld{gravity: geom.Vec2{X: 0, Y: 9.8}}
	sys, err := system.New(cfg, world, logger)
	if err != nil {
		slog.Error("failed to build system", "error", err)
		os.Exit(1)
	}
	defer sys.Close()

	const width, height = 960, 540
	const scale = 40.0 // pixels per simulated meter

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < *particleCount; i++ {
		sys.CreateParticle(particle.Def{
			Position: geom.Vec2{
				X: float32(rng.Float64()*6 - 3),
				Y: float32(rng.Float64() * -4),
			},
			Flags: particle.ElasticFlag,
		})
	}
	sys.CreateParticleGroup(group.Def{Transform: geom.Identity(), GroupFlags: group.Solid},
		func(p geom.Vec2) bool { return true },
		geom.AABB{Lower: geom.Vec2{X: -1, Y: 4}, Upper: geom.Vec2{X: 1, Y: 5}},
		particle.Def{Flags: particle.WallFlag})

	rl.InitWindow(width, height, "particlecore demo")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	// groups mirrors the registry into an ark world once per frame, purely so
	// the overlay below can iterate groups through ark's query API rather
	// than the registry's own Live() slice.
	groups := groupset.New()

	paused := false
	for !rl.WindowShouldClose() {
		if !paused {
			if err := sys.Solve(1.0/60, nil); err != nil {
				slog.Error("solve failed", "error", err)
			}
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		positions := sys.Buffers.Position.Data()
		for _, p := range positions {
			x := int32(width/2 + p.X*scale)
			y := int32(height/2 + p.Y*scale)
			rl.DrawCircle(x, y, 3, rl.SkyBlue)
		}

		groups.Rebuild(sys.Groups)
		groups.Each(func(slot groupset.Slot) {
			first := positions[slot.FirstIndex]
			x := int32(width/2 + first.X*scale)
			y := int32(height/2 + first.Y*scale)
			rl.DrawCircleLines(x, y, 8, rl.Red)
		})

		paused = raygui.CheckBox(rl.NewRectangle(10, 10, 20, 20), "paused", paused)
		rl.DrawText("particlecore demo", 10, 40, 18, rl.DarkGray)
		rl.EndDrawing()
	}
}
