// Command tune searches solver strength constants that minimize residual
// particle collision energy after a fixed number of settling steps, using
// gonum/optimize's Nelder-Mead implementation (spec §6 "supplemented
// features" — an offline tunable search, grounded on the teacher pack's use
// of gonum for parameter search problems).
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/particlecore/config"
	"github.com/pthm-cable/particlecore/geom"
	"github.com/pthm-cable/particlecore/host"
	"github.com/pthm-cable/particlecore/particle"
	"github.com/pthm-cable/particlecore/system"
)

type stillWorld struct{}

func (stillWorld) QueryAABB(cb host.FixtureCallback, aabb geom.AABB) {}
func (stillWorld) Gravity() geom.Vec2                                { return geom.Vec2{} }

// settle builds a small damped cluster and returns its residual collision
// energy after steps ticks, for a given damping/pressure strength pair.
func settle(dampingStrength, pressureStrength float32, steps int) float32 {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}
	cfg.Solver.DampingStrength = dampingStrength
	cfg.Solver.PressureStrength = pressureStrength

	sys, err := system.New(cfg, stillWorld{}, slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	if err != nil {
		panic(err)
	}
	defer sys.Close()
	for _, p := range []geom.Vec2{{X: 0, Y: 0}, {X: 0.3, Y: 0}, {X: 0, Y: 0.3}, {X: 0.3, Y: 0.3}} {
		sys.CreateParticle(particle.Def{Position: p, Velocity: geom.Vec2{X: 1, Y: 0}})
	}
	for i := 0; i < steps; i++ {
		if err := sys.Solve(1.0/60, nil); err != nil {
			panic(err)
		}
	}
	return sys.ComputeParticleCollisionEnergy()
}

func main() {
	steps := flag.Int("steps", 30, "number of settle steps to simulate per evaluation")
	flag.Parse()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return float64(settle(float32(x[0]), float32(x[1]), *steps))
		},
	}

	result, err := optimize.Minimize(problem, []float64{0.2, 0.2}, nil, &optimize.NelderMead{})
	if err != nil {
		slog.Error("tuning failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("best damping_strength=%.4f pressure_strength=%.4f collision_energy=%.6f\n",
		result.X[0], result.X[1], result.F)
}
