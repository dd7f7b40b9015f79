package solver

import (
	"testing"

	"github.com/pthm-cable/particlecore/config"
	"github.com/pthm-cable/particlecore/contact"
	"github.com/pthm-cable/particlecore/geom"
	"github.com/pthm-cable/particlecore/pair"
	"github.com/pthm-cable/particlecore/particle"
)

// TestSolvePressureAppliesBothAxes is a regression test for spec §9 Open
// Question #1: the original applies the body-contact impulse to velData.x
// twice; this port must move velocity on both axes when the contact normal
// has a nonzero y component.
func TestSolvePressureAppliesBothAxes(t *testing.T) {
	positions := []geom.Vec2{{X: 0, Y: 0}}
	velocities := []geom.Vec2{{X: 0, Y: 0}}
	flags := []particle.Flags{0}

	body := &fakeBody{mass: 1, inertia: 1}
	bodyContacts := []contact.BodyContact{
		{Index: 0, Body: body, Weight: 0.5, Normal: geom.Vec2{X: 0, Y: 1}, Mass: 1},
	}

	step := Step{Dt: 1.0 / 60, InvDt: 60}
	cfg := config.SolverConfig{PressureStrength: 1, MaxParticleWeight: 1, MinParticleWeight: 0}

	SolvePressure(step, positions, velocities, flags, nil, bodyContacts, cfg, 1, 1, 1)

	if velocities[0].Y == 0 {
		t.Fatalf("expected nonzero Y velocity from a contact normal with a Y component, got %+v", velocities[0])
	}
}

func TestIntegrateGravityClampsToCriticalVelocity(t *testing.T) {
	velocities := []geom.Vec2{{X: 1000, Y: 0}}
	step := Step{Dt: 1.0 / 60, InvDt: 60}
	IntegrateGravity(velocities, step, geom.Vec2{}, 1, 1)

	critical := CriticalVelocity(step, 1)
	got := velocities[0].Length()
	if got > critical+1e-3 {
		t.Fatalf("expected speed clamped to %f, got %f", critical, got)
	}
}

func TestSolveWallZeroesOnlyWallParticles(t *testing.T) {
	velocities := []geom.Vec2{{X: 1, Y: 1}, {X: 2, Y: 2}}
	flags := []particle.Flags{particle.WallFlag, 0}
	SolveWall(velocities, flags)

	if velocities[0] != (geom.Vec2{}) {
		t.Errorf("expected wall particle velocity zeroed, got %+v", velocities[0])
	}
	if velocities[1] == (geom.Vec2{}) {
		t.Errorf("non-wall particle velocity should be untouched")
	}
}

func TestSolveSpringPullsTowardRestLength(t *testing.T) {
	positions := []geom.Vec2{{X: 0}, {X: 2}}
	velocities := []geom.Vec2{{}, {}}
	pairs := []pair.Pair{{IndexA: 0, IndexB: 1, Strength: 1, Distance: 1}}

	step := Step{Dt: 1.0 / 60, InvDt: 60}
	SolveSpring(step, positions, velocities, pairs, 1)

	// stretched beyond rest length: A should be pulled toward B, B toward A.
	if velocities[0].X <= 0 {
		t.Errorf("expected particle A pulled in +X toward B, got %+v", velocities[0])
	}
	if velocities[1].X >= 0 {
		t.Errorf("expected particle B pulled in -X toward A, got %+v", velocities[1])
	}
}

type fakeBody struct {
	mass, inertia float32
	impulses      []geom.Vec2
}

func (b *fakeBody) GetWorldCenter() geom.Vec2                  { return geom.Vec2{} }
func (b *fakeBody) GetMass() float32                           { return b.mass }
func (b *fakeBody) GetInertia() float32                        { return b.inertia }
func (b *fakeBody) GetLocalCenter() geom.Vec2                  { return geom.Vec2{} }
func (b *fakeBody) GetLinearVelocityFromWorldPoint(geom.Vec2) geom.Vec2 { return geom.Vec2{} }
func (b *fakeBody) ApplyLinearImpulse(impulse, point geom.Vec2, wake bool) {
	b.impulses = append(b.impulses, impulse)
}
