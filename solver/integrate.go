package solver

import (
	"math"

	"github.com/pthm-cable/particlecore/geom"
	"github.com/pthm-cable/particlecore/particle"
)

// IntegrateGravity applies gravity to every particle's velocity and clamps
// speed to the critical velocity (spec §4.G step 4).
func IntegrateGravity(velocities []geom.Vec2, step Step, gravity geom.Vec2, gravityScale, diameter float32) {
	g := gravity.Scale(step.Dt * gravityScale)
	criticalSq := CriticalVelocitySquared(step, diameter)
	for i := range velocities {
		v := velocities[i].Add(g)
		v2 := v.LengthSquared()
		if v2 > criticalSq {
			a := float32(math.Sqrt(float64(criticalSq / v2)))
			v = v.Scale(a)
		}
		velocities[i] = v
	}
}

// SolveWall zeroes the velocity of every wall-flagged particle (spec §4.G
// step 7).
func SolveWall(velocities []geom.Vec2, flags []particle.Flags) {
	for i, f := range flags {
		if f&particle.WallFlag != 0 {
			velocities[i] = geom.Vec2{}
		}
	}
}

// IntegratePositions advances every particle's position by dt*velocity
// (spec §4.G step 8).
func IntegratePositions(positions, velocities []geom.Vec2, dt float32) {
	for i := range positions {
		positions[i] = positions[i].Add(velocities[i].Scale(dt))
	}
}
