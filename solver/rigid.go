package solver

import (
	"github.com/pthm-cable/particlecore/geom"
	"github.com/pthm-cable/particlecore/group"
)

// SolveRigid advances every rigid-flagged group's stored transform by one
// step using its current center/linear/angular velocity, then overwrites its
// members' velocities with the per-particle velocity implied by that rigid
// motion (spec §4.G step 6, grounded on jbox2d's solveRigid). Each group's
// statistics are refreshed via UpdateStatistics for timestamp first.
func SolveRigid(step Step, positions, velocities []geom.Vec2, groups *group.Registry, invMass float32, timestamp int) {
	for _, g := range groups.Live() {
		if g.GroupFlags&group.Rigid == 0 {
			continue
		}
		g.UpdateStatistics(positions, velocities, invMass, timestamp)

		rotation := geom.NewRot(step.Dt * g.AngularVelocity)
		translation := g.LinearVelocity.Scale(step.Dt)
		delta := geom.Transform{P: g.Center.Add(translation).Sub(rotation.Mul(g.Center)), Q: rotation}
		g.Transform = geom.Compose(delta, g.Transform)

		angularVelocity := g.AngularVelocity
		for i := g.FirstIndex; i < g.LastIndex; i++ {
			r := positions[i].Sub(g.Center)
			tangent := geom.Vec2{X: -angularVelocity * r.Y, Y: angularVelocity * r.X}
			velocities[i] = g.LinearVelocity.Add(tangent)
		}
	}
}
