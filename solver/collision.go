package solver

import (
	"github.com/pthm-cable/particlecore/geom"
	"github.com/pthm-cable/particlecore/host"
	"github.com/pthm-cable/particlecore/particle"
)

// SolveCollision sweeps every non-zombie particle's motion over the step and,
// for each fixture the host returns whose AABB overlaps the swept segment,
// ray-casts the segment against the fixture. On a hit it clips the particle's
// velocity to stop at the surface and applies an equal-and-opposite impulse
// to the body (spec §4.G step 5, grounded on jbox2d's solveCollision).
func SolveCollision(step Step, world host.World, positions, velocities []geom.Vec2, flags []particle.Flags, particleInvMass float32) {
	for i := range positions {
		if flags[i]&particle.Zombie != 0 {
			continue
		}
		p1 := positions[i]
		v := velocities[i]
		p2 := p1.Add(v.Scale(step.Dt))

		aabb := geom.AABB{Lower: geom.Min(p1, p2), Upper: geom.Max(p1, p2)}

		var (
			bestFraction = float32(1)
			bestNormal   geom.Vec2
			bestBody     host.Body
			hitAny       bool
		)

		world.QueryAABB(func(f host.Fixture) bool {
			if f.IsSensor() {
				return true
			}
			shape := f.GetShape()
			for child := 0; child < shape.GetChildCount(); child++ {
				input := host.RayCastInput{P1: p1, P2: p2, MaxFraction: bestFraction}
				fraction, normal, hit := f.RayCast(input, child)
				if hit && fraction < bestFraction {
					bestFraction = fraction
					bestNormal = normal
					bestBody = f.GetBody()
					hitAny = true
				}
			}
			return true
		}, aabb)

		if !hitAny {
			continue
		}

		hitPoint := p1.Add(p2.Sub(p1).Scale(bestFraction))
		vn := geom.Dot(v, bestNormal)
		if vn < 0 {
			f := bestNormal.Scale(-vn)
			velocities[i] = v.Add(f)
			if bestBody != nil {
				bestBody.ApplyLinearImpulse(f.Scale(-1/particleInvMass), hitPoint, true)
			}
		}
	}
}
