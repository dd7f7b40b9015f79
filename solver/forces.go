package solver

import (
	"math"

	"github.com/pthm-cable/particlecore/config"
	"github.com/pthm-cable/particlecore/contact"
	"github.com/pthm-cable/particlecore/geom"
	"github.com/pthm-cable/particlecore/pair"
	"github.com/pthm-cable/particlecore/particle"
)

// SolvePressure accumulates per-particle density from contact weights,
// converts it to pressure, and applies pairwise repulsive forces (spec
// §4.G "Pressure"). The body-contact branch applies the impulse along both
// normal components — the original's `velData.x -= ... ; velData.x -= ...`
// double-x assignment is fixed here to `x` then `y`, per spec §9 Open
// Question #1 ("almost certainly a typo for y").
func SolvePressure(step Step, positions, velocities []geom.Vec2, flags []particle.Flags,
	contacts []contact.Contact, bodyContacts []contact.BodyContact,
	cfg config.SolverConfig, density, particleInvMass, diameter float32) {

	accum := make([]float32, len(positions))

	for _, bc := range bodyContacts {
		accum[bc.Index] += bc.Weight
	}
	for _, c := range contacts {
		accum[c.IndexA] += c.Weight
		accum[c.IndexB] += c.Weight
	}
	for i, f := range flags {
		if f&particle.NoPressureFlags != 0 {
			accum[i] = 0
		}
	}

	pressurePerWeight := cfg.PressureStrength * CriticalPressure(step, diameter, density)
	for i, w := range accum {
		h := pressurePerWeight * maxf(0, minf(w, cfg.MaxParticleWeight)-cfg.MinParticleWeight)
		accum[i] = h
	}

	velocityPerPressure := step.Dt / (density * diameter)

	for _, bc := range bodyContacts {
		a := bc.Index
		w := bc.Weight
		m := bc.Mass
		n := bc.Normal
		p := positions[a]
		h := accum[a] + pressurePerWeight*w
		f := n.Scale(velocityPerPressure * w * m * h)

		velocities[a] = velocities[a].Sub(f.Scale(particleInvMass))
		if bc.Body != nil {
			bc.Body.ApplyLinearImpulse(f, p, true)
		}
	}

	for _, c := range contacts {
		a, b := c.IndexA, c.IndexB
		w := c.Weight
		n := c.Normal
		h := accum[a] + accum[b]
		f := n.Scale(velocityPerPressure * w * h)
		velocities[a] = velocities[a].Sub(f)
		velocities[b] = velocities[b].Add(f)
	}
}

// SolveDamping reduces the normal component of relative velocity across
// every contact whose particles are approaching (spec §4.G "Damping").
func SolveDamping(step Step, positions, velocities []geom.Vec2, contacts []contact.Contact, bodyContacts []contact.BodyContact, dampingStrength, particleInvMass float32) {
	for _, bc := range bodyContacts {
		a := bc.Index
		n := bc.Normal
		p := positions[a]
		bodyVel := bc.Body.GetLinearVelocityFromWorldPoint(p)
		v := bodyVel.Sub(velocities[a])
		vn := geom.Dot(v, n)
		if vn < 0 {
			f := n.Scale(dampingStrength * bc.Weight * bc.Mass * vn)
			velocities[a] = velocities[a].Add(f.Scale(particleInvMass))
			bc.Body.ApplyLinearImpulse(f.Neg(), p, true)
		}
	}
	for _, c := range contacts {
		a, b := c.IndexA, c.IndexB
		v := velocities[b].Sub(velocities[a])
		vn := geom.Dot(v, c.Normal)
		if vn < 0 {
			f := c.Normal.Scale(dampingStrength * c.Weight * vn)
			velocities[a] = velocities[a].Add(f)
			velocities[b] = velocities[b].Sub(f)
		}
	}
}

// SolveViscous applies unconditional velocity-difference drag to
// viscous-flagged particles (spec §4.G "Viscous").
func SolveViscous(positions, velocities []geom.Vec2, flags []particle.Flags, contacts []contact.Contact, bodyContacts []contact.BodyContact, viscousStrength, particleInvMass float32) {
	for _, bc := range bodyContacts {
		a := bc.Index
		if flags[a]&particle.ViscousFlag == 0 {
			continue
		}
		p := positions[a]
		v := bc.Body.GetLinearVelocityFromWorldPoint(p).Sub(velocities[a])
		f := v.Scale(viscousStrength * bc.Mass * bc.Weight)
		velocities[a] = velocities[a].Add(f.Scale(particleInvMass))
		bc.Body.ApplyLinearImpulse(f.Neg(), p, true)
	}
	for _, c := range contacts {
		if c.Flags&particle.ViscousFlag == 0 {
			continue
		}
		a, b := c.IndexA, c.IndexB
		v := velocities[b].Sub(velocities[a])
		f := v.Scale(viscousStrength * c.Weight)
		velocities[a] = velocities[a].Add(f)
		velocities[b] = velocities[b].Sub(f)
	}
}

// SolvePowder applies a repulsive force between near-touching
// powder-flagged particles, unconditionally for contacts whose weight
// exceeds 1-particleStride (spec §4.G "Powder").
func SolvePowder(step Step, positions, velocities []geom.Vec2, flags []particle.Flags, contacts []contact.Contact, bodyContacts []contact.BodyContact, cfg config.SolverConfig, diameter, particleInvMass float32) {
	powderStrength := cfg.PowderStrength * CriticalVelocity(step, diameter)
	minWeight := 1 - cfg.ParticleStride

	for _, bc := range bodyContacts {
		a := bc.Index
		if flags[a]&particle.PowderFlag == 0 || bc.Weight <= minWeight {
			continue
		}
		p := positions[a]
		f := bc.Normal.Scale(powderStrength * bc.Mass * (bc.Weight - minWeight))
		velocities[a] = velocities[a].Sub(f.Scale(particleInvMass))
		bc.Body.ApplyLinearImpulse(f, p, true)
	}
	for _, c := range contacts {
		if c.Flags&particle.PowderFlag == 0 || c.Weight <= minWeight {
			continue
		}
		f := c.Normal.Scale(powderStrength * (c.Weight - minWeight))
		velocities[c.IndexA] = velocities[c.IndexA].Sub(f)
		velocities[c.IndexB] = velocities[c.IndexB].Add(f)
	}
}

// SolveTensile is a two-pass surface-tension solver: first it accumulates
// contact weight and a weighted normal vector per particle, then it applies
// the resulting force (spec §4.G "Tensile").
func SolveTensile(step Step, velocities []geom.Vec2, contacts []contact.Contact, cfg config.SolverConfig, diameter float32) {
	n := 0
	for _, c := range contacts {
		if c.IndexA+1 > n {
			n = c.IndexA + 1
		}
		if c.IndexB+1 > n {
			n = c.IndexB + 1
		}
	}
	if n == 0 {
		return
	}
	weight := make([]float32, n)
	accum2 := make([]geom.Vec2, n)

	for _, c := range contacts {
		if c.Flags&particle.TensileFlag == 0 {
			continue
		}
		a, b := c.IndexA, c.IndexB
		w := c.Weight
		weight[a] += w
		weight[b] += w
		accum2[a] = accum2[a].Sub(c.Normal.Scale((1 - w) * w))
		accum2[b] = accum2[b].Add(c.Normal.Scale((1 - w) * w))
	}

	strengthA := cfg.SurfaceTensionA * CriticalVelocity(step, diameter)
	strengthB := cfg.SurfaceTensionB * CriticalVelocity(step, diameter)
	for _, c := range contacts {
		if c.Flags&particle.TensileFlag == 0 {
			continue
		}
		a, b := c.IndexA, c.IndexB
		h := weight[a] + weight[b]
		s := accum2[b].Sub(accum2[a])
		fn := (strengthA*(h-2) + strengthB*geom.Dot(s, c.Normal)) * c.Weight
		f := c.Normal.Scale(fn)
		velocities[a] = velocities[a].Sub(f)
		velocities[b] = velocities[b].Add(f)
	}
}

// SolveElastic applies a best-fit rigid rotation correction toward each
// triad's reference triangle (spec §4.G "Elastic").
func SolveElastic(step Step, positions, velocities []geom.Vec2, triads []pair.Triad, elasticStrength float32) {
	strength := step.InvDt * elasticStrength
	for _, tr := range triads {
		a, b, c := tr.IndexA, tr.IndexB, tr.IndexC
		pa, pb, pc := positions[a], positions[b], positions[c]
		centroid := pa.Add(pb).Add(pc).Scale(1.0 / 3.0)
		ra := pa.Sub(centroid)
		rb := pb.Sub(centroid)
		rc := pc.Sub(centroid)

		s := geom.Cross(tr.Pa, ra) + geom.Cross(tr.Pb, rb) + geom.Cross(tr.Pc, rc)
		cc := geom.Dot(tr.Pa, ra) + geom.Dot(tr.Pb, rb) + geom.Dot(tr.Pc, rc)
		r2 := s*s + cc*cc
		if r2 < 1e-12 {
			continue
		}
		invR := float32(1 / math.Sqrt(float64(r2)))
		rot := geom.Rot{S: s * invR, C: cc * invR}

		k := strength * tr.Strength
		velocities[a] = velocities[a].Add(rot.Mul(tr.Pa).Sub(ra).Scale(k))
		velocities[b] = velocities[b].Add(rot.Mul(tr.Pb).Sub(rb).Scale(k))
		velocities[c] = velocities[c].Add(rot.Mul(tr.Pc).Sub(rc).Scale(k))
	}
}

// SolveSpring restores each pair toward its rest length (spec §4.G "Spring").
func SolveSpring(step Step, positions, velocities []geom.Vec2, pairs []pair.Pair, springStrength float32) {
	k := step.InvDt * springStrength
	for _, p := range pairs {
		a, b := p.IndexA, p.IndexB
		d := positions[b].Sub(positions[a])
		r1 := d.Length()
		if r1 < 1e-9 {
			continue
		}
		strength := k * p.Strength
		f := d.Scale(strength * (p.Distance - r1) / r1)
		velocities[a] = velocities[a].Sub(f)
		velocities[b] = velocities[b].Add(f)
	}
}

// SolveSolid ejects particles that touch across a group boundary, scaled by
// summed depth (spec §4.G "Solid").
func SolveSolid(step Step, velocities []geom.Vec2, contacts []contact.Contact, groupRef []int32, depth []float32, ejectionStrength float32) {
	k := step.InvDt * ejectionStrength
	for _, c := range contacts {
		a, b := c.IndexA, c.IndexB
		if groupRef[a] == groupRef[b] {
			continue
		}
		h := depth[a] + depth[b]
		f := c.Normal.Scale(k * h * c.Weight)
		velocities[a] = velocities[a].Sub(f)
		velocities[b] = velocities[b].Add(f)
	}
}

// SolveColorMixing exchanges a fraction of each color channel between
// contacting colorMixing-flagged particles using fixed-point arithmetic
// (spec §4.G "Color mixing").
func SolveColorMixing(contacts []contact.Contact, flags []particle.Flags, colors []particle.Color, mixStrength float32) {
	mix256 := int32(256 * mixStrength)
	for _, c := range contacts {
		a, b := c.IndexA, c.IndexB
		if flags[a]&flags[b]&particle.ColorMixingFlag == 0 {
			continue
		}
		ca, cb := colors[a], colors[b]
		dr := (mix256 * (int32(cb.R) - int32(ca.R))) >> 8
		dg := (mix256 * (int32(cb.G) - int32(ca.G))) >> 8
		db := (mix256 * (int32(cb.B) - int32(ca.B))) >> 8
		da := (mix256 * (int32(cb.A) - int32(ca.A))) >> 8

		colors[a] = particle.Color{
			R: clamp8(int32(ca.R) + dr), G: clamp8(int32(ca.G) + dg),
			B: clamp8(int32(ca.B) + db), A: clamp8(int32(ca.A) + da),
		}
		colors[b] = particle.Color{
			R: clamp8(int32(cb.R) - dr), G: clamp8(int32(cb.G) - dg),
			B: clamp8(int32(cb.B) - db), A: clamp8(int32(cb.A) - da),
		}
	}
}

func clamp8(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
