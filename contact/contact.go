// Package contact implements particle-particle and particle-body contact
// detection (spec §4.C).
package contact

import (
	"math"

	"github.com/pthm-cable/particlecore/geom"
	"github.com/pthm-cable/particlecore/host"
	"github.com/pthm-cable/particlecore/particle"
	"github.com/pthm-cable/particlecore/proxy"
)

// Contact is a transient particle-particle collision record (spec §3).
type Contact struct {
	IndexA, IndexB int
	Flags          particle.Flags
	Weight         float32
	Normal         geom.Vec2
}

// BodyContact is a transient particle-body collision record (spec §3).
type BodyContact struct {
	Index  int
	Body   host.Body
	Weight float32
	Normal geom.Vec2
	Mass   float32
}

// epsilon guards the 1/sqrt(d2) division for near-coincident particles
// (spec §7 "Numeric degeneracy").
const epsilon = 1e-12

// AddContact appends a particle-particle contact to buf if A and B are
// within one diameter of each other, returning the possibly-grown slice
// (spec §4.C addContact; buffer growth is Go's append doubling, which
// satisfies the "grown by doubling if needed" requirement).
func AddContact(buf []Contact, a, b int, positions []geom.Vec2, flags []particle.Flags, diameter, inverseDiameter float32) []Contact {
	pa, pb := positions[a], positions[b]
	dx := pb.X - pa.X
	dy := pb.Y - pa.Y
	d2 := dx*dx + dy*dy
	if d2 >= diameter*diameter || d2 < epsilon {
		return buf
	}
	invD := float32(1 / math.Sqrt(float64(d2)))
	weight := 1 - float32(math.Sqrt(float64(d2)))*inverseDiameter
	return append(buf, Contact{
		IndexA: a,
		IndexB: b,
		Flags:  flags[a] | flags[b],
		Weight: weight,
		Normal: geom.Vec2{X: invD * dx, Y: invD * dy},
	})
}

// UpdateContacts refreshes proxy tags from positions, sorts them, and
// re-runs the scan from spec §4.B to rebuild the contact buffer. When
// exceptZombie is true, contacts touching a zombie particle are removed
// (used right after particles are marked zombie, before compaction runs).
func UpdateContacts(proxies []proxy.Proxy, positions []geom.Vec2, flags []particle.Flags, diameter, inverseDiameter float32, exceptZombie bool) []Contact {
	proxy.Retag(proxies, positions, inverseDiameter)

	var contacts []Contact
	n := len(proxies)
	cIndex := 0
	for i := 0; i < n; i++ {
		a := proxies[i]
		rightTag := proxy.RightTag(a.Tag)
		for j := i + 1; j < n; j++ {
			b := proxies[j]
			if rightTag < b.Tag {
				break
			}
			contacts = AddContact(contacts, a.Index, b.Index, positions, flags, diameter, inverseDiameter)
		}

		bottomLeftTag := proxy.BottomLeftTag(a.Tag)
		for ; cIndex < n; cIndex++ {
			if bottomLeftTag <= proxies[cIndex].Tag {
				break
			}
		}

		bottomRightTag := proxy.BottomRightTag(a.Tag)
		for bIdx := cIndex; bIdx < n; bIdx++ {
			b := proxies[bIdx]
			if bottomRightTag < b.Tag {
				break
			}
			contacts = AddContact(contacts, a.Index, b.Index, positions, flags, diameter, inverseDiameter)
		}
	}

	if exceptZombie {
		out := contacts[:0]
		for _, c := range contacts {
			if c.Flags&particle.Zombie == 0 {
				out = append(out, c)
			}
		}
		contacts = out
	}
	return contacts
}

// BodyQuery is the capability contact detection uses to enumerate fixtures
// near the particle cloud (spec §4.C updateBodyContacts).
type BodyQuery func(cb host.FixtureCallback, aabb geom.AABB)

// UpdateBodyContacts rebuilds the body-contact buffer by querying the host
// world for fixtures near the particle cloud, then testing each candidate
// proxy against the fixture's actual distance function (spec §4.C).
func UpdateBodyContacts(query BodyQuery, proxies []proxy.Proxy, positions []geom.Vec2, flags []particle.Flags, diameter, inverseDiameter, particleInvMass float32) []BodyContact {
	aabb := geom.EmptyAABB()
	for _, p := range positions {
		aabb.Extend(p)
	}
	aabb = aabb.Inflate(diameter)

	var out []BodyContact
	query(func(f host.Fixture) bool {
		if f.IsSensor() {
			return true
		}
		shape := f.GetShape()
		body := f.GetBody()
		for child := 0; child < shape.GetChildCount(); child++ {
			childAABB := f.GetAABB(child).Inflate(diameter)
			lo, hi := proxy.TagRange(childAABB, inverseDiameter)
			start := proxy.LowerBound(proxies, lo)
			end := proxy.UpperBound(proxies, hi)
			for k := start; k < end; k++ {
				idx := proxies[k].Index
				p := positions[idx]
				if !childAABB.Contains(p) {
					continue
				}
				d, n := f.ComputeDistance(p, child)
				if d >= diameter {
					continue
				}
				invA := particleInvMass
				if flags[idx]&particle.WallFlag != 0 {
					invA = 0
				}
				bodyMass := body.GetMass()
				invB := float32(0)
				if bodyMass > 0 {
					invB = 1 / bodyMass
				}
				r := p.Sub(body.GetWorldCenter())
				rn := geom.Cross(r, n)
				bI := body.GetInertia() - bodyMass*body.GetLocalCenter().LengthSquared()
				invI := float32(0)
				if bI > 0 {
					invI = 1 / bI
				}
				invMass := invA + invB + invI*rn*rn
				mass := float32(0)
				if invMass > 0 {
					mass = 1 / invMass
				}
				out = append(out, BodyContact{
					Index:  idx,
					Body:   body,
					Weight: 1 - d*inverseDiameter,
					Normal: n,
					Mass:   mass,
				})
			}
		}
		return true
	}, aabb)
	return out
}
