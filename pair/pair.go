// Package pair builds spring pairs and elastic triads from contacts and the
// Voronoi diagram (spec §4.D).
package pair

import (
	"github.com/pthm-cable/particlecore/contact"
	"github.com/pthm-cable/particlecore/geom"
	"github.com/pthm-cable/particlecore/particle"
	"github.com/pthm-cable/particlecore/voronoi"
)

// Pair is a two-particle spring constraint (spec §3).
type Pair struct {
	IndexA, IndexB int
	Flags          particle.Flags
	Strength       float32
	Distance       float32 // rest length, captured at creation
}

// Triad is a three-particle elastic constraint (spec §3). pa,pb,pc are
// positions relative to the triad centroid at creation; ka,kb,kc,s are
// precomputed dot/cross scalars used by the elastic solve (spec §4.G).
type Triad struct {
	IndexA, IndexB, IndexC int
	Flags                  particle.Flags
	Strength               float32
	Pa, Pb, Pc             geom.Vec2
	Ka, Kb, Kc, S          float32
}

// BuildPairs appends one Pair for every particle-particle contact with both
// endpoints in [firstIndex, lastIndex) and combined flags intersecting
// particle.PairFlags (spec §4.D).
func BuildPairs(dst []Pair, contacts []contact.Contact, positions []geom.Vec2, strength float32, firstIndex, lastIndex int) []Pair {
	for _, c := range contacts {
		if c.IndexA < firstIndex || c.IndexA >= lastIndex || c.IndexB < firstIndex || c.IndexB >= lastIndex {
			continue
		}
		if c.Flags&particle.PairFlags == 0 {
			continue
		}
		dst = append(dst, Pair{
			IndexA:   c.IndexA,
			IndexB:   c.IndexB,
			Flags:    c.Flags,
			Strength: strength,
			Distance: positions[c.IndexA].Sub(positions[c.IndexB]).Length(),
		})
	}
	return dst
}

// BuildPairsAcrossBoundary is BuildPairs restricted to contacts that
// straddle groupB's absorbed range during a join (spec §4.D "On join").
func BuildPairsAcrossBoundary(dst []Pair, contacts []contact.Contact, positions []geom.Vec2, strength float32, firstIndex, lastIndex, boundary int) []Pair {
	for _, c := range contacts {
		if c.IndexA < firstIndex || c.IndexA >= lastIndex || c.IndexB < firstIndex || c.IndexB >= lastIndex {
			continue
		}
		aBelow := c.IndexA < boundary
		bBelow := c.IndexB < boundary
		if aBelow == bBelow {
			continue // both on the same side, not a boundary-crossing pair
		}
		if c.Flags&particle.PairFlags == 0 {
			continue
		}
		dst = append(dst, Pair{
			IndexA:   c.IndexA,
			IndexB:   c.IndexB,
			Flags:    c.Flags,
			Strength: strength,
			Distance: positions[c.IndexA].Sub(positions[c.IndexB]).Length(),
		})
	}
	return dst
}

// BuildTriads runs the Voronoi diagram over [firstIndex, lastIndex) and
// appends one Triad per resulting cell whose three pairwise squared edge
// distances are all below maxTriadDistanceSq*diameter^2 (spec §4.D).
func BuildTriads(dst []Triad, positions []geom.Vec2, flags []particle.Flags, strength float32, firstIndex, lastIndex int, diameter, maxTriadDistanceMult float32) []Triad {
	hasElastic := false
	for i := firstIndex; i < lastIndex; i++ {
		if flags[i]&particle.TriadFlags != 0 {
			hasElastic = true
			break
		}
	}
	if !hasElastic {
		return dst
	}

	gens := make([]voronoi.Generator, 0, lastIndex-firstIndex)
	for i := firstIndex; i < lastIndex; i++ {
		gens = append(gens, voronoi.Generator{Position: positions[i], Index: i})
	}

	maxDistSq := maxTriadDistanceMult * diameter * diameter
	stride := 0.5 * diameter

	voronoi.Generate(gens, stride/2, func(a, b, c int) {
		if maxOK(positions, a, b, c, maxDistSq) {
			dst = append(dst, makeTriad(a, b, c, positions, flags[a]|flags[b]|flags[c], strength))
		}
	})
	return dst
}

// BuildTriadsAcrossBoundary restricts BuildTriads to triples that straddle
// the boundary between groupA and the absorbed groupB during a join, and
// only when the combined flags include a triad flag (spec §4.D "On join").
func BuildTriadsAcrossBoundary(dst []Triad, positions []geom.Vec2, flags []particle.Flags, strength float32, firstIndex, lastIndex, boundary int, diameter, maxTriadDistanceMult float32) []Triad {
	gens := make([]voronoi.Generator, 0, lastIndex-firstIndex)
	for i := firstIndex; i < lastIndex; i++ {
		gens = append(gens, voronoi.Generator{Position: positions[i], Index: i})
	}
	maxDistSq := maxTriadDistanceMult * diameter * diameter
	stride := 0.5 * diameter

	voronoi.Generate(gens, stride/2, func(a, b, c int) {
		below := 0
		if a < boundary {
			below++
		}
		if b < boundary {
			below++
		}
		if c < boundary {
			below++
		}
		if below != 1 && below != 2 {
			return
		}
		combined := flags[a] | flags[b] | flags[c]
		if combined&particle.TriadFlags == 0 {
			return
		}
		if maxOK(positions, a, b, c, maxDistSq) {
			dst = append(dst, makeTriad(a, b, c, positions, combined, strength))
		}
	})
	return dst
}

func maxOK(positions []geom.Vec2, a, b, c int, maxDistSq float32) bool {
	ab := positions[a].Sub(positions[b]).LengthSquared()
	bc := positions[b].Sub(positions[c]).LengthSquared()
	ca := positions[c].Sub(positions[a]).LengthSquared()
	return ab < maxDistSq && bc < maxDistSq && ca < maxDistSq
}

// makeTriad precomputes the reference geometry and dot/cross scalars the
// elastic solve needs (spec §3, §4.G "Elastic").
func makeTriad(a, b, c int, positions []geom.Vec2, flags particle.Flags, strength float32) Triad {
	pa, pb, pc := positions[a], positions[b], positions[c]
	centroid := pa.Add(pb).Add(pc).Scale(1.0 / 3.0)
	oa := pa.Sub(centroid)
	ob := pb.Sub(centroid)
	oc := pc.Sub(centroid)

	return Triad{
		IndexA: a, IndexB: b, IndexC: c,
		Flags:    flags,
		Strength: strength,
		Pa:       oa, Pb: ob, Pc: oc,
		Ka: geom.Dot(oa, oa),
		Kb: geom.Dot(ob, ob),
		Kc: geom.Dot(oc, oc),
		S:  geom.Cross(oa, ob) + geom.Cross(ob, oc) + geom.Cross(oc, oa),
	}
}
