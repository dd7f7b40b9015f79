// Package query implements the read-only AABB and ray-cast query surface
// over the particle cloud (spec §4.I), built on the sorted proxy array
// rather than a secondary spatial index.
package query

import (
	"math"

	"github.com/pthm-cable/particlecore/geom"
	"github.com/pthm-cable/particlecore/proxy"
)

// Callback is invoked once per matching particle index. Returning false
// stops the query early (spec §4.I "callback-driven, stoppable").
type Callback func(index int) bool

// QueryAABB visits every particle whose position lies within aabb, using the
// proxy array's tag range to narrow the scan before the exact point test
// (spec §4.I QueryAABB).
func QueryAABB(proxies []proxy.Proxy, positions []geom.Vec2, aabb geom.AABB, inverseDiameter float32, cb Callback) {
	lo, hi := proxy.TagRange(aabb, inverseDiameter)
	start := proxy.LowerBound(proxies, lo)
	end := proxy.UpperBound(proxies, hi)
	for i := start; i < end; i++ {
		idx := proxies[i].Index
		if aabb.Contains(positions[idx]) {
			if !cb(idx) {
				return
			}
		}
	}
}

// RayCast visits every particle whose disc of diameter `diameter` intersects
// the segment p1->p2, narrowing the candidate set with the segment's
// bounding AABB tag range before solving the quadratic segment-circle
// intersection exactly: |(1-t)*p1 + t*p2 - p_i|^2 = diameter^2 (spec §4.I
// RayCast — the original solves against m_squaredDiameter, not the particle
// radius). Candidates are visited in proxy-tag order, not hit-fraction
// order; the callback's returned fraction progressively tightens
// maxFraction so farther hits are pruned as they're found.
// The callback's return value is also used to tighten the search: returning
// a fraction in [0,1) clips the segment so farther particles are skipped,
// and returning a negative fraction stops the cast immediately (spec §4.I,
// §7 — ParticleSystem.java's rayCast does fraction = min(fraction, f); if
// (fraction <= 0) break;).
func RayCast(proxies []proxy.Proxy, positions []geom.Vec2, p1, p2 geom.Vec2, diameter, inverseDiameter float32, cb func(index int, fraction float32, point, normal geom.Vec2) float32) {
	aabb := geom.AABB{Lower: geom.Min(p1, p2), Upper: geom.Max(p1, p2)}.Inflate(diameter)
	lo, hi := proxy.TagRange(aabb, inverseDiameter)
	start := proxy.LowerBound(proxies, lo)
	end := proxy.UpperBound(proxies, hi)

	maxFraction := float32(1)
	d := p2.Sub(p1)

	for i := start; i < end; i++ {
		idx := proxies[i].Index
		center := positions[idx]
		f := p1.Sub(center)

		a := geom.Dot(d, d)
		b := 2 * geom.Dot(f, d)
		c := geom.Dot(f, f) - diameter*diameter
		disc := b*b - 4*a*c
		if disc < 0 || a < 1e-12 {
			continue
		}
		sq := float32(math.Sqrt(float64(disc)))
		t := (-b - sq) / (2 * a)
		if t < 0 {
			t = (-b + sq) / (2 * a)
		}
		if t < 0 || t > maxFraction {
			continue
		}

		point := p1.Add(d.Scale(t))
		normal := point.Sub(center).Normalized()

		result := cb(idx, t, point, normal)
		if result < 0 {
			return
		}
		if result < maxFraction {
			maxFraction = result
		}
	}
}
