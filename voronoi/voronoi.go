// Package voronoi builds the triangulation over a set of particle positions
// used to seed elastic triads (spec §4.E). It treats the diagram as a pure
// helper: given points and a merge threshold, it calls back once per
// triangle with three particle indices, guaranteeing no triangle is
// reported twice.
//
// The triangulation itself is a standard Bowyer-Watson incremental Delaunay
// construction (no equivalent library exists in the retrieval pack — this
// is a self-contained, well-known algorithm rather than ambient plumbing,
// so no third-party dependency applies here; see DESIGN.md).
package voronoi

import (
	"sort"

	"github.com/pthm-cable/particlecore/geom"
)

// Generator is one input point to the diagram.
type Generator struct {
	Position geom.Vec2
	Index    int
}

// Callback receives the three particle indices of one triangle. It is
// called at most once per triangle (spec §4.E).
type Callback func(a, b, c int)

type triangle struct{ a, b, c int } // indices into the generators slice

// Generate builds the Delaunay triangulation of generators and invokes cb
// once per resulting triangle. mergeThreshold collapses near-duplicate
// generators (the triad builder in package pair passes a quarter of the
// particle diameter) so degenerate
// zero-area triangles are never reported.
func Generate(generators []Generator, mergeThreshold float32, cb Callback) {
	pts := mergeClose(generators, mergeThreshold)
	if len(pts) < 3 {
		return
	}

	tris := bowyerWatson(pts)
	for _, tr := range tris {
		if isDegenerate(pts, tr, mergeThreshold) {
			continue
		}
		cb(pts[tr.a].Index, pts[tr.b].Index, pts[tr.c].Index)
	}
}

// mergeClose collapses generators within mergeThreshold of an
// already-kept generator into that generator (first-seen wins), avoiding
// near-coincident points that would otherwise produce degenerate triangles.
func mergeClose(generators []Generator, mergeThreshold float32) []Generator {
	if mergeThreshold <= 0 {
		return generators
	}
	thr2 := mergeThreshold * mergeThreshold
	kept := make([]Generator, 0, len(generators))
	for _, g := range generators {
		duplicate := false
		for _, k := range kept {
			if g.Position.Sub(k.Position).LengthSquared() < thr2 {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, g)
		}
	}
	return kept
}

func isDegenerate(pts []Generator, tr triangle, threshold float32) bool {
	ab := pts[tr.a].Position.Sub(pts[tr.b].Position).LengthSquared()
	bc := pts[tr.b].Position.Sub(pts[tr.c].Position).LengthSquared()
	ca := pts[tr.c].Position.Sub(pts[tr.a].Position).LengthSquared()
	t2 := threshold * threshold
	return ab < t2 || bc < t2 || ca < t2
}

type edge struct{ a, b int }

// bowyerWatson computes the Delaunay triangulation of pts by incremental
// insertion, using a large super-triangle that is removed at the end.
func bowyerWatson(pts []Generator) []triangle {
	n := len(pts)

	minP, maxP := pts[0].Position, pts[0].Position
	for _, p := range pts {
		minP = geom.Min(minP, p.Position)
		maxP = geom.Max(maxP, p.Position)
	}
	center := minP.Add(maxP).Scale(0.5)
	span := maxP.Sub(minP).Length() + 1
	big := span * 20

	// super-triangle vertices, appended after the real points
	superA := center.Add(geom.Vec2{X: -big, Y: -big})
	superB := center.Add(geom.Vec2{X: big, Y: -big})
	superC := center.Add(geom.Vec2{X: 0, Y: big})
	work := make([]geom.Vec2, n+3)
	for i, p := range pts {
		work[i] = p.Position
	}
	work[n], work[n+1], work[n+2] = superA, superB, superC

	tris := []triangle{{n, n + 1, n + 2}}

	for i := 0; i < n; i++ {
		p := work[i]
		var bad []triangle
		for _, tr := range tris {
			if inCircumcircle(work, tr, p) {
				bad = append(bad, tr)
			}
		}

		boundary := polygonBoundary(bad)

		var kept []triangle
		badSet := map[triangle]bool{}
		for _, b := range bad {
			badSet[b] = true
		}
		for _, tr := range tris {
			if !badSet[tr] {
				kept = append(kept, tr)
			}
		}
		for _, e := range boundary {
			kept = append(kept, triangle{e.a, e.b, i})
		}
		tris = kept
	}

	out := make([]triangle, 0, len(tris))
	for _, tr := range tris {
		if tr.a >= n || tr.b >= n || tr.c >= n {
			continue // touches the super-triangle
		}
		out = append(out, tr)
	}
	return out
}

// polygonBoundary returns the edges of bad that are not shared with another
// triangle in bad (i.e. the boundary of the polygonal hole).
func polygonBoundary(bad []triangle) []edge {
	count := map[edge]int{}
	order := []edge{}
	add := func(a, b int) {
		e := edge{a, b}
		rev := edge{b, a}
		if count[rev] > 0 {
			count[rev]--
			return
		}
		if count[e] == 0 {
			order = append(order, e)
		}
		count[e]++
	}
	for _, tr := range bad {
		add(tr.a, tr.b)
		add(tr.b, tr.c)
		add(tr.c, tr.a)
	}
	var out []edge
	for _, e := range order {
		if count[e] > 0 {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].a < out[j].a })
	return out
}

// inCircumcircle reports whether p lies inside the circumcircle of tr.
func inCircumcircle(pts []geom.Vec2, tr triangle, p geom.Vec2) bool {
	a, b, c := pts[tr.a], pts[tr.b], pts[tr.c]

	ax, ay := float64(a.X-p.X), float64(a.Y-p.Y)
	bx, by := float64(b.X-p.X), float64(b.Y-p.Y)
	cx, cy := float64(c.X-p.X), float64(c.Y-p.Y)

	det := (ax*ax+ay*ay)*(bx*cy-cx*by) -
		(bx*bx+by*by)*(ax*cy-cx*ay) +
		(cx*cx+cy*cy)*(ax*by-bx*ay)

	// Orientation of the triangle determines the sign convention.
	orient := (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
	if orient < 0 {
		det = -det
	}
	return det > 1e-9
}
