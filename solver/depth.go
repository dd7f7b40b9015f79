package solver

import (
	"github.com/pthm-cable/particlecore/contact"
	"github.com/pthm-cable/particlecore/group"
)

// ComputeDepth iteratively relaxes a per-particle surface-depth estimate for
// every solid group, seeding surface particles (those with at least one
// inter-group contact) at 0 and every other particle at +Inf, then relaxing
// depth[b] = min(depth[b], depth[a]+diameter) across intra-group contacts
// until no depth value changes (spec §4.G "Depth", grounded on jbox2d's
// computeDepth). Particles whose final weight-normalized depth falls below
// 0.8 are clamped to 0, matching the original's `w < 0.8f ? 0 : value`
// (spec §9 Open Question #3, resolved with a strict `<`).
func ComputeDepth(contacts []contact.Contact, groups *group.Registry, groupRef []int32, depth []float32, diameter float32) {
	for i := range depth {
		depth[i] = maxf32
	}

	for _, g := range groups.Live() {
		if g.GroupFlags&group.Solid == 0 {
			continue
		}
		for i := g.FirstIndex; i < g.LastIndex; i++ {
			depth[i] = maxf32
		}
	}

	contactCount := make(map[int]int)
	for _, c := range contacts {
		if groupRef[c.IndexA] != groupRef[c.IndexB] {
			contactCount[c.IndexA]++
			contactCount[c.IndexB]++
		}
	}
	for i, n := range contactCount {
		if n > 0 {
			depth[i] = 0
		}
	}

	for iter := 0; iter < len(depth); iter++ {
		changed := false
		for _, c := range contacts {
			if groupRef[c.IndexA] != groupRef[c.IndexB] {
				continue
			}
			a, b := c.IndexA, c.IndexB
			if depth[a]+diameter < depth[b] {
				depth[b] = depth[a] + diameter
				changed = true
			}
			if depth[b]+diameter < depth[a] {
				depth[a] = depth[b] + diameter
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	for i := range depth {
		if depth[i] == maxf32 {
			depth[i] = 0
		} else if depth[i]/diameter < 0.8 {
			depth[i] = 0
		}
	}
}

const maxf32 = 3.4e38
