// Package groupset mirrors the live contents of a group.Registry as an ark
// ecs.World, so the demo/query tooling layer can iterate groups with ark's
// component maps and filters instead of reaching into the registry's
// internals directly. The hot-path solver never touches this package — it
// is rebuilt once per frame purely for visualization/inspection (spec §4.A
// "the hot-path buffers stay struct-of-arrays"; SPEC_FULL.md DOMAIN STACK).
package groupset

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/particlecore/group"
)

// Slot is the single component attached to each group-entity.
type Slot struct {
	GroupID    int32
	FirstIndex int
	LastIndex  int
	Flags      uint32
}

// Set holds one ark World plus the component map used to populate it,
// rebuilt each frame from a group.Registry's live groups.
type Set struct {
	world *ecs.World
	slots *ecs.Map1[Slot]
}

// New creates an empty Set, ready for Rebuild.
func New() *Set {
	w := ecs.NewWorld()
	return &Set{world: w, slots: ecs.NewMap1[Slot](w)}
}

// Rebuild replaces the world and re-populates it with one entity per live
// group in groups.
func (s *Set) Rebuild(groups *group.Registry) {
	s.world = ecs.NewWorld()
	s.slots = ecs.NewMap1[Slot](s.world)

	for _, g := range groups.Live() {
		slot := Slot{
			GroupID:    g.ID(),
			FirstIndex: g.FirstIndex,
			LastIndex:  g.LastIndex,
			Flags:      uint32(g.GroupFlags),
		}
		s.slots.NewEntity(&slot)
	}
}

// Each calls fn once per group entity currently in the set.
func (s *Set) Each(fn func(Slot)) {
	filter := ecs.NewFilter1[Slot](s.world)
	query := filter.Query()
	for query.Next() {
		fn(*query.Get())
	}
}
