package group

import "testing"

func TestRegistryCreateDestroy(t *testing.T) {
	r := NewRegistry()
	g1 := r.Create(Def{DestroyAutomatically: true}, 0, 10)
	g2 := r.Create(Def{}, 10, 15)
	if r.Count() != 2 {
		t.Fatalf("expected 2 live groups, got %d", r.Count())
	}
	if r.Get(g1.ID()) != g1 || r.Get(g2.ID()) != g2 {
		t.Fatal("Get did not round-trip the created groups")
	}
	r.Destroy(g2)
	if r.Count() != 1 {
		t.Fatalf("expected 1 live group after destroy, got %d", r.Count())
	}
	if r.Get(g2.ID()) != nil {
		t.Fatal("expected destroyed group to be unreachable via Get")
	}

	g3 := r.Create(Def{}, 20, 25)
	if g3.ID() != g2.ID() {
		t.Fatalf("expected free slot reuse, got new id %d want %d", g3.ID(), g2.ID())
	}
}

func TestRotateIndex(t *testing.T) {
	// [start,mid,end) = [2,5,8): block [5,8) moves to front of [2,8)
	cases := []struct{ i, want int }{
		{0, 0}, {1, 1},
		{2, 5}, {3, 6}, {4, 7}, // [2,5) -> shifted by (end-mid)=3
		{5, 2}, {6, 3}, {7, 4}, // [5,8) -> shifted by (start-mid)=-3
		{8, 8}, {9, 9},
	}
	for _, c := range cases {
		if got := RotateIndex(2, 5, 8, c.i); got != c.want {
			t.Errorf("RotateIndex(2,5,8,%d) = %d, want %d", c.i, got, c.want)
		}
	}
}

func TestRotateIndexInverse(t *testing.T) {
	// Applying the inverse rotation restores the original index (spec §8
	// invariant 7): rotating [start,mid,end) then rotating the resulting
	// [start, start+(end-mid), end) back undoes it.
	start, mid, end := 3, 7, 12
	newMid := start + (end - mid)
	for i := 0; i < 20; i++ {
		once := RotateIndex(start, mid, end, i)
		twice := RotateIndex(start, newMid, end, once)
		if twice != i {
			t.Errorf("index %d did not round-trip: got %d after two rotations", i, twice)
		}
	}
}

func TestRemapAfterCompactionDestroysEmptyGroup(t *testing.T) {
	r := NewRegistry()
	g := r.Create(Def{DestroyAutomatically: true}, 0, 3)
	newIndex := []int{-1, -1, -1}
	r.RemapAfterCompaction(newIndex, 0)
	if !g.ToBeDestroyed {
		t.Fatal("expected group with no survivors to be flagged ToBeDestroyed")
	}
	r.SweepDestroyed()
	if r.Count() != 0 {
		t.Fatalf("expected group to be destroyed, count=%d", r.Count())
	}
}

func TestRemapAfterCompactionShrinksRange(t *testing.T) {
	r := NewRegistry()
	g := r.Create(Def{}, 0, 5)
	// particles 1 and 3 died; 0,2,4 survive at new indices 0,1,2
	newIndex := []int{0, -1, 1, -1, 2}
	r.RemapAfterCompaction(newIndex, 3)
	if g.FirstIndex != 0 || g.LastIndex != 3 {
		t.Fatalf("expected range [0,3), got [%d,%d)", g.FirstIndex, g.LastIndex)
	}
}
