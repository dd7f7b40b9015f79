package proxy

import (
	"sort"
	"testing"

	"github.com/pthm-cable/particlecore/geom"
)

func TestComputeRelativeTagMatchesAbsolute(t *testing.T) {
	// spec §8 round-trip: computeRelativeTag(computeTag(x,y), dx, dy) ==
	// computeTag(x+dx*d, y+dy*d), within integer quantization (unit cells here).
	x, y := float32(3), float32(-2)
	tag := ComputeTag(x, y)
	for dx := int32(-2); dx <= 2; dx++ {
		for dy := int32(-2); dy <= 2; dy++ {
			got := ComputeRelativeTag(tag, dx, dy)
			want := ComputeTag(x+float32(dx), y+float32(dy))
			if got != want {
				t.Errorf("dx=%d dy=%d: got %d want %d", dx, dy, got, want)
			}
		}
	}
}

func TestRetagSortsAscending(t *testing.T) {
	positions := []geom.Vec2{{X: 5, Y: 5}, {X: -3, Y: 1}, {X: 0, Y: 0}, {X: 2, Y: -4}}
	proxies := []Proxy{{Index: 0}, {Index: 1}, {Index: 2}, {Index: 3}}

	Retag(proxies, positions, 1.0)

	if !sort.IsSorted(ByTag(proxies)) {
		t.Fatalf("expected proxies sorted by tag, got %+v", proxies)
	}
	if len(proxies) != len(positions) {
		t.Fatalf("expected proxy count unchanged, got %d", len(proxies))
	}
}

func TestBoundsCoverInflatedAABB(t *testing.T) {
	proxies := []Proxy{{Tag: -10}, {Tag: -1}, {Tag: 0}, {Tag: 4}, {Tag: 9}}
	lo := LowerBound(proxies, 0)
	hi := UpperBound(proxies, 4)
	if proxies[lo].Tag != 0 {
		t.Errorf("LowerBound(0) landed on tag %d", proxies[lo].Tag)
	}
	if hi != 4 {
		t.Errorf("UpperBound(4) = %d, want 4", hi)
	}
}
