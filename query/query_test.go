package query

import (
	"testing"

	"github.com/pthm-cable/particlecore/geom"
	"github.com/pthm-cable/particlecore/proxy"
)

func TestQueryAABBFindsOnlyContainedPoints(t *testing.T) {
	positions := []geom.Vec2{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 0.5, Y: 0.5}}
	proxies := []proxy.Proxy{{Index: 0}, {Index: 1}, {Index: 2}}
	proxy.Retag(proxies, positions, 1)

	aabb := geom.AABB{Lower: geom.Vec2{X: -1, Y: -1}, Upper: geom.Vec2{X: 1, Y: 1}}

	var found []int
	QueryAABB(proxies, positions, aabb, 1, func(i int) bool {
		found = append(found, i)
		return true
	})

	if len(found) != 2 {
		t.Fatalf("expected 2 particles inside the box, got %v", found)
	}
}

func TestQueryAABBStopsEarly(t *testing.T) {
	positions := []geom.Vec2{{X: 0, Y: 0}, {X: 0.1, Y: 0.1}, {X: 0.2, Y: 0.2}}
	proxies := []proxy.Proxy{{Index: 0}, {Index: 1}, {Index: 2}}
	proxy.Retag(proxies, positions, 1)

	aabb := geom.AABB{Lower: geom.Vec2{X: -1, Y: -1}, Upper: geom.Vec2{X: 1, Y: 1}}

	calls := 0
	QueryAABB(proxies, positions, aabb, 1, func(i int) bool {
		calls++
		return false
	})
	if calls != 1 {
		t.Fatalf("expected exactly 1 call before stopping, got %d", calls)
	}
}

func TestRayCastHitsParticleOnSegment(t *testing.T) {
	positions := []geom.Vec2{{X: 5, Y: 0}}
	proxies := []proxy.Proxy{{Index: 0}}
	proxy.Retag(proxies, positions, 1)

	var hitIndex = -1
	var hitFraction float32
	RayCast(proxies, positions, geom.Vec2{X: 0, Y: 0}, geom.Vec2{X: 10, Y: 0}, 0.5, 1,
		func(index int, fraction float32, point, normal geom.Vec2) float32 {
			hitIndex = index
			hitFraction = fraction
			return fraction
		})

	if hitIndex != 0 {
		t.Fatalf("expected to hit particle 0, got %d", hitIndex)
	}
	if hitFraction < 0.4 || hitFraction > 0.5 {
		t.Errorf("expected fraction near 0.45, got %f", hitFraction)
	}
}

func TestRayCastStopsOnNegativeFraction(t *testing.T) {
	positions := []geom.Vec2{{X: 2, Y: 0}, {X: 8, Y: 0}}
	proxies := []proxy.Proxy{{Index: 0}, {Index: 1}}
	proxy.Retag(proxies, positions, 1)

	calls := 0
	RayCast(proxies, positions, geom.Vec2{X: 0, Y: 0}, geom.Vec2{X: 10, Y: 0}, 0.5, 1,
		func(index int, fraction float32, point, normal geom.Vec2) float32 {
			calls++
			return -1
		})

	if calls != 1 {
		t.Fatalf("expected exactly 1 call before the negative-fraction callback stops the cast, got %d", calls)
	}
}

func TestRayCastMissesWhenOffSegment(t *testing.T) {
	positions := []geom.Vec2{{X: 5, Y: 5}}
	proxies := []proxy.Proxy{{Index: 0}}
	proxy.Retag(proxies, positions, 1)

	hit := false
	RayCast(proxies, positions, geom.Vec2{X: 0, Y: 0}, geom.Vec2{X: 10, Y: 0}, 0.5, 1,
		func(index int, fraction float32, point, normal geom.Vec2) float32 {
			hit = true
			return fraction
		})
	if hit {
		t.Errorf("expected no hit for a particle far off the segment")
	}
}
