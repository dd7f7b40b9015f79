package contact

import (
	"math"
	"testing"

	"github.com/pthm-cable/particlecore/geom"
	"github.com/pthm-cable/particlecore/particle"
	"github.com/pthm-cable/particlecore/proxy"
)

func TestAddContactWeightAndNormal(t *testing.T) {
	// Two colliding particles scenario from spec §8: diameter=1.0,
	// A at (0,0), B at (0.5,0) => distance 0.5, weight ~0.5, normal ~(1,0).
	positions := []geom.Vec2{{X: 0, Y: 0}, {X: 0.5, Y: 0}}
	flags := []particle.Flags{0, 0}

	contacts := AddContact(nil, 0, 1, positions, flags, 1.0, 1.0)
	if len(contacts) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(contacts))
	}
	c := contacts[0]
	if math.Abs(float64(c.Weight-0.5)) > 1e-4 {
		t.Errorf("expected weight ~0.5, got %f", c.Weight)
	}
	if math.Abs(float64(c.Normal.X-1)) > 1e-4 || math.Abs(float64(c.Normal.Y)) > 1e-4 {
		t.Errorf("expected normal ~(1,0), got %+v", c.Normal)
	}
	if math.Abs(float64(c.Normal.Length()-1)) > 1e-4 {
		t.Errorf("expected unit normal, got length %f", c.Normal.Length())
	}
}

func TestAddContactRejectsFarParticles(t *testing.T) {
	positions := []geom.Vec2{{X: 0, Y: 0}, {X: 5, Y: 0}}
	flags := []particle.Flags{0, 0}
	contacts := AddContact(nil, 0, 1, positions, flags, 1.0, 1.0)
	if len(contacts) != 0 {
		t.Fatalf("expected no contact for distant particles, got %d", len(contacts))
	}
}

func TestUpdateContactsFindsAllPairsCompleteness(t *testing.T) {
	// spec §8 invariant 3: completeness of the sweep. Build a small grid of
	// particles and check every close pair is present exactly once.
	var positions []geom.Vec2
	var flags []particle.Flags
	var proxies []proxy.Proxy
	n := 0
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			positions = append(positions, geom.Vec2{X: float32(x) * 0.3, Y: float32(y) * 0.3})
			flags = append(flags, 0)
			proxies = append(proxies, proxy.Proxy{Index: n})
			n++
		}
	}

	diameter := float32(1.0)
	contacts := UpdateContacts(proxies, positions, flags, diameter, 1/diameter, false)

	seen := map[[2]int]bool{}
	for _, c := range contacts {
		key := [2]int{c.IndexA, c.IndexB}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if seen[key] {
			t.Errorf("duplicate contact for pair %v", key)
		}
		seen[key] = true
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d2 := positions[i].Sub(positions[j]).LengthSquared()
			if d2 < diameter*diameter {
				if !seen[[2]int{i, j}] && !seen[[2]int{j, i}] {
					t.Errorf("missing expected contact between %d and %d (d2=%f)", i, j, d2)
				}
			}
		}
	}
}

func TestUpdateContactsExceptZombieRemovesZombieContacts(t *testing.T) {
	positions := []geom.Vec2{{X: 0, Y: 0}, {X: 0.2, Y: 0}}
	flags := []particle.Flags{particle.Zombie, 0}
	proxies := []proxy.Proxy{{Index: 0}, {Index: 1}}

	contacts := UpdateContacts(proxies, positions, flags, 1.0, 1.0, true)
	if len(contacts) != 0 {
		t.Fatalf("expected zombie contact to be filtered out, got %d", len(contacts))
	}
}
