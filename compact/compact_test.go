package compact

import (
	"testing"

	"github.com/pthm-cable/particlecore/contact"
	"github.com/pthm-cable/particlecore/geom"
	"github.com/pthm-cable/particlecore/group"
	"github.com/pthm-cable/particlecore/pair"
	"github.com/pthm-cable/particlecore/particle"
	"github.com/pthm-cable/particlecore/proxy"
)

func TestCompactRemovesZombiesAndRemapsEverything(t *testing.T) {
	buf := particle.NewBuffers(8, 0)
	for i := 0; i < 5; i++ {
		buf.Append(particle.Def{Position: geom.Vec2{X: float32(i)}})
	}
	// mark every 3rd zombie, per spec §8 scenario 5 pattern
	flags := buf.Flags.Data()
	flags[0] |= particle.Zombie
	flags[3] |= particle.Zombie

	groups := group.NewRegistry()
	g := groups.Create(group.Def{DestroyAutomatically: true}, 0, 5)

	proxies := []proxy.Proxy{{Index: 0}, {Index: 1}, {Index: 2}, {Index: 3}, {Index: 4}}
	contacts := []contact.Contact{
		{IndexA: 1, IndexB: 2},
		{IndexA: 0, IndexB: 1}, // touches a zombie, must be dropped
	}
	pairs := []pair.Pair{{IndexA: 2, IndexB: 4}}
	triads := []pair.Triad{{IndexA: 1, IndexB: 2, IndexC: 4}}

	var goodbyes []int
	res := Compact(buf, groups, proxies, contacts, nil, pairs, triads, func(i int) { goodbyes = append(goodbyes, i) })

	if buf.Count() != 3 {
		t.Fatalf("expected 3 surviving particles, got %d", buf.Count())
	}
	// surviving order is 1,2,4 -> new indices 0,1,2
	want := []float32{1, 2, 4}
	for i, p := range buf.Position.Data() {
		if p.X != want[i] {
			t.Errorf("survivor %d: got position.X=%f want %f", i, p.X, want[i])
		}
	}

	if len(res.Contacts) != 1 {
		t.Fatalf("expected 1 surviving contact, got %d", len(res.Contacts))
	}
	if res.Contacts[0].IndexA != 0 || res.Contacts[0].IndexB != 1 {
		t.Errorf("expected remapped contact (0,1), got (%d,%d)", res.Contacts[0].IndexA, res.Contacts[0].IndexB)
	}

	if len(res.Pairs) != 1 || res.Pairs[0].IndexA != 1 || res.Pairs[0].IndexB != 2 {
		t.Errorf("expected remapped pair (1,2), got %+v", res.Pairs)
	}
	if len(res.Triads) != 1 {
		t.Fatalf("expected 1 surviving triad, got %d", len(res.Triads))
	}

	if g.FirstIndex != 0 || g.LastIndex != 3 {
		t.Errorf("expected group range [0,3), got [%d,%d)", g.FirstIndex, g.LastIndex)
	}
	if len(goodbyes) != 0 {
		t.Errorf("expected no destruction-listener callbacks without the flag set, got %v", goodbyes)
	}
}

func TestCompactFiresDestructionListener(t *testing.T) {
	buf := particle.NewBuffers(4, 0)
	buf.Append(particle.Def{Flags: particle.Zombie | particle.DestructionListener})
	buf.Append(particle.Def{})

	groups := group.NewRegistry()

	var got []int
	Compact(buf, groups, nil, nil, nil, nil, nil, func(i int) { got = append(got, i) })

	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("expected destruction listener called once with old index 0, got %v", got)
	}
}
