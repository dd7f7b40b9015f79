// Package compact implements the zombie compaction pass (spec §4.H): it
// removes zombie particles and remaps every cross-referencing structure
// (proxies, contacts, body-contacts, pairs, triads, group ranges) so no
// live index ever points at a removed particle.
package compact

import (
	"github.com/pthm-cable/particlecore/contact"
	"github.com/pthm-cable/particlecore/group"
	"github.com/pthm-cable/particlecore/pair"
	"github.com/pthm-cable/particlecore/particle"
	"github.com/pthm-cable/particlecore/proxy"
)

// Result holds the post-compaction cross-reference structures.
type Result struct {
	Proxies      []proxy.Proxy
	Contacts     []contact.Contact
	BodyContacts []contact.BodyContact
	Pairs        []pair.Pair
	Triads       []pair.Triad
	GroupsDestroyed int
}

// Compact removes zombie particles from buf and remaps every dependent
// structure through the resulting index map. onZombie fires once per
// removed particle at its pre-compaction index, when it carried the
// destruction-listener flag (spec §6 DestructionListener.sayGoodbye).
func Compact(buf *particle.Buffers, groups *group.Registry,
	proxies []proxy.Proxy, contacts []contact.Contact, bodyContacts []contact.BodyContact,
	pairs []pair.Pair, triads []pair.Triad, onZombie func(oldIndex int)) Result {

	newIndex, newCount := buf.Compact(onZombie)

	outProxies := proxies[:0]
	for _, p := range proxies {
		if j := newIndex[p.Index]; j != particle.InvalidIndex {
			p.Index = j
			outProxies = append(outProxies, p)
		}
	}

	outContacts := contacts[:0]
	for _, c := range contacts {
		a, b := newIndex[c.IndexA], newIndex[c.IndexB]
		if a == particle.InvalidIndex || b == particle.InvalidIndex {
			continue
		}
		c.IndexA, c.IndexB = a, b
		outContacts = append(outContacts, c)
	}

	outBodyContacts := bodyContacts[:0]
	for _, c := range bodyContacts {
		j := newIndex[c.Index]
		if j == particle.InvalidIndex {
			continue
		}
		c.Index = j
		outBodyContacts = append(outBodyContacts, c)
	}

	outPairs := pairs[:0]
	for _, p := range pairs {
		a, b := newIndex[p.IndexA], newIndex[p.IndexB]
		if a == particle.InvalidIndex || b == particle.InvalidIndex {
			continue
		}
		p.IndexA, p.IndexB = a, b
		outPairs = append(outPairs, p)
	}

	outTriads := triads[:0]
	for _, tr := range triads {
		a, b, c := newIndex[tr.IndexA], newIndex[tr.IndexB], newIndex[tr.IndexC]
		if a == particle.InvalidIndex || b == particle.InvalidIndex || c == particle.InvalidIndex {
			continue
		}
		tr.IndexA, tr.IndexB, tr.IndexC = a, b, c
		outTriads = append(outTriads, tr)
	}

	groups.RemapAfterCompaction(newIndex, newCount)
	destroyed := groups.SweepDestroyed()

	return Result{
		Proxies:         outProxies,
		Contacts:        outContacts,
		BodyContacts:    outBodyContacts,
		Pairs:           outPairs,
		Triads:          outTriads,
		GroupsDestroyed: destroyed,
	}
}
