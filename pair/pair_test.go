package pair

import (
	"math"
	"testing"

	"github.com/pthm-cable/particlecore/contact"
	"github.com/pthm-cable/particlecore/geom"
	"github.com/pthm-cable/particlecore/particle"
)

func TestBuildPairsCapturesRestLength(t *testing.T) {
	// Spring pair scenario from spec §8: two particles at (0,0) and (0.5,0).
	positions := []geom.Vec2{{X: 0, Y: 0}, {X: 0.5, Y: 0}}
	contacts := []contact.Contact{{IndexA: 0, IndexB: 1, Flags: particle.SpringFlag, Weight: 0.5}}

	pairs := BuildPairs(nil, contacts, positions, 1.0, 0, 2)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if math.Abs(float64(pairs[0].Distance-0.5)) > 1e-6 {
		t.Errorf("expected rest distance 0.5, got %f", pairs[0].Distance)
	}
}

func TestBuildPairsSkipsNonSpringContacts(t *testing.T) {
	positions := []geom.Vec2{{X: 0, Y: 0}, {X: 0.5, Y: 0}}
	contacts := []contact.Contact{{IndexA: 0, IndexB: 1, Flags: particle.ViscousFlag}}
	pairs := BuildPairs(nil, contacts, positions, 1.0, 0, 2)
	if len(pairs) != 0 {
		t.Fatalf("expected no pairs for non-spring contact, got %d", len(pairs))
	}
}

func TestBuildTriadsSkipsWithoutElasticFlag(t *testing.T) {
	positions := []geom.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	flags := []particle.Flags{0, 0, 0}
	triads := BuildTriads(nil, positions, flags, 1.0, 0, 3, 1.0, 4.0)
	if len(triads) != 0 {
		t.Fatalf("expected no triads without elastic flag, got %d", len(triads))
	}
}

func TestBuildTriadsProducesTriadForElasticTriangle(t *testing.T) {
	positions := []geom.Vec2{{X: 0, Y: 0}, {X: 0.5, Y: 0}, {X: 0, Y: 0.5}}
	flags := []particle.Flags{particle.ElasticFlag, particle.ElasticFlag, particle.ElasticFlag}
	triads := BuildTriads(nil, positions, flags, 1.0, 0, 3, 1.0, 4.0)
	if len(triads) != 1 {
		t.Fatalf("expected 1 triad, got %d", len(triads))
	}
	tri := triads[0]
	centroidCheck := tri.Pa.Add(tri.Pb).Add(tri.Pc)
	if centroidCheck.Length() > 1e-4 {
		t.Errorf("expected reference positions relative to centroid to sum to ~0, got %+v", centroidCheck)
	}
}
