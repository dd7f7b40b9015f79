// Package particle owns the particle-level data model: the flags bitset,
// particle color, and the parallel structure-of-arrays buffers (spec §3,
// §4.A). It knows nothing about contacts, groups, or solvers — those live
// in sibling packages that operate on the slices this package manages.
package particle

// Flags is the per-particle bitset described in spec §3.
type Flags uint32

const (
	Zombie              Flags = 1 << iota // marked for removal at the next compaction
	WallFlag                              // infinite mass, velocity forced to zero
	SpringFlag                            // participates in spring pairs
	ElasticFlag                           // participates in elastic triads
	ViscousFlag                           // viscous drag against contacts
	PowderFlag                            // powder repulsion, no pressure contribution
	TensileFlag                           // surface-tension solver
	ColorMixingFlag                       // exchanges color with contacts
	DestructionListener                   // fires the destruction listener on removal
)

// PairFlags is the subset of flags that causes a spring pair to be created
// between two particles in contact (spec §4.D).
const PairFlags = SpringFlag

// TriadFlags is the subset of flags that causes an elastic triad to be
// built from a Voronoi cell (spec §4.D).
const TriadFlags = ElasticFlag

// NoPressureFlags marks particles whose density accumulator is zeroed
// before the pressure solve (spec §4.G "Pressure").
const NoPressureFlags = PowderFlag

// Has reports whether all bits in mask are set in f.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// Any reports whether any bit in mask is set in f.
func (f Flags) Any(mask Flags) bool { return f&mask != 0 }

// Color is an RGBA particle color in fixed-point channels, matching the
// original's ParticleColor and the >>8 fixed-point math in solveColorMixing.
type Color struct {
	R, G, B, A uint8
}
