package particle

import "github.com/pthm-cable/particlecore/geom"

// InvalidIndex is returned by CreateParticle when capacity is exhausted
// (spec §6, §7 "Capacity-exceeded").
const InvalidIndex = -1

// Column is one growable (or user-fixed) parallel array. It is generic so
// the buffer manager can apply one growth policy uniformly to position,
// velocity, flags, color, user data and depth columns alike (spec §4.A).
type Column[T any] struct {
	data         []T
	userSupplied bool // true once SetUserBuffer has been called; never grows past cap
}

// NewColumn allocates a system-owned column with the given starting capacity.
func NewColumn[T any](initialCap int) *Column[T] {
	return &Column[T]{data: make([]T, 0, initialCap)}
}

// SetUserBuffer installs a fixed, caller-owned backing array. The column
// never grows past len(buf); exceeding it is a hard cap (spec §4.A, §5).
func (c *Column[T]) SetUserBuffer(buf []T) {
	c.data = buf[:0]
	c.userSupplied = true
}

// Cap returns the column's current backing capacity.
func (c *Column[T]) Cap() int { return cap(c.data) }

// Data returns the live slice, length == Buffers.Count().
func (c *Column[T]) Data() []T { return c.data }

// grow extends the column to newCap, preserving existing values (spec §4.A
// "Growing preserves existing element values for indices [0, oldCount)").
// A user-supplied column silently refuses to grow past its fixed capacity.
func (c *Column[T]) grow(newCap int) {
	if newCap <= cap(c.data) {
		return
	}
	if c.userSupplied {
		return
	}
	nd := make([]T, len(c.data), newCap)
	copy(nd, c.data)
	c.data = nd
}

func (c *Column[T]) setLen(n int) { c.data = c.data[:n] }

// Buffers is the particle system's structure-of-arrays store. Flags,
// Position, Velocity and GroupRef always exist; Color, UserData and Depth
// are materialized on first use (spec §3, §4.A).
type Buffers struct {
	count       int
	minCapacity int
	maxCount    int // 0 = unbounded

	Flags    *Column[Flags]
	Position *Column[geom.Vec2]
	Velocity *Column[geom.Vec2]
	GroupRef *Column[int32] // group id or -1; kept as int32 to avoid an import cycle with package group

	Color    *Column[Color]
	UserData *Column[any]
	Depth    *Column[float32]
}

// NewBuffers creates a buffer manager. minCapacity is the initial
// system-allocated size (spec's minParticleBufferCapacity); maxCount caps
// the live particle count regardless of buffer growth (0 = unbounded).
func NewBuffers(minCapacity, maxCount int) *Buffers {
	if minCapacity < 1 {
		minCapacity = 1
	}
	return &Buffers{
		minCapacity: minCapacity,
		maxCount:    maxCount,
		Flags:       NewColumn[Flags](minCapacity),
		Position:    NewColumn[geom.Vec2](minCapacity),
		Velocity:    NewColumn[geom.Vec2](minCapacity),
		GroupRef:    NewColumn[int32](minCapacity),
	}
}

// Count returns the live particle count.
func (b *Buffers) Count() int { return b.count }

// SetMaxCount overrides the hard particle cap (0 = unbounded).
func (b *Buffers) SetMaxCount(n int) { b.maxCount = n }

// RequireColor lazily materializes the color column up to the current
// capacity, matching requestParticleBuffer in the original.
func (b *Buffers) RequireColor() *Column[Color] {
	if b.Color == nil {
		b.Color = NewColumn[Color](b.Position.Cap())
		b.Color.grow(b.Position.Cap())
		b.Color.setLen(b.count)
	}
	return b.Color
}

// RequireUserData lazily materializes the user-data column.
func (b *Buffers) RequireUserData() *Column[any] {
	if b.UserData == nil {
		b.UserData = NewColumn[any](b.Position.Cap())
		b.UserData.grow(b.Position.Cap())
		b.UserData.setLen(b.count)
	}
	return b.UserData
}

// RequireDepth lazily materializes the depth column.
func (b *Buffers) RequireDepth() *Column[float32] {
	if b.Depth == nil {
		b.Depth = NewColumn[float32](b.Position.Cap())
		b.Depth.grow(b.Position.Cap())
		b.Depth.setLen(b.count)
	}
	return b.Depth
}

// currentCap returns the smallest current capacity across every allocated
// required column (they are kept in lockstep, but be defensive).
func (b *Buffers) currentCap() int {
	c := b.Flags.Cap()
	for _, other := range []int{b.Position.Cap(), b.Velocity.Cap(), b.GroupRef.Cap()} {
		if other < c {
			c = other
		}
	}
	return c
}

// growTo grows every allocated column to accommodate at least newCount
// particles, respecting the doubling-with-user-cap policy in spec §4.A:
// "the new capacity is min(2*count, userCap) across all user-supplied caps."
// It reports whether newCount can be satisfied.
func (b *Buffers) growTo(newCount int) bool {
	if b.maxCount != 0 && newCount > b.maxCount {
		return false
	}
	if newCount <= b.currentCap() {
		return true
	}

	target := 2 * b.count
	if target < b.minCapacity {
		target = b.minCapacity
	}
	if target < newCount {
		target = newCount
	}

	for _, userCap := range b.userCaps() {
		if userCap < target {
			target = userCap
		}
	}
	if newCount > target {
		return false
	}

	b.Flags.grow(target)
	b.Position.grow(target)
	b.Velocity.grow(target)
	b.GroupRef.grow(target)
	if b.Color != nil {
		b.Color.grow(target)
	}
	if b.UserData != nil {
		b.UserData.grow(target)
	}
	if b.Depth != nil {
		b.Depth.grow(target)
	}
	return true
}

func (b *Buffers) userCaps() []int {
	var caps []int
	cols := []interface {
		Cap() int
	}{}
	if b.Flags.userSupplied {
		cols = append(cols, b.Flags)
	}
	if b.Position.userSupplied {
		cols = append(cols, b.Position)
	}
	if b.Velocity.userSupplied {
		cols = append(cols, b.Velocity)
	}
	if b.GroupRef.userSupplied {
		cols = append(cols, b.GroupRef)
	}
	if b.Color != nil && b.Color.userSupplied {
		cols = append(cols, b.Color)
	}
	if b.UserData != nil && b.UserData.userSupplied {
		cols = append(cols, b.UserData)
	}
	if b.Depth != nil && b.Depth.userSupplied {
		cols = append(cols, b.Depth)
	}
	for _, c := range cols {
		caps = append(caps, c.Cap())
	}
	return caps
}

// Def describes a new particle (spec §6 ParticleDef).
type Def struct {
	Flags    Flags
	Position geom.Vec2
	Velocity geom.Vec2
	Color    *Color
	UserData any
}

// Append grows the buffers if needed and appends one particle, returning its
// dense index or InvalidIndex if capacity is exhausted (spec §7).
func (b *Buffers) Append(def Def) int {
	newCount := b.count + 1
	if !b.growTo(newCount) {
		return InvalidIndex
	}
	idx := b.count
	b.Flags.data = append(b.Flags.data, def.Flags)
	b.Position.data = append(b.Position.data, def.Position)
	b.Velocity.data = append(b.Velocity.data, def.Velocity)
	b.GroupRef.data = append(b.GroupRef.data, -1)
	if def.Color != nil {
		col := b.RequireColor()
		col.data = append(col.data, *def.Color)
	} else if b.Color != nil {
		b.Color.data = append(b.Color.data, Color{})
	}
	if def.UserData != nil {
		ud := b.RequireUserData()
		ud.data = append(ud.data, def.UserData)
	} else if b.UserData != nil {
		b.UserData.data = append(b.UserData.data, nil)
	}
	if b.Depth != nil {
		b.Depth.data = append(b.Depth.data, 0)
	}
	b.count = idx + 1
	return idx
}

// SetCount overwrites the live particle count and truncates every allocated
// column to match; used by the zombie compactor (spec §4.H) after it has
// written the compacted prefix in place.
func (b *Buffers) SetCount(n int) {
	b.count = n
	b.Flags.setLen(n)
	b.Position.setLen(n)
	b.Velocity.setLen(n)
	b.GroupRef.setLen(n)
	if b.Color != nil {
		b.Color.setLen(n)
	}
	if b.UserData != nil {
		b.UserData.setLen(n)
	}
	if b.Depth != nil {
		b.Depth.setLen(n)
	}
}

// AllFlags returns the OR of every live particle's flags (spec §4.G step 1).
func (b *Buffers) AllFlags() Flags {
	var all Flags
	for _, f := range b.Flags.data {
		all |= f
	}
	return all
}
