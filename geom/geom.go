// Package geom holds the tiny set of 2-D math primitives the particle core
// needs (vectors, rotations, transforms, AABBs). The host physics world owns
// the real math library; this package only carries the shapes the core's
// public interfaces are expressed in terms of.
package geom

import "math"

// Vec2 is a 2-D vector or point.
type Vec2 struct {
	X, Y float32
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v*s.
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Neg returns -v.
func (v Vec2) Neg() Vec2 { return Vec2{-v.X, -v.Y} }

// LengthSquared returns |v|^2.
func (v Vec2) LengthSquared() float32 { return v.X*v.X + v.Y*v.Y }

// Length returns |v|.
func (v Vec2) Length() float32 { return float32(math.Sqrt(float64(v.LengthSquared()))) }

// Normalized returns v scaled to unit length, or the zero vector if v is zero.
func (v Vec2) Normalized() Vec2 {
	l := v.Length()
	if l < 1e-12 {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

// Dot returns a·b.
func Dot(a, b Vec2) float32 { return a.X*b.X + a.Y*b.Y }

// Cross returns the scalar 2-D cross product a×b.
func Cross(a, b Vec2) float32 { return a.X*b.Y - a.Y*b.X }

// Min returns the componentwise minimum of a and b.
func Min(a, b Vec2) Vec2 {
	return Vec2{minf(a.X, b.X), minf(a.Y, b.Y)}
}

// Max returns the componentwise maximum of a and b.
func Max(a, b Vec2) Vec2 {
	return Vec2{maxf(a.X, b.X), maxf(a.Y, b.Y)}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Rot is a 2-D rotation stored as (sin, cos) to avoid repeated trig calls.
type Rot struct {
	S, C float32
}

// NewRot builds a rotation from an angle in radians.
func NewRot(angle float32) Rot {
	return Rot{S: float32(math.Sin(float64(angle))), C: float32(math.Cos(float64(angle)))}
}

// Mul rotates v by r.
func (r Rot) Mul(v Vec2) Vec2 {
	return Vec2{r.C*v.X - r.S*v.Y, r.S*v.X + r.C*v.Y}
}

// Angle returns the angle represented by r.
func (r Rot) Angle() float32 { return float32(math.Atan2(float64(r.S), float64(r.C))) }

// Transform composes a rotation and a translation, applied as Q*v + P.
type Transform struct {
	P Vec2
	Q Rot
}

// Identity returns the identity transform.
func Identity() Transform { return Transform{Q: Rot{S: 0, C: 1}} }

// Mul applies the transform to a point.
func (t Transform) Mul(v Vec2) Vec2 { return t.Q.Mul(v).Add(t.P) }

// Compose returns the transform equivalent to applying b then a (a∘b).
func Compose(a, b Transform) Transform {
	return Transform{
		P: a.Mul(b.P),
		Q: Rot{
			S: a.Q.S*b.Q.C + a.Q.C*b.Q.S,
			C: a.Q.C*b.Q.C - a.Q.S*b.Q.S,
		},
	}
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Lower, Upper Vec2
}

// EmptyAABB returns an AABB primed for repeated Extend calls.
func EmptyAABB() AABB {
	inf := float32(math.MaxFloat32)
	return AABB{Lower: Vec2{inf, inf}, Upper: Vec2{-inf, -inf}}
}

// Extend grows the AABB to include p.
func (a *AABB) Extend(p Vec2) {
	a.Lower = Min(a.Lower, p)
	a.Upper = Max(a.Upper, p)
}

// Inflate grows the AABB by d on every side.
func (a AABB) Inflate(d float32) AABB {
	return AABB{
		Lower: Vec2{a.Lower.X - d, a.Lower.Y - d},
		Upper: Vec2{a.Upper.X + d, a.Upper.Y + d},
	}
}

// Contains reports whether p lies within the AABB.
func (a AABB) Contains(p Vec2) bool {
	return p.X >= a.Lower.X && p.X <= a.Upper.X && p.Y >= a.Lower.Y && p.Y <= a.Upper.Y
}
