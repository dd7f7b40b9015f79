// Package host declares the interfaces the particle core expects from the
// surrounding rigid-body physics engine (spec §6, "Outbound" interfaces).
// The core never implements these; a real engine (or a test double) does.
package host

import "github.com/pthm-cable/particlecore/geom"

// RayCastInput describes a ray-cast query against a single fixture.
type RayCastInput struct {
	P1, P2      geom.Vec2
	MaxFraction float32
}

// Body is a rigid body owned by the host world.
type Body interface {
	GetWorldCenter() geom.Vec2
	GetMass() float32
	GetInertia() float32
	GetLocalCenter() geom.Vec2
	GetLinearVelocityFromWorldPoint(point geom.Vec2) geom.Vec2
	ApplyLinearImpulse(impulse, point geom.Vec2, wake bool)
}

// Shape is a collision shape attached to a fixture.
type Shape interface {
	GetChildCount() int
	ComputeAABB(xf geom.Transform, childIndex int) geom.AABB
	TestPoint(xf geom.Transform, p geom.Vec2) bool
}

// Fixture is a shape bound to a body within the host world.
type Fixture interface {
	GetShape() Shape
	GetBody() Body
	IsSensor() bool
	GetAABB(childIndex int) geom.AABB
	// ComputeDistance returns the signed distance from point to the fixture's
	// shape (child childIndex) and the surface normal at the closest point.
	ComputeDistance(point geom.Vec2, childIndex int) (dist float32, normal geom.Vec2)
	// RayCast returns whether the segment in input hits the fixture, and if
	// so the hit fraction along the segment and the surface normal.
	RayCast(input RayCastInput, childIndex int) (fraction float32, normal geom.Vec2, hit bool)
}

// FixtureCallback is the capability the host calls back into for each
// fixture found by QueryAABB. Returning false stops the enumeration early.
type FixtureCallback func(f Fixture) bool

// World is the broad-phase query surface the core relies on. Gravity is
// read once per solve() call; QueryAABB must be executed synchronously and
// inline (spec §5 — no reentrant solve while the callback is on the stack).
type World interface {
	QueryAABB(cb FixtureCallback, aabb geom.AABB)
	Gravity() geom.Vec2
}
