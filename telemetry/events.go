// Package telemetry provides structured per-step particle system metrics,
// solver phase timing, and state snapshots.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventParticleCreated EventType = iota
	EventParticleDestroyed
	EventGroupCreated
	EventGroupDestroyed
	EventGroupJoined
)

// Event represents a single telemetry event.
type Event struct {
	Type    EventType
	Tick    int32
	Index   int32 // particle index or group id, depending on Type
	OtherID int32 // for join events: the group id absorbed into Index
}

// NewParticleCreatedEvent creates a particle-creation event.
func NewParticleCreatedEvent(tick int32, index int) Event {
	return Event{Type: EventParticleCreated, Tick: tick, Index: int32(index)}
}

// NewParticleDestroyedEvent creates a particle-destruction event.
func NewParticleDestroyedEvent(tick int32, index int) Event {
	return Event{Type: EventParticleDestroyed, Tick: tick, Index: int32(index)}
}

// NewGroupCreatedEvent creates a group-creation event.
func NewGroupCreatedEvent(tick int32, groupID int32) Event {
	return Event{Type: EventGroupCreated, Tick: tick, Index: groupID}
}

// NewGroupDestroyedEvent creates a group-destruction event.
func NewGroupDestroyedEvent(tick int32, groupID int32) Event {
	return Event{Type: EventGroupDestroyed, Tick: tick, Index: groupID}
}

// NewGroupJoinedEvent creates a group-join event: otherID was absorbed into groupID.
func NewGroupJoinedEvent(tick int32, groupID, otherID int32) Event {
	return Event{Type: EventGroupJoined, Tick: tick, Index: groupID, OtherID: otherID}
}
