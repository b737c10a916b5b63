package actor

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Entity is the scene node a body is attached to.
// The hierarchy only carries translations: bodies never rotate.
type Entity struct {
	ID       uuid.UUID
	Name     string
	Position mgl64.Vec3 // local position, relative to Parent
	Parent   *Entity
}

// NewEntity creates a root entity at the given local position
func NewEntity(name string, position mgl64.Vec3) *Entity {
	return &Entity{
		ID:       uuid.New(),
		Name:     name,
		Position: position,
	}
}

// Add attaches child under e
func (e *Entity) Add(child *Entity) *Entity {
	child.Parent = e
	return e
}

// WorldPosition sums the translations from the root down to e
func (e *Entity) WorldPosition() mgl64.Vec3 {
	position := e.Position
	for parent := e.Parent; parent != nil; parent = parent.Parent {
		position = position.Add(parent.Position)
	}
	return position
}

// SetWorldPosition moves e so that its world position becomes position
func (e *Entity) SetWorldPosition(position mgl64.Vec3) {
	if e.Parent == nil {
		e.Position = position
		return
	}
	e.Position = position.Sub(e.Parent.WorldPosition())
}
