package actor

import (
	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies move freely and are pushed out of the bodies they overlap
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable (e.g., ground, walls)
	BodyTypeStatic

	// BodyTypeBullet bodies are projectiles, hit by point containment
	// They never interact with each other
	BodyTypeBullet
)

func (t BodyType) String() string {
	switch t {
	case BodyTypeDynamic:
		return "dynamic"
	case BodyTypeStatic:
		return "static"
	case BodyTypeBullet:
		return "bullet"
	}
	return "unknown"
}

// CollisionPolicy decides whether a body accepts an interaction with another entity.
// Returning false vetoes the interaction; side effects (damage, despawn) may still happen.
type CollisionPolicy interface {
	Collide(other *Entity) bool
}

// DefaultPolicy always resolves the collision
type DefaultPolicy struct{}

func (DefaultPolicy) Collide(*Entity) bool { return true }

// FilterPolicy delegates the verdict to a predicate
type FilterPolicy func(other *Entity) bool

func (f FilterPolicy) Collide(other *Entity) bool {
	return f(other)
}

// RigidBody is a translating box attached to an entity
type RigidBody struct {
	Entity *Entity // non-owning

	// LocalBox is expressed in the entity space, computed once at creation
	LocalBox AABB
	Velocity mgl64.Vec3 // world units/second

	BodyType BodyType
	Policy   CollisionPolicy

	// Controlled bodies are moved by a controller, the world integrator skips them
	Controlled bool
}

// NewRigidBody creates a new rigid body attached to entity
func NewRigidBody(entity *Entity, box AABB, bodyType BodyType) *RigidBody {
	return &RigidBody{
		Entity:   entity,
		LocalBox: box,
		BodyType: bodyType,
		Policy:   DefaultPolicy{},
	}
}

// WorldBox returns the local box translated by the entity world position
func (rb *RigidBody) WorldBox() AABB {
	return rb.LocalBox.Translate(rb.Entity.WorldPosition())
}

// BoxAt returns the local box translated to position
func (rb *RigidBody) BoxAt(position mgl64.Vec3) AABB {
	return rb.LocalBox.Translate(position)
}

// Collide asks the body policy whether the interaction with other goes on
func (rb *RigidBody) Collide(other *Entity) bool {
	if rb.Policy == nil {
		return true
	}
	return rb.Policy.Collide(other)
}

// Integrate advances the entity by the body velocity
func (rb *RigidBody) Integrate(dt float64) {
	if rb.BodyType == BodyTypeStatic || rb.Controlled {
		return
	}

	rb.Entity.Position = rb.Entity.Position.Add(rb.Velocity.Mul(dt))
}

func (rb *RigidBody) IsStatic() bool {
	return rb.BodyType == BodyTypeStatic
}

func (rb *RigidBody) IsBullet() bool {
	return rb.BodyType == BodyTypeBullet
}
