package constraint

import (
	"math"

	"github.com/akmonengine/pmove/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Penetration measures the overlap of boxA with boxB and returns the single axis
// translation that separates boxA from boxB with the least movement.
//
// On each axis the depth is the smaller of the entering and exiting gaps, signed
// toward the side boxA has to move to, and zero when the axis does not overlap.
// The axis with the smallest absolute depth wins, x before y before z on exact ties.
func Penetration(boxA, boxB actor.AABB) (mgl64.Vec3, int) {
	var depth mgl64.Vec3

	for axis := 0; axis < 3; axis++ {
		// d0 is the negative side gap, d1 the positive side gap
		d0 := boxB.Max[axis] - boxA.Min[axis]
		d1 := boxA.Max[axis] - boxB.Min[axis]

		if d0 > 0 && d1 > 0 {
			if d0 < d1 {
				depth[axis] = d0
			} else {
				depth[axis] = -d1
			}
		}
	}

	axis := 0
	for i := 1; i < 3; i++ {
		if math.Abs(depth[i]) < math.Abs(depth[axis]) {
			axis = i
		}
	}

	var penetration mgl64.Vec3
	penetration[axis] = depth[axis]
	return penetration, axis
}

var _ Constraint = (*ContactConstraint)(nil)

// ContactConstraint separates two overlapping bodies along their minimum translation axis.
// Resolution is positional and discrete: it is not time accurate.
type ContactConstraint struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
	// Penetration is the translation moving BodyA out of BodyB
	Penetration mgl64.Vec3
	Axis        int
}

// NewContactConstraint measures the current overlap of the two bodies
func NewContactConstraint(bodyA, bodyB *actor.RigidBody) *ContactConstraint {
	penetration, axis := Penetration(bodyA.WorldBox(), bodyB.WorldBox())

	return &ContactConstraint{
		BodyA:       bodyA,
		BodyB:       bodyB,
		Penetration: penetration,
		Axis:        axis,
	}
}

// SolvePosition pushes the bodies apart.
// A static side never moves: the other one takes the whole correction with the
// OVERCLIP bias. Two movable bodies share it, with a minimum separation of OVERCLIP.
func (c *ContactConstraint) SolvePosition() {
	bodyA := c.BodyA
	bodyB := c.BodyB

	switch {
	case bodyA.IsStatic():
		translate(bodyB.Entity, c.Penetration.Mul(-OVERCLIP))
	case bodyB.IsStatic():
		translate(bodyA.Entity, c.Penetration.Mul(OVERCLIP))
	default:
		half := c.Penetration.Mul(0.5)
		// Minimum level of separation, bodies would otherwise get stuck
		if half.Len() < OVERCLIP {
			if half.Len() == 0 {
				half[c.Axis] = OVERCLIP
			} else {
				half = safeNormalize(half).Mul(OVERCLIP)
			}
		}
		translate(bodyA.Entity, half)
		translate(bodyB.Entity, half.Mul(-1))
	}
}

// SolveVelocity clips the velocity of the body pushed out of a static body, so it
// does not keep moving into the surface. Movable pairs keep their velocities.
func (c *ContactConstraint) SolveVelocity() {
	normal := safeNormalize(c.Penetration)
	if normal.Len() == 0 {
		return
	}

	switch {
	case c.BodyA.IsStatic():
		c.BodyB.Velocity = ClipVelocity(c.BodyB.Velocity, normal.Mul(-1), OVERCLIP)
	case c.BodyB.IsStatic():
		c.BodyA.Velocity = ClipVelocity(c.BodyA.Velocity, normal, OVERCLIP)
	}
}

func translate(entity *actor.Entity, offset mgl64.Vec3) {
	entity.Position = entity.Position.Add(offset)
}
