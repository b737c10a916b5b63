package constraint

import (
	"github.com/go-gl/mathgl/mgl64"
)

// OVERCLIP slightly overshoots clipping and push-outs, so bodies do not stay in
// perpetual contact with the surface they were moved against
const OVERCLIP = 1.001

// Constraint corrects the state of the bodies it binds, positions first then velocities
type Constraint interface {
	SolvePosition()
	SolveVelocity()
}

// ClipVelocity removes the component of in that goes along normal.
// The removed amount is scaled by overbounce when moving into the plane, and
// divided by it when moving away, leaving a small push out of the plane.
func ClipVelocity(in mgl64.Vec3, normal mgl64.Vec3, overbounce float64) mgl64.Vec3 {
	backoff := in.Dot(normal)

	if backoff < 0 {
		backoff *= overbounce
	} else {
		backoff /= overbounce
	}

	return in.Sub(normal.Mul(backoff))
}

// safeNormalize returns the unit vector of v, or the zero vector when v has no length
func safeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	length := v.Len()
	if length == 0 {
		return mgl64.Vec3{}
	}
	return v.Mul(1.0 / length)
}
