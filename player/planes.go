package player

import (
	"github.com/akmonengine/pmove/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

// MAX_CLIP_PLANES bounds the planes a single slide move can collect
const MAX_CLIP_PLANES = 5

// clipPlanes is the fixed-capacity set of planes met during one slide move
type clipPlanes struct {
	normals [MAX_CLIP_PLANES]mgl64.Vec3
	count   int
}

func (c *clipPlanes) reset() {
	c.count = 0
}

func (c *clipPlanes) full() bool {
	return c.count >= MAX_CLIP_PLANES
}

// add appends normal, it returns false when the set is full
func (c *clipPlanes) add(normal mgl64.Vec3) bool {
	if c.full() {
		return false
	}
	c.normals[c.count] = normal
	c.count++
	return true
}

// contains reports whether a plane is almost parallel to normal
func (c *clipPlanes) contains(normal mgl64.Vec3) bool {
	for i := 0; i < c.count; i++ {
		if normal.Dot(c.normals[i]) > 0.99 {
			return true
		}
	}
	return false
}

// clip makes velocity parallel to every plane it moves into.
// A velocity caught between two planes slides along their crease, it is
// stopped when a third plane blocks the crease too.
func (c *clipPlanes) clip(velocity, endVelocity mgl64.Vec3, gravity bool) (mgl64.Vec3, mgl64.Vec3, bool) {
	for i := 0; i < c.count; i++ {
		planeI := c.normals[i]
		if velocity.Dot(planeI) >= 0.1 {
			continue
		}

		clipped := constraint.ClipVelocity(velocity, planeI, constraint.OVERCLIP)
		endClipped := endVelocity
		if gravity {
			endClipped = constraint.ClipVelocity(endVelocity, planeI, constraint.OVERCLIP)
		}

		for j := 0; j < c.count; j++ {
			if j == i {
				continue
			}
			planeJ := c.normals[j]
			if clipped.Dot(planeJ) >= 0.1 {
				continue
			}

			clipped = constraint.ClipVelocity(clipped, planeJ, constraint.OVERCLIP)
			if gravity {
				endClipped = constraint.ClipVelocity(endClipped, planeJ, constraint.OVERCLIP)
			}

			if clipped.Dot(planeI) >= 0 {
				continue
			}

			// Slide along the crease
			dir := normalize(planeI.Cross(planeJ))
			clipped = dir.Mul(dir.Dot(velocity))
			if gravity {
				endClipped = dir.Mul(dir.Dot(endVelocity))
			}

			for k := 0; k < c.count; k++ {
				if k == i || k == j {
					continue
				}
				if clipped.Dot(c.normals[k]) >= 0.1 {
					continue
				}
				return mgl64.Vec3{}, endVelocity, true
			}
		}

		return clipped, endClipped, false
	}

	return velocity, endVelocity, false
}
