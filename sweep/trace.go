package sweep

import (
	"github.com/akmonengine/pmove/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Trace is the outcome of a directed movement query from a start to an end point
type Trace struct {
	// AllSolid is set when the start position already overlaps something
	AllSolid bool
	// Fraction of the requested displacement that is safe, 1 means unobstructed
	Fraction float64
	EndPos   mgl64.Vec3
	// Normal of the plane that stopped the move, only meaningful when Fraction < 1
	Normal mgl64.Vec3
	// Body that stopped the move, set by BodyTrace
	Body *actor.RigidBody
}

// NewTrace returns a reset trace
func NewTrace() Trace {
	return Trace{Fraction: 1}
}

// Reset restores the unobstructed state, every query starts from it
func (t *Trace) Reset() {
	*t = Trace{Fraction: 1}
}

// Blocked reports whether the move did not complete
func (t *Trace) Blocked() bool {
	return t.Fraction < 1
}
