// Package sweep implements continuous collision queries between translating boxes.
//
// SweptAABB computes the time of impact of two axis-aligned boxes with the slab method:
// each axis yields an [entry, exit] interval, the boxes touch during the sweep only if
// the three intervals intersect. The latest entry axis gives the contact normal.
//
// Tracer.BodyTrace builds on it to move a body between two points against a list of
// candidate bodies, keeping the earliest blocking hit.
package sweep

import (
	"math"

	"github.com/akmonengine/pmove/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// QueryFunc is the signature of the precise time of impact query
type QueryFunc func(trace *Trace, boxA, boxB actor.AABB, velocity mgl64.Vec3)

// SweptAABB computes the earliest time in [0, 1] at which boxB, moving by velocity
// relative to boxA, first touches boxA.
//
// The trace is left untouched when no contact happens during the sweep, so its
// fraction keeps its reset value of 1. When the boxes already overlap, the trace
// reports AllSolid with a zero fraction and no normal.
//
// The normal is the unit axis of the latest entry, signed by the relative velocity:
// it points from B toward A when B moves into A, ties are broken in x, y, z order.
func SweptAABB(trace *Trace, boxA, boxB actor.AABB, velocity mgl64.Vec3) {
	if boxA.Overlaps(boxB) {
		trace.AllSolid = true
		trace.Fraction = 0
		return
	}

	t0 := 0.0
	t1 := math.Inf(1)
	entry := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}

	for axis := 0; axis < 3; axis++ {
		v := velocity[axis]

		// d0 is the negative side gap, d1 the positive side gap.
		// Both positive means the boxes overlap on this axis.
		d0 := boxB.Max[axis] - boxA.Min[axis]
		d1 := boxA.Max[axis] - boxB.Min[axis]

		switch {
		case v < 0:
			if d0 <= 0 {
				// B lies on the negative side and moves further away
				return
			}
			t1 = math.Min(-d0/v, t1)
			if d1 <= 0 {
				entry[axis] = d1 / v
				t0 = math.Max(entry[axis], t0)
			}
		case v > 0:
			if d1 <= 0 {
				return
			}
			t1 = math.Min(d1/v, t1)
			if d0 <= 0 {
				entry[axis] = -d0 / v
				t0 = math.Max(entry[axis], t0)
			}
		default:
			// no motion on a separated axis never closes the gap
			if d0 <= 0 || d1 <= 0 {
				return
			}
		}

		if t0 > t1 {
			return
		}
	}

	if t0 > 1 {
		// contact happens after the end of the sweep
		return
	}

	dominant := 0
	for axis := 1; axis < 3; axis++ {
		if entry[axis] > entry[dominant] {
			dominant = axis
		}
	}

	trace.Fraction = t0
	trace.Normal = mgl64.Vec3{}
	trace.Normal[dominant] = math.Copysign(1, velocity[dominant])
}

// Tracer moves bodies with BodyTrace.
// It owns the scratch trace of the candidate loop: a Tracer is not safe for
// concurrent use, and nothing it hands out may be retained past the next call.
type Tracer struct {
	// Query is the precise query run on each candidate surviving the swept volume test
	Query QueryFunc

	scratch Trace
}

// NewTracer creates a tracer using SweptAABB
func NewTracer() *Tracer {
	return &Tracer{Query: SweptAABB}
}

// BodyTrace moves mover from start to end against bodies and stores in trace the
// earliest blocking hit. The mover is skipped if present in bodies.
//
// The mover velocity is temporarily replaced by the requested displacement and
// restored before returning. Candidate bodies are never modified.
func (t *Tracer) BodyTrace(bodies []*actor.RigidBody, mover *actor.RigidBody, trace *Trace, start, end mgl64.Vec3) {
	trace.Reset()

	originalVelocity := mover.Velocity
	mover.Velocity = end.Sub(start)
	defer func() {
		mover.Velocity = originalVelocity
	}()

	query := t.Query
	if query == nil {
		query = SweptAABB
	}

	boxA := mover.BoxAt(start)
	sweptBox := boxA.Union(mover.BoxAt(end))

	for _, body := range bodies {
		if body == mover {
			continue
		}

		boxB := body.WorldBox()
		if !sweptBox.Overlaps(boxB) {
			continue
		}

		t.scratch.Reset()
		query(&t.scratch, boxA, boxB, body.Velocity.Sub(mover.Velocity))
		if t.scratch.Fraction < trace.Fraction {
			*trace = t.scratch
			trace.Body = body
		}
	}

	if trace.Fraction == 1 {
		trace.EndPos = end
		return
	}
	trace.EndPos = start.Add(end.Sub(start).Mul(trace.Fraction))
}
