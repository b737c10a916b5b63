package pmove

import (
	"slices"

	"github.com/akmonengine/pmove/actor"
	"github.com/akmonengine/pmove/constraint"
)

// Pair represents two bodies visited by the collision pass
type Pair struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

// skip reports whether the pair can never interact
func (p Pair) skip() bool {
	// Immovable objects
	if p.BodyA.IsStatic() && p.BodyB.IsStatic() {
		return true
	}
	// Projectiles don't collide with each other
	return p.BodyA.IsBullet() && p.BodyB.IsBullet()
}

// bullet splits a pair holding exactly one projectile
func (p Pair) bullet() (bullet, body *actor.RigidBody, ok bool) {
	switch {
	case p.BodyA.IsBullet():
		return p.BodyA, p.BodyB, true
	case p.BodyB.IsBullet():
		return p.BodyB, p.BodyA, true
	}
	return nil, nil, false
}

// ResolveCollisions runs the discrete collision pass over all the bodies of the world.
//
// Pairs are visited in index order (i < j) and every correction applies
// immediately, so a pair sees the positions left by the previous ones.
// This is an O(n²) scan, meant for a few dozen bodies.
//
// Callbacks may remove bodies during the pass, the scan runs on a snapshot and
// skips the removed ones.
func (w *World) ResolveCollisions() {
	bodies := slices.Clone(w.Bodies)

	w.resolving = true
	defer func() {
		w.resolving = false
		clear(w.removed)
	}()

	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			if w.removed[bodies[i]] {
				break
			}
			if w.removed[bodies[j]] {
				continue
			}
			w.resolvePair(Pair{BodyA: bodies[i], BodyB: bodies[j]})
		}
	}
}

func (w *World) resolvePair(pair Pair) {
	if pair.skip() {
		return
	}

	bodyA := pair.BodyA
	bodyB := pair.BodyB

	if bullet, body, ok := pair.bullet(); ok {
		if body.WorldBox().ContainsPoint(bullet.Entity.WorldPosition()) {
			if !bullet.Collide(body.Entity) {
				w.logger().Debug("bullet hit vetoed",
					"bullet", bullet.Entity.Name,
					"target", body.Entity.Name)
				return
			}
		}
		// the bullet box may still overlap without its center being inside
	}

	if !bodyA.WorldBox().Overlaps(bodyB.WorldBox()) {
		return
	}

	// Both policies run before the verdict, so one-shot effects happen even
	// when the physical resolution is vetoed
	acceptA := bodyA.Collide(bodyB.Entity)
	acceptB := bodyB.Collide(bodyA.Entity)
	if !acceptA || !acceptB {
		w.logger().Debug("collision vetoed",
			"bodyA", bodyA.Entity.Name,
			"bodyB", bodyB.Entity.Name)
		return
	}

	w.Events.recordCollision(bodyA, bodyB)
	w.Events.trigger(bodyA.Entity, CollideEvent{Entity: bodyA.Entity, Other: bodyB.Entity})
	w.Events.trigger(bodyB.Entity, CollideEvent{Entity: bodyB.Entity, Other: bodyA.Entity})

	w.solve(constraint.NewContactConstraint(bodyA, bodyB))
}

// solve applies a constraint: positions first, then velocities
func (w *World) solve(c constraint.Constraint) {
	c.SolvePosition()
	c.SolveVelocity()
}
