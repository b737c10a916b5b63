package pmove

import (
	"log/slog"

	"github.com/akmonengine/pmove/actor"
)

const DEFAULT_WORKERS = 1

// Controller moves its own bodies once per step, before the collision pass
type Controller interface {
	Update(dt float64)
}

type World struct {
	// List of all bodies in the world, the collision pass visits them in this order
	Bodies      []*actor.RigidBody
	Controllers []Controller
	Workers     int

	Events Events
	Logger *slog.Logger

	// Bodies removed while the collision pass runs, skipped until it ends
	removed   map[*actor.RigidBody]bool
	resolving bool
}

// NewWorld creates an empty world
func NewWorld() *World {
	return &World{
		Workers: DEFAULT_WORKERS,
		Events:  NewEvents(),
	}
}

// AddBody adds a body to the world
func (w *World) AddBody(body *actor.RigidBody) {
	w.Bodies = append(w.Bodies, body)
}

// RemoveBody removes a body from the world.
// It is safe to call from a collision policy or a COLLIDE listener: the body is
// not visited again by the running collision pass.
func (w *World) RemoveBody(body *actor.RigidBody) {
	if w.resolving {
		if w.removed == nil {
			w.removed = make(map[*actor.RigidBody]bool)
		}
		w.removed[body] = true
	}

	k := -1
	for i, b := range w.Bodies {
		if b == body {
			k = i
			break
		}
	}

	if k != -1 {
		w.Bodies = append(w.Bodies[:k], w.Bodies[k+1:]...)
	}

	w.Events.forget(body)
}

// AddController registers a controller, updated every step in registration order
func (w *World) AddController(controller Controller) {
	w.Controllers = append(w.Controllers, controller)
}

// PhysicsBodies returns the bodies of the world, the controllers trace against them
func (w *World) PhysicsBodies() []*actor.RigidBody {
	return w.Bodies
}

// Step advances the simulation by dt:
// free bodies move by their velocity, controllers move their own bodies,
// then the collision pass fixes residual overlaps and the events are flushed.
func (w *World) Step(dt float64) {
	w.Workers = max(DEFAULT_WORKERS, w.Workers)

	w.integrate(dt)

	for _, controller := range w.Controllers {
		controller.Update(dt)
	}

	w.ResolveCollisions()

	w.Events.flush()
}

// integrate moves every body independently, it is safe to split between workers
func (w *World) integrate(dt float64) {
	task(w.Workers, w.Bodies, func(body *actor.RigidBody) {
		body.Integrate(dt)
	})
}

func (w *World) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}
