package pmove

import (
	"bytes"

	"github.com/akmonengine/pmove/actor"
)

const (
	// COLLIDE is delivered immediately, during the collision pass, to both entities of an overlapping pair
	COLLIDE EventType = iota
	COLLISION_ENTER
	COLLISION_STAY
	COLLISION_EXIT
)

type pairKey struct {
	bodyA *actor.RigidBody
	bodyB *actor.RigidBody
}

// makePairKey creates a normalized pair key, ordered by entity id
func makePairKey(bodyA, bodyB *actor.RigidBody) pairKey {
	if bytes.Compare(bodyB.Entity.ID[:], bodyA.Entity.ID[:]) < 0 {
		bodyA, bodyB = bodyB, bodyA
	}

	return pairKey{bodyA: bodyA, bodyB: bodyB}
}

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// CollideEvent notifies Entity that its box overlaps the box of Other
type CollideEvent struct {
	Entity *actor.Entity
	Other  *actor.Entity
}

func (e CollideEvent) Type() EventType { return COLLIDE }

// Collision events
type CollisionEnterEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }

type CollisionStayEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e CollisionStayEvent) Type() EventType { return COLLISION_STAY }

type CollisionExitEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e CollisionExitEvent) Type() EventType { return COLLISION_EXIT }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener
	// Listeners attached to a single entity
	entityListeners map[*actor.Entity]map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Collision tracking for Enter/Stay/Exit detection
	previousActivePairs map[pairKey]bool
	currentActivePairs  map[pairKey]bool
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		entityListeners:     make(map[*actor.Entity]map[EventType][]EventListener),
		buffer:              make([]Event, 0, 256),
		previousActivePairs: make(map[pairKey]bool),
		currentActivePairs:  make(map[pairKey]bool),
	}
}

// init allocates the maps of a zero value Events
func (e *Events) init() {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	if e.entityListeners == nil {
		e.entityListeners = make(map[*actor.Entity]map[EventType][]EventListener)
	}
	if e.previousActivePairs == nil {
		e.previousActivePairs = make(map[pairKey]bool)
	}
	if e.currentActivePairs == nil {
		e.currentActivePairs = make(map[pairKey]bool)
	}
}

// Subscribe adds a listener for an event type, for every entity
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.init()
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// On adds a listener for the events delivered to entity
func (e *Events) On(entity *actor.Entity, eventType EventType, listener EventListener) {
	e.init()
	listeners, ok := e.entityListeners[entity]
	if !ok {
		listeners = make(map[EventType][]EventListener)
		e.entityListeners[entity] = listeners
	}
	listeners[eventType] = append(listeners[eventType], listener)
}

// Off removes every listener attached to entity
func (e *Events) Off(entity *actor.Entity) {
	delete(e.entityListeners, entity)
}

// trigger delivers an event to entity right away
func (e *Events) trigger(entity *actor.Entity, event Event) {
	for _, listener := range e.entityListeners[entity][event.Type()] {
		listener(event)
	}
	for _, listener := range e.listeners[event.Type()] {
		listener(event)
	}
}

// recordCollision marks the pair as touching during the current step
func (e *Events) recordCollision(bodyA, bodyB *actor.RigidBody) {
	e.init()
	e.currentActivePairs[makePairKey(bodyA, bodyB)] = true
}

// forget drops the tracking state of a removed body
func (e *Events) forget(body *actor.RigidBody) {
	for pair := range e.previousActivePairs {
		if pair.bodyA == body || pair.bodyB == body {
			delete(e.previousActivePairs, pair)
		}
	}
	for pair := range e.currentActivePairs {
		if pair.bodyA == body || pair.bodyB == body {
			delete(e.currentActivePairs, pair)
		}
	}
	e.Off(body.Entity)
}

// processCollisionEvents compares current and previous pairs to detect Enter/Stay/Exit
func (e *Events) processCollisionEvents() {
	for pair := range e.currentActivePairs {
		if e.previousActivePairs[pair] {
			e.buffer = append(e.buffer, CollisionStayEvent{
				BodyA: pair.bodyA,
				BodyB: pair.bodyB,
			})
		} else {
			e.buffer = append(e.buffer, CollisionEnterEvent{
				BodyA: pair.bodyA,
				BodyB: pair.bodyB,
			})
		}
	}

	for pair := range e.previousActivePairs {
		if !e.currentActivePairs[pair] {
			e.buffer = append(e.buffer, CollisionExitEvent{
				BodyA: pair.bodyA,
				BodyB: pair.bodyB,
			})
		}
	}

	// Swap for next frame and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processCollisionEvents()

	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
