package pmove

import (
	"math"
	"testing"

	"github.com/akmonengine/pmove/actor"
	"github.com/akmonengine/pmove/player"
	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-9

// createBox creates a body centered on position
func createBox(name string, position mgl64.Vec3, halfExtents mgl64.Vec3, bodyType actor.BodyType) *actor.RigidBody {
	return actor.NewRigidBody(
		actor.NewEntity(name, position),
		actor.NewAABBFromHalfExtents(halfExtents),
		bodyType,
	)
}

func vecAlmostEqual(a, b mgl64.Vec3) bool {
	return math.Abs(a[0]-b[0]) < epsilon && math.Abs(a[1]-b[1]) < epsilon && math.Abs(a[2]-b[2]) < epsilon
}

// countingPolicy records how many times it is asked
type countingPolicy struct {
	calls  int
	accept bool
}

func (c *countingPolicy) Collide(*actor.Entity) bool {
	c.calls++
	return c.accept
}

// recordingController stores the position of a body when updated
type recordingController struct {
	body      *actor.RigidBody
	positions []mgl64.Vec3
	dts       []float64
}

func (r *recordingController) Update(dt float64) {
	r.positions = append(r.positions, r.body.Entity.Position)
	r.dts = append(r.dts, dt)
}

// =============================================================================
// World Tests
// =============================================================================

func TestNewWorld(t *testing.T) {
	world := NewWorld()

	if world.Workers != DEFAULT_WORKERS {
		t.Errorf("Workers = %d, want %d", world.Workers, DEFAULT_WORKERS)
	}
	if len(world.Bodies) != 0 {
		t.Errorf("expected an empty world, got %d bodies", len(world.Bodies))
	}
}

func TestWorld_AddRemoveBody(t *testing.T) {
	world := NewWorld()
	bodyA := createBox("A", mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic)
	bodyB := createBox("B", mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic)
	bodyC := createBox("C", mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic)

	world.AddBody(bodyA)
	world.AddBody(bodyB)
	world.AddBody(bodyC)

	world.RemoveBody(bodyB)

	bodies := world.PhysicsBodies()
	if len(bodies) != 2 || bodies[0] != bodyA || bodies[1] != bodyC {
		t.Errorf("bodies after removal = %v, want [A C] in order", bodies)
	}

	// Removing an unknown body is a no-op
	world.RemoveBody(bodyB)
	if len(world.Bodies) != 2 {
		t.Errorf("expected 2 bodies, got %d", len(world.Bodies))
	}
}

// =============================================================================
// Collision Pass Tests
// =============================================================================

func TestResolveCollisions_SkipRules(t *testing.T) {
	tests := []struct {
		name  string
		typeA actor.BodyType
		typeB actor.BodyType
	}{
		{"static against static", actor.BodyTypeStatic, actor.BodyTypeStatic},
		{"bullet against bullet", actor.BodyTypeBullet, actor.BodyTypeBullet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world := NewWorld()
			bodyA := createBox("A", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}, tt.typeA)
			bodyB := createBox("B", mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{1, 1, 1}, tt.typeB)
			bodyA.Velocity = mgl64.Vec3{1, 0, 0}
			bodyB.Velocity = mgl64.Vec3{-1, 0, 0}
			world.AddBody(bodyA)
			world.AddBody(bodyB)

			capture := &eventCapture{}
			world.Events.Subscribe(COLLIDE, capture.capture)

			world.ResolveCollisions()

			if bodyA.Entity.Position != (mgl64.Vec3{0, 0, 0}) || bodyB.Entity.Position != (mgl64.Vec3{0.5, 0, 0}) {
				t.Errorf("positions changed: %v, %v", bodyA.Entity.Position, bodyB.Entity.Position)
			}
			if bodyA.Velocity != (mgl64.Vec3{1, 0, 0}) || bodyB.Velocity != (mgl64.Vec3{-1, 0, 0}) {
				t.Errorf("velocities changed: %v, %v", bodyA.Velocity, bodyB.Velocity)
			}
			if capture.count() != 0 {
				t.Errorf("expected no COLLIDE event, got %d", capture.count())
			}
		})
	}
}

func TestResolveCollisions_StaticPushOut(t *testing.T) {
	tests := []struct {
		name        string
		staticFirst bool
	}{
		{"static first", true},
		{"dynamic first", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world := NewWorld()
			floor := createBox("floor", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{5, 1, 5}, actor.BodyTypeStatic)
			box := createBox("box", mgl64.Vec3{0, 1.5, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic)
			box.Velocity = mgl64.Vec3{0, -3, 0}

			if tt.staticFirst {
				world.AddBody(floor)
				world.AddBody(box)
			} else {
				world.AddBody(box)
				world.AddBody(floor)
			}

			world.ResolveCollisions()

			if !vecAlmostEqual(box.Entity.Position, mgl64.Vec3{0, 2.0005, 0}) {
				t.Errorf("box position = %v, want {0 2.0005 0}", box.Entity.Position)
			}
			if !vecAlmostEqual(box.Velocity, mgl64.Vec3{0, 0.003, 0}) {
				t.Errorf("box velocity = %v, want {0 0.003 0}", box.Velocity)
			}
			if floor.Entity.Position != (mgl64.Vec3{0, 0, 0}) {
				t.Errorf("static floor moved to %v", floor.Entity.Position)
			}
		})
	}
}

func TestResolveCollisions_DynamicSplit(t *testing.T) {
	world := NewWorld()
	bodyA := createBox("A", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic)
	bodyB := createBox("B", mgl64.Vec3{1.5, 0, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic)
	bodyA.Velocity = mgl64.Vec3{2, 0, 0}
	world.AddBody(bodyA)
	world.AddBody(bodyB)

	world.ResolveCollisions()

	if !vecAlmostEqual(bodyA.Entity.Position, mgl64.Vec3{-1.001, 0, 0}) {
		t.Errorf("A position = %v, want {-1.001 0 0}", bodyA.Entity.Position)
	}
	if !vecAlmostEqual(bodyB.Entity.Position, mgl64.Vec3{2.501, 0, 0}) {
		t.Errorf("B position = %v, want {2.501 0 0}", bodyB.Entity.Position)
	}
	if bodyA.Velocity != (mgl64.Vec3{2, 0, 0}) {
		t.Errorf("A velocity = %v, movable pairs keep their velocity", bodyA.Velocity)
	}
}

func TestResolveCollisions_TouchingIsNotOverlapping(t *testing.T) {
	world := NewWorld()
	bodyA := createBox("A", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic)
	bodyB := createBox("B", mgl64.Vec3{2, 0, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic)
	world.AddBody(bodyA)
	world.AddBody(bodyB)

	capture := &eventCapture{}
	world.Events.Subscribe(COLLIDE, capture.capture)

	world.ResolveCollisions()

	if capture.count() != 0 {
		t.Errorf("touching faces should not collide, got %d events", capture.count())
	}
}

func TestResolveCollisions_CollideEvents(t *testing.T) {
	world := NewWorld()
	bodyA := createBox("A", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic)
	bodyB := createBox("B", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic)
	world.AddBody(bodyA)
	world.AddBody(bodyB)

	captureA := &eventCapture{}
	captureB := &eventCapture{}
	world.Events.On(bodyA.Entity, COLLIDE, captureA.capture)
	world.Events.On(bodyB.Entity, COLLIDE, captureB.capture)

	world.ResolveCollisions()

	if captureA.count() != 1 || captureB.count() != 1 {
		t.Fatalf("expected 1 COLLIDE event per entity, got %d and %d", captureA.count(), captureB.count())
	}
	if event := captureA.events[0].(CollideEvent); event.Entity != bodyA.Entity || event.Other != bodyB.Entity {
		t.Errorf("A received %+v", event)
	}
	if event := captureB.events[0].(CollideEvent); event.Entity != bodyB.Entity || event.Other != bodyA.Entity {
		t.Errorf("B received %+v", event)
	}
}

func TestResolveCollisions_BothPoliciesRun(t *testing.T) {
	world := NewWorld()
	bodyA := createBox("A", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic)
	bodyB := createBox("B", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic)
	policyA := &countingPolicy{accept: false}
	policyB := &countingPolicy{accept: true}
	bodyA.Policy = policyA
	bodyB.Policy = policyB
	world.AddBody(bodyA)
	world.AddBody(bodyB)

	capture := &eventCapture{}
	world.Events.Subscribe(COLLIDE, capture.capture)

	world.ResolveCollisions()

	if policyA.calls != 1 || policyB.calls != 1 {
		t.Errorf("policy calls = %d, %d, want 1, 1", policyA.calls, policyB.calls)
	}
	if bodyA.Entity.Position != (mgl64.Vec3{0, 0, 0}) || bodyB.Entity.Position != (mgl64.Vec3{1, 0, 0}) {
		t.Error("a vetoed collision should not be resolved")
	}
	if capture.count() != 0 {
		t.Errorf("a vetoed collision should not notify, got %d events", capture.count())
	}
}

func TestResolveCollisions_BulletVeto(t *testing.T) {
	world := NewWorld()
	target := createBox("target", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic)
	bullet := createBox("bullet", mgl64.Vec3{0.2, 0, 0}, mgl64.Vec3{0.1, 0.1, 0.1}, actor.BodyTypeBullet)
	hits := 0
	bullet.Policy = actor.FilterPolicy(func(other *actor.Entity) bool {
		hits++
		return false
	})
	world.AddBody(target)
	world.AddBody(bullet)

	capture := &eventCapture{}
	world.Events.Subscribe(COLLIDE, capture.capture)

	world.ResolveCollisions()

	if hits != 1 {
		t.Errorf("bullet policy called %d times, want 1", hits)
	}
	if target.Entity.Position != (mgl64.Vec3{0, 0, 0}) || bullet.Entity.Position != (mgl64.Vec3{0.2, 0, 0}) {
		t.Error("a vetoed bullet hit should not be resolved")
	}
	if capture.count() != 0 {
		t.Errorf("a vetoed bullet hit should not notify, got %d events", capture.count())
	}
}

func TestResolveCollisions_BulletHit(t *testing.T) {
	world := NewWorld()
	target := createBox("target", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeStatic)
	bullet := createBox("bullet", mgl64.Vec3{0.2, 0, 0}, mgl64.Vec3{0.1, 0.1, 0.1}, actor.BodyTypeBullet)
	world.AddBody(bullet)
	world.AddBody(target)

	capture := &eventCapture{}
	world.Events.On(target.Entity, COLLIDE, capture.capture)

	world.ResolveCollisions()

	if capture.count() != 1 {
		t.Fatalf("target should be notified once, got %d", capture.count())
	}
	if event := capture.events[0].(CollideEvent); event.Other != bullet.Entity {
		t.Errorf("target hit by %v, want the bullet", event.Other)
	}
	if bullet.WorldBox().Overlaps(target.WorldBox()) {
		t.Error("bullet should be pushed out of the static target")
	}
}

func TestResolveCollisions_RemoveBodyDuringPass(t *testing.T) {
	world := NewWorld()
	target := createBox("target", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic)
	bullet := createBox("bullet", mgl64.Vec3{0.2, 0, 0}, mgl64.Vec3{0.1, 0.1, 0.1}, actor.BodyTypeBullet)
	far := createBox("far", mgl64.Vec3{50, 0, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic)
	farPolicy := &countingPolicy{accept: true}
	far.Policy = farPolicy

	// the bullet is destroyed by its own hit
	bullet.Policy = actor.FilterPolicy(func(other *actor.Entity) bool {
		world.RemoveBody(bullet)
		return false
	})
	world.AddBody(target)
	world.AddBody(bullet)
	world.AddBody(far)

	selfCollisions := 0
	world.Events.Subscribe(COLLIDE, func(event Event) {
		collide := event.(CollideEvent)
		if collide.Entity == collide.Other {
			selfCollisions++
		}
	})

	world.ResolveCollisions()

	if selfCollisions != 0 {
		t.Errorf("got %d COLLIDE events of a body with itself", selfCollisions)
	}
	if farPolicy.calls != 0 {
		t.Errorf("far policy called %d times, want 0", farPolicy.calls)
	}
	bodies := world.PhysicsBodies()
	if len(bodies) != 2 || bodies[0] != target || bodies[1] != far {
		t.Errorf("bodies after the pass = %v, want [target far]", bodies)
	}

	// the removal bookkeeping does not leak into the next pass
	world.AddBody(bullet)
	bullet.Policy = actor.DefaultPolicy{}
	capture := &eventCapture{}
	world.Events.On(bullet.Entity, COLLIDE, capture.capture)

	world.ResolveCollisions()

	if capture.count() != 1 {
		t.Errorf("re-added bullet should collide again, got %d events", capture.count())
	}
}

func TestWorld_ZeroValue(t *testing.T) {
	world := &World{}
	world.AddBody(createBox("A", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic))
	world.AddBody(createBox("B", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic))

	// Should not panic
	world.Step(0.1)

	capture := &eventCapture{}
	world.Events.Subscribe(COLLISION_EXIT, capture.capture)
	world.Step(0.1)

	if capture.count() != 1 {
		t.Errorf("expected 1 EXIT event, got %d", capture.count())
	}
}

func TestResolveCollisions_SequentialCorrections(t *testing.T) {
	world := NewWorld()
	floor := createBox("floor", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{5, 1, 5}, actor.BodyTypeStatic)
	lower := createBox("lower", mgl64.Vec3{0, 1.5, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic)
	upper := createBox("upper", mgl64.Vec3{0, 3.75, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic)
	world.AddBody(floor)
	world.AddBody(lower)
	world.AddBody(upper)

	capture := &eventCapture{}
	world.Events.On(upper.Entity, COLLIDE, capture.capture)

	world.ResolveCollisions()

	// lower is pushed out of the floor into upper, and the pair (lower, upper) sees it
	if capture.count() != 1 {
		t.Fatalf("upper should collide with the corrected lower body, got %d events", capture.count())
	}
	if !vecAlmostEqual(upper.Entity.Position, mgl64.Vec3{0, 4.751, 0}) {
		t.Errorf("upper position = %v, want {0 4.751 0}", upper.Entity.Position)
	}
	if !vecAlmostEqual(lower.Entity.Position, mgl64.Vec3{0, 0.9995, 0}) {
		t.Errorf("lower position = %v, want {0 0.9995 0}", lower.Entity.Position)
	}
}

// =============================================================================
// Step Tests
// =============================================================================

func TestWorld_Step_Integrate(t *testing.T) {
	for _, workers := range []int{0, 1, 4} {
		world := NewWorld()
		world.Workers = workers

		var dynamics []*actor.RigidBody
		for i := 0; i < 10; i++ {
			body := createBox("dynamic", mgl64.Vec3{float64(i) * 10, 0, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic)
			body.Velocity = mgl64.Vec3{0, 0, float64(i)}
			dynamics = append(dynamics, body)
			world.AddBody(body)
		}
		static := createBox("static", mgl64.Vec3{0, 100, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeStatic)
		static.Velocity = mgl64.Vec3{1, 0, 0}
		controlled := createBox("controlled", mgl64.Vec3{0, -100, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic)
		controlled.Velocity = mgl64.Vec3{1, 0, 0}
		controlled.Controlled = true
		world.AddBody(static)
		world.AddBody(controlled)

		world.Step(0.5)

		for i, body := range dynamics {
			want := mgl64.Vec3{float64(i) * 10, 0, float64(i) * 0.5}
			if !vecAlmostEqual(body.Entity.Position, want) {
				t.Errorf("workers %d: body %d position = %v, want %v", workers, i, body.Entity.Position, want)
			}
		}
		if static.Entity.Position != (mgl64.Vec3{0, 100, 0}) {
			t.Errorf("workers %d: static body moved to %v", workers, static.Entity.Position)
		}
		if controlled.Entity.Position != (mgl64.Vec3{0, -100, 0}) {
			t.Errorf("workers %d: controlled body moved to %v", workers, controlled.Entity.Position)
		}
	}
}

func TestWorld_Step_Order(t *testing.T) {
	world := NewWorld()
	floor := createBox("floor", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{5, 1, 5}, actor.BodyTypeStatic)
	box := createBox("box", mgl64.Vec3{0, 2.5, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic)
	box.Velocity = mgl64.Vec3{0, -2, 0}
	world.AddBody(floor)
	world.AddBody(box)

	controller := &recordingController{body: box}
	world.AddController(controller)

	capture := &eventCapture{}
	world.Events.Subscribe(COLLISION_ENTER, capture.capture)

	world.Step(0.5)

	// the controller runs after integration and before the collision pass
	if len(controller.positions) != 1 || !vecAlmostEqual(controller.positions[0], mgl64.Vec3{0, 1.5, 0}) {
		t.Errorf("controller saw %v, want the integrated position {0 1.5 0}", controller.positions)
	}
	if controller.dts[0] != 0.5 {
		t.Errorf("controller dt = %v, want 0.5", controller.dts[0])
	}
	if !vecAlmostEqual(box.Entity.Position, mgl64.Vec3{0, 2.0005, 0}) {
		t.Errorf("box position = %v, want pushed out of the floor", box.Entity.Position)
	}
	if capture.count() != 1 {
		t.Errorf("expected 1 ENTER event at the end of the step, got %d", capture.count())
	}
}

func TestWorld_Step_EnterExit(t *testing.T) {
	world := NewWorld()
	bodyA := createBox("A", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic)
	bodyB := createBox("B", mgl64.Vec3{1.5, 0, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic)
	world.AddBody(bodyA)
	world.AddBody(bodyB)

	capture := &eventCapture{}
	world.Events.Subscribe(COLLISION_ENTER, capture.capture)
	world.Events.Subscribe(COLLISION_STAY, capture.capture)
	world.Events.Subscribe(COLLISION_EXIT, capture.capture)

	world.Step(0.1)
	if capture.count() != 1 || !capture.hasEventType(COLLISION_ENTER) {
		t.Fatalf("step 1: expected one ENTER event, got %v", capture.events)
	}

	// separated by the first step
	capture.reset()
	world.Step(0.1)
	if capture.count() != 1 || !capture.hasEventType(COLLISION_EXIT) {
		t.Fatalf("step 2: expected one EXIT event, got %v", capture.events)
	}
}

func TestWorld_Step_PlayerStopsAtWall(t *testing.T) {
	world := NewWorld()
	floor := createBox("floor", mgl64.Vec3{0, -0.51, 0}, mgl64.Vec3{50, 0.5, 50}, actor.BodyTypeStatic)
	wall := createBox("wall", mgl64.Vec3{0, 1, -6}, mgl64.Vec3{5, 5, 0.5}, actor.BodyTypeStatic)
	body := createBox("player", mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0.5, 1, 0.5}, actor.BodyTypeDynamic)
	world.AddBody(floor)
	world.AddBody(wall)
	world.AddBody(body)

	p := player.New(body.Entity, body, world)
	world.AddController(p)

	for i := 0; i < 120; i++ {
		p.Command = mgl64.Vec3{0, 0, 127}
		world.Step(1.0 / 60.0)
	}

	position := body.Entity.Position
	if position.Z() < -5-1e-6 || position.Z() > -4.9 {
		t.Errorf("player z = %v, want stopped against the wall at -5", position.Z())
	}
	if math.Abs(position.Y()-1) > 1e-6 {
		t.Errorf("player y = %v, want 1 on the floor", position.Y())
	}
	if !p.Walking {
		t.Error("player should be walking")
	}
}
