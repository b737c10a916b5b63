// Package player implements a Quake III style movement controller on top of swept box traces.
//
// The player moves its own body: it integrates its velocity, collects the planes it runs into and
// slides along them, so it never ends a tick inside the geometry it traced against.
package player

import (
	"log/slog"
	"math"

	"github.com/akmonengine/pmove/actor"
	"github.com/akmonengine/pmove/sweep"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// JUMP_THRESHOLD is the vertical command needed to jump
	JUMP_THRESHOLD = 10
	// GROUND_PROBE is the distance traced below the player to find the ground
	GROUND_PROBE = 0.25
	// NUM_BUMPS bounds the traces of a single slide move
	NUM_BUMPS = 4
	// CMD_MAX is the magnitude of a full command on one axis
	CMD_MAX = 127
)

// GroundNormal is the normal used for the ground, whatever the player stands on
var GroundNormal = mgl64.Vec3{0, 1, 0}

// BodySource lists the bodies the player traces against
type BodySource interface {
	PhysicsBodies() []*actor.RigidBody
}

// Bodies is a fixed BodySource
type Bodies []*actor.RigidBody

func (b Bodies) PhysicsBodies() []*actor.RigidBody { return b }

// JumpSound is notified every time the player jumps
type JumpSound interface {
	PlayJump()
}

type Option func(*Player)

// WithConfig replaces the default movement config
func WithConfig(config MovementConfig) Option {
	return func(p *Player) {
		p.Config = config
		p.Gravity = config.Gravity
		p.Speed = config.Speed
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Player) {
		p.Logger = logger
	}
}

func WithJumpSound(sound JumpSound) Option {
	return func(p *Player) {
		p.Sound = sound
	}
}

type Player struct {
	Entity *actor.Entity
	Body   *actor.RigidBody
	Scene  BodySource

	// Command is the wished movement: x strafes, y jumps, z moves forward.
	// Each component ranges from -127 to 127.
	Command mgl64.Vec3
	// ViewForward and ViewRight give the facing of the player
	ViewForward mgl64.Vec3
	ViewRight   mgl64.Vec3

	Walking bool
	// Jump latches a jump until the jump command is released
	Jump bool

	DT      float64
	Gravity float64
	Speed   float64
	Config  MovementConfig

	Sound  JumpSound
	Logger *slog.Logger

	tracer     *sweep.Tracer
	candidates []*actor.RigidBody
	planes     clipPlanes
}

// New creates a player moving body, the body is flagged as controlled so the world does not integrate it
func New(entity *actor.Entity, body *actor.RigidBody, scene BodySource, opts ...Option) *Player {
	config := DefaultMovementConfig()
	p := &Player{
		Entity:      entity,
		Body:        body,
		Scene:       scene,
		ViewForward: mgl64.Vec3{0, 0, -1},
		ViewRight:   mgl64.Vec3{1, 0, 0},
		Gravity:     config.Gravity,
		Speed:       config.Speed,
		Config:      config,
		tracer:      sweep.NewTracer(),
	}
	for _, opt := range opts {
		opt(p)
	}

	body.Controlled = true
	return p
}

// SetView faces the player toward yaw, in radians around the up axis.
// A zero yaw looks down -z.
func (p *Player) SetView(yaw float64) {
	sin, cos := math.Sincos(yaw)
	p.ViewForward = mgl64.Vec3{-sin, 0, -cos}
	p.ViewRight = mgl64.Vec3{cos, 0, -sin}
}

// Update moves the player for one tick of dt seconds
func (p *Player) Update(dt float64) {
	p.DT = dt

	if p.Command.Y() < JUMP_THRESHOLD {
		p.Jump = false
	}

	p.CheckGround()

	if p.Walking {
		p.WalkMove()
	} else {
		p.AirMove()
	}

	p.CheckGround()
}

// CheckGround probes just below the player, it walks if anything is hit
func (p *Player) CheckGround() {
	var trace sweep.Trace

	start := p.Entity.WorldPosition()
	end := start.Sub(mgl64.Vec3{0, GROUND_PROBE, 0})
	p.trace(&trace, start, end)

	p.Walking = trace.Blocked()
}

// trace sweeps the player body against the scene, ignoring itself and the projectiles
func (p *Player) trace(trace *sweep.Trace, start, end mgl64.Vec3) {
	p.candidates = p.candidates[:0]
	if p.Scene != nil {
		for _, body := range p.Scene.PhysicsBodies() {
			if body == p.Body || body.IsBullet() {
				continue
			}
			p.candidates = append(p.candidates, body)
		}
	}

	p.tracer.BodyTrace(p.candidates, p.Body, trace, start, end)
}

func (p *Player) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// normalize returns the unit vector of v, or the zero vector when v has no length
func normalize(v mgl64.Vec3) mgl64.Vec3 {
	length := v.Len()
	if length == 0 {
		return mgl64.Vec3{}
	}
	return v.Mul(1.0 / length)
}
