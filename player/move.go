package player

import (
	"math"

	"github.com/akmonengine/pmove/constraint"
	"github.com/akmonengine/pmove/sweep"
	"github.com/go-gl/mathgl/mgl64"
)

// Friction slows the player down while on the ground.
// Under 1 unit per second the horizontal velocity is dropped entirely.
func (p *Player) Friction() {
	velocity := p.Body.Velocity

	horizontal := velocity
	if p.Walking {
		// ignore slope movement
		horizontal[1] = 0
	}

	speed := horizontal.Len()
	if speed < 1 {
		p.Body.Velocity[0] = 0
		p.Body.Velocity[2] = 0
		return
	}

	drop := 0.0
	if p.Walking {
		control := math.Max(speed, p.Config.StopSpeed)
		drop += control * p.Config.Friction * p.DT
	}

	newSpeed := math.Max(speed-drop, 0) / speed
	p.Body.Velocity = velocity.Mul(newSpeed)
}

// CmdScale returns the factor turning the command into a speed.
// A diagonal command is not faster than a straight one.
func (p *Player) CmdScale() float64 {
	command := p.Command
	largest := math.Max(math.Abs(command.X()), math.Max(math.Abs(command.Y()), math.Abs(command.Z())))
	if largest == 0 {
		return 0
	}

	total := command.Len()
	return p.Speed * largest / (CMD_MAX * total)
}

// Accelerate adds velocity along wishdir, never above wishspeed along that direction
func (p *Player) Accelerate(wishdir mgl64.Vec3, wishspeed, accel float64) {
	currentSpeed := p.Body.Velocity.Dot(wishdir)
	addSpeed := wishspeed - currentSpeed
	if addSpeed <= 0 {
		return
	}

	accelSpeed := math.Min(accel*p.DT*wishspeed, addSpeed)
	p.Body.Velocity = p.Body.Velocity.Add(wishdir.Mul(accelSpeed))
}

// CheckJump starts a jump when the jump command is held and not latched yet
func (p *Player) CheckJump() bool {
	if p.Command.Y() < JUMP_THRESHOLD {
		return false
	}

	// The jump command must be released before jumping again
	if p.Jump {
		p.Command[1] = 0
		return false
	}

	p.Walking = false
	p.Jump = true
	p.Body.Velocity[1] = p.Config.JumpVelocity

	if p.Sound != nil {
		p.Sound.PlayJump()
	}
	return true
}

// WalkMove moves the player on the ground, or jumps
func (p *Player) WalkMove() {
	if p.CheckJump() {
		p.AirMove()
		return
	}

	p.Friction()

	fmove := p.Command.Z()
	smove := p.Command.X()
	scale := p.CmdScale()

	// Project the view on the ground
	p.ViewForward[1] = 0
	p.ViewRight[1] = 0
	p.ViewForward = normalize(constraint.ClipVelocity(p.ViewForward, GroundNormal, constraint.OVERCLIP))
	p.ViewRight = normalize(constraint.ClipVelocity(p.ViewRight, GroundNormal, constraint.OVERCLIP))

	wishvel := p.ViewForward.Mul(fmove).Add(p.ViewRight.Mul(smove))
	wishdir := normalize(wishvel)
	wishspeed := wishvel.Len() * scale

	p.Accelerate(wishdir, wishspeed, p.Config.Accelerate)

	p.Body.Velocity = constraint.ClipVelocity(p.Body.Velocity, GroundNormal, constraint.OVERCLIP)

	if p.Body.Velocity.X() == 0 && p.Body.Velocity.Z() == 0 {
		return
	}

	p.SlideMove(false)
}

// AirMove moves the player in the air, with little control and gravity
func (p *Player) AirMove() {
	p.Friction()

	fmove := p.Command.Z()
	smove := p.Command.X()
	scale := p.CmdScale()

	p.ViewForward[1] = 0
	p.ViewRight[1] = 0
	p.ViewForward = normalize(p.ViewForward)
	p.ViewRight = normalize(p.ViewRight)

	wishvel := p.ViewForward.Mul(fmove).Add(p.ViewRight.Mul(smove))
	wishvel[1] = 0
	wishdir := normalize(wishvel)
	wishspeed := wishvel.Len() * scale

	p.Accelerate(wishdir, wishspeed, p.Config.AirAccelerate)

	if p.Walking {
		p.Body.Velocity = constraint.ClipVelocity(p.Body.Velocity, GroundNormal, constraint.OVERCLIP)
	}

	p.SlideMove(true)
}

// SlideMove moves the player by its velocity over DT, sliding along what it hits.
// With gravity, the move uses the average of the velocity before and after the tick,
// and the player ends with the velocity after gravity.
// It returns false when the whole move went through on the first trace.
func (p *Player) SlideMove(gravity bool) bool {
	velocity := p.Body.Velocity

	var endVelocity mgl64.Vec3
	if gravity {
		endVelocity = velocity
		endVelocity[1] -= p.Gravity * p.DT
		velocity[1] = (velocity[1] + endVelocity[1]) * 0.5

		if p.Walking {
			// slide along the ground plane
			velocity = constraint.ClipVelocity(velocity, GroundNormal, constraint.OVERCLIP)
		}
	}

	timeLeft := p.DT

	planes := &p.planes
	planes.reset()
	if p.Walking {
		planes.add(GroundNormal)
	}
	// never turn against the original velocity
	planes.add(normalize(velocity))

	var trace sweep.Trace
	bumpCount := 0
	for ; bumpCount < NUM_BUMPS; bumpCount++ {
		start := p.Entity.WorldPosition()
		end := start.Add(velocity.Mul(timeLeft))
		p.trace(&trace, start, end)

		if trace.AllSolid {
			// entity is completely trapped in another solid
			velocity[1] = 0
			p.Body.Velocity = velocity
			p.logger().Debug("slide move started in solid", "entity", p.Entity.Name)
			return true
		}

		if trace.Fraction > 0 {
			p.Entity.SetWorldPosition(trace.EndPos)
		}

		if !trace.Blocked() {
			break
		}

		timeLeft -= timeLeft * trace.Fraction

		if planes.full() {
			p.Body.Velocity = mgl64.Vec3{}
			p.logger().Debug("slide move ran out of clip planes", "entity", p.Entity.Name)
			return true
		}

		// Same plane hit twice, nudge the velocity out of it
		if planes.contains(trace.Normal) {
			velocity = velocity.Add(trace.Normal)
			continue
		}
		planes.add(trace.Normal)

		var stopped bool
		velocity, endVelocity, stopped = planes.clip(velocity, endVelocity, gravity)
		if stopped {
			p.Body.Velocity = mgl64.Vec3{}
			p.logger().Debug("slide move stopped in a corner", "entity", p.Entity.Name)
			return true
		}
	}

	if gravity {
		velocity = endVelocity
	}
	p.Body.Velocity = velocity

	return bumpCount != 0
}
