package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/akmonengine/pmove"
	"github.com/akmonengine/pmove/actor"
	"github.com/akmonengine/pmove/audio"
	"github.com/akmonengine/pmove/audio/output"
	"github.com/akmonengine/pmove/player"
	"github.com/go-gl/mathgl/mgl64"
)

// SetupScene builds a corridor running down -z, closed by a wall, with a low step halfway
func SetupScene(world *pmove.World) *actor.RigidBody {
	statics := []*actor.RigidBody{
		box("floor", mgl64.Vec3{0, -0.5, -20}, mgl64.Vec3{3, 0.5, 25}),
		box("left wall", mgl64.Vec3{-3.5, 2, -20}, mgl64.Vec3{0.5, 2, 25}),
		box("right wall", mgl64.Vec3{3.5, 2, -20}, mgl64.Vec3{0.5, 2, 25}),
		box("end wall", mgl64.Vec3{0, 2, -40.5}, mgl64.Vec3{3, 2, 0.5}),
		box("step", mgl64.Vec3{0, 0.25, -15}, mgl64.Vec3{3, 0.25, 1}),
	}
	for _, body := range statics {
		world.AddBody(body)
	}

	entity := actor.NewEntity("player", mgl64.Vec3{0, 1.01, 0})
	body := actor.NewRigidBody(entity, actor.NewAABBFromHalfExtents(mgl64.Vec3{0.5, 1, 0.5}), actor.BodyTypeDynamic)
	world.AddBody(body)

	return body
}

func box(name string, center, halfExtents mgl64.Vec3) *actor.RigidBody {
	return actor.NewRigidBody(actor.NewEntity(name, center), actor.NewAABBFromHalfExtents(halfExtents), actor.BodyTypeStatic)
}

// fire shoots a bullet across the corridor, it stops on the first wall it touches
func fire(world *pmove.World, position mgl64.Vec3) {
	entity := actor.NewEntity("bullet", position)
	bullet := actor.NewRigidBody(entity, actor.NewAABBFromHalfExtents(mgl64.Vec3{0.05, 0.05, 0.05}), actor.BodyTypeBullet)
	bullet.Velocity = mgl64.Vec3{40, 0, 0}

	world.Events.On(entity, pmove.COLLIDE, func(event pmove.Event) {
		collide := event.(pmove.CollideEvent)
		fmt.Printf("💥 bullet hit %s at %v\n", collide.Other.Name, entity.WorldPosition())
		bullet.Velocity = mgl64.Vec3{}
	})
	world.AddBody(bullet)
}

func main() {
	configPath := flag.String("config", "", "movement config (YAML)")
	sound := flag.Bool("sound", false, "play the sounds on the default audio device")
	verbose := flag.Bool("v", false, "debug logs")
	steps := flag.Int("steps", 300, "number of 60Hz steps to simulate")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	config := player.DefaultMovementConfig()
	if *configPath != "" {
		var err error
		config, err = player.LoadMovementConfig(*configPath)
		if err != nil {
			logger.Error("cannot load movement config", "error", err)
			os.Exit(1)
		}
	}

	sounds := audio.NewSounds(audio.DEFAULT_SAMPLE_RATE)
	if *sound {
		if err := output.Open(sounds, output.DEFAULT_BUFFER); err != nil {
			logger.Warn("sound disabled", "error", err)
		} else {
			defer output.Close(sounds)
		}
	}

	world := pmove.NewWorld()
	world.Logger = logger
	body := SetupScene(world)

	p := player.New(body.Entity, body, world,
		player.WithConfig(config),
		player.WithLogger(logger),
		player.WithJumpSound(sounds),
	)
	p.SetView(0)
	world.AddController(p)

	world.Events.Subscribe(pmove.COLLISION_ENTER, func(event pmove.Event) {
		enter := event.(pmove.CollisionEnterEvent)
		logger.Debug("collision enter", "bodyA", enter.BodyA.Entity.Name, "bodyB", enter.BodyB.Entity.Name)
	})

	const dt float64 = 1.0 / 60.0
	for step := 0; step < *steps; step++ {
		// run down the corridor, jump once
		p.Command = mgl64.Vec3{0, 0, 127}
		if step >= 60 && step < 64 {
			p.Command[1] = 127
		}
		if step == 30 {
			fire(world, mgl64.Vec3{-2, 1, -5})
		}

		world.Step(dt)

		if step%30 == 0 {
			fmt.Printf("step %3d: position %v velocity %v walking %v\n",
				step, body.Entity.WorldPosition(), body.Velocity, p.Walking)
		}
	}

	fmt.Printf("final position %v, %d sounds still playing\n", body.Entity.WorldPosition(), sounds.Playing())
}
