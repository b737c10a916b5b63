package audio

import (
	"sync"

	"github.com/gopxl/beep"
)

// DEFAULT_SAMPLE_RATE is the rate sounds are rendered at
const DEFAULT_SAMPLE_RATE = beep.SampleRate(44100)

// Sounds mixes the sound effects triggered by the game.
// Plug Streamer into an output device to hear them.
type Sounds struct {
	// Locker guards the mixer, the output device must stream it under the same lock
	Locker sync.Locker

	rate  beep.SampleRate
	mixer *beep.Mixer
}

// NewSounds creates an empty mixer rendering at rate
func NewSounds(rate beep.SampleRate) *Sounds {
	return &Sounds{
		Locker: &sync.Mutex{},
		rate:   rate,
		mixer:  &beep.Mixer{},
	}
}

// SampleRate returns the rate the sounds are rendered at
func (s *Sounds) SampleRate() beep.SampleRate {
	return s.rate
}

// Streamer returns the mix of every sound playing
func (s *Sounds) Streamer() beep.Streamer {
	return s.mixer
}

// Playing returns the number of sounds still in the mix
func (s *Sounds) Playing() int {
	s.Locker.Lock()
	defer s.Locker.Unlock()

	return s.mixer.Len()
}

// PlayJump starts a jump sound
func (s *Sounds) PlayJump() {
	s.play(NewJump(s.rate))
}

// Clear stops every sound
func (s *Sounds) Clear() {
	s.Locker.Lock()
	defer s.Locker.Unlock()

	s.mixer.Clear()
}

func (s *Sounds) play(streamer beep.Streamer) {
	s.Locker.Lock()
	defer s.Locker.Unlock()

	s.mixer.Add(streamer)
}
