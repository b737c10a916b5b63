// Package audio synthesizes the game sound effects as beep streamers.
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// Signal is a mono signal sampled at t seconds
type Signal func(t float64) float64

// Oscillator builds a Signal playing freq
type Oscillator func(freq float64) Signal

// ToFreq converts a MIDI note to its frequency, A4 is 69
func ToFreq(note float64) float64 {
	return math.Pow(2, (note-69)/12) * 440
}

// Square is a square wave, low for the first half of each period
func Square(freq float64) Signal {
	return func(t float64) float64 {
		n := math.Mod(math.Mod(t, 1/freq)*freq, 1)
		if n > 0.5 {
			return 1
		}
		return -1
	}
}

// PitchJump plays osc at freq, then at freq+jump after at seconds
func PitchJump(osc Oscillator, freq, jump, at float64) Signal {
	low := osc(freq)
	high := osc(freq + jump)
	return func(t float64) float64 {
		if t > at {
			return high(t)
		}
		return low(t)
	}
}

// ADSR is a linear envelope, times are in seconds and sustainVolume in [0, 1]
func ADSR(attack, decay, sustain, release, sustainVolume float64) Signal {
	length := attack + decay + sustain + release

	return func(t float64) float64 {
		switch {
		case t < attack:
			return t / attack
		case t < attack+decay:
			return 1 - ((t-attack)/decay)*(1-sustainVolume)
		case t < length-release:
			return sustainVolume
		case t < length:
			return ((length - t) / release) * sustainVolume
		}
		return 0
	}
}

// Mul multiplies signals sample by sample
func Mul(signals ...Signal) Signal {
	return func(t float64) float64 {
		v := 1.0
		for _, signal := range signals {
			v *= signal(t)
		}
		return v
	}
}

// sound streams a signal for a fixed number of samples
type sound struct {
	signal   Signal
	volume   float64
	position int
	duration int
	rate     beep.SampleRate
}

// NewSound renders signal for duration, scaled by volume
func NewSound(signal Signal, duration time.Duration, volume float64, rate beep.SampleRate) beep.Streamer {
	return &sound{
		signal:   signal,
		volume:   volume,
		duration: rate.N(duration),
		rate:     rate,
	}
}

func (s *sound) Stream(samples [][2]float64) (n int, ok bool) {
	if s.position >= s.duration {
		return 0, false
	}

	for i := range samples {
		if s.position >= s.duration {
			return i, true
		}

		val := s.signal(float64(s.position)/float64(s.rate)) * s.volume
		samples[i][0] = val
		samples[i][1] = val
		s.position++
	}
	return len(samples), true
}

func (s *sound) Err() error { return nil }

const (
	jumpNote     = 31
	jumpDuration = 300 * time.Millisecond
	jumpVolume   = 0.2
)

// NewJump renders the jump sound: a short square blip jumping up a fourth
func NewJump(rate beep.SampleRate) beep.Streamer {
	freq := ToFreq(jumpNote)
	signal := Mul(
		Square(freq),
		PitchJump(Square, freq, ToFreq(36)-ToFreq(31), 0.1),
		ADSR(0.003, 0.05, 0.01, 0.03, 0.5),
	)
	return NewSound(signal, jumpDuration, jumpVolume, rate)
}
