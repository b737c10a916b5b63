// Package output plays the game sounds on the default audio device.
package output

import (
	"time"

	"github.com/akmonengine/pmove/audio"
	"github.com/gopxl/beep/speaker"
	"github.com/pkg/errors"
)

// DEFAULT_BUFFER is the latency of the speaker
const DEFAULT_BUFFER = 100 * time.Millisecond

type speakerLock struct{}

func (speakerLock) Lock()   { speaker.Lock() }
func (speakerLock) Unlock() { speaker.Unlock() }

// Open initializes the speaker and streams sounds on it until Close.
// The sounds mixer is then guarded by the speaker lock.
func Open(sounds *audio.Sounds, buffer time.Duration) error {
	rate := sounds.SampleRate()
	if err := speaker.Init(rate, rate.N(buffer)); err != nil {
		return errors.Wrapf(err, "init speaker at %d Hz", rate)
	}

	sounds.Locker = speakerLock{}
	speaker.Play(sounds.Streamer())
	return nil
}

// Close stops the sounds and releases the device
func Close(sounds *audio.Sounds) {
	sounds.Clear()
	speaker.Close()
}
