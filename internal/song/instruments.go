package song

import (
	"math"
	"math/rand/v2"

	mixer "github.com/tphakala/go-tracker-mixer"
)

// C4Rate is the playback rate at which an instrument sounds its C-4, the
// Amiga tracker convention.
const C4Rate = 8363

// cycleFrames is the length of one waveform cycle in the built-in
// instruments. At C4Rate a 32-frame cycle sounds 261 Hz.
const cycleFrames = 32

// Square returns a looping square wave instrument.
func Square(amplitude int16) *mixer.Sample {
	data := make([]int16, cycleFrames)
	for i := range data {
		if i < cycleFrames/2 {
			data[i] = amplitude
		} else {
			data[i] = -amplitude
		}
	}
	return cycle("square", data)
}

// Saw returns a looping rising sawtooth instrument.
func Saw(amplitude int16) *mixer.Sample {
	data := make([]int16, cycleFrames)
	for i := range data {
		data[i] = int16(float64(amplitude) * (2*float64(i)/cycleFrames - 1))
	}
	return cycle("saw", data)
}

// Sine returns a looping sine instrument.
func Sine(amplitude int16) *mixer.Sample {
	data := make([]int16, cycleFrames)
	for i := range data {
		data[i] = int16(float64(amplitude) * math.Sin(2*math.Pi*float64(i)/cycleFrames))
	}
	return cycle("sine", data)
}

// Noise returns a one-shot burst of white noise with a linear decay, used
// for percussion. The same seed always yields the same data.
func Noise(frames int, amplitude int16, seed uint64) *mixer.Sample {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	data := make([]int16, frames)
	for i := range data {
		decay := 1 - float64(i)/float64(frames)
		data[i] = int16((rng.Float64()*2 - 1) * float64(amplitude) * decay)
	}
	s := mixer.NewSample16(data, false, C4Rate)
	s.Name = "noise"
	return s
}

func cycle(name string, data []int16) *mixer.Sample {
	s := mixer.WithLoop(mixer.NewSample16(data, false, C4Rate), mixer.LoopForward, 0, len(data))
	s.Name = name
	return s
}
