package dsp

import "math"

// SoftClip bends samples above the knee smoothly towards full scale instead
// of cutting them off. Values are in accumulator units where FullScale is
// one voice at full volume; the output never exceeds FullScale in magnitude.
func SoftClip(bufs [][]float64, frames int) {
	for _, b := range bufs {
		buf := b[:frames]
		for i, x := range buf {
			buf[i] = softClipSample(x)
		}
	}
}

func softClipSample(x float64) float64 {
	n := x / FullScale
	a := math.Abs(n)
	if a <= clipKnee {
		return x
	}

	// Above the knee, map the excess through tanh so the curve meets the
	// linear part with a matching slope and approaches 1.0 asymptotically.
	const room = 1 - clipKnee
	bent := clipKnee + room*math.Tanh((a-clipKnee)/room)
	return math.Copysign(bent*FullScale, n)
}
