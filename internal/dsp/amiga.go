package dsp

import "math"

// AmigaFilter models the low-pass output stage of the Amiga as a one-pole RC
// filter per channel:
//
//	y[n] = y[n-1] + alpha * (x[n] - y[n-1])
//
// with alpha derived from the cutoff and the mixer rate, so the response
// stays the same at every output frequency.
type AmigaFilter struct {
	alpha float64
	prev  [MaxChannels]float64
}

// NewAmigaFilter creates a filter for the given mixer rate.
func NewAmigaFilter(sampleRate int) *AmigaFilter {
	f := &AmigaFilter{}
	f.SetSampleRate(sampleRate)
	return f
}

// SetSampleRate recomputes the coefficient and clears the filter state.
func (f *AmigaFilter) SetSampleRate(sampleRate int) {
	if sampleRate <= 0 {
		f.alpha = 1
	} else {
		f.alpha = 1 - math.Exp(-2*math.Pi*amigaCutoffHz/float64(sampleRate))
	}
	f.Reset()
}

// Alpha returns the smoothing coefficient.
func (f *AmigaFilter) Alpha() float64 {
	return f.alpha
}

// Reset clears the filter memory.
func (f *AmigaFilter) Reset() {
	f.prev = [MaxChannels]float64{}
}

// Process filters the first frames samples of each channel buffer in place.
func (f *AmigaFilter) Process(bufs [][]float64, frames int) {
	for ch := range min(len(bufs), MaxChannels) {
		buf := bufs[ch][:frames]
		y := f.prev[ch]
		for i, x := range buf {
			y += f.alpha * (x - y)
			buf[i] = y
		}
		f.prev[ch] = y
	}
}
