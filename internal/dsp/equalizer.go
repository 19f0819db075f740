package dsp

import (
	"math"

	"github.com/tphakala/go-tracker-mixer/internal/simdops"
)

// BandFrequencies are the centre frequencies of the equalizer bands in Hz.
var BandFrequencies = [BandCount]float64{60, 170, 310, 600, 1000, 3000, 6000, 12000, 14000, 16000}

// biquad is a transposed direct form II section with per-channel state.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	z1, z2     [MaxChannels]float64
}

func (q *biquad) process(buf []float64, ch int) {
	z1, z2 := q.z1[ch], q.z2[ch]
	for i, x := range buf {
		y := q.b0*x + z1
		z1 = q.b1*x - q.a1*y + z2
		z2 = q.b2*x - q.a2*y
		buf[i] = y
	}
	q.z1[ch], q.z2[ch] = z1, z2
}

// Equalizer is a graphic equalizer of peaking filters plus a pre-amp gain.
// Coefficients are designed in Configure, never while processing.
type Equalizer struct {
	bands  [BandCount]biquad
	active [BandCount]bool
	preamp float64
	ops    *simdops.Ops[float64]
}

// NewEqualizer creates a flat equalizer.
func NewEqualizer() *Equalizer {
	return &Equalizer{
		preamp: 1,
		ops:    simdops.Float64Ops(),
	}
}

// ClampGain limits a band or pre-amp gain to the supported range.
func ClampGain(db float64) float64 {
	if math.IsNaN(db) {
		return 0
	}
	return max(-MaxBandGainDB, min(MaxBandGainDB, db))
}

// Configure designs the band filters for gainsDB at sampleRate. Bands with
// zero gain or above the usable range are bypassed. Filter state survives a
// reconfiguration so gain changes do not click.
func (e *Equalizer) Configure(gainsDB [BandCount]float64, preampDB float64, sampleRate int) {
	e.preamp = math.Pow(10, ClampGain(preampDB)/dbPerDecade)

	for i, freq := range BandFrequencies {
		gain := ClampGain(gainsDB[i])
		if gain == 0 || sampleRate <= 0 || freq >= nyquistGuard*float64(sampleRate) {
			e.active[i] = false
			continue
		}
		e.bands[i].design(freq, gain, float64(sampleRate))
		e.active[i] = true
	}
}

// design computes peaking EQ coefficients (RBJ audio EQ cookbook).
func (q *biquad) design(freq, gainDB, sampleRate float64) {
	a := math.Pow(10, gainDB/(2*dbPerDecade))
	w0 := 2 * math.Pi * freq / sampleRate
	alpha := math.Sin(w0) / (2 * bandQ)
	cosW0 := math.Cos(w0)

	a0 := 1 + alpha/a
	q.b0 = (1 + alpha*a) / a0
	q.b1 = -2 * cosW0 / a0
	q.b2 = (1 - alpha*a) / a0
	q.a1 = -2 * cosW0 / a0
	q.a2 = (1 - alpha/a) / a0
}

// Reset clears the filter memory of every band.
func (e *Equalizer) Reset() {
	for i := range e.bands {
		e.bands[i].z1 = [MaxChannels]float64{}
		e.bands[i].z2 = [MaxChannels]float64{}
	}
}

// Process applies the pre-amp and the active bands to the first frames
// samples of each channel buffer in place.
func (e *Equalizer) Process(bufs [][]float64, frames int) {
	for ch := range min(len(bufs), MaxChannels) {
		buf := bufs[ch][:frames]
		if e.preamp != 1 {
			e.ops.Scale(buf, buf, e.preamp)
		}
		for i := range e.bands {
			if e.active[i] {
				e.bands[i].process(buf, ch)
			}
		}
	}
}

// PreAmp returns the linear pre-amp gain.
func (e *Equalizer) PreAmp() float64 {
	return e.preamp
}
