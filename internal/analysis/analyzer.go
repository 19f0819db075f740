// Package analysis taps the mixed output for level meters and spectrum
// displays.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-tracker-mixer/internal/dsp"
	"github.com/tphakala/go-tracker-mixer/internal/ringbuf"
	"github.com/tphakala/go-tracker-mixer/internal/simdops"
)

// ErrInvalidSize is returned for window sizes that are not a power of two
// in [MinSize, MaxSize].
var ErrInvalidSize = errors.New("analysis: invalid window size")

// Analyzer keeps the latest mono downmix of the output and derives level
// and spectrum readings from it. Push is called by the audio thread; the
// readers may be called from any goroutine.
type Analyzer struct {
	ring *ringbuf.Ring
	ops  *simdops.Ops[float64]
	size int

	// writer scratch
	mono []float64

	// reader state
	mu        sync.Mutex
	fft       *fourier.FFT
	window    []float64
	windowSum float64
	frame     []float64
	coeff     []complex128
}

// New creates an analyzer over windows of size samples.
func New(size int) (*Analyzer, error) {
	if size < MinSize || size > MaxSize || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: %d (must be a power of two in [%d, %d])", ErrInvalidSize, size, MinSize, MaxSize)
	}

	ops := simdops.Float64Ops()
	window := kaiserWindow(size, windowBeta)

	return &Analyzer{
		ring:      ringbuf.New(size),
		ops:       ops,
		size:      size,
		fft:       fourier.NewFFT(size),
		window:    window,
		windowSum: ops.Sum(window),
		frame:     make([]float64, size),
		coeff:     make([]complex128, size/2+1),
	}, nil
}

// Size returns the window length.
func (a *Analyzer) Size() int {
	return a.size
}

// Bins returns the number of spectrum bins Spectrum produces.
func (a *Analyzer) Bins() int {
	return a.size/2 + 1
}

// BinFrequency returns the centre frequency in Hz of spectrum bin i.
func (a *Analyzer) BinFrequency(i, sampleRate int) float64 {
	return float64(i) * float64(sampleRate) / float64(a.size)
}

// Reserve sizes the downmix scratch for blocks of up to frames frames so
// that Push does not allocate.
func (a *Analyzer) Reserve(frames int) {
	if cap(a.mono) < frames {
		a.mono = make([]float64, frames)
	}
}

// Push records frames frames of the mix. Stereo input is averaged to mono
// and scaled so that dsp.FullScale reads as 1.0.
func (a *Analyzer) Push(bufs [][]float64, frames int) {
	if frames <= 0 || len(bufs) == 0 {
		return
	}
	a.Reserve(frames)
	mono := a.mono[:frames]

	if len(bufs) == 1 {
		a.ops.Scale(mono, bufs[0][:frames], 1/dsp.FullScale)
	} else {
		left, right := bufs[0][:frames], bufs[1][:frames]
		for i := range mono {
			mono[i] = left[i] + right[i]
		}
		a.ops.Scale(mono, mono, 0.5/dsp.FullScale)
	}
	a.ring.Write(mono)
}

// Reset forgets the recorded signal.
func (a *Analyzer) Reset() {
	a.ring.Clear()
}

// latest loads the newest window into a.frame, zero padding a short
// history, and returns the number of real samples. Caller holds a.mu.
func (a *Analyzer) latest() int {
	n := a.ring.Latest(a.frame)
	clear(a.frame[n:])
	return n
}

// Level returns the RMS level of the newest window, 1.0 being a full-scale
// square wave.
func (a *Analyzer) Level() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := a.latest()
	if n == 0 {
		return 0
	}
	frame := a.frame[:n]
	return math.Sqrt(a.ops.DotProduct(frame, frame) / float64(n))
}

// Spectrum writes the amplitude of each frequency bin of the newest window
// into dst and returns the number of bins written. The DC offset is removed
// before windowing; a full-scale sine centred on a bin reads close to 1.0.
func (a *Analyzer) Spectrum(dst []float64) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	bins := min(len(dst), a.Bins())
	if a.latest() == 0 {
		clear(dst[:bins])
		return bins
	}

	mean := a.ops.Sum(a.frame) / float64(a.size)
	for i, w := range a.window {
		a.frame[i] = (a.frame[i] - mean) * w
	}

	a.coeff = a.fft.Coefficients(a.coeff, a.frame)
	scale := 2 / a.windowSum
	for i := range bins {
		dst[i] = cmplx.Abs(a.coeff[i]) * scale
	}
	return bins
}
