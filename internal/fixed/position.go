// Package fixed implements the 64-bit fixed-point sample position used by the
// voice renderer.
//
// A Position holds a frame index in its upper 32 bits and a binary fraction in
// its lower 32 bits. All arithmetic is integer arithmetic, so advancing a voice
// for hours of playback never accumulates rounding drift.
package fixed

import (
	"math"
	"math/bits"
)

const (
	// FracBits is the number of fractional bits in a Position.
	FracBits = 32

	// One is the fixed-point representation of one frame.
	One Position = 1 << FracBits

	fracMask = One - 1

	// maxIncrement caps increments so that a single advance can never
	// overflow a position inside any realistic sample.
	maxIncrement = 1 << 62
)

// Position is a signed 32.32 fixed-point frame position or increment.
type Position int64

// FromFrames converts an integer frame index to a Position.
func FromFrames(n int) Position {
	return Position(n) << FracBits
}

// FromFloat converts a fractional frame index to a Position.
// It is only meant for setup and tests, never for the render loop.
func FromFloat(f float64) Position {
	return Position(math.Round(f * float64(One)))
}

// Int returns the integer frame index (floor for negative positions).
func (p Position) Int() int {
	return int(p >> FracBits)
}

// Frac returns the raw 32-bit fraction.
func (p Position) Frac() uint32 {
	return uint32(p & fracMask)
}

// FracFloat returns the fraction as a value in [0, 1).
func (p Position) FracFloat() float64 {
	return float64(p&fracMask) * (1.0 / float64(One))
}

// Float returns the position as a float64 frame index.
func (p Position) Float() float64 {
	return float64(p) / float64(One)
}

// Increment returns the per-output-frame advance for playing a source at
// sourceHz on an output running at outputHz:
//
//	round(sourceHz * 2^FracBits / outputHz)
//
// An outputHz of zero yields zero so that misconfigured voices stay silent
// instead of dividing by zero.
func Increment(sourceHz, outputHz uint32) Position {
	if outputHz == 0 {
		return 0
	}

	hi, lo := bits.Mul64(uint64(sourceHz), uint64(One))
	lo, carry := bits.Add64(lo, uint64(outputHz)/2, 0)
	hi += carry

	// hi < outputHz always holds here because sourceHz < 2^32.
	quo, _ := bits.Div64(hi, lo, uint64(outputHz))
	if quo > maxIncrement {
		quo = maxIncrement
	}
	return Position(quo)
}
