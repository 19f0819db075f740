// Package testutil provides reusable test helpers for the mixer packages.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tphakala/go-tracker-mixer/internal/voice"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance = 1e-10
	GainTolerance    = 1e-9
	DBTolerance      = 0.5
)

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllInRange verifies that all elements are within [min, max].
func AssertAllInRange(t *testing.T, s []float64, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if v < minVal || v > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f is outside range [%f, %f]", i, v, minVal, maxVal)
		}
	}
	return true
}

// AssertAllEqual verifies that every element equals want.
func AssertAllEqual[T comparable](t *testing.T, s []T, want T, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if v != want {
			return assert.Fail(t, "unexpected value",
				"s[%d]=%v, want %v", i, v, want)
		}
	}
	return true
}

// AssertMonotonic verifies that a slice is monotonically non-decreasing.
func AssertMonotonic(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i := 1; i < len(s); i++ {
		if s[i] < s[i-1] {
			return assert.Fail(t, "not monotonic",
				"s[%d]=%f < s[%d]=%f", i, s[i], i-1, s[i-1])
		}
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %f is outside range [%f, %f]", value, minVal, maxVal)
	}
	return true
}

// ConstantSample returns a 16-bit mono sample holding value in every frame.
func ConstantSample(frames int, value int16) *voice.Sample {
	data := make([]int16, frames)
	for i := range data {
		data[i] = value
	}
	return &voice.Sample{Data16: data}
}

// RampSample returns a 16-bit mono sample whose frame i holds i*step.
func RampSample(frames int, step int16) *voice.Sample {
	data := make([]int16, frames)
	for i := range data {
		data[i] = int16(i) * step
	}
	return &voice.Sample{Data16: data}
}

// SineSample returns one or more periods of a 16-bit sine wave.
func SineSample(frames, periods int, amplitude float64) *voice.Sample {
	data := make([]int16, frames)
	for i := range data {
		data[i] = int16(amplitude * math.Sin(2*math.Pi*float64(periods)*float64(i)/float64(frames)))
	}
	return &voice.Sample{Data16: data}
}

// Sine generates n samples of a sine at freq Hz for a sampleRate stream.
func Sine(n int, freq, sampleRate, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
	}
	return out
}

// RMS returns the root mean square of s.
func RMS(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(s)))
}
