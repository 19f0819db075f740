package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKernelsHitSamplePoints(t *testing.T) {
	for _, m := range []Mode{None, Linear, Cubic} {
		k := For(m)
		// At x=0 every kernel must return the current frame exactly.
		assert.InDelta(t, 7.0, k(-3, 7, 11, 2, 0), 1e-12, "mode %s", m)
	}
}

func TestNearestIgnoresFraction(t *testing.T) {
	k := For(None)
	assert.InDelta(t, 100.0, k(0, 100, 200, 300, 0.99), 1e-12)
}

func TestLinearMidpoint(t *testing.T) {
	k := For(Linear)
	assert.InDelta(t, 150.0, k(0, 100, 200, 300, 0.5), 1e-12)
	assert.InDelta(t, 125.0, k(0, 100, 200, 300, 0.25), 1e-12)
}

func TestCubicReproducesLinearRamp(t *testing.T) {
	// Catmull-Rom is exact for straight lines.
	k := For(Cubic)
	for _, x := range []float64{0, 0.1, 0.25, 0.5, 0.75, 0.9} {
		assert.InDelta(t, 100.0+100.0*x, k(0, 100, 200, 300, x), 1e-9, "x=%f", x)
	}
}

func TestCubicApproachesNextFrame(t *testing.T) {
	k := For(Cubic)
	assert.InDelta(t, -5.0, k(3, 8, -5, 1, 1.0), 1e-9)
}

func TestModeHelpers(t *testing.T) {
	assert.Equal(t, 1, None.Points())
	assert.Equal(t, 2, Linear.Points())
	assert.Equal(t, 4, Cubic.Points())
	assert.True(t, Cubic.Valid())
	assert.False(t, Mode(9).Valid())
	assert.Equal(t, "linear", Linear.String())
	assert.Equal(t, "Mode(9)", Mode(9).String())

	for _, m := range []Mode{None, Linear, Cubic} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	got, err := ParseMode(" Nearest")
	require.NoError(t, err)
	assert.Equal(t, None, got)
	_, err = ParseMode("sinc")
	require.Error(t, err)

	// Unknown modes degrade to nearest-neighbor.
	assert.InDelta(t, 4.0, For(Mode(42))(1, 4, 9, 16, 0.5), 1e-12)
}
