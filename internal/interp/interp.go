// Package interp provides the sample interpolation kernels used by the voice
// renderer.
//
// A kernel is chosen once per configuration change through [For] and then
// called per output frame. Every kernel has the same signature and receives
// the four frames around the playback position:
//
//	y0 = frame[i-1], y1 = frame[i], y2 = frame[i+1], y3 = frame[i+2]
//
// where i is the integer part of the position and x its fraction. Kernels
// that need fewer points ignore the rest, so the renderer can fetch
// neighbors without branching on the mode.
package interp

import (
	"fmt"
	"strings"
)

// Mode enumerates the available interpolation kernels.
type Mode int

const (
	// None repeats the current integer frame (nearest-neighbor, "Amiga" sound).
	None Mode = iota

	// Linear blends the current and the next frame by the fraction.
	Linear

	// Cubic uses a 4-point Catmull-Rom Hermite spline.
	Cubic
)

// String returns the name of the mode.
func (m Mode) String() string {
	switch m {
	case None:
		return "none"
	case Linear:
		return "linear"
	case Cubic:
		return "cubic"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m >= None && m <= Cubic
}

// ParseMode parses a mode name as returned by String. "nearest" is
// accepted for None.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "nearest":
		return None, nil
	case "linear":
		return Linear, nil
	case "cubic":
		return Cubic, nil
	default:
		return None, fmt.Errorf("unknown interpolation mode %q", s)
	}
}

// Points returns how many neighbor frames the mode reads.
func (m Mode) Points() int {
	switch m {
	case Linear:
		return linearPoints
	case Cubic:
		return cubicPoints
	default:
		return nonePoints
	}
}

// Kernel interpolates between y1 and y2 at fraction x in [0, 1).
type Kernel func(y0, y1, y2, y3, x float64) float64

// For returns the kernel for mode. Unknown modes fall back to nearest-neighbor.
func For(m Mode) Kernel {
	switch m {
	case Linear:
		return linear
	case Cubic:
		return cubic
	default:
		return nearest
	}
}

func nearest(_, y1, _, _, _ float64) float64 {
	return y1
}

func linear(_, y1, y2, _, x float64) float64 {
	return y1 + (y2-y1)*x
}

// cubic performs cubic Hermite interpolation.
// Uses the formula: y = ((a*x + b)*x + c)*x + d
func cubic(y0, y1, y2, y3, x float64) float64 {
	coefA := -hermiteCoeff0_5*y0 + hermiteCoeff1_5*y1 - hermiteCoeff1_5*y2 + hermiteCoeff0_5*y3
	coefB := y0 - hermiteCoeff2_5*y1 + 2*y2 - hermiteCoeff0_5*y3
	coefC := -hermiteCoeff0_5*y0 + hermiteCoeff0_5*y2
	coefD := y1

	return ((coefA*x+coefB)*x+coefC)*x + coefD
}
