package interp

// Cubic (Hermite) interpolation constants
const (
	// Cubic interpolation uses a 4-point window around the current frame
	cubicPoints = 4

	// Hermite interpolation coefficients for smooth C1 continuity
	// Formula: y = ((a*x + b)*x + c)*x + d
	// coefA := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	hermiteCoeff0_5 = 0.5
	hermiteCoeff1_5 = 1.5
	hermiteCoeff2_5 = 2.5
)

// Linear interpolation constants
const (
	// Linear interpolation uses the current and the next frame
	linearPoints = 2

	// Nearest-neighbor only reads the current frame
	nonePoints = 1
)
