package analysis

import "math"

// kaiserWindow returns a symmetric Kaiser window of the given length:
//
//	w[n] = I0(beta * sqrt(1 - ((n - a)/a)^2)) / I0(beta),  a = (length-1)/2
func kaiserWindow(length int, beta float64) []float64 {
	w := make([]float64, length)
	if length == 1 {
		w[0] = 1
		return w
	}

	a := float64(length-1) / 2
	norm := besselI0(beta)
	for n := range length {
		x := (float64(n) - a) / a
		w[n] = besselI0(beta*math.Sqrt(max(0, 1-x*x))) / norm
	}
	return w
}

// besselI0 evaluates the zeroth order modified Bessel function of the first
// kind by its power series. The terms fall off quickly for the small betas
// used by analysis windows.
func besselI0(x float64) float64 {
	half := x / 2
	sum, term := 1.0, 1.0
	for k := 1; k < besselMaxTerms; k++ {
		f := half / float64(k)
		term *= f * f
		sum += term
		if term < sum*besselEpsilon {
			break
		}
	}
	return sum
}
