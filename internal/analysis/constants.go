package analysis

// Analyzer limits
const (
	// MinSize and MaxSize bound the analysis window length.
	MinSize = 16
	MaxSize = 65536

	// windowBeta gives roughly 90 dB of sidelobe rejection.
	windowBeta = 8.6
)

// Bessel series convergence
const (
	besselMaxTerms = 64
	besselEpsilon  = 1e-17
)
