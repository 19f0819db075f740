package mixer

import (
	"github.com/tphakala/go-tracker-mixer/internal/analysis"
)

// EnableAnalyzer starts recording the final mix for Level and Spectrum,
// keeping the newest size frames. size must be a power of two between 16
// and 65536. A size of zero turns the analyzer off.
func (m *Mixer) EnableAnalyzer(size int) error {
	if size == 0 {
		m.analyzer.Store(nil)
		return nil
	}
	a, err := analysis.New(size)
	if err != nil {
		return err
	}

	m.mu.Lock()
	a.Reserve(m.format.BufferSizeInFrames)
	m.mu.Unlock()

	m.analyzer.Store(a)
	return nil
}

// Level returns the RMS level of the newest analyzer window, where 1.0 is
// a full-scale square wave. It returns 0 when the analyzer is off.
func (m *Mixer) Level() float64 {
	a := m.analyzer.Load()
	if a == nil {
		return 0
	}
	return a.Level()
}

// Spectrum writes the amplitude spectrum of the newest analyzer window to
// dst and returns the number of bins written, at most size/2+1. Bin i is
// centred on i*Frequency/size Hz. It returns 0 when the analyzer is off.
func (m *Mixer) Spectrum(dst []float64) int {
	a := m.analyzer.Load()
	if a == nil {
		return 0
	}
	return a.Spectrum(dst)
}
