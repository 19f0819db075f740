package mixer

import (
	"fmt"
	"math"
	"slices"

	"github.com/tphakala/go-tracker-mixer/internal/dsp"
	"github.com/tphakala/go-tracker-mixer/internal/interp"
	"github.com/tphakala/go-tracker-mixer/internal/render"
)

// InterpolationMode selects how voices read between sample frames.
type InterpolationMode = interp.Mode

const (
	// InterpolationNone repeats the nearest frame, the raw Amiga sound.
	InterpolationNone = interp.None

	// InterpolationLinear blends two neighboring frames.
	InterpolationLinear = interp.Linear

	// InterpolationCubic uses a 4-point Hermite spline.
	InterpolationCubic = interp.Cubic
)

// ParseInterpolation parses "none" (or "nearest"), "linear" or "cubic".
func ParseInterpolation(s string) (InterpolationMode, error) {
	m, err := interp.ParseMode(s)
	if err != nil {
		return m, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return m, nil
}

// Config holds the mixer settings a user can change during playback.
// A Config is copied by SetConfiguration; changing it afterwards has no
// effect on the mixer.
type Config struct {
	// StereoSeparation scales voice panning width in percent (0-100).
	// Zero renders every voice in the centre.
	StereoSeparation int

	// Interpolation selects the resampling kernel.
	Interpolation InterpolationMode

	// SwapSpeakers exchanges the left and right output channels.
	SwapSpeakers bool

	// EnableAmigaFilter enables the Amiga output low-pass filter. The
	// player can still switch it off with SetAmigaFilter.
	EnableAmigaFilter bool

	// EnableEqualizer enables the graphic equalizer and its pre-amp.
	EnableEqualizer bool

	// EqualizerBands are the band gains in dB (-12 to +12) for the
	// centre frequencies 60, 170, 310, 600, 1k, 3k, 6k, 12k, 14k and 16k Hz.
	EqualizerBands [EqualizerBandCount]float64

	// EqualizerPreAmp is the gain applied before the bands, in dB.
	EqualizerPreAmp float64

	// ChannelsEnabled masks voices out of the mix. A masked voice keeps
	// advancing so it comes back in time. Voices beyond the slice are
	// enabled.
	ChannelsEnabled []bool

	// EnableSurround phase-inverts the right speaker of voices panned to
	// PanSurround.
	EnableSurround bool

	// LatencyMs delays every command by this many milliseconds on top of
	// the device latency of the output format.
	LatencyMs int
}

// DefaultConfig returns full stereo width with linear interpolation and
// every optional stage off.
func DefaultConfig() *Config {
	return &Config{
		StereoSeparation: DefaultStereoSeparation,
		Interpolation:    InterpolationLinear,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.StereoSeparation < 0 || c.StereoSeparation > MaxStereoSeparation {
		return fmt.Errorf("%w: stereo separation %d (must be 0-%d)", ErrInvalidConfig, c.StereoSeparation, MaxStereoSeparation)
	}

	if !c.Interpolation.Valid() {
		return fmt.Errorf("%w: unknown interpolation %s", ErrInvalidConfig, c.Interpolation)
	}

	for i, g := range c.EqualizerBands {
		if !validGain(g) {
			return fmt.Errorf("%w: equalizer band %d gain %v dB (must be within +/-%v)", ErrInvalidConfig, i, g, MaxEqualizerGain)
		}
	}

	if !validGain(c.EqualizerPreAmp) {
		return fmt.Errorf("%w: pre-amp %v dB (must be within +/-%v)", ErrInvalidConfig, c.EqualizerPreAmp, MaxEqualizerGain)
	}

	if c.LatencyMs < 0 || c.LatencyMs > MaxLatencyMs {
		return fmt.Errorf("%w: latency %d ms (must be 0-%d)", ErrInvalidConfig, c.LatencyMs, MaxLatencyMs)
	}

	return nil
}

func validGain(db float64) bool {
	return !math.IsNaN(db) && math.Abs(db) <= MaxEqualizerGain
}

// compiledConfig is the immutable form of a Config handed to the render
// goroutine. It is built once per SetConfiguration call.
type compiledConfig struct {
	cfg      Config
	settings render.Settings
	eqGains  [dsp.BandCount]float64
}

func compile(c *Config) *compiledConfig {
	cc := &compiledConfig{
		cfg: *c,
		settings: render.Settings{
			Mode:       c.Interpolation,
			Separation: c.StereoSeparation,
			Surround:   c.EnableSurround,
		},
		eqGains: c.EqualizerBands,
	}
	cc.cfg.ChannelsEnabled = slices.Clone(c.ChannelsEnabled)
	return cc
}

// audible reports whether voice i is let through the channel mask.
func (cc *compiledConfig) audible(i int) bool {
	mask := cc.cfg.ChannelsEnabled
	return i >= len(mask) || mask[i]
}

// config returns a copy of the user configuration.
func (cc *compiledConfig) config() *Config {
	c := cc.cfg
	c.ChannelsEnabled = slices.Clone(cc.cfg.ChannelsEnabled)
	return &c
}
