package mixer

import (
	"fmt"

	"github.com/tphakala/go-tracker-mixer/internal/dsp"
)

// OutputFormat describes the PCM stream the mixer renders.
type OutputFormat struct {
	// Frequency is the output sample rate in Hz.
	Frequency int

	// Channels is the device channel count. One renders mono, two or more
	// render stereo with any extra channels left silent.
	Channels int

	// BufferSizeInFrames is the largest number of frames mixed in one pass.
	// Render calls for more frames are processed in chunks of this size.
	BufferSizeInFrames int

	// BitsPerSample is 8 (unsigned), 16 or 32 (signed little-endian).
	BitsPerSample int

	// DeviceLatency is the output device buffering in frames. It is added
	// to the command latency.
	DeviceLatency int
}

// DefaultOutputFormat returns a 44.1 kHz, 16-bit stereo format.
func DefaultOutputFormat() OutputFormat {
	return OutputFormat{
		Frequency:          DefaultFrequency,
		Channels:           2,
		BufferSizeInFrames: DefaultBufferSize,
		BitsPerSample:      DefaultBitsPerSample,
	}
}

// Validate checks that the mixer can render the format.
func (f *OutputFormat) Validate() error {
	if f.Frequency <= 0 || f.Frequency > MaxFrequency {
		return fmt.Errorf("%w: %d Hz (must be 1-%d)", ErrInvalidFrequency, f.Frequency, MaxFrequency)
	}

	if f.Channels < 1 || f.Channels > MaxOutputChannels {
		return fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidChannels, f.Channels, MaxOutputChannels)
	}

	if f.BufferSizeInFrames < 1 {
		return fmt.Errorf("%w: %d frames", ErrInvalidBufferSize, f.BufferSizeInFrames)
	}

	switch f.BitsPerSample {
	case dsp.BitDepth8, dsp.BitDepth16, dsp.BitDepth32:
	default:
		return fmt.Errorf("%w: %d (must be 8, 16 or 32)", ErrInvalidBitDepth, f.BitsPerSample)
	}

	if f.DeviceLatency < 0 {
		return fmt.Errorf("%w: negative device latency", ErrInvalidBufferSize)
	}

	return nil
}

// FrameSize returns the size of one output frame in bytes.
func (f *OutputFormat) FrameSize() int {
	return f.Channels * dsp.BytesPerSample(f.BitsPerSample)
}

// mixChannels returns how many accumulators the format needs.
func (f *OutputFormat) mixChannels() int {
	return min(f.Channels, dsp.MaxChannels)
}
