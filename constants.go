package mixer

// Voice limits
const (
	// MaxVoices is the largest voice count a mixer can be created with.
	MaxVoices = 256

	// MaxVolume is the full scale of SetVoiceVolume.
	MaxVolume = 256

	// MaxAmigaVolume is the full scale of SetVoiceAmigaVolume.
	MaxAmigaVolume = 64

	// amigaVolumeScale converts an Amiga volume to the mixer range.
	amigaVolumeScale = MaxVolume / MaxAmigaVolume
)

// Panning positions
const (
	PanLeft     = 0
	PanCenter   = 128
	PanRight    = 256
	PanSurround = 512
)

// Amiga timing
const (
	// AmigaPALClock is the PAL Paula clock; a period P plays at
	// AmigaPALClock/P Hz.
	AmigaPALClock = 3546895
)

// Configuration limits
const (
	// MaxStereoSeparation is full stereo width in percent.
	MaxStereoSeparation = 100

	// DefaultStereoSeparation matches the usual tracker default.
	DefaultStereoSeparation = 100

	// EqualizerBandCount is the number of graphic equalizer bands.
	EqualizerBandCount = 10

	// MaxEqualizerGain limits band and pre-amp gains in dB.
	MaxEqualizerGain = 12.0

	// MaxLatencyMs is the largest configurable command latency.
	MaxLatencyMs = 2000
)

// Output format limits
const (
	// MaxFrequency is the highest supported output frequency in Hz.
	MaxFrequency = 384000

	// MaxOutputChannels is the highest supported device channel count.
	MaxOutputChannels = 8

	// DefaultFrequency, DefaultBufferSize and DefaultBitsPerSample describe
	// the format used by the convenience constructors.
	DefaultFrequency     = 44100
	DefaultBufferSize    = 1024
	DefaultBitsPerSample = 16
)

// Common output rates.
const (
	RateCD  = 44100
	RateDAT = 48000
)

// Command queue
const (
	// commandPoolSize is the number of commands kept for reuse, matching
	// the scheduler's preallocated queue.
	commandPoolSize = 256
)

// Player timing
const (
	// defaultTicksPerSecond is the tick rate of 125 BPM, used when a player
	// reports a rate that is not positive.
	defaultTicksPerSecond = 50.0
)

// Convenience presets
const (
	// amigaStereoSeparation softens the hard Paula panning for headphones.
	amigaStereoSeparation = 50
)
