package dsp

// Channel layout
const (
	// MaxChannels is the number of mix channels the post chain handles
	// (mono or stereo; extra device channels are filled with silence).
	MaxChannels = 2
)

// Amiga output filter constants
const (
	// amigaCutoffHz is the -3 dB point of the modelled RC output stage.
	amigaCutoffHz = 3275.0
)

// Equalizer constants
const (
	// BandCount is the number of equalizer bands.
	BandCount = 10

	// MaxBandGainDB limits band and pre-amp gains to +/- this many dB.
	MaxBandGainDB = 12.0

	// bandQ is the quality factor of every peaking band.
	bandQ = 1.0

	// nyquistGuard skips bands whose centre is too close to Nyquist to
	// design a stable peaking filter.
	nyquistGuard = 0.45

	// dbPerDecade converts decibels to an amplitude ratio exponent.
	dbPerDecade = 20.0
)

// Soft clipping constants
const (
	// FullScale is the accumulator value of one voice at full volume
	// (16-bit sample range).
	FullScale = 32768.0

	// clipKnee is the normalised level where soft clipping starts bending.
	clipKnee = 0.75
)

// Output conversion constants
const (
	center8 = 128

	maxInt8  = 127.0
	maxInt16 = 32767.0
	maxInt32 = 2147483647.0

	bitsPerByte = 8
)

// Supported output bit depths
const (
	BitDepth8  = 8
	BitDepth16 = 16
	BitDepth32 = 32
)
