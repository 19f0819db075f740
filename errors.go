package mixer

import "errors"

// Errors returned by the mixer.
var (
	// ErrInvalidFrequency indicates a non-positive or out of range output
	// frequency, or a non-positive Amiga period.
	ErrInvalidFrequency = errors.New("invalid frequency")

	// ErrInvalidChannels indicates an unsupported output channel count.
	ErrInvalidChannels = errors.New("invalid channel count")

	// ErrInvalidBufferSize indicates a buffer size below one frame.
	ErrInvalidBufferSize = errors.New("invalid buffer size")

	// ErrInvalidBitDepth indicates an output width other than 8, 16 or 32 bits.
	ErrInvalidBitDepth = errors.New("invalid bits per sample")

	// ErrInvalidVoice indicates a voice index or voice count out of range.
	ErrInvalidVoice = errors.New("invalid voice")

	// ErrInvalidVolume indicates a volume outside the accepted range.
	ErrInvalidVolume = errors.New("invalid volume")

	// ErrInvalidPanning indicates a panning value that is neither in
	// [PanLeft, PanRight] nor PanSurround.
	ErrInvalidPanning = errors.New("invalid panning")

	// ErrInvalidSample indicates a sample that fails validation or a start
	// offset outside the sample.
	ErrInvalidSample = errors.New("invalid sample")

	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid mixer configuration")

	// ErrNilCallback indicates ScheduleCallback was given no function.
	ErrNilCallback = errors.New("callback is nil")

	// ErrBufferTooSmall indicates the output buffer cannot hold the
	// requested frames.
	ErrBufferTooSmall = errors.New("output buffer too small")

	// ErrStopped is returned by render calls after Stop has faded out.
	ErrStopped = errors.New("mixer stopped")
)
