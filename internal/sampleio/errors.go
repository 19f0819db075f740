package sampleio

import "errors"

var (
	// ErrUnknownFormat indicates a file extension no decoder handles.
	ErrUnknownFormat = errors.New("unknown sample file format")

	// ErrInvalidFile indicates data that is not a file of the expected format.
	ErrInvalidFile = errors.New("invalid sample file")

	// ErrUnsupportedChannels indicates audio with more than two channels.
	ErrUnsupportedChannels = errors.New("only mono and stereo samples are supported")

	// ErrUnsupportedBitDepth indicates a PCM width the loader cannot convert.
	ErrUnsupportedBitDepth = errors.New("unsupported PCM bit depth")

	// ErrEmpty indicates a file without audio frames.
	ErrEmpty = errors.New("sample file contains no audio")
)
