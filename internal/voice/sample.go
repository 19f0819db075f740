package voice

import (
	"errors"
	"fmt"
)

// LoopMode selects how a sample repeats.
type LoopMode int

const (
	// LoopNone plays the sample once and stops at its end.
	LoopNone LoopMode = iota

	// LoopForward jumps from the loop end back to the loop start.
	LoopForward

	// LoopBidi plays the loop forward and backward in turn (ping-pong).
	LoopBidi
)

// String returns the name of the loop mode.
func (m LoopMode) String() string {
	switch m {
	case LoopNone:
		return "none"
	case LoopForward:
		return "forward"
	case LoopBidi:
		return "bidi"
	default:
		return fmt.Sprintf("LoopMode(%d)", int(m))
	}
}

// Sample validation errors.
var (
	ErrNoData        = errors.New("sample has no data")
	ErrBothWidths    = errors.New("sample has both 8-bit and 16-bit data")
	ErrBadLength     = errors.New("sample length exceeds data")
	ErrBadLoop       = errors.New("sample loop outside sample data")
	ErrBadLoopMode   = errors.New("unknown loop mode")
	ErrOddStereoData = errors.New("stereo sample data has an odd number of values")
	ErrBadRelease    = errors.New("sample release segment outside sample data")
)

// Sample is a PCM buffer owned by the format player. The mixer only keeps a
// reference to it and never writes to it.
//
// Exactly one of Data8 and Data16 holds the frames. Stereo data is
// interleaved left/right.
type Sample struct {
	// Name is informational only.
	Name string

	Data8  []int8
	Data16 []int16

	// Stereo marks interleaved two-channel data.
	Stereo bool

	// Length is the playable length in frames. Zero means "all data".
	Length int

	// LoopStart and LoopLength are in frames. A LoopLength of zero
	// disables looping regardless of Loop.
	LoopStart  int
	LoopLength int
	Loop       LoopMode

	// ReleaseLength is the number of frames right after the loop that a
	// released voice plays once before it stops. Zero means the loop
	// keeps running after a release.
	ReleaseLength int

	// Rate is the frequency in Hz at which the sample plays at its
	// recorded pitch. It is a hint for players and is not used by the
	// renderer.
	Rate uint32
}

// Is16Bit reports whether the sample stores 16-bit frames.
func (s *Sample) Is16Bit() bool {
	return s.Data16 != nil
}

// channels returns the number of interleaved channels.
func (s *Sample) channels() int {
	if s.Stereo {
		return 2
	}
	return 1
}

// dataFrames returns how many whole frames the raw data holds.
func (s *Sample) dataFrames() int {
	n := len(s.Data8)
	if s.Data16 != nil {
		n = len(s.Data16)
	}
	return n / s.channels()
}

// Frames returns the playable length in frames, never more than the data holds.
func (s *Sample) Frames() int {
	if s == nil {
		return 0
	}
	n := s.dataFrames()
	if s.Length > 0 && s.Length < n {
		return s.Length
	}
	return n
}

// Validate checks that the sample describes data it actually has.
func (s *Sample) Validate() error {
	if s == nil || (len(s.Data8) == 0 && len(s.Data16) == 0) {
		return ErrNoData
	}
	if s.Data8 != nil && s.Data16 != nil {
		return ErrBothWidths
	}
	raw := len(s.Data8) + len(s.Data16)
	if s.Stereo && raw%2 != 0 {
		return ErrOddStereoData
	}
	if s.Length < 0 || s.Length > s.dataFrames() {
		return fmt.Errorf("%w: length %d, data %d frames", ErrBadLength, s.Length, s.dataFrames())
	}
	if s.Loop < LoopNone || s.Loop > LoopBidi {
		return fmt.Errorf("%w: %d", ErrBadLoopMode, int(s.Loop))
	}
	if s.LoopLength > 0 {
		if s.LoopStart < 0 || s.LoopLength < 0 || s.LoopStart+s.LoopLength > s.Frames() {
			return fmt.Errorf("%w: start %d, length %d, sample %d frames",
				ErrBadLoop, s.LoopStart, s.LoopLength, s.Frames())
		}
	}
	if s.ReleaseLength < 0 || (s.ReleaseLength > 0 && s.LoopStart+s.LoopLength+s.ReleaseLength > s.Frames()) {
		return fmt.Errorf("%w: %d frames after loop end %d, sample %d frames",
			ErrBadRelease, s.ReleaseLength, s.LoopStart+s.LoopLength, s.Frames())
	}
	return nil
}

// Value returns the value of channel ch at frame in the 16-bit working range.
// 8-bit data is sign-extended by shifting left 8 bits. Out of range frames
// read as silence.
func (s *Sample) Value(frame, ch int) float64 {
	if frame < 0 {
		return 0
	}
	idx := frame
	if s.Stereo {
		idx = frame*2 + ch
	}
	if s.Data16 != nil {
		if idx >= len(s.Data16) {
			return 0
		}
		return float64(s.Data16[idx])
	}
	if idx >= len(s.Data8) {
		return 0
	}
	return float64(int16(s.Data8[idx]) << 8)
}
