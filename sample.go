package mixer

import (
	"github.com/tphakala/go-tracker-mixer/internal/voice"
)

// Sample is a PCM buffer owned by the caller. The mixer only references
// it, so its data must not change while any voice plays it.
type Sample = voice.Sample

// LoopMode selects how a sample repeats.
type LoopMode = voice.LoopMode

// Loop modes.
const (
	LoopNone    = voice.LoopNone
	LoopForward = voice.LoopForward
	LoopBidi    = voice.LoopBidi
)

// Voice is a copy of the state of one mixer voice, as returned by
// VoiceState and stored in a Snapshot.
type Voice = voice.Voice

// NewSample16 wraps 16-bit frames, interleaved left/right when stereo is
// set, in a one-shot Sample playing at rate Hz.
func NewSample16(data []int16, stereo bool, rate uint32) *Sample {
	return &Sample{Data16: data, Stereo: stereo, Rate: rate}
}

// NewSample8 wraps signed 8-bit frames in a one-shot Sample playing at
// rate Hz.
func NewSample8(data []int8, stereo bool, rate uint32) *Sample {
	return &Sample{Data8: data, Stereo: stereo, Rate: rate}
}

// WithLoop returns a copy of s that loops length frames from start.
func WithLoop(s *Sample, mode LoopMode, start, length int) *Sample {
	c := *s
	c.Loop = mode
	c.LoopStart = start
	c.LoopLength = length
	return &c
}

// WithRelease returns a copy of s whose length frames after the loop end
// form the release segment played after ReleaseVoice.
func WithRelease(s *Sample, length int) *Sample {
	c := *s
	c.ReleaseLength = length
	return &c
}
