// Package voice holds the per-voice playback state of the mixer.
//
// A Voice is plain data. The mixer keeps a fixed array of them indexed by
// voice number and the renderer mutates them in place; commands from format
// players are applied through the methods below from the rendering goroutine
// only.
package voice

import (
	"github.com/tphakala/go-tracker-mixer/internal/fixed"
)

// Flags are the playback flags of a voice.
type Flags uint16

const (
	// Flag16Bit marks 16-bit sample data.
	Flag16Bit Flags = 1 << iota

	// FlagStereo marks interleaved stereo sample data.
	FlagStereo

	// FlagReverse marks playback towards the sample start.
	FlagReverse

	// FlagBidi marks a ping-pong loop.
	FlagBidi

	// FlagLoop marks a looping sample (forward or bidi).
	FlagLoop

	// FlagRelease marks a voice that left its loop and plays the release
	// segment.
	FlagRelease
)

// Volume and panning ranges.
const (
	MaxVolume      = 256
	MaxAmigaVolume = 64
	PanLeft        = 0
	PanCenter      = 128
	PanRight       = 256
	PanSurround    = 512
)

// SampleInfo binds a sample to the loop region a voice plays it with.
type SampleInfo struct {
	Sample        *Sample
	Flags         Flags
	LoopStart     int
	LoopLength    int
	ReleaseLength int
}

// NewSampleInfo derives playback info from a sample and the requested loop
// mode. An invalid loop region on the sample turns the loop off.
func NewSampleInfo(s *Sample, loop LoopMode) *SampleInfo {
	info := MakeSampleInfo(s, loop)
	return &info
}

// MakeSampleInfo is NewSampleInfo returning a value.
func MakeSampleInfo(s *Sample, loop LoopMode) SampleInfo {
	info := SampleInfo{Sample: s}
	if s == nil {
		return info
	}

	if s.Is16Bit() {
		info.Flags |= Flag16Bit
	}
	if s.Stereo {
		info.Flags |= FlagStereo
	}

	frames := s.Frames()
	if loop != LoopNone && s.LoopLength > 0 && s.LoopStart >= 0 && s.LoopStart+s.LoopLength <= frames {
		info.Flags |= FlagLoop
		if loop == LoopBidi {
			info.Flags |= FlagBidi
		}
		info.LoopStart = s.LoopStart
		info.LoopLength = s.LoopLength
		if s.ReleaseLength > 0 && info.LoopEnd()+s.ReleaseLength <= frames {
			info.ReleaseLength = s.ReleaseLength
		}
	}
	return info
}

// Looping reports whether the info describes a usable loop.
func (si *SampleInfo) Looping() bool {
	return si.Flags&FlagLoop != 0 && si.LoopLength > 0
}

// LoopEnd returns the first frame after the loop.
func (si *SampleInfo) LoopEnd() int {
	return si.LoopStart + si.LoopLength
}

// Voice is the mutable state of one mixer channel.
type Voice struct {
	// Enabled means the voice is assigned to a part. Disabled voices are
	// skipped entirely.
	Enabled bool

	// Kick requests a restart from the sample start at the next render.
	Kick bool

	// Active means the voice is producing sound.
	Active bool

	Flags Flags

	SampleInfo    *SampleInfo
	NewSampleInfo *SampleInfo

	Current   fixed.Position
	Increment fixed.Position

	Frequency uint32
	Volume    int
	Panning   int

	// RampVolume counts down the frames of a cut fade. Zero means no fade
	// is in progress.
	RampVolume int

	// PanningVolume is the target per-speaker gain, OldPanningVolume the
	// gain reached at the end of the previous span.
	PanningVolume    [2]float64
	OldPanningVolume [2]float64

	// HasNewPosition marks a pending seek to NewPosition frames, relative to
	// the current position when RelativePosition is set.
	HasNewPosition   bool
	NewPosition      int
	RelativePosition bool

	// Muted voices advance but do not contribute to the mix.
	Muted bool

	// Released is set by a note release. The voice leaves its loop at the
	// next loop end when the sample has a release segment.
	Released bool

	// slots back SampleInfo and NewSampleInfo for infos stored with Hold.
	slots [2]SampleInfo
}

// Clone returns a deep copy of v. Sample data is shared because it is
// immutable; the SampleInfo records are copied.
func (v *Voice) Clone() Voice {
	c := *v
	if v.SampleInfo != nil {
		si := *v.SampleInfo
		c.SampleInfo = &si
	}
	if v.NewSampleInfo != nil {
		si := *v.NewSampleInfo
		c.NewSampleInfo = &si
	}
	return c
}

// Reset returns the voice to its power-on state without reallocating it.
func (v *Voice) Reset() {
	*v = Voice{Enabled: true, Panning: PanCenter}
}

// Hold copies info into storage owned by the voice and returns a pointer to
// the copy, so assigning samples while rendering does not allocate. The copy
// stays valid while it is the voice's SampleInfo or NewSampleInfo; Hold
// never overwrites the current SampleInfo.
func (v *Voice) Hold(info SampleInfo) *SampleInfo {
	p := &v.slots[0]
	if p == v.SampleInfo {
		p = &v.slots[1]
	}
	*p = info
	return p
}

// Play assigns a sample and requests a kick. startOffset is applied as an
// absolute seek right after the kick.
func (v *Voice) Play(info *SampleInfo, startOffset int, reverse bool) {
	v.SampleInfo = info
	v.NewSampleInfo = nil
	v.Flags = info.Flags
	if reverse {
		v.Flags |= FlagReverse
	}
	v.Kick = true
	v.Released = false
	v.RampVolume = 0
	v.HasNewPosition = startOffset != 0
	v.NewPosition = startOffset
	v.RelativePosition = false
	v.applyDirection()
}

// QueueSwap sets a sample to take over at the next loop wrap or sample end.
func (v *Voice) QueueSwap(info *SampleInfo) {
	v.NewSampleInfo = info
}

// SetFrequency changes the playback rate and recomputes the increment for
// an output running at outputHz.
func (v *Voice) SetFrequency(hz, outputHz uint32) {
	v.Frequency = hz
	v.Increment = fixed.Increment(hz, outputHz)
	v.applyDirection()
}

// Retune recomputes the increment after an output rate change.
func (v *Voice) Retune(outputHz uint32) {
	v.SetFrequency(v.Frequency, outputHz)
}

// SetPosition requests a seek, applied at the next render.
func (v *Voice) SetPosition(frame int, relative bool) {
	v.HasNewPosition = true
	v.NewPosition = frame
	v.RelativePosition = relative
}

// Cut starts a click-free fade out over fadeFrames frames. An idle voice is
// simply stopped.
func (v *Voice) Cut(fadeFrames int) {
	v.Kick = false
	v.NewSampleInfo = nil
	if !v.Active || fadeFrames <= 0 {
		v.Active = false
		v.RampVolume = 0
		return
	}
	if v.RampVolume == 0 || v.RampVolume > fadeFrames {
		v.RampVolume = fadeFrames
	}
}

// Release marks the note as released.
func (v *Voice) Release() {
	v.Released = true
}

// Looping reports whether the voice is still cycling through a loop.
func (v *Voice) Looping() bool {
	return v.SampleInfo != nil && v.SampleInfo.Looping() && v.Flags&FlagRelease == 0
}

// Releasing reports whether the voice will leave its loop at the loop end.
func (v *Voice) Releasing() bool {
	return v.Released && v.SampleInfo != nil && v.SampleInfo.ReleaseLength > 0
}

// PlayEnd returns the frame where playback stops once the voice is not
// looping: the end of the release segment or the end of the sample.
func (v *Voice) PlayEnd() int {
	info := v.SampleInfo
	if info == nil {
		return 0
	}
	if v.Flags&FlagRelease != 0 {
		return info.LoopEnd() + info.ReleaseLength
	}
	return info.Sample.Frames()
}

// Sounding reports whether the voice would produce output if rendered now.
func (v *Voice) Sounding() bool {
	return v.Enabled && (v.Active || v.Kick) && v.SampleInfo != nil && v.SampleInfo.Sample.Frames() > 0
}

// Reverse reports whether the voice is playing backwards.
func (v *Voice) Reverse() bool {
	return v.Flags&FlagReverse != 0
}

// applyDirection keeps the sign of Increment in line with FlagReverse.
func (v *Voice) applyDirection() {
	mag := v.Increment
	if mag < 0 {
		mag = -mag
	}
	if v.Reverse() {
		v.Increment = -mag
	} else {
		v.Increment = mag
	}
}

// Bounce flips the playback direction, as a bidi loop does at its edges.
func (v *Voice) Bounce() {
	v.Flags ^= FlagReverse
	v.Increment = -v.Increment
}
