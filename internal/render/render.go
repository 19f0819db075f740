// Package render implements the per-voice inner loop of the mixer.
//
// Mix advances one voice across a span of output frames. It reads the
// interpolated sample value at the voice position, applies the ramped
// speaker gains and accumulates the result into planar float64 buffers. It
// also handles loop wrap, bidi bounce, release segments and one-shot end.
// The loop never allocates and never panics; any voice state it cannot make
// sense of is rendered as silence.
package render

import (
	"github.com/tphakala/go-tracker-mixer/internal/fixed"
	"github.com/tphakala/go-tracker-mixer/internal/interp"
	"github.com/tphakala/go-tracker-mixer/internal/ramp"
	"github.com/tphakala/go-tracker-mixer/internal/voice"
)

// maxReflections bounds the bidi reflection loop for increments that are
// larger than the loop itself.
const maxReflections = 64

// Settings are the renderer parameters taken from the mixer configuration.
type Settings struct {
	Mode       interp.Mode
	Separation int
	Surround   bool
}

// Renderer mixes voices with a fixed set of settings. Configure swaps the
// settings between blocks; Mix must not run concurrently with it.
type Renderer struct {
	settings Settings
	kernel   interp.Kernel
	points   int
	master   float64
}

// New creates a renderer at full master volume.
func New(s Settings) *Renderer {
	r := &Renderer{master: 1}
	r.Configure(s)
	return r
}

// SetMasterVolume scales every voice by volume/256. The change is ramped
// like any other gain change.
func (r *Renderer) SetMasterVolume(volume int) {
	r.master = float64(max(0, min(volume, voice.MaxVolume))) / voice.MaxVolume
}

// Configure selects the interpolation kernel and panning parameters.
func (r *Renderer) Configure(s Settings) {
	r.settings = s
	r.kernel = interp.For(s.Mode)
	r.points = s.Mode.Points()
}

// Settings returns the active settings.
func (r *Renderer) Settings() Settings {
	return r.settings
}

// Mix renders frames frames of v into dst starting at index off. dst holds
// one buffer for mono output or two (left, right) for stereo output. When
// audible is false the voice advances without contributing, which is how
// disabled channels keep their timing.
func (r *Renderer) Mix(v *voice.Voice, dst [][]float64, off, frames int, audible bool) {
	if v == nil || !v.Enabled || frames <= 0 || len(dst) == 0 {
		return
	}

	if v.Kick {
		r.kick(v)
	}
	if v.HasNewPosition {
		r.seek(v)
	}
	if !v.Active || !playable(v.SampleInfo) {
		return
	}

	target := ramp.Target(v.Volume, v.Panning, r.settings.Separation, r.settings.Surround).Scale(r.master)
	v.PanningVolume = target

	var gains ramp.Ramp
	gains.Start(v.OldPanningVolume, target, frames)
	v.OldPanningVolume = target

	audible = audible && !v.Muted
	stereoOut := len(dst) > 1

	for i := range frames {
		g := gains.Next()
		fade := ramp.Fade(v.RampVolume)

		if audible {
			left, right := r.fetch(v)
			idx := off + i
			if stereoOut {
				dst[0][idx] += left * g[0] * fade
				dst[1][idx] += right * g[1] * fade
			} else {
				dst[0][idx] += (left*abs(g[0]) + right*abs(g[1])) * fade
			}
		}

		if v.RampVolume > 0 {
			v.RampVolume--
			if v.RampVolume == 0 {
				v.Active = false
				return
			}
		}

		v.Current += v.Increment
		if !advance(v) {
			return
		}
	}
}

// kick restarts the voice from its first frame (last frame for reverse
// playback) and arranges a fade in from silence.
func (r *Renderer) kick(v *voice.Voice) {
	v.Kick = false
	v.Released = false
	v.Flags &^= voice.FlagRelease
	v.RampVolume = 0
	v.OldPanningVolume = ramp.Gains{}

	if !playable(v.SampleInfo) {
		v.Active = false
		return
	}

	v.Active = true
	if v.Reverse() {
		v.Current = fixed.FromFrames(v.SampleInfo.Sample.Frames() - 1)
	} else {
		v.Current = 0
	}
}

// seek applies a pending position change and brings the result back into
// the playable range.
func (r *Renderer) seek(v *voice.Voice) {
	v.HasNewPosition = false
	if !playable(v.SampleInfo) {
		return
	}

	pos := fixed.FromFrames(v.NewPosition)
	if v.RelativePosition {
		pos += v.Current
	}
	if pos < 0 {
		pos = 0
	}
	v.Current = pos

	end := fixed.FromFrames(v.PlayEnd())
	if v.Current < end {
		return
	}
	if v.Looping() {
		if v.Increment >= 0 {
			wrapLoop(v)
		} else {
			v.Current = end - 1
		}
		return
	}
	// Seeking past the end of a one-shot sample silences the voice.
	v.Active = false
	v.Current = 0
}

// fetch returns the interpolated left and right value at the voice position.
// Mono samples return the same value twice.
func (r *Renderer) fetch(v *voice.Voice) (float64, float64) {
	info := v.SampleInfo
	s := info.Sample
	frames := v.PlayEnd()

	i := v.Current.Int()
	x := v.Current.FracFloat()
	w := edgesAt(v, i)

	i0, i1, i2, i3 := -1, i, -1, -1
	switch r.points {
	case 4:
		i0 = neighbor(info, frames, i-1, w)
		i2 = neighbor(info, frames, i+1, w)
		i3 = neighbor(info, frames, i+2, w)
	case 2:
		i2 = neighbor(info, frames, i+1, w)
	}
	i1 = neighbor(info, frames, i1, w)

	left := r.kernel(value(s, i0, 0), value(s, i1, 0), value(s, i2, 0), value(s, i3, 0), x)
	if !s.Stereo {
		return left, left
	}
	right := r.kernel(value(s, i0, 1), value(s, i1, 1), value(s, i2, 1), value(s, i3, 1), x)
	return left, right
}

// edges selects which loop edges the neighbors of a frame wrap across.
type edges struct {
	high bool // past the loop end
	low  bool // before the loop start
}

// edgesAt returns the wrapping edges for a voice at frame i. A voice in the
// tail after the loop, as in reverse playback, reads the tail as it is, and
// a released voice reads on into its release segment.
func edgesAt(v *voice.Voice, i int) edges {
	if !v.Looping() || i >= v.SampleInfo.LoopEnd() {
		return edges{}
	}
	return edges{
		high: !v.Releasing(),
		low:  i >= v.SampleInfo.LoopStart,
	}
}

// neighbor maps a frame index that may lie outside the played region to the
// frame that is actually heard there. It returns -1 for silence.
func neighbor(info *voice.SampleInfo, frames, j int, w edges) int {
	if w.high || w.low {
		start, end, length := info.LoopStart, info.LoopEnd(), info.LoopLength
		bidi := info.Flags&voice.FlagBidi != 0

		switch {
		case w.high && j >= end:
			over := j - end
			if bidi {
				m := over % (2 * length)
				if m < length {
					return end - 1 - m
				}
				return start + (m - length)
			}
			return start + over%length

		case w.low && j < start:
			under := start - j - 1
			if bidi {
				m := under % (2 * length)
				if m < length {
					return start + m
				}
				return end - 1 - (m - length)
			}
			return end - 1 - under%length
		}
	}

	if j < 0 {
		return 0
	}
	if j >= frames {
		return -1
	}
	return j
}

func value(s *voice.Sample, frame, ch int) float64 {
	if frame < 0 {
		return 0
	}
	return s.Value(frame, ch)
}

// advance checks the loop and end conditions after the position moved.
// It reports false when the voice stopped.
func advance(v *voice.Voice) bool {
	if v.Looping() {
		wrapLoop(v)
		return v.Active
	}

	end := fixed.FromFrames(v.PlayEnd())
	switch {
	case v.Increment >= 0 && v.Current >= end:
		if v.NewSampleInfo != nil {
			splice(v, v.Current-end)
			return v.Active
		}
	case v.Increment < 0 && v.Current < 0:
	default:
		return true
	}

	v.Active = false
	v.Current = 0
	return false
}

// wrapLoop brings a looping voice back into its loop.
func wrapLoop(v *voice.Voice) {
	info := v.SampleInfo
	start := fixed.FromFrames(info.LoopStart)
	end := fixed.FromFrames(info.LoopEnd())
	length := end - start

	if v.Current >= end && v.Increment >= 0 && v.NewSampleInfo == nil && v.Releasing() {
		enterRelease(v)
		return
	}
	if info.Flags&voice.FlagBidi != 0 {
		reflect(v, start, end)
		return
	}

	switch {
	case v.Current >= end && v.Increment >= 0:
		over := v.Current - end
		if v.NewSampleInfo != nil {
			splice(v, over)
			return
		}
		v.Current = start + over%length

	case v.Current < start && v.Increment < 0:
		under := (start - v.Current) % length
		if under == 0 {
			v.Current = start
		} else {
			v.Current = end - under
		}
	}
}

// enterRelease leaves the loop at its end and carries on into the release
// segment, which plays once.
func enterRelease(v *voice.Voice) {
	v.Flags |= voice.FlagRelease
	if v.Current >= fixed.FromFrames(v.PlayEnd()) {
		v.Active = false
		v.Current = 0
	}
}

// reflect bounces a bidi voice off the loop edges until it is back inside,
// turning it around on every bounce.
func reflect(v *voice.Voice, start, end fixed.Position) {
	for range maxReflections {
		switch {
		case v.Current >= end && v.Increment >= 0:
			v.Current = 2*end - 1 - v.Current
			setDirection(v, true)
		case v.Current < start && v.Increment < 0:
			v.Current = 2*start - v.Current
			setDirection(v, false)
		default:
			return
		}
	}

	// Pathological increments: park the voice inside the loop.
	if v.Current >= end {
		v.Current = end - 1
	}
	if v.Current < start {
		v.Current = start
	}
}

func setDirection(v *voice.Voice, reverse bool) {
	if v.Reverse() != reverse {
		v.Bounce()
	}
}

// splice switches the voice to its queued sample, keeping the overshoot so
// the pitch stays continuous across the switch.
func splice(v *voice.Voice, over fixed.Position) {
	next := v.NewSampleInfo
	v.NewSampleInfo = nil
	v.SampleInfo = next
	v.Flags = next.Flags
	if v.Increment < 0 {
		v.Increment = -v.Increment
	}

	if !playable(next) {
		v.Active = false
		v.Current = 0
		return
	}

	if next.Looping() {
		start := fixed.FromFrames(next.LoopStart)
		v.Current = start + over%fixed.FromFrames(next.LoopLength)
		return
	}

	v.Current = over
	if v.Current >= fixed.FromFrames(next.Sample.Frames()) {
		v.Active = false
		v.Current = 0
	}
}

func playable(info *voice.SampleInfo) bool {
	return info != nil && info.Sample != nil && info.Sample.Frames() > 0
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
