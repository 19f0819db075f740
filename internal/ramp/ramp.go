// Package ramp computes per-speaker voice gains and smooths their changes
// across a render span so that volume and panning moves never click.
package ramp

// CutFadeFrames is the length of the fade applied when a voice is cut off.
const CutFadeFrames = 64

const (
	volumeScale     = 256.0
	panCenter       = 128
	panSurround     = 512
	separationScale = 100.0
	surroundGain    = 0.5
)

// Gains holds the left and right speaker gains of a voice.
type Gains [2]float64

// Target returns the speaker gains for a voice volume (0..256), panning
// (0..256, or 512 for surround) and stereo separation percentage (0..100).
//
// Separation scales the distance from center, so 0 collapses every voice to
// mono and 100 keeps the full panning width. A surround voice plays at half
// gain on both speakers with the right speaker phase-inverted when surround
// is enabled.
func Target(volume, panning, separation int, surround bool) Gains {
	vol := float64(clamp(volume, 0, 256)) / volumeScale

	if panning == panSurround {
		g := vol * surroundGain
		if surround {
			return Gains{g, -g}
		}
		return Gains{g, g}
	}

	sep := float64(clamp(separation, 0, 100)) / separationScale
	pan := float64(clamp(panning, 0, 256)-panCenter)*sep + panCenter

	return Gains{
		vol * (volumeScale - pan) / volumeScale,
		vol * pan / volumeScale,
	}
}

// Scale returns g with both gains multiplied by f.
func (g Gains) Scale(f float64) Gains {
	return Gains{g[0] * f, g[1] * f}
}

// Ramp walks linearly from one Gains value to another over a number of
// frames. The gain returned for the last frame is exactly the target.
type Ramp struct {
	cur    Gains
	step   Gains
	target Gains
	left   int
}

// Start begins a ramp from old to target over frames frames. A zero or
// negative frame count jumps straight to the target.
func (r *Ramp) Start(old, target Gains, frames int) {
	r.target = target
	if frames <= 0 || old == target {
		r.cur = target
		r.left = 0
		return
	}

	r.cur = old
	r.left = frames
	n := float64(frames)
	r.step = Gains{(target[0] - old[0]) / n, (target[1] - old[1]) / n}
}

// Next returns the gain for the next frame.
func (r *Ramp) Next() Gains {
	if r.left == 0 {
		return r.target
	}
	r.left--
	if r.left == 0 {
		r.cur = r.target
		return r.cur
	}
	r.cur[0] += r.step[0]
	r.cur[1] += r.step[1]
	return r.cur
}

// Done reports whether the ramp has reached its target.
func (r *Ramp) Done() bool {
	return r.left == 0
}

// Fade returns the cut-fade multiplier for a voice with remaining frames of
// fade left. Zero means no fade is running.
func Fade(remaining int) float64 {
	if remaining <= 0 {
		return 1
	}
	return float64(remaining) / CutFadeFrames
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
