package mixer

import (
	"fmt"

	"github.com/tphakala/go-tracker-mixer/internal/dsp"
	"github.com/tphakala/go-tracker-mixer/internal/ramp"
)

// sinkKind selects the sample type a render call writes.
type sinkKind int

const (
	sinkBytes sinkKind = iota
	sinkInts
	sinkFloat32
)

// sink is the destination of one render call.
type sink struct {
	kind   sinkKind
	bytes  []byte
	ints   []int
	floats []float32
}

// RenderBlock renders exactly frames frames into out as little-endian PCM
// in the configured format (8-bit output is unsigned with silence at 128)
// and returns the number of frames written.
//
// After Stop the following blocks carry the fade out; once it has finished
// every block is silence and ErrStopped is returned. ErrBufferTooSmall is returned, without rendering, when out
// cannot hold frames frames.
func (m *Mixer) RenderBlock(out []byte, frames int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	need := frames * m.format.FrameSize()
	if len(out) < need {
		return 0, fmt.Errorf("%w: need %d bytes, got %d", ErrBufferTooSmall, need, len(out))
	}
	return m.render(frames, sink{kind: sinkBytes, bytes: out})
}

// RenderInt renders exactly frames frames into out as interleaved integer
// samples at the configured bit depth, the layout of a go-audio IntBuffer.
func (m *Mixer) RenderInt(out []int, frames int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	need := frames * m.format.Channels
	if len(out) < need {
		return 0, fmt.Errorf("%w: need %d samples, got %d", ErrBufferTooSmall, need, len(out))
	}
	return m.render(frames, sink{kind: sinkInts, ints: out})
}

// RenderFloat32 renders exactly frames frames into out as interleaved
// float32 samples in [-1, 1], ignoring the configured bit depth.
func (m *Mixer) RenderFloat32(out []float32, frames int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	need := frames * m.format.Channels
	if len(out) < need {
		return 0, fmt.Errorf("%w: need %d samples, got %d", ErrBufferTooSmall, need, len(out))
	}
	return m.render(frames, sink{kind: sinkFloat32, floats: out})
}

// render mixes frames frames in chunks of at most BufferSizeInFrames and
// hands each chunk to dst. Called with m.mu held.
func (m *Mixer) render(frames int, dst sink) (int, error) {
	if frames <= 0 {
		return 0, nil
	}

	state := m.state.Load()
	if state == stateStopped {
		m.silence(frames, dst)
		return frames, ErrStopped
	}

	cc := m.config.Load()
	m.apply(cc)
	m.renderer.SetMasterVolume(int(m.masterVolume.Load()))

	stopping := state == stateStopping
	if stopping {
		for i := range m.voices {
			m.voices[i].Cut(ramp.CutFadeFrames)
		}
	}

	for done := 0; done < frames; {
		n := min(frames-done, m.format.BufferSizeInFrames)
		m.mixChunk(n, cc, stopping)
		m.emit(dst, done, n, cc.cfg.SwapSpeakers)
		done += n
	}

	if stopping && m.sounding() == 0 {
		m.state.Store(stateStopped)
	}
	return frames, nil
}

// mixChunk renders n frames into the accumulators and runs the post chain.
//
// The chunk is split into spans that end at the next player tick and at
// the next pending event, so every command lands on its exact frame. Soft
// clipping only runs when voices sum or the equalizer may boost; a single
// voice cannot exceed full scale.
func (m *Mixer) mixChunk(n int, cc *compiledConfig, stopping bool) {
	for _, buf := range m.mix {
		clear(buf[:n])
	}

	summing := cc.cfg.EnableEqualizer
	for pos := 0; pos < n; {
		if !stopping {
			if m.player != nil && m.framesToTick <= 0 {
				m.tick()
			}
			m.scheduler.DoEvents()
		}

		span := n - pos
		if m.player != nil && !stopping {
			span = min(span, m.framesToTick)
		}
		if next, ok := m.scheduler.NextEventTime(); ok && !stopping {
			if d := next - m.scheduler.CurrentTime(); d > 0 && d < int64(span) {
				span = int(d)
			}
		}

		if !summing && m.sounding() > 1 {
			summing = true
		}
		for i := range m.voices {
			m.renderer.Mix(&m.voices[i], m.mix, pos, span, cc.audible(i))
		}

		m.scheduler.IncreaseCurrentTime(int64(span))
		if m.player != nil {
			m.framesToTick -= span
		}
		pos += span
	}

	if cc.cfg.EnableAmigaFilter && m.amigaLED {
		m.amiga.Process(m.mix, n)
	}
	if cc.cfg.EnableEqualizer {
		m.eq.Process(m.mix, n)
	}
	if summing {
		dsp.SoftClip(m.mix, n)
	}

	if a := m.analyzer.Load(); a != nil {
		a.Push(m.mix, n)
	}
}

// emit converts n mixed frames into dst starting at frame off.
func (m *Mixer) emit(dst sink, off, n int, swap bool) {
	ch := m.format.Channels
	switch dst.kind {
	case sinkBytes:
		start := off * m.format.FrameSize()
		m.conv.Bytes(dst.bytes[start:], m.mix, n, ch, m.format.BitsPerSample, swap)
	case sinkInts:
		m.conv.Ints(dst.ints[off*ch:], m.mix, n, ch, m.format.BitsPerSample, swap)
	case sinkFloat32:
		m.conv.Float32(dst.floats[off*ch:], m.mix, n, ch, swap)
	}
}

// silence writes frames frames of the format's silence value to dst.
func (m *Mixer) silence(frames int, dst sink) {
	for _, buf := range m.mix {
		clear(buf)
	}
	for done := 0; done < frames; {
		n := min(frames-done, m.format.BufferSizeInFrames)
		m.emit(dst, done, n, false)
		done += n
	}
}
