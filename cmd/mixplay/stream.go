package main

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"

	mixer "github.com/tphakala/go-tracker-mixer"
)

const bytesPerFloat32 = 4

// stream adapts the mixer to the io.Reader an audio device pulls from,
// rendering float32 little-endian frames on demand.
type stream struct {
	m        *mixer.Mixer
	channels int

	mu  sync.Mutex
	buf []float32
}

func newStream(m *mixer.Mixer) *stream {
	f := m.OutputFormat()
	return &stream{
		m:        m,
		channels: f.Channels,
		buf:      make([]float32, f.BufferSizeInFrames*f.Channels),
	}
}

// Read renders as many whole frames as fit in p. It returns io.EOF once
// the mixer has stopped and its fade out has been delivered.
func (s *stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frameBytes := s.channels * bytesPerFloat32
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, nil
	}

	if need := frames * s.channels; len(s.buf) < need {
		s.buf = make([]float32, need)
	}
	samples := s.buf[:frames*s.channels]

	if _, err := s.m.RenderFloat32(samples, frames); err != nil {
		if errors.Is(err, mixer.ErrStopped) {
			return 0, io.EOF
		}
		return 0, err
	}

	for i, v := range samples {
		binary.LittleEndian.PutUint32(p[i*bytesPerFloat32:], math.Float32bits(v))
	}
	return frames * frameBytes, nil
}
