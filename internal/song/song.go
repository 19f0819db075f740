// Package song is a minimal tracker replay routine driving a mixer: a single
// pattern of rows, one cell per voice, advanced once per tick.
package song

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	mixer "github.com/tphakala/go-tracker-mixer"
)

// Note values. Notes count semitones from C-0 = 1.
const (
	NoteNone = 0
	NoteOff  = 255
	NoteC4   = 49

	semitones = 12
)

// Default tempo of a tracker module.
const (
	DefaultBPM   = 125
	DefaultSpeed = 6
)

// PanNone leaves a voice panning unchanged.
const PanNone = -1

// ErrEmptyPattern is returned for a pattern without rows or voices.
var ErrEmptyPattern = errors.New("song: empty pattern")

// Cell is one voice entry of a pattern row.
type Cell struct {
	Note       int
	Instrument int
	// Volume is set with the note, 0-256.
	Volume int
	// Slide is added to the volume on every tick but the first.
	Slide int
	Pan   int
}

// Pattern holds rows of cells, one cell per voice.
type Pattern [][]Cell

// Song replays a pattern in a loop. It implements mixer.Player.
type Song struct {
	pattern     Pattern
	instruments []*mixer.Sample
	speed       int
	bpm         int

	tick   int
	volume []int
	err    error

	row   atomic.Int32
	loops atomic.Int32
}

// New creates a song playing pattern with instruments at bpm, speed ticks
// per row. Cells refer to instruments by index.
func New(pattern Pattern, instruments []*mixer.Sample, bpm, speed int) (*Song, error) {
	if len(pattern) == 0 || len(pattern[0]) == 0 {
		return nil, ErrEmptyPattern
	}
	if bpm <= 0 || speed <= 0 {
		return nil, fmt.Errorf("song: invalid tempo %d bpm, speed %d", bpm, speed)
	}
	voices := len(pattern[0])
	for r, row := range pattern {
		if len(row) != voices {
			return nil, fmt.Errorf("song: row %d has %d cells, want %d", r, len(row), voices)
		}
		for v, c := range row {
			if c.Note != NoteNone && c.Note != NoteOff && (c.Instrument < 0 || c.Instrument >= len(instruments)) {
				return nil, fmt.Errorf("song: row %d voice %d: no instrument %d", r, v, c.Instrument)
			}
		}
	}

	return &Song{
		pattern:     pattern,
		instruments: instruments,
		speed:       speed,
		bpm:         bpm,
		volume:      make([]int, voices),
	}, nil
}

// Voices returns the number of voices the pattern uses.
func (s *Song) Voices() int {
	return len(s.pattern[0])
}

// Tick plays the current row on its first tick and applies volume slides
// on the others.
func (s *Song) Tick(m *mixer.Mixer) {
	row := s.pattern[s.row.Load()]
	for v, c := range row {
		if s.tick == 0 {
			s.trigger(m, v, c)
		} else if c.Slide != 0 {
			s.volume[v] = min(max(s.volume[v]+c.Slide, 0), mixer.MaxVolume)
			s.record(m.SetVoiceVolume(v, s.volume[v]))
		}
	}

	s.tick++
	if s.tick < s.speed {
		return
	}
	s.tick = 0
	next := s.row.Load() + 1
	if int(next) == len(s.pattern) {
		next = 0
		s.loops.Add(1)
	}
	s.row.Store(next)
}

func (s *Song) trigger(m *mixer.Mixer, v int, c Cell) {
	if c.Pan != PanNone {
		s.record(m.SetVoicePanning(v, c.Pan))
	}

	switch c.Note {
	case NoteNone:
		return
	case NoteOff:
		s.record(m.StopVoice(v))
		return
	}

	inst := s.instruments[c.Instrument]
	s.volume[v] = c.Volume
	s.record(m.SetVoiceFrequency(v, Frequency(c.Note, inst.Rate)))
	s.record(m.SetVoiceVolume(v, c.Volume))
	s.record(m.PlaySample(v, inst, 0, inst.Loop))
}

// record keeps the first command error; Tick has no way to return it.
func (s *Song) record(err error) {
	if err != nil && s.err == nil {
		s.err = err
	}
}

// TicksPerSecond converts the tempo the way trackers do.
func (s *Song) TicksPerSecond() float64 {
	return float64(s.bpm) * 2 / 5
}

// Row returns the row that plays next.
func (s *Song) Row() int {
	return int(s.row.Load())
}

// Loops returns how many times the pattern has played through.
func (s *Song) Loops() int {
	return int(s.loops.Load())
}

// Err returns the first command error raised while ticking, if any. Read
// it once rendering has stopped.
func (s *Song) Err() error {
	return s.err
}

// Frequency returns the playback rate of note for an instrument whose C-4
// plays at c4Rate Hz. A zero c4Rate selects C4Rate.
func Frequency(note int, c4Rate uint32) uint32 {
	if c4Rate == 0 {
		c4Rate = C4Rate
	}
	return uint32(math.Round(float64(c4Rate) * math.Exp2(float64(note-NoteC4)/semitones)))
}
