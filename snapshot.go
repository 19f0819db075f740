package mixer

import (
	"fmt"

	"github.com/tphakala/go-tracker-mixer/internal/timing"
)

// Snapshot is a plain copy of the playback state: every voice, the queued
// commands, the clock and the player tick position. It is used to jump
// back in time and is independent of the mixer it came from.
type Snapshot struct {
	// Voices are deep copies of the voice array.
	Voices []Voice

	// Time is the mixer clock in frames.
	Time int64

	// Ticks is the number of player ticks so far.
	Ticks int64

	scheduler    timing.Snapshot
	framesToTick int
	tickFrac     float64
	amigaLED     bool
}

// Snapshot captures the current state between two render calls.
func (m *Mixer) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		Voices:       make([]Voice, len(m.voices)),
		Ticks:        m.ticks.Load(),
		scheduler:    m.scheduler.Snapshot(),
		framesToTick: m.framesToTick,
		tickFrac:     m.tickFrac,
		amigaLED:     m.amigaLED,
	}
	s.Time = s.scheduler.CurrentTime
	// Queued commands return to the pool once they run.
	for i, e := range s.scheduler.Events {
		s.scheduler.Events[i].Event = m.bind(e.Event)
	}
	for i := range m.voices {
		s.Voices[i] = m.voices[i].Clone()
	}
	return s
}

// Restore puts the mixer back into the state captured by s. The snapshot
// stays untouched and can be restored again. Voices are retuned to the
// current output format.
func (m *Mixer) Restore(s Snapshot) error {
	if len(s.Voices) != len(m.voices) {
		return fmt.Errorf("%w: snapshot has %d voices, mixer has %d", ErrInvalidVoice, len(s.Voices), len(m.voices))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range s.Voices {
		m.voices[i] = s.Voices[i].Clone()
		m.voices[i].Retune(uint32(m.format.Frequency))
	}

	sched := s.scheduler
	sched.Events = make([]timing.PendingEvent, len(s.scheduler.Events))
	for i, e := range s.scheduler.Events {
		sched.Events[i] = timing.PendingEvent{Time: e.Time, Event: m.bind(e.Event)}
	}
	// A snapshot taken with another latency keeps its events but adopts
	// the current latency for new ones.
	sched.Latency = m.scheduler.Latency()
	m.scheduler.Restore(sched)

	m.ticks.Store(s.Ticks)
	m.framesToTick = s.framesToTick
	m.tickFrac = s.tickFrac
	m.amigaLED = s.amigaLED
	m.amiga.Reset()
	m.eq.Reset()
	return nil
}

// bind returns a private copy of a queued command that acts on m.
func (m *Mixer) bind(e timing.Event) timing.Event {
	c, ok := e.(*command)
	if !ok {
		return e
	}
	cp := *c
	cp.m = m
	return &cp
}
