// Package timing implements the timed event scheduler that lets commands
// take effect at an exact output frame instead of at block boundaries.
//
// Time is counted in output frames since playback started. The mixer
// advances the clock with IncreaseCurrentTime after every rendered span and
// calls DoEvents at the start of each span; NextEventTime tells it where the
// next span must end.
package timing

import (
	"cmp"
	"slices"
	"sync"
)

const (
	// initialCapacity is the number of pending events preallocated so the
	// common case never grows the queue while rendering.
	initialCapacity = 256

	// maxDrainRounds bounds how often DoEvents re-checks for events that
	// executing events scheduled for the current frame.
	maxDrainRounds = 16

	msPerSecond = 1000
)

// Kind classifies events so that pending ones of a class can be cancelled
// together with RemoveEvents.
type Kind int

// Event is a command executed at an exact output frame.
type Event interface {
	// Kind returns the class of the event.
	Kind() Kind

	// Execute runs the event. late is how many frames after its scheduled
	// time the event runs; it is zero when the mixer splits blocks exactly.
	Execute(late int64)
}

type entry struct {
	time  int64
	event Event
}

// Scheduler is a time-sorted queue of pending events.
//
// The mutex only guards enqueue, drain and clock updates; events always
// execute with the lock released, so they may schedule further events.
type Scheduler struct {
	mu      sync.Mutex
	events  []entry
	due     []entry
	sorted  bool
	current int64
	latency int64
}

// New creates an empty scheduler at time zero.
func New() *Scheduler {
	return &Scheduler{
		events: make([]entry, 0, initialCapacity),
		due:    make([]entry, 0, initialCapacity),
		sorted: true,
	}
}

// SetLatency sets the delay added to every new event:
//
//	mixerHz/1000*latencyMs + deviceLatency
//
// Events already queued keep their execution time.
func (s *Scheduler) SetLatency(mixerHz, latencyMs, deviceLatency int) {
	latency := int64(mixerHz/msPerSecond)*int64(latencyMs) + int64(deviceLatency)
	if latency < 0 {
		latency = 0
	}

	s.mu.Lock()
	s.latency = latency
	s.mu.Unlock()
}

// Latency returns the current latency in frames.
func (s *Scheduler) Latency() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latency
}

// AddEvent queues e to run relativeTime frames from now plus the latency.
// Negative relative times are treated as "now".
func (s *Scheduler) AddEvent(e Event, relativeTime int64) {
	if relativeTime < 0 {
		relativeTime = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.current + relativeTime + s.latency
	if n := len(s.events); n > 0 && s.events[n-1].time > at {
		s.sorted = false
	}
	s.events = append(s.events, entry{time: at, event: e})
}

// DoEvents executes every event whose time has come, oldest first. Events
// scheduled for the same frame run in the order they were added.
func (s *Scheduler) DoEvents() int {
	executed := 0
	for range maxDrainRounds {
		now, n := s.drain()
		if n == 0 {
			break
		}
		for i := range n {
			ev := s.due[i]
			s.due[i] = entry{}
			ev.event.Execute(now - ev.time)
		}
		executed += n
	}
	return executed
}

// drain moves the due events into s.due and returns the clock at drain time.
func (s *Scheduler) drain() (int64, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sortLocked()

	n := 0
	for n < len(s.events) && s.events[n].time <= s.current {
		n++
	}
	if n == 0 {
		return s.current, 0
	}

	s.due = append(s.due[:0], s.events[:n]...)
	rest := copy(s.events, s.events[n:])
	clear(s.events[rest:])
	s.events = s.events[:rest]
	return s.current, n
}

func (s *Scheduler) sortLocked() {
	if s.sorted {
		return
	}
	slices.SortStableFunc(s.events, func(a, b entry) int {
		return cmp.Compare(a.time, b.time)
	})
	s.sorted = true
}

// RemoveEvents cancels every pending event of the given kind and returns
// how many were removed.
func (s *Scheduler) RemoveEvents(kind Kind) int {
	return s.RemoveFunc(func(e Event) bool { return e.Kind() == kind })
}

// RemoveFunc cancels every pending event for which match returns true.
func (s *Scheduler) RemoveFunc(match func(Event) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.events)
	s.events = slices.DeleteFunc(s.events, func(e entry) bool { return match(e.event) })
	return before - len(s.events)
}

// IncreaseCurrentTime advances the clock by the number of frames rendered.
func (s *Scheduler) IncreaseCurrentTime(frames int64) {
	s.mu.Lock()
	s.current += frames
	s.mu.Unlock()
}

// CurrentTime returns the clock in frames.
func (s *Scheduler) CurrentTime() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// NextEventTime returns the time of the earliest pending event.
func (s *Scheduler) NextEventTime() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.events) == 0 {
		return 0, false
	}
	s.sortLocked()
	return s.events[0].time, true
}

// Pending returns the number of queued events.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// Clear drops every pending event and resets the clock to zero.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.events)
	s.events = s.events[:0]
	s.sorted = true
	s.current = 0
}
