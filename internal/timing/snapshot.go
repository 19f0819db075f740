package timing

// PendingEvent is a queued event captured in a Snapshot.
type PendingEvent struct {
	Time  int64
	Event Event
}

// Snapshot is a plain value copy of the scheduler state. Events are shared
// with the queue; callers that reuse events after they run must copy them.
type Snapshot struct {
	CurrentTime int64
	Latency     int64
	Events      []PendingEvent
}

// Snapshot captures the clock and the pending events in execution order.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sortLocked()
	snap := Snapshot{
		CurrentTime: s.current,
		Latency:     s.latency,
		Events:      make([]PendingEvent, len(s.events)),
	}
	for i, e := range s.events {
		snap.Events[i] = PendingEvent{Time: e.time, Event: e.event}
	}
	return snap
}

// Restore replaces the scheduler state with snap.
func (s *Scheduler) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.events)
	s.events = s.events[:0]
	for _, e := range snap.Events {
		s.events = append(s.events, entry{time: e.Time, event: e.Event})
	}
	s.current = snap.CurrentTime
	s.latency = snap.Latency
	s.sorted = false
}
