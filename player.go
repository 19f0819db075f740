package mixer

import "math"

// Player drives the mixer from inside the render loop, the way a tracker
// replay routine runs once per tick.
//
// Tick is called on the render goroutine at exact frame positions. The
// commands it issues are queued like any other command, so they take effect
// on the tick frame plus the configured latency; with zero latency they land
// on the tick frame itself. Commands issued without options do not allocate.
// Tick must not call SetOutputFormat, SetPlayer, Snapshot, Restore,
// VoiceState or any render method.
type Player interface {
	// Tick advances the song by one tick and issues voice commands.
	Tick(m *Mixer)

	// TicksPerSecond returns the current tick rate. Trackers derive it
	// from the tempo (BPM * 2 / 5). It is read after every tick, so tempo
	// changes take effect on the next tick.
	TicksPerSecond() float64
}

// SetPlayer installs p, or removes the current player when p is nil. The
// first tick runs at the start of the next rendered frame.
func (m *Mixer) SetPlayer(p Player) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.player = p
	m.framesToTick = 0
	m.tickFrac = 0
}

// Ticks returns how many times the player has been ticked. It is safe to
// call from Tick.
func (m *Mixer) Ticks() int64 {
	return m.ticks.Load()
}

// tick runs the player and schedules the next tick. Called with m.mu held.
func (m *Mixer) tick() {
	m.player.Tick(m)
	m.ticks.Add(1)

	tps := m.player.TicksPerSecond()
	if tps <= 0 || math.IsNaN(tps) {
		tps = defaultTicksPerSecond
	}
	m.tickFrac += float64(m.format.Frequency) / tps
	n := int(m.tickFrac)
	m.tickFrac -= float64(n)
	m.framesToTick = max(n, 1)
}
