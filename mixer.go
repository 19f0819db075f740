package mixer

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tphakala/go-tracker-mixer/internal/analysis"
	"github.com/tphakala/go-tracker-mixer/internal/dsp"
	"github.com/tphakala/go-tracker-mixer/internal/render"
	"github.com/tphakala/go-tracker-mixer/internal/timing"
	"github.com/tphakala/go-tracker-mixer/internal/voice"
)

// Run states of a mixer.
const (
	stateRunning int32 = iota
	stateStopping
	stateStopped
)

// Mixer renders a fixed set of voices into PCM blocks.
//
// Render calls, SetOutputFormat, SetPlayer, Snapshot, Restore and
// VoiceState serialize on an internal mutex. Voice commands only touch the
// event queue and may be issued from any goroutine, including the Player
// while it is being ticked. SetConfiguration and Stop never wait for a
// render in progress.
type Mixer struct {
	mu sync.Mutex

	voices []voice.Voice
	format OutputFormat

	config  atomic.Pointer[compiledConfig]
	applied *compiledConfig

	renderer  *render.Renderer
	scheduler *timing.Scheduler
	cmds      *commandPool
	amiga     *dsp.AmigaFilter
	eq        *dsp.Equalizer
	conv      *dsp.Converter

	// mix holds one accumulator per mix channel, BufferSizeInFrames long.
	mix [][]float64

	// amigaLED is the player controlled filter switch.
	amigaLED bool

	masterVolume atomic.Int32

	player       Player
	ticks        atomic.Int64
	framesToTick int
	tickFrac     float64

	state    atomic.Int32
	analyzer atomic.Pointer[analysis.Analyzer]
}

// New creates a mixer with voices voices rendering format. A nil cfg
// selects DefaultConfig.
func New(voices int, format OutputFormat, cfg *Config) (*Mixer, error) {
	if voices < 1 || voices > MaxVoices {
		return nil, fmt.Errorf("%w: %d voices (must be 1-%d)", ErrInvalidVoice, voices, MaxVoices)
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := format.Validate(); err != nil {
		return nil, err
	}

	cc := compile(cfg)
	m := &Mixer{
		voices:    make([]voice.Voice, voices),
		renderer:  render.New(cc.settings),
		scheduler: timing.New(),
		cmds:      newCommandPool(commandPoolSize),
		amiga:     dsp.NewAmigaFilter(format.Frequency),
		eq:        dsp.NewEqualizer(),
		conv:      dsp.NewConverter(format.BufferSizeInFrames),
		amigaLED:  true,
	}
	for i := range m.voices {
		m.voices[i].Reset()
	}
	m.masterVolume.Store(MaxVolume)
	m.config.Store(cc)
	m.setFormat(format)
	m.apply(cc)
	return m, nil
}

// SetOutputFormat switches the mixer to a new output format. Buffers are
// reallocated and voice increments, command latency and filter
// coefficients are recomputed; voice positions are kept.
func (m *Mixer) SetOutputFormat(format OutputFormat) error {
	if err := format.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.setFormat(format)
	m.apply(m.config.Load())
	return nil
}

// setFormat sizes every buffer for format. Called with m.mu held or before
// the mixer is shared.
func (m *Mixer) setFormat(format OutputFormat) {
	m.format = format

	m.mix = make([][]float64, format.mixChannels())
	for ch := range m.mix {
		m.mix[ch] = make([]float64, format.BufferSizeInFrames)
	}
	m.conv.Resize(format.BufferSizeInFrames)
	m.amiga.SetSampleRate(format.Frequency)
	m.eq.Reset()

	for i := range m.voices {
		m.voices[i].Retune(uint32(format.Frequency))
	}

	// Force the equalizer and latency to be recomputed for the new rate.
	m.applied = nil
}

// OutputFormat returns the current output format.
func (m *Mixer) OutputFormat() OutputFormat {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.format
}

// SetConfiguration validates cfg and hands a copy to the renderer, which
// picks it up at the start of the next block. It never blocks on a render
// in progress.
func (m *Mixer) SetConfiguration(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.config.Store(compile(cfg))
	return nil
}

// Configuration returns a copy of the configuration most recently set.
func (m *Mixer) Configuration() *Config {
	return m.config.Load().config()
}

// apply brings the renderer, equalizer and latency in line with cc. Called
// with m.mu held, once per configuration or format change.
func (m *Mixer) apply(cc *compiledConfig) {
	if cc == m.applied {
		return
	}
	prev := m.applied
	m.applied = cc

	m.renderer.Configure(cc.settings)

	if prev == nil || prev.eqGains != cc.eqGains || prev.cfg.EqualizerPreAmp != cc.cfg.EqualizerPreAmp {
		m.eq.Configure(cc.eqGains, cc.cfg.EqualizerPreAmp, m.format.Frequency)
	}
	if prev != nil && prev.cfg.EnableAmigaFilter != cc.cfg.EnableAmigaFilter {
		m.amiga.Reset()
	}
	if prev == nil || prev.cfg.LatencyMs != cc.cfg.LatencyMs {
		m.scheduler.SetLatency(m.format.Frequency, cc.cfg.LatencyMs, m.format.DeviceLatency)
	}
}

// SetMasterVolume sets the overall volume (0-256) applied on top of every
// voice volume. Like SetConfiguration it never waits for a render in
// progress; the change is ramped in from the next block.
func (m *Mixer) SetMasterVolume(volume int) error {
	if volume < 0 || volume > MaxVolume {
		return fmt.Errorf("%w: master volume %d (must be 0-%d)", ErrInvalidVolume, volume, MaxVolume)
	}
	m.masterVolume.Store(int32(volume))
	return nil
}

// MasterVolume returns the overall volume.
func (m *Mixer) MasterVolume() int {
	return int(m.masterVolume.Load())
}

// Voices returns the number of voices.
func (m *Mixer) Voices() int {
	return len(m.voices)
}

// VoiceState returns a deep copy of voice i for display purposes.
func (m *Mixer) VoiceState(i int) (Voice, error) {
	if err := m.checkVoice(i); err != nil {
		return Voice{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voices[i].Clone(), nil
}

// Time returns the number of frames rendered since the mixer was created
// or last reset.
func (m *Mixer) Time() int64 {
	return m.scheduler.CurrentTime()
}

// Latency returns the delay in frames added to every command.
func (m *Mixer) Latency() int64 {
	return m.scheduler.Latency()
}

// Stop lets the block in progress finish and then fades every voice out
// over 64 frames, across as many blocks as that takes. Once every voice is
// silent, render calls write silence and return ErrStopped.
func (m *Mixer) Stop() {
	m.state.CompareAndSwap(stateRunning, stateStopping)
}

// Stopped reports whether the stop fade has completed.
func (m *Mixer) Stopped() bool {
	return m.state.Load() == stateStopped
}

// Reset silences and rewinds the mixer: voices return to their power-on
// state, pending commands are dropped, the clock restarts at zero and a
// stopped mixer runs again. Configuration, format, master volume and player
// are kept.
func (m *Mixer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.voices {
		m.voices[i].Reset()
	}
	m.scheduler.Clear()
	m.amiga.Reset()
	m.eq.Reset()
	m.amigaLED = true
	m.ticks.Store(0)
	m.framesToTick = 0
	m.tickFrac = 0
	if a := m.analyzer.Load(); a != nil {
		a.Reset()
	}
	m.state.Store(stateRunning)
}

// sounding counts the voices that produce output when rendered now.
func (m *Mixer) sounding() int {
	n := 0
	for i := range m.voices {
		if m.voices[i].Sounding() {
			n++
		}
	}
	return n
}

func (m *Mixer) checkVoice(i int) error {
	if i < 0 || i >= len(m.voices) {
		return fmt.Errorf("%w: index %d (mixer has %d voices)", ErrInvalidVoice, i, len(m.voices))
	}
	return nil
}
