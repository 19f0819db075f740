package mixer

import (
	"fmt"
	"sync"

	"github.com/tphakala/go-tracker-mixer/internal/ramp"
	"github.com/tphakala/go-tracker-mixer/internal/timing"
	"github.com/tphakala/go-tracker-mixer/internal/voice"
)

// EventKind classifies queued commands for RemoveEvents.
type EventKind = timing.Kind

// Command kinds.
const (
	KindFrequency EventKind = iota + 1
	KindVolume
	KindPanning
	KindPlay
	KindStop
	KindKick
	KindSampleSwap
	KindPosition
	KindMute
	KindEnable
	KindAmigaFilter
	KindCallback
	KindRelease
)

// Option adjusts how a command is issued.
type Option func(*options)

type options struct {
	at      int64
	reverse bool
}

// At delays a command by frames output frames from the current render
// position (plus the configured latency). Commands without At take effect
// at the current position. Options allocate; commands issued without them
// do not.
func At(frames int64) Option {
	return func(o *options) { o.at = frames }
}

// Reverse starts PlaySample playback at the last frame, moving backwards.
func Reverse() Option {
	return func(o *options) { o.reverse = true }
}

func collect(opts []Option) options {
	if len(opts) == 0 {
		return options{}
	}
	o := new(options)
	for _, opt := range opts {
		opt(o)
	}
	return *o
}

// command is a queued voice command. It is owned by the queue until it
// executes and then goes back to the pool, so snapshots hold copies.
type command struct {
	m       *Mixer
	kind    EventKind
	voice   int
	value   int
	flag    bool
	sample  *Sample
	loop    LoopMode
	reverse bool
	fn      func(late int64)
}

func (c *command) Kind() timing.Kind {
	return c.kind
}

// Execute applies the command on the render goroutine and recycles it.
func (c *command) Execute(late int64) {
	m := c.m
	c.apply(late)
	m.cmds.put(c)
}

func (c *command) apply(late int64) {
	m := c.m
	switch c.kind {
	case KindCallback:
		c.fn(late)
		return
	case KindAmigaFilter:
		m.amigaLED = c.flag
		return
	}

	v := &m.voices[c.voice]
	switch c.kind {
	case KindFrequency:
		v.SetFrequency(uint32(c.value), uint32(m.format.Frequency))
	case KindVolume:
		v.Volume = c.value
	case KindPanning:
		v.Panning = c.value
	case KindPlay:
		if v.Frequency == 0 && c.sample.Rate > 0 {
			v.SetFrequency(c.sample.Rate, uint32(m.format.Frequency))
		}
		v.Play(v.Hold(voice.MakeSampleInfo(c.sample, c.loop)), c.value, c.reverse)
	case KindStop:
		v.Cut(ramp.CutFadeFrames)
	case KindKick:
		v.Kick = true
	case KindSampleSwap:
		v.QueueSwap(v.Hold(voice.MakeSampleInfo(c.sample, c.sample.Loop)))
	case KindPosition:
		v.SetPosition(c.value, c.flag)
	case KindMute:
		v.Muted = c.flag
	case KindEnable:
		v.Enabled = c.flag
		if !c.flag {
			v.Active = false
		}
	case KindRelease:
		v.Release()
	}
}

// commandPool recycles executed commands so that a Player issuing commands
// from Tick does not allocate while rendering.
type commandPool struct {
	mu   sync.Mutex
	free []*command
}

func newCommandPool(n int) *commandPool {
	backing := make([]command, n)
	p := &commandPool{free: make([]*command, n)}
	for i := range backing {
		p.free[i] = &backing[i]
	}
	return p
}

// get returns a zeroed command, allocating only when the pool is empty.
func (p *commandPool) get() *command {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.free)
	if n == 0 {
		return new(command)
	}
	c := p.free[n-1]
	p.free[n-1] = nil
	p.free = p.free[:n-1]
	return c
}

// put zeroes c and keeps it when the pool has room.
func (p *commandPool) put(c *command) {
	*c = command{}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.free) < cap(p.free) {
		p.free = append(p.free, c)
	}
}

// queue schedules a pooled copy of c after validating its voice.
func (m *Mixer) queue(c command, opts []Option) error {
	if c.kind != KindCallback && c.kind != KindAmigaFilter {
		if err := m.checkVoice(c.voice); err != nil {
			return err
		}
	}
	o := collect(opts)
	if o.at < 0 {
		return fmt.Errorf("%w: negative time offset %d", ErrInvalidConfig, o.at)
	}
	c.m = m
	c.reverse = c.reverse || o.reverse

	p := m.cmds.get()
	*p = c
	m.scheduler.AddEvent(p, o.at)
	return nil
}

// SetVoiceFrequency sets the playback rate of voice v to hz source frames
// per second.
func (m *Mixer) SetVoiceFrequency(v int, hz uint32, opts ...Option) error {
	return m.queue(command{kind: KindFrequency, voice: v, value: int(hz)}, opts)
}

// SetVoiceAmigaPeriod sets the playback rate of voice v from an Amiga
// period: AmigaPALClock/period Hz.
func (m *Mixer) SetVoiceAmigaPeriod(v, period int, opts ...Option) error {
	if period <= 0 {
		return fmt.Errorf("%w: Amiga period %d", ErrInvalidFrequency, period)
	}
	return m.SetVoiceFrequency(v, uint32(AmigaPALClock/period), opts...)
}

// SetVoiceVolume sets the volume of voice v (0-256).
func (m *Mixer) SetVoiceVolume(v, volume int, opts ...Option) error {
	if volume < 0 || volume > MaxVolume {
		return fmt.Errorf("%w: %d (must be 0-%d)", ErrInvalidVolume, volume, MaxVolume)
	}
	return m.queue(command{kind: KindVolume, voice: v, value: volume}, opts)
}

// SetVoiceAmigaVolume sets the volume of voice v on the Amiga scale (0-64).
func (m *Mixer) SetVoiceAmigaVolume(v, volume int, opts ...Option) error {
	if volume < 0 || volume > MaxAmigaVolume {
		return fmt.Errorf("%w: %d (must be 0-%d)", ErrInvalidVolume, volume, MaxAmigaVolume)
	}
	return m.SetVoiceVolume(v, volume*amigaVolumeScale, opts...)
}

// SetVoicePanning sets the panning of voice v: PanLeft to PanRight, or
// PanSurround.
func (m *Mixer) SetVoicePanning(v, panning int, opts ...Option) error {
	if (panning < PanLeft || panning > PanRight) && panning != PanSurround {
		return fmt.Errorf("%w: %d (must be %d-%d or %d)", ErrInvalidPanning, panning, PanLeft, PanRight, PanSurround)
	}
	return m.queue(command{kind: KindPanning, voice: v, value: panning}, opts)
}

// PlaySample starts sample s on voice v from frame startOffset, looping as
// loop says when the sample defines a loop region. A voice without a
// frequency is tuned to s.Rate.
func (m *Mixer) PlaySample(v int, s *Sample, startOffset int, loop LoopMode, opts ...Option) error {
	if err := validSample(s); err != nil {
		return err
	}
	if startOffset < 0 || startOffset >= s.Frames() {
		return fmt.Errorf("%w: start offset %d outside %d frames", ErrInvalidSample, startOffset, s.Frames())
	}
	if loop < LoopNone || loop > LoopBidi {
		return fmt.Errorf("%w: loop mode %s", ErrInvalidSample, loop)
	}
	return m.queue(command{kind: KindPlay, voice: v, sample: s, value: startOffset, loop: loop}, opts)
}

// StopVoice fades voice v out over a few frames and deactivates it.
func (m *Mixer) StopVoice(v int, opts ...Option) error {
	return m.queue(command{kind: KindStop, voice: v}, opts)
}

// ReleaseVoice releases the note on voice v. A sample with a release
// segment leaves its loop at the next loop end and plays the release once;
// other samples keep looping.
func (m *Mixer) ReleaseVoice(v int, opts ...Option) error {
	return m.queue(command{kind: KindRelease, voice: v}, opts)
}

// SetVoiceKick restarts the current sample of voice v from its start.
func (m *Mixer) SetVoiceKick(v int, opts ...Option) error {
	return m.queue(command{kind: KindKick, voice: v}, opts)
}

// QueueSampleSwapAtLoop makes s take over voice v when the current sample
// next wraps its loop or reaches its end. The new sample loops according
// to its own Loop mode.
func (m *Mixer) QueueSampleSwapAtLoop(v int, s *Sample, opts ...Option) error {
	if err := validSample(s); err != nil {
		return err
	}
	return m.queue(command{kind: KindSampleSwap, voice: v, sample: s}, opts)
}

// SetVoicePosition seeks voice v to frame, or by frame frames when
// relative is set.
func (m *Mixer) SetVoicePosition(v, frame int, relative bool, opts ...Option) error {
	return m.queue(command{kind: KindPosition, voice: v, value: frame, flag: relative}, opts)
}

// MuteVoice silences voice v without stopping it; the voice keeps its
// position so unmuting resumes in time.
func (m *Mixer) MuteVoice(v int, muted bool, opts ...Option) error {
	return m.queue(command{kind: KindMute, voice: v, flag: muted}, opts)
}

// SetVoiceEnabled assigns or releases voice v. A released voice is skipped
// by the renderer until enabled again.
func (m *Mixer) SetVoiceEnabled(v int, enabled bool, opts ...Option) error {
	return m.queue(command{kind: KindEnable, voice: v, flag: enabled}, opts)
}

// SetAmigaFilter is the player's switch of the Amiga output filter (the
// power LED). The filter only runs when it is also enabled in the Config.
func (m *Mixer) SetAmigaFilter(on bool, opts ...Option) error {
	return m.queue(command{kind: KindAmigaFilter, flag: on}, opts)
}

// ScheduleCallback runs fn on the render goroutine when the output reaches
// the command time. fn receives how many frames late it runs and must
// return quickly without calling back into render methods.
func (m *Mixer) ScheduleCallback(fn func(late int64), opts ...Option) error {
	if fn == nil {
		return ErrNilCallback
	}
	return m.queue(command{kind: KindCallback, fn: fn}, opts)
}

// RemoveEvents cancels every pending command of the given kind and returns
// how many were removed.
func (m *Mixer) RemoveEvents(kind EventKind) int {
	return m.scheduler.RemoveEvents(kind)
}

// RemoveVoiceEvents cancels every pending command for voice v.
func (m *Mixer) RemoveVoiceEvents(v int) int {
	return m.scheduler.RemoveFunc(func(e timing.Event) bool {
		c, ok := e.(*command)
		return ok && c.m == m && c.voice == v && c.kind != KindCallback && c.kind != KindAmigaFilter
	})
}

// PendingEvents returns the number of queued commands.
func (m *Mixer) PendingEvents() int {
	return m.scheduler.Pending()
}

func validSample(s *Sample) error {
	if s == nil {
		return fmt.Errorf("%w: nil sample", ErrInvalidSample)
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSample, err)
	}
	return nil
}
