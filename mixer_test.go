package mixer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-tracker-mixer/internal/fixed"
	"github.com/tphakala/go-tracker-mixer/internal/testutil"
)

const testRate = 44100

// newTestMixer creates a 16-bit stereo mixer at 44.1 kHz. mutate may adjust
// the format and configuration before creation.
func newTestMixer(t *testing.T, voices int, mutate func(*OutputFormat, *Config)) *Mixer {
	t.Helper()

	f := DefaultOutputFormat()
	f.Frequency = testRate
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&f, cfg)
	}
	m, err := New(voices, f, cfg)
	require.NoError(t, err)
	return m
}

// renderInts renders frames frames as int samples.
func renderInts(t *testing.T, m *Mixer, frames int) []int {
	t.Helper()

	out := make([]int, frames*m.OutputFormat().Channels)
	n, err := m.RenderInt(out, frames)
	require.NoError(t, err)
	require.Equal(t, frames, n)
	return out
}

// channel extracts one channel of interleaved samples as float64.
func channel(data []int, channels, ch int) []float64 {
	out := make([]float64, len(data)/channels)
	for i := range out {
		out[i] = float64(data[i*channels+ch])
	}
	return out
}

// startVoice plays s on voice v at the output rate with full volume.
func startVoice(t *testing.T, m *Mixer, v int, s *Sample, loop LoopMode, opts ...Option) {
	t.Helper()
	require.NoError(t, m.SetVoiceFrequency(v, testRate, opts...))
	require.NoError(t, m.SetVoiceVolume(v, MaxVolume, opts...))
	require.NoError(t, m.PlaySample(v, s, 0, loop, opts...))
}

// ============================================================================
// Construction and output format
// ============================================================================

func TestNewValidation(t *testing.T) {
	good := DefaultOutputFormat()

	_, err := New(0, good, nil)
	require.ErrorIs(t, err, ErrInvalidVoice)
	_, err = New(MaxVoices+1, good, nil)
	require.ErrorIs(t, err, ErrInvalidVoice)

	bad := DefaultConfig()
	bad.StereoSeparation = 101
	_, err = New(4, good, bad)
	require.ErrorIs(t, err, ErrInvalidConfig)

	m, err := New(4, good, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, m.Voices())
	assert.Equal(t, good, m.OutputFormat())
}

func TestSetOutputFormatValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*OutputFormat)
		want   error
	}{
		{"zero frequency", func(f *OutputFormat) { f.Frequency = 0 }, ErrInvalidFrequency},
		{"negative frequency", func(f *OutputFormat) { f.Frequency = -44100 }, ErrInvalidFrequency},
		{"no channels", func(f *OutputFormat) { f.Channels = 0 }, ErrInvalidChannels},
		{"too many channels", func(f *OutputFormat) { f.Channels = MaxOutputChannels + 1 }, ErrInvalidChannels},
		{"no buffer", func(f *OutputFormat) { f.BufferSizeInFrames = 0 }, ErrInvalidBufferSize},
		{"24 bit", func(f *OutputFormat) { f.BitsPerSample = 24 }, ErrInvalidBitDepth},
		{"negative device latency", func(f *OutputFormat) { f.DeviceLatency = -1 }, ErrInvalidBufferSize},
	}

	m := newTestMixer(t, 1, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := DefaultOutputFormat()
			tt.mutate(&f)
			require.ErrorIs(t, m.SetOutputFormat(f), tt.want)
		})
	}
	assert.Equal(t, testRate, m.OutputFormat().Frequency, "rejected formats leave the mixer unchanged")
}

func TestSetOutputFormatRetunesVoices(t *testing.T) {
	m := newTestMixer(t, 1, nil)
	require.NoError(t, m.SetVoiceFrequency(0, 22050))
	renderInts(t, m, 1)

	v, err := m.VoiceState(0)
	require.NoError(t, err)
	assert.Equal(t, fixed.One/2, v.Increment)

	f := m.OutputFormat()
	f.Frequency = 22050
	require.NoError(t, m.SetOutputFormat(f))

	v, err = m.VoiceState(0)
	require.NoError(t, err)
	assert.Equal(t, fixed.One, v.Increment)
}

// ============================================================================
// Silence and format conversion
// ============================================================================

func TestNoVoiceSilence(t *testing.T) {
	tests := []struct {
		bits     int
		channels int
		silence  byte
	}{
		{8, 1, 128},
		{8, 2, 128},
		{16, 2, 0},
		{32, 2, 0},
		{16, 6, 0},
	}

	for _, tt := range tests {
		m := newTestMixer(t, 8, func(f *OutputFormat, _ *Config) {
			f.BitsPerSample = tt.bits
			f.Channels = tt.channels
			f.BufferSizeInFrames = 256
		})

		const frames = 1000
		format := m.OutputFormat()
		size := frames * format.FrameSize()
		out := make([]byte, size+16)
		for i := range out {
			out[i] = 0xAA
		}
		n, err := m.RenderBlock(out, frames)
		require.NoError(t, err)
		assert.Equal(t, frames, n)

		testutil.AssertAllEqual(t, out[:size], tt.silence, "%d-bit %d channels", tt.bits, tt.channels)
		testutil.AssertAllEqual(t, out[size:], byte(0xAA), "bytes past the block are untouched")
	}
}

func TestRenderBufferTooSmall(t *testing.T) {
	m := newTestMixer(t, 1, nil)

	_, err := m.RenderBlock(make([]byte, 10), 10)
	require.ErrorIs(t, err, ErrBufferTooSmall)
	_, err = m.RenderInt(make([]int, 10), 10)
	require.ErrorIs(t, err, ErrBufferTooSmall)
	_, err = m.RenderFloat32(make([]float32, 10), 10)
	require.ErrorIs(t, err, ErrBufferTooSmall)

	assert.Equal(t, int64(0), m.Time(), "a rejected call renders nothing")
}

func TestRenderZeroFrames(t *testing.T) {
	m := newTestMixer(t, 1, nil)
	n, err := m.RenderBlock(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRenderFormatsAgree(t *testing.T) {
	render := func(bits int) *Mixer {
		m := newTestMixer(t, 1, func(f *OutputFormat, _ *Config) { f.BitsPerSample = bits })
		startVoice(t, m, 0, testutil.ConstantSample(4096, 16384), LoopNone)
		return m
	}

	ints := renderInts(t, render(16), 256)

	floats := make([]float32, 512)
	_, err := render(16).RenderFloat32(floats, 256)
	require.NoError(t, err)

	bytes8 := make([]byte, 512)
	_, err = render(8).RenderBlock(bytes8, 256)
	require.NoError(t, err)

	for i := range ints {
		assert.InDelta(t, float64(ints[i])/32767, float64(floats[i]), 1e-4)
		assert.InDelta(t, float64(ints[i])/32767, (float64(bytes8[i])-128)/127, 0.01)
	}
}

// ============================================================================
// Voice rendering through the mixer
// ============================================================================

func TestIncrementConsumesSample(t *testing.T) {
	const sourceHz = 22050
	m := newTestMixer(t, 1, nil)
	s := testutil.ConstantSample(sourceHz, 1000)
	s.Rate = sourceHz

	require.NoError(t, m.SetVoiceVolume(0, MaxVolume))
	require.NoError(t, m.PlaySample(0, s, 0, LoopNone))

	renderInts(t, m, testRate-2)
	v, err := m.VoiceState(0)
	require.NoError(t, err)
	assert.True(t, v.Active, "one frame before the end the voice still plays")
	assert.Equal(t, uint32(sourceHz), v.Frequency, "the voice is tuned to the sample rate")

	renderInts(t, m, 2)
	v, err = m.VoiceState(0)
	require.NoError(t, err)
	assert.False(t, v.Active, "after Fo output frames the Fs frames are consumed")
}

func TestKickFadesIn(t *testing.T) {
	m := newTestMixer(t, 1, nil)
	startVoice(t, m, 0, testutil.ConstantSample(8192, 16384), LoopNone)

	out := renderInts(t, m, 512)
	left := channel(out, 2, 0)

	testutil.AssertMonotonic(t, left)
	assert.Less(t, left[0], 100.0)
	assert.Equal(t, 8192.0, left[511], "the ramp ends exactly at the centre gain")
}

func TestRampContinuity(t *testing.T) {
	m := newTestMixer(t, 1, nil)
	require.NoError(t, m.SetVoicePanning(0, PanLeft))
	startVoice(t, m, 0, testutil.ConstantSample(8192, 16384), LoopNone)

	first := renderInts(t, m, 256)
	assert.Equal(t, 16384, first[2*255])
	assert.Equal(t, 0, first[2*255+1])

	require.NoError(t, m.SetVoicePanning(0, PanRight))
	out := renderInts(t, m, 256)
	left, right := channel(out, 2, 0), channel(out, 2, 1)

	for i := 1; i < len(left); i++ {
		assert.LessOrEqual(t, left[i], left[i-1], "left gain falls monotonically")
	}
	testutil.AssertMonotonic(t, right)
	assert.Equal(t, 0.0, left[255])
	assert.Equal(t, 16384.0, right[255])
}

func TestVolumeChangeLandsOnExactFrame(t *testing.T) {
	m := newTestMixer(t, 1, nil)
	startVoice(t, m, 0, testutil.ConstantSample(8192, 16384), LoopNone)
	require.NoError(t, m.SetVoiceVolume(0, 0, At(100)))

	left := channel(renderInts(t, m, 1024), 2, 0)

	testutil.AssertMonotonic(t, left[:100])
	assert.Equal(t, 8192.0, left[99], "the fade in completes on the frame before the change")
	for i := 101; i < len(left); i++ {
		assert.LessOrEqual(t, left[i], left[i-1])
	}
	assert.Less(t, left[100], 8192.0)
	assert.Equal(t, 0.0, left[1023])
}

func TestInactiveVoiceWithoutSampleIsSilent(t *testing.T) {
	m := newTestMixer(t, 2, nil)
	m.voices[0].Active = true
	m.voices[0].Volume = MaxVolume
	m.voices[0].Increment = fixed.One

	out := renderInts(t, m, 512)
	testutil.AssertAllEqual(t, out, 0)
}

func TestSampleSwapAtLoop(t *testing.T) {
	m := newTestMixer(t, 1, nil)

	a := WithLoop(testutil.ConstantSample(100, 1000), LoopForward, 0, 100)
	b := WithLoop(testutil.ConstantSample(100, 2000), LoopForward, 0, 100)
	startVoice(t, m, 0, a, LoopForward)

	renderInts(t, m, 50)
	require.NoError(t, m.QueueSampleSwapAtLoop(0, b))
	left := channel(renderInts(t, m, 100), 2, 0)

	testutil.AssertAllEqual(t, left[:50], 500.0)
	testutil.AssertAllEqual(t, left[50:], 1000.0)

	v, err := m.VoiceState(0)
	require.NoError(t, err)
	assert.Same(t, b, v.SampleInfo.Sample)
	assert.Nil(t, v.NewSampleInfo)
}

func TestStopVoiceFadesOut(t *testing.T) {
	m := newTestMixer(t, 1, nil)
	startVoice(t, m, 0, testutil.ConstantSample(8192, 16384), LoopNone)
	renderInts(t, m, 256)

	require.NoError(t, m.StopVoice(0))
	left := channel(renderInts(t, m, 256), 2, 0)

	for i := 1; i < 64; i++ {
		assert.Less(t, left[i], left[i-1])
	}
	testutil.AssertAllEqual(t, left[64:], 0.0)
}

func TestMonoOutputSumsPannedVoice(t *testing.T) {
	m := newTestMixer(t, 1, func(f *OutputFormat, _ *Config) { f.Channels = 1 })
	require.NoError(t, m.SetVoicePanning(0, PanLeft))
	startVoice(t, m, 0, testutil.ConstantSample(8192, 16384), LoopNone)

	out := renderInts(t, m, 256)
	assert.Equal(t, 16384, out[255])
}

func TestMuteKeepsPosition(t *testing.T) {
	m := newTestMixer(t, 1, nil)
	startVoice(t, m, 0, testutil.ConstantSample(8192, 16384), LoopNone)
	require.NoError(t, m.MuteVoice(0, true))

	out := renderInts(t, m, 300)
	testutil.AssertAllEqual(t, out, 0)

	v, err := m.VoiceState(0)
	require.NoError(t, err)
	assert.True(t, v.Active)
	assert.Equal(t, 300, v.Current.Int())
}

func TestChannelMaskKeepsVoiceAdvancing(t *testing.T) {
	m := newTestMixer(t, 2, func(_ *OutputFormat, c *Config) {
		c.ChannelsEnabled = []bool{false}
	})
	startVoice(t, m, 0, testutil.ConstantSample(8192, 16384), LoopNone)

	out := renderInts(t, m, 128)
	testutil.AssertAllEqual(t, out, 0)

	v, err := m.VoiceState(0)
	require.NoError(t, err)
	assert.Equal(t, 128, v.Current.Int())

	cfg := m.Configuration()
	cfg.ChannelsEnabled = nil
	require.NoError(t, m.SetConfiguration(cfg))
	out = renderInts(t, m, 128)
	assert.NotZero(t, out[2*127])
}

func TestDisabledVoiceIsSkipped(t *testing.T) {
	m := newTestMixer(t, 1, nil)
	startVoice(t, m, 0, testutil.ConstantSample(8192, 16384), LoopNone)
	require.NoError(t, m.SetVoiceEnabled(0, false))

	testutil.AssertAllEqual(t, renderInts(t, m, 64), 0)
	v, err := m.VoiceState(0)
	require.NoError(t, err)
	assert.False(t, v.Active)
	assert.Equal(t, 0, v.Current.Int())
}

func TestReversePlayback(t *testing.T) {
	m := newTestMixer(t, 1, nil)
	require.NoError(t, m.SetVoiceFrequency(0, testRate))
	require.NoError(t, m.SetVoiceVolume(0, MaxVolume))
	require.NoError(t, m.PlaySample(0, testutil.RampSample(1000, 10), 0, LoopNone, Reverse()))

	renderInts(t, m, 10)
	v, err := m.VoiceState(0)
	require.NoError(t, err)
	assert.True(t, v.Reverse())
	assert.Equal(t, 989, v.Current.Int())
}

// ============================================================================
// Commands
// ============================================================================

func TestCommandValidation(t *testing.T) {
	m := newTestMixer(t, 2, nil)
	s := testutil.ConstantSample(100, 1)

	require.ErrorIs(t, m.SetVoiceVolume(2, 0), ErrInvalidVoice)
	require.ErrorIs(t, m.SetVoiceVolume(-1, 0), ErrInvalidVoice)
	require.ErrorIs(t, m.SetVoiceVolume(0, MaxVolume+1), ErrInvalidVolume)
	require.ErrorIs(t, m.SetVoiceAmigaVolume(0, MaxAmigaVolume+1), ErrInvalidVolume)
	require.ErrorIs(t, m.SetVoicePanning(0, 300), ErrInvalidPanning)
	require.NoError(t, m.SetVoicePanning(0, PanSurround))
	require.ErrorIs(t, m.SetVoiceAmigaPeriod(0, 0), ErrInvalidFrequency)
	require.ErrorIs(t, m.PlaySample(0, nil, 0, LoopNone), ErrInvalidSample)
	require.ErrorIs(t, m.PlaySample(0, &Sample{}, 0, LoopNone), ErrInvalidSample)
	require.ErrorIs(t, m.PlaySample(0, s, 100, LoopNone), ErrInvalidSample)
	require.ErrorIs(t, m.PlaySample(0, s, 0, LoopMode(7)), ErrInvalidSample)
	require.ErrorIs(t, m.QueueSampleSwapAtLoop(0, nil), ErrInvalidSample)
	require.ErrorIs(t, m.ScheduleCallback(nil), ErrNilCallback)
	require.ErrorIs(t, m.StopVoice(0, At(-5)), ErrInvalidConfig)

	assert.Equal(t, 1, m.PendingEvents(), "only the valid surround command is queued")
}

func TestAmigaConventions(t *testing.T) {
	m := newTestMixer(t, 1, nil)
	require.NoError(t, m.SetVoiceAmigaPeriod(0, 428))
	require.NoError(t, m.SetVoiceAmigaVolume(0, 32))
	renderInts(t, m, 1)

	v, err := m.VoiceState(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(AmigaPALClock/428), v.Frequency)
	assert.Equal(t, 128, v.Volume)
}

func TestEventRunsExactlyAtScheduledFrame(t *testing.T) {
	m := newTestMixer(t, 1, nil)
	renderInts(t, m, 1000)

	var ranAt, late int64 = -1, -1
	require.NoError(t, m.ScheduleCallback(func(l int64) {
		ranAt = m.Time()
		late = l
	}, At(10)))

	renderInts(t, m, 5)
	assert.Equal(t, int64(-1), ranAt, "not before 1010")

	renderInts(t, m, 1024)
	assert.Equal(t, int64(1010), ranAt)
	assert.Equal(t, int64(0), late)
}

func TestLatencyDelaysCommands(t *testing.T) {
	m := newTestMixer(t, 1, func(f *OutputFormat, c *Config) {
		f.DeviceLatency = 100
		c.LatencyMs = 10
	})
	// Whole frames per millisecond: 44 * 10 + 100.
	assert.Equal(t, int64(540), m.Latency())

	var ranAt int64 = -1
	require.NoError(t, m.ScheduleCallback(func(int64) { ranAt = m.Time() }, At(9)))
	renderInts(t, m, 2048)
	assert.Equal(t, int64(549), ranAt)

	cfg := m.Configuration()
	cfg.LatencyMs = 0
	require.NoError(t, m.SetConfiguration(cfg))
	renderInts(t, m, 1)
	assert.Equal(t, int64(100), m.Latency())
}

func TestRemoveEvents(t *testing.T) {
	m := newTestMixer(t, 2, nil)
	require.NoError(t, m.SetVoiceVolume(0, 10, At(100)))
	require.NoError(t, m.SetVoiceVolume(1, 20, At(100)))
	require.NoError(t, m.SetVoicePanning(0, 0, At(100)))

	assert.Equal(t, 2, m.RemoveEvents(KindVolume))
	assert.Equal(t, 1, m.RemoveVoiceEvents(0))
	assert.Equal(t, 0, m.PendingEvents())
}

// ============================================================================
// Player ticks
// ============================================================================

type countingPlayer struct {
	tps   float64
	times []int64
}

func (p *countingPlayer) Tick(m *Mixer) {
	p.times = append(p.times, m.Time())
}

func (p *countingPlayer) TicksPerSecond() float64 {
	return p.tps
}

func TestPlayerTicksAtExactFrames(t *testing.T) {
	m := newTestMixer(t, 1, nil)
	p := &countingPlayer{tps: 50}
	m.SetPlayer(p)

	for range testRate / 700 {
		renderInts(t, m, 700)
	}

	require.Len(t, p.times, 50)
	for i, at := range p.times {
		assert.Equal(t, int64(i*882), at)
	}
	assert.Equal(t, int64(50), m.Ticks())
}

type notePlayer struct {
	sample *Sample
	played int64
}

func (p *notePlayer) Tick(m *Mixer) {
	if m.Ticks() > 0 {
		return
	}
	_ = m.SetVoiceFrequency(0, testRate)
	_ = m.SetVoiceVolume(0, MaxVolume)
	_ = m.PlaySample(0, p.sample, 0, LoopNone)
	_ = m.ScheduleCallback(func(int64) { p.played = m.Time() })
}

func (p *notePlayer) TicksPerSecond() float64 {
	return 0
}

func TestPlayerCommandsApplyOnTickFrame(t *testing.T) {
	m := newTestMixer(t, 1, nil)
	p := &notePlayer{sample: testutil.ConstantSample(8192, 16384), played: -1}
	m.SetPlayer(p)

	out := renderInts(t, m, 64)
	assert.Equal(t, int64(0), p.played)
	assert.NotZero(t, out[2*63])
}

// ============================================================================
// Configuration, stop and snapshots
// ============================================================================

func TestSetConfiguration(t *testing.T) {
	m := newTestMixer(t, 1, nil)

	bad := DefaultConfig()
	bad.EqualizerBands[3] = 13
	require.ErrorIs(t, m.SetConfiguration(bad), ErrInvalidConfig)
	bad = DefaultConfig()
	bad.Interpolation = InterpolationMode(9)
	require.ErrorIs(t, m.SetConfiguration(bad), ErrInvalidConfig)
	require.ErrorIs(t, m.SetConfiguration(nil), ErrInvalidConfig)

	cfg := DefaultConfig()
	cfg.SwapSpeakers = true
	cfg.ChannelsEnabled = []bool{true}
	require.NoError(t, m.SetConfiguration(cfg))
	cfg.ChannelsEnabled[0] = false

	got := m.Configuration()
	assert.True(t, got.SwapSpeakers)
	assert.Equal(t, []bool{true}, got.ChannelsEnabled, "the mixer keeps its own copy")

	require.NoError(t, m.SetVoicePanning(0, PanLeft))
	startVoice(t, m, 0, testutil.ConstantSample(8192, 16384), LoopNone)
	out := renderInts(t, m, 256)
	assert.Equal(t, 0, out[2*255])
	assert.Equal(t, 16384, out[2*255+1])
}

func TestStopFadesThenSilence(t *testing.T) {
	m := newTestMixer(t, 1, nil)
	startVoice(t, m, 0, testutil.ConstantSample(1<<16, 16384), LoopNone)
	renderInts(t, m, 512)

	m.Stop()
	assert.False(t, m.Stopped())

	left := channel(renderInts(t, m, 512), 2, 0)
	assert.Greater(t, left[0], 8000.0)
	for i := 1; i < 64; i++ {
		assert.Less(t, left[i], left[i-1])
	}
	testutil.AssertAllEqual(t, left[64:], 0.0)
	assert.True(t, m.Stopped())

	out := make([]byte, 512*4)
	n, err := m.RenderBlock(out, 512)
	require.ErrorIs(t, err, ErrStopped)
	assert.Equal(t, 512, n)
	testutil.AssertAllEqual(t, out, byte(0))

	m.Reset()
	assert.False(t, m.Stopped())
	assert.Equal(t, int64(0), m.Time())
	renderInts(t, m, 16)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	m := newTestMixer(t, 2, func(_ *OutputFormat, c *Config) { c.Interpolation = InterpolationCubic })
	s := WithLoop(testutil.SineSample(333, 3, 12000), LoopBidi, 50, 200)

	require.NoError(t, m.SetVoiceFrequency(0, 30000))
	require.NoError(t, m.SetVoiceVolume(0, 200))
	require.NoError(t, m.PlaySample(0, s, 0, LoopBidi))
	require.NoError(t, m.SetVoiceFrequency(1, 50000))
	require.NoError(t, m.SetVoiceVolume(1, MaxVolume))
	require.NoError(t, m.PlaySample(1, s, 10, LoopForward))
	require.NoError(t, m.SetVoicePanning(1, 40, At(700)))
	renderInts(t, m, 500)

	snap := m.Snapshot()
	assert.Equal(t, int64(500), snap.Time)
	require.Len(t, snap.Voices, 2)

	first := renderInts(t, m, 1000)
	require.NoError(t, m.Restore(snap))
	assert.Equal(t, int64(500), m.Time())
	second := renderInts(t, m, 1000)

	assert.Equal(t, first, second)

	other := newTestMixer(t, 3, nil)
	require.ErrorIs(t, other.Restore(snap), ErrInvalidVoice)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	m := newTestMixer(t, 1, nil)
	startVoice(t, m, 0, testutil.ConstantSample(1000, 1), LoopNone)
	renderInts(t, m, 10)

	snap := m.Snapshot()
	renderInts(t, m, 10)

	assert.Equal(t, 10, snap.Voices[0].Current.Int())
	assert.NotSame(t, snap.Voices[0].SampleInfo, m.voices[0].SampleInfo)
	assert.Same(t, snap.Voices[0].SampleInfo.Sample, m.voices[0].SampleInfo.Sample)
}

// ============================================================================
// Post-processing and analyzer
// ============================================================================

// toneLevel renders a looping 64-frame sine (689 Hz at 44.1 kHz) and returns
// the analyzer reading of its spectrum bin.
func toneLevel(t *testing.T, cfg func(*Config)) float64 {
	t.Helper()

	m := newTestMixer(t, 1, func(_ *OutputFormat, c *Config) {
		if cfg != nil {
			cfg(c)
		}
	})
	require.NoError(t, m.EnableAnalyzer(1024))
	startVoice(t, m, 0, WithLoop(testutil.SineSample(64, 1, 4096), LoopForward, 0, 64), LoopForward)
	renderInts(t, m, 8192)

	spectrum := make([]float64, 513)
	require.Equal(t, 513, m.Spectrum(spectrum))
	return spectrum[16]
}

func TestAnalyzerTap(t *testing.T) {
	m := newTestMixer(t, 1, nil)
	assert.Equal(t, 0.0, m.Level())
	assert.Equal(t, 0, m.Spectrum(make([]float64, 8)))
	require.Error(t, m.EnableAnalyzer(1000))

	flat := toneLevel(t, nil)
	// 4096 at half gain per speaker is 2048, 1/16 of full scale.
	assert.InDelta(t, 1.0/16, flat, 0.005)

	require.NoError(t, m.EnableAnalyzer(0))
	assert.Equal(t, 0.0, m.Level())
}

func TestEqualizerBoostMeasuredWithFFT(t *testing.T) {
	flat := toneLevel(t, nil)
	boosted := toneLevel(t, func(c *Config) {
		c.EnableEqualizer = true
		c.EqualizerBands[3] = 12 // 600 Hz, close to the 689 Hz tone
	})

	gain := 20 * math.Log10(boosted/flat)
	assert.InDelta(t, 11.0, gain, 1.5)
}

func TestAmigaFilterNeedsConfigAndPlayerSwitch(t *testing.T) {
	level := func(enable, led bool) float64 {
		m := newTestMixer(t, 1, func(_ *OutputFormat, c *Config) { c.EnableAmigaFilter = enable })
		require.NoError(t, m.EnableAnalyzer(256))
		require.NoError(t, m.SetAmigaFilter(led))
		// Alternating +/- full frames: a tone at Nyquist.
		s := &Sample{Data16: []int16{12000, -12000}, LoopLength: 2, Loop: LoopForward}
		startVoice(t, m, 0, s, LoopForward)
		renderInts(t, m, 2048)
		return m.Level()
	}

	open := level(false, true)
	assert.Greater(t, open, 0.1)
	assert.InDelta(t, open, level(true, false), 1e-9, "the player switch bypasses the filter")
	assert.Less(t, level(true, true), open/2)
}

func TestSurroundInvertsRightSpeaker(t *testing.T) {
	m := newTestMixer(t, 1, func(_ *OutputFormat, c *Config) { c.EnableSurround = true })
	require.NoError(t, m.SetVoicePanning(0, PanSurround))
	startVoice(t, m, 0, testutil.ConstantSample(8192, 16384), LoopNone)

	out := renderInts(t, m, 256)
	assert.Equal(t, 8192, out[2*255])
	assert.Equal(t, -8192, out[2*255+1])
}

func TestConvenienceConstructors(t *testing.T) {
	m, err := NewMono(4, RateDAT)
	require.NoError(t, err)
	assert.Equal(t, 1, m.OutputFormat().Channels)
	assert.Equal(t, RateDAT, m.OutputFormat().Frequency)

	m, err = NewAmiga(4, RateCD)
	require.NoError(t, err)
	cfg := m.Configuration()
	assert.True(t, cfg.EnableAmigaFilter)
	assert.Equal(t, InterpolationNone, cfg.Interpolation)

	m, err = NewFloat32(4, RateCD, 512)
	require.NoError(t, err)
	assert.Equal(t, 512, m.OutputFormat().BufferSizeInFrames)

	_, err = NewStereo(4, 0)
	require.ErrorIs(t, err, ErrInvalidFrequency)
}

// ============================================================================
// Reverse tails, release segments and master volume
// ============================================================================

func TestReverseLoopingSamplePlaysTail(t *testing.T) {
	m := newTestMixer(t, 1, func(_ *OutputFormat, c *Config) { c.Interpolation = InterpolationNone })
	data := make([]int16, 200)
	for i := 100; i < 200; i++ {
		data[i] = 8000
	}
	startVoice(t, m, 0, WithLoop(NewSample16(data, false, 0), LoopForward, 0, 100), LoopForward, Reverse())

	left := channel(renderInts(t, m, 90), 2, 0)
	for i, x := range left {
		assert.Positive(t, x, "frame %d", i)
	}
	assert.Equal(t, 4000.0, left[89])

	v, err := m.VoiceState(0)
	require.NoError(t, err)
	assert.Equal(t, 109, v.Current.Int())
}

// releasing returns a 300 frame sample: 1000 before the loop, 2000 in the
// loop over frames 100-199, 3000 in the release over frames 200-249 and
// 4000 after it.
func releasing() *Sample {
	data := make([]int16, 300)
	for i := range data {
		data[i] = int16(1000 * min(1+i/100, 3))
		if i >= 250 {
			data[i] = 4000
		}
	}
	return WithRelease(WithLoop(NewSample16(data, false, 0), LoopForward, 100, 100), 50)
}

func TestReleaseVoicePlaysReleaseSegment(t *testing.T) {
	m := newTestMixer(t, 1, func(_ *OutputFormat, c *Config) { c.Interpolation = InterpolationNone })
	startVoice(t, m, 0, releasing(), LoopForward)
	renderInts(t, m, 250)

	require.NoError(t, m.ReleaseVoice(0))
	left := channel(renderInts(t, m, 150), 2, 0)
	testutil.AssertAllEqual(t, left[:50], 1000.0)
	testutil.AssertAllEqual(t, left[50:100], 1500.0)
	testutil.AssertAllEqual(t, left[100:], 0.0)

	v, err := m.VoiceState(0)
	require.NoError(t, err)
	assert.False(t, v.Active)
	assert.True(t, v.Released)
}

func TestReleaseSegmentValidation(t *testing.T) {
	m := newTestMixer(t, 1, nil)
	bad := WithRelease(releasing(), 101)
	require.ErrorIs(t, m.PlaySample(0, bad, 0, LoopForward), ErrInvalidSample)
	require.ErrorIs(t, m.ReleaseVoice(3), ErrInvalidVoice)
}

func TestMasterVolume(t *testing.T) {
	m := newTestMixer(t, 1, nil)
	assert.Equal(t, MaxVolume, m.MasterVolume())
	require.ErrorIs(t, m.SetMasterVolume(-1), ErrInvalidVolume)
	require.ErrorIs(t, m.SetMasterVolume(MaxVolume+1), ErrInvalidVolume)

	startVoice(t, m, 0, testutil.ConstantSample(1<<16, 16384), LoopNone)
	left := channel(renderInts(t, m, 256), 2, 0)
	assert.Equal(t, 8192.0, left[255])

	require.NoError(t, m.SetMasterVolume(MaxVolume/2))
	left = channel(renderInts(t, m, 256), 2, 0)
	assert.Greater(t, left[0], 4096.0, "the change is ramped")
	assert.Equal(t, 4096.0, left[255])

	m.Reset()
	assert.Equal(t, MaxVolume/2, m.MasterVolume())
}

// ============================================================================
// Stop fade across blocks
// ============================================================================

func TestStopFadeSpansShortBlocks(t *testing.T) {
	m := newTestMixer(t, 1, nil)
	startVoice(t, m, 0, testutil.ConstantSample(1<<16, 16384), LoopNone)
	renderInts(t, m, 512)

	m.Stop()
	var left []float64
	for range 4 {
		assert.False(t, m.Stopped())
		left = append(left, channel(renderInts(t, m, 16), 2, 0)...)
	}
	assert.True(t, m.Stopped())

	require.Len(t, left, 64)
	assert.Greater(t, left[0], 8000.0)
	for i := 1; i < len(left); i++ {
		assert.Less(t, left[i], left[i-1], "frame %d", i)
	}
	assert.Less(t, left[63], 200.0)

	out := make([]int, 32)
	_, err := m.RenderInt(out, 16)
	require.ErrorIs(t, err, ErrStopped)
	testutil.AssertAllEqual(t, out, 0)
}

// ============================================================================
// Player latency and allocations
// ============================================================================

type latePlayer struct {
	ranAt int64
}

func (p *latePlayer) Tick(m *Mixer) {
	if m.Ticks() == 0 {
		_ = m.ScheduleCallback(func(int64) { p.ranAt = m.Time() })
	}
}

func (p *latePlayer) TicksPerSecond() float64 {
	return 50
}

func TestPlayerCommandsHonourLatency(t *testing.T) {
	m := newTestMixer(t, 1, func(f *OutputFormat, _ *Config) { f.DeviceLatency = 100 })
	p := &latePlayer{ranAt: -1}
	m.SetPlayer(p)

	renderInts(t, m, 512)
	assert.Equal(t, int64(100), p.ranAt)
}

// busyPlayer issues commands on every tick and retriggers its sample on
// every eighth.
type busyPlayer struct {
	sample *Sample
}

func (p *busyPlayer) Tick(m *Mixer) {
	n := int(m.Ticks())
	_ = m.SetVoiceVolume(0, n%MaxVolume)
	_ = m.SetVoicePanning(0, n%PanRight)
	_ = m.SetVoiceFrequency(0, uint32(8000+n%1000))
	if n%8 == 0 {
		_ = m.PlaySample(0, p.sample, 0, LoopForward)
	}
}

func (p *busyPlayer) TicksPerSecond() float64 {
	return 1000
}

func TestPlayerCommandsDoNotAllocate(t *testing.T) {
	m := newTestMixer(t, 1, nil)
	s := WithLoop(testutil.SineSample(64, 1, 12000), LoopForward, 0, 64)
	m.SetPlayer(&busyPlayer{sample: s})

	out := make([]byte, DefaultBufferSize*4)
	allocs := testing.AllocsPerRun(10, func() {
		_, _ = m.RenderBlock(out, DefaultBufferSize)
	})
	assert.Zero(t, allocs)
	assert.Greater(t, m.Ticks(), int64(100))
}

func TestSnapshotKeepsCommandsAfterTheyRun(t *testing.T) {
	m := newTestMixer(t, 1, nil)
	var runs int
	require.NoError(t, m.ScheduleCallback(func(int64) { runs++ }, At(10)))

	snap := m.Snapshot()
	renderInts(t, m, 20)
	require.Equal(t, 1, runs)

	require.NoError(t, m.Restore(snap))
	renderInts(t, m, 20)
	require.NoError(t, m.Restore(snap))
	renderInts(t, m, 20)
	assert.Equal(t, 3, runs)
}

// ============================================================================
// Soft clipping
// ============================================================================

func TestSingleVoiceReachesFullScale(t *testing.T) {
	m := newTestMixer(t, 1, nil)
	require.NoError(t, m.SetVoicePanning(0, PanLeft))
	startVoice(t, m, 0, testutil.ConstantSample(1<<12, 32767), LoopNone)

	out := renderInts(t, m, 256)
	assert.Equal(t, 32766, out[2*255], "a lone voice is not bent")
}

func TestSummedVoicesAreSoftClipped(t *testing.T) {
	m := newTestMixer(t, 2, nil)
	s := testutil.ConstantSample(1<<12, 24000)
	for v := range 2 {
		require.NoError(t, m.SetVoicePanning(v, PanLeft))
		startVoice(t, m, v, s, LoopNone)
	}

	out := renderInts(t, m, 256)
	assert.Less(t, out[2*255], 32767)
	assert.Greater(t, out[2*255], 30000)
}
