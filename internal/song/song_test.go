package song

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mixer "github.com/tphakala/go-tracker-mixer"
)

func newMixer(t *testing.T, voices int) *mixer.Mixer {
	t.Helper()
	m, err := mixer.NewStereo(voices, mixer.RateCD)
	require.NoError(t, err)
	return m
}

func render(t *testing.T, m *mixer.Mixer, frames int) []int {
	t.Helper()
	out := make([]int, frames*2)
	_, err := m.RenderInt(out, frames)
	require.NoError(t, err)
	return out
}

func TestFrequency(t *testing.T) {
	assert.Equal(t, uint32(C4Rate), Frequency(NoteC4, 0))
	assert.Equal(t, uint32(2*C4Rate), Frequency(NoteC4+12, C4Rate))
	assert.Equal(t, uint32(22050), Frequency(NoteC4-12, 44100))
	assert.Equal(t, uint32(8860), Frequency(NoteC4+1, C4Rate))
}

func TestNewValidation(t *testing.T) {
	inst := DemoInstruments(nil)

	_, err := New(nil, inst, DefaultBPM, DefaultSpeed)
	require.ErrorIs(t, err, ErrEmptyPattern)

	_, err = New(Demo(), inst, 0, DefaultSpeed)
	require.Error(t, err)

	ragged := Pattern{{{Pan: PanNone}, {Pan: PanNone}}, {{Pan: PanNone}}}
	_, err = New(ragged, inst, DefaultBPM, DefaultSpeed)
	require.Error(t, err)

	missing := Pattern{{{Note: NoteC4, Instrument: 9, Pan: PanNone}}}
	_, err = New(missing, inst, DefaultBPM, DefaultSpeed)
	require.Error(t, err)

	s, err := New(Demo(), inst, DefaultBPM, DefaultSpeed)
	require.NoError(t, err)
	assert.Equal(t, demoVoices, s.Voices())
	assert.InDelta(t, 50.0, s.TicksPerSecond(), 1e-12)
}

func TestRowsAdvanceBySpeed(t *testing.T) {
	pattern := Pattern{
		{{Note: NoteC4, Instrument: 0, Volume: 256, Pan: PanNone}},
		{{Pan: PanNone}},
	}
	s, err := New(pattern, []*mixer.Sample{Sine(1000)}, DefaultBPM, 3)
	require.NoError(t, err)

	m := newMixer(t, 1)
	m.SetPlayer(s)

	// 882 frames per tick at 50 ticks per second.
	render(t, m, 882*3)
	assert.Equal(t, 1, s.Row())
	assert.Equal(t, 0, s.Loops())

	render(t, m, 882*3)
	assert.Equal(t, 0, s.Row())
	assert.Equal(t, 1, s.Loops())
	require.NoError(t, s.Err())
}

func TestTriggerPlaysInstrument(t *testing.T) {
	pattern := Pattern{{{Note: NoteC4 + 12, Instrument: 0, Volume: 200, Pan: mixer.PanLeft}}}
	s, err := New(pattern, []*mixer.Sample{Square(1000)}, DefaultBPM, DefaultSpeed)
	require.NoError(t, err)

	m := newMixer(t, 1)
	m.SetPlayer(s)
	out := render(t, m, 256)

	v, err := m.VoiceState(0)
	require.NoError(t, err)
	assert.True(t, v.Active)
	assert.Equal(t, uint32(2*C4Rate), v.Frequency)
	assert.Equal(t, 200, v.Volume)
	assert.Equal(t, mixer.PanLeft, v.Panning)
	assert.Zero(t, out[2*255+1], "panned hard left")
}

func TestVolumeSlideAndNoteOff(t *testing.T) {
	pattern := Pattern{
		{{Note: NoteC4, Instrument: 0, Volume: 100, Slide: -10, Pan: PanNone}},
		{{Note: NoteOff, Pan: PanNone}},
	}
	s, err := New(pattern, []*mixer.Sample{Sine(1000)}, DefaultBPM, 4)
	require.NoError(t, err)

	m := newMixer(t, 1)
	m.SetPlayer(s)

	render(t, m, 882*4)
	v, err := m.VoiceState(0)
	require.NoError(t, err)
	assert.Equal(t, 70, v.Volume, "three slide ticks after the note")

	render(t, m, 882)
	v, err = m.VoiceState(0)
	require.NoError(t, err)
	assert.False(t, v.Active, "note off fades the voice out")
}

func TestDemoPlaysThrough(t *testing.T) {
	s, err := New(Demo(), DemoInstruments(nil), DefaultBPM, DefaultSpeed)
	require.NoError(t, err)

	m := newMixer(t, s.Voices())
	m.SetPlayer(s)

	// 64 rows of 6 ticks of 882 frames.
	const frames = demoRows * DefaultSpeed * 882
	var peak int
	for done := 0; done < frames; done += 4096 {
		n := min(4096, frames-done)
		for _, x := range render(t, m, n)[:n*2] {
			peak = max(peak, x, -x)
		}
	}

	require.NoError(t, s.Err())
	assert.Equal(t, 1, s.Loops())
	assert.Greater(t, peak, 1000)
	assert.LessOrEqual(t, peak, 32767)
}

func TestInstruments(t *testing.T) {
	for _, s := range []*mixer.Sample{Square(1000), Saw(1000), Sine(1000)} {
		require.NoError(t, s.Validate(), s.Name)
		assert.Equal(t, mixer.LoopForward, s.Loop)
		assert.Equal(t, cycleFrames, s.LoopLength)
	}

	a, b := Noise(256, 1000, 7), Noise(256, 1000, 7)
	assert.Equal(t, a.Data16, b.Data16)
	assert.Equal(t, mixer.LoopNone, a.Loop)
	for _, x := range a.Data16 {
		assert.LessOrEqual(t, max(x, -x), int16(1000))
	}
}
