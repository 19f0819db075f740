package song

import (
	mixer "github.com/tphakala/go-tracker-mixer"
)

// Demo instrument slots.
const (
	InstLead = iota
	InstBass
	InstPad
	InstHat
)

const (
	demoRows   = 64
	demoVoices = 4
	fullVolume = mixer.MaxVolume
)

// DemoInstruments returns the built-in instrument set used by Demo. A
// non-nil lead replaces the square wave lead.
func DemoInstruments(lead *mixer.Sample) []*mixer.Sample {
	if lead == nil {
		lead = Square(8000)
	}
	return []*mixer.Sample{
		InstLead: lead,
		InstBass: Saw(10000),
		InstPad:  Sine(9000),
		InstHat:  Noise(2048, 6000, 1),
	}
}

// Demo returns a 64-row, 4-voice pattern: bass on voice 0, a fading pad
// on voice 1, the lead on voice 2 and a hi-hat on voice 3, panned the
// Amiga way (left, right, right, left).
func Demo() Pattern {
	bass := []int{NoteC4 - 24, NoteC4 - 24, NoteC4 - 17, NoteC4 - 19}
	pad := []int{NoteC4, NoteC4 + 3, NoteC4 + 7, NoteC4 + 5}
	lead := []int{0, 3, 5, 7, 10, 7, 5, 3}

	p := make(Pattern, demoRows)
	for r := range p {
		row := make([]Cell, demoVoices)
		for v := range row {
			row[v] = Cell{Pan: PanNone}
		}

		if r == 0 {
			row[0].Pan = mixer.PanLeft + 32
			row[1].Pan = mixer.PanRight - 32
			row[2].Pan = mixer.PanRight - 64
			row[3].Pan = mixer.PanLeft + 64
		}

		bar := r / 16
		if r%4 == 0 {
			row[0].Note = bass[bar]
			row[0].Instrument = InstBass
			row[0].Volume = fullVolume
		}
		if r%16 == 0 {
			row[1].Note = pad[bar]
			row[1].Instrument = InstPad
			row[1].Volume = fullVolume / 2
			row[1].Slide = -1
		}
		switch {
		case r%2 == 0:
			row[2].Note = NoteC4 + 12 + lead[(r/2)%len(lead)]
			row[2].Instrument = InstLead
			row[2].Volume = fullVolume * 3 / 4
		case r%8 == 7:
			row[2].Note = NoteOff
		}
		if r%2 == 1 {
			row[3].Note = NoteC4 + 24
			row[3].Instrument = InstHat
			row[3].Volume = fullVolume / 2
		}
		p[r] = row
	}
	return p
}
