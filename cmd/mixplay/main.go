//go:build !headless

// Command mixplay plays the built-in demo song through the mixer on the
// default audio device.
//
// Usage:
//
//	mixplay
//	mixplay -loops 2 -interp cubic
//	mixplay -amiga -sample lead.wav
//
// Build with -tags headless on machines without an audio stack.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/ebitengine/oto/v3"

	mixer "github.com/tphakala/go-tracker-mixer"
	"github.com/tphakala/go-tracker-mixer/internal/sampleio"
	"github.com/tphakala/go-tracker-mixer/internal/song"
)

const (
	kHzToHz        = 1000
	defaultRateKHz = 44.1
	bufferFrames   = 1024
	latencyMs      = 40
	pollInterval   = 50 * time.Millisecond
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rateKHz := flag.Float64("rate", defaultRateKHz, "Output sample rate in kHz")
	loops := flag.Int("loops", 1, "Number of times to play the pattern")
	bpm := flag.Int("bpm", song.DefaultBPM, "Song tempo in beats per minute")
	interp := flag.String("interp", "linear", "Interpolation: none, linear, cubic")
	amiga := flag.Bool("amiga", false, "Amiga sound: no interpolation, output filter, 50% separation")
	samplePath := flag.String("sample", "", "WAV, AIFF, Ogg Vorbis or MP3 file to use as the lead instrument")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	rate := int(*rateKHz * kHzToHz)

	var lead *mixer.Sample
	if *samplePath != "" {
		var err error
		if lead, err = sampleio.Load(*samplePath); err != nil {
			return fmt.Errorf("failed to load sample: %w", err)
		}
	}

	s, err := song.New(song.Demo(), song.DemoInstruments(lead), *bpm, song.DefaultSpeed)
	if err != nil {
		return err
	}

	var m *mixer.Mixer
	if *amiga {
		m, err = mixer.NewAmiga(s.Voices(), rate)
		if err == nil {
			err = m.SetOutputFormat(floatFormat(rate))
		}
	} else {
		m, err = mixer.NewFloat32(s.Voices(), rate, bufferFrames)
		if err == nil {
			err = configure(m, *interp)
		}
	}
	if err != nil {
		return err
	}
	if err := m.EnableAnalyzer(bufferFrames); err != nil {
		return err
	}
	m.SetPlayer(s)

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: m.OutputFormat().Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   latencyMs * time.Millisecond,
	})
	if err != nil {
		return fmt.Errorf("failed to open audio device: %w", err)
	}
	<-ready

	p := ctx.NewPlayer(newStream(m))
	defer func() { _ = p.Close() }()
	p.Play()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	lastRow := -1
	for p.IsPlaying() {
		select {
		case <-interrupt:
			m.Stop()
		case <-ticker.C:
			if s.Loops() >= *loops {
				m.Stop()
			}
			if row := s.Row(); *verbose && row != lastRow {
				log.Printf("Row %02d, level %.3f", row, m.Level())
				lastRow = row
			}
		}
	}

	if err := s.Err(); err != nil {
		return fmt.Errorf("song: %w", err)
	}
	if err := p.Err(); err != nil {
		return fmt.Errorf("playback: %w", err)
	}
	fmt.Printf("Played %d ticks (%.1fs)\n", m.Ticks(), float64(m.Time())/float64(rate))
	return nil
}

// floatFormat is the output format for a float32 audio device.
func floatFormat(rate int) mixer.OutputFormat {
	f := mixer.DefaultOutputFormat()
	f.Frequency = rate
	f.BufferSizeInFrames = bufferFrames
	f.BitsPerSample = 32
	return f
}

// configure applies the interpolation flag.
func configure(m *mixer.Mixer, interp string) error {
	mode, err := mixer.ParseInterpolation(interp)
	if err != nil {
		return err
	}
	cfg := m.Configuration()
	cfg.Interpolation = mode
	return m.SetConfiguration(cfg)
}
