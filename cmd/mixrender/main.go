// Command mixrender renders the built-in demo song through the mixer into a
// WAV or AIFF file.
//
// Usage:
//
//	mixrender out.wav
//	mixrender -seconds 30 -rate 48 -interp cubic out.wav
//	mixrender -amiga -sample lead.ogg out.aiff    # Amiga sound with your own lead
//	mixrender -eq 0,3,3,0,0,0,-3,-6,-6,-6 out.wav
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	mixer "github.com/tphakala/go-tracker-mixer"
	"github.com/tphakala/go-tracker-mixer/internal/sampleio"
	"github.com/tphakala/go-tracker-mixer/internal/song"
)

const (
	kHzToHz         = 1000
	defaultRateKHz  = 44.1
	defaultSeconds  = 10.0
	defaultBits     = 16
	minRequiredArgs = 1
	analyzerSize    = 4096
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rateKHz := flag.Float64("rate", defaultRateKHz, "Output sample rate in kHz (e.g., 22.05, 44.1, 48)")
	bits := flag.Int("bits", defaultBits, "Output bit depth: 8, 16 or 32")
	channels := flag.Int("channels", 2, "Output channels (1-8)")
	seconds := flag.Float64("seconds", defaultSeconds, "Length to render in seconds")
	bpm := flag.Int("bpm", song.DefaultBPM, "Song tempo in beats per minute")
	interp := flag.String("interp", "linear", "Interpolation: none, linear, cubic")
	separation := flag.Int("separation", mixer.DefaultStereoSeparation, "Stereo separation in percent")
	amiga := flag.Bool("amiga", false, "Amiga sound: no interpolation, output filter, 50% separation")
	eq := flag.String("eq", "", "Comma separated equalizer band gains in dB (10 bands)")
	samplePath := flag.String("sample", "", "WAV, AIFF, Ogg Vorbis or MP3 file to use as the lead instrument")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] output.wav|output.aiff\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		return fmt.Errorf("insufficient arguments")
	}
	outputPath := args[0]

	cfg, err := buildConfig(*interp, *separation, *amiga, *eq)
	if err != nil {
		return err
	}

	format := mixer.DefaultOutputFormat()
	format.Frequency = int(*rateKHz * kHzToHz)
	format.BitsPerSample = *bits
	format.Channels = *channels

	var lead *mixer.Sample
	if *samplePath != "" {
		lead, err = sampleio.Load(*samplePath)
		if err != nil {
			return fmt.Errorf("failed to load sample: %w", err)
		}
		if *verbose {
			log.Printf("Lead: %s, %d frames at %d Hz", lead.Name, lead.Frames(), lead.Rate)
		}
	}

	s, err := song.New(song.Demo(), song.DemoInstruments(lead), *bpm, song.DefaultSpeed)
	if err != nil {
		return err
	}

	m, err := mixer.New(s.Voices(), format, cfg)
	if err != nil {
		return err
	}
	m.SetPlayer(s)
	if *verbose {
		if err := m.EnableAnalyzer(analyzerSize); err != nil {
			return err
		}
		log.Printf("Output: %s, %d Hz, %d channels, %d-bit", outputPath, format.Frequency, format.Channels, format.BitsPerSample)
		log.Printf("Config: %s interpolation, separation %d%%, amiga filter %v, equalizer %v",
			cfg.Interpolation, cfg.StereoSeparation, cfg.EnableAmigaFilter, cfg.EnableEqualizer)
	}

	start := time.Now()
	stats, err := renderFile(m, outputPath, int(*seconds*float64(format.Frequency)), *verbose)
	if err != nil {
		return err
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("song: %w", err)
	}
	elapsed := time.Since(start)

	fmt.Printf("Rendered %s\n", filepath.Base(outputPath))
	fmt.Printf("  %d frames, %d Hz, %d channels, %d-bit\n", stats.frames, format.Frequency, format.Channels, format.BitsPerSample)
	fmt.Printf("  %d ticks, %d pattern loops\n", m.Ticks(), s.Loops())
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(stats.frames)/float64(format.Frequency)/elapsed.Seconds())

	return nil
}
