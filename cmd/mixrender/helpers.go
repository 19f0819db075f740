package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	mixer "github.com/tphakala/go-tracker-mixer"
)

const (
	wavPCMFormat     = 1
	unsignedCenter8  = 128
	progressInterval = 10 // Print progress every N%
	percentScale     = 100
	levelFloorDB     = -120.0
)

// pcmEncoder is the part of the go-audio WAV and AIFF encoders we use.
type pcmEncoder interface {
	Write(buf *audio.IntBuffer) error
	Close() error
}

type renderStats struct {
	frames int
}

// parseEQ parses up to EqualizerBandCount comma separated gains. Missing
// bands stay flat.
func parseEQ(s string) ([mixer.EqualizerBandCount]float64, error) {
	var bands [mixer.EqualizerBandCount]float64
	if strings.TrimSpace(s) == "" {
		return bands, nil
	}

	fields := strings.Split(s, ",")
	if len(fields) > len(bands) {
		return bands, fmt.Errorf("equalizer: %d bands given, at most %d", len(fields), len(bands))
	}
	for i, f := range fields {
		g, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return bands, fmt.Errorf("equalizer band %d: %w", i, err)
		}
		bands[i] = g
	}
	return bands, nil
}

// buildConfig turns the command line settings into a mixer configuration.
func buildConfig(interp string, separation int, amiga bool, eq string) (*mixer.Config, error) {
	cfg := mixer.DefaultConfig()

	mode, err := mixer.ParseInterpolation(interp)
	if err != nil {
		return nil, err
	}
	cfg.Interpolation = mode
	cfg.StereoSeparation = separation

	if amiga {
		cfg.Interpolation = mixer.InterpolationNone
		cfg.EnableAmigaFilter = true
		cfg.StereoSeparation = 50
	}

	bands, err := parseEQ(eq)
	if err != nil {
		return nil, err
	}
	if bands != ([mixer.EqualizerBandCount]float64{}) {
		cfg.EnableEqualizer = true
		cfg.EqualizerBands = bands
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newEncoder picks the encoder for the output file extension.
func newEncoder(path string, f *os.File, format mixer.OutputFormat) (pcmEncoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return wav.NewEncoder(f, format.Frequency, format.BitsPerSample, format.Channels, wavPCMFormat), nil
	case ".aif", ".aiff":
		return aiff.NewEncoder(f, format.Frequency, format.BitsPerSample, format.Channels), nil
	default:
		return nil, fmt.Errorf("unsupported output extension %q (use .wav or .aiff)", filepath.Ext(path))
	}
}

// signed8 converts unsigned 8-bit samples in place to the signed form
// AIFF stores.
func signed8(data []int) {
	for i := range data {
		data[i] -= unsignedCenter8
	}
}

// levelDB converts an RMS level to dBFS.
func levelDB(level float64) float64 {
	if level <= 0 {
		return levelFloorDB
	}
	return 20 * math.Log10(level)
}

// renderFile renders frames frames from m into path, then stops the mixer
// and appends the fade out block.
func renderFile(m *mixer.Mixer, path string, frames int, verbose bool) (*renderStats, error) {
	if frames <= 0 {
		return nil, fmt.Errorf("nothing to render: %d frames", frames)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = f.Close() }()

	format := m.OutputFormat()
	enc, err := newEncoder(path, f, format)
	if err != nil {
		return nil, err
	}
	isAIFF := strings.HasPrefix(strings.ToLower(filepath.Ext(path)), ".aif")

	block := format.BufferSizeInFrames
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: format.Channels, SampleRate: format.Frequency},
		Data:           make([]int, block*format.Channels),
		SourceBitDepth: format.BitsPerSample,
	}

	write := func(n int) error {
		buf.Data = buf.Data[:n*format.Channels]
		if _, err := m.RenderInt(buf.Data, n); err != nil {
			return err
		}
		if isAIFF && format.BitsPerSample == 8 {
			signed8(buf.Data)
		}
		return enc.Write(buf)
	}

	lastProgress := 0
	for done := 0; done < frames; {
		n := min(block, frames-done)
		if err := write(n); err != nil {
			return nil, fmt.Errorf("failed to write audio: %w", err)
		}
		done += n

		if verbose {
			progress := done * percentScale / frames
			if progress >= lastProgress+progressInterval {
				log.Printf("Progress: %d%%, level %.1f dBFS", progress, levelDB(m.Level()))
				lastProgress = progress
			}
		}
	}

	// One more block carries the click-free fade out.
	m.Stop()
	if err := write(block); err != nil {
		return nil, fmt.Errorf("failed to write fade out: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize output: %w", err)
	}
	return &renderStats{frames: frames + block}, nil
}
