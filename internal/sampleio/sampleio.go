// Package sampleio loads audio files into mixer samples.
//
// Every format is decoded to 16-bit frames at the file's own rate; the
// file rate is kept in Sample.Rate so a player can tune voices to it.
package sampleio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"

	"github.com/tphakala/go-tracker-mixer/internal/voice"
)

// Format identifies a supported file format.
type Format int

// Supported formats.
const (
	FormatWAV Format = iota
	FormatAIFF
	FormatVorbis
	FormatMP3
)

// String returns the name of the format.
func (f Format) String() string {
	switch f {
	case FormatWAV:
		return "wav"
	case FormatAIFF:
		return "aiff"
	case FormatVorbis:
		return "ogg"
	case FormatMP3:
		return "mp3"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return FormatWAV, nil
	case ".aif", ".aiff":
		return FormatAIFF, nil
	case ".ogg", ".oga":
		return FormatVorbis, nil
	case ".mp3":
		return FormatMP3, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Load decodes the file at path. The sample is named after the file.
func Load(path string) (*voice.Sample, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sample: %w", err)
	}
	defer func() { _ = f.Close() }()

	s, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return s, nil
}

// Decode reads a whole file of the given format from r.
func Decode(r io.ReadSeeker, format Format) (*voice.Sample, error) {
	switch format {
	case FormatWAV:
		return decodeWAV(r)
	case FormatAIFF:
		return decodeAIFF(r)
	case FormatVorbis:
		return decodeVorbis(r)
	case FormatMP3:
		return decodeMP3(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// pcmReader is the chunked PCM interface shared by the go-audio decoders.
type pcmReader interface {
	PCMBuffer(buf *audio.IntBuffer) (int, error)
}

func decodeWAV(r io.ReadSeeker) (*voice.Sample, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a WAV file", ErrInvalidFile)
	}

	format := dec.Format()
	data, err := readPCM(dec, format)
	if err != nil {
		return nil, err
	}
	// 8-bit WAV data is unsigned.
	return newSample(data, format, int(dec.BitDepth), true)
}

func decodeAIFF(r io.ReadSeeker) (*voice.Sample, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not an AIFF file", ErrInvalidFile)
	}
	dec.ReadInfo()

	format := dec.Format()
	if format == nil {
		return nil, fmt.Errorf("%w: missing AIFF format", ErrInvalidFile)
	}
	data, err := readPCM(dec, format)
	if err != nil {
		return nil, err
	}
	return newSample(data, format, int(dec.BitDepth), false)
}

// readPCM drains a go-audio decoder chunk by chunk.
func readPCM(dec pcmReader, format *audio.Format) ([]int, error) {
	if format == nil || format.NumChannels <= 0 {
		return nil, fmt.Errorf("%w: missing channel count", ErrInvalidFile)
	}

	buf := &audio.IntBuffer{
		Data:   make([]int, pcmChunkFrames*format.NumChannels),
		Format: format,
	}

	var out []int
	for {
		buf.Data = buf.Data[:cap(buf.Data)]
		n, err := dec.PCMBuffer(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read audio data: %w", err)
		}
		if n == 0 {
			break
		}
		out = append(out, buf.Data[:n]...)
	}
	return out, nil
}

// newSample converts interleaved integer PCM of the given width to a
// 16-bit sample.
func newSample(data []int, format *audio.Format, bitDepth int, unsigned8 bool) (*voice.Sample, error) {
	channels := format.NumChannels
	if channels > 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedChannels, channels)
	}
	if bitDepth != bitDepth8 && bitDepth != bitDepth16 && bitDepth != bitDepth24 && bitDepth != bitDepth32 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	frames := len(data) / channels
	if frames == 0 {
		return nil, ErrEmpty
	}

	out := make([]int16, frames*channels)
	for i := range out {
		out[i] = toInt16(data[i], bitDepth, unsigned8)
	}
	return &voice.Sample{
		Data16: out,
		Stereo: channels == 2,
		Rate:   uint32(format.SampleRate),
	}, nil
}

// toInt16 narrows one PCM value to 16 bits.
func toInt16(v, bitDepth int, unsigned8 bool) int16 {
	switch bitDepth {
	case bitDepth8:
		if unsigned8 {
			v -= center8
		}
		return int16(v << 8)
	case bitDepth16:
		return int16(v)
	default:
		return int16(v >> (bitDepth - bitDepth16))
	}
}

func decodeVorbis(r io.Reader) (*voice.Sample, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	if format.Channels > 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedChannels, format.Channels)
	}
	if format.Channels <= 0 || len(data) < format.Channels {
		return nil, ErrEmpty
	}

	frames := len(data) / format.Channels
	out := make([]int16, frames*format.Channels)
	for i := range out {
		v := max(-1, min(1, float64(data[i])))
		out[i] = int16(math.Round(v * math.MaxInt16))
	}
	return &voice.Sample{
		Data16: out,
		Stereo: format.Channels == 2,
		Rate:   uint32(format.SampleRate),
	}, nil
}

func decodeMP3(r io.Reader) (*voice.Sample, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	// go-mp3 always produces 16-bit little-endian stereo.
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	frames := len(raw) / mp3FrameBytes
	if frames == 0 {
		return nil, ErrEmpty
	}
	out := make([]int16, frames*2)
	for i := range out {
		out[i] = int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
	}
	return &voice.Sample{
		Data16: out,
		Stereo: true,
		Rate:   uint32(dec.SampleRate()),
	}, nil
}
