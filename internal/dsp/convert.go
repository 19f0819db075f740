package dsp

import (
	"encoding/binary"
	"math"

	"github.com/tphakala/go-tracker-mixer/internal/simdops"
)

// Converter turns the planar mix accumulators into interleaved output
// samples. Its staging buffer is sized once for the largest block so that
// conversion never allocates.
type Converter struct {
	staged  []float64
	ops     *simdops.Ops[float64]
	ops32   *simdops.Ops[float32]
	left32  []float32
	right32 []float32
}

// NewConverter creates a converter for blocks of up to maxFrames frames.
func NewConverter(maxFrames int) *Converter {
	c := &Converter{
		ops:   simdops.Float64Ops(),
		ops32: simdops.Float32Ops(),
	}
	c.Resize(maxFrames)
	return c
}

// Resize reallocates the staging buffers for blocks of up to maxFrames.
func (c *Converter) Resize(maxFrames int) {
	c.staged = make([]float64, maxFrames*MaxChannels)
	c.left32 = make([]float32, maxFrames)
	c.right32 = make([]float32, maxFrames)
}

// BytesPerSample returns the storage size of one sample at bitDepth.
func BytesPerSample(bitDepth int) int {
	return bitDepth / bitsPerByte
}

// stage interleaves the mix channels into c.staged and returns the samples
// together with the number of mix channels per frame.
func (c *Converter) stage(bufs [][]float64, frames int, swap bool) ([]float64, int) {
	if len(bufs) == 1 {
		return bufs[0][:frames], 1
	}

	left, right := bufs[0][:frames], bufs[1][:frames]
	if swap {
		left, right = right, left
	}
	out := c.staged[:frames*MaxChannels]
	c.ops.Interleave2(out, left, right)
	return out, MaxChannels
}

// Bytes writes frames frames of little-endian PCM at bitDepth (8, 16 or 32)
// with channels channels per frame into out. 8-bit output is unsigned with
// silence at 128. Device channels beyond the mix channels carry silence.
func (c *Converter) Bytes(out []byte, bufs [][]float64, frames, channels, bitDepth int, swap bool) {
	staged, mixChannels := c.stage(bufs, frames, swap)
	width := BytesPerSample(bitDepth)

	for f := range frames {
		base := f * channels * width
		for ch := range channels {
			var x float64
			silent := ch >= mixChannels
			if !silent {
				x = staged[f*mixChannels+ch]
			}
			pos := base + ch*width

			switch bitDepth {
			case BitDepth8:
				if silent {
					out[pos] = center8
				} else {
					out[pos] = byte(int(to8(x)) + center8)
				}
			case BitDepth16:
				binary.LittleEndian.PutUint16(out[pos:], uint16(to16(x)))
			default:
				binary.LittleEndian.PutUint32(out[pos:], uint32(to32(x)))
			}
		}
	}
}

// Ints writes frames frames as integer samples at bitDepth into out, in the
// layout used by go-audio's IntBuffer. 8-bit output is unsigned like WAV.
func (c *Converter) Ints(out []int, bufs [][]float64, frames, channels, bitDepth int, swap bool) {
	staged, mixChannels := c.stage(bufs, frames, swap)

	for f := range frames {
		for ch := range channels {
			idx := f*channels + ch
			if ch >= mixChannels {
				if bitDepth == BitDepth8 {
					out[idx] = center8
				} else {
					out[idx] = 0
				}
				continue
			}

			x := staged[f*mixChannels+ch]
			switch bitDepth {
			case BitDepth8:
				out[idx] = int(to8(x)) + center8
			case BitDepth16:
				out[idx] = int(to16(x))
			default:
				out[idx] = int(to32(x))
			}
		}
	}
}

// Float32 writes frames frames of normalised float32 samples in [-1, 1]
// into out. Stereo output is interleaved with the float32 SIMD path.
func (c *Converter) Float32(out []float32, bufs [][]float64, frames, channels int, swap bool) {
	if len(bufs) > 1 && channels == MaxChannels {
		left, right := bufs[0][:frames], bufs[1][:frames]
		if swap {
			left, right = right, left
		}
		for i := range frames {
			c.left32[i] = float32(normalize(left[i]))
			c.right32[i] = float32(normalize(right[i]))
		}
		c.ops32.Interleave2(out[:frames*MaxChannels], c.left32[:frames], c.right32[:frames])
		return
	}

	staged, mixChannels := c.stage(bufs, frames, swap)
	for f := range frames {
		for ch := range channels {
			var x float32
			if ch < mixChannels {
				x = float32(normalize(staged[f*mixChannels+ch]))
			}
			out[f*channels+ch] = x
		}
	}
}

func normalize(x float64) float64 {
	return max(-1, min(1, x/FullScale))
}

func to8(x float64) int8 {
	return int8(math.Round(normalize(x) * maxInt8))
}

func to16(x float64) int16 {
	return int16(math.Round(normalize(x) * maxInt16))
}

func to32(x float64) int32 {
	return int32(math.Round(normalize(x) * maxInt32))
}
