package mixer

// NewStereo creates a 16-bit stereo mixer at rate Hz with the default
// configuration.
func NewStereo(voices, rate int) (*Mixer, error) {
	f := DefaultOutputFormat()
	f.Frequency = rate
	return New(voices, f, nil)
}

// NewMono creates a 16-bit mono mixer at rate Hz with the default
// configuration.
func NewMono(voices, rate int) (*Mixer, error) {
	f := DefaultOutputFormat()
	f.Frequency = rate
	f.Channels = 1
	return New(voices, f, nil)
}

// NewFloat32 creates a stereo mixer at rate Hz meant to be rendered with
// RenderFloat32, for example into a float32 audio device.
func NewFloat32(voices, rate, bufferFrames int) (*Mixer, error) {
	f := DefaultOutputFormat()
	f.Frequency = rate
	f.BufferSizeInFrames = bufferFrames
	f.BitsPerSample = 32
	return New(voices, f, nil)
}

// NewAmiga creates a stereo mixer with the classic Amiga sound: no
// interpolation, the output filter enabled and a reduced stereo width.
func NewAmiga(voices, rate int) (*Mixer, error) {
	cfg := DefaultConfig()
	cfg.Interpolation = InterpolationNone
	cfg.EnableAmigaFilter = true
	cfg.StereoSeparation = amigaStereoSeparation

	f := DefaultOutputFormat()
	f.Frequency = rate
	return New(voices, f, cfg)
}
