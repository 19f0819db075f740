// Package mixer is a real-time sample mixer for tracker music players.
//
// A format player (MOD, XM, S3M and friends) owns the song and the sample
// data. It drives a fixed set of voices through commands such as
// [Mixer.PlaySample], [Mixer.SetVoiceFrequency] and [Mixer.SetVoiceVolume];
// the mixer turns the voice state into PCM blocks on demand.
//
// # Quick Start
//
//	m, err := mixer.NewStereo(4, mixer.RateCD)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	s := mixer.NewSample16(data, false, 8363)
//	_ = m.PlaySample(0, s, 0, mixer.LoopNone)
//	_ = m.SetVoiceVolume(0, mixer.MaxVolume)
//
//	out := make([]byte, 1024*4)
//	n, err := m.RenderBlock(out, 1024)
//
// # Timing
//
// Every command is queued with a time in output frames. Without options it
// applies at the current render position plus the configured latency;
// [At] moves it further ahead:
//
//	_ = m.SetVoiceVolume(0, 0, mixer.At(441)) // 10 ms from now at 44.1 kHz
//
// Render calls split their block at every pending command, so a command
// scheduled for frame N changes the output exactly at frame N. Players
// that run once per tick implement [Player]; the mixer ticks them from
// inside the render call at exact frame positions.
//
// # Voices
//
// Voices play 8-bit or 16-bit, mono or stereo samples at a 32.32
// fixed-point position, forward or in reverse, one-shot or with forward
// and ping-pong loops. A sample queued with [Mixer.QueueSampleSwapAtLoop]
// takes over at the next loop wrap without a gap. Volume and panning
// changes are ramped across the span they occur in, new notes fade in and
// stopped voices fade out over 64 frames, so parameter changes never click.
// A sample with a release segment keeps looping until [Mixer.ReleaseVoice],
// then plays through the segment once the loop next reaches its end.
//
// # Post-processing
//
// The mixed signal passes through an optional Amiga RC low-pass filter, an
// optional 10-band equalizer with pre-amp, the master volume and, when
// voices are summed or equalized, a soft clipper before it is
// converted to 8-bit unsigned, 16-bit or 32-bit little-endian PCM, to int
// samples for go-audio or to float32.
//
// # Concurrency
//
// Rendering is single threaded. Commands come from a preallocated pool, so
// a [Player] issuing commands without options from Tick does not allocate.
// Configuration changes from a UI goroutine go through
// [Mixer.SetConfiguration], which swaps an immutable copy that the renderer
// picks up at the next block. [Mixer.Stop] lets the current block finish
// and fades out over the next 64 frames, however many blocks that takes.
package mixer
