package sampleio

const (
	// pcmChunkFrames is the number of frames read per decoder call.
	pcmChunkFrames = 4096

	// mp3FrameBytes is the size of one decoded MP3 frame (two 16-bit values).
	mp3FrameBytes = 4

	center8 = 128

	bitDepth8  = 8
	bitDepth16 = 16
	bitDepth24 = 24
	bitDepth32 = 32
)
