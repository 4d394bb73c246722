package test

// SPS is a H264 SPS of a 1920x1080 baseline stream.
var SPS = []byte{
	0x67, 0x42, 0xc0, 0x28, 0xd9, 0x00, 0x78, 0x02,
	0x27, 0xe5, 0x84, 0x00, 0x00, 0x03, 0x00, 0x04,
	0x00, 0x00, 0x03, 0x00, 0xf0, 0x3c, 0x60, 0xc9, 0x20,
}

// PPS is a H264 PPS.
var PPS = []byte{0x08, 0x06, 0x07, 0x08}

// AACConfig is a MPEG-4 audio configuration of a 44100Hz stereo stream.
var AACConfig = []byte{0x12, 0x10}
