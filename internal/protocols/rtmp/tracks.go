package rtmp

import (
	"fmt"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/mpeg4audio"

	"github.com/livecast/ingest/internal/protocols/rtmp/h264conf"
	"github.com/livecast/ingest/internal/protocols/rtmp/message"
)

func describeH264(conf []byte) string {
	var c h264conf.Conf
	err := c.Unmarshal(conf)
	if err != nil {
		return "H264"
	}

	var sps h264.SPS
	err = sps.Unmarshal(c.SPS)
	if err != nil {
		return "H264"
	}

	return fmt.Sprintf("H264 %dx%d", sps.Width(), sps.Height())
}

func describeMPEG4Audio(conf []byte) string {
	var c mpeg4audio.AudioSpecificConfig
	err := c.Unmarshal(conf)
	if err != nil {
		return "MPEG-4 Audio"
	}

	return fmt.Sprintf("MPEG-4 Audio %dHz %dch", c.SampleRate, c.ChannelCount)
}

func videoCodecName(codec uint8) string {
	switch codec {
	case message.CodecH263:
		return "H263"

	case message.CodecScreen, message.CodecScreenV2:
		return "Screen Video"

	case message.CodecVP6, message.CodecVP6Alpha:
		return "VP6"

	case message.CodecH264:
		return "H264"
	}

	return fmt.Sprintf("video codec %d", codec)
}

func audioCodecName(codec uint8) string {
	switch codec {
	case message.CodecLPCM, message.CodecLPCMLE:
		return "LPCM"

	case message.CodecADPCM:
		return "ADPCM"

	case message.CodecMPEG1Audio:
		return "MPEG-1 Audio"

	case message.CodecPCMA:
		return "G711 A-law"

	case message.CodecPCMU:
		return "G711 mu-law"

	case message.CodecMPEG4Audio:
		return "MPEG-4 Audio"

	case message.CodecSpeex:
		return "Speex"
	}

	return fmt.Sprintf("audio codec %d", codec)
}

// describeTrack returns a description of the track a media message belongs to.
func describeTrack(msg message.Message) string {
	switch msg := msg.(type) {
	case *message.Video:
		if msg.IsConfig() {
			return describeH264(msg.Payload)
		}
		return videoCodecName(msg.Codec)

	case *message.VideoEx:
		if msg.FourCC == message.FourCCAVC && msg.Type == message.VideoExTypeSequenceStart {
			return describeH264(msg.Payload)
		}
		return msg.FourCC.String()

	case *message.Audio:
		if msg.IsConfig() {
			return describeMPEG4Audio(msg.Payload)
		}
		return audioCodecName(msg.Codec)

	case *message.AudioEx:
		if msg.FourCC == message.FourCCMP4A && msg.Type == message.AudioExTypeSequenceStart {
			return describeMPEG4Audio(msg.Payload)
		}
		return msg.FourCC.String()
	}

	return ""
}
