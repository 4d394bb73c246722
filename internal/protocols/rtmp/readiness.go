package rtmp

import (
	"github.com/livecast/ingest/internal/protocols/rtmp/message"
)

type mediaKind int

const (
	mediaNone mediaKind = iota
	mediaConfig
	mediaCoded
)

func classifyMedia(msg message.Message) (bool, mediaKind) {
	switch msg := msg.(type) {
	case *message.Video:
		switch {
		case msg.IsConfig():
			return true, mediaConfig

		case msg.Codec == message.CodecH264 && msg.Type == message.VideoTypeEOS:
			return true, mediaNone
		}
		return true, mediaCoded

	case *message.VideoEx:
		switch msg.Type {
		case message.VideoExTypeSequenceStart:
			return true, mediaConfig

		case message.VideoExTypeCodedFrames, message.VideoExTypeFramesX, message.VideoExTypeMultitrack:
			return true, mediaCoded
		}
		return true, mediaNone

	case *message.Audio:
		if msg.IsConfig() {
			return false, mediaConfig
		}
		return false, mediaCoded

	case *message.AudioEx:
		switch msg.Type {
		case message.AudioExTypeSequenceStart:
			return false, mediaConfig

		case message.AudioExTypeCodedFrames, message.AudioExTypeMultitrack:
			return false, mediaCoded
		}
		return false, mediaNone
	}

	return false, mediaNone
}

// readiness decides when a stream is ready to be broadcast.
// A stream is ready when the first coded frame is received,
// or when the configuration of every declared track is received.
// Tracks are declared by onMetaData; without it, both a video
// and an audio track are expected.
type readiness struct {
	metadata    *Metadata
	videoConfig bool
	audioConfig bool
	videoTrack  string
	audioTrack  string
}

func (r *readiness) onMetadata(md *Metadata) {
	r.metadata = md
}

func (r *readiness) configsReceived() bool {
	if r.metadata != nil && (r.metadata.HasVideo || r.metadata.HasAudio) {
		return (!r.metadata.HasVideo || r.videoConfig) &&
			(!r.metadata.HasAudio || r.audioConfig)
	}
	return r.videoConfig && r.audioConfig
}

// onMedia processes a media message and returns whether the stream is ready.
func (r *readiness) onMedia(msg message.Message) bool {
	isVideo, kind := classifyMedia(msg)

	switch kind {
	case mediaConfig:
		if isVideo {
			r.videoConfig = true
			r.videoTrack = describeTrack(msg)
		} else {
			r.audioConfig = true
			r.audioTrack = describeTrack(msg)
		}
		return r.configsReceived()

	case mediaCoded:
		if isVideo {
			if r.videoTrack == "" {
				r.videoTrack = describeTrack(msg)
			}
		} else if r.audioTrack == "" {
			r.audioTrack = describeTrack(msg)
		}
		return true
	}

	return false
}

func (r *readiness) tracks() []string {
	var ret []string
	if r.videoTrack != "" {
		ret = append(ret, r.videoTrack)
	}
	if r.audioTrack != "" {
		ret = append(ret, r.audioTrack)
	}
	return ret
}
