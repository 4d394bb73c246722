package message

import (
	"fmt"
	"time"

	"github.com/livecast/ingest/internal/protocols/rtmp/rawmessage"
)

const (
	// VideoChunkStreamID is the chunk stream ID that is usually used to send Video{}
	VideoChunkStreamID = 6
)

// video codecs
const (
	CodecH263     = 2
	CodecScreen   = 3
	CodecVP6      = 4
	CodecVP6Alpha = 5
	CodecScreenV2 = 6
	CodecH264     = 7
)

// video frame types
const (
	FrameKey        = 1
	FrameInter      = 2
	FrameDisposable = 3
	FrameGenerated  = 4
	FrameCommand    = 5
)

// VideoType is the type of a video message.
type VideoType uint8

// VideoType values.
const (
	VideoTypeConfig VideoType = 0
	VideoTypeAU     VideoType = 1
	VideoTypeEOS    VideoType = 2
)

// Video is a video message.
type Video struct {
	ChunkStreamID   uint32
	DTS             time.Duration
	MessageStreamID uint32
	Codec           uint8
	IsKeyFrame      bool
	Type            VideoType // only for CodecH264
	PTSDelta        time.Duration
	Payload         []byte
}

// IsConfig returns whether the message contains a codec configuration.
func (m *Video) IsConfig() bool {
	return m.Codec == CodecH264 && m.Type == VideoTypeConfig
}

func (m *Video) unmarshal(raw *rawmessage.Message) error {
	m.ChunkStreamID = raw.ChunkStreamID
	m.DTS = raw.Timestamp
	m.MessageStreamID = raw.MessageStreamID

	if len(raw.Body) < 1 {
		return fmt.Errorf("invalid body size")
	}

	m.IsKeyFrame = (raw.Body[0] >> 4) == FrameKey
	m.Codec = raw.Body[0] & 0x0F

	if m.Codec != CodecH264 {
		m.Type = VideoTypeAU
		m.Payload = raw.Body[1:]
		return nil
	}

	if len(raw.Body) < 5 {
		return fmt.Errorf("invalid body size")
	}

	m.Type = VideoType(raw.Body[1])
	switch m.Type {
	case VideoTypeConfig, VideoTypeAU, VideoTypeEOS:
	default:
		return fmt.Errorf("unsupported video message type: %d", m.Type)
	}

	m.PTSDelta = time.Duration(uint32(raw.Body[2])<<16|uint32(raw.Body[3])<<8|uint32(raw.Body[4])) * time.Millisecond
	m.Payload = raw.Body[5:]

	return nil
}

func (m *Video) marshalBodySize() int {
	if m.Codec == CodecH264 {
		return 5 + len(m.Payload)
	}
	return 1 + len(m.Payload)
}

func (m *Video) marshal() (*rawmessage.Message, error) {
	body := make([]byte, m.marshalBodySize())

	if m.IsKeyFrame {
		body[0] = FrameKey << 4
	} else {
		body[0] = FrameInter << 4
	}
	body[0] |= m.Codec

	if m.Codec == CodecH264 {
		body[1] = uint8(m.Type)

		tmp := uint32(m.PTSDelta / time.Millisecond)
		body[2] = uint8(tmp >> 16)
		body[3] = uint8(tmp >> 8)
		body[4] = uint8(tmp)

		copy(body[5:], m.Payload)
	} else {
		copy(body[1:], m.Payload)
	}

	return &rawmessage.Message{
		ChunkStreamID:   m.ChunkStreamID,
		Timestamp:       m.DTS,
		Type:            uint8(TypeVideo),
		MessageStreamID: m.MessageStreamID,
		Body:            body,
	}, nil
}
