package message

import (
	"fmt"
	"time"

	"github.com/livecast/ingest/internal/protocols/rtmp/rawmessage"
)

// VideoExType is a video message extended type.
type VideoExType uint8

// video message extended types.
const (
	VideoExTypeSequenceStart        VideoExType = 0
	VideoExTypeCodedFrames          VideoExType = 1
	VideoExTypeSequenceEnd          VideoExType = 2
	VideoExTypeFramesX              VideoExType = 3
	VideoExTypeMetadata             VideoExType = 4
	VideoExTypeMPEG2TSSequenceStart VideoExType = 5
	VideoExTypeMultitrack           VideoExType = 6
)

// VideoEx is an Enhanced-RTMP video message.
type VideoEx struct {
	ChunkStreamID   uint32
	DTS             time.Duration
	MessageStreamID uint32
	IsKeyFrame      bool
	Type            VideoExType
	FourCC          FourCC
	PTSDelta        time.Duration // only for CodedFrames of AVC and HEVC
	Payload         []byte
}

func (m *VideoEx) hasPTSDelta() bool {
	return m.Type == VideoExTypeCodedFrames && (m.FourCC == FourCCAVC || m.FourCC == FourCCHEVC)
}

func (m *VideoEx) unmarshal(raw *rawmessage.Message) error {
	m.ChunkStreamID = raw.ChunkStreamID
	m.DTS = raw.Timestamp
	m.MessageStreamID = raw.MessageStreamID

	if len(raw.Body) < 5 {
		return fmt.Errorf("not enough bytes")
	}

	m.IsKeyFrame = ((raw.Body[0] >> 4) & 0x07) == FrameKey

	m.Type = VideoExType(raw.Body[0] & 0x0F)
	if m.Type > VideoExTypeMultitrack {
		return fmt.Errorf("unsupported video extended type: %v", m.Type)
	}

	m.FourCC = readFourCC(raw.Body[1:])

	if m.hasPTSDelta() {
		if len(raw.Body) < 8 {
			return fmt.Errorf("not enough bytes")
		}

		m.PTSDelta = time.Duration(uint32(raw.Body[5])<<16|uint32(raw.Body[6])<<8|uint32(raw.Body[7])) * time.Millisecond
		m.Payload = raw.Body[8:]
	} else {
		m.Payload = raw.Body[5:]
	}

	return nil
}

func (m *VideoEx) marshal() (*rawmessage.Message, error) {
	n := 5
	if m.hasPTSDelta() {
		n = 8
	}

	body := make([]byte, n+len(m.Payload))

	body[0] = 0b10000000 | byte(m.Type)
	if m.IsKeyFrame {
		body[0] |= FrameKey << 4
	} else {
		body[0] |= FrameInter << 4
	}

	putFourCC(body[1:], m.FourCC)

	if n == 8 {
		tmp := uint32(m.PTSDelta / time.Millisecond)
		body[5] = uint8(tmp >> 16)
		body[6] = uint8(tmp >> 8)
		body[7] = uint8(tmp)
	}

	copy(body[n:], m.Payload)

	return &rawmessage.Message{
		ChunkStreamID:   m.ChunkStreamID,
		Timestamp:       m.DTS,
		Type:            uint8(TypeVideo),
		MessageStreamID: m.MessageStreamID,
		Body:            body,
	}, nil
}
