package message

import (
	"fmt"
	"time"

	"github.com/livecast/ingest/internal/protocols/rtmp/rawmessage"
)

// AudioExType is an audio message extended type.
type AudioExType uint8

// audio message extended types.
const (
	AudioExTypeSequenceStart      AudioExType = 0
	AudioExTypeCodedFrames        AudioExType = 1
	AudioExTypeSequenceEnd        AudioExType = 2
	AudioExTypeMultichannelConfig AudioExType = 4
	AudioExTypeMultitrack         AudioExType = 5
)

// AudioEx is an Enhanced-RTMP audio message.
type AudioEx struct {
	ChunkStreamID   uint32
	DTS             time.Duration
	MessageStreamID uint32
	Type            AudioExType
	FourCC          FourCC
	Payload         []byte
}

func (m *AudioEx) unmarshal(raw *rawmessage.Message) error {
	m.ChunkStreamID = raw.ChunkStreamID
	m.DTS = raw.Timestamp
	m.MessageStreamID = raw.MessageStreamID

	if len(raw.Body) < 5 {
		return fmt.Errorf("not enough bytes")
	}

	m.Type = AudioExType(raw.Body[0] & 0x0F)
	switch m.Type {
	case AudioExTypeSequenceStart, AudioExTypeCodedFrames, AudioExTypeSequenceEnd,
		AudioExTypeMultichannelConfig, AudioExTypeMultitrack:
	default:
		return fmt.Errorf("unsupported audio extended type: %v", m.Type)
	}

	m.FourCC = readFourCC(raw.Body[1:])
	m.Payload = raw.Body[5:]

	return nil
}

func (m *AudioEx) marshal() (*rawmessage.Message, error) {
	body := make([]byte, 5+len(m.Payload))

	body[0] = codecAudioEx<<4 | byte(m.Type)
	putFourCC(body[1:], m.FourCC)
	copy(body[5:], m.Payload)

	return &rawmessage.Message{
		ChunkStreamID:   m.ChunkStreamID,
		Timestamp:       m.DTS,
		Type:            uint8(TypeAudio),
		MessageStreamID: m.MessageStreamID,
		Body:            body,
	}, nil
}
