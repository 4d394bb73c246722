package message

import (
	"encoding/binary"

	"github.com/livecast/ingest/internal/protocols/rtmp/rawmessage"
)

// UserControlSetBufferLength is a user control message.
type UserControlSetBufferLength struct {
	StreamID     uint32
	BufferLength uint32
}

func (m *UserControlSetBufferLength) unmarshal(raw *rawmessage.Message) error {
	err := checkControl(raw, 10)
	if err != nil {
		return err
	}

	m.StreamID = binary.BigEndian.Uint32(raw.Body[2:])
	m.BufferLength = binary.BigEndian.Uint32(raw.Body[6:])

	return nil
}

func (m *UserControlSetBufferLength) marshal() (*rawmessage.Message, error) {
	body := make([]byte, 10)
	binary.BigEndian.PutUint16(body, uint16(UserControlTypeSetBufferLength))
	binary.BigEndian.PutUint32(body[2:], m.StreamID)
	binary.BigEndian.PutUint32(body[6:], m.BufferLength)

	return &rawmessage.Message{
		ChunkStreamID: ControlChunkStreamID,
		Type:          uint8(TypeUserControl),
		Body:          body,
	}, nil
}
