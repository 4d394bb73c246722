package message

import (
	"encoding/binary"

	"github.com/livecast/ingest/internal/protocols/rtmp/rawmessage"
)

// UserControlStreamEOF is a user control message.
type UserControlStreamEOF struct {
	StreamID uint32
}

func (m *UserControlStreamEOF) unmarshal(raw *rawmessage.Message) error {
	err := checkControl(raw, 6)
	if err != nil {
		return err
	}

	m.StreamID = binary.BigEndian.Uint32(raw.Body[2:])

	return nil
}

func (m *UserControlStreamEOF) marshal() (*rawmessage.Message, error) {
	body := make([]byte, 6)
	binary.BigEndian.PutUint16(body, uint16(UserControlTypeStreamEOF))
	binary.BigEndian.PutUint32(body[2:], m.StreamID)

	return &rawmessage.Message{
		ChunkStreamID: ControlChunkStreamID,
		Type:          uint8(TypeUserControl),
		Body:          body,
	}, nil
}
