package message

import (
	"encoding/binary"

	"github.com/livecast/ingest/internal/protocols/rtmp/rawmessage"
)

// SetWindowAckSize is a set window acknowledgement message.
type SetWindowAckSize struct {
	Value uint32
}

func (m *SetWindowAckSize) unmarshal(raw *rawmessage.Message) error {
	err := checkControl(raw, 4)
	if err != nil {
		return err
	}

	m.Value = binary.BigEndian.Uint32(raw.Body)

	return nil
}

func (m *SetWindowAckSize) marshal() (*rawmessage.Message, error) {
	body := make([]byte, 4)
	binary.BigEndian.PutUint32(body, m.Value)

	return &rawmessage.Message{
		ChunkStreamID: ControlChunkStreamID,
		Type:          uint8(TypeSetWindowAckSize),
		Body:          body,
	}, nil
}
