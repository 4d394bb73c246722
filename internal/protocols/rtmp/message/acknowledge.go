package message

import (
	"encoding/binary"

	"github.com/livecast/ingest/internal/protocols/rtmp/rawmessage"
)

// Acknowledge is an acknowledgement message.
type Acknowledge struct {
	Value uint32
}

func (m *Acknowledge) unmarshal(raw *rawmessage.Message) error {
	err := checkControl(raw, 4)
	if err != nil {
		return err
	}

	m.Value = binary.BigEndian.Uint32(raw.Body)

	return nil
}

func (m *Acknowledge) marshal() (*rawmessage.Message, error) {
	body := make([]byte, 4)
	binary.BigEndian.PutUint32(body, m.Value)

	return &rawmessage.Message{
		ChunkStreamID: ControlChunkStreamID,
		Type:          uint8(TypeAcknowledge),
		Body:          body,
	}, nil
}
