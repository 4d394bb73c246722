package message

import (
	"encoding/binary"

	"github.com/livecast/ingest/internal/protocols/rtmp/rawmessage"
)

// SetChunkSize is a set chunk size message.
type SetChunkSize struct {
	Value uint32
}

func (m *SetChunkSize) unmarshal(raw *rawmessage.Message) error {
	err := checkControl(raw, 4)
	if err != nil {
		return err
	}

	m.Value = binary.BigEndian.Uint32(raw.Body)

	return nil
}

func (m *SetChunkSize) marshal() (*rawmessage.Message, error) {
	body := make([]byte, 4)
	binary.BigEndian.PutUint32(body, m.Value)

	return &rawmessage.Message{
		ChunkStreamID: ControlChunkStreamID,
		Type:          uint8(TypeSetChunkSize),
		Body:          body,
	}, nil
}
