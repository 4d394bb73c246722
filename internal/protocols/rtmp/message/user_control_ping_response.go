package message

import (
	"encoding/binary"

	"github.com/livecast/ingest/internal/protocols/rtmp/rawmessage"
)

// UserControlPingResponse is a user control message.
type UserControlPingResponse struct {
	ServerTime uint32
}

func (m *UserControlPingResponse) unmarshal(raw *rawmessage.Message) error {
	err := checkControl(raw, 6)
	if err != nil {
		return err
	}

	m.ServerTime = binary.BigEndian.Uint32(raw.Body[2:])

	return nil
}

func (m *UserControlPingResponse) marshal() (*rawmessage.Message, error) {
	body := make([]byte, 6)
	binary.BigEndian.PutUint16(body, uint16(UserControlTypePingResponse))
	binary.BigEndian.PutUint32(body[2:], m.ServerTime)

	return &rawmessage.Message{
		ChunkStreamID: ControlChunkStreamID,
		Type:          uint8(TypeUserControl),
		Body:          body,
	}, nil
}
