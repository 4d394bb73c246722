package message

import (
	"encoding/binary"

	"github.com/livecast/ingest/internal/protocols/rtmp/rawmessage"
)

// peer bandwidth limit types.
const (
	LimitTypeHard    = 0
	LimitTypeSoft    = 1
	LimitTypeDynamic = 2
)

// SetPeerBandwidth is a set peer bandwidth message.
type SetPeerBandwidth struct {
	Value uint32
	Type  byte
}

func (m *SetPeerBandwidth) unmarshal(raw *rawmessage.Message) error {
	err := checkControl(raw, 5)
	if err != nil {
		return err
	}

	m.Value = binary.BigEndian.Uint32(raw.Body)
	m.Type = raw.Body[4]

	return nil
}

func (m *SetPeerBandwidth) marshal() (*rawmessage.Message, error) {
	body := make([]byte, 5)
	binary.BigEndian.PutUint32(body, m.Value)
	body[4] = m.Type

	return &rawmessage.Message{
		ChunkStreamID: ControlChunkStreamID,
		Type:          uint8(TypeSetPeerBandwidth),
		Body:          body,
	}, nil
}
