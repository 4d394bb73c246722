package message

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/livecast/ingest/internal/protocols/rtmp/bytecounter"
	"github.com/livecast/ingest/internal/protocols/rtmp/rawmessage"
)

var userControlAllocators = map[UserControlType]func() Message{
	UserControlTypeStreamBegin:      func() Message { return &UserControlStreamBegin{} },
	UserControlTypeStreamEOF:        func() Message { return &UserControlStreamEOF{} },
	UserControlTypeStreamDry:        func() Message { return &UserControlStreamDry{} },
	UserControlTypeSetBufferLength:  func() Message { return &UserControlSetBufferLength{} },
	UserControlTypeStreamIsRecorded: func() Message { return &UserControlStreamIsRecorded{} },
	UserControlTypePingRequest:      func() Message { return &UserControlPingRequest{} },
	UserControlTypePingResponse:     func() Message { return &UserControlPingResponse{} },
}

var allocators = map[Type]func(body []byte) (Message, error){
	TypeSetChunkSize:     func([]byte) (Message, error) { return &SetChunkSize{}, nil },
	TypeAcknowledge:      func([]byte) (Message, error) { return &Acknowledge{}, nil },
	TypeSetWindowAckSize: func([]byte) (Message, error) { return &SetWindowAckSize{}, nil },
	TypeSetPeerBandwidth: func([]byte) (Message, error) { return &SetPeerBandwidth{}, nil },
	TypeCommandAMF0:      func([]byte) (Message, error) { return &CommandAMF0{}, nil },
	TypeDataAMF0:         func([]byte) (Message, error) { return &DataAMF0{}, nil },

	TypeUserControl: func(body []byte) (Message, error) {
		if len(body) < 2 {
			return nil, fmt.Errorf("not enough bytes")
		}

		typ := UserControlType(binary.BigEndian.Uint16(body))

		alloc, ok := userControlAllocators[typ]
		if !ok {
			return nil, fmt.Errorf("invalid user control type: %v", typ)
		}
		return alloc(), nil
	},

	TypeAudio: func(body []byte) (Message, error) {
		if len(body) >= 1 && (body[0]>>4) == codecAudioEx {
			return &AudioEx{}, nil
		}
		return &Audio{}, nil
	},

	TypeVideo: func(body []byte) (Message, error) {
		// the most significant bit marks the enhanced header.
		if len(body) >= 1 && (body[0]&0x80) != 0 {
			return &VideoEx{}, nil
		}
		return &Video{}, nil
	},
}

func allocateMessage(raw *rawmessage.Message) (Message, error) {
	alloc, ok := allocators[Type(raw.Type)]
	if !ok {
		return nil, fmt.Errorf("unsupported message type: %v", raw.Type)
	}
	return alloc(raw.Body)
}

// Reader is a message reader.
type Reader struct {
	r *rawmessage.Reader
}

// NewReader allocates a Reader.
func NewReader(
	r io.Reader,
	bcr *bytecounter.Reader,
	onAckNeeded func(uint32) error,
) *Reader {
	return &Reader{
		r: rawmessage.NewReader(r, bcr, onAckNeeded),
	}
}

// SetMaxMessageSize sets the maximum size of message bodies.
func (r *Reader) SetMaxMessageSize(v uint32) {
	r.r.SetMaxMessageSize(v)
}

// Read reads a Message.
func (r *Reader) Read() (Message, error) {
	raw, err := r.r.Read()
	if err != nil {
		return nil, err
	}

	msg, err := allocateMessage(raw)
	if err != nil {
		return nil, err
	}

	err = msg.unmarshal(raw)
	if err != nil {
		return nil, err
	}

	switch tmsg := msg.(type) {
	case *SetChunkSize:
		err = r.r.SetChunkSize(tmsg.Value)
		if err != nil {
			return nil, err
		}

	case *SetWindowAckSize:
		r.r.SetWindowAckSize(tmsg.Value)
	}

	return msg, nil
}
