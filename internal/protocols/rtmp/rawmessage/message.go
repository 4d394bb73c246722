// Package rawmessage contains a RTMP raw message reader/writer.
package rawmessage

import (
	"time"
)

// Message is a message reassembled from chunks, before its body is decoded.
type Message struct {
	ChunkStreamID   uint32
	Timestamp       time.Duration
	Type            uint8
	MessageStreamID uint32
	Body            []byte
}
