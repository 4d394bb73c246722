package chunk

import (
	"encoding/binary"
	"io"
)

// Chunk0 is a type 0 chunk.
// This type MUST be used at
// the start of a chunk stream, and whenever the stream timestamp goes
// backward (e.g., because of a backward seek).
type Chunk0 struct {
	ChunkStreamID   uint32
	Timestamp       uint32
	Type            uint8
	MessageStreamID uint32
	BodyLen         uint32
	Body            []byte
}

// Read reads the chunk.
func (c *Chunk0) Read(r io.Reader, maxBodyLen uint32, _ bool) error {
	header := make([]byte, 11)

	var err error
	c.ChunkStreamID, err = readBasicHeader(r, header)
	if err != nil {
		return err
	}

	_, err = io.ReadFull(r, header)
	if err != nil {
		return err
	}

	c.BodyLen = uint32(header[3])<<16 | uint32(header[4])<<8 | uint32(header[5])
	c.Type = header[6]
	c.MessageStreamID = binary.LittleEndian.Uint32(header[7:11])

	c.Timestamp, err = readTimestamp(r, header[0:3], header)
	if err != nil {
		return err
	}

	chunkBodyLen := c.BodyLen
	if chunkBodyLen > maxBodyLen {
		chunkBodyLen = maxBodyLen
	}

	c.Body = make([]byte, chunkBodyLen)
	_, err = io.ReadFull(r, c.Body)
	return err
}

func (c Chunk0) marshalSize() int {
	n := BasicHeaderSize(c.ChunkStreamID) + 11 + len(c.Body)
	if c.Timestamp >= extendedTimestampMarker {
		n += 4
	}
	return n
}

// Marshal writes the chunk.
func (c Chunk0) Marshal(_ bool) ([]byte, error) {
	err := checkChunkStreamID(c.ChunkStreamID)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, c.marshalSize())
	n := marshalBasicHeader(buf, 0, c.ChunkStreamID)

	putTimestampField(buf[n:], c.Timestamp)
	buf[n+3] = byte(c.BodyLen >> 16)
	buf[n+4] = byte(c.BodyLen >> 8)
	buf[n+5] = byte(c.BodyLen)
	buf[n+6] = c.Type
	binary.LittleEndian.PutUint32(buf[n+7:], c.MessageStreamID)
	n += 11

	if c.Timestamp >= extendedTimestampMarker {
		putExtendedTimestamp(buf[n:], c.Timestamp)
		n += 4
	}

	copy(buf[n:], c.Body)

	return buf, nil
}
