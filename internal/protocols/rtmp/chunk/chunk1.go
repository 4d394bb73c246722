package chunk

import (
	"io"
)

// Chunk1 is a type 1 chunk.
// The message stream ID is not
// included; this chunk takes the same stream ID as the preceding chunk.
// Streams with variable-sized messages (for example, many video
// formats) SHOULD use this format for the first chunk of each new
// message after the first.
type Chunk1 struct {
	ChunkStreamID  uint32
	TimestampDelta uint32
	Type           uint8
	BodyLen        uint32
	Body           []byte
}

// Read reads the chunk.
func (c *Chunk1) Read(r io.Reader, maxBodyLen uint32, _ bool) error {
	header := make([]byte, 7)

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

	c.TimestampDelta, err = readTimestamp(r, header[0:3], header)
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

func (c Chunk1) marshalSize() int {
	n := BasicHeaderSize(c.ChunkStreamID) + 7 + len(c.Body)
	if c.TimestampDelta >= extendedTimestampMarker {
		n += 4
	}
	return n
}

// Marshal writes the chunk.
func (c Chunk1) Marshal(_ bool) ([]byte, error) {
	err := checkChunkStreamID(c.ChunkStreamID)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, c.marshalSize())
	n := marshalBasicHeader(buf, 1, c.ChunkStreamID)

	putTimestampField(buf[n:], c.TimestampDelta)
	buf[n+3] = byte(c.BodyLen >> 16)
	buf[n+4] = byte(c.BodyLen >> 8)
	buf[n+5] = byte(c.BodyLen)
	buf[n+6] = c.Type
	n += 7

	if c.TimestampDelta >= extendedTimestampMarker {
		putExtendedTimestamp(buf[n:], c.TimestampDelta)
		n += 4
	}

	copy(buf[n:], c.Body)

	return buf, nil
}
