package chunk

import (
	"io"
)

// Chunk2 is a type 2 chunk.
// Neither the stream ID nor the
// message length is included; this chunk has the same stream ID and
// message length as the preceding chunk.
type Chunk2 struct {
	ChunkStreamID  uint32
	TimestampDelta uint32
	Body           []byte
}

// Read reads the chunk.
func (c *Chunk2) Read(r io.Reader, bodyLen uint32, _ bool) error {
	header := make([]byte, 4)

	var err error
	c.ChunkStreamID, err = readBasicHeader(r, header)
	if err != nil {
		return err
	}

	_, err = io.ReadFull(r, header[:3])
	if err != nil {
		return err
	}

	c.TimestampDelta, err = readTimestamp(r, header[0:3], header)
	if err != nil {
		return err
	}

	c.Body = make([]byte, bodyLen)
	_, err = io.ReadFull(r, c.Body)
	return err
}

func (c Chunk2) marshalSize() int {
	n := BasicHeaderSize(c.ChunkStreamID) + 3 + len(c.Body)
	if c.TimestampDelta >= extendedTimestampMarker {
		n += 4
	}
	return n
}

// Marshal writes the chunk.
func (c Chunk2) Marshal(_ bool) ([]byte, error) {
	err := checkChunkStreamID(c.ChunkStreamID)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, c.marshalSize())
	n := marshalBasicHeader(buf, 2, c.ChunkStreamID)

	putTimestampField(buf[n:], c.TimestampDelta)
	n += 3

	if c.TimestampDelta >= extendedTimestampMarker {
		putExtendedTimestamp(buf[n:], c.TimestampDelta)
		n += 4
	}

	copy(buf[n:], c.Body)

	return buf, nil
}
