package chunk

import (
	"io"
)

// Chunk3 is a type 3 chunk.
// Type 3 chunks have no message header. The stream ID, message length
// and timestamp delta fields are not present; chunks of this type take
// values from the preceding chunk for the same Chunk Stream ID. When a
// single message is split into chunks, all chunks of a message except
// the first one SHOULD use this type.
type Chunk3 struct {
	ChunkStreamID uint32

	// repeated extended timestamp of the preceding chunk, if any.
	Timestamp uint32

	Body []byte
}

// Read reads the chunk.
func (c *Chunk3) Read(r io.Reader, bodyLen uint32, hasExtendedTimestamp bool) error {
	header := make([]byte, 4)

	var err error
	c.ChunkStreamID, err = readBasicHeader(r, header)
	if err != nil {
		return err
	}

	if hasExtendedTimestamp {
		_, err = io.ReadFull(r, header)
		if err != nil {
			return err
		}

		c.Timestamp = uint32(header[0])<<24 | uint32(header[1])<<16 | uint32(header[2])<<8 | uint32(header[3])
	} else {
		c.Timestamp = 0
	}

	c.Body = make([]byte, bodyLen)
	_, err = io.ReadFull(r, c.Body)
	return err
}

func (c Chunk3) marshalSize(hasExtendedTimestamp bool) int {
	n := BasicHeaderSize(c.ChunkStreamID) + len(c.Body)
	if hasExtendedTimestamp {
		n += 4
	}
	return n
}

// Marshal writes the chunk.
func (c Chunk3) Marshal(hasExtendedTimestamp bool) ([]byte, error) {
	err := checkChunkStreamID(c.ChunkStreamID)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, c.marshalSize(hasExtendedTimestamp))
	n := marshalBasicHeader(buf, 3, c.ChunkStreamID)

	if hasExtendedTimestamp {
		putExtendedTimestamp(buf[n:], c.Timestamp)
		n += 4
	}

	copy(buf[n:], c.Body)

	return buf, nil
}
