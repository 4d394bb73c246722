// Package chunk implements RTMP chunks.
package chunk

import (
	"errors"
	"fmt"
	"io"
)

// chunk stream ID limits of the basic header.
const (
	MinChunkStreamID = 2
	MaxChunkStreamID = 64 + 255 + 255*256
)

// value of the 3-byte timestamp field that announces an extended timestamp.
const extendedTimestampMarker = 0xFFFFFF

// ErrInvalidChunkStreamID is returned when a chunk stream ID can't be encoded.
var ErrInvalidChunkStreamID = errors.New("invalid chunk stream ID")

// Chunk is a chunk.
type Chunk interface {
	Read(r io.Reader, bodyLen uint32, hasExtendedTimestamp bool) error
	Marshal(hasExtendedTimestamp bool) ([]byte, error)
}

// BasicHeaderSize returns the size of the basic header needed to encode a chunk stream ID.
func BasicHeaderSize(chunkStreamID uint32) int {
	switch {
	case chunkStreamID < 64:
		return 1

	case chunkStreamID < 64+255:
		return 2

	default:
		return 3
	}
}

// ParseBasicHeader decodes a basic header.
// buf must contain at least the size announced by the first byte.
func ParseBasicHeader(buf []byte) (byte, uint32, int, error) {
	if len(buf) < 1 {
		return 0, 0, 0, io.ErrUnexpectedEOF
	}

	typ := buf[0] >> 6

	switch buf[0] & 0x3F {
	case 0:
		if len(buf) < 2 {
			return 0, 0, 0, io.ErrUnexpectedEOF
		}
		return typ, uint32(buf[1]) + 64, 2, nil

	case 1:
		if len(buf) < 3 {
			return 0, 0, 0, io.ErrUnexpectedEOF
		}
		return typ, uint32(buf[1]) + uint32(buf[2])<<8 + 64, 3, nil

	default:
		return typ, uint32(buf[0] & 0x3F), 1, nil
	}
}

// BasicHeaderSizeFromFirstByte returns the size of a basic header given its first byte.
func BasicHeaderSizeFromFirstByte(byt byte) int {
	switch byt & 0x3F {
	case 0:
		return 2

	case 1:
		return 3

	default:
		return 1
	}
}

func readBasicHeader(r io.Reader, buf []byte) (uint32, error) {
	_, err := io.ReadFull(r, buf[:1])
	if err != nil {
		return 0, err
	}

	n := BasicHeaderSizeFromFirstByte(buf[0])
	if n > 1 {
		_, err = io.ReadFull(r, buf[1:n])
		if err != nil {
			return 0, err
		}
	}

	_, chunkStreamID, _, err := ParseBasicHeader(buf[:n])
	return chunkStreamID, err
}

func marshalBasicHeader(buf []byte, typ byte, chunkStreamID uint32) int {
	switch {
	case chunkStreamID < 64:
		buf[0] = typ<<6 | byte(chunkStreamID)
		return 1

	case chunkStreamID < 64+255:
		buf[0] = typ << 6
		buf[1] = byte(chunkStreamID - 64)
		return 2

	default:
		buf[0] = typ<<6 | 1
		buf[1] = byte(chunkStreamID - 64)
		buf[2] = byte((chunkStreamID - 64) >> 8)
		return 3
	}
}

func checkChunkStreamID(chunkStreamID uint32) error {
	if chunkStreamID < MinChunkStreamID || chunkStreamID > MaxChunkStreamID {
		return fmt.Errorf("%w: %d", ErrInvalidChunkStreamID, chunkStreamID)
	}
	return nil
}

func readTimestamp(r io.Reader, field []byte, buf []byte) (uint32, error) {
	v := uint32(field[0])<<16 | uint32(field[1])<<8 | uint32(field[2])

	if v == extendedTimestampMarker {
		_, err := io.ReadFull(r, buf[:4])
		if err != nil {
			return 0, err
		}

		v = uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
	}

	return v, nil
}

func putTimestampField(buf []byte, v uint32) {
	if v >= extendedTimestampMarker {
		buf[0] = 0xFF
		buf[1] = 0xFF
		buf[2] = 0xFF
		return
	}

	buf[0] = byte(v >> 16)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v)
}

func putExtendedTimestamp(buf []byte, v uint32) {
	buf[0] = byte(v >> 24)
	buf[1] = byte(v >> 16)
	buf[2] = byte(v >> 8)
	buf[3] = byte(v)
}
