package amf0

import (
	"encoding/binary"
	"fmt"
	"math"
)

func unmarshalObjectEntries(buf []byte, depth int) ([]ObjectEntry, []byte, error) {
	out := []ObjectEntry{}

	for {
		if len(buf) < 2 {
			return nil, nil, errBufferTooShort
		}

		keyLen := int(binary.BigEndian.Uint16(buf))
		buf = buf[2:]

		if keyLen == 0 {
			break
		}

		if len(buf) < keyLen {
			return nil, nil, errBufferTooShort
		}

		key := string(buf[:keyLen])
		buf = buf[keyLen:]

		var value interface{}
		var err error
		value, buf, err = unmarshal(buf, depth+1)
		if err != nil {
			return nil, nil, err
		}

		out = append(out, ObjectEntry{
			Key:   key,
			Value: value,
		})
	}

	// the empty key must be followed by the end marker.
	if len(buf) < 1 {
		return nil, nil, errBufferTooShort
	}

	if buf[0] != markerObjectEnd {
		return nil, nil, fmt.Errorf("object end not found")
	}

	return out, buf[1:], nil
}

func unmarshal(buf []byte, depth int) (interface{}, []byte, error) {
	if depth >= maxDepth {
		return nil, nil, errMaxDepth
	}

	if len(buf) < 1 {
		return nil, nil, errBufferTooShort
	}

	var marker byte
	marker, buf = buf[0], buf[1:]

	switch marker {
	case markerNumber:
		if len(buf) < 8 {
			return nil, nil, errBufferTooShort
		}

		return math.Float64frombits(binary.BigEndian.Uint64(buf)), buf[8:], nil

	case markerBoolean:
		if len(buf) < 1 {
			return nil, nil, errBufferTooShort
		}

		return (buf[0] != 0), buf[1:], nil

	case markerString:
		if len(buf) < 2 {
			return nil, nil, errBufferTooShort
		}

		le := int(binary.BigEndian.Uint16(buf))
		buf = buf[2:]

		if len(buf) < le {
			return nil, nil, errBufferTooShort
		}

		return string(buf[:le]), buf[le:], nil

	case markerLongString:
		if len(buf) < 4 {
			return nil, nil, errBufferTooShort
		}

		le := uint64(binary.BigEndian.Uint32(buf))
		buf = buf[4:]

		if uint64(len(buf)) < le {
			return nil, nil, errBufferTooShort
		}

		return string(buf[:le]), buf[le:], nil

	case markerObject:
		entries, rest, err := unmarshalObjectEntries(buf, depth)
		if err != nil {
			return nil, nil, err
		}

		return Object(entries), rest, nil

	case markerECMAArray:
		// the element count is advisory, entries are terminated by the end marker.
		if len(buf) < 4 {
			return nil, nil, errBufferTooShort
		}

		entries, rest, err := unmarshalObjectEntries(buf[4:], depth)
		if err != nil {
			return nil, nil, err
		}

		return ECMAArray(entries), rest, nil

	case markerStrictArray:
		if len(buf) < 4 {
			return nil, nil, errBufferTooShort
		}

		arrayCount := binary.BigEndian.Uint32(buf)
		buf = buf[4:]

		// each element takes at least one byte.
		if uint64(arrayCount) > uint64(len(buf)) {
			return nil, nil, errBufferTooShort
		}

		out := make(StrictArray, 0, arrayCount)

		for i := uint32(0); i < arrayCount; i++ {
			var value interface{}
			var err error
			value, buf, err = unmarshal(buf, depth+1)
			if err != nil {
				return nil, nil, err
			}

			out = append(out, value)
		}

		return out, buf, nil

	case markerDate:
		if len(buf) < 10 {
			return nil, nil, errBufferTooShort
		}

		v := math.Float64frombits(binary.BigEndian.Uint64(buf))

		// time zone is not supported and ignored.
		return dateFromSeconds(v), buf[10:], nil

	case markerNull, markerUndefined, markerUnsupported:
		return nil, buf, nil

	default:
		return nil, nil, fmt.Errorf("unsupported marker 0x%.2x", marker)
	}
}
