package amf0

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

func marshalSizeEntries(entries []ObjectEntry) (int, error) {
	n := 0

	for _, entry := range entries {
		if len(entry.Key) > math.MaxUint16 {
			return 0, fmt.Errorf("key is too long")
		}

		en, err := marshalSizeItem(entry.Value)
		if err != nil {
			return 0, err
		}

		n += 2 + len(entry.Key) + en
	}

	return n + 3, nil
}

func marshalSizeItem(item interface{}) (int, error) {
	switch item := item.(type) {
	case float64:
		return 9, nil

	case bool:
		return 2, nil

	case string:
		if len(item) > math.MaxUint16 {
			return 5 + len(item), nil
		}
		return 3 + len(item), nil

	case time.Time:
		return 11, nil

	case Object:
		n, err := marshalSizeEntries(item)
		if err != nil {
			return 0, err
		}
		return 1 + n, nil

	case ECMAArray:
		n, err := marshalSizeEntries(item)
		if err != nil {
			return 0, err
		}
		return 5 + n, nil

	case StrictArray:
		n := 5

		for _, entry := range item {
			en, err := marshalSizeItem(entry)
			if err != nil {
				return 0, err
			}

			n += en
		}

		return n, nil

	case Undefined:
		return 1, nil

	case nil:
		return 1, nil

	default:
		return 0, fmt.Errorf("unsupported data type: %T", item)
	}
}

func marshalEntries(entries []ObjectEntry, buf []byte) int {
	n := 0

	for _, entry := range entries {
		le := len(entry.Key)
		binary.BigEndian.PutUint16(buf[n:], uint16(le))
		copy(buf[n+2:], entry.Key)
		n += 2 + le

		n += marshalItem(entry.Value, buf[n:])
	}

	buf[n] = 0
	buf[n+1] = 0
	buf[n+2] = markerObjectEnd

	return n + 3
}

func marshalItem(item interface{}, buf []byte) int {
	switch item := item.(type) {
	case float64:
		buf[0] = markerNumber
		binary.BigEndian.PutUint64(buf[1:], math.Float64bits(item))
		return 9

	case bool:
		buf[0] = markerBoolean
		if item {
			buf[1] = 1
		} else {
			buf[1] = 0
		}
		return 2

	case string:
		le := len(item)

		if le > math.MaxUint16 {
			buf[0] = markerLongString
			binary.BigEndian.PutUint32(buf[1:], uint32(le))
			copy(buf[5:], item)
			return 5 + le
		}

		buf[0] = markerString
		binary.BigEndian.PutUint16(buf[1:], uint16(le))
		copy(buf[3:], item)
		return 3 + le

	case time.Time:
		buf[0] = markerDate
		binary.BigEndian.PutUint64(buf[1:], math.Float64bits(dateToSeconds(item)))
		buf[9] = 0
		buf[10] = 0
		return 11

	case Object:
		buf[0] = markerObject
		return 1 + marshalEntries(item, buf[1:])

	case ECMAArray:
		buf[0] = markerECMAArray
		binary.BigEndian.PutUint32(buf[1:], uint32(len(item)))
		return 5 + marshalEntries(item, buf[5:])

	case StrictArray:
		buf[0] = markerStrictArray
		binary.BigEndian.PutUint32(buf[1:], uint32(len(item)))
		n := 5

		for _, entry := range item {
			n += marshalItem(entry, buf[n:])
		}

		return n

	case Undefined:
		buf[0] = markerUndefined
		return 1

	default:
		buf[0] = markerNull
		return 1
	}
}
