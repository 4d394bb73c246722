// Package amf0 contains an AMF0 decoder and encoder.
package amf0

import (
	"errors"
	"math"
	"time"
)

const (
	markerNumber      = 0x00
	markerBoolean     = 0x01
	markerString      = 0x02
	markerObject      = 0x03
	markerMovieclip   = 0x04
	markerNull        = 0x05
	markerUndefined   = 0x06
	markerReference   = 0x07
	markerECMAArray   = 0x08
	markerObjectEnd   = 0x09
	markerStrictArray = 0x0A
	markerDate        = 0x0B
	markerLongString  = 0x0C
	markerUnsupported = 0x0D
	markerRecordset   = 0x0E
	markerXMLDocument = 0x0F
	markerTypedObject = 0x10
	markerAVMPlus     = 0x11
)

// nesting deeper than this is refused, in order to bound recursion.
const maxDepth = 64

var (
	errBufferTooShort = errors.New("buffer is too short")
	errMaxDepth       = errors.New("maximum nesting depth reached")
)

// Undefined is the AMF0 undefined value.
type Undefined struct{}

// Data is a list of ActionScript object graphs.
//
// Supported item types are float64, bool, string, Object, ECMAArray,
// StrictArray, time.Time (date), Undefined and nil (null).
type Data []interface{}

// Unmarshal decodes AMF0 data until the buffer is exhausted.
func Unmarshal(buf []byte) (Data, error) {
	var out Data

	for len(buf) != 0 {
		var item interface{}
		var err error
		item, buf, err = unmarshal(buf, 0)
		if err != nil {
			return nil, err
		}

		out = append(out, item)
	}

	return out, nil
}

// Marshal encodes AMF0 data.
func (data Data) Marshal() ([]byte, error) {
	n, err := data.MarshalSize()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, n)
	_, err = data.MarshalTo(buf)
	if err != nil {
		return nil, err
	}

	return buf, nil
}

// MarshalTo encodes AMF0 data into an existing buffer.
// The buffer must be at least MarshalSize() bytes long.
func (data Data) MarshalTo(buf []byte) (int, error) {
	n := 0

	for _, item := range data {
		n += marshalItem(item, buf[n:])
	}

	return n, nil
}

// MarshalSize returns the size needed to encode data in AMF0.
func (data Data) MarshalSize() (int, error) {
	n := 0

	for _, item := range data {
		in, err := marshalSizeItem(item)
		if err != nil {
			return 0, err
		}

		n += in
	}

	return n, nil
}

// dates are carried with millisecond precision.
func dateFromSeconds(v float64) time.Time {
	return time.UnixMilli(int64(math.Round(v * 1000))).UTC()
}

func dateToSeconds(t time.Time) float64 {
	return float64(t.UnixMilli()) / 1000
}
