package amf0

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var cases = []struct {
	name string
	dec  Data
	enc  []byte
}{
	{
		"number",
		Data{float64(3)},
		[]byte{0x00, 0x40, 0x08, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
	},
	{
		"boolean",
		Data{true, false},
		[]byte{0x01, 0x01, 0x01, 0x00},
	},
	{
		"string",
		Data{"abc"},
		[]byte{0x02, 0x00, 0x03, 0x61, 0x62, 0x63},
	},
	{
		"object",
		Data{Object{
			{Key: "k", Value: "v"},
			{Key: "n", Value: nil},
		}},
		[]byte{
			0x03, 0x00, 0x01, 0x6b, 0x02, 0x00, 0x01, 0x76,
			0x00, 0x01, 0x6e, 0x05, 0x00, 0x00, 0x09,
		},
	},
	{
		"null",
		Data{nil},
		[]byte{0x05},
	},
	{
		"ecma array",
		Data{ECMAArray{
			{Key: "k", Value: float64(1)},
		}},
		[]byte{
			0x08, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x6b,
			0x00, 0x3f, 0xf0, 0x00, 0x00, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x09,
		},
	},
	{
		"strict array",
		Data{StrictArray{float64(1), "a"}},
		[]byte{
			0x0a, 0x00, 0x00, 0x00, 0x02, 0x00, 0x3f, 0xf0,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x02, 0x00,
			0x01, 0x61,
		},
	},
	{
		"date",
		Data{time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		[]byte{
			0x0b, 0x41, 0xd7, 0x82, 0xf8, 0x40, 0x00, 0x00,
			0x00, 0x00, 0x00,
		},
	},
	{
		"nested",
		Data{Object{
			{Key: "a", Value: StrictArray{Object{}}},
		}},
		[]byte{
			0x03, 0x00, 0x01, 0x61, 0x0a, 0x00, 0x00, 0x00,
			0x01, 0x03, 0x00, 0x00, 0x09, 0x00, 0x00, 0x09,
		},
	},
	{
		"connect",
		Data{
			"connect",
			float64(1),
			Object{
				{Key: "app", Value: "live"},
				{Key: "tcUrl", Value: "rtmp://x:1935/live"},
			},
		},
		[]byte{
			0x02, 0x00, 0x07, 0x63, 0x6f, 0x6e, 0x6e, 0x65,
			0x63, 0x74, 0x00, 0x3f, 0xf0, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x03, 0x00, 0x03, 0x61, 0x70,
			0x70, 0x02, 0x00, 0x04, 0x6c, 0x69, 0x76, 0x65,
			0x00, 0x05, 0x74, 0x63, 0x55, 0x72, 0x6c, 0x02,
			0x00, 0x12, 0x72, 0x74, 0x6d, 0x70, 0x3a, 0x2f,
			0x2f, 0x78, 0x3a, 0x31, 0x39, 0x33, 0x35, 0x2f,
			0x6c, 0x69, 0x76, 0x65, 0x00, 0x00, 0x09,
		},
	},
}

func TestUnmarshal(t *testing.T) {
	for _, ca := range cases {
		t.Run(ca.name, func(t *testing.T) {
			dec, err := Unmarshal(ca.enc)
			require.NoError(t, err)
			require.Equal(t, ca.dec, dec)
		})
	}
}

func TestMarshal(t *testing.T) {
	for _, ca := range cases {
		t.Run(ca.name, func(t *testing.T) {
			enc, err := ca.dec.Marshal()
			require.NoError(t, err)
			require.Equal(t, ca.enc, enc)
		})
	}
}

func TestLongString(t *testing.T) {
	s := strings.Repeat("a", 70000)

	enc, err := Data{s}.Marshal()
	require.NoError(t, err)
	require.Equal(t, []byte{markerLongString, 0x00, 0x01, 0x11, 0x70}, enc[:5])
	require.Equal(t, 5+70000, len(enc))

	dec, err := Unmarshal(enc)
	require.NoError(t, err)
	require.Equal(t, Data{s}, dec)
}

func TestUnmarshalEmptyValues(t *testing.T) {
	for _, ca := range []struct {
		name string
		enc  []byte
	}{
		{"null", []byte{markerNull}},
		{"undefined", []byte{markerUndefined}},
		{"unsupported", []byte{markerUnsupported}},
	} {
		t.Run(ca.name, func(t *testing.T) {
			dec, err := Unmarshal(append(ca.enc, 0x01, 0x01))
			require.NoError(t, err)
			require.Equal(t, Data{nil, true}, dec)
		})
	}
}

func TestMarshalUndefined(t *testing.T) {
	enc, err := Data{Undefined{}}.Marshal()
	require.NoError(t, err)
	require.Equal(t, []byte{markerUndefined}, enc)
}

func TestObjectStopsAtEndMarker(t *testing.T) {
	enc := []byte{
		0x03, 0x00, 0x01, 0x6b, 0x01, 0x01, 0x00, 0x00, 0x09,
		0x02, 0x00, 0x01, 0x7a,
	}

	dec, err := Unmarshal(enc)
	require.NoError(t, err)
	require.Equal(t, Data{
		Object{{Key: "k", Value: true}},
		"z",
	}, dec)
}

func TestUnmarshalErrors(t *testing.T) {
	for _, ca := range []struct {
		name string
		enc  []byte
		err  string
	}{
		{
			"reference",
			[]byte{markerReference, 0x00, 0x01},
			"unsupported marker 0x07",
		},
		{
			"typed object",
			[]byte{markerTypedObject},
			"unsupported marker 0x10",
		},
		{
			"avmplus",
			[]byte{markerAVMPlus},
			"unsupported marker 0x11",
		},
		{
			"number too short",
			[]byte{markerNumber, 0x00, 0x01},
			"buffer is too short",
		},
		{
			"string too short",
			[]byte{markerString, 0x00, 0x05, 0x61},
			"buffer is too short",
		},
		{
			"object without end",
			[]byte{markerObject, 0x00, 0x01, 0x6b, 0x05},
			"buffer is too short",
		},
		{
			"object wrong end",
			[]byte{markerObject, 0x00, 0x00, 0x05},
			"object end not found",
		},
		{
			"strict array count",
			[]byte{markerStrictArray, 0xff, 0xff, 0xff, 0xff, 0x05},
			"buffer is too short",
		},
		{
			"date too short",
			[]byte{markerDate, 0x00},
			"buffer is too short",
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			_, err := Unmarshal(ca.enc)
			require.EqualError(t, err, ca.err)
		})
	}
}

func TestUnmarshalMaxDepth(t *testing.T) {
	var buf bytes.Buffer
	for i := 0; i < 100; i++ {
		buf.Write([]byte{markerStrictArray, 0x00, 0x00, 0x00, 0x01})
	}
	buf.WriteByte(markerNull)

	_, err := Unmarshal(buf.Bytes())
	require.Equal(t, errMaxDepth, err)
}

func TestDateMilliseconds(t *testing.T) {
	for _, ca := range []struct {
		name string
		in   time.Time
		out  time.Time
	}{
		{
			"milliseconds",
			time.UnixMilli(1700000000123).UTC(),
			time.UnixMilli(1700000000123).UTC(),
		},
		{
			"before epoch",
			time.UnixMilli(-1500).UTC(),
			time.UnixMilli(-1500).UTC(),
		},
		{
			"sub-millisecond truncated",
			time.Unix(1700000000, 123456789).UTC(),
			time.UnixMilli(1700000000123).UTC(),
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			enc, err := Data{ca.in}.Marshal()
			require.NoError(t, err)

			dec, err := Unmarshal(enc)
			require.NoError(t, err)
			require.Equal(t, Data{ca.out}, dec)
		})
	}
}

func TestMarshalUnsupportedType(t *testing.T) {
	_, err := Data{int(1)}.Marshal()
	require.EqualError(t, err, "unsupported data type: int")
}

func FuzzUnmarshal(f *testing.F) {
	for _, ca := range cases {
		f.Add(ca.enc)
	}

	f.Fuzz(func(_ *testing.T, b []byte) {
		Unmarshal(b) //nolint:errcheck
	})
}
