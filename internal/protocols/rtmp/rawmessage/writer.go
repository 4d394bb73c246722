package rawmessage

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/livecast/ingest/internal/protocols/rtmp/chunk"
)

const (
	typeSetChunkSize = 1
	typeAudio        = 8
	typeVideo        = 9
)

type writerChunkStream struct {
	mw                  *Writer
	lastMessageStreamID *uint32
	lastTimestamp       uint32
}

func (wc *writerChunkStream) writeMessage(msg *Message, timestamp uint32, useDelta bool) error {
	bodyLen := uint32(len(msg.Body))

	useDelta = useDelta &&
		wc.lastMessageStreamID != nil &&
		*wc.lastMessageStreamID == msg.MessageStreamID &&
		timestamp >= wc.lastTimestamp

	var first chunk.Chunk
	var hasExtendedTimestamp bool
	var extendedTimestamp uint32
	firstLen := min(bodyLen, wc.mw.chunkSize)

	if useDelta {
		delta := timestamp - wc.lastTimestamp
		first = &chunk.Chunk1{
			ChunkStreamID:  msg.ChunkStreamID,
			TimestampDelta: delta,
			Type:           msg.Type,
			BodyLen:        bodyLen,
			Body:           msg.Body[:firstLen],
		}
		hasExtendedTimestamp = delta >= 0xFFFFFF
		extendedTimestamp = delta
	} else {
		first = &chunk.Chunk0{
			ChunkStreamID:   msg.ChunkStreamID,
			Timestamp:       timestamp,
			Type:            msg.Type,
			MessageStreamID: msg.MessageStreamID,
			BodyLen:         bodyLen,
			Body:            msg.Body[:firstLen],
		}
		hasExtendedTimestamp = timestamp >= 0xFFFFFF
		extendedTimestamp = timestamp
	}

	buf, err := first.Marshal(false)
	if err != nil {
		return err
	}

	for pos := firstLen; pos < bodyLen; {
		chunkBodyLen := min(bodyLen-pos, wc.mw.chunkSize)

		var buf2 []byte
		buf2, err = chunk.Chunk3{
			ChunkStreamID: msg.ChunkStreamID,
			Timestamp:     extendedTimestamp,
			Body:          msg.Body[pos : pos+chunkBodyLen],
		}.Marshal(hasExtendedTimestamp)
		if err != nil {
			return err
		}

		buf = append(buf, buf2...)
		pos += chunkBodyLen
	}

	_, err = wc.mw.w.Write(buf)
	if err != nil {
		return err
	}

	v := msg.MessageStreamID
	wc.lastMessageStreamID = &v
	wc.lastTimestamp = timestamp

	return nil
}

// Writer is a raw message writer.
//
// The first audio and the first video message are written with a full header.
// Subsequent audio and video messages only carry the timestamp delta.
// Any other message is written with a full header.
type Writer struct {
	w io.Writer

	timeNow      func() time.Time
	start        time.Time
	chunkSize    uint32
	audioSent    bool
	videoSent    bool
	chunkStreams map[uint32]*writerChunkStream
}

// NewWriter allocates a Writer.
func NewWriter(w io.Writer) *Writer {
	return newWriter(w, time.Now)
}

func newWriter(w io.Writer, timeNow func() time.Time) *Writer {
	return &Writer{
		w:            w,
		timeNow:      timeNow,
		start:        timeNow(),
		chunkSize:    defaultChunkSize,
		chunkStreams: make(map[uint32]*writerChunkStream),
	}
}

// SetChunkSize sets the maximum chunk size.
func (w *Writer) SetChunkSize(v uint32) error {
	if v == 0 || v > MaxChunkSize {
		return fmt.Errorf("invalid chunk size (%d)", v)
	}

	w.chunkSize = v
	return nil
}

// ChunkSize returns the maximum chunk size.
func (w *Writer) ChunkSize() uint32 {
	return w.chunkSize
}

// Write writes a Message.
// The timestamp of the message is replaced with the time elapsed since the creation of the Writer.
func (w *Writer) Write(msg *Message) error {
	if msg.Type == typeSetChunkSize {
		if len(msg.Body) != 4 {
			return fmt.Errorf("invalid set chunk size message")
		}

		err := w.SetChunkSize(binary.BigEndian.Uint32(msg.Body) & 0x7FFFFFFF)
		if err != nil {
			return err
		}
	}

	wc, ok := w.chunkStreams[msg.ChunkStreamID]
	if !ok {
		wc = &writerChunkStream{mw: w}
		w.chunkStreams[msg.ChunkStreamID] = wc
	}

	timestamp := uint32(w.timeNow().Sub(w.start).Milliseconds())

	var useDelta bool

	switch msg.Type {
	case typeAudio:
		useDelta = w.audioSent

	case typeVideo:
		useDelta = w.videoSent
	}

	err := wc.writeMessage(msg, timestamp, useDelta)
	if err != nil {
		return err
	}

	switch msg.Type {
	case typeAudio:
		w.audioSent = true

	case typeVideo:
		w.videoSent = true
	}

	return nil
}
