package message

import (
	"io"

	"github.com/livecast/ingest/internal/protocols/rtmp/rawmessage"
)

// Writer is a message writer.
type Writer struct {
	w *rawmessage.Writer
}

// NewWriter allocates a Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w: rawmessage.NewWriter(w),
	}
}

// Write writes a message.
func (w *Writer) Write(msg Message) error {
	raw, err := msg.marshal()
	if err != nil {
		return err
	}

	return w.w.Write(raw)
}
