package message

import (
	"io"
	"sync"

	"github.com/livecast/ingest/internal/protocols/rtmp/bytecounter"
)

// ReadWriter is a message reader/writer.
// Write can be called in parallel with Read,
// that sends acknowledgements when needed.
type ReadWriter struct {
	r *Reader
	w *Writer

	mutex sync.Mutex
}

// NewReadWriter allocates a ReadWriter.
func NewReadWriter(
	rw io.ReadWriter,
	bcrw *bytecounter.ReadWriter,
) *ReadWriter {
	mrw := &ReadWriter{
		w: NewWriter(rw),
	}

	mrw.r = NewReader(rw, bcrw.Reader, func(count uint32) error {
		return mrw.Write(&Acknowledge{
			Value: count,
		})
	})

	return mrw
}

// SetMaxMessageSize sets the maximum size of incoming message bodies.
func (rw *ReadWriter) SetMaxMessageSize(v uint32) {
	rw.r.SetMaxMessageSize(v)
}

// Read reads a message.
func (rw *ReadWriter) Read() (Message, error) {
	return rw.r.Read()
}

// Write writes a message.
func (rw *ReadWriter) Write(msg Message) error {
	rw.mutex.Lock()
	defer rw.mutex.Unlock()

	return rw.w.Write(msg)
}
