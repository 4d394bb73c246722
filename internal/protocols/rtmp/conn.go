// Package rtmp contains the RTMP ingest protocol.
package rtmp

import (
	"io"

	"github.com/livecast/ingest/internal/protocols/rtmp/bytecounter"
	"github.com/livecast/ingest/internal/protocols/rtmp/handshake"
	"github.com/livecast/ingest/internal/protocols/rtmp/message"
)

// Conn is a server-side RTMP connection.
// Read must be called by a single goroutine.
// Write can be called in parallel with Read.
type Conn struct {
	RW             io.ReadWriter
	MaxMessageSize uint32

	bc  *bytecounter.ReadWriter
	mrw *message.ReadWriter
}

// Initialize performs the handshake.
func (c *Conn) Initialize() error {
	c.bc = bytecounter.NewReadWriter(c.RW)

	err := handshake.DoServer(c.bc)
	if err != nil {
		return err
	}

	c.mrw = message.NewReadWriter(c.bc, c.bc)

	if c.MaxMessageSize != 0 {
		c.mrw.SetMaxMessageSize(c.MaxMessageSize)
	}

	return nil
}

// Read reads a message.
func (c *Conn) Read() (message.Message, error) {
	return c.mrw.Read()
}

// Write writes a message.
func (c *Conn) Write(msg message.Message) error {
	return c.mrw.Write(msg)
}

// BytesReceived returns the number of bytes received.
func (c *Conn) BytesReceived() uint64 {
	return c.bc.Reader.Count()
}

// BytesSent returns the number of bytes sent.
func (c *Conn) BytesSent() uint64 {
	return c.bc.Writer.Count()
}
