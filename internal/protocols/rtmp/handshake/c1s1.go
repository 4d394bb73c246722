package handshake

import (
	"crypto/rand"
	"encoding/binary"
	"io"
)

const (
	c1s1Size   = 1536
	randomSize = c1s1Size - 8
)

// C1S1 is a C1 or S1 packet.
type C1S1 struct {
	Time   uint32
	Random []byte
}

// Read reads a C1S1.
func (c *C1S1) Read(r io.Reader) error {
	buf := make([]byte, c1s1Size)
	_, err := io.ReadFull(r, buf)
	if err != nil {
		return err
	}

	// bytes 4-8 are zero in the simple handshake and carry a version
	// in the digest one. They are ignored in both cases.
	c.Time = binary.BigEndian.Uint32(buf)
	c.Random = buf[8:]

	return nil
}

func (c *C1S1) fill() error {
	c.Random = make([]byte, randomSize)
	_, err := rand.Read(c.Random)
	return err
}

// Write writes a C1S1.
func (c C1S1) Write(w io.Writer) error {
	buf := make([]byte, c1s1Size)
	binary.BigEndian.PutUint32(buf, c.Time)
	copy(buf[8:], c.Random)

	_, err := w.Write(buf)
	return err
}
