package handshake

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	c2s2Size = c1s1Size
)

// C2S2 is a C2 or S2 packet.
// It echoes the C1S1 sent by the other side.
type C2S2 struct {
	Time   uint32
	Time2  uint32
	Random []byte
}

// Read reads a C2S2.
func (c *C2S2) Read(r io.Reader) error {
	buf := make([]byte, c2s2Size)
	_, err := io.ReadFull(r, buf)
	if err != nil {
		return err
	}

	c.Time = binary.BigEndian.Uint32(buf)
	c.Time2 = binary.BigEndian.Uint32(buf[4:])
	c.Random = buf[8:]

	return nil
}

func (c C2S2) validate(c1s1 *C1S1) error {
	if !bytes.Equal(c.Random, c1s1.Random) {
		return fmt.Errorf("C2/S2 does not match C1/S1")
	}
	return nil
}

// Write writes a C2S2.
func (c C2S2) Write(w io.Writer) error {
	buf := make([]byte, c2s2Size)
	binary.BigEndian.PutUint32(buf, c.Time)
	binary.BigEndian.PutUint32(buf[4:], c.Time2)
	copy(buf[8:], c.Random)

	_, err := w.Write(buf)
	return err
}
