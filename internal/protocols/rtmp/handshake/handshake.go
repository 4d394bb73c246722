// Package handshake contains the RTMP handshake mechanism.
//
// Only the simple handshake is implemented. Peers that attempt the
// digest handshake fall back to it, since S1 doesn't carry any digest.
package handshake

import (
	"io"
)

// DoClient performs a client-side handshake.
func DoClient(rw io.ReadWriter) error {
	err := C0S0{}.Write(rw)
	if err != nil {
		return err
	}

	c1 := C1S1{}
	err = c1.fill()
	if err != nil {
		return err
	}

	err = c1.Write(rw)
	if err != nil {
		return err
	}

	err = C0S0{}.Read(rw)
	if err != nil {
		return err
	}

	s1 := C1S1{}
	err = s1.Read(rw)
	if err != nil {
		return err
	}

	s2 := C2S2{}
	err = s2.Read(rw)
	if err != nil {
		return err
	}

	err = s2.validate(&c1)
	if err != nil {
		return err
	}

	return C2S2{
		Time:   s1.Time,
		Random: s1.Random,
	}.Write(rw)
}

// DoServer performs a server-side handshake.
func DoServer(rw io.ReadWriter) error {
	err := C0S0{}.Read(rw)
	if err != nil {
		return err
	}

	c1 := C1S1{}
	err = c1.Read(rw)
	if err != nil {
		return err
	}

	err = C0S0{}.Write(rw)
	if err != nil {
		return err
	}

	s1 := C1S1{}
	err = s1.fill()
	if err != nil {
		return err
	}

	err = s1.Write(rw)
	if err != nil {
		return err
	}

	err = C2S2{
		Time:   c1.Time,
		Random: c1.Random,
	}.Write(rw)
	if err != nil {
		return err
	}

	c2 := C2S2{}
	err = c2.Read(rw)
	if err != nil {
		return err
	}

	return c2.validate(&s1)
}
