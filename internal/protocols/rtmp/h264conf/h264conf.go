// Package h264conf contains a H264 configuration parser.
package h264conf

import (
	"fmt"
)

// Conf is a AVCDecoderConfigurationRecord.
// Only the first SPS and the first PPS are kept.
type Conf struct {
	SPS []byte
	PPS []byte
}

func readParams(buf []byte, pos int, countMask byte) ([]byte, int, error) {
	if (len(buf) - pos) < 1 {
		return nil, 0, fmt.Errorf("not enough bytes")
	}

	count := int(buf[pos] & countMask)
	pos++

	if count == 0 {
		return nil, 0, fmt.Errorf("parameter set is missing")
	}

	var first []byte

	for i := 0; i < count; i++ {
		if (len(buf) - pos) < 2 {
			return nil, 0, fmt.Errorf("not enough bytes")
		}

		le := int(uint16(buf[pos])<<8 | uint16(buf[pos+1]))
		pos += 2

		if (len(buf) - pos) < le {
			return nil, 0, fmt.Errorf("not enough bytes")
		}

		if first == nil {
			first = buf[pos : pos+le]
		}
		pos += le
	}

	return first, pos, nil
}

// Unmarshal decodes a Conf from bytes.
func (c *Conf) Unmarshal(buf []byte) error {
	if len(buf) < 6 {
		return fmt.Errorf("not enough bytes")
	}

	if buf[0] != 1 {
		return fmt.Errorf("unsupported configuration version: %d", buf[0])
	}

	var err error
	var pos int
	c.SPS, pos, err = readParams(buf, 5, 0x1F)
	if err != nil {
		return fmt.Errorf("invalid SPS: %w", err)
	}

	c.PPS, _, err = readParams(buf, pos, 0xFF)
	if err != nil {
		return fmt.Errorf("invalid PPS: %w", err)
	}

	return nil
}

// Marshal encodes a Conf into bytes.
func (c Conf) Marshal() ([]byte, error) {
	if len(c.SPS) < 4 {
		return nil, fmt.Errorf("invalid SPS")
	}

	spsLen := len(c.SPS)
	ppsLen := len(c.PPS)

	buf := make([]byte, 11+spsLen+ppsLen)

	buf[0] = 1
	buf[1] = c.SPS[1]
	buf[2] = c.SPS[2]
	buf[3] = c.SPS[3]
	buf[4] = 3 | 0xFC
	buf[5] = 1 | 0xE0
	pos := 6

	buf[pos] = byte(spsLen >> 8)
	buf[pos+1] = byte(spsLen)
	pos += 2

	copy(buf[pos:], c.SPS)
	pos += spsLen

	buf[pos] = 1
	pos++

	buf[pos] = byte(ppsLen >> 8)
	buf[pos+1] = byte(ppsLen)
	pos += 2

	copy(buf[pos:], c.PPS)

	return buf, nil
}
