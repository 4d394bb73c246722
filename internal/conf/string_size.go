package conf

import (
	"encoding/json"
	"fmt"

	"code.cloudfoundry.org/bytefmt"
)

// StringSize is a size that is unmarshaled from a string
// with an optional unit (e.g. 10MB), or from a number of bytes.
type StringSize uint64

// MarshalJSON implements json.Marshaler.
func (s StringSize) MarshalJSON() ([]byte, error) {
	return json.Marshal(bytefmt.ByteSize(uint64(s)))
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringSize) UnmarshalJSON(b []byte) error {
	var in any
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}

	switch in := in.(type) {
	case float64:
		if in < 0 || in != float64(uint64(in)) {
			return fmt.Errorf("invalid size: %v", in)
		}
		*s = StringSize(in)

	case string:
		v, err := bytefmt.ToBytes(in)
		if err != nil {
			return err
		}
		*s = StringSize(v)

	default:
		return fmt.Errorf("invalid size: %s", string(b))
	}

	return nil
}

// UnmarshalEnv implements env.Unmarshaler.
func (s *StringSize) UnmarshalEnv(_ string, v string) error {
	return s.UnmarshalJSON([]byte(`"` + v + `"`))
}
