package conf

import (
	"encoding/json"
	"fmt"
)

// TranscodeMethod is the transcodeMethod parameter.
type TranscodeMethod int

// transcode methods.
const (
	TranscodeMethodHTTP TranscodeMethod = iota
	TranscodeMethodCommand
)

// MarshalJSON implements json.Marshaler.
func (d TranscodeMethod) MarshalJSON() ([]byte, error) {
	if d == TranscodeMethodCommand {
		return json.Marshal("command")
	}
	return json.Marshal("http")
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *TranscodeMethod) UnmarshalJSON(b []byte) error {
	var in string
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}

	switch in {
	case "http":
		*d = TranscodeMethodHTTP

	case "command":
		*d = TranscodeMethodCommand

	default:
		return fmt.Errorf("invalid transcodeMethod: '%s'", in)
	}

	return nil
}

// UnmarshalEnv implements env.Unmarshaler.
func (d *TranscodeMethod) UnmarshalEnv(_ string, v string) error {
	return d.UnmarshalJSON([]byte(`"` + v + `"`))
}
