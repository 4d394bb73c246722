package conf

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/matthewhartstonge/argon2"
)

var (
	rePlainCredential = regexp.MustCompile(`^[a-zA-Z0-9!\$\(\)\*\+\.;<=>\[\]\^_\-\{\}@#&]+$`)
	reBase64          = regexp.MustCompile(`^sha256:[a-zA-Z0-9\+/=]+$`)
)

const plainCredentialSupportedChars = "A-Z,0-9,!,$,(,),*,+,.,;,<,=,>,[,],^,_,-,\",\",@,#,&"

// Credential is a stream key, in plain form or hashed with sha256 or argon2.
type Credential string

// MarshalJSON implements json.Marshaler.
func (d Credential) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(d))
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Credential) UnmarshalJSON(b []byte) error {
	var in string
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}

	*d = Credential(in)

	return d.validate()
}

// UnmarshalEnv implements env.Unmarshaler.
func (d *Credential) UnmarshalEnv(_ string, v string) error {
	return d.UnmarshalJSON([]byte(`"` + v + `"`))
}

// IsSha256 returns true if the credential is a sha256 hash.
func (d Credential) IsSha256() bool {
	return strings.HasPrefix(string(d), "sha256:")
}

// IsArgon2 returns true if the credential is an argon2 hash.
func (d Credential) IsArgon2() bool {
	return strings.HasPrefix(string(d), "argon2:")
}

// IsHashed returns true if the credential is a sha256 or argon2 hash.
func (d Credential) IsHashed() bool {
	return d.IsSha256() || d.IsArgon2()
}

func sha256Base64(in string) string {
	h := sha256.New()
	h.Write([]byte(in))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// Check returns true if the given value matches the credential.
// An empty credential never matches.
func (d Credential) Check(guess string) bool {
	switch {
	case d == "":
		return false

	case d.IsSha256():
		return string(d)[len("sha256:"):] == sha256Base64(guess)

	case d.IsArgon2():
		ok, err := argon2.VerifyEncoded([]byte(guess), []byte(string(d)[len("argon2:"):]))
		return ok && err == nil
	}

	return string(d) == guess
}

func (d Credential) validate() error {
	switch {
	case d == "":
		return nil

	case d.IsSha256():
		if !reBase64.MatchString(string(d)) {
			return fmt.Errorf("credential contains unsupported characters, sha256 hash must be base64 encoded")
		}

	case d.IsArgon2():
		_, err := argon2.Decode([]byte(string(d)[len("argon2:"):]))
		if err != nil {
			return fmt.Errorf("invalid argon2 hash: %w", err)
		}

	default:
		if !rePlainCredential.MatchString(string(d)) {
			return fmt.Errorf("credential contains unsupported characters. Supported are: %s",
				plainCredentialSupportedChars)
		}
	}

	return nil
}
