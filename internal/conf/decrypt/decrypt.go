// Package decrypt contains the Decrypt function.
package decrypt

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// Decrypt decrypts a configuration file encrypted with the given key.
// The file is the base64 encoding of nonce followed by a secretbox.
func Decrypt(key string, byts []byte) ([]byte, error) {
	enc, err := base64.StdEncoding.DecodeString(string(byts))
	if err != nil {
		return nil, err
	}

	if len(enc) < nonceSize {
		return nil, fmt.Errorf("encrypted configuration is too short")
	}

	var secretKey [32]byte
	copy(secretKey[:], key)

	var decryptNonce [nonceSize]byte
	copy(decryptNonce[:], enc[:nonceSize])

	decrypted, ok := secretbox.Open(nil, enc[nonceSize:], &decryptNonce, &secretKey)
	if !ok {
		return nil, fmt.Errorf("decryption error")
	}

	return decrypted, nil
}
