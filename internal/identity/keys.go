package identity

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// KeySize is the raw byte length of every key this core handles: X25519
// public and private halves and gallery symmetric keys.
const KeySize = 32

var ErrInvalidKey = errors.New("invalid key")

func IsValidPublicKey(key []byte) bool { return len(key) == KeySize }

func IsValidPrivateKey(key []byte) bool { return len(key) == KeySize }

func IsValidSymmetricKey(key []byte) bool { return len(key) == KeySize }

// EncodeKey renders a raw key for transport or storage. Keys cross process
// boundaries Base64-encoded.
func EncodeKey(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

// DecodeKey parses a Base64 transport key and enforces the fixed length.
func DecodeKey(encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: not base64", ErrInvalidKey)
	}
	if len(raw) != KeySize {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidKey, len(raw), KeySize)
	}
	return raw, nil
}
