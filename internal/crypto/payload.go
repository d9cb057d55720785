package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"aperture-share/go-backend/internal/identity"
)

// Wire format, version 1: [version:1][nonce:24][XChaCha20-Poly1305
// ciphertext with the 16-byte tag appended], Base64-encoded as a whole.
// The version byte pins the decoding algorithm forever; persisted payloads
// must keep decrypting when later versions appear.
const (
	PayloadVersion1 byte = 0x01

	nonceSize     = chacha20poly1305.NonceSizeX
	tagSize       = chacha20poly1305.Overhead
	minPayloadLen = 1 + nonceSize + tagSize
)

// payloadDecoders dispatches by version byte. New versions register here
// without touching the version-1 decoder.
var payloadDecoders = map[byte]func(raw, key []byte) ([]byte, error){
	PayloadVersion1: decryptV1,
}

// Encrypt seals data under a 32-byte symmetric key. Every call draws a fresh
// random nonce, so identical input never yields the same payload twice.
func Encrypt(data, key []byte) (string, error) {
	if !identity.IsValidSymmetricKey(key) {
		return "", fmt.Errorf("%w: symmetric key must be %d bytes", identity.ErrInvalidKey, identity.KeySize)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	raw := make([]byte, 0, minPayloadLen+len(data))
	raw = append(raw, PayloadVersion1)
	raw = append(raw, nonce...)
	raw = aead.Seal(raw, nonce, data, nil)
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decrypt opens a payload produced by Encrypt. Undecodable input and
// payloads below the minimum frame size fail ErrPayloadTooShort; versions
// above the highest known one fail ErrUnknownVersion; authentication
// failures surface as ErrDecryptionFailed with no partial plaintext.
func Decrypt(payload string, key []byte) ([]byte, error) {
	if !identity.IsValidSymmetricKey(key) {
		return nil, fmt.Errorf("%w: symmetric key must be %d bytes", identity.ErrInvalidKey, identity.KeySize)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64", ErrPayloadTooShort)
	}
	if len(raw) < minPayloadLen {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrPayloadTooShort, len(raw), minPayloadLen)
	}
	decoder, ok := payloadDecoders[raw[0]]
	if !ok {
		return nil, fmt.Errorf("%w: version %d", ErrUnknownVersion, raw[0])
	}
	return decoder(raw, key)
}

func decryptV1(raw, key []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := raw[1 : 1+nonceSize]
	ciphertext := raw[1+nonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// PayloadVersion reads the version byte without committing key material to a
// decryption attempt.
func PayloadVersion(payload string) (byte, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid base64", ErrPayloadTooShort)
	}
	if len(raw) == 0 {
		return 0, fmt.Errorf("%w: empty payload", ErrPayloadTooShort)
	}
	return raw[0], nil
}
