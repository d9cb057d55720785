package crypto

import "errors"

var (
	ErrPayloadTooShort = errors.New("payload too short")
	ErrUnknownVersion  = errors.New("unknown payload version")
	// ErrDecryptionFailed covers wrong keys and tampered ciphertext alike;
	// distinguishing them would hand an oracle to an attacker.
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrCorruptKey       = errors.New("decrypted key has wrong length")
)
