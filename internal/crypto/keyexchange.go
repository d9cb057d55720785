package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"aperture-share/go-backend/internal/identity"
)

// hkdfInfoGrant domain-separates grant wrap keys from identity derivation.
// Nothing binds a payload to its purpose beyond the sender keypair: a member
// grant and an admin report grant share this wire format. Binding purpose
// into associated data would be a version-2 wire change.
const hkdfInfoGrant = "aperture/grant/v1"

// EncryptKeyForRecipient wraps a 32-byte symmetric key so that only the
// holder of the recipient private key, verifying against the sender public
// key, can recover it. The static DH pairing gives the payload sender
// authentication as well as confidentiality.
func EncryptKeyForRecipient(symmetricKey, recipientPublicKey, senderPrivateKey []byte) (string, error) {
	if !identity.IsValidSymmetricKey(symmetricKey) {
		return "", fmt.Errorf("%w: symmetric key must be %d bytes", identity.ErrInvalidKey, identity.KeySize)
	}
	if !identity.IsValidPublicKey(recipientPublicKey) {
		return "", fmt.Errorf("%w: recipient public key must be %d bytes", identity.ErrInvalidKey, identity.KeySize)
	}
	if !identity.IsValidPrivateKey(senderPrivateKey) {
		return "", fmt.Errorf("%w: sender private key must be %d bytes", identity.ErrInvalidKey, identity.KeySize)
	}
	wrapKey, err := deriveWrapKey(senderPrivateKey, recipientPublicKey)
	if err != nil {
		return "", fmt.Errorf("%w: recipient public key rejected", identity.ErrInvalidKey)
	}
	return Encrypt(symmetricKey, wrapKey)
}

// DecryptKeyFromSender unwraps a key-exchange payload. A wrong sender key, a
// wrong recipient key and tampering all fail identically; a payload that
// authenticates but does not hold exactly 32 bytes fails ErrCorruptKey.
func DecryptKeyFromSender(payload string, senderPublicKey, recipientPrivateKey []byte) ([]byte, error) {
	if !identity.IsValidPublicKey(senderPublicKey) {
		return nil, fmt.Errorf("%w: sender public key must be %d bytes", identity.ErrInvalidKey, identity.KeySize)
	}
	if !identity.IsValidPrivateKey(recipientPrivateKey) {
		return nil, fmt.Errorf("%w: recipient private key must be %d bytes", identity.ErrInvalidKey, identity.KeySize)
	}
	wrapKey, err := deriveWrapKey(recipientPrivateKey, senderPublicKey)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	recovered, err := Decrypt(payload, wrapKey)
	if err != nil {
		return nil, err
	}
	if !identity.IsValidSymmetricKey(recovered) {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorruptKey, len(recovered))
	}
	return recovered, nil
}

func deriveWrapKey(privateKey, publicKey []byte) ([]byte, error) {
	shared, err := curve25519.X25519(privateKey, publicKey)
	if err != nil {
		return nil, err
	}
	return kdf32(shared, []byte(hkdfInfoGrant))
}

func kdf32(secret, info []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, secret, nil, info)
	out := make([]byte, identity.KeySize)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, err
	}
	return out, nil
}
