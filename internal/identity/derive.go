package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

// hkdfInfoIdentity pins the phrase-to-key mapping. Changing it, the hash, or
// the seed handling breaks recovery for every existing account; a successor
// scheme needs a new info string and a migration.
const hkdfInfoIdentity = "aperture/identity/x25519/v1"

// DeriveFromPhrase turns a recovery phrase into the deterministic X25519
// identity keypair: normalize, recover entropy, expand to a 32-byte seed,
// derive the keypair. Identical normalized phrases always yield identical
// keys, across platforms and library versions.
func DeriveFromPhrase(phrase string) (KeyPair, error) {
	entropy, err := PhraseEntropy(phrase)
	if err != nil {
		return KeyPair{}, err
	}
	seed, err := hkdfExpand(entropy, hkdfInfoIdentity, KeySize)
	if err != nil {
		return KeyPair{}, err
	}
	return keyPairFromSeed(seed)
}

// GenerateRandom creates an identity with no phrase backing it, for
// ephemeral or test use.
func GenerateRandom() (KeyPair, error) {
	seed := make([]byte, KeySize)
	if _, err := rand.Read(seed); err != nil {
		return KeyPair{}, err
	}
	return keyPairFromSeed(seed)
}

// PublicFromPrivate recomputes the public half for a 32-byte private key,
// reproducing exactly what DeriveFromPhrase or GenerateRandom would have
// produced for it.
func PublicFromPrivate(privateKey []byte) ([]byte, error) {
	if !IsValidPrivateKey(privateKey) {
		return nil, fmt.Errorf("%w: private key must be %d bytes", ErrInvalidKey, KeySize)
	}
	pub, err := curve25519.X25519(privateKey, curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return pub, nil
}

func keyPairFromSeed(seed []byte) (KeyPair, error) {
	pub, err := curve25519.X25519(seed, curve25519.Basepoint)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{
		PublicKey:  pub,
		PrivateKey: append([]byte(nil), seed...),
	}, nil
}

func hkdfExpand(secret []byte, info string, outLen int) ([]byte, error) {
	reader := hkdf.New(sha256.New, secret, nil, []byte(info))
	out := make([]byte, outLen)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, err
	}
	return out, nil
}
