package gallery

import (
	"crypto/rand"

	"github.com/mr-tron/base58/base58"

	"aperture-share/go-backend/internal/identity"
)

const keyIDPrefix = "gk1"

// Key is one gallery-key lineage: a 32-byte symmetric secret plus the ID
// grants and cached copies are filed under. Rotation supersedes a Key with a
// fresh one; it never mutates the secret or re-encrypts existing content.
type Key struct {
	ID    string
	Bytes []byte
}

// NewKey draws a fresh gallery key. The lineage ID is random and carries no
// information about the key material.
func NewKey() (Key, error) {
	secret := make([]byte, identity.KeySize)
	if _, err := rand.Read(secret); err != nil {
		return Key{}, err
	}
	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return Key{}, err
	}
	return Key{
		ID:    keyIDPrefix + base58.Encode(suffix),
		Bytes: secret,
	}, nil
}
