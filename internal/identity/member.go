package identity

import (
	"fmt"

	"github.com/mr-tron/base58/base58"
	"golang.org/x/crypto/blake2b"
)

const memberIDPrefix = "ap1"

// MemberIDFromPublicKey derives the stable identifier grants are keyed by.
func MemberIDFromPublicKey(publicKey []byte) (string, error) {
	if !IsValidPublicKey(publicKey) {
		return "", fmt.Errorf("%w: public key must be %d bytes", ErrInvalidKey, KeySize)
	}
	h := blake2b.Sum256(publicKey)
	return memberIDPrefix + base58.Encode(h[:]), nil
}

// VerifyMemberID reports whether memberID matches the given public key.
func VerifyMemberID(memberID string, publicKey []byte) (bool, error) {
	expected, err := MemberIDFromPublicKey(publicKey)
	if err != nil {
		return false, err
	}
	return memberID == expected, nil
}
