package gallery

import (
	"fmt"
	"time"

	"aperture-share/go-backend/internal/crypto"
	"aperture-share/go-backend/internal/identity"
	"aperture-share/go-backend/pkg/models"
)

// EncryptKeyForMembers wraps a gallery key for every recipient, one grant
// per member. The batch is all-or-nothing: a failure for any single member
// fails the whole call, so a partial grant set can never reach the store.
func EncryptKeyForMembers(key Key, members []models.Member, senderPrivateKey []byte) ([]models.KeyGrant, error) {
	senderPub, err := identity.PublicFromPrivate(senderPrivateKey)
	if err != nil {
		return nil, err
	}
	grantedBy, err := identity.MemberIDFromPublicKey(senderPub)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	grants := make([]models.KeyGrant, 0, len(members))
	for _, member := range members {
		encrypted, err := crypto.EncryptKeyForRecipient(key.Bytes, member.PublicKey, senderPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("grant for member %s: %w", member.MemberID, err)
		}
		grants = append(grants, models.KeyGrant{
			MemberID:            member.MemberID,
			KeyID:               key.ID,
			EncryptedGalleryKey: encrypted,
			GrantedBy:           grantedBy,
			CreatedAt:           now,
		})
	}
	return grants, nil
}

// EncryptKeyForAdmin wraps a gallery key for an out-of-band grant, e.g. a
// content report. The reporter, not the gallery owner, is the sender; the
// algorithm is the same, only the supplied private key differs.
func EncryptKeyForAdmin(key Key, adminPublicKey, reporterPrivateKey []byte) (string, error) {
	return crypto.EncryptKeyForRecipient(key.Bytes, adminPublicKey, reporterPrivateKey)
}
