package models

import "time"

// Member is one gallery participant as reported by the membership store.
// PublicKey is the raw 32-byte X25519 public half; it crosses transport
// boundaries Base64-encoded only.
type Member struct {
	MemberID  string `json:"member_id"`
	PublicKey []byte `json:"public_key"`
}

// KeyGrant carries a gallery key encrypted for exactly one member. Grants
// are superseded, never updated: a rotation replaces the whole grant set for
// a gallery with grants under the new key lineage.
type KeyGrant struct {
	MemberID            string    `json:"member_id"`
	KeyID               string    `json:"key_id"`
	EncryptedGalleryKey string    `json:"encrypted_gallery_key"`
	GrantedBy           string    `json:"granted_by"`
	CreatedAt           time.Time `json:"created_at"`
}

// GalleryKeyInfo describes a key lineage without carrying key material. The
// raw gallery key never appears server-side in plaintext.
type GalleryKeyInfo struct {
	KeyID     string    `json:"key_id"`
	GalleryID string    `json:"gallery_id"`
	CreatedAt time.Time `json:"created_at"`
}
