package gallery

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"aperture-share/go-backend/internal/crypto"
	"aperture-share/go-backend/internal/identity"
	"aperture-share/go-backend/internal/storage"
	"aperture-share/go-backend/pkg/models"
)

type staticMembership struct {
	mu      sync.Mutex
	members map[string][]models.Member
}

func (s *staticMembership) Members(_ context.Context, galleryID string) ([]models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Member(nil), s.members[galleryID]...), nil
}

func (s *staticMembership) set(galleryID string, members []models.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[galleryID] = members
}

func TestRotateReplacesGrantSetForCurrentMembers(t *testing.T) {
	owner, _ := identity.GenerateRandom()
	a, _ := identity.GenerateRandom()
	b, _ := identity.GenerateRandom()
	c, _ := identity.GenerateRandom()

	membership := &staticMembership{members: map[string][]models.Member{
		"g1": {memberFor(t, a), memberFor(t, b), memberFor(t, c)},
	}}
	grants := storage.NewGrantStore()
	rotator := NewRotator(membership, grants, nil, nil)

	oldKey, err := rotator.Rotate(context.Background(), "g1", owner.PrivateKey)
	if err != nil {
		t.Fatalf("initial rotation failed: %v", err)
	}

	// C leaves; the next rotation must grant only to A and B.
	membership.set("g1", []models.Member{memberFor(t, a), memberFor(t, b)})
	newKey, err := rotator.Rotate(context.Background(), "g1", owner.PrivateKey)
	if err != nil {
		t.Fatalf("second rotation failed: %v", err)
	}
	if newKey.ID == oldKey.ID || bytes.Equal(newKey.Bytes, oldKey.Bytes) {
		t.Fatal("rotation must produce a fresh key lineage")
	}

	keyID, current, err := grants.GrantsFor("g1")
	if err != nil {
		t.Fatalf("grants lookup failed: %v", err)
	}
	if keyID != newKey.ID {
		t.Fatalf("grant set must be under the new key: %s != %s", keyID, newKey.ID)
	}
	if len(current) != 2 {
		t.Fatalf("expected 2 grants after removal, got %d", len(current))
	}
	cID := memberFor(t, c).MemberID
	if _, ok, _ := grants.GrantFor("g1", cID); ok {
		t.Fatal("removed member must have no grant under the current key")
	}
}

// The explicit design limitation: rotation protects future content only. A
// removed member who cached the old key keeps access to old content.
func TestRotationDoesNotRevokeOldContent(t *testing.T) {
	owner, _ := identity.GenerateRandom()
	a, _ := identity.GenerateRandom()
	c, _ := identity.GenerateRandom()

	membership := &staticMembership{members: map[string][]models.Member{
		"g1": {memberFor(t, a), memberFor(t, c)},
	}}
	grants := storage.NewGrantStore()
	rotator := NewRotator(membership, grants, nil, nil)

	oldKey, err := rotator.Rotate(context.Background(), "g1", owner.PrivateKey)
	if err != nil {
		t.Fatalf("initial rotation failed: %v", err)
	}

	// C decrypts and caches the old key while still a member.
	cID := memberFor(t, c).MemberID
	grant, ok, err := grants.GrantFor("g1", cID)
	if err != nil || !ok {
		t.Fatalf("expected a grant for C: ok=%v err=%v", ok, err)
	}
	cachedByC, err := crypto.DecryptKeyFromSender(grant.EncryptedGalleryKey, owner.PublicKey, c.PrivateKey)
	if err != nil {
		t.Fatalf("C cannot recover old key: %v", err)
	}

	oldPayload, err := crypto.Encrypt([]byte("pre-rotation photo"), oldKey.Bytes)
	if err != nil {
		t.Fatalf("encrypt old content failed: %v", err)
	}

	membership.set("g1", []models.Member{memberFor(t, a)})
	newKey, err := rotator.Rotate(context.Background(), "g1", owner.PrivateKey)
	if err != nil {
		t.Fatalf("rotation after removal failed: %v", err)
	}
	newPayload, err := crypto.Encrypt([]byte("post-rotation photo"), newKey.Bytes)
	if err != nil {
		t.Fatalf("encrypt new content failed: %v", err)
	}

	// A holds the new key and reads new content.
	aGrant, ok, _ := grants.GrantFor("g1", memberFor(t, a).MemberID)
	if !ok {
		t.Fatal("expected a grant for A under the new key")
	}
	aKey, err := crypto.DecryptKeyFromSender(aGrant.EncryptedGalleryKey, owner.PublicKey, a.PrivateKey)
	if err != nil {
		t.Fatalf("A cannot recover new key: %v", err)
	}
	if _, err := crypto.Decrypt(newPayload, aKey); err != nil {
		t.Fatalf("A must decrypt new content: %v", err)
	}

	// C cannot read new content with the cached old key...
	if _, err := crypto.Decrypt(newPayload, cachedByC); !errors.Is(err, crypto.ErrDecryptionFailed) {
		t.Fatalf("C must not decrypt new content, got %v", err)
	}
	// ...but still reads content encrypted before removal.
	got, err := crypto.Decrypt(oldPayload, cachedByC)
	if err != nil {
		t.Fatalf("C must still decrypt old content: %v", err)
	}
	if string(got) != "pre-rotation photo" {
		t.Fatal("old content mismatch")
	}
}

func TestRotateEmptyMembership(t *testing.T) {
	owner, _ := identity.GenerateRandom()
	membership := &staticMembership{members: map[string][]models.Member{}}
	rotator := NewRotator(membership, storage.NewGrantStore(), nil, nil)
	if _, err := rotator.Rotate(context.Background(), "empty", owner.PrivateKey); !errors.Is(err, ErrNoMembers) {
		t.Fatalf("expected ErrNoMembers, got %v", err)
	}
}

func TestRotateHonorsContextCancellation(t *testing.T) {
	owner, _ := identity.GenerateRandom()
	a, _ := identity.GenerateRandom()
	membership := &staticMembership{members: map[string][]models.Member{
		"g1": {memberFor(t, a)},
	}}
	rotator := NewRotator(membership, storage.NewGrantStore(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := rotator.Rotate(ctx, "g1", owner.PrivateKey); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
