package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"aperture-share/go-backend/pkg/models"
)

var ErrNoMembers = errors.New("gallery has no members")

// MembershipStore is the collaborating service that owns the authorization
// decision of who belongs to a gallery. This core only consumes the current
// member list.
type MembershipStore interface {
	Members(ctx context.Context, galleryID string) ([]models.Member, error)
}

// GrantStore persists Member Key Grants. ReplaceGrants must swap the whole
// set for a gallery atomically: a reader may never observe grants from two
// key lineages mixed.
type GrantStore interface {
	ReplaceGrants(galleryID, keyID string, grants []models.KeyGrant) error
	GrantsFor(galleryID string) (keyID string, grants []models.KeyGrant, err error)
	GrantFor(galleryID, memberID string) (models.KeyGrant, bool, error)
}

// Rotator issues new gallery keys and regrants them to the current member
// list. One rotation runs at a time per gallery; content encrypted under a
// previous key is never touched, so a removed member who cached that key
// keeps access to the old content. Rotation protects future content only.
type Rotator struct {
	members MembershipStore
	grants  GrantStore
	log     *slog.Logger
	metrics *Metrics

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRotator(members MembershipStore, grants GrantStore, log *slog.Logger, metrics *Metrics) *Rotator {
	if log == nil {
		log = slog.Default()
	}
	return &Rotator{
		members: members,
		grants:  grants,
		log:     log,
		metrics: metrics,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Rotate generates a new key for the gallery, encrypts it for every current
// member with the sender's private key, and atomically replaces the
// gallery's grant set. The new key is returned to the caller for local
// caching and is never handed to the store in plaintext.
func (r *Rotator) Rotate(ctx context.Context, galleryID string, senderPrivateKey []byte) (Key, error) {
	lock := r.galleryLock(galleryID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return Key{}, err
	}
	members, err := r.members.Members(ctx, galleryID)
	if err != nil {
		return Key{}, fmt.Errorf("load members: %w", err)
	}
	if len(members) == 0 {
		return Key{}, ErrNoMembers
	}

	key, err := NewKey()
	if err != nil {
		return Key{}, err
	}
	grants, err := EncryptKeyForMembers(key, members, senderPrivateKey)
	if err != nil {
		return Key{}, err
	}
	if err := r.grants.ReplaceGrants(galleryID, key.ID, grants); err != nil {
		return Key{}, fmt.Errorf("replace grants: %w", err)
	}

	if r.metrics != nil {
		r.metrics.RotationsTotal.Inc()
		r.metrics.GrantsIssued.Add(float64(len(grants)))
	}
	r.log.Info("gallery key rotated",
		"gallery_id", galleryID,
		"key_id", key.ID,
		"grant_count", len(grants),
	)
	return key, nil
}

func (r *Rotator) galleryLock(galleryID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[galleryID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[galleryID] = lock
	}
	return lock
}
