package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"aperture-share/go-backend/internal/securestore"
	"aperture-share/go-backend/pkg/models"
)

var ErrGrantKeyMismatch = errors.New("grant key id does not match grant set")

// GrantStore keeps the current Member Key Grant set per gallery: exactly one
// grant per current member, all under one key lineage. Mutations build a new
// snapshot, persist it, then swap it in under the lock, so readers never see
// a half-replaced set.
type GrantStore struct {
	mu        sync.RWMutex
	byGallery map[string]grantSet
	path      string
	secret    string
}

type grantSet struct {
	KeyID  string                     `json:"key_id"`
	Grants map[string]models.KeyGrant `json:"grants"`
}

func NewGrantStore() *GrantStore {
	return &GrantStore{byGallery: make(map[string]grantSet)}
}

// NewEncryptedPersistentGrantStore loads a store backed by an encrypted
// snapshot file. An empty passphrase keeps the file plaintext.
func NewEncryptedPersistentGrantStore(path, passphrase string) (*GrantStore, error) {
	s := &GrantStore{
		byGallery: make(map[string]grantSet),
		path:      path,
		secret:    passphrase,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// ReplaceGrants atomically supersedes a gallery's grant set. Every grant
// must carry the new key ID; mixing lineages within one set is rejected.
func (s *GrantStore) ReplaceGrants(galleryID, keyID string, grants []models.KeyGrant) error {
	set := grantSet{KeyID: keyID, Grants: make(map[string]models.KeyGrant, len(grants))}
	for _, grant := range grants {
		if grant.KeyID != keyID {
			return ErrGrantKeyMismatch
		}
		set.Grants[grant.MemberID] = grant
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cloneMapLocked()
	next[galleryID] = set
	if err := s.persistSnapshotLocked(next); err != nil {
		return err
	}
	s.byGallery = next
	return nil
}

// GrantsFor returns the current key lineage and grants for a gallery,
// ordered by member ID.
func (s *GrantStore) GrantsFor(galleryID string) (string, []models.KeyGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.byGallery[galleryID]
	if !ok {
		return "", nil, nil
	}
	out := make([]models.KeyGrant, 0, len(set.Grants))
	for _, grant := range set.Grants {
		out = append(out, grant)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemberID < out[j].MemberID })
	return set.KeyID, out, nil
}

// GrantFor returns one member's grant under the current key, if any. A
// member absent here has no standing access to new content, regardless of
// grant history.
func (s *GrantStore) GrantFor(galleryID, memberID string) (models.KeyGrant, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.byGallery[galleryID]
	if !ok {
		return models.KeyGrant{}, false, nil
	}
	grant, ok := set.Grants[memberID]
	return grant, ok, nil
}

func (s *GrantStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}
	decoded := data
	if s.secret != "" {
		decoded, err = securestore.Decrypt(s.secret, data)
		if err != nil {
			return err
		}
	}
	var snapshot map[string]grantSet
	if err := json.Unmarshal(decoded, &snapshot); err != nil {
		return err
	}
	if snapshot != nil {
		s.byGallery = snapshot
	}
	return nil
}

func (s *GrantStore) persistSnapshotLocked(byGallery map[string]grantSet) error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(byGallery)
	if err != nil {
		return err
	}
	if s.secret != "" {
		data, err = securestore.Encrypt(s.secret, data)
		if err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *GrantStore) cloneMapLocked() map[string]grantSet {
	out := make(map[string]grantSet, len(s.byGallery))
	for id, set := range s.byGallery {
		out[id] = set
	}
	return out
}
