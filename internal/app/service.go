// Package app orchestrates the key-management core for the daemon: identity
// lifecycle, gallery key caching, and rotation. It performs no network or
// HTTP work; the API layer and the membership service are external
// collaborators reached through the gallery ports.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"aperture-share/go-backend/internal/config"
	"aperture-share/go-backend/internal/crypto"
	"aperture-share/go-backend/internal/gallery"
	"aperture-share/go-backend/internal/identity"
	"aperture-share/go-backend/internal/platform/ratelimiter"
	"aperture-share/go-backend/internal/securestore"
)

var (
	ErrRateLimited   = errors.New("too many phrase attempts")
	ErrNoGalleryKey  = errors.New("no cached key for gallery key id")
	ErrGrantNotFound = errors.New("no grant for this member")
)

type Service struct {
	cfg     config.Config
	keyring *securestore.Keyring
	rotator *gallery.Rotator
	grants  gallery.GrantStore
	members gallery.MembershipStore
	limiter *ratelimiter.MapLimiter
	log     *slog.Logger
	metrics *gallery.Metrics
	now     func() time.Time
}

func NewService(cfg config.Config, keyring *securestore.Keyring, members gallery.MembershipStore, grants gallery.GrantStore, log *slog.Logger, metrics *gallery.Metrics) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		cfg:     cfg,
		keyring: keyring,
		rotator: gallery.NewRotator(members, grants, log, metrics),
		grants:  grants,
		members: members,
		limiter: ratelimiter.New(cfg.Limits.PhraseImportRPS, cfg.Limits.PhraseImportBurst, 30*time.Minute),
		log:     log,
		metrics: metrics,
		now:     time.Now,
	}
}

// CreateIdentity generates a fresh recovery phrase, derives the identity
// keypair from it and stores the keypair in the keyring. The phrase is
// returned once for the user to write down and is not retained.
func (s *Service) CreateIdentity() (phrase string, memberID string, err error) {
	phrase, err = identity.GeneratePhrase()
	if err != nil {
		return "", "", err
	}
	memberID, err = s.adoptPhrase(phrase)
	if err != nil {
		return "", "", err
	}
	return phrase, memberID, nil
}

// ImportPhrase recovers an identity from an existing phrase. Attempts are
// rate-limited per source to slow down phrase guessing.
func (s *Service) ImportPhrase(source, phrase string) (memberID string, err error) {
	if !s.limiter.Allow(source, s.now()) {
		return "", ErrRateLimited
	}
	return s.adoptPhrase(phrase)
}

func (s *Service) adoptPhrase(phrase string) (string, error) {
	pair, err := identity.DeriveFromPhrase(phrase)
	if err != nil {
		return "", err
	}
	memberID, err := identity.MemberIDFromPublicKey(pair.PublicKey)
	if err != nil {
		return "", err
	}
	if err := s.keyring.SetIdentity(pair.PublicKey, pair.PrivateKey); err != nil {
		return "", err
	}
	s.log.Info("identity stored", "member_id", memberID)
	return memberID, nil
}

// QuizChallenge picks the phrase positions the user must re-enter and the
// expected answers, for the configured quiz size.
func (s *Service) QuizChallenge(phrase string) (positions []int, words []string, err error) {
	positions, err = identity.QuizPositions(s.cfg.Quiz.Words)
	if err != nil {
		return nil, nil, err
	}
	words = make([]string, 0, len(positions))
	for _, pos := range positions {
		word, err := identity.WordAt(phrase, pos)
		if err != nil {
			return nil, nil, err
		}
		words = append(words, word)
	}
	return positions, words, nil
}

// CreateGallery issues the first key for a gallery and grants it to the
// current member list. The caller's identity is the sender.
func (s *Service) CreateGallery(ctx context.Context, galleryID string) (keyID string, err error) {
	return s.rotateAndCache(ctx, galleryID)
}

// RotateGallery supersedes the gallery key after a membership change. Old
// keys stay in the keyring cache: they still decrypt pre-rotation content.
func (s *Service) RotateGallery(ctx context.Context, galleryID string) (keyID string, err error) {
	return s.rotateAndCache(ctx, galleryID)
}

func (s *Service) rotateAndCache(ctx context.Context, galleryID string) (string, error) {
	_, priv, err := s.keyring.Identity()
	if err != nil {
		return "", err
	}
	key, err := s.rotator.Rotate(ctx, galleryID, priv)
	if err != nil {
		return "", err
	}
	if err := s.keyring.CacheGalleryKey(key.ID, key.Bytes); err != nil {
		return "", err
	}
	return key.ID, nil
}

// AcceptGrant decrypts this member's grant for a gallery and caches the
// recovered gallery key locally.
func (s *Service) AcceptGrant(galleryID string, senderPublicKey []byte) (keyID string, err error) {
	pub, priv, err := s.keyring.Identity()
	if err != nil {
		return "", err
	}
	memberID, err := identity.MemberIDFromPublicKey(pub)
	if err != nil {
		return "", err
	}
	grant, ok, err := s.grants.GrantFor(galleryID, memberID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrGrantNotFound
	}
	key, err := crypto.DecryptKeyFromSender(grant.EncryptedGalleryKey, senderPublicKey, priv)
	if err != nil {
		if s.metrics != nil {
			s.metrics.DecryptFailures.Inc()
		}
		return "", fmt.Errorf("grant for gallery: %w", err)
	}
	if err := s.keyring.CacheGalleryKey(grant.KeyID, key); err != nil {
		return "", err
	}
	return grant.KeyID, nil
}

// EncryptContent seals content bytes under the gallery's current key.
func (s *Service) EncryptContent(galleryID string, data []byte) (keyID string, payload string, err error) {
	keyID, _, err = s.grants.GrantsFor(galleryID)
	if err != nil {
		return "", "", err
	}
	key, ok := s.keyring.GalleryKey(keyID)
	if !ok {
		return "", "", ErrNoGalleryKey
	}
	payload, err = crypto.Encrypt(data, key)
	if err != nil {
		return "", "", err
	}
	return keyID, payload, nil
}

// DecryptContent opens a payload under the cached key for its lineage.
// Lineages survive rotation, so pre-rotation content stays readable.
func (s *Service) DecryptContent(keyID, payload string) ([]byte, error) {
	key, ok := s.keyring.GalleryKey(keyID)
	if !ok {
		return nil, ErrNoGalleryKey
	}
	data, err := crypto.Decrypt(payload, key)
	if err != nil {
		if s.metrics != nil {
			s.metrics.DecryptFailures.Inc()
		}
		return nil, err
	}
	return data, nil
}

// ReportToAdmin wraps a cached gallery key for the admin, with this member
// (the reporter) as the sender.
func (s *Service) ReportToAdmin(keyID string, adminPublicKey []byte) (string, error) {
	_, priv, err := s.keyring.Identity()
	if err != nil {
		return "", err
	}
	key, ok := s.keyring.GalleryKey(keyID)
	if !ok {
		return "", ErrNoGalleryKey
	}
	return gallery.EncryptKeyForAdmin(gallery.Key{ID: keyID, Bytes: key}, adminPublicKey, priv)
}
