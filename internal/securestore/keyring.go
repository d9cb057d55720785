package securestore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// Keyring is the secure local storage collaborator: it holds the identity
// keypair and the decrypted gallery-key cache between sessions, encrypted at
// rest under the user's passphrase. The crypto core itself stays
// storage-agnostic and only operates on keys handed to it.
type Keyring struct {
	mu         sync.RWMutex
	path       string
	passphrase string
	state      keyringState
}

type keyringState struct {
	PublicKey   []byte            `json:"public_key"`
	PrivateKey  []byte            `json:"private_key"`
	GalleryKeys map[string][]byte `json:"gallery_keys"`
}

var ErrNoIdentity = errors.New("keyring holds no identity")

// OpenKeyring loads (or initializes) the keyring file at path. A missing
// file yields an empty keyring.
func OpenKeyring(path, passphrase string) (*Keyring, error) {
	k := &Keyring{
		path:       path,
		passphrase: passphrase,
		state:      keyringState{GalleryKeys: map[string][]byte{}},
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return k, nil
		}
		return nil, err
	}
	decoded, err := Decrypt(passphrase, raw)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(decoded, &k.state); err != nil {
		return nil, ErrInvalid
	}
	if k.state.GalleryKeys == nil {
		k.state.GalleryKeys = map[string][]byte{}
	}
	return k, nil
}

// SetIdentity stores the identity keypair and persists.
func (k *Keyring) SetIdentity(publicKey, privateKey []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	next := k.cloneStateLocked()
	next.PublicKey = append([]byte(nil), publicKey...)
	next.PrivateKey = append([]byte(nil), privateKey...)
	if err := k.persistLocked(next); err != nil {
		return err
	}
	k.state = next
	return nil
}

// Identity returns copies of the stored keypair.
func (k *Keyring) Identity() (publicKey, privateKey []byte, err error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if len(k.state.PrivateKey) == 0 {
		return nil, nil, ErrNoIdentity
	}
	return append([]byte(nil), k.state.PublicKey...), append([]byte(nil), k.state.PrivateKey...), nil
}

// CacheGalleryKey stores a decrypted gallery key under its lineage ID. Old
// lineages are kept: content encrypted before a rotation stays readable.
func (k *Keyring) CacheGalleryKey(keyID string, key []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	next := k.cloneStateLocked()
	next.GalleryKeys[keyID] = append([]byte(nil), key...)
	if err := k.persistLocked(next); err != nil {
		return err
	}
	k.state = next
	return nil
}

// GalleryKey returns the cached key for a lineage ID, if present.
func (k *Keyring) GalleryKey(keyID string) ([]byte, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	key, ok := k.state.GalleryKeys[keyID]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), key...), true
}

// Wipe zeroes the in-memory state and removes the keyring file.
func (k *Keyring) Wipe() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	zeroBytes(k.state.PrivateKey)
	for _, key := range k.state.GalleryKeys {
		zeroBytes(key)
	}
	k.state = keyringState{GalleryKeys: map[string][]byte{}}
	if k.path == "" {
		return nil
	}
	if err := os.Remove(k.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (k *Keyring) cloneStateLocked() keyringState {
	next := keyringState{
		PublicKey:   append([]byte(nil), k.state.PublicKey...),
		PrivateKey:  append([]byte(nil), k.state.PrivateKey...),
		GalleryKeys: make(map[string][]byte, len(k.state.GalleryKeys)),
	}
	for id, key := range k.state.GalleryKeys {
		next.GalleryKeys[id] = append([]byte(nil), key...)
	}
	return next
}

func (k *Keyring) persistLocked(state keyringState) error {
	if k.path == "" {
		return nil
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	encrypted, err := Encrypt(k.passphrase, payload)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(k.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(k.path, encrypted, 0o600)
}
