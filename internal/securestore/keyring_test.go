package securestore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestKeyringIdentityPersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keyring.enc")

	k1, err := OpenKeyring(path, "pass")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if _, _, err := k1.Identity(); !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("expected ErrNoIdentity on fresh keyring, got %v", err)
	}

	pub := bytes.Repeat([]byte{0x01}, 32)
	priv := bytes.Repeat([]byte{0x02}, 32)
	if err := k1.SetIdentity(pub, priv); err != nil {
		t.Fatalf("set identity failed: %v", err)
	}
	if err := k1.CacheGalleryKey("gk1abc", bytes.Repeat([]byte{0x03}, 32)); err != nil {
		t.Fatalf("cache key failed: %v", err)
	}

	k2, err := OpenKeyring(path, "pass")
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	gotPub, gotPriv, err := k2.Identity()
	if err != nil {
		t.Fatalf("identity after restart failed: %v", err)
	}
	if !bytes.Equal(gotPub, pub) || !bytes.Equal(gotPriv, priv) {
		t.Fatal("identity must survive restart")
	}
	key, ok := k2.GalleryKey("gk1abc")
	if !ok || !bytes.Equal(key, bytes.Repeat([]byte{0x03}, 32)) {
		t.Fatal("cached gallery key must survive restart")
	}
	if _, ok := k2.GalleryKey("gk1missing"); ok {
		t.Fatal("unknown lineage must not resolve")
	}
}

func TestKeyringWrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keyring.enc")
	k, err := OpenKeyring(path, "right")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := k.SetIdentity(make([]byte, 32), make([]byte, 32)); err != nil {
		t.Fatalf("set identity failed: %v", err)
	}
	if _, err := OpenKeyring(path, "wrong"); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
}

func TestKeyringWipe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keyring.enc")
	k, err := OpenKeyring(path, "pass")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := k.SetIdentity(make([]byte, 32), make([]byte, 32)); err != nil {
		t.Fatalf("set identity failed: %v", err)
	}
	if err := k.Wipe(); err != nil {
		t.Fatalf("wipe failed: %v", err)
	}
	if _, _, err := k.Identity(); !errors.Is(err, ErrNoIdentity) {
		t.Fatal("wiped keyring must hold no identity")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("wipe must remove the keyring file")
	}
}
