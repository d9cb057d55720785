package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromPathMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "keyring:\n  path: /tmp/ring.enc\nquiz:\n  words: 4\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	cfg := LoadFromPath(path)
	if cfg.Keyring.Path != "/tmp/ring.enc" {
		t.Fatalf("keyring path not merged: %s", cfg.Keyring.Path)
	}
	if cfg.Quiz.Words != 4 {
		t.Fatalf("quiz words not merged: %d", cfg.Quiz.Words)
	}
	if cfg.Limits.PhraseImportBurst != Default().Limits.PhraseImportBurst {
		t.Fatal("unset fields must keep defaults")
	}
}

func TestLoadFromPathMissingFileFallsBack(t *testing.T) {
	cfg := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	if cfg != Default() {
		t.Fatalf("missing config must yield defaults: %+v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("APERTURE_KEYRING_PATH", "/env/ring.enc")
	t.Setenv("APERTURE_QUIZ_WORDS", "5")
	t.Setenv("APERTURE_PHRASE_IMPORT_RPS", "2.5")
	t.Setenv("APERTURE_PHRASE_IMPORT_BURST", "9")

	cfg := Default()
	ApplyEnvOverrides(&cfg)
	if cfg.Keyring.Path != "/env/ring.enc" || cfg.Quiz.Words != 5 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.Limits.PhraseImportRPS != 2.5 || cfg.Limits.PhraseImportBurst != 9 {
		t.Fatalf("limit overrides not applied: %+v", cfg)
	}
}

func TestEnvOverridesIgnoreGarbage(t *testing.T) {
	t.Setenv("APERTURE_QUIZ_WORDS", "not-a-number")
	cfg := Default()
	ApplyEnvOverrides(&cfg)
	if cfg.Quiz.Words != Default().Quiz.Words {
		t.Fatal("unparseable env values must be ignored")
	}
}
