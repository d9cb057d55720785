package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the daemon-side settings of the key-management core. The
// yaml file is optional; env vars (APERTURE_*) override whatever was read.
type Config struct {
	Keyring KeyringConfig `yaml:"keyring"`
	Quiz    QuizConfig    `yaml:"quiz"`
	Limits  LimitsConfig  `yaml:"limits"`
}

type KeyringConfig struct {
	Path string `yaml:"path"`
}

type QuizConfig struct {
	// Words is how many phrase positions the write-down confirmation quiz
	// asks for.
	Words int `yaml:"words"`
}

type LimitsConfig struct {
	// PhraseImportRPS / PhraseImportBurst bound phrase-import attempts per
	// source key.
	PhraseImportRPS   float64 `yaml:"phraseImportRps"`
	PhraseImportBurst int     `yaml:"phraseImportBurst"`
}

func Default() Config {
	return Config{
		Keyring: KeyringConfig{Path: "data/keyring.enc"},
		Quiz:    QuizConfig{Words: 3},
		Limits:  LimitsConfig{PhraseImportRPS: 0.5, PhraseImportBurst: 5},
	}
}

// LoadFromPath reads the first readable candidate config file, merges it
// over the defaults and applies env overrides. A missing or unparseable
// file falls back to defaults rather than failing the daemon.
func LoadFromPath(configPath string) Config {
	cfg := Default()

	candidates := make([]string, 0, 2)
	if configPath != "" {
		candidates = append(candidates, configPath)
	} else {
		candidates = append(candidates, "configs/config.yaml")
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var parsed Config
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			continue
		}
		Merge(&cfg, parsed)
		break
	}
	ApplyEnvOverrides(&cfg)
	return cfg
}

func Merge(dst *Config, src Config) {
	if src.Keyring.Path != "" {
		dst.Keyring.Path = src.Keyring.Path
	}
	if src.Quiz.Words != 0 {
		dst.Quiz.Words = src.Quiz.Words
	}
	if src.Limits.PhraseImportRPS != 0 {
		dst.Limits.PhraseImportRPS = src.Limits.PhraseImportRPS
	}
	if src.Limits.PhraseImportBurst != 0 {
		dst.Limits.PhraseImportBurst = src.Limits.PhraseImportBurst
	}
}

func ApplyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("APERTURE_KEYRING_PATH")); v != "" {
		cfg.Keyring.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("APERTURE_QUIZ_WORDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Quiz.Words = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("APERTURE_PHRASE_IMPORT_RPS")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Limits.PhraseImportRPS = f
		}
	}
	if v := strings.TrimSpace(os.Getenv("APERTURE_PHRASE_IMPORT_BURST")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Limits.PhraseImportBurst = n
		}
	}
}
