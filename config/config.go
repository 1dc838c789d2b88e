// Package config loads quicktrans settings.
//
// Settings live in the XDG config directory:
//
//	$XDG_CONFIG_HOME/quicktrans/settings.yaml  (default: ~/.config/quicktrans/)
//
// A legacy settings.json holding only the synonym table ({"french": "fr"})
// is read when no settings.yaml exists. Values from the environment (and an
// optional .env file) override the file; CLI flags override both.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configDirName    = "quicktrans"
	FileName         = "settings.yaml"
	LegacyFileName   = "settings.json"
	DefaultTrigger   = "tr "
	DefaultBackend   = "google"
	DefaultTimeout   = 10 * time.Second
	DefaultDebounceN = 50
	DefaultDebounceT = 10 * time.Millisecond
)

// Environment variables that override file values.
const (
	EnvBackend     = "QUICKTRANS_BACKEND"
	EnvDefaultLang = "QUICKTRANS_DEFAULT_LANG"
	EnvProxy       = "QUICKTRANS_PROXY"
	EnvTimeout     = "QUICKTRANS_TIMEOUT"
	EnvModel       = "QUICKTRANS_MODEL"
	EnvBaseURL     = "QUICKTRANS_BASE_URL"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// Settings is the settings.yaml structure.
type Settings struct {
	// Trigger is the query prefix routed to quicktrans in serve mode.
	Trigger string `yaml:"trigger,omitempty"`
	// DefaultLang is the target language when a query names none
	// (default: system locale).
	DefaultLang string `yaml:"default_lang,omitempty"`
	// Backend is the translation provider ID (default "google").
	Backend string `yaml:"backend,omitempty"`
	// Model is the model identifier for AI providers.
	Model string `yaml:"model,omitempty"`
	// BaseURL overrides the provider endpoint.
	BaseURL string `yaml:"base_url,omitempty"`
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string `yaml:"proxy,omitempty"`
	// Timeout bounds a single translation request.
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// Debounce controls the delay before a query reaches the backend.
	Debounce Debounce `yaml:"debounce,omitempty"`
	// Synonyms maps aliases to language codes ("french": "fr").
	Synonyms map[string]string `yaml:"synonyms,omitempty"`
}

// Debounce is the polling window applied before each translation.
type Debounce struct {
	Iterations int           `yaml:"iterations,omitempty"`
	Interval   time.Duration `yaml:"interval,omitempty"`
}

// Defaults returns settings with every default applied and no synonyms.
func Defaults() *Settings {
	s := &Settings{}
	s.applyDefaults()
	return s
}

func (s *Settings) applyDefaults() {
	if s.Trigger == "" {
		s.Trigger = DefaultTrigger
	}
	if s.Backend == "" {
		s.Backend = DefaultBackend
	}
	if s.Timeout == 0 {
		s.Timeout = DefaultTimeout
	}
	if s.Debounce.Iterations == 0 {
		s.Debounce.Iterations = DefaultDebounceN
	}
	if s.Debounce.Interval == 0 {
		s.Debounce.Interval = DefaultDebounceT
	}
	if s.Synonyms == nil {
		s.Synonyms = map[string]string{}
	}
}

func (s *Settings) validate() error {
	if s.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative (got %v)", s.Timeout)
	}
	if s.Debounce.Iterations < 0 {
		return fmt.Errorf("debounce.iterations must not be negative (got %d)", s.Debounce.Iterations)
	}
	if s.Debounce.Interval < 0 {
		return fmt.Errorf("debounce.interval must not be negative (got %v)", s.Debounce.Interval)
	}
	if strings.TrimSpace(s.Trigger) == "" {
		return errors.New("trigger must not be blank")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Paths
// ---------------------------------------------------------------------------

// Dir returns the quicktrans config directory.
// Respects $XDG_CONFIG_HOME (falls back to ~/.config).
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, configDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", configDirName), nil
}

// DefaultPath returns the settings file to read: settings.yaml, or the legacy
// settings.json when only that one exists.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		legacy := filepath.Join(dir, LegacyFileName)
		if _, err := os.Stat(legacy); err == nil {
			return legacy, nil
		}
	}
	return path, nil
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads and validates the settings file at path. A missing file yields
// the defaults. Files ending in .json are read as a bare synonym table.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var s Settings
	if strings.EqualFold(filepath.Ext(path), ".json") {
		// JSON is a subset of YAML
		if err := yaml.Unmarshal(data, &s.Synonyms); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	s.applyDefaults()
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

// Save writes s to path as YAML, creating the directory if needed.
func Save(path string, s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}

// LoadEnv loads .env files from the working directory and the config
// directory into the process environment. Missing files are ignored and
// variables already set are never overwritten.
func LoadEnv() error {
	candidates := []string{".env"}
	if dir, err := Dir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, ".env"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overrides s with QUICKTRANS_* environment variables.
func (s *Settings) ApplyEnv() error {
	if v := os.Getenv(EnvBackend); v != "" {
		s.Backend = v
	}
	if v := os.Getenv(EnvDefaultLang); v != "" {
		s.DefaultLang = v
	}
	if v := os.Getenv(EnvProxy); v != "" {
		s.Proxy = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		s.Model = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		s.BaseURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		s.Timeout = d
	}
	return s.validate()
}
