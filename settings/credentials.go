// Package settings stores quicktrans credentials for translation providers
// that need an API key.
//
// Credentials are stored in the XDG data directory:
//
//	$XDG_DATA_HOME/quicktrans/auth.json  (default: ~/.local/share/quicktrans/)
//
// The file is a JSON object keyed by provider ID. File permissions are 0600
// (owner read/write only).
//
// Lookup order for API keys:
//  1. --api-key flag (highest priority)
//  2. QUICKTRANS_API_KEY environment variable
//  3. The provider's own variable (GOOGLE_API_KEY, GROQ_API_KEY, OPENAI_API_KEY)
//  4. This credential store
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dataDirName = "quicktrans"
	fileName    = "auth.json"

	// EnvAPIKey overrides every stored key.
	EnvAPIKey = "QUICKTRANS_API_KEY"
)

// Info is the credential entry stored per provider.
type Info struct {
	// Key is the API key.
	Key string `json:"key,omitempty"`
	// BaseURL is a custom endpoint (custom-openai).
	BaseURL string `json:"baseUrl,omitempty"`
}

// Store holds all provider credentials, keyed by provider ID.
type Store map[string]*Info

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// dataDir returns the XDG data directory for quicktrans.
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

func filePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// FilePath returns the auth.json file path for display purposes.
func FilePath() string {
	p, err := filePath()
	if err != nil {
		return ""
	}
	return p
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the credential store from disk.
// Returns an empty store if the file doesn't exist or is invalid.
func Load() Store {
	path, err := filePath()
	if err != nil {
		return make(Store)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return make(Store)
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil || store == nil {
		return make(Store)
	}
	return store
}

// Save writes the credential store to disk with 0600 permissions.
func Save(store Store) error {
	path, err := filePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Get / Set / Remove
// ---------------------------------------------------------------------------

// Get returns the entry for a provider, or nil if not found.
func Get(providerID string) *Info {
	return Load()[providerID]
}

// Set stores an entry for a provider (upsert).
func Set(providerID string, info *Info) error {
	store := Load()
	store[providerID] = info
	return Save(store)
}

// Remove deletes credentials for a provider.
func Remove(providerID string) error {
	store := Load()
	if _, ok := store[providerID]; !ok {
		return nil
	}
	delete(store, providerID)
	return Save(store)
}

// RemoveAll removes all stored credentials.
func RemoveAll() error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing auth file: %w", err)
	}
	return nil
}

// SetAPIKey stores an API key (and optional endpoint) for a provider.
func SetAPIKey(providerID, key, baseURL string) error {
	return Set(providerID, &Info{Key: key, BaseURL: baseURL})
}

// GetAPIKey returns the stored API key, or "" if none.
func GetAPIKey(providerID string) string {
	if info := Get(providerID); info != nil {
		return info.Key
	}
	return ""
}

// GetBaseURL returns the stored endpoint, or "" if none.
func GetBaseURL(providerID string) string {
	if info := Get(providerID); info != nil {
		return info.BaseURL
	}
	return ""
}

// ---------------------------------------------------------------------------
// Key resolution
// ---------------------------------------------------------------------------

// EnvVarForProvider returns the provider's conventional API key variable.
func EnvVarForProvider(providerID string) string {
	switch providerID {
	case "gemini":
		return "GOOGLE_API_KEY"
	case "groq":
		return "GROQ_API_KEY"
	case "custom-openai":
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}

// ResolveAPIKey applies the lookup order flag > QUICKTRANS_API_KEY >
// provider variable > store.
func ResolveAPIKey(providerID, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		return v
	}
	if env := EnvVarForProvider(providerID); env != "" {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return GetAPIKey(providerID)
}

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
