// Package credentials keeps the LLM provider API key in the system keyring
// (macOS Keychain, Windows Credential Manager, Linux Secret Service).
package credentials

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	// keyringService is the service name used in the system keyring.
	keyringService = "meetingmind"
	// keyringUser is the account name the Gemini key is stored under.
	keyringUser = "gemini-api-key"
)

var (
	// ErrKeyringUnavailable indicates the system keyring is not available.
	ErrKeyringUnavailable = errors.New("system keyring unavailable")
	// ErrNoAPIKey is returned when neither config nor keyring holds a key.
	ErrNoAPIKey = errors.New("no API key configured")
)

// Source says where a resolved key came from.
type Source string

const (
	SourceConfig  Source = "config"
	SourceKeyring Source = "keyring"
)

// Store reads and writes a single secret.
type Store interface {
	Get() (string, error)
	Set(secret string) error
	Delete() error
	// Description names the storage mechanism for display.
	Description() string
}

// KeyringStore stores the key in the system keyring.
type KeyringStore struct {
	service string
	user    string
	mu      sync.Mutex
}

// NewKeyringStore creates a store for the Gemini API key.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: keyringService, user: keyringUser}
}

// Get returns the stored key, or ErrNoAPIKey when there is none.
func (s *KeyringStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	secret, err := keyring.Get(s.service, s.user)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return "", ErrNoAPIKey
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

// Set stores secret, replacing any existing key.
func (s *KeyringStore) Set(secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return errors.New("API key must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := keyring.Set(s.service, s.user, secret); err != nil {
		return fmt.Errorf("%w: storing key: %v", ErrKeyringUnavailable, err)
	}
	return nil
}

// Delete removes the stored key. Deleting a missing key is not an error.
func (s *KeyringStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := keyring.Delete(s.service, s.user)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return nil
}

// Description returns a description of the keyring backend.
func (s *KeyringStore) Description() string {
	switch runtime.GOOS {
	case "darwin":
		return "macOS Keychain"
	case "windows":
		return "Windows Credential Manager"
	default:
		return "System Keyring (Secret Service)"
	}
}

// ResolveAPIKey returns configured when it is set (config file,
// MEETINGMIND_LLM_API_KEY or GEMINI_API_KEY), otherwise the key in store.
func ResolveAPIKey(configured string, store Store) (string, Source, error) {
	if key := strings.TrimSpace(configured); key != "" {
		return key, SourceConfig, nil
	}
	if store == nil {
		return "", "", ErrNoAPIKey
	}
	key, err := store.Get()
	if err != nil {
		return "", "", err
	}
	return key, SourceKeyring, nil
}

// Mask hides all but the first visible characters of a secret.
func Mask(secret string, visible int) string {
	if len(secret) <= visible {
		return "***"
	}
	return secret[:visible] + strings.Repeat("*", 8)
}
