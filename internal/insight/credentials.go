package insight

import (
	"errors"

	"github.com/jmorrow/cognitrack/internal/cache"
	"github.com/jmorrow/cognitrack/internal/keyring"
	"github.com/jmorrow/cognitrack/internal/logger"
)

// ErrNoCredential is returned when neither the OS keyring nor the local
// cache holds an insight-service API key.
var ErrNoCredential = errors.New("no insight API key configured; run 'cognitrack apikey set'")

// ResolveKey looks up the insight-service credential, preferring the OS
// keyring and falling back to the local cache on headless systems.
func ResolveKey(store cache.Store) (string, error) {
	if key, err := keyring.GetInsightKey(); err == nil && key != "" {
		return key, nil
	} else if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		logger.Warn("keyring lookup failed, falling back to cache", "error", err)
	}

	key, found, err := store.APIKey()
	if err != nil {
		return "", err
	}
	if !found || key == "" {
		return "", ErrNoCredential
	}
	return key, nil
}

// StoreKey saves the credential, preferring the OS keyring and falling back
// to the local cache.
func StoreKey(store cache.Store, key string) error {
	if keyring.IsAvailable() {
		if err := keyring.SetInsightKey(key); err == nil {
			return nil
		}
	}
	return store.SaveAPIKey(key)
}

// ClearKey removes the credential from both locations.
func ClearKey(store cache.Store) error {
	if err := keyring.DeleteInsightKey(); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		logger.Warn("failed to clear keyring entry", "error", err)
	}
	return store.DeleteAPIKey()
}
