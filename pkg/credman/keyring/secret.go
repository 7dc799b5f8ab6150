package keyring

import (
	"fmt"
)

// SecretStore is implemented by Keyring and FileStore.
type SecretStore interface {
	GetSecret() (string, error)
	SetSecret() (string, error)
	DeleteSecret() error
}

// LoadOrCreate returns the first stored secret found in stores, trying
// them in order. When none holds one it creates a secret in the first
// store that accepts it.
func LoadOrCreate(stores ...SecretStore) (string, error) {
	for _, s := range stores {
		if secret, err := s.GetSecret(); err == nil && secret != "" {
			return secret, nil
		}
	}
	var lastErr error
	for _, s := range stores {
		secret, err := s.SetSecret()
		if err == nil {
			return secret, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no secret store configured")
	}
	return "", fmt.Errorf("store rpc secret: %w", lastErr)
}

// Reset deletes the secret from every store, ignoring stores that hold
// none.
func Reset(stores ...SecretStore) {
	for _, s := range stores {
		_ = s.DeleteSecret()
	}
}
