// Package keyring stores the JSON-RPC bearer secret in the OS keyring,
// falling back to a private file in the config directory.
package keyring

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/zalando/go-keyring"
)

const secretLen = 32

type Keyring struct {
	AppName  string
	KeyField string
}

var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
	randRead      = rand.Read
)

func NewKeyring() *Keyring {
	return &Keyring{
		AppName:  "tasched",
		KeyField: "rpc-secret",
	}
}

// newSecret returns a random hex secret.
func newSecret() (string, error) {
	b := make([]byte, secretLen)
	if _, err := randRead(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// SetSecret generates a secret and stores it in the keyring.
func (k *Keyring) SetSecret() (string, error) {
	secret, err := newSecret()
	if err != nil {
		return "", err
	}
	if err := keyringSet(k.AppName, k.KeyField, secret); err != nil {
		return "", err
	}
	return secret, nil
}

func (k *Keyring) GetSecret() (string, error) {
	return keyringGet(k.AppName, k.KeyField)
}

func (k *Keyring) DeleteSecret() error {
	return keyringDelete(k.AppName, k.KeyField)
}
