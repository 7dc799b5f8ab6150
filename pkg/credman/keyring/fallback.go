package keyring

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	secretFileName = "rpc.secret"
	secretFileMode = 0600
)

// FileStore keeps the secret in a 0600 file when no keyring service is
// available.
type FileStore struct {
	fs        afero.Fs
	configDir string
}

func NewFileStore(fs afero.Fs, configDir string) *FileStore {
	return &FileStore{fs: fs, configDir: configDir}
}

func (f *FileStore) path() string {
	return filepath.Join(f.configDir, secretFileName)
}

// SetSecret writes a new secret through a temp file and rename.
func (f *FileStore) SetSecret() (string, error) {
	if err := f.fs.MkdirAll(f.configDir, 0755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	secret, err := newSecret()
	if err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	tmp, err := afero.TempFile(f.fs, f.configDir, ".rpc.secret.tmp.*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(secret); err != nil {
		tmp.Close()
		f.fs.Remove(tmpPath)
		return "", fmt.Errorf("write secret: %w", err)
	}
	if err := tmp.Close(); err != nil {
		f.fs.Remove(tmpPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := f.fs.Chmod(tmpPath, secretFileMode); err != nil {
		f.fs.Remove(tmpPath)
		return "", fmt.Errorf("set permissions: %w", err)
	}
	if err := f.fs.Rename(tmpPath, f.path()); err != nil {
		f.fs.Remove(tmpPath)
		return "", fmt.Errorf("rename secret file: %w", err)
	}
	return secret, nil
}

// GetSecret reads the stored secret. A missing file reports an
// os.IsNotExist error.
func (f *FileStore) GetSecret() (string, error) {
	data, err := afero.ReadFile(f.fs, f.path())
	if err != nil {
		return "", err
	}
	secret := strings.TrimSpace(string(data))
	raw, err := hex.DecodeString(secret)
	if err != nil {
		return "", fmt.Errorf("invalid secret format: %w", err)
	}
	if len(raw) != secretLen {
		return "", fmt.Errorf("invalid secret length: expected %d, got %d", secretLen, len(raw))
	}
	return secret, nil
}

func (f *FileStore) DeleteSecret() error {
	return f.fs.Remove(f.path())
}
