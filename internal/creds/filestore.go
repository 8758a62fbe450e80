package creds

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSecretStore reads secrets from one file per key under a root
// directory, the layout the surrounding tooling writes with 0600
// permissions. Keys are sanitized into file names.
type FileSecretStore struct {
	root string
}

// NewFileSecretStore creates a read-only view over root.
func NewFileSecretStore(root string) *FileSecretStore {
	return &FileSecretStore{root: filepath.Clean(root)}
}

var _ SecretStore = (*FileSecretStore)(nil)

func (s *FileSecretStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := s.pathForKey(key)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("secret %q not found: %w", key, err)
		}
		return "", fmt.Errorf("read secret %q: %w", key, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileSecretStore) pathForKey(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty secret key")
	}
	name := strings.NewReplacer("/", "_", string(os.PathSeparator), "_", "..", "_").Replace(key)
	return filepath.Join(s.root, name), nil
}
