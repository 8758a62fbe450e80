// Package store persists small per-object state across sessions:
// remembered debug start commands and one-time message flags.
package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

const (
	storeDirMode  = 0o700
	storeFileMode = 0o600
)

// Store is a JSON-file-backed key/value store. Writes are
// last-writer-wins, which is acceptable for interactively edited,
// per-object keys.
type Store struct {
	path string
	mu   sync.Mutex
}

type contents struct {
	Commands      map[string]string `json:"commands"`
	ShownMessages map[string]bool   `json:"shownMessages"`
}

// New creates a store backed by the given file path. The file is
// created lazily on first write.
func New(path string) *Store {
	return &Store{path: filepath.Clean(path)}
}

// Command returns the remembered start command for key, or ok=false.
func (s *Store) Command(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return "", false
	}
	cmd, ok := c.Commands[key]
	return cmd, ok
}

// SetCommand remembers the start command for key.
func (s *Store) SetCommand(key, command string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return err
	}
	c.Commands[key] = command
	return s.save(c)
}

// MessageShown reports whether the one-time message id was already shown.
func (s *Store) MessageShown(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return false
	}
	return c.ShownMessages[id]
}

// MarkMessageShown records that the one-time message id was shown.
func (s *Store) MarkMessageShown(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return err
	}
	c.ShownMessages[id] = true
	return s.save(c)
}

func (s *Store) load() (*contents, error) {
	c := &contents{
		Commands:      make(map[string]string),
		ShownMessages: make(map[string]bool),
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, c); err != nil {
		return nil, err
	}
	if c.Commands == nil {
		c.Commands = make(map[string]string)
	}
	if c.ShownMessages == nil {
		c.ShownMessages = make(map[string]bool)
	}
	return c, nil
}

func (s *Store) save(c *contents) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), storeDirMode); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, storeFileMode)
}
