// Package creds obtains and caches the password for the active
// connection. Lookup order: persistent secret store, then the
// process-lifetime in-memory cache, then an interactive prompt.
package creds

import (
	"context"
	"sync"
)

// SecretStore is the persistent secret collaborator. This package reads
// it but never writes prompted passwords back to it.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
}

// Prompter asks the user for a password. An empty result with a nil
// error means the prompt was dismissed; callers abort silently.
type Prompter interface {
	AskPassword(ctx context.Context, identity string) (string, error)
}

// Cache holds per-identity passwords in volatile memory only. Nothing
// here is ever persisted to disk.
type Cache struct {
	store  SecretStore
	prompt Prompter

	mu        sync.Mutex
	passwords map[string]string

	// confirmed flips once any session in this process confirms
	// startup. After that, a failed launch no longer clears the cache:
	// the password has been proven correct, so the failure lies
	// elsewhere.
	confirmed bool
}

// NewCache creates a credential cache over the given collaborators.
// store may be nil when no persistent secret store is configured.
func NewCache(store SecretStore, prompt Prompter) *Cache {
	return &Cache{
		store:     store,
		prompt:    prompt,
		passwords: make(map[string]string),
	}
}

// ObtainPassword returns the password for identity, or "" with a nil
// error when the user dismissed the prompt. A successful prompt
// populates the in-memory cache for the remainder of the process.
func (c *Cache) ObtainPassword(ctx context.Context, identity string) (string, error) {
	if c.store != nil {
		if pw, err := c.store.Get(ctx, identity); err == nil && pw != "" {
			return pw, nil
		}
	}

	c.mu.Lock()
	if pw, ok := c.passwords[identity]; ok {
		c.mu.Unlock()
		return pw, nil
	}
	c.mu.Unlock()

	pw, err := c.prompt.AskPassword(ctx, identity)
	if err != nil {
		return "", err
	}
	if pw == "" {
		// Dismissed prompt: user-initiated cancel, not a failure.
		return "", nil
	}

	c.mu.Lock()
	c.passwords[identity] = pw
	c.mu.Unlock()

	return pw, nil
}

// MarkConfirmed records that a session confirmed startup. From here on,
// failed launches keep the cached password.
func (c *Cache) MarkConfirmed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirmed = true
}

// InvalidateUnlessConfirmed clears the cached password for identity
// when no session in this process has ever confirmed. This protects
// against caching a wrong password typed once, while not re-prompting
// once a session has proven the password correct.
func (c *Cache) InvalidateUnlessConfirmed(identity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.confirmed {
		delete(c.passwords, identity)
	}
}
