// Package objects resolves a library/object pair to its object kind,
// memoized for the connection's lifetime.
package objects

import (
	"context"
	"strings"
	"sync"

	"github.com/calock/ibmidbg/internal/errors"
	"github.com/calock/ibmidbg/internal/remote"
	"github.com/calock/ibmidbg/pkg/types"
)

// Resolver caches object kinds per connection. The cache is strictly
// additive; object kinds are assumed immutable for the duration of a
// session, so there is no eviction beyond full invalidation on
// disconnect.
type Resolver struct {
	stats *remote.ObjectStatistics

	mu    sync.Mutex
	cache map[string]types.ObjectKind
}

// NewResolver creates a resolver bound to one connection's query runner.
func NewResolver(stats *remote.ObjectStatistics) *Resolver {
	return &Resolver{
		stats: stats,
		cache: make(map[string]types.ObjectKind),
	}
}

// CacheKey normalizes a library/object pair into its cache key.
// Keys are always upper-cased.
func CacheKey(library, object string) string {
	return strings.ToUpper(strings.TrimSpace(library)) + "/" + strings.ToUpper(strings.TrimSpace(object))
}

// ResolveType returns the kind of library/object. A cached key never
// issues a second remote query within the connection's lifetime.
// Absence after a successful query is an ObjectNotFound error naming
// both expected kinds.
func (r *Resolver) ResolveType(ctx context.Context, library, object string) (types.ObjectKind, error) {
	library = strings.ToUpper(strings.TrimSpace(library))
	object = strings.ToUpper(strings.TrimSpace(object))
	key := library + "/" + object

	r.mu.Lock()
	if kind, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return kind, nil
	}
	r.mu.Unlock()

	kind, found, err := r.stats.LookupKind(ctx, library, object)
	if err != nil {
		return "", err
	}
	if !found {
		return "", errors.ObjectNotFound(library, object)
	}

	r.mu.Lock()
	r.cache[key] = kind
	r.mu.Unlock()

	return kind, nil
}

// Invalidate drops the whole cache. Called on disconnect; a new
// connection implies a new cache.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]types.ObjectKind)
}
