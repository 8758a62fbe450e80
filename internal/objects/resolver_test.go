package objects

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bridgeerrors "github.com/calock/ibmidbg/internal/errors"
	"github.com/calock/ibmidbg/internal/remote"
	"github.com/calock/ibmidbg/pkg/types"
)

type fakeQueryRunner struct {
	rows    []map[string]string
	queries []string
}

func (q *fakeQueryRunner) Query(ctx context.Context, sql string) ([]map[string]string, error) {
	q.queries = append(q.queries, sql)
	return q.rows, nil
}

func newResolverOver(rows []map[string]string) (*Resolver, *fakeQueryRunner) {
	runner := &fakeQueryRunner{rows: rows}
	return NewResolver(&remote.ObjectStatistics{Query: runner}), runner
}

func TestResolveTypeCachesResult(t *testing.T) {
	r, runner := newResolverOver([]map[string]string{{"OBJTYPE": "*PGM"}})

	kind, err := r.ResolveType(context.Background(), "MYLIB", "MYPROG")
	require.NoError(t, err)
	assert.Equal(t, types.ObjectKindProgram, kind)

	// Cached key never issues a second remote query.
	_, err = r.ResolveType(context.Background(), "MYLIB", "MYPROG")
	require.NoError(t, err)
	assert.Len(t, runner.queries, 1)
}

func TestResolveTypeNormalizesCase(t *testing.T) {
	r, runner := newResolverOver([]map[string]string{{"OBJTYPE": "*SRVPGM"}})

	kind, err := r.ResolveType(context.Background(), "mylib", " mysrv ")
	require.NoError(t, err)
	assert.Equal(t, types.ObjectKindServiceProgram, kind)
	assert.Contains(t, runner.queries[0], "'MYLIB'")
	assert.Contains(t, runner.queries[0], "'MYSRV'")

	// Differently-cased lookups hit the same cache entry.
	_, err = r.ResolveType(context.Background(), "MYLIB", "MYSRV")
	require.NoError(t, err)
	assert.Len(t, runner.queries, 1)
}

func TestResolveTypeNotFound(t *testing.T) {
	r, _ := newResolverOver(nil)

	_, err := r.ResolveType(context.Background(), "MYLIB", "MISSING")
	require.Error(t, err)
	assert.Equal(t, bridgeerrors.KindResolutionFailure, bridgeerrors.KindOf(err))
	assert.Contains(t, err.Error(), "MYLIB/MISSING")
}

func TestInvalidateDropsCache(t *testing.T) {
	r, runner := newResolverOver([]map[string]string{{"OBJTYPE": "*PGM"}})

	_, err := r.ResolveType(context.Background(), "MYLIB", "MYPROG")
	require.NoError(t, err)

	r.Invalidate()

	_, err = r.ResolveType(context.Background(), "MYLIB", "MYPROG")
	require.NoError(t, err)
	assert.Len(t, runner.queries, 2)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "MYLIB/MYPROG", CacheKey("mylib", "myprog"))
	assert.Equal(t, CacheKey("MYLIB", "MYPROG"), CacheKey(" mylib ", " MyProg "))
}
