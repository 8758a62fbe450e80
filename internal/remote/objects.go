package remote

import (
	"context"
	"fmt"
	"strings"

	"github.com/calock/ibmidbg/internal/errors"
	"github.com/calock/ibmidbg/pkg/types"
)

// ObjectStatistics resolves the kind of a single object, restricted to
// programs and service programs. Library and object must already be
// upper-cased by the caller.
type ObjectStatistics struct {
	Query QueryRunner
}

// LookupKind returns the object kind for library/object, or found=false
// when the query succeeds but matches nothing. Names outside the
// unquoted system name character set are rejected before any query text
// is built.
func (o *ObjectStatistics) LookupKind(ctx context.Context, library, object string) (types.ObjectKind, bool, error) {
	if !validObjectName(library) {
		return "", false, errors.InvalidParameter("library", library, "an unquoted IBM i object name (A-Z 0-9 $ # @ _ .)")
	}
	if !validObjectName(object) {
		return "", false, errors.InvalidParameter("object", object, "an unquoted IBM i object name (A-Z 0-9 $ # @ _ .)")
	}

	sql := fmt.Sprintf(
		"SELECT OBJTYPE FROM TABLE(QSYS2.OBJECT_STATISTICS('%s', '*PGM *SRVPGM', '%s')) LIMIT 1",
		library, object,
	)

	rows, err := o.Query.Query(ctx, sql)
	if err != nil {
		return "", false, errors.RemoteFailure("object statistics query", err)
	}
	if len(rows) == 0 {
		return "", false, nil
	}

	switch strings.ToUpper(strings.TrimSpace(rows[0]["OBJTYPE"])) {
	case string(types.ObjectKindProgram):
		return types.ObjectKindProgram, true, nil
	case string(types.ObjectKindServiceProgram):
		return types.ObjectKindServiceProgram, true, nil
	default:
		// The filter already excludes other kinds; treat anything else
		// as not found rather than guessing.
		return "", false, nil
	}
}
