package remote

import (
	"context"
	"fmt"
	"strings"

	"github.com/calock/ibmidbg/internal/errors"
	"github.com/calock/ibmidbg/pkg/types"
)

// Jobs queries and terminates remote jobs owned by the current user.
type Jobs struct {
	Host Host
}

// ListStuck returns the jobs owned by the connection's user that sit in
// message-wait state. An interrupted debug session typically leaves one
// behind.
func (j *Jobs) ListStuck(ctx context.Context) ([]types.StuckJob, error) {
	user := strings.ToUpper(j.Host.CurrentUser())
	if !validObjectName(user) {
		return nil, errors.InvalidParameter("user", user, "an unquoted IBM i user profile name")
	}
	sql := fmt.Sprintf(
		"SELECT JOB_NAME, SUBSYSTEM FROM TABLE(QSYS2.ACTIVE_JOB_INFO(SUBSYSTEM_LIST_FILTER => '', CURRENT_USER_LIST_FILTER => '%s')) WHERE JOB_STATUS = 'MSGW'",
		user,
	)

	rows, err := j.Host.Query(ctx, sql)
	if err != nil {
		return nil, errors.RemoteFailure("active job query", err)
	}

	jobs := make([]types.StuckJob, 0, len(rows))
	for _, row := range rows {
		name := strings.TrimSpace(row["JOB_NAME"])
		if name == "" {
			continue
		}
		jobs = append(jobs, types.StuckJob{
			Identifier: name,
			Subsystem:  strings.TrimSpace(row["SUBSYSTEM"]),
		})
	}
	return jobs, nil
}

// End terminates a job immediately by its qualified identifier. The
// identifier must be a well-formed number/user/name triple; anything
// else is rejected before command text is built.
func (j *Jobs) End(ctx context.Context, identifier string) error {
	if !validJobIdentifier(identifier) {
		return errors.InvalidParameter("job", identifier, "a qualified job name, number/user/name")
	}
	cmd := fmt.Sprintf("system \"ENDJOB JOB(%s) OPTION(*IMMED)\"", identifier)
	res, err := j.Host.RunCommand(ctx, cmd)
	if err != nil {
		return errors.RemoteFailure("end job", err)
	}
	if res.Code != 0 {
		return errors.RemoteFailure("end job", fmt.Errorf("exit code %d: %s", res.Code, strings.TrimSpace(res.Stderr)))
	}
	return nil
}
