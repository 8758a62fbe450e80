package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/calock/ibmidbg/pkg/types"
)

// StuckJobs lists the current user's message-wait jobs.
func (m *Manager) StuckJobs(ctx context.Context) ([]types.StuckJob, error) {
	return m.jobs.ListStuck(ctx)
}

// EndJob terminates a job by its qualified identifier.
func (m *Manager) EndJob(ctx context.Context, identifier string) error {
	return m.jobs.End(ctx, identifier)
}

// HandleTermination reacts to the end of a debug session: it looks for
// jobs owned by the current user left blocked in message-wait state and
// offers a one-click cleanup. The flow is decoupled from the launch
// state machine and never blocks a launch; the server runs it on
// shutdown before dropping connection state.
func (m *Manager) HandleTermination(ctx context.Context) {
	stuck, err := m.jobs.ListStuck(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("could not query message-wait jobs")
		return
	}
	if len(stuck) == 0 {
		return
	}

	identifiers := make([]string, len(stuck))
	for i, job := range stuck {
		identifiers[i] = job.Identifier
	}

	message := fmt.Sprintf(
		"%d job(s) from an earlier debug session are waiting on a message: %s",
		len(stuck), strings.Join(identifiers, ", "),
	)
	if !m.notify.OfferAction(message, "End jobs") {
		return
	}

	for _, job := range stuck {
		if err := m.jobs.End(ctx, job.Identifier); err != nil {
			m.logger.Warn().Err(err).Str("job", job.Identifier).Msg("could not end job")
			m.notify.Warn(fmt.Sprintf("Could not end job %s: %v", job.Identifier, err))
			continue
		}
		m.logger.Info().Str("job", job.Identifier).Msg("ended message-wait job")
	}
}
