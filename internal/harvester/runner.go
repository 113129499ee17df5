// internal/harvester/runner.go
package harvester

import (
	"context"
	"errors"
)

// Run loops Step until ctx is cancelled, then closes the connection.
// Iteration errors are logged and the loop carries on; the session never
// gives up on the probe.
func (h *Harvester) Run(ctx context.Context) error {
	defer func() {
		if err := h.Close(); err != nil {
			h.log.Warn().Err(err).Msg("close on shutdown failed")
		}
	}()

	h.log.Info().
		Dur("poll_interval", h.cfg.PollInterval).
		Dur("timeout", h.cfg.Timeout).
		Int("error_threshold", h.cfg.ErrorThreshold).
		Msg("harvester started")

	for {
		err := h.Step(ctx)
		if ctx.Err() != nil {
			h.log.Info().Msg("harvester stopped")
			return nil
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			h.log.Error().Err(err).Msg("iteration aborted")
		}
	}
}
