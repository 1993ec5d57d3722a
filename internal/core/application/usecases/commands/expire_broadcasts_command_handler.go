package commands

import (
	"context"
	"log/slog"

	"fooddelivery/internal/core/ports"
)

// ExpireBroadcastsCommandHandler settles offers that timed out. Claims already read
// a pending offer past its deadline as expired, so the sweep only makes the stored
// state match what readers see.
type ExpireBroadcastsCommandHandler struct {
	offers ports.DispatchOfferStore
	clock  ports.Clock
	logger *slog.Logger
}

func NewExpireBroadcastsCommandHandler(
	offers ports.DispatchOfferStore,
	clock ports.Clock,
	logger *slog.Logger,
) ExpireBroadcastsCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return ExpireBroadcastsCommandHandler{offers: offers, clock: clock, logger: logger}
}

// Handle returns the number of offers that expired in this sweep.
func (h ExpireBroadcastsCommandHandler) Handle(ctx context.Context, _ ExpireBroadcastsCommand) (int, error) {
	expired, err := h.offers.ExpireDue(ctx, h.clock.Now())
	if err != nil {
		return 0, err
	}

	if expired > 0 {
		h.logger.InfoContext(ctx, "dispatch offers expired", slog.Int("count", expired))
	}
	return expired, nil
}
