package commands

import (
	"context"
	"log/slog"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/ports"
)

// afterCommit runs the steps that follow a committed change. The order row is
// already the source of truth at this point, so failures are logged and never
// returned to the caller.
type afterCommit struct {
	offers ports.DispatchOfferStore
	events ports.EventPublisher
	logger *slog.Logger
}

func newAfterCommit(offers ports.DispatchOfferStore, events ports.EventPublisher, logger *slog.Logger) afterCommit {
	if logger == nil {
		logger = slog.Default()
	}
	return afterCommit{offers: offers, events: events, logger: logger}
}

func (a afterCommit) publish(ctx context.Context, events ...ports.OrderChangedEvent) {
	if a.events == nil || len(events) == 0 {
		return
	}
	if err := a.events.Publish(ctx, events...); err != nil {
		a.logger.ErrorContext(ctx, "publish order events",
			slog.String("order_id", events[0].OrderID.String()),
			slog.String("kind", string(events[0].Kind)),
			slog.Any("error", err))
	}
}

func (a afterCommit) withdrawOffers(ctx context.Context, orderID kernel.UUID) {
	if a.offers == nil {
		return
	}
	if err := a.offers.WithdrawAll(ctx, orderID); err != nil {
		a.logger.ErrorContext(ctx, "withdraw dispatch offers",
			slog.String("order_id", orderID.String()),
			slog.Any("error", err))
	}
}

func (a afterCommit) resolveOffers(ctx context.Context, orderID, winner kernel.UUID) {
	if a.offers == nil {
		return
	}
	if err := a.offers.Resolve(ctx, orderID, winner); err != nil {
		a.logger.ErrorContext(ctx, "resolve dispatch offers",
			slog.String("order_id", orderID.String()),
			slog.String("partner_id", winner.String()),
			slog.Any("error", err))
	}
}
