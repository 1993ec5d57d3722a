package commands

import (
	"context"
	"log/slog"

	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/ports"
)

// CancelOrderCommandHandler cancels an order and, after commit, withdraws every
// outstanding dispatch offer. A claim that races the cancel either commits first
// (and the cancel then releases the partner) or sees a terminal order.
type CancelOrderCommandHandler struct {
	transitioner transitioner
}

func NewCancelOrderCommandHandler(
	uowFactory UoWFactory,
	offers ports.DispatchOfferStore,
	events ports.EventPublisher,
	policy order.CancelPolicy,
	clock ports.Clock,
	logger *slog.Logger,
) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		transitioner: newTransitioner(uowFactory, offers, events, policy, clock, logger),
	}
}

func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.transitioner.transition(ctx, cmd.OrderID(), order.Canceled, cmd.Actor(), cmd.Override())
}
