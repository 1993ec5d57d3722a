package commands

import (
	"context"
	"log/slog"

	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/ports"
)

// AdvanceDeliveryStatusCommandHandler moves an assigned order through pickup,
// transit and delivery. Delivered additionally requires a verified delivery code
// and releases the partner.
type AdvanceDeliveryStatusCommandHandler struct {
	transitioner transitioner
}

func NewAdvanceDeliveryStatusCommandHandler(
	uowFactory UoWFactory,
	events ports.EventPublisher,
	clock ports.Clock,
	logger *slog.Logger,
) AdvanceDeliveryStatusCommandHandler {
	return AdvanceDeliveryStatusCommandHandler{
		transitioner: newTransitioner(uowFactory, nil, events, order.CancelPolicy{}, clock, logger),
	}
}

func (h AdvanceDeliveryStatusCommandHandler) Handle(ctx context.Context, cmd AdvanceDeliveryStatusCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.transitioner.transition(ctx, cmd.OrderID(), cmd.Status(), cmd.Actor(), false)
}
