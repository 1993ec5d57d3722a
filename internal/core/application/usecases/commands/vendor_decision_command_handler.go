package commands

import (
	"context"
	"log/slog"

	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/ports"
)

// VendorDecisionCommandHandler applies a vendor's accept/reject/cancel decision.
//
// Example:
//
//	cmd, _ := NewVendorDecisionCommand(orderID, DecisionAccept, false, vendor)
//	o, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrOrderTerminal):
//	    // the customer canceled first
//	case errors.Is(err, errs.ErrForbidden):
//	    // not this vendor's order
//	}
type VendorDecisionCommandHandler struct {
	transitioner transitioner
}

func NewVendorDecisionCommandHandler(
	uowFactory UoWFactory,
	offers ports.DispatchOfferStore,
	events ports.EventPublisher,
	policy order.CancelPolicy,
	clock ports.Clock,
	logger *slog.Logger,
) VendorDecisionCommandHandler {
	return VendorDecisionCommandHandler{
		transitioner: newTransitioner(uowFactory, offers, events, policy, clock, logger),
	}
}

func (h VendorDecisionCommandHandler) Handle(ctx context.Context, cmd VendorDecisionCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.transitioner.transition(ctx, cmd.OrderID(), cmd.Decision().Target(), cmd.Actor(), cmd.Override())
}
