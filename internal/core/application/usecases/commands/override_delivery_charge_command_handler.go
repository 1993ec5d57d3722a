package commands

import (
	"context"
	"log/slog"

	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/domain/services"
	"fooddelivery/internal/core/ports"
	"fooddelivery/internal/pkg/errs"
)

// OverrideDeliveryChargeCommandHandler is the only way pricing changes after
// creation: an admin replaces the delivery charge and the final amount follows.
type OverrideDeliveryChargeCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      ports.Clock
	after      afterCommit
}

func NewOverrideDeliveryChargeCommandHandler(
	uowFactory OrderUoWFactory,
	events ports.EventPublisher,
	clock ports.Clock,
	logger *slog.Logger,
) OverrideDeliveryChargeCommandHandler {
	return OverrideDeliveryChargeCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		after:      newAfterCommit(nil, events, logger),
	}
}

func (h OverrideDeliveryChargeCommandHandler) Handle(
	ctx context.Context,
	cmd OverrideDeliveryChargeCommand,
) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if !services.CanAdjustPricing(cmd.Actor()) {
		return nil, errs.NewDomainError(errs.ErrForbidden, "%s may not adjust pricing", cmd.Actor())
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	if err = o.OverrideDeliveryCharge(cmd.Charge(), now); err != nil {
		return nil, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.after.publish(ctx, ports.NewOrderChangedEvent(ports.EventDeliveryChargeChanged, o, cmd.Actor(), now))
	return o, nil
}
