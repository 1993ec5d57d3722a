package commands

import (
	"context"
	"log/slog"

	"fooddelivery/internal/core/domain/model/dispatch"
	"fooddelivery/internal/core/domain/services"
	"fooddelivery/internal/core/ports"
	"fooddelivery/internal/pkg/errs"
)

// BroadcastToPartnersCommandHandler offers an accepted order to every eligible
// partner within the dispatch radius of its pickup point.
//
// The new offer batch replaces any previous one before the order's broadcast stamp
// commits, so a partner never sees an order stamped with a batch that was not stored.
// Re-broadcasting an accepted order that nobody claimed is allowed.
type BroadcastToPartnersCommandHandler struct {
	uowFactory  UoWFactory
	broadcaster services.Broadcaster
	offers      ports.DispatchOfferStore
	clock       ports.Clock
	after       afterCommit
}

func NewBroadcastToPartnersCommandHandler(
	uowFactory UoWFactory,
	broadcaster services.Broadcaster,
	offers ports.DispatchOfferStore,
	events ports.EventPublisher,
	clock ports.Clock,
	logger *slog.Logger,
) BroadcastToPartnersCommandHandler {
	return BroadcastToPartnersCommandHandler{
		uowFactory:  uowFactory,
		broadcaster: broadcaster,
		offers:      offers,
		clock:       clock,
		after:       newAfterCommit(nil, events, logger),
	}
}

func (h BroadcastToPartnersCommandHandler) Handle(
	ctx context.Context,
	cmd BroadcastToPartnersCommand,
) (*dispatch.Broadcast, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
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

	if !services.CanBroadcast(cmd.Actor(), o) {
		return nil, errs.NewDomainError(errs.ErrForbidden, "%s may not broadcast order %s", cmd.Actor(), o.ID())
	}

	if err = o.ValidateBroadcast(); err != nil {
		return nil, err
	}

	pickup := o.PickupAddress().Location()
	candidates, err := uow.PartnerRepository().FindAvailableNear(ctx, pickup.BoundingBox(h.broadcaster.RadiusKm()))
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	batch, err := h.broadcaster.Broadcast(o, candidates, now)
	if err != nil {
		return nil, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err = h.offers.Replace(ctx, batch); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.after.publish(ctx, ports.NewOrderChangedEvent(ports.EventBroadcastStarted, o, cmd.Actor(), now))
	return batch, nil
}
