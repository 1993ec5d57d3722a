package commands

import (
	"context"
	"log/slog"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/domain/services"
	"fooddelivery/internal/core/ports"
	"fooddelivery/internal/pkg/errs"
)

// transitioner is the one path every status change requested by an actor takes:
// lock the order, authorize, validate, persist status and history together, then
// release the partner and the offers when the order ends.
type transitioner struct {
	uowFactory UoWFactory
	policy     order.CancelPolicy
	clock      ports.Clock
	after      afterCommit
}

func newTransitioner(
	uowFactory UoWFactory,
	offers ports.DispatchOfferStore,
	events ports.EventPublisher,
	policy order.CancelPolicy,
	clock ports.Clock,
	logger *slog.Logger,
) transitioner {
	return transitioner{
		uowFactory: uowFactory,
		policy:     policy,
		clock:      clock,
		after:      newAfterCommit(offers, events, logger),
	}
}

func (t transitioner) transition(
	ctx context.Context,
	orderID kernel.UUID,
	target order.Status,
	actor kernel.Actor,
	override bool,
) (*order.Order, error) {
	uow := t.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !services.CanRequestTransition(actor, o, target) {
		return nil, errs.NewDomainError(errs.ErrForbidden, "%s may not move order %s to %s", actor, orderID, target)
	}

	now := t.clock.Now()
	changed, err := o.AttemptTransition(target, actor, now, order.TransitionOptions{
		Override: override,
		Policy:   t.policy,
	})
	if err != nil {
		return nil, err
	}

	if !changed {
		return o, nil
	}

	if partnerID := o.AssignedPartner(); partnerID != nil && o.Status().IsTerminal() {
		if err = releasePartner(ctx, uow.PartnerRepository(), *partnerID, orderID); err != nil {
			return nil, err
		}
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	if o.Status() == order.Canceled {
		t.after.withdrawOffers(ctx, orderID)
	}
	t.after.publish(ctx, ports.NewOrderChangedEvent(ports.EventStatusChanged, o, actor, now))
	return o, nil
}

// releasePartner frees the partner bound to a finished order. A partner missing
// from the directory does not block the order from ending.
func releasePartner(ctx context.Context, repo ports.PartnerRepository, partnerID, orderID kernel.UUID) error {
	p, err := repo.GetForUpdate(ctx, partnerID)
	if errs.CodeOf(err) == errs.CodeNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	if err = p.FinishDelivery(orderID); err != nil {
		return err
	}

	return repo.Update(ctx, p)
}
