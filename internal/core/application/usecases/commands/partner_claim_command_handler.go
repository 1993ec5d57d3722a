package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/domain/services"
	"fooddelivery/internal/core/ports"
	"fooddelivery/internal/pkg/errs"
)

// maxClaimAttempts bounds the retries after a lost version check. On retry the
// reloaded order is normally assigned and the claim settles as ALREADY_CLAIMED.
const maxClaimAttempts = 3

// PartnerClaimCommandHandler arbitrates concurrent claims: exactly one partner wins
// an order, every other claimant gets ALREADY_CLAIMED.
//
// The order row is locked for the whole unit of work and written with a version
// check, so two claims never both commit, even across processes. The winner gets
// a fresh delivery code and becomes busy; the offers of the batch are settled
// after commit.
//
// Example:
//
//	cmd, _ := NewPartnerClaimCommand(orderID, partnerActor)
//	o, err := handler.Handle(ctx, cmd)
//	switch errs.CodeOf(err) {
//	case errs.CodeAlreadyClaimed:
//	    // someone else was faster
//	case errs.CodeOfferExpired:
//	    // the offer window closed
//	}
type PartnerClaimCommandHandler struct {
	uowFactory UoWFactory
	offers     ports.DispatchOfferStore
	generator  services.OTPGenerator
	clock      ports.Clock
	after      afterCommit
}

func NewPartnerClaimCommandHandler(
	uowFactory UoWFactory,
	offers ports.DispatchOfferStore,
	generator services.OTPGenerator,
	events ports.EventPublisher,
	clock ports.Clock,
	logger *slog.Logger,
) PartnerClaimCommandHandler {
	return PartnerClaimCommandHandler{
		uowFactory: uowFactory,
		offers:     offers,
		generator:  generator,
		clock:      clock,
		after:      newAfterCommit(offers, events, logger),
	}
}

func (h PartnerClaimCommandHandler) Handle(ctx context.Context, cmd PartnerClaimCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var lastErr error
	for range maxClaimAttempts {
		o, changed, err := h.claim(ctx, cmd)
		if errors.Is(err, errs.ErrConcurrentModification) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}

		if changed {
			h.after.resolveOffers(ctx, o.ID(), cmd.PartnerID())
			h.after.publish(ctx, ports.NewOrderChangedEvent(ports.EventPartnerAssigned, o, cmd.Actor(), h.lastChange(o)))
		}
		return o, nil
	}

	return nil, lastErr
}

func (h PartnerClaimCommandHandler) claim(ctx context.Context, cmd PartnerClaimCommand) (*order.Order, bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return nil, false, err
	}

	if !services.CanRequestTransition(cmd.Actor(), o, order.Assigned) {
		return nil, false, errs.NewDomainError(errs.ErrForbidden, "%s may not claim order %s", cmd.Actor(), o.ID())
	}

	if o.Status().IsTerminal() {
		return nil, false, errs.NewDomainError(errs.ErrOrderTerminal, "order is %s", o.Status())
	}

	if assigned := o.AssignedPartner(); assigned != nil {
		if assigned.IsEqual(cmd.PartnerID()) {
			return o, false, nil
		}
		return nil, false, errs.NewDomainError(errs.ErrAlreadyClaimed, "order %s is already assigned", o.ID())
	}

	now := h.clock.Now()
	if !cmd.IsDirect() {
		if err = h.checkOffer(ctx, cmd, now); err != nil {
			return nil, false, err
		}
	}

	partnerRepo := uow.PartnerRepository()
	p, err := partnerRepo.GetForUpdate(ctx, cmd.PartnerID())
	if err != nil {
		return nil, false, err
	}

	otp, err := h.generator.Generate()
	if err != nil {
		return nil, false, err
	}

	if err = o.AssignPartner(p.ID(), otp, cmd.Actor(), now); err != nil {
		return nil, false, err
	}

	if err = p.StartDelivery(o.ID()); err != nil {
		return nil, false, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, false, err
	}

	if err = partnerRepo.Update(ctx, p); err != nil {
		return nil, false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, false, err
	}

	return o, true, nil
}

func (h PartnerClaimCommandHandler) checkOffer(ctx context.Context, cmd PartnerClaimCommand, now time.Time) error {
	batch, err := h.offers.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	offer, ok := batch.OfferFor(cmd.PartnerID())
	if !ok || !offer.IsOpenAt(now) {
		return errs.NewDomainError(errs.ErrOfferExpired, "no open offer of order %s for partner %s", cmd.OrderID(), cmd.PartnerID())
	}

	return nil
}

func (h PartnerClaimCommandHandler) lastChange(o *order.Order) time.Time {
	history := o.History()
	if len(history) == 0 {
		return h.clock.Now()
	}
	return history[len(history)-1].At()
}
