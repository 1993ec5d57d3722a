package commands

import (
	"context"
	"log/slog"

	"fooddelivery/internal/core/domain/services"
	"fooddelivery/internal/core/ports"
	"fooddelivery/internal/pkg/errs"
)

// VerifyOTPCommandHandler checks a delivery code at handover. Only attempts by
// actors allowed to verify are charged against the per-order budget.
type VerifyOTPCommandHandler struct {
	uowFactory OrderUoWFactory
	verifier   services.OTPVerifier
	limiter    ports.AttemptLimiter
	clock      ports.Clock
	after      afterCommit
}

func NewVerifyOTPCommandHandler(
	uowFactory OrderUoWFactory,
	verifier services.OTPVerifier,
	limiter ports.AttemptLimiter,
	events ports.EventPublisher,
	clock ports.Clock,
	logger *slog.Logger,
) VerifyOTPCommandHandler {
	return VerifyOTPCommandHandler{
		uowFactory: uowFactory,
		verifier:   verifier,
		limiter:    limiter,
		clock:      clock,
		after:      newAfterCommit(nil, events, logger),
	}
}

func (h VerifyOTPCommandHandler) Handle(ctx context.Context, cmd VerifyOTPCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if !services.CanVerifyOTP(cmd.Actor(), o) {
		return errs.NewDomainError(errs.ErrForbidden, "%s may not verify the delivery code of order %s", cmd.Actor(), o.ID())
	}

	if h.limiter != nil && !h.limiter.Allow(cmd.OrderID().String()) {
		return errs.NewDomainError(errs.ErrTooManyAttempts, "too many delivery code attempts for order %s", cmd.OrderID())
	}

	now := h.clock.Now()
	if err = h.verifier.Verify(o, cmd.Code(), cmd.Actor(), now); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.after.publish(ctx, ports.NewOrderChangedEvent(ports.EventDeliveryCodeVerified, o, cmd.Actor(), now))
	return nil
}
