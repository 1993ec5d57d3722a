package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/domain/services"
	"fooddelivery/internal/core/ports"
	"fooddelivery/internal/pkg/errs"
)

// CreateOrderCommandHandler turns a finalized checkout into a pending order.
// Re-delivering the same checkout (same order id) returns the stored order
// instead of failing, so at-least-once producers are safe.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      ports.Clock
	after      afterCommit
}

func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	events ports.EventPublisher,
	clock ports.Clock,
	logger *slog.Logger,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		after:      newAfterCommit(nil, events, logger),
	}
}

func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	p := cmd.Payload()
	if !services.CanCreateOrder(cmd.Actor(), p.CustomerID) {
		return nil, errs.NewDomainError(errs.ErrForbidden, "%s may not create orders for customer %s", cmd.Actor(), p.CustomerID)
	}

	now := h.clock.Now()
	created, err := order.NewOrder(order.NewOrderParams{
		ID:              p.OrderID,
		CustomerID:      p.CustomerID,
		VendorID:        p.VendorID,
		Items:           p.Items,
		Discount:        p.Discount,
		DeliveryCharge:  p.DeliveryCharge,
		DeliveryAddress: p.DeliveryAddress,
		PickupAddress:   p.PickupAddress,
		CreatedBy:       cmd.Actor(),
		At:              now,
	})
	if err != nil {
		return nil, err
	}

	if p.DeclaredTotal != nil && !created.Pricing().Matches(*p.DeclaredTotal, *p.DeclaredFinal) {
		return nil, errs.NewValueIsInvalidErrorWithCause("pricing", fmt.Errorf(
			"declared %s/%s, derived %s/%s", p.DeclaredTotal, p.DeclaredFinal,
			created.Pricing().TotalPrice(), created.Pricing().FinalAmount()))
	}

	stored, inserted, err := h.insert(ctx, created)
	if errors.Is(err, errs.ErrConcurrentModification) {
		// A concurrent delivery of the same checkout inserted first.
		return h.uowFactory.Create().OrderRepository().Get(ctx, p.OrderID)
	}
	if err != nil {
		return nil, err
	}

	if inserted {
		h.after.publish(ctx, ports.NewOrderChangedEvent(ports.EventOrderCreated, stored, cmd.Actor(), now))
	}
	return stored, nil
}

// insert adds the order unless one with the same id is already stored, in which
// case the stored order is returned.
func (h CreateOrderCommandHandler) insert(ctx context.Context, created *order.Order) (*order.Order, bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	existing, err := orderRepo.Get(ctx, created.ID())
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, errs.ErrObjectNotFound):
		return nil, false, err
	}

	if err = orderRepo.Add(ctx, created); err != nil {
		return nil, false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, false, err
	}
	return created, true, nil
}
