package commands

import (
	"errors"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/pkg/errs"
	"fooddelivery/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CheckoutPayload is the finalized, already-priced checkout handed over by the
// checkout collaborator. DeclaredTotal and DeclaredFinal are optional; when set they
// must agree with the pricing derived from the items.
type CheckoutPayload struct {
	OrderID         kernel.UUID
	CustomerID      kernel.UUID
	VendorID        kernel.UUID
	Items           []order.Item
	Discount        kernel.Money
	DeliveryCharge  kernel.Money
	DeclaredTotal   *kernel.Money
	DeclaredFinal   *kernel.Money
	DeliveryAddress kernel.Address
	PickupAddress   kernel.Address
}

// CreateOrderCommand registers a new order in pending status.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(payload, customer)
//	if err != nil {
//	    return fmt.Errorf("invalid checkout: %w", err)
//	}
//	o, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	payload CheckoutPayload
	actor   kernel.Actor

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the payload shape. Business validation (pricing,
// addresses) happens when the aggregate is built.
func NewCreateOrderCommand(payload CheckoutPayload, actor kernel.Actor) (CreateOrderCommand, error) {
	var itemsErr, declaredErr error
	if len(payload.Items) == 0 {
		itemsErr = order.ErrItemsAreRequired
	}
	if (payload.DeclaredTotal == nil) != (payload.DeclaredFinal == nil) {
		declaredErr = errs.NewValueIsInvalidErrorWithCause("pricing",
			errors.New("declared total and final amount must be given together"))
	}

	if err := errors.Join(
		payload.OrderID.Validate(),
		payload.CustomerID.Validate(),
		payload.VendorID.Validate(),
		itemsErr,
		declaredErr,
		actor.Validate(),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	payload.Items = append([]order.Item(nil), payload.Items...)
	return CreateOrderCommand{
		payload: payload,
		actor:   actor,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) Payload() CheckoutPayload {
	return c.payload
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.payload.OrderID
}

func (c CreateOrderCommand) Actor() kernel.Actor {
	return c.actor
}
