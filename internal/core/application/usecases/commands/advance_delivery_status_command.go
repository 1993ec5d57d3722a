package commands

import (
	"errors"
	"fmt"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/pkg/errs"
	"fooddelivery/internal/pkg/guard"
)

var ErrAdvanceDeliveryStatusCommandIsNotConstructed = errors.New(
	"AdvanceDeliveryStatusCommand must be created via NewAdvanceDeliveryStatusCommand constructor",
)

// AdvanceDeliveryStatusCommand reports delivery progress: pickedUp, onTheWay or delivered.
type AdvanceDeliveryStatusCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	status  order.Status
	actor   kernel.Actor

	guard guard.ConstructorGuard
}

func NewAdvanceDeliveryStatusCommand(orderID kernel.UUID, status order.Status, actor kernel.Actor) (AdvanceDeliveryStatusCommand, error) {
	var statusErr error
	if status != order.PickedUp && status != order.OnTheWay && status != order.Delivered {
		statusErr = errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%s is not a delivery progress status", status))
	}

	if err := errors.Join(orderID.Validate(), statusErr, actor.Validate()); err != nil {
		return AdvanceDeliveryStatusCommand{}, err
	}

	return AdvanceDeliveryStatusCommand{
		orderID: orderID,
		status:  status,
		actor:   actor,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c AdvanceDeliveryStatusCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceDeliveryStatusCommandIsNotConstructed)
}

func (c AdvanceDeliveryStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c AdvanceDeliveryStatusCommand) Status() order.Status {
	return c.status
}

func (c AdvanceDeliveryStatusCommand) Actor() kernel.Actor {
	return c.actor
}
