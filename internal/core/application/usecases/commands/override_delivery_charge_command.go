package commands

import (
	"errors"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/pkg/guard"
)

var ErrOverrideDeliveryChargeCommandIsNotConstructed = errors.New(
	"OverrideDeliveryChargeCommand must be created via NewOverrideDeliveryChargeCommand constructor",
)

type OverrideDeliveryChargeCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	charge  kernel.Money
	actor   kernel.Actor

	guard guard.ConstructorGuard
}

func NewOverrideDeliveryChargeCommand(
	orderID kernel.UUID,
	charge kernel.Money,
	actor kernel.Actor,
) (OverrideDeliveryChargeCommand, error) {
	if err := errors.Join(orderID.Validate(), actor.Validate()); err != nil {
		return OverrideDeliveryChargeCommand{}, err
	}

	return OverrideDeliveryChargeCommand{
		orderID: orderID,
		charge:  charge,
		actor:   actor,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c OverrideDeliveryChargeCommand) Validate() error {
	return c.guard.Validate(ErrOverrideDeliveryChargeCommandIsNotConstructed)
}

func (c OverrideDeliveryChargeCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c OverrideDeliveryChargeCommand) Charge() kernel.Money {
	return c.charge
}

func (c OverrideDeliveryChargeCommand) Actor() kernel.Actor {
	return c.actor
}
