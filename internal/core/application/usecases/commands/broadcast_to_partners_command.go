package commands

import (
	"errors"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/pkg/guard"
)

var ErrBroadcastToPartnersCommandIsNotConstructed = errors.New(
	"BroadcastToPartnersCommand must be created via NewBroadcastToPartnersCommand constructor",
)

type BroadcastToPartnersCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actor   kernel.Actor

	guard guard.ConstructorGuard
}

func NewBroadcastToPartnersCommand(orderID kernel.UUID, actor kernel.Actor) (BroadcastToPartnersCommand, error) {
	if err := errors.Join(orderID.Validate(), actor.Validate()); err != nil {
		return BroadcastToPartnersCommand{}, err
	}

	return BroadcastToPartnersCommand{
		orderID: orderID,
		actor:   actor,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c BroadcastToPartnersCommand) Validate() error {
	return c.guard.Validate(ErrBroadcastToPartnersCommandIsNotConstructed)
}

func (c BroadcastToPartnersCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c BroadcastToPartnersCommand) Actor() kernel.Actor {
	return c.actor
}
