package commands

import (
	"errors"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/pkg/guard"
)

var ErrPartnerClaimCommandIsNotConstructed = errors.New(
	"PartnerClaimCommand must be created via NewPartnerClaimCommand or NewDirectAssignCommand constructor",
)

// PartnerClaimCommand binds a partner to an accepted order. A claim comes from the
// partner answering an open offer; a direct assignment comes from an admin and
// does not need an offer.
type PartnerClaimCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	partnerID kernel.UUID
	actor     kernel.Actor
	direct    bool

	guard guard.ConstructorGuard
}

// NewPartnerClaimCommand is a partner accepting the offer it received.
func NewPartnerClaimCommand(orderID kernel.UUID, actor kernel.Actor) (PartnerClaimCommand, error) {
	if err := errors.Join(orderID.Validate(), actor.Validate()); err != nil {
		return PartnerClaimCommand{}, err
	}

	return PartnerClaimCommand{
		orderID:   orderID,
		partnerID: actor.ID(),
		actor:     actor,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// NewDirectAssignCommand is an admin assigning a partner without a broadcast.
func NewDirectAssignCommand(orderID, partnerID kernel.UUID, actor kernel.Actor) (PartnerClaimCommand, error) {
	if err := errors.Join(orderID.Validate(), partnerID.Validate(), actor.Validate()); err != nil {
		return PartnerClaimCommand{}, err
	}

	return PartnerClaimCommand{
		orderID:   orderID,
		partnerID: partnerID,
		actor:     actor,
		direct:    true,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c PartnerClaimCommand) Validate() error {
	return c.guard.Validate(ErrPartnerClaimCommandIsNotConstructed)
}

func (c PartnerClaimCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c PartnerClaimCommand) PartnerID() kernel.UUID {
	return c.partnerID
}

func (c PartnerClaimCommand) Actor() kernel.Actor {
	return c.actor
}

func (c PartnerClaimCommand) IsDirect() bool {
	return c.direct
}
