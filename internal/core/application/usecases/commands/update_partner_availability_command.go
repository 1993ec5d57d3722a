package commands

import (
	"errors"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/pkg/guard"
)

var ErrUpdatePartnerAvailabilityCommandIsNotConstructed = errors.New(
	"UpdatePartnerAvailabilityCommand must be created via NewUpdatePartnerAvailabilityCommand constructor",
)

// UpdatePartnerAvailabilityCommand toggles whether a partner receives offers and,
// optionally, reports the partner's current position.
type UpdatePartnerAvailabilityCommand struct { //nolint:recvcheck //using for validation
	partnerID kernel.UUID
	available bool
	location  *kernel.Location
	actor     kernel.Actor

	guard guard.ConstructorGuard
}

func NewUpdatePartnerAvailabilityCommand(
	partnerID kernel.UUID,
	available bool,
	location *kernel.Location,
	actor kernel.Actor,
) (UpdatePartnerAvailabilityCommand, error) {
	var locationErr error
	if location != nil {
		locationErr = location.Validate()
	}

	if err := errors.Join(partnerID.Validate(), locationErr, actor.Validate()); err != nil {
		return UpdatePartnerAvailabilityCommand{}, err
	}

	return UpdatePartnerAvailabilityCommand{
		partnerID: partnerID,
		available: available,
		location:  location,
		actor:     actor,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c UpdatePartnerAvailabilityCommand) Validate() error {
	return c.guard.Validate(ErrUpdatePartnerAvailabilityCommandIsNotConstructed)
}

func (c UpdatePartnerAvailabilityCommand) PartnerID() kernel.UUID {
	return c.partnerID
}

func (c UpdatePartnerAvailabilityCommand) Available() bool {
	return c.available
}

func (c UpdatePartnerAvailabilityCommand) Location() *kernel.Location {
	return c.location
}

func (c UpdatePartnerAvailabilityCommand) Actor() kernel.Actor {
	return c.actor
}
