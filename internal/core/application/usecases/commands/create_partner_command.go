package commands

import (
	"errors"
	"strings"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/pkg/errs"
	"fooddelivery/internal/pkg/guard"
)

var ErrCreatePartnerCommandIsNotConstructed = errors.New(
	"CreatePartnerCommand must be created via NewCreatePartnerCommand constructor",
)

// CreatePartnerCommand registers a delivery partner. The id is the partner's
// identity-provider subject so that tokens map onto the directory entry.
type CreatePartnerCommand struct { //nolint:recvcheck //using for validation
	partnerID kernel.UUID
	name      string
	location  kernel.Location
	actor     kernel.Actor

	guard guard.ConstructorGuard
}

func NewCreatePartnerCommand(
	partnerID kernel.UUID,
	name string,
	location kernel.Location,
	actor kernel.Actor,
) (CreatePartnerCommand, error) {
	var nameErr error
	if strings.TrimSpace(name) == "" {
		nameErr = errs.NewValueIsRequiredError("name")
	}

	if err := errors.Join(partnerID.Validate(), nameErr, location.Validate(), actor.Validate()); err != nil {
		return CreatePartnerCommand{}, err
	}

	return CreatePartnerCommand{
		partnerID: partnerID,
		name:      name,
		location:  location,
		actor:     actor,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c CreatePartnerCommand) Validate() error {
	return c.guard.Validate(ErrCreatePartnerCommandIsNotConstructed)
}

func (c CreatePartnerCommand) PartnerID() kernel.UUID {
	return c.partnerID
}

func (c CreatePartnerCommand) Name() string {
	return c.name
}

func (c CreatePartnerCommand) Location() kernel.Location {
	return c.location
}

func (c CreatePartnerCommand) Actor() kernel.Actor {
	return c.actor
}
