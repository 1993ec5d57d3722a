package queries

import (
	"errors"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/pkg/guard"
)

var ErrGetPartnersQueryIsNotConstructed = errors.New(
	"GetPartnersQuery must be created via NewGetPartnersQuery constructor",
)

// GetPartnersQuery lists the partner directory. Admins only.
type GetPartnersQuery struct {
	actor kernel.Actor

	guard guard.ConstructorGuard
}

func NewGetPartnersQuery(actor kernel.Actor) (GetPartnersQuery, error) {
	if err := actor.Validate(); err != nil {
		return GetPartnersQuery{}, err
	}
	return GetPartnersQuery{actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (q GetPartnersQuery) Validate() error {
	return q.guard.Validate(ErrGetPartnersQueryIsNotConstructed)
}

func (q GetPartnersQuery) Actor() kernel.Actor {
	return q.actor
}
