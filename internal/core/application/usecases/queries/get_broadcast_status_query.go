package queries

import (
	"errors"
	"time"

	"fooddelivery/internal/core/domain/model/dispatch"
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/pkg/guard"
)

var ErrGetBroadcastStatusQueryIsNotConstructed = errors.New(
	"GetBroadcastStatusQuery must be created via NewGetBroadcastStatusQuery constructor",
)

type GetBroadcastStatusQuery struct {
	orderID kernel.UUID
	actor   kernel.Actor

	guard guard.ConstructorGuard
}

func NewGetBroadcastStatusQuery(orderID kernel.UUID, actor kernel.Actor) (GetBroadcastStatusQuery, error) {
	if err := errors.Join(orderID.Validate(), actor.Validate()); err != nil {
		return GetBroadcastStatusQuery{}, err
	}
	return GetBroadcastStatusQuery{orderID: orderID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (q GetBroadcastStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetBroadcastStatusQueryIsNotConstructed)
}

func (q GetBroadcastStatusQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q GetBroadcastStatusQuery) Actor() kernel.Actor {
	return q.actor
}

// BroadcastStatusView describes the latest broadcast of an order. Offers are
// reported with the outcome observed at read time.
type BroadcastStatusView struct {
	OrderID   kernel.UUID
	State     dispatch.State
	Winner    *kernel.UUID
	ExpiresAt *time.Time
	Offers    []OfferView
}

type OfferView struct {
	PartnerID kernel.UUID
	OfferedAt time.Time
	ExpiresAt time.Time
	Outcome   dispatch.Outcome
}
