package queries

import (
	"context"

	"fooddelivery/internal/core/ports"
	"fooddelivery/internal/pkg/errs"
)

type GetActiveOrdersQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetActiveOrdersQueryHandler(uowFactory ports.UnitOfWorkFactory) GetActiveOrdersQueryHandler {
	return GetActiveOrdersQueryHandler{uowFactory: uowFactory}
}

// Handle returns the actor's active orders, oldest first.
func (h GetActiveOrdersQueryHandler) Handle(ctx context.Context, query GetActiveOrdersQuery) ([]OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	filter, ok := activeFilterFor(query.Actor())
	if !ok {
		return nil, errs.NewDomainError(errs.ErrForbidden, "%s may not list orders", query.Actor())
	}

	orders, err := h.uowFactory.Create().OrderRepository().ListActive(ctx, filter)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		_, revealOTP := canView(query.Actor(), o)
		views = append(views, newOrderView(o, revealOTP))
	}
	return views, nil
}
