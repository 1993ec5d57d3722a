package queries

import (
	"context"

	"fooddelivery/internal/core/ports"
	"fooddelivery/internal/pkg/errs"
)

// GetOrderQueryHandler reads an order outside any transaction. An order the actor
// may not see is reported exactly like a missing one.
type GetOrderQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetOrderQueryHandler(uowFactory ports.UnitOfWorkFactory) GetOrderQueryHandler {
	return GetOrderQueryHandler{uowFactory: uowFactory}
}

func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	o, err := h.uowFactory.Create().OrderRepository().Get(ctx, query.OrderID())
	if err != nil {
		return OrderView{}, err
	}

	visible, revealOTP := canView(query.Actor(), o)
	if !visible {
		return OrderView{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}

	return newOrderView(o, revealOTP), nil
}
