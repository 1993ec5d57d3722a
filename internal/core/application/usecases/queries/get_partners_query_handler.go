package queries

import (
	"context"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/ports"
	"fooddelivery/internal/pkg/errs"
)

type GetPartnersQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetPartnersQueryHandler(uowFactory ports.UnitOfWorkFactory) GetPartnersQueryHandler {
	return GetPartnersQueryHandler{uowFactory: uowFactory}
}

// Handle returns every partner sorted by name.
func (h GetPartnersQueryHandler) Handle(ctx context.Context, query GetPartnersQuery) ([]PartnerView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	if !query.Actor().Is(kernel.RoleAdmin) {
		return nil, errs.NewDomainError(errs.ErrForbidden, "%s may not list partners", query.Actor())
	}

	partners, err := h.uowFactory.Create().PartnerRepository().List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]PartnerView, 0, len(partners))
	for _, p := range partners {
		views = append(views, PartnerViewOf(p))
	}
	return views, nil
}
