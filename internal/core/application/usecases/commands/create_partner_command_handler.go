package commands

import (
	"context"

	"fooddelivery/internal/core/domain/model/partner"
	"fooddelivery/internal/core/domain/services"
	"fooddelivery/internal/pkg/errs"
)

type CreatePartnerCommandHandler struct {
	uowFactory PartnerUoWFactory
}

func NewCreatePartnerCommandHandler(uowFactory PartnerUoWFactory) CreatePartnerCommandHandler {
	return CreatePartnerCommandHandler{uowFactory: uowFactory}
}

func (h CreatePartnerCommandHandler) Handle(ctx context.Context, cmd CreatePartnerCommand) (*partner.Partner, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if !services.CanManagePartner(cmd.Actor(), cmd.PartnerID()) {
		return nil, errs.NewDomainError(errs.ErrForbidden, "%s may not register partner %s", cmd.Actor(), cmd.PartnerID())
	}

	p, err := partner.NewPartner(cmd.PartnerID(), cmd.Name(), cmd.Location())
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.PartnerRepository().Add(ctx, p); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return p, nil
}
