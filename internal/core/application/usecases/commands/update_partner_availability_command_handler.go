package commands

import (
	"context"

	"fooddelivery/internal/core/domain/model/partner"
	"fooddelivery/internal/core/domain/services"
	"fooddelivery/internal/pkg/errs"
)

// UpdatePartnerAvailabilityCommandHandler lets a partner go on or off shift. Going
// offline mid-delivery keeps the current order; the partner is released when the
// order ends.
type UpdatePartnerAvailabilityCommandHandler struct {
	uowFactory PartnerUoWFactory
}

func NewUpdatePartnerAvailabilityCommandHandler(uowFactory PartnerUoWFactory) UpdatePartnerAvailabilityCommandHandler {
	return UpdatePartnerAvailabilityCommandHandler{uowFactory: uowFactory}
}

func (h UpdatePartnerAvailabilityCommandHandler) Handle(
	ctx context.Context,
	cmd UpdatePartnerAvailabilityCommand,
) (*partner.Partner, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if !services.CanManagePartner(cmd.Actor(), cmd.PartnerID()) {
		return nil, errs.NewDomainError(errs.ErrForbidden, "%s may not manage partner %s", cmd.Actor(), cmd.PartnerID())
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	partnerRepo := uow.PartnerRepository()
	p, err := partnerRepo.GetForUpdate(ctx, cmd.PartnerID())
	if err != nil {
		return nil, err
	}

	p.SetAvailability(cmd.Available())
	if loc := cmd.Location(); loc != nil {
		if err = p.MoveTo(*loc); err != nil {
			return nil, err
		}
	}

	if err = partnerRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return p, nil
}
