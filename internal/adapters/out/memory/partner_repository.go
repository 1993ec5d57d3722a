package memory

import (
	"context"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/partner"
	"fooddelivery/internal/pkg/errs"
)

func partnerLockKey(id kernel.UUID) string {
	return "partner:" + id.String()
}

type PartnerRepository struct {
	uow *UnitOfWork
}

func (r *PartnerRepository) Add(_ context.Context, aggregate *partner.Partner) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	if _, staged := r.uow.stagedPartner(aggregate.ID()); staged {
		return errs.NewDomainError(errs.ErrConcurrentModification, "partner %s already exists", aggregate.ID())
	}
	return r.uow.stagePartner(partnerRecordOf(aggregate), true)
}

func (r *PartnerRepository) Update(_ context.Context, aggregate *partner.Partner) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.stagePartner(partnerRecordOf(aggregate), false)
}

func (r *PartnerRepository) Get(_ context.Context, id kernel.UUID) (*partner.Partner, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	if record, ok := r.uow.stagedPartner(id); ok {
		return record.restore()
	}
	return r.uow.store.getPartner(id)
}

func (r *PartnerRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*partner.Partner, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	if r.uow.active {
		if err := r.uow.lock(ctx, partnerLockKey(id)); err != nil {
			return nil, err
		}
	}
	return r.Get(ctx, id)
}

func (r *PartnerRepository) FindAvailableNear(_ context.Context, box kernel.BoundingBox) ([]*partner.Partner, error) {
	return r.uow.store.listPartners(func(p *partner.Partner) bool {
		return p.IsEligible() && box.Contains(p.Location())
	})
}

func (r *PartnerRepository) List(_ context.Context) ([]*partner.Partner, error) {
	return r.uow.store.listPartners(nil)
}
