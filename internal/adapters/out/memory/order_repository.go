package memory

import (
	"context"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/ports"
	"fooddelivery/internal/pkg/errs"
)

func orderLockKey(id kernel.UUID) string {
	return "order:" + id.String()
}

type OrderRepository struct {
	uow *UnitOfWork
}

func (r *OrderRepository) Add(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	if _, staged := r.uow.stagedOrder(aggregate.ID()); staged {
		return errs.NewDomainError(errs.ErrConcurrentModification, "order %s already exists", aggregate.ID())
	}

	return r.uow.stageOrder(stagedOrder{snapshot: aggregate.Snapshot(), expectedVersion: -1})
}

// Update checks the aggregate's version against the committed one right away so
// that a stale writer fails before it commits anything.
func (r *OrderRepository) Update(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	loaded := aggregate.Version()
	if staged, ok := r.uow.stagedOrder(aggregate.ID()); ok {
		if staged.snapshot.Version != loaded {
			return errs.NewDomainError(errs.ErrConcurrentModification, "order %s is stale within this unit of work", aggregate.ID())
		}
	} else {
		current, err := r.uow.store.getOrder(aggregate.ID())
		if err != nil {
			return err
		}
		if current.Version() != loaded {
			return errs.NewDomainError(errs.ErrConcurrentModification,
				"order %s is at version %d, update was based on %d", aggregate.ID(), current.Version(), loaded)
		}
	}

	aggregate.IncrementVersion()
	if err := r.uow.stageOrder(stagedOrder{snapshot: aggregate.Snapshot(), expectedVersion: loaded}); err != nil {
		return err
	}
	return nil
}

func (r *OrderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	if staged, ok := r.uow.stagedOrder(id); ok {
		return order.RestoreOrder(staged.snapshot)
	}
	return r.uow.store.getOrder(id)
}

func (r *OrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	if r.uow.active {
		if err := r.uow.lock(ctx, orderLockKey(id)); err != nil {
			return nil, err
		}
	}
	return r.Get(ctx, id)
}

func (r *OrderRepository) ListActive(_ context.Context, filter ports.ActiveOrdersFilter) ([]*order.Order, error) {
	return r.uow.store.listActive(filter)
}
