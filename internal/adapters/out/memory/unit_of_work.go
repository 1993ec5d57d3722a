package memory

import (
	"context"
	"errors"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/ports"
)

var ErrNoActiveTransaction = errors.New("no active transaction")

// UnitOfWorkFactory creates units of work over one shared Store.
type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// UnitOfWork stages writes until Commit and holds the locks taken by
// GetForUpdate until Commit or Rollback. Without Begin, reads take no locks and
// writes are applied immediately.
type UnitOfWork struct {
	store  *Store
	active bool
	held   []string

	orders      []stagedOrder
	orderIndex  map[kernel.UUID]int
	partners    []partnerRecord
	partnerIdx  map[kernel.UUID]int
	newPartners map[kernel.UUID]bool
}

func (uow *UnitOfWork) Begin(_ context.Context) error {
	if uow.active {
		return nil
	}
	uow.active = true
	uow.reset()
	return nil
}

func (uow *UnitOfWork) Commit(_ context.Context) error {
	if !uow.active {
		return ErrNoActiveTransaction
	}
	defer uow.end()

	return uow.store.apply(uow.orders, uow.partners, uow.newPartners)
}

// Rollback drops staged writes and releases locks. After Commit it does nothing.
func (uow *UnitOfWork) Rollback(_ context.Context) error {
	if !uow.active {
		return nil
	}
	uow.end()
	return nil
}

func (uow *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &OrderRepository{uow: uow}
}

func (uow *UnitOfWork) PartnerRepository() ports.PartnerRepository {
	return &PartnerRepository{uow: uow}
}

func (uow *UnitOfWork) reset() {
	uow.orders = nil
	uow.orderIndex = make(map[kernel.UUID]int)
	uow.partners = nil
	uow.partnerIdx = make(map[kernel.UUID]int)
	uow.newPartners = make(map[kernel.UUID]bool)
}

func (uow *UnitOfWork) end() {
	for i := len(uow.held) - 1; i >= 0; i-- {
		uow.store.locks.Release(uow.held[i])
	}
	uow.held = nil
	uow.active = false
	uow.reset()
}

func (uow *UnitOfWork) lock(ctx context.Context, key string) error {
	for _, k := range uow.held {
		if k == key {
			return nil
		}
	}
	if err := uow.store.locks.Acquire(ctx, key); err != nil {
		return err
	}
	uow.held = append(uow.held, key)
	return nil
}

func (uow *UnitOfWork) stageOrder(staged stagedOrder) error {
	if !uow.active {
		return uow.store.apply([]stagedOrder{staged}, nil, nil)
	}

	if i, ok := uow.orderIndex[staged.snapshot.ID]; ok {
		staged.expectedVersion = uow.orders[i].expectedVersion
		uow.orders[i] = staged
		return nil
	}
	uow.orderIndex[staged.snapshot.ID] = len(uow.orders)
	uow.orders = append(uow.orders, staged)
	return nil
}

func (uow *UnitOfWork) stagePartner(record partnerRecord, isNew bool) error {
	if !uow.active {
		return uow.store.apply(nil, []partnerRecord{record}, map[kernel.UUID]bool{record.id: isNew})
	}

	if i, ok := uow.partnerIdx[record.id]; ok {
		uow.partners[i] = record
		return nil
	}
	if isNew {
		uow.newPartners[record.id] = true
	}
	uow.partnerIdx[record.id] = len(uow.partners)
	uow.partners = append(uow.partners, record)
	return nil
}

func (uow *UnitOfWork) stagedOrder(id kernel.UUID) (stagedOrder, bool) {
	if !uow.active {
		return stagedOrder{}, false
	}
	i, ok := uow.orderIndex[id]
	if !ok {
		return stagedOrder{}, false
	}
	return uow.orders[i], true
}

func (uow *UnitOfWork) stagedPartner(id kernel.UUID) (partnerRecord, bool) {
	if !uow.active {
		return partnerRecord{}, false
	}
	i, ok := uow.partnerIdx[id]
	if !ok {
		return partnerRecord{}, false
	}
	return uow.partners[i], true
}
