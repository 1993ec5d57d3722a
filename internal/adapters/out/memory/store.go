// Package memory is the in-process persistence adapter. It keeps the same
// guarantees as the Postgres adapter within one process: GetForUpdate takes a
// per-aggregate lock held until the unit of work ends, writes are staged and
// applied on Commit, and order writes are checked against the stored version.
package memory

import (
	"sort"
	"sync"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/domain/model/partner"
	"fooddelivery/internal/core/ports"
	"fooddelivery/internal/pkg/errs"
)

type partnerRecord struct {
	id             kernel.UUID
	name           string
	location       kernel.Location
	available      bool
	currentOrderID *kernel.UUID
}

func partnerRecordOf(p *partner.Partner) partnerRecord {
	return partnerRecord{
		id:             p.ID(),
		name:           p.Name(),
		location:       p.Location(),
		available:      p.IsAvailable(),
		currentOrderID: p.CurrentOrder(),
	}
}

func (r partnerRecord) restore() (*partner.Partner, error) {
	return partner.RestorePartner(r.id, r.name, r.location, r.available, r.currentOrderID)
}

// Store is the committed state shared by every unit of work of one process.
type Store struct {
	mu       sync.RWMutex
	orders   map[kernel.UUID]order.Snapshot
	partners map[kernel.UUID]partnerRecord
	locks    *lockSet
}

func NewStore() *Store {
	return &Store{
		orders:   make(map[kernel.UUID]order.Snapshot),
		partners: make(map[kernel.UUID]partnerRecord),
		locks:    newLockSet(),
	}
}

func (s *Store) getOrder(id kernel.UUID) (*order.Order, error) {
	s.mu.RLock()
	snapshot, ok := s.orders[id]
	s.mu.RUnlock()

	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return order.RestoreOrder(snapshot)
}

func (s *Store) listActive(filter ports.ActiveOrdersFilter) ([]*order.Order, error) {
	s.mu.RLock()
	snapshots := make([]order.Snapshot, 0, len(s.orders))
	for _, snapshot := range s.orders {
		snapshots = append(snapshots, snapshot)
	}
	s.mu.RUnlock()

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.Before(snapshots[j].CreatedAt)
	})

	result := make([]*order.Order, 0)
	for _, snapshot := range snapshots {
		o, err := order.RestoreOrder(snapshot)
		if err != nil {
			return nil, err
		}
		if filter.Matches(o) {
			result = append(result, o)
		}
	}
	return result, nil
}

func (s *Store) getPartner(id kernel.UUID) (*partner.Partner, error) {
	s.mu.RLock()
	record, ok := s.partners[id]
	s.mu.RUnlock()

	if !ok {
		return nil, errs.NewObjectNotFoundError("partner", id.String())
	}
	return record.restore()
}

func (s *Store) listPartners(keep func(*partner.Partner) bool) ([]*partner.Partner, error) {
	s.mu.RLock()
	records := make([]partnerRecord, 0, len(s.partners))
	for _, record := range s.partners {
		records = append(records, record)
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].name == records[j].name {
			return records[i].id.String() < records[j].id.String()
		}
		return records[i].name < records[j].name
	})

	result := make([]*partner.Partner, 0, len(records))
	for _, record := range records {
		p, err := record.restore()
		if err != nil {
			return nil, err
		}
		if keep == nil || keep(p) {
			result = append(result, p)
		}
	}
	return result, nil
}

// stagedOrder is an order write waiting for Commit. expectedVersion is the stored
// version the write was based on; -1 marks an insert.
type stagedOrder struct {
	snapshot        order.Snapshot
	expectedVersion int
}

// apply validates every staged write against the committed state and applies all
// of them, or none.
func (s *Store) apply(orders []stagedOrder, partners []partnerRecord, newPartners map[kernel.UUID]bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, staged := range orders {
		current, exists := s.orders[staged.snapshot.ID]
		switch {
		case staged.expectedVersion < 0 && exists:
			return errs.NewDomainError(errs.ErrConcurrentModification, "order %s already exists", staged.snapshot.ID)
		case staged.expectedVersion >= 0 && !exists:
			return errs.NewObjectNotFoundError("order", staged.snapshot.ID.String())
		case staged.expectedVersion >= 0 && current.Version != staged.expectedVersion:
			return errs.NewDomainError(errs.ErrConcurrentModification,
				"order %s changed from version %d to %d", staged.snapshot.ID, staged.expectedVersion, current.Version)
		}
	}

	for _, record := range partners {
		_, exists := s.partners[record.id]
		if newPartners[record.id] && exists {
			return errs.NewDomainError(errs.ErrConcurrentModification, "partner %s already exists", record.id)
		}
		if !newPartners[record.id] && !exists {
			return errs.NewObjectNotFoundError("partner", record.id.String())
		}
	}

	for _, staged := range orders {
		s.orders[staged.snapshot.ID] = staged.snapshot
	}
	for _, record := range partners {
		s.partners[record.id] = record
	}
	return nil
}
