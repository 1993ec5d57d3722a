// Package memoffers keeps dispatch offers in process memory. It backs the offer
// store when the service runs without Redis and in tests.
package memoffers

import (
	"context"
	"sync"
	"time"

	"fooddelivery/internal/core/domain/model/dispatch"
	"fooddelivery/internal/core/domain/model/kernel"
)

type Store struct {
	mu      sync.Mutex
	batches map[kernel.UUID][]dispatch.Offer
}

func NewStore() *Store {
	return &Store{batches: make(map[kernel.UUID][]dispatch.Offer)}
}

func (s *Store) Replace(_ context.Context, batch *dispatch.Broadcast) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batches[batch.OrderID()] = batch.Offers()
	return nil
}

func (s *Store) Get(_ context.Context, orderID kernel.UUID) (*dispatch.Broadcast, error) {
	s.mu.Lock()
	offers := append([]dispatch.Offer(nil), s.batches[orderID]...)
	s.mu.Unlock()

	return dispatch.RestoreBroadcast(orderID, offers)
}

func (s *Store) Resolve(_ context.Context, orderID, winner kernel.UUID) error {
	return s.update(orderID, func(offer dispatch.Offer) (dispatch.Offer, error) {
		if offer.PartnerID().IsEqual(winner) {
			return offer.Resolve(dispatch.OutcomeAccepted)
		}
		return offer.Resolve(dispatch.OutcomeWithdrawn)
	})
}

func (s *Store) WithdrawAll(_ context.Context, orderID kernel.UUID) error {
	return s.update(orderID, func(offer dispatch.Offer) (dispatch.Offer, error) {
		return offer.Resolve(dispatch.OutcomeWithdrawn)
	})
}

func (s *Store) ExpireDue(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for orderID, offers := range s.batches {
		for i, offer := range offers {
			if offer.Outcome() != dispatch.OutcomePending || now.Before(offer.ExpiresAt()) {
				continue
			}
			resolved, err := offer.Resolve(dispatch.OutcomeExpired)
			if err != nil {
				return expired, err
			}
			offers[i] = resolved
			expired++
		}
		s.batches[orderID] = offers
	}
	return expired, nil
}

func (s *Store) update(orderID kernel.UUID, fn func(dispatch.Offer) (dispatch.Offer, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	offers := s.batches[orderID]
	for i, offer := range offers {
		resolved, err := fn(offer)
		if err != nil {
			return err
		}
		offers[i] = resolved
	}
	return nil
}
