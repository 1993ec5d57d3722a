package services

import (
	"errors"
	"sort"
	"time"

	"fooddelivery/internal/core/domain/model/dispatch"
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/domain/model/partner"
	"fooddelivery/internal/pkg/errs"
)

var (
	ErrRadiusIsRequired  = errs.NewValueIsRequiredError("serviceRadiusKm")
	ErrTimeoutIsRequired = errs.NewValueIsRequiredError("broadcastTimeout")
)

// Broadcaster is a domain service that fans an accepted order out to every eligible
// delivery partner at once.
//
// Business rules:
//   - only accepted, unassigned orders are broadcast
//   - a partner is eligible when available, idle and within the service radius of
//     the pickup address
//   - every offer of one broadcast shares the same deadline; there is no priority
//     among partners, the first valid claim wins
//   - an empty eligible set fails with ErrNoPartnerAvailable and leaves the order as is
//
// Example usage:
//
//	b, _ := services.NewBroadcaster(5, 30*time.Second)
//	batch, err := b.Broadcast(o, candidates, time.Now())
//	if errors.Is(err, errs.ErrNoPartnerAvailable) {
//	    // retry later with a fresh broadcast
//	}
type Broadcaster struct {
	radiusKm float64
	timeout  time.Duration
}

// NewBroadcaster creates a Broadcaster for the given service radius and offer timeout.
func NewBroadcaster(radiusKm float64, timeout time.Duration) (Broadcaster, error) {
	var radiusErr, timeoutErr error
	if radiusKm <= 0 {
		radiusErr = ErrRadiusIsRequired
	}
	if timeout <= 0 {
		timeoutErr = ErrTimeoutIsRequired
	}
	if err := errors.Join(radiusErr, timeoutErr); err != nil {
		return Broadcaster{}, err
	}

	return Broadcaster{radiusKm: radiusKm, timeout: timeout}, nil
}

// RadiusKm is the service radius; repositories use it for their bounding-box prefilter.
func (b Broadcaster) RadiusKm() float64 {
	return b.radiusKm
}

func (b Broadcaster) Timeout() time.Duration {
	return b.timeout
}

// Broadcast selects the eligible partners among candidates, records the broadcast on
// the order and returns the new offer batch. Candidates come from the partner
// directory and may include partners that are busy, offline or too far away.
//
// Eligible partners are ordered by distance to the pickup address. The order only
// affects presentation.
func (b Broadcaster) Broadcast(o *order.Order, candidates []*partner.Partner, now time.Time) (*dispatch.Broadcast, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	if err := o.ValidateBroadcast(); err != nil {
		return nil, err
	}

	eligible, err := b.eligible(o.PickupAddress().Location(), candidates)
	if err != nil {
		return nil, err
	}

	if len(eligible) == 0 {
		return nil, errs.NewDomainError(errs.ErrNoPartnerAvailable, "no eligible delivery partner for order %s", o.ID())
	}

	batch, err := dispatch.NewBroadcast(o.ID(), eligible, now, b.timeout)
	if err != nil {
		return nil, err
	}

	if err := o.RecordBroadcast(batch.PartnerIDs(), now); err != nil {
		return nil, err
	}

	return batch, nil
}

func (b Broadcaster) eligible(pickup kernel.Location, candidates []*partner.Partner) ([]kernel.UUID, error) {
	type ranked struct {
		id       kernel.UUID
		distance float64
	}

	var found []ranked
	for _, p := range candidates {
		if err := p.Validate(); err != nil {
			return nil, err
		}

		if !p.IsEligible() {
			continue
		}

		distance, err := p.DistanceKm(pickup)
		if err != nil {
			return nil, err
		}

		if distance > b.radiusKm {
			continue
		}

		found = append(found, ranked{id: p.ID(), distance: distance})
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].distance < found[j].distance
	})

	ids := make([]kernel.UUID, 0, len(found))
	for _, r := range found {
		ids = append(ids, r.id)
	}
	return ids, nil
}
