package dispatch

import (
	"errors"
	"time"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/pkg/errs"
)

// State is the aggregate view of one broadcast batch.
type State string

const (
	// StateNone means the order has never been broadcast, or its batch was discarded.
	StateNone      State = "none"
	StateOpen      State = "open"
	StateExpired   State = "expired"
	StateResolved  State = "resolved"
	StateWithdrawn State = "withdrawn"
)

var ErrTimeoutIsRequired = errs.NewValueIsRequiredError("timeout")

// Broadcast is the batch of offers created for one order at one point in time. All
// offers share the same deadline and are visible to every partner at once.
type Broadcast struct {
	orderID kernel.UUID
	offers  []Offer
}

// NewBroadcast creates one pending offer per partner with expiresAt = now + timeout.
// Duplicate partner ids collapse into one offer.
func NewBroadcast(orderID kernel.UUID, partners []kernel.UUID, now time.Time, timeout time.Duration) (*Broadcast, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	if timeout <= 0 {
		return nil, ErrTimeoutIsRequired
	}

	if len(partners) == 0 {
		return nil, errs.NewDomainError(errs.ErrNoPartnerAvailable, "no eligible delivery partner for order %s", orderID)
	}

	expiresAt := now.Add(timeout)
	seen := make(map[kernel.UUID]struct{}, len(partners))
	offers := make([]Offer, 0, len(partners))
	for _, partnerID := range partners {
		if _, ok := seen[partnerID]; ok {
			continue
		}
		seen[partnerID] = struct{}{}

		offer, err := NewOffer(orderID, partnerID, now, expiresAt)
		if err != nil {
			return nil, err
		}
		offers = append(offers, offer)
	}

	return &Broadcast{orderID: orderID, offers: offers}, nil
}

// RestoreBroadcast groups offers read back from the offer store. Every offer must
// belong to orderID.
func RestoreBroadcast(orderID kernel.UUID, offers []Offer) (*Broadcast, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	for _, offer := range offers {
		if err := offer.Validate(); err != nil {
			return nil, err
		}
		if !offer.OrderID().IsEqual(orderID) {
			return nil, errs.NewValueIsInvalidErrorWithCause("offers", errors.New("offer belongs to another order"))
		}
	}

	return &Broadcast{orderID: orderID, offers: append([]Offer(nil), offers...)}, nil
}

func (b *Broadcast) OrderID() kernel.UUID {
	return b.orderID
}

// Offers returns a copy of the batch.
func (b *Broadcast) Offers() []Offer {
	return append([]Offer(nil), b.offers...)
}

// PartnerIDs lists the invited partners in offer order.
func (b *Broadcast) PartnerIDs() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(b.offers))
	for _, offer := range b.offers {
		ids = append(ids, offer.PartnerID())
	}
	return ids
}

// ExpiresAt returns the shared deadline, or the zero time for an empty batch.
func (b *Broadcast) ExpiresAt() time.Time {
	var latest time.Time
	for _, offer := range b.offers {
		if offer.ExpiresAt().After(latest) {
			latest = offer.ExpiresAt()
		}
	}
	return latest
}

// OfferFor returns the partner's offer from this batch.
func (b *Broadcast) OfferFor(partnerID kernel.UUID) (Offer, bool) {
	for _, offer := range b.offers {
		if offer.PartnerID().IsEqual(partnerID) {
			return offer, true
		}
	}
	return Offer{}, false
}

// Winner returns the partner whose offer was accepted.
func (b *Broadcast) Winner() (kernel.UUID, bool) {
	for _, offer := range b.offers {
		if offer.Outcome() == OutcomeAccepted {
			return offer.PartnerID(), true
		}
	}
	return kernel.UUID{}, false
}

// State derives the batch state as observed at now:
//   - resolved once any offer was accepted
//   - open while at least one offer is pending and before the deadline
//   - withdrawn when the batch was invalidated before anyone won
//   - expired otherwise
func (b *Broadcast) State(now time.Time) State {
	if len(b.offers) == 0 {
		return StateNone
	}

	if _, ok := b.Winner(); ok {
		return StateResolved
	}

	withdrawn := false
	for _, offer := range b.offers {
		switch offer.OutcomeAt(now) {
		case OutcomePending:
			return StateOpen
		case OutcomeWithdrawn:
			withdrawn = true
		}
	}

	if withdrawn {
		return StateWithdrawn
	}
	return StateExpired
}
