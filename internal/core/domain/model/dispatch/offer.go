package dispatch

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/pkg/errs"
	"fooddelivery/internal/pkg/guard"
)

// Outcome is the resolution of a single offer.
type Outcome string

const (
	OutcomePending   Outcome = "pending"
	OutcomeAccepted  Outcome = "accepted"
	OutcomeExpired   Outcome = "expired"
	OutcomeWithdrawn Outcome = "withdrawn"
)

var ErrOfferIsNotConstructed = errors.New("Offer must be created via NewOffer or RestoreOffer constructor")

// ParseOutcome converts a stored outcome back into an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(strings.ToLower(strings.TrimSpace(s)))
	switch o {
	case OutcomePending, OutcomeAccepted, OutcomeExpired, OutcomeWithdrawn:
		return o, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("outcome", fmt.Errorf("%q is not a known offer outcome", s))
	}
}

func (o Outcome) IsFinal() bool {
	return o != OutcomePending
}

// Offer is one outstanding invitation of an order to one partner. Offers are values:
// Resolve returns a copy with the new outcome.
type Offer struct {
	orderID   kernel.UUID
	partnerID kernel.UUID
	offeredAt time.Time
	expiresAt time.Time
	outcome   Outcome
	guard     guard.ConstructorGuard
}

// NewOffer creates a pending offer. expiresAt must be strictly after offeredAt.
func NewOffer(orderID, partnerID kernel.UUID, offeredAt, expiresAt time.Time) (Offer, error) {
	return RestoreOffer(orderID, partnerID, offeredAt, expiresAt, OutcomePending)
}

// RestoreOffer rebuilds an offer read back from the offer store.
func RestoreOffer(orderID, partnerID kernel.UUID, offeredAt, expiresAt time.Time, outcome Outcome) (Offer, error) {
	var windowErr error
	if !expiresAt.After(offeredAt) {
		windowErr = errs.NewValueIsInvalidErrorWithCause("expiresAt",
			fmt.Errorf("%s is not after %s", expiresAt.Format(time.RFC3339), offeredAt.Format(time.RFC3339)))
	}

	if err := errors.Join(orderID.Validate(), partnerID.Validate(), windowErr); err != nil {
		return Offer{}, err
	}

	if _, err := ParseOutcome(string(outcome)); err != nil {
		return Offer{}, err
	}

	return Offer{
		orderID:   orderID,
		partnerID: partnerID,
		offeredAt: offeredAt.UTC(),
		expiresAt: expiresAt.UTC(),
		outcome:   outcome,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (o Offer) Validate() error {
	return o.guard.Validate(ErrOfferIsNotConstructed)
}

func (o Offer) OrderID() kernel.UUID {
	return o.orderID
}

func (o Offer) PartnerID() kernel.UUID {
	return o.partnerID
}

func (o Offer) OfferedAt() time.Time {
	return o.offeredAt
}

func (o Offer) ExpiresAt() time.Time {
	return o.expiresAt
}

// Outcome returns the stored outcome. Use OutcomeAt to account for the deadline.
func (o Offer) Outcome() Outcome {
	return o.outcome
}

// OutcomeAt returns the outcome as observed at now: a pending offer past its
// deadline reads as expired even if the sweep has not marked it yet.
func (o Offer) OutcomeAt(now time.Time) Outcome {
	if o.outcome == OutcomePending && !now.Before(o.expiresAt) {
		return OutcomeExpired
	}
	return o.outcome
}

// IsOpenAt reports whether the partner can still claim with this offer.
func (o Offer) IsOpenAt(now time.Time) bool {
	return o.OutcomeAt(now) == OutcomePending
}

// Resolve returns a copy with a final outcome. Only pending offers resolve;
// resolving an already final offer returns it unchanged.
func (o Offer) Resolve(outcome Outcome) (Offer, error) {
	if err := o.Validate(); err != nil {
		return Offer{}, err
	}

	if !outcome.IsFinal() {
		return Offer{}, errs.NewValueIsInvalidErrorWithCause("outcome", errors.New("pending is not a resolution"))
	}

	if o.outcome.IsFinal() {
		return o, nil
	}

	o.outcome = outcome
	return o, nil
}

func (o Offer) String() string {
	return fmt.Sprintf("Offer(%s -> %s, %s)", o.orderID, o.partnerID, o.outcome)
}
