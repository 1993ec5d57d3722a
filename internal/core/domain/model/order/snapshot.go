package order

import (
	"errors"
	"fmt"
	"time"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/pkg/errs"
)

// Snapshot is the complete, plain state of an Order. Persistence adapters map it
// to and from their own representation; nothing else should build one.
type Snapshot struct {
	ID                    kernel.UUID
	CustomerID            kernel.UUID
	VendorID              kernel.UUID
	Items                 []Item
	Pricing               Pricing
	Status                Status
	DeliveryOTP           string
	IsOTPVerified         bool
	AssignedPartnerID     *kernel.UUID
	DeliveryAddress       kernel.Address
	PickupAddress         kernel.Address
	History               []HistoryEntry
	BroadcastCount        int
	LastBroadcastAt       *time.Time
	LastBroadcastPartners []kernel.UUID
	CreatedAt             time.Time
	UpdatedAt             time.Time
	Version               int
}

// Snapshot returns a deep copy of the order's state.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:                    o.id,
		CustomerID:            o.customerID,
		VendorID:              o.vendorID,
		Items:                 o.Items(),
		Pricing:               o.pricing,
		Status:                o.status,
		DeliveryOTP:           o.deliveryOTP,
		IsOTPVerified:         o.isOTPVerified,
		AssignedPartnerID:     o.AssignedPartner(),
		DeliveryAddress:       o.deliveryAddress,
		PickupAddress:         o.pickupAddress,
		History:               o.History(),
		BroadcastCount:        o.broadcastCount,
		LastBroadcastAt:       o.LastBroadcastAt(),
		LastBroadcastPartners: o.LastBroadcastPartners(),
		CreatedAt:             o.createdAt,
		UpdatedAt:             o.updatedAt,
		Version:               o.version,
	}
}

// RestoreOrder rebuilds an order from persisted state and re-checks the invariants
// that could be broken by a bad row.
func RestoreOrder(s Snapshot) (*Order, error) {
	var itemsErr error
	if len(s.Items) == 0 {
		itemsErr = ErrItemsAreRequired
	}

	if err := errors.Join(
		s.ID.Validate(),
		s.CustomerID.Validate(),
		s.VendorID.Validate(),
		itemsErr,
		s.Status.Validate(),
		s.Status.ValidateCanHavePartner(s.AssignedPartnerID != nil),
		s.DeliveryAddress.Validate(),
		s.PickupAddress.Validate(),
		validateHistory(s.History, s.Status),
	); err != nil {
		return nil, err
	}

	pricing, err := NewPricing(s.Items, s.Pricing.Discount(), s.Pricing.DeliveryCharge())
	if err != nil {
		return nil, err
	}
	if !pricing.Matches(s.Pricing.TotalPrice(), s.Pricing.FinalAmount()) {
		return nil, errs.NewValueIsInvalidErrorWithCause("pricing",
			fmt.Errorf("stored totals %s/%s disagree with items", s.Pricing.TotalPrice(), s.Pricing.FinalAmount()))
	}

	if s.IsOTPVerified && s.DeliveryOTP != "" {
		return nil, errs.NewValueIsInvalidErrorWithCause("deliveryOtp", errors.New("verified code must be cleared"))
	}

	o := &Order{
		id:                    s.ID,
		customerID:            s.CustomerID,
		vendorID:              s.VendorID,
		items:                 append([]Item(nil), s.Items...),
		pricing:               pricing,
		status:                s.Status,
		deliveryOTP:           s.DeliveryOTP,
		isOTPVerified:         s.IsOTPVerified,
		deliveryAddress:       s.DeliveryAddress,
		pickupAddress:         s.PickupAddress,
		history:               append([]HistoryEntry(nil), s.History...),
		broadcastCount:        s.BroadcastCount,
		lastBroadcastPartners: append([]kernel.UUID(nil), s.LastBroadcastPartners...),
		createdAt:             s.CreatedAt.UTC(),
		updatedAt:             s.UpdatedAt.UTC(),
		version:               s.Version,
		isConstructed:         true,
	}

	if s.AssignedPartnerID != nil {
		id := *s.AssignedPartnerID
		o.assignedPartnerID = &id
	}
	if s.LastBroadcastAt != nil {
		at := s.LastBroadcastAt.UTC()
		o.lastBroadcastAt = &at
	}

	return o, nil
}

// RestorePricing rebuilds stored pricing; RestoreOrder re-derives and compares it.
func RestorePricing(totalPrice, discount, deliveryCharge, finalAmount kernel.Money) Pricing {
	return Pricing{
		totalPrice:     totalPrice,
		discount:       discount,
		deliveryCharge: deliveryCharge,
		finalAmount:    finalAmount,
	}
}

// validateHistory checks that history is a contiguous path through the graph that
// ends in the current status.
func validateHistory(history []HistoryEntry, current Status) error {
	if len(history) == 0 {
		return errs.NewValueIsRequiredError("statusHistory")
	}

	if history[0].status != Pending || history[0].seq != 1 {
		return errs.NewValueIsInvalidErrorWithCause("statusHistory", errors.New("history must start with pending"))
	}

	for i := 1; i < len(history); i++ {
		prev, next := history[i-1], history[i]
		if next.seq != prev.seq+1 {
			return errs.NewValueIsInvalidErrorWithCause("statusHistory",
				fmt.Errorf("sequence gap between %d and %d", prev.seq, next.seq))
		}
		if !prev.status.CanTransitionTo(next.status) {
			return errs.NewValueIsInvalidErrorWithCause("statusHistory",
				fmt.Errorf("%s -> %s is not a legal transition", prev.status, next.status))
		}
	}

	if last := history[len(history)-1].status; last != current {
		return errs.NewValueIsInvalidErrorWithCause("statusHistory",
			fmt.Errorf("last entry %s does not match status %s", last, current))
	}

	return nil
}
