package order

import (
	"errors"
	"fmt"
	"time"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder. This ensures all orders are properly validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

	// ErrItemsAreRequired is returned when checkout hands over an empty basket.
	ErrItemsAreRequired = errs.NewValueIsRequiredError("items")
)

// Order is the aggregate root of one customer purchase, from checkout to delivery
// or cancellation. It is the single source of truth for status, partner assignment
// and the delivery code.
//
// Order follows these invariants:
//   - id, customer, vendor and both address snapshots never change after creation
//   - status only moves along the legal graph (see Status); every move appends
//     exactly one history entry in the same method call
//   - a delivery partner is bound exactly once, by AssignPartner, and never replaced
//   - Delivered requires a verified delivery code; a verified code is cleared
//   - pricing.finalAmount = totalPrice - discount + deliveryCharge at all times
//
// Fields are private; state changes go through AttemptTransition, AssignPartner,
// VerifyDeliveryCode, RecordBroadcast and OverrideDeliveryCharge only.
type Order struct {
	id         kernel.UUID
	customerID kernel.UUID
	vendorID   kernel.UUID

	items   []Item
	pricing Pricing

	status            Status
	deliveryOTP       string
	isOTPVerified     bool
	assignedPartnerID *kernel.UUID

	deliveryAddress kernel.Address
	pickupAddress   kernel.Address

	history []HistoryEntry

	// last broadcast metadata, kept for audit and for the broadcast status view
	broadcastCount        int
	lastBroadcastAt       *time.Time
	lastBroadcastPartners []kernel.UUID

	createdAt time.Time
	updatedAt time.Time

	// version is the persisted optimistic-concurrency token
	version int

	// isConstructed ensures the order was created via a constructor
	isConstructed bool
}

// NewOrderParams is the finalized checkout payload.
type NewOrderParams struct {
	ID              kernel.UUID
	CustomerID      kernel.UUID
	VendorID        kernel.UUID
	Items           []Item
	Discount        kernel.Money
	DeliveryCharge  kernel.Money
	DeliveryAddress kernel.Address
	PickupAddress   kernel.Address
	CreatedBy       kernel.Actor
	At              time.Time
}

// NewOrder creates an order in Pending status with its first history entry.
//
// Pricing is derived from the items, discount and delivery charge; the caller is
// responsible for comparing it against checkout's declared totals (see Pricing.Matches).
//
// Example:
//
//	o, err := order.NewOrder(order.NewOrderParams{
//	    ID:              kernel.NewUUID(),
//	    CustomerID:      customerID,
//	    VendorID:        vendorID,
//	    Items:           items,
//	    Discount:        kernel.ZeroMoney,
//	    DeliveryCharge:  kernel.MustMoney("2.50"),
//	    DeliveryAddress: dropOff,
//	    PickupAddress:   restaurant,
//	    CreatedBy:       customer,
//	    At:              time.Now(),
//	})
func NewOrder(p NewOrderParams) (*Order, error) {
	var itemsErr error
	if len(p.Items) == 0 {
		itemsErr = ErrItemsAreRequired
	}

	if err := errors.Join(
		p.ID.Validate(),
		p.CustomerID.Validate(),
		p.VendorID.Validate(),
		itemsErr,
		p.DeliveryAddress.Validate(),
		p.PickupAddress.Validate(),
		p.CreatedBy.Validate(),
	); err != nil {
		return nil, err
	}

	pricing, err := NewPricing(p.Items, p.Discount, p.DeliveryCharge)
	if err != nil {
		return nil, err
	}

	at := p.At.UTC()
	items := make([]Item, len(p.Items))
	copy(items, p.Items)

	return &Order{
		id:              p.ID,
		customerID:      p.CustomerID,
		vendorID:        p.VendorID,
		items:           items,
		pricing:         pricing,
		status:          Pending,
		deliveryAddress: p.DeliveryAddress,
		pickupAddress:   p.PickupAddress,
		history:         []HistoryEntry{{seq: 1, status: Pending, actor: p.CreatedBy, at: at}},
		createdAt:       at,
		updatedAt:       at,
		isConstructed:   true,
	}, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by their identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

func (o *Order) VendorID() kernel.UUID {
	return o.vendorID
}

// Items returns a copy of the order lines in checkout order.
func (o *Order) Items() []Item {
	out := make([]Item, len(o.items))
	copy(out, o.items)
	return out
}

func (o *Order) Pricing() Pricing {
	return o.pricing
}

func (o *Order) Status() Status {
	return o.status
}

// DeliveryOTP returns the outstanding delivery code, or "" when none is issued
// or the code was already consumed.
func (o *Order) DeliveryOTP() string {
	return o.deliveryOTP
}

func (o *Order) IsOTPVerified() bool {
	return o.isOTPVerified
}

// AssignedPartner returns the bound partner, or nil before the claim.
func (o *Order) AssignedPartner() *kernel.UUID {
	if o.assignedPartnerID == nil {
		return nil
	}
	id := *o.assignedPartnerID
	return &id
}

func (o *Order) DeliveryAddress() kernel.Address {
	return o.deliveryAddress
}

func (o *Order) PickupAddress() kernel.Address {
	return o.pickupAddress
}

// History returns a copy of the status history, oldest first.
func (o *Order) History() []HistoryEntry {
	out := make([]HistoryEntry, len(o.history))
	copy(out, o.history)
	return out
}

func (o *Order) BroadcastCount() int {
	return o.broadcastCount
}

func (o *Order) LastBroadcastAt() *time.Time {
	if o.lastBroadcastAt == nil {
		return nil
	}
	at := *o.lastBroadcastAt
	return &at
}

func (o *Order) LastBroadcastPartners() []kernel.UUID {
	out := make([]kernel.UUID, len(o.lastBroadcastPartners))
	copy(out, o.lastBroadcastPartners)
	return out
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// Version returns the optimistic-concurrency token the order was loaded with.
func (o *Order) Version() int {
	return o.version
}

// IncrementVersion is called by repositories after a successful conditional write.
func (o *Order) IncrementVersion() {
	o.version++
}

// IsOwnedBy reports whether the actor is the order's customer or vendor.
func (o *Order) IsOwnedBy(actor kernel.Actor) bool {
	switch actor.Role() {
	case kernel.RoleCustomer:
		return o.customerID.IsEqual(actor.ID())
	case kernel.RoleVendor:
		return o.vendorID.IsEqual(actor.ID())
	case kernel.RoleDeliveryPartner:
		return actor.ID().EqualPtr(o.assignedPartnerID)
	default:
		return false
	}
}

// AttemptTransition moves the order to target if ValidateTransition allows it.
//
// Returns:
//   - (false, nil) for the idempotent no-op (target == current status): nothing changes
//   - (true, nil) after the status, history and updatedAt were changed together
//   - (false, err) with a DomainError; the order is left untouched
//
// Assigned is not reachable here: binding a partner is AssignPartner's job.
//
// Example:
//
//	changed, err := o.AttemptTransition(order.Accepted, vendor, time.Now(), order.TransitionOptions{})
//	switch {
//	case errors.Is(err, errs.ErrOrderTerminal):
//	    // already rejected or canceled
//	case err != nil:
//	    // illegal jump
//	case !changed:
//	    // duplicate request
//	}
func (o *Order) AttemptTransition(target Status, actor kernel.Actor, at time.Time, opts TransitionOptions) (bool, error) {
	if err := o.Validate(); err != nil {
		return false, err
	}

	if err := actor.Validate(); err != nil {
		return false, err
	}

	if err := ValidateTransition(o.status, target, o.isOTPVerified, actor, opts); err != nil {
		return false, err
	}

	if target == o.status {
		return false, nil
	}

	if target == Assigned {
		return false, errs.NewDomainError(errs.ErrIllegalTransition, "a delivery partner can only be assigned through a claim")
	}

	o.apply(target, actor, at)
	if target == Canceled {
		o.deliveryOTP = ""
	}
	return true, nil
}

// AssignPartner binds the claiming partner, moves the order to Assigned and stores
// the freshly generated delivery code.
//
// This method enforces the following business rules:
//   - terminal orders fail with ErrOrderTerminal
//   - an order that already has a partner fails with ErrAlreadyClaimed
//   - only Accepted orders can be claimed (ErrIllegalTransition otherwise)
//
// It is the in-memory half of the claim; the Claim Arbiter persists it with a
// version-checked write so that only one concurrent claimant commits.
func (o *Order) AssignPartner(partnerID kernel.UUID, otp string, actor kernel.Actor, at time.Time) error {
	if err := errors.Join(o.Validate(), partnerID.Validate(), actor.Validate()); err != nil {
		return err
	}

	if o.status.IsTerminal() {
		return errs.NewDomainError(errs.ErrOrderTerminal, "order is %s", o.status)
	}

	if o.assignedPartnerID != nil {
		return errs.NewDomainError(errs.ErrAlreadyClaimed, "order %s is already assigned", o.id)
	}

	if o.status != Accepted {
		return errs.NewDomainError(errs.ErrIllegalTransition, "cannot assign a partner to a %s order", o.status)
	}

	if otp == "" {
		return errs.NewValueIsRequiredError("deliveryOtp")
	}

	id := partnerID
	o.assignedPartnerID = &id
	o.deliveryOTP = otp
	o.isOTPVerified = false
	o.apply(Assigned, actor, at)
	return nil
}

// VerifyDeliveryCode consumes the delivery code.
//
// Returns:
//   - nil when submitted matches (whitespace-trimmed, exact); the code is cleared and
//     IsOTPVerified becomes true
//   - ErrOrderTerminal for terminal orders
//   - ErrOtpMismatch when the code differs, none was issued, or it was already used;
//     the order is left untouched
//
// Verification is not a transition and appends no history entry.
func (o *Order) VerifyDeliveryCode(submitted string, at time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}

	if o.status.IsTerminal() {
		return errs.NewDomainError(errs.ErrOrderTerminal, "order is %s", o.status)
	}

	if o.isOTPVerified || !codesMatch(o.deliveryOTP, submitted) {
		return errs.NewDomainError(errs.ErrOtpMismatch, "delivery code does not match")
	}

	o.isOTPVerified = true
	o.deliveryOTP = ""
	o.updatedAt = at.UTC()
	return nil
}

// RecordBroadcast stamps the partner set of a new broadcast. Only Accepted,
// unassigned orders can be broadcast.
func (o *Order) RecordBroadcast(partners []kernel.UUID, at time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}

	if err := o.ValidateBroadcast(); err != nil {
		return err
	}

	if len(partners) == 0 {
		return errs.NewDomainError(errs.ErrNoPartnerAvailable, "no eligible delivery partner for order %s", o.id)
	}

	stamped := at.UTC()
	o.broadcastCount++
	o.lastBroadcastAt = &stamped
	o.lastBroadcastPartners = append([]kernel.UUID(nil), partners...)
	o.updatedAt = stamped
	return nil
}

// ValidateBroadcast checks the broadcast preconditions without side effects.
func (o *Order) ValidateBroadcast() error {
	switch {
	case o.status.IsTerminal():
		return errs.NewDomainError(errs.ErrOrderTerminal, "order is %s", o.status)
	case o.assignedPartnerID != nil:
		return errs.NewDomainError(errs.ErrAlreadyClaimed, "order %s is already assigned", o.id)
	case o.status != Accepted:
		return errs.NewDomainError(errs.ErrIllegalTransition, "only accepted orders can be broadcast, order is %s", o.status)
	default:
		return nil
	}
}

// OverrideDeliveryCharge is the explicit pricing adjustment: it replaces the
// delivery charge and recomputes the final amount. Allowed until pickup.
func (o *Order) OverrideDeliveryCharge(charge kernel.Money, at time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}

	if o.status.IsTerminal() {
		return errs.NewDomainError(errs.ErrOrderTerminal, "order is %s", o.status)
	}

	if o.status != Pending && o.status != Accepted && o.status != Assigned {
		return errs.NewDomainError(errs.ErrIllegalTransition, "delivery charge is locked once the order is %s", o.status)
	}

	pricing, err := o.pricing.withDeliveryCharge(charge)
	if err != nil {
		return err
	}

	o.pricing = pricing
	o.updatedAt = at.UTC()
	return nil
}

// apply is the only place that writes status: status, history and updatedAt
// change together.
func (o *Order) apply(status Status, actor kernel.Actor, at time.Time) {
	stamped := at.UTC()
	o.status = status
	o.history = append(o.history, HistoryEntry{
		seq:    len(o.history) + 1,
		status: status,
		actor:  actor,
		at:     stamped,
	})
	o.updatedAt = stamped
}

func (o *Order) String() string {
	return fmt.Sprintf("Order(%s, %s)", o.id, o.status)
}
