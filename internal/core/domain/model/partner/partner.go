package partner

import (
	"errors"
	"fmt"
	"strings"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/pkg/errs"
	"fooddelivery/internal/pkg/guard"
)

var (
	// ErrNameIsRequired is returned when attempting to create a partner without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrPartnerIsNotConstructed is returned when using an improperly initialized Partner.
	ErrPartnerIsNotConstructed = errors.New("Partner must be created via NewPartner or RestorePartner constructor")
)

// Partner represents a delivery partner in the directory.
// It is an aggregate root that tracks where the partner is, whether they accept work
// and which order they are currently delivering.
//
// Business rules:
//   - Partner must have a valid UUID, a non-empty name and a valid location
//   - A partner is eligible for broadcasts only while available and idle
//   - StartDelivery binds exactly one order; FinishDelivery releases it
//
// Example usage:
//
//	location, _ := kernel.NewLocation(52.52, 13.40)
//	p, err := partner.NewPartner(kernel.NewUUID(), "Jo", location)
//	if err != nil {
//	    // Handle construction error
//	}
//	// Partner starts available and idle
type Partner struct {
	// id uniquely identifies the partner
	id kernel.UUID
	// name is the display name shown to vendors and customers
	name string
	// location is the last reported position
	location kernel.Location
	// available is the partner's own on/off switch
	available bool
	// currentOrderID is the order being delivered, nil when idle
	currentOrderID *kernel.UUID
	// guard ensures the partner was properly constructed
	guard guard.ConstructorGuard
}

// NewPartner creates an available, idle partner.
//
// Parameters:
//   - id: Unique identifier, usually the identity provider's subject
//   - name: Display name (must be non-empty after trimming)
//   - location: Initial position (must be a valid location)
//
// Returns:
//   - *Partner: A partner ready to receive broadcasts
//   - error: Aggregated validation error for every invalid parameter
func NewPartner(id kernel.UUID, name string, location kernel.Location) (*Partner, error) {
	p := &Partner{
		available: true,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		p.setID(id),
		p.setName(name),
		p.setLocation(location),
	); err != nil {
		return nil, err
	}

	return p, nil
}

// RestorePartner reconstructs a Partner from persistent storage, including the
// order it is currently delivering.
func RestorePartner(
	id kernel.UUID,
	name string,
	location kernel.Location,
	available bool,
	currentOrderID *kernel.UUID,
) (*Partner, error) {
	p := &Partner{
		available: available,
		guard:     guard.NewConstructorGuard(),
	}

	var currentErr error
	if currentOrderID != nil {
		currentErr = currentOrderID.Validate()
	}

	if err := errors.Join(
		p.setID(id),
		p.setName(name),
		p.setLocation(location),
		currentErr,
	); err != nil {
		return nil, err
	}

	if currentOrderID != nil {
		orderID := *currentOrderID
		p.currentOrderID = &orderID
	}

	return p, nil
}

// IsEqual compares two partners by their identifiers.
func (p *Partner) IsEqual(other *Partner) bool {
	if other == nil {
		return false
	}
	return p.id.IsEqual(other.id)
}

// Validate checks that the Partner was created through a constructor.
func (p *Partner) Validate() error {
	if p == nil {
		return ErrPartnerIsNotConstructed
	}
	return p.guard.Validate(ErrPartnerIsNotConstructed)
}

func (p *Partner) ID() kernel.UUID {
	return p.id
}

func (p *Partner) Name() string {
	return p.name
}

func (p *Partner) Location() kernel.Location {
	return p.location
}

func (p *Partner) IsAvailable() bool {
	return p.available
}

// CurrentOrder returns the order being delivered, or nil when idle.
func (p *Partner) CurrentOrder() *kernel.UUID {
	if p.currentOrderID == nil {
		return nil
	}
	id := *p.currentOrderID
	return &id
}

// IsIdle reports whether the partner is not delivering anything.
func (p *Partner) IsIdle() bool {
	return p.currentOrderID == nil
}

// IsEligible reports whether the partner may receive a broadcast.
func (p *Partner) IsEligible() bool {
	return p.available && p.IsIdle()
}

// DistanceKm returns the great-circle distance from the partner to target.
func (p *Partner) DistanceKm(target kernel.Location) (float64, error) {
	return p.location.DistanceKm(target)
}

// SetAvailability switches the partner on or off. Going offline does not release
// an order that is already being delivered.
func (p *Partner) SetAvailability(available bool) {
	p.available = available
}

// MoveTo records a new reported position.
func (p *Partner) MoveTo(location kernel.Location) error {
	return p.setLocation(location)
}

// StartDelivery binds the partner to a claimed order.
//
// Business rules:
//   - an offline partner cannot start a delivery (ErrPartnerUnavailable)
//   - a partner busy with another order cannot start a delivery (ErrPartnerUnavailable)
//   - starting the same order twice is a no-op
func (p *Partner) StartDelivery(orderID kernel.UUID) error {
	if err := errors.Join(p.Validate(), orderID.Validate()); err != nil {
		return err
	}

	if p.currentOrderID != nil {
		if p.currentOrderID.IsEqual(orderID) {
			return nil
		}
		return errs.NewDomainError(errs.ErrPartnerUnavailable,
			"partner %s is delivering order %s", p.id, p.currentOrderID)
	}

	if !p.available {
		return errs.NewDomainError(errs.ErrPartnerUnavailable, "partner %s is offline", p.id)
	}

	id := orderID
	p.currentOrderID = &id
	return nil
}

// FinishDelivery releases the partner after the order was delivered or canceled.
// Releasing an order the partner does not hold is a no-op so that repeated
// terminal events stay harmless.
func (p *Partner) FinishDelivery(orderID kernel.UUID) error {
	if err := errors.Join(p.Validate(), orderID.Validate()); err != nil {
		return err
	}

	if p.currentOrderID != nil && p.currentOrderID.IsEqual(orderID) {
		p.currentOrderID = nil
	}
	return nil
}

func (p *Partner) String() string {
	return fmt.Sprintf("Partner(%s, %s)", p.id, p.name)
}

func (p *Partner) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	p.id = id
	return nil
}

func (p *Partner) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}

	p.name = name
	return nil
}

func (p *Partner) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}

	p.location = location
	return nil
}
