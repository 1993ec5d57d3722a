package kernel

import (
	"errors"
	"strings"

	"fooddelivery/internal/pkg/errs"
	"fooddelivery/internal/pkg/guard"
)

var ErrAddressIsNotConstructed = errs.NewValueIsRequiredError("address must be created via NewAddress constructor")

// Address is an immutable snapshot of a street address and its coordinates.
// Orders copy addresses at creation time, so later edits in the address book
// never reach an order in flight.
type Address struct {
	street   string
	location Location
	guard    guard.ConstructorGuard
}

func NewAddress(street string, location Location) (Address, error) {
	a := Address{guard: guard.NewConstructorGuard()}

	street = strings.TrimSpace(street)
	var streetErr error
	if street == "" {
		streetErr = errs.NewValueIsRequiredError("street")
	}

	if err := errors.Join(streetErr, location.Validate()); err != nil {
		return Address{}, err
	}

	a.street = street
	a.location = location
	return a, nil
}

func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

func (a Address) Street() string {
	return a.street
}

func (a Address) Location() Location {
	return a.location
}
