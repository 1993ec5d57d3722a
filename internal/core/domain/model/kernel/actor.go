package kernel

import (
	"fmt"
	"strings"

	"fooddelivery/internal/pkg/errs"
)

// Role is the identity provider's role claim.
type Role string

const (
	RoleCustomer        Role = "CUSTOMER"
	RoleVendor          Role = "VENDOR"
	RoleDeliveryPartner Role = "DELIVERY_PARTNER"
	RoleAdmin           Role = "ADMIN"
	// RoleSystem is used by in-process producers such as the checkout consumer.
	RoleSystem Role = "SYSTEM"
)

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleCustomer, RoleVendor, RoleDeliveryPartner, RoleAdmin, RoleSystem:
		return r, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", s))
	}
}

// Actor is an authenticated caller: who is asking, and in which role.
type Actor struct {
	id   UUID
	role Role
}

func NewActor(id UUID, role Role) (Actor, error) {
	if err := id.Validate(); err != nil {
		return Actor{}, err
	}
	if _, err := ParseRole(string(role)); err != nil {
		return Actor{}, err
	}
	return Actor{id: id, role: role}, nil
}

// SystemActor identifies in-process producers in status history.
func SystemActor(id UUID) Actor {
	return Actor{id: id, role: RoleSystem}
}

func (a Actor) ID() UUID {
	return a.id
}

func (a Actor) Role() Role {
	return a.role
}

func (a Actor) Is(role Role) bool {
	return a.role == role
}

func (a Actor) Validate() error {
	if err := a.id.Validate(); err != nil {
		return err
	}
	if a.role == "" {
		return errs.NewValueIsRequiredError("role")
	}
	return nil
}

func (a Actor) String() string {
	return fmt.Sprintf("%s:%s", a.role, a.id)
}
