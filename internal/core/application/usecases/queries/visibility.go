package queries

import (
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/ports"
)

// canView reports whether actor may read o at all, and whether the delivery code
// is part of what it sees. Only the owning customer ever sees the code.
func canView(actor kernel.Actor, o *order.Order) (visible, revealOTP bool) {
	if actor.Validate() != nil {
		return false, false
	}

	switch actor.Role() {
	case kernel.RoleAdmin:
		return true, false
	case kernel.RoleCustomer:
		owned := o.IsOwnedBy(actor)
		return owned, owned
	case kernel.RoleVendor, kernel.RoleDeliveryPartner:
		return o.IsOwnedBy(actor), false
	default:
		return false, false
	}
}

// activeFilterFor scopes a listing to the orders the actor takes part in.
func activeFilterFor(actor kernel.Actor) (ports.ActiveOrdersFilter, bool) {
	id := actor.ID()
	switch actor.Role() {
	case kernel.RoleAdmin:
		return ports.ActiveOrdersFilter{}, true
	case kernel.RoleCustomer:
		return ports.ActiveOrdersFilter{CustomerID: &id}, true
	case kernel.RoleVendor:
		return ports.ActiveOrdersFilter{VendorID: &id}, true
	case kernel.RoleDeliveryPartner:
		return ports.ActiveOrdersFilter{PartnerID: &id}, true
	default:
		return ports.ActiveOrdersFilter{}, false
	}
}
