package services

import (
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
)

// CanRequestTransition is the single authorization predicate for status changes.
// Handlers evaluate it before the transition validator runs.
//
// Rules:
//   - accepted, rejected: owning vendor or admin
//   - canceled: owning customer while pending (or already canceled); owning vendor or admin while not terminal
//   - pickedUp, onTheWay: assigned delivery partner or admin
//   - delivered: assigned delivery partner, owning vendor or admin
//   - assigned: any delivery partner (the claim) or admin (direct assignment)
func CanRequestTransition(actor kernel.Actor, o *order.Order, target order.Status) bool {
	if actor.Validate() != nil || o.Validate() != nil {
		return false
	}

	if actor.Is(kernel.RoleAdmin) {
		return true
	}

	switch target {
	case order.Accepted, order.Rejected:
		return isOwningVendor(actor, o)
	case order.Canceled:
		if actor.Is(kernel.RoleCustomer) {
			return o.IsOwnedBy(actor) && (o.Status() == order.Pending || o.Status() == order.Canceled)
		}
		return isOwningVendor(actor, o)
	case order.PickedUp, order.OnTheWay:
		return isAssignedPartner(actor, o)
	case order.Delivered:
		return isAssignedPartner(actor, o) || isOwningVendor(actor, o)
	case order.Assigned:
		return actor.Is(kernel.RoleDeliveryPartner)
	default:
		return false
	}
}

// CanVerifyOTP allows the assigned partner, the owning vendor and admins to submit
// the delivery code.
func CanVerifyOTP(actor kernel.Actor, o *order.Order) bool {
	if actor.Validate() != nil || o.Validate() != nil {
		return false
	}
	return actor.Is(kernel.RoleAdmin) || isAssignedPartner(actor, o) || isOwningVendor(actor, o)
}

// CanBroadcast allows the owning vendor, admins and in-process system actors to
// fan an order out to partners.
func CanBroadcast(actor kernel.Actor, o *order.Order) bool {
	if actor.Validate() != nil || o.Validate() != nil {
		return false
	}
	return actor.Is(kernel.RoleAdmin) || actor.Is(kernel.RoleSystem) || isOwningVendor(actor, o)
}

// CanCreateOrder allows the customer the order is created for, admins and system
// actors (the checkout consumer).
func CanCreateOrder(actor kernel.Actor, customerID kernel.UUID) bool {
	if actor.Validate() != nil {
		return false
	}
	if actor.Is(kernel.RoleCustomer) {
		return actor.ID().IsEqual(customerID)
	}
	return actor.Is(kernel.RoleAdmin) || actor.Is(kernel.RoleSystem)
}

// CanManagePartner allows partners to manage their own directory record and admins
// to manage any.
func CanManagePartner(actor kernel.Actor, partnerID kernel.UUID) bool {
	if actor.Validate() != nil {
		return false
	}
	if actor.Is(kernel.RoleDeliveryPartner) {
		return actor.ID().IsEqual(partnerID)
	}
	return actor.Is(kernel.RoleAdmin)
}

// CanAdjustPricing allows admins only.
func CanAdjustPricing(actor kernel.Actor) bool {
	return actor.Validate() == nil && actor.Is(kernel.RoleAdmin)
}

func isOwningVendor(actor kernel.Actor, o *order.Order) bool {
	return actor.Is(kernel.RoleVendor) && o.IsOwnedBy(actor)
}

func isAssignedPartner(actor kernel.Actor, o *order.Order) bool {
	return actor.Is(kernel.RoleDeliveryPartner) && o.IsOwnedBy(actor)
}
