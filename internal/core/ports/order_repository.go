// Package ports defines the contracts between the dispatch core and its infrastructure:
// repositories, the unit of work, the ephemeral offer store, event publishing and
// attempt limiting.
package ports

import (
	"context"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate together with its first history entry.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists the aggregate's state and any history entries not yet stored,
	// as one conditional write against the version the aggregate was loaded with.
	// On success the aggregate's version is incremented. A version mismatch returns
	// errs.ErrConcurrentModification and writes nothing.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by id. A missing order is reported as errs.ErrObjectNotFound.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate retrieves an order and locks it until the unit of work commits or
	// rolls back. Concurrent GetForUpdate calls for the same id wait for each other;
	// calls for different ids never do.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// ListActive returns non-terminal orders, oldest first, narrowed by the filter.
	ListActive(ctx context.Context, filter ActiveOrdersFilter) ([]*order.Order, error)
}

// ActiveOrdersFilter narrows ListActive. Unset fields do not filter.
type ActiveOrdersFilter struct {
	CustomerID *kernel.UUID
	VendorID   *kernel.UUID
	PartnerID  *kernel.UUID
}

// Matches reports whether o passes the filter. In-memory adapters use it directly.
func (f ActiveOrdersFilter) Matches(o *order.Order) bool {
	if o.Status().IsTerminal() {
		return false
	}
	if f.CustomerID != nil && !f.CustomerID.IsEqual(o.CustomerID()) {
		return false
	}
	if f.VendorID != nil && !f.VendorID.IsEqual(o.VendorID()) {
		return false
	}
	if f.PartnerID != nil && !f.PartnerID.EqualPtr(o.AssignedPartner()) {
		return false
	}
	return true
}
