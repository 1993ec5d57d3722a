package ports

import (
	"context"
	"time"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
)

// EventKind names what happened to an order.
type EventKind string

const (
	EventOrderCreated          EventKind = "order.created"
	EventStatusChanged         EventKind = "order.status_changed"
	EventPartnerAssigned       EventKind = "order.partner_assigned"
	EventBroadcastStarted      EventKind = "order.broadcast_started"
	EventDeliveryCodeVerified  EventKind = "order.delivery_code_verified"
	EventDeliveryChargeChanged EventKind = "order.delivery_charge_changed"
)

// OrderChangedEvent is published after a committed change. It never carries the
// delivery code.
type OrderChangedEvent struct {
	Kind       EventKind
	OrderID    kernel.UUID
	CustomerID kernel.UUID
	VendorID   kernel.UUID
	PartnerID  *kernel.UUID
	Status     order.Status
	Actor      kernel.Actor
	Version    int
	OccurredAt time.Time
}

// NewOrderChangedEvent snapshots the order after the change.
func NewOrderChangedEvent(kind EventKind, o *order.Order, actor kernel.Actor, at time.Time) OrderChangedEvent {
	return OrderChangedEvent{
		Kind:       kind,
		OrderID:    o.ID(),
		CustomerID: o.CustomerID(),
		VendorID:   o.VendorID(),
		PartnerID:  o.AssignedPartner(),
		Status:     o.Status(),
		Actor:      actor,
		Version:    o.Version(),
		OccurredAt: at.UTC(),
	}
}

// EventPublisher delivers order events to downstream consumers. Publishing is best
// effort: a failure is reported to the caller but never undoes a committed change.
type EventPublisher interface {
	Publish(ctx context.Context, events ...OrderChangedEvent) error
}
