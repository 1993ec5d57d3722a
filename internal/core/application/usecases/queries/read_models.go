// Package queries contains read operations for retrieving system state.
// Queries return read models shaped for the caller and never mutate aggregates.
package queries

import (
	"time"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/domain/model/partner"
)

// OrderView is the caller-facing projection of an order. DeliveryOTP is only set
// for the customer who owns the order.
type OrderView struct {
	ID                kernel.UUID
	CustomerID        kernel.UUID
	VendorID          kernel.UUID
	Items             []ItemView
	TotalPrice        kernel.Money
	Discount          kernel.Money
	DeliveryCharge    kernel.Money
	FinalAmount       kernel.Money
	Status            order.Status
	DeliveryOTP       string
	IsOTPVerified     bool
	AssignedPartnerID *kernel.UUID
	DeliveryAddress   kernel.Address
	PickupAddress     kernel.Address
	History           []HistoryView
	BroadcastCount    int
	LastBroadcastAt   *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Version           int
}

type ItemView struct {
	ProductID    string
	Name         string
	Quantity     int
	UnitPrice    kernel.Money
	LineSubtotal kernel.Money
}

type HistoryView struct {
	Seq       int
	Status    order.Status
	ActorID   kernel.UUID
	ActorRole kernel.Role
	At        time.Time
}

// PartnerView is a directory entry.
type PartnerView struct {
	ID             kernel.UUID
	Name           string
	Location       kernel.Location
	Available      bool
	CurrentOrderID *kernel.UUID
}

func newOrderView(o *order.Order, revealOTP bool) OrderView {
	items := make([]ItemView, 0, len(o.Items()))
	for _, it := range o.Items() {
		items = append(items, ItemView{
			ProductID:    it.ProductID(),
			Name:         it.Name(),
			Quantity:     it.Quantity(),
			UnitPrice:    it.UnitPrice(),
			LineSubtotal: it.LineSubtotal(),
		})
	}

	history := make([]HistoryView, 0, len(o.History()))
	for _, h := range o.History() {
		history = append(history, HistoryView{
			Seq:       h.Seq(),
			Status:    h.Status(),
			ActorID:   h.Actor().ID(),
			ActorRole: h.Actor().Role(),
			At:        h.At(),
		})
	}

	pricing := o.Pricing()
	view := OrderView{
		ID:                o.ID(),
		CustomerID:        o.CustomerID(),
		VendorID:          o.VendorID(),
		Items:             items,
		TotalPrice:        pricing.TotalPrice(),
		Discount:          pricing.Discount(),
		DeliveryCharge:    pricing.DeliveryCharge(),
		FinalAmount:       pricing.FinalAmount(),
		Status:            o.Status(),
		IsOTPVerified:     o.IsOTPVerified(),
		AssignedPartnerID: o.AssignedPartner(),
		DeliveryAddress:   o.DeliveryAddress(),
		PickupAddress:     o.PickupAddress(),
		History:           history,
		BroadcastCount:    o.BroadcastCount(),
		LastBroadcastAt:   o.LastBroadcastAt(),
		CreatedAt:         o.CreatedAt(),
		UpdatedAt:         o.UpdatedAt(),
		Version:           o.Version(),
	}
	if revealOTP {
		view.DeliveryOTP = o.DeliveryOTP()
	}
	return view
}

// PartnerViewOf projects a directory entry, e.g. one a command just returned.
func PartnerViewOf(p *partner.Partner) PartnerView {
	return PartnerView{
		ID:             p.ID(),
		Name:           p.Name(),
		Location:       p.Location(),
		Available:      p.IsAvailable(),
		CurrentOrderID: p.CurrentOrder(),
	}
}
