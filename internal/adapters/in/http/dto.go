package http

import (
	"time"

	"fooddelivery/internal/core/application/usecases/commands"
	"fooddelivery/internal/core/application/usecases/queries"
	"fooddelivery/internal/core/domain/model/dispatch"
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Error is the body of every failed response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Address struct {
	Street   string   `json:"street"`
	Location Location `json:"location"`
}

type Item struct {
	ProductID    string `json:"productId"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	UnitPrice    string `json:"unitPrice"`
	LineSubtotal string `json:"lineSubtotal,omitempty"`
}

type NewOrder struct {
	ID              *openapi_types.UUID `json:"id,omitempty"`
	CustomerID      *openapi_types.UUID `json:"customerId,omitempty"`
	VendorID        openapi_types.UUID  `json:"vendorId"`
	Items           []Item              `json:"items"`
	Discount        *string             `json:"discount,omitempty"`
	DeliveryCharge  *string             `json:"deliveryCharge,omitempty"`
	TotalPrice      *string             `json:"totalPrice,omitempty"`
	FinalAmount     *string             `json:"finalAmount,omitempty"`
	DeliveryAddress Address             `json:"deliveryAddress"`
	PickupAddress   Address             `json:"pickupAddress"`
}

type DecisionRequest struct {
	Decision string `json:"decision"`
	Override bool   `json:"override"`
}

type CancelRequest struct {
	Override bool `json:"override"`
}

type AssignRequest struct {
	PartnerID openapi_types.UUID `json:"partnerId"`
}

type VerifyOTPRequest struct {
	Code string `json:"code"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type DeliveryChargeRequest struct {
	DeliveryCharge string `json:"deliveryCharge"`
}

type NewPartner struct {
	ID       openapi_types.UUID `json:"id"`
	Name     string             `json:"name"`
	Location Location           `json:"location"`
}

type AvailabilityRequest struct {
	Available bool      `json:"available"`
	Location  *Location `json:"location,omitempty"`
}

type HistoryEntry struct {
	Seq       int                `json:"seq"`
	Status    string             `json:"status"`
	ActorID   openapi_types.UUID `json:"actorId"`
	ActorRole string             `json:"actorRole"`
	At        time.Time          `json:"at"`
}

type Order struct {
	ID                openapi_types.UUID  `json:"id"`
	CustomerID        openapi_types.UUID  `json:"customerId"`
	VendorID          openapi_types.UUID  `json:"vendorId"`
	Items             []Item              `json:"items"`
	TotalPrice        string              `json:"totalPrice"`
	Discount          string              `json:"discount"`
	DeliveryCharge    string              `json:"deliveryCharge"`
	FinalAmount       string              `json:"finalAmount"`
	Status            string              `json:"status"`
	DeliveryOTP       string              `json:"deliveryOtp,omitempty"`
	IsOTPVerified     bool                `json:"isOtpVerified"`
	AssignedPartnerID *openapi_types.UUID `json:"assignedPartnerId,omitempty"`
	DeliveryAddress   Address             `json:"deliveryAddress"`
	PickupAddress     Address             `json:"pickupAddress"`
	History           []HistoryEntry      `json:"history"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
	Version           int                 `json:"version"`
}

type Offer struct {
	PartnerID openapi_types.UUID `json:"partnerId"`
	OfferedAt time.Time          `json:"offeredAt"`
	ExpiresAt time.Time          `json:"expiresAt"`
	Outcome   string             `json:"outcome"`
}

type Broadcast struct {
	OrderID   openapi_types.UUID  `json:"orderId"`
	State     string              `json:"state"`
	Winner    *openapi_types.UUID `json:"winner,omitempty"`
	ExpiresAt *time.Time          `json:"expiresAt,omitempty"`
	Offers    []Offer             `json:"offers"`
}

type Partner struct {
	ID             openapi_types.UUID  `json:"id"`
	Name           string              `json:"name"`
	Location       Location            `json:"location"`
	Available      bool                `json:"available"`
	CurrentOrderID *openapi_types.UUID `json:"currentOrderId,omitempty"`
}

func uuidPtr(id *kernel.UUID) *openapi_types.UUID {
	if id == nil {
		return nil
	}
	v := id.Bytes()
	return &v
}

func toLocation(l kernel.Location) Location {
	return Location{Lat: l.Lat(), Lon: l.Lon()}
}

func toAddress(a kernel.Address) Address {
	return Address{Street: a.Street(), Location: toLocation(a.Location())}
}

func toOrder(v queries.OrderView) Order {
	items := make([]Item, 0, len(v.Items))
	for _, it := range v.Items {
		items = append(items, Item{
			ProductID:    it.ProductID,
			Name:         it.Name,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice.String(),
			LineSubtotal: it.LineSubtotal.String(),
		})
	}
	history := make([]HistoryEntry, 0, len(v.History))
	for _, h := range v.History {
		history = append(history, HistoryEntry{
			Seq:       h.Seq,
			Status:    h.Status.String(),
			ActorID:   h.ActorID.Bytes(),
			ActorRole: string(h.ActorRole),
			At:        h.At,
		})
	}
	return Order{
		ID:                v.ID.Bytes(),
		CustomerID:        v.CustomerID.Bytes(),
		VendorID:          v.VendorID.Bytes(),
		Items:             items,
		TotalPrice:        v.TotalPrice.String(),
		Discount:          v.Discount.String(),
		DeliveryCharge:    v.DeliveryCharge.String(),
		FinalAmount:       v.FinalAmount.String(),
		Status:            v.Status.String(),
		DeliveryOTP:       v.DeliveryOTP,
		IsOTPVerified:     v.IsOTPVerified,
		AssignedPartnerID: uuidPtr(v.AssignedPartnerID),
		DeliveryAddress:   toAddress(v.DeliveryAddress),
		PickupAddress:     toAddress(v.PickupAddress),
		History:           history,
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
		Version:           v.Version,
	}
}

func toOrders(views []queries.OrderView) []Order {
	out := make([]Order, 0, len(views))
	for _, v := range views {
		out = append(out, toOrder(v))
	}
	return out
}

func toBroadcast(v queries.BroadcastStatusView) Broadcast {
	offers := make([]Offer, 0, len(v.Offers))
	for _, o := range v.Offers {
		offers = append(offers, Offer{
			PartnerID: o.PartnerID.Bytes(),
			OfferedAt: o.OfferedAt,
			ExpiresAt: o.ExpiresAt,
			Outcome:   string(o.Outcome),
		})
	}
	return Broadcast{
		OrderID:   v.OrderID.Bytes(),
		State:     string(v.State),
		Winner:    uuidPtr(v.Winner),
		ExpiresAt: v.ExpiresAt,
		Offers:    offers,
	}
}

// broadcastFromBatch renders a freshly created batch; every offer is pending.
func broadcastFromBatch(b *dispatch.Broadcast, now time.Time) Broadcast {
	offers := make([]Offer, 0, len(b.Offers()))
	for _, o := range b.Offers() {
		offers = append(offers, Offer{
			PartnerID: o.PartnerID().Bytes(),
			OfferedAt: o.OfferedAt(),
			ExpiresAt: o.ExpiresAt(),
			Outcome:   string(o.OutcomeAt(now)),
		})
	}
	expiresAt := b.ExpiresAt()
	return Broadcast{
		OrderID:   b.OrderID().Bytes(),
		State:     string(b.State(now)),
		ExpiresAt: &expiresAt,
		Offers:    offers,
	}
}

func toPartner(v queries.PartnerView) Partner {
	return Partner{
		ID:             v.ID.Bytes(),
		Name:           v.Name,
		Location:       toLocation(v.Location),
		Available:      v.Available,
		CurrentOrderID: uuidPtr(v.CurrentOrderID),
	}
}

func newLocation(l Location) (kernel.Location, error) {
	return kernel.NewLocation(l.Lat, l.Lon)
}

func newAddress(a Address) (kernel.Address, error) {
	loc, err := newLocation(a.Location)
	if err != nil {
		return kernel.Address{}, err
	}
	return kernel.NewAddress(a.Street, loc)
}

func optionalMoney(s *string) (*kernel.Money, error) {
	if s == nil {
		return nil, nil
	}
	m, err := kernel.MoneyFromString(*s)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func moneyOrZero(s *string) (kernel.Money, error) {
	m, err := optionalMoney(s)
	if err != nil || m == nil {
		return kernel.ZeroMoney, err
	}
	return *m, nil
}

// checkoutPayload turns a create request into the command payload. The customer
// defaults to the caller.
func checkoutPayload(req NewOrder, actor kernel.Actor) (commands.CheckoutPayload, error) {
	var payload commands.CheckoutPayload
	var err error

	payload.OrderID = kernel.NewUUID()
	if req.ID != nil {
		if payload.OrderID, err = kernel.UUIDFromGoogle(*req.ID); err != nil {
			return payload, err
		}
	}
	payload.CustomerID = actor.ID()
	if req.CustomerID != nil {
		if payload.CustomerID, err = kernel.UUIDFromGoogle(*req.CustomerID); err != nil {
			return payload, err
		}
	}
	if payload.VendorID, err = kernel.UUIDFromGoogle(req.VendorID); err != nil {
		return payload, err
	}

	payload.Items = make([]order.Item, 0, len(req.Items))
	for _, it := range req.Items {
		price, err := kernel.MoneyFromString(it.UnitPrice)
		if err != nil {
			return payload, err
		}
		item, err := order.NewItem(it.ProductID, it.Name, it.Quantity, price)
		if err != nil {
			return payload, err
		}
		payload.Items = append(payload.Items, item)
	}

	if payload.Discount, err = moneyOrZero(req.Discount); err != nil {
		return payload, err
	}
	if payload.DeliveryCharge, err = moneyOrZero(req.DeliveryCharge); err != nil {
		return payload, err
	}
	if payload.DeclaredTotal, err = optionalMoney(req.TotalPrice); err != nil {
		return payload, err
	}
	if payload.DeclaredFinal, err = optionalMoney(req.FinalAmount); err != nil {
		return payload, err
	}
	if payload.DeliveryAddress, err = newAddress(req.DeliveryAddress); err != nil {
		return payload, err
	}
	if payload.PickupAddress, err = newAddress(req.PickupAddress); err != nil {
		return payload, err
	}
	return payload, nil
}
