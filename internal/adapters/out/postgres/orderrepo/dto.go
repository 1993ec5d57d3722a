// Package orderrepo persists order aggregates with GORM. An order is stored as one
// row in orders plus its items and its status history, which is append-only and
// keyed by (order_id, seq).
package orderrepo

import (
	"time"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// OrderDTO is the orders row. Timestamps come from the aggregate, so GORM's own
// time tracking is switched off.
type OrderDTO struct {
	ID                    uuid.UUID          `gorm:"type:uuid;primaryKey"`
	CustomerID            uuid.UUID          `gorm:"type:uuid;not null;index"`
	VendorID              uuid.UUID          `gorm:"type:uuid;not null;index"`
	PartnerID             *uuid.UUID         `gorm:"type:uuid;index"`
	Status                int                `gorm:"type:smallint;not null;index"`
	TotalPrice            decimal.Decimal    `gorm:"type:numeric(12,2);not null"`
	Discount              decimal.Decimal    `gorm:"type:numeric(12,2);not null"`
	DeliveryCharge        decimal.Decimal    `gorm:"type:numeric(12,2);not null"`
	FinalAmount           decimal.Decimal    `gorm:"type:numeric(12,2);not null"`
	DeliveryOTP           string             `gorm:"column:delivery_otp;type:varchar(12);not null;default:''"`
	IsOTPVerified         bool               `gorm:"column:is_otp_verified;not null;default:false"`
	DeliveryAddress       AddressDTO         `gorm:"embedded;embeddedPrefix:delivery_"`
	PickupAddress         AddressDTO         `gorm:"embedded;embeddedPrefix:pickup_"`
	BroadcastCount        int                `gorm:"not null;default:0"`
	LastBroadcastAt       *time.Time         `gorm:"type:timestamptz"`
	LastBroadcastPartners pq.StringArray     `gorm:"type:text[]"`
	CreatedAt             time.Time          `gorm:"type:timestamptz;not null;autoCreateTime:false;index"`
	UpdatedAt             time.Time          `gorm:"type:timestamptz;not null;autoUpdateTime:false"`
	Version               int                `gorm:"not null"`
	Items                 []OrderItemDTO     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	History               []StatusHistoryDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

type AddressDTO struct {
	Street string  `gorm:"type:varchar(255);not null"`
	Lat    float64 `gorm:"type:double precision;not null"`
	Lon    float64 `gorm:"type:double precision;not null"`
}

// OrderItemDTO is one line of the order. Position keeps the checkout order.
type OrderItemDTO struct {
	OrderID      uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Position     int             `gorm:"primaryKey"`
	ProductID    string          `gorm:"type:varchar(128);not null"`
	Name         string          `gorm:"type:varchar(255);not null"`
	Quantity     int             `gorm:"not null"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	LineSubtotal decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (OrderItemDTO) TableName() string {
	return "order_items"
}

// StatusHistoryDTO is one status change. Rows are only ever inserted.
type StatusHistoryDTO struct {
	OrderID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq       int       `gorm:"primaryKey"`
	Status    int       `gorm:"type:smallint;not null"`
	ActorID   uuid.UUID `gorm:"type:uuid;not null"`
	ActorRole string    `gorm:"type:varchar(32);not null"`
	At        time.Time `gorm:"type:timestamptz;not null"`
}

func (StatusHistoryDTO) TableName() string {
	return "order_status_history"
}

func fromDomain(o *order.Order) OrderDTO {
	id := o.ID().Bytes()

	var partnerID *uuid.UUID
	if p := o.AssignedPartner(); p != nil {
		raw := p.Bytes()
		partnerID = &raw
	}

	items := make([]OrderItemDTO, 0, len(o.Items()))
	for i, item := range o.Items() {
		items = append(items, OrderItemDTO{
			OrderID:      id,
			Position:     i,
			ProductID:    item.ProductID(),
			Name:         item.Name(),
			Quantity:     item.Quantity(),
			UnitPrice:    item.UnitPrice().Decimal(),
			LineSubtotal: item.LineSubtotal().Decimal(),
		})
	}

	partners := make(pq.StringArray, 0, len(o.LastBroadcastPartners()))
	for _, p := range o.LastBroadcastPartners() {
		partners = append(partners, p.String())
	}

	pricing := o.Pricing()
	return OrderDTO{
		ID:                    id,
		CustomerID:            o.CustomerID().Bytes(),
		VendorID:              o.VendorID().Bytes(),
		PartnerID:             partnerID,
		Status:                int(o.Status()),
		TotalPrice:            pricing.TotalPrice().Decimal(),
		Discount:              pricing.Discount().Decimal(),
		DeliveryCharge:        pricing.DeliveryCharge().Decimal(),
		FinalAmount:           pricing.FinalAmount().Decimal(),
		DeliveryOTP:           o.DeliveryOTP(),
		IsOTPVerified:         o.IsOTPVerified(),
		DeliveryAddress:       addressFromDomain(o.DeliveryAddress()),
		PickupAddress:         addressFromDomain(o.PickupAddress()),
		BroadcastCount:        o.BroadcastCount(),
		LastBroadcastAt:       o.LastBroadcastAt(),
		LastBroadcastPartners: partners,
		CreatedAt:             o.CreatedAt(),
		UpdatedAt:             o.UpdatedAt(),
		Version:               o.Version(),
		Items:                 items,
		History:               historyFromDomain(id, o.History()),
	}
}

func addressFromDomain(a kernel.Address) AddressDTO {
	return AddressDTO{
		Street: a.Street(),
		Lat:    a.Location().Lat(),
		Lon:    a.Location().Lon(),
	}
}

func historyFromDomain(orderID uuid.UUID, history []order.HistoryEntry) []StatusHistoryDTO {
	rows := make([]StatusHistoryDTO, 0, len(history))
	for _, h := range history {
		rows = append(rows, StatusHistoryDTO{
			OrderID:   orderID,
			Seq:       h.Seq(),
			Status:    int(h.Status()),
			ActorID:   h.Actor().ID().Bytes(),
			ActorRole: string(h.Actor().Role()),
			At:        h.At(),
		})
	}
	return rows
}

// columns lists every orders column Update writes. A map is used so that zero
// values such as a cleared delivery code are written too.
func (dto OrderDTO) columns() map[string]any {
	return map[string]any{
		"partner_id":              dto.PartnerID,
		"status":                  dto.Status,
		"total_price":             dto.TotalPrice,
		"discount":                dto.Discount,
		"delivery_charge":         dto.DeliveryCharge,
		"final_amount":            dto.FinalAmount,
		"delivery_otp":            dto.DeliveryOTP,
		"is_otp_verified":         dto.IsOTPVerified,
		"broadcast_count":         dto.BroadcastCount,
		"last_broadcast_at":       dto.LastBroadcastAt,
		"last_broadcast_partners": dto.LastBroadcastPartners,
		"updated_at":              dto.UpdatedAt,
		"version":                 dto.Version,
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromGoogle(dto.CustomerID)
	if err != nil {
		return nil, err
	}
	vendorID, err := kernel.UUIDFromGoogle(dto.VendorID)
	if err != nil {
		return nil, err
	}

	var partnerID *kernel.UUID
	if dto.PartnerID != nil {
		pID, partnerErr := kernel.UUIDFromGoogle(*dto.PartnerID)
		if partnerErr != nil {
			return nil, partnerErr
		}
		partnerID = &pID
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, row := range dto.Items {
		item, itemErr := itemToDomain(row)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	history := make([]order.HistoryEntry, 0, len(dto.History))
	for _, row := range dto.History {
		entry, entryErr := historyToDomain(row)
		if entryErr != nil {
			return nil, entryErr
		}
		history = append(history, entry)
	}

	partners := make([]kernel.UUID, 0, len(dto.LastBroadcastPartners))
	for _, raw := range dto.LastBroadcastPartners {
		p, parseErr := kernel.UUIDFromString(raw)
		if parseErr != nil {
			return nil, parseErr
		}
		partners = append(partners, p)
	}

	deliveryAddress, err := addressToDomain(dto.DeliveryAddress)
	if err != nil {
		return nil, err
	}
	pickupAddress, err := addressToDomain(dto.PickupAddress)
	if err != nil {
		return nil, err
	}

	pricing, err := pricingToDomain(dto)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.Snapshot{
		ID:                    id,
		CustomerID:            customerID,
		VendorID:              vendorID,
		Items:                 items,
		Pricing:               pricing,
		Status:                order.Status(dto.Status),
		DeliveryOTP:           dto.DeliveryOTP,
		IsOTPVerified:         dto.IsOTPVerified,
		AssignedPartnerID:     partnerID,
		DeliveryAddress:       deliveryAddress,
		PickupAddress:         pickupAddress,
		History:               history,
		BroadcastCount:        dto.BroadcastCount,
		LastBroadcastAt:       dto.LastBroadcastAt,
		LastBroadcastPartners: partners,
		CreatedAt:             dto.CreatedAt,
		UpdatedAt:             dto.UpdatedAt,
		Version:               dto.Version,
	})
}

func itemToDomain(row OrderItemDTO) (order.Item, error) {
	unitPrice, err := kernel.NewMoney(row.UnitPrice)
	if err != nil {
		return order.Item{}, err
	}
	lineSubtotal, err := kernel.NewMoney(row.LineSubtotal)
	if err != nil {
		return order.Item{}, err
	}
	return order.RestoreItem(row.ProductID, row.Name, row.Quantity, unitPrice, lineSubtotal)
}

func historyToDomain(row StatusHistoryDTO) (order.HistoryEntry, error) {
	actorID, err := kernel.UUIDFromGoogle(row.ActorID)
	if err != nil {
		return order.HistoryEntry{}, err
	}
	actor, err := kernel.NewActor(actorID, kernel.Role(row.ActorRole))
	if err != nil {
		return order.HistoryEntry{}, err
	}
	return order.RestoreHistoryEntry(row.Seq, order.Status(row.Status), actor, row.At), nil
}

func addressToDomain(dto AddressDTO) (kernel.Address, error) {
	loc, err := kernel.NewLocation(dto.Lat, dto.Lon)
	if err != nil {
		return kernel.Address{}, err
	}
	return kernel.NewAddress(dto.Street, loc)
}

func pricingToDomain(dto OrderDTO) (order.Pricing, error) {
	amounts := make([]kernel.Money, 0, 4)
	for _, d := range []decimal.Decimal{dto.TotalPrice, dto.Discount, dto.DeliveryCharge, dto.FinalAmount} {
		m, err := kernel.NewMoney(d)
		if err != nil {
			return order.Pricing{}, err
		}
		amounts = append(amounts, m)
	}
	return order.RestorePricing(amounts[0], amounts[1], amounts[2], amounts[3]), nil
}
