// Package partnerrepo persists the delivery partner directory with GORM.
package partnerrepo

import (
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/partner"

	"github.com/google/uuid"
)

// PartnerDTO is the partners row. The location columns are indexed together for
// the bounding box prefilter of FindAvailableNear.
type PartnerDTO struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Name           string      `gorm:"type:varchar(255);not null"`
	Location       LocationDTO `gorm:"embedded;embeddedPrefix:location_"`
	Available      bool        `gorm:"not null;default:true;index"`
	CurrentOrderID *uuid.UUID  `gorm:"type:uuid;index"`
}

func (PartnerDTO) TableName() string {
	return "partners"
}

type LocationDTO struct {
	Lat float64 `gorm:"type:double precision;not null;index:idx_partners_location,priority:1"`
	Lon float64 `gorm:"type:double precision;not null;index:idx_partners_location,priority:2"`
}

func fromDomain(p *partner.Partner) PartnerDTO {
	var currentOrderID *uuid.UUID
	if id := p.CurrentOrder(); id != nil {
		raw := id.Bytes()
		currentOrderID = &raw
	}

	return PartnerDTO{
		ID:   p.ID().Bytes(),
		Name: p.Name(),
		Location: LocationDTO{
			Lat: p.Location().Lat(),
			Lon: p.Location().Lon(),
		},
		Available:      p.IsAvailable(),
		CurrentOrderID: currentOrderID,
	}
}

// columns lists what Update writes; a map keeps false and NULL values.
func (dto PartnerDTO) columns() map[string]any {
	return map[string]any{
		"name":             dto.Name,
		"location_lat":     dto.Location.Lat,
		"location_lon":     dto.Location.Lon,
		"available":        dto.Available,
		"current_order_id": dto.CurrentOrderID,
	}
}

func toDomain(dto PartnerDTO) (*partner.Partner, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}

	var currentOrderID *kernel.UUID
	if dto.CurrentOrderID != nil {
		oID, orderErr := kernel.UUIDFromGoogle(*dto.CurrentOrderID)
		if orderErr != nil {
			return nil, orderErr
		}
		currentOrderID = &oID
	}

	loc, err := kernel.NewLocation(dto.Location.Lat, dto.Location.Lon)
	if err != nil {
		return nil, err
	}

	return partner.RestorePartner(id, dto.Name, loc, dto.Available, currentOrderID)
}
