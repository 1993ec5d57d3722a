package postgres

import (
	"fooddelivery/internal/adapters/out/postgres/orderrepo"
	"fooddelivery/internal/adapters/out/postgres/partnerrepo"

	"gorm.io/gorm"
)

// AutoMigrate creates or extends every table the adapters use.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.OrderItemDTO{},
		&orderrepo.StatusHistoryDTO{},
		&partnerrepo.PartnerDTO{},
	)
}
