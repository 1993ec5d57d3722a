package ports

import (
	"context"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/partner"
)

// PartnerRepository is the partner directory.
type PartnerRepository interface {
	// Add registers a new partner.
	Add(ctx context.Context, aggregate *partner.Partner) error

	// Update persists availability, location and the current order.
	Update(ctx context.Context, aggregate *partner.Partner) error

	// Get retrieves a partner by id. A missing partner is reported as errs.ErrObjectNotFound.
	Get(ctx context.Context, id kernel.UUID) (*partner.Partner, error)

	// GetForUpdate retrieves a partner and locks it until the unit of work ends.
	// Callers that also lock an order must lock the order first.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*partner.Partner, error)

	// FindAvailableNear returns available, idle partners inside box. The box is a
	// cheap prefilter; the Broadcaster applies the exact radius.
	FindAvailableNear(ctx context.Context, box kernel.BoundingBox) ([]*partner.Partner, error)

	// List returns every partner ordered by name.
	List(ctx context.Context) ([]*partner.Partner, error)
}
