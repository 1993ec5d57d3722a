package ports

import (
	"context"
	"time"

	"fooddelivery/internal/core/domain/model/dispatch"
	"fooddelivery/internal/core/domain/model/kernel"
)

// DispatchOfferStore keeps the ephemeral offers of the latest broadcast per order.
// It is not transactional with the order repository: the order row decides who won,
// the store only records who was invited and until when.
type DispatchOfferStore interface {
	// Replace discards any previous batch of the order and stores batch.
	Replace(ctx context.Context, batch *dispatch.Broadcast) error

	// Get returns the order's current batch. An order without offers yields an
	// empty batch (state none), not an error.
	Get(ctx context.Context, orderID kernel.UUID) (*dispatch.Broadcast, error)

	// Resolve marks the winner's offer accepted and every other pending offer
	// withdrawn. A winner without an offer (direct assignment) only withdraws.
	Resolve(ctx context.Context, orderID, winner kernel.UUID) error

	// WithdrawAll marks every pending offer of the order withdrawn.
	WithdrawAll(ctx context.Context, orderID kernel.UUID) error

	// ExpireDue marks pending offers whose deadline is not after now as expired and
	// returns how many offers changed.
	ExpireDue(ctx context.Context, now time.Time) (int, error)
}
