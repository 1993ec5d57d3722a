package queries

import (
	"context"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/ports"
	"fooddelivery/internal/pkg/errs"
)

// GetBroadcastStatusQueryHandler reports who an order was offered to and how the
// offers ended. The owning vendor and admins see every offer; a delivery partner
// sees only its own offer, learns the winner only when it won, and gets NOT_FOUND
// when it was never invited.
type GetBroadcastStatusQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
	offers     ports.DispatchOfferStore
	clock      ports.Clock
}

func NewGetBroadcastStatusQueryHandler(
	uowFactory ports.UnitOfWorkFactory,
	offers ports.DispatchOfferStore,
	clock ports.Clock,
) GetBroadcastStatusQueryHandler {
	return GetBroadcastStatusQueryHandler{uowFactory: uowFactory, offers: offers, clock: clock}
}

func (h GetBroadcastStatusQueryHandler) Handle(
	ctx context.Context,
	query GetBroadcastStatusQuery,
) (BroadcastStatusView, error) {
	if err := query.Validate(); err != nil {
		return BroadcastStatusView{}, err
	}

	notFound := errs.NewObjectNotFoundError("order", query.OrderID().String())
	actor := query.Actor()

	o, err := h.uowFactory.Create().OrderRepository().Get(ctx, query.OrderID())
	if err != nil {
		return BroadcastStatusView{}, err
	}

	batch, err := h.offers.Get(ctx, query.OrderID())
	if err != nil {
		return BroadcastStatusView{}, err
	}

	now := h.clock.Now()
	view := BroadcastStatusView{
		OrderID: query.OrderID(),
		State:   batch.State(now),
		Offers:  make([]OfferView, 0, len(batch.Offers())),
	}
	if len(batch.Offers()) > 0 {
		expiresAt := batch.ExpiresAt()
		view.ExpiresAt = &expiresAt
	}

	var onlyPartner *kernel.UUID
	switch actor.Role() {
	case kernel.RoleAdmin:
	case kernel.RoleVendor:
		if !o.IsOwnedBy(actor) {
			return BroadcastStatusView{}, notFound
		}
	case kernel.RoleDeliveryPartner:
		if _, invited := batch.OfferFor(actor.ID()); !invited {
			return BroadcastStatusView{}, notFound
		}
		id := actor.ID()
		onlyPartner = &id
	default:
		return BroadcastStatusView{}, notFound
	}

	if winner, ok := batch.Winner(); ok && (onlyPartner == nil || onlyPartner.IsEqual(winner)) {
		view.Winner = &winner
	}

	for _, offer := range batch.Offers() {
		if onlyPartner != nil && !onlyPartner.IsEqual(offer.PartnerID()) {
			continue
		}
		view.Offers = append(view.Offers, OfferView{
			PartnerID: offer.PartnerID(),
			OfferedAt: offer.OfferedAt(),
			ExpiresAt: offer.ExpiresAt(),
			Outcome:   offer.OutcomeAt(now),
		})
	}

	return view, nil
}
