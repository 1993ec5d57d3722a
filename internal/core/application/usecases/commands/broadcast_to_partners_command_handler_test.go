package commands_test

import (
	"errors"
	"testing"
	"time"

	"fooddelivery/internal/core/application/usecases/commands"
	"fooddelivery/internal/core/domain/model/dispatch"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/domain/model/partner"
	"fooddelivery/internal/core/domain/services"
	"fooddelivery/internal/core/ports"
	"fooddelivery/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestBroadcaster(t *testing.T) services.Broadcaster {
	t.Helper()
	b, err := services.NewBroadcaster(5, time.Minute)
	require.NoError(t, err)
	return b
}

func TestBroadcastToPartnersCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	a := newActors(t)
	o := newOrder(t, a, order.Accepted)
	near := newPartnerFor(t, a.partner)
	far, err := partner.NewPartner(newActors(t).partner.ID(), "Far", newLocation(t, 52.4200, 13.4050))
	require.NoError(t, err)

	cmd, err := commands.NewBroadcastToPartnersCommand(o.ID(), a.vendor)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	partnerRepo := new(MockPartnerRepository)
	uow := new(MockUoW)
	offers := new(MockOfferStore)
	events := new(MockEventPublisher)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once(),
		uow.On("PartnerRepository").Return(partnerRepo).Once(),
		partnerRepo.On("FindAvailableNear", ctx, o.PickupAddress().Location().BoundingBox(5)).
			Return([]*partner.Partner{far, near}, nil).Once(),
		orderRepo.On("Update", ctx, o).Return(nil).Once(),
		offers.On("Replace", ctx, mock.AnythingOfType("*dispatch.Broadcast")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		events.On("Publish", ctx, eventOfKind(ports.EventBroadcastStarted)).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewBroadcastToPartnersCommandHandler(factory, newTestBroadcaster(t), offers, events, clock, nil)
	batch, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, dispatch.StateOpen, batch.State(testNow))
	assert.Equal(t, testNow.Add(time.Minute), batch.ExpiresAt())
	require.Len(t, batch.PartnerIDs(), 1)
	assert.Equal(t, near.ID(), batch.PartnerIDs()[0])
	assert.Equal(t, 1, o.BroadcastCount())
	assert.Equal(t, order.Accepted, o.Status())

	orderRepo.AssertExpectations(t)
	partnerRepo.AssertExpectations(t)
	offers.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestBroadcastToPartnersCommandHandler_Handle_NoPartnerAvailable(t *testing.T) {
	ctx := t.Context()
	a := newActors(t)
	o := newOrder(t, a, order.Accepted)

	cmd, err := commands.NewBroadcastToPartnersCommand(o.ID(), a.admin)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	partnerRepo := new(MockPartnerRepository)
	uow := new(MockUoW)
	offers := new(MockOfferStore)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	uow.On("PartnerRepository").Return(partnerRepo).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	orderRepo.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once()
	partnerRepo.On("FindAvailableNear", ctx, mock.Anything).Return([]*partner.Partner{}, nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewBroadcastToPartnersCommandHandler(factory, newTestBroadcaster(t), offers, nil, clock, nil)
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrNoPartnerAvailable)
	assert.Zero(t, o.BroadcastCount())
	offers.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything)
}

func TestBroadcastToPartnersCommandHandler_Handle_PendingOrder(t *testing.T) {
	ctx := t.Context()
	a := newActors(t)
	o := newOrder(t, a, order.Pending)

	cmd, err := commands.NewBroadcastToPartnersCommand(o.ID(), a.vendor)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	orderRepo.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewBroadcastToPartnersCommandHandler(factory, newTestBroadcaster(t), new(MockOfferStore), nil, clock, nil)
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrIllegalTransition)
}

func TestBroadcastToPartnersCommandHandler_Handle_CustomerForbidden(t *testing.T) {
	ctx := t.Context()
	a := newActors(t)
	o := newOrder(t, a, order.Accepted)

	cmd, err := commands.NewBroadcastToPartnersCommand(o.ID(), a.customer)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	orderRepo.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewBroadcastToPartnersCommandHandler(factory, newTestBroadcaster(t), new(MockOfferStore), nil, clock, nil)
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrForbidden)
}

func TestBroadcastToPartnersCommandHandler_Handle_ReplaceErrorAborts(t *testing.T) {
	ctx := t.Context()
	a := newActors(t)
	o := newOrder(t, a, order.Accepted)

	cmd, err := commands.NewBroadcastToPartnersCommand(o.ID(), a.vendor)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	partnerRepo := new(MockPartnerRepository)
	uow := new(MockUoW)
	offers := new(MockOfferStore)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	uow.On("PartnerRepository").Return(partnerRepo).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	orderRepo.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once()
	orderRepo.On("Update", ctx, o).Return(nil).Once()
	partnerRepo.On("FindAvailableNear", ctx, mock.Anything).Return([]*partner.Partner{newPartnerFor(t, a.partner)}, nil).Once()
	offers.On("Replace", ctx, mock.Anything).Return(errors.New("offer store unavailable")).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewBroadcastToPartnersCommandHandler(factory, newTestBroadcaster(t), offers, nil, clock, nil)
	_, err = handler.Handle(ctx, cmd)

	require.EqualError(t, err, "offer store unavailable")
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}
