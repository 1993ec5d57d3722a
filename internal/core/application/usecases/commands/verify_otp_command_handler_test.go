package commands_test

import (
	"testing"

	"fooddelivery/internal/core/application/usecases/commands"
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/domain/services"
	"fooddelivery/internal/core/ports"
	"fooddelivery/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewVerifyOTPCommand_RequiresCode(t *testing.T) {
	a := newActors(t)
	_, err := commands.NewVerifyOTPCommand(kernel.NewUUID(), "  ", a.partner)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestVerifyOTPCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	a := newActors(t)
	o := newOrder(t, a, order.OnTheWay)

	cmd, err := commands.NewVerifyOTPCommand(o.ID(), " 5307 ", a.partner)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	limiter := new(MockAttemptLimiter)
	events := new(MockEventPublisher)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once(),
		limiter.On("Allow", o.ID().String()).Return(true).Once(),
		orderRepo.On("Update", ctx, o).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		events.On("Publish", ctx, eventOfKind(ports.EventDeliveryCodeVerified)).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewVerifyOTPCommandHandler(factory, services.NewOTPVerifier(), limiter, events, clock, nil)
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, o.IsOTPVerified())
	assert.Empty(t, o.DeliveryOTP())
	assert.Equal(t, order.OnTheWay, o.Status())
	limiter.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestVerifyOTPCommandHandler_Handle_Mismatch(t *testing.T) {
	ctx := t.Context()
	a := newActors(t)
	o := newOrder(t, a, order.OnTheWay)

	cmd, err := commands.NewVerifyOTPCommand(o.ID(), "0000", a.vendor)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	limiter := new(MockAttemptLimiter)

	limiter.On("Allow", o.ID().String()).Return(true).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	orderRepo.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once()

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewVerifyOTPCommandHandler(factory, services.NewOTPVerifier(), limiter, nil, clock, nil)
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrOtpMismatch)
	assert.False(t, o.IsOTPVerified())
	assert.Equal(t, "5307", o.DeliveryOTP())
	orderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestVerifyOTPCommandHandler_Handle_Throttled(t *testing.T) {
	ctx := t.Context()
	a := newActors(t)
	o := newOrder(t, a, order.OnTheWay)

	cmd, err := commands.NewVerifyOTPCommand(o.ID(), "5307", a.partner)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	limiter := new(MockAttemptLimiter)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	orderRepo.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once()
	limiter.On("Allow", o.ID().String()).Return(false).Once()

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewVerifyOTPCommandHandler(factory, services.NewOTPVerifier(), limiter, nil, clock, nil)
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrTooManyAttempts)
	assert.False(t, o.IsOTPVerified())
	orderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestVerifyOTPCommandHandler_Handle_CustomerForbidden(t *testing.T) {
	ctx := t.Context()
	a := newActors(t)
	o := newOrder(t, a, order.OnTheWay)

	cmd, err := commands.NewVerifyOTPCommand(o.ID(), "5307", a.customer)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	limiter := new(MockAttemptLimiter)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	orderRepo.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once()

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewVerifyOTPCommandHandler(factory, services.NewOTPVerifier(), limiter, nil, clock, nil)
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrForbidden)
	assert.False(t, o.IsOTPVerified())
	limiter.AssertNotCalled(t, "Allow", mock.Anything)
}
