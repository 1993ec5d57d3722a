package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"fooddelivery/internal/adapters/out/memory"
	"fooddelivery/internal/core/application/usecases/commands"
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReader struct{ mock.Mock }

func (m *MockReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	args := m.Called(ctx)
	return args.Get(0).(kafka.Message), args.Error(1)
}

func (m *MockReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	return m.Called(ctx, msgs).Error(0)
}

func (m *MockReader) Close() error {
	return m.Called().Error(0)
}

type MockCreator struct{ mock.Mock }

func (m *MockCreator) Handle(ctx context.Context, cmd commands.CreateOrderCommand) (*order.Order, error) {
	args := m.Called(ctx, cmd)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type orderUoWFactory struct{ factory *memory.UnitOfWorkFactory }

func (f orderUoWFactory) Create() commands.OrderUoW { return f.factory.Create() }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func checkoutMessage(orderID kernel.UUID) CheckoutConfirmed {
	return CheckoutConfirmed{
		OrderID:    orderID.String(),
		CustomerID: kernel.NewUUID().String(),
		VendorID:   kernel.NewUUID().String(),
		Items: []CheckoutItem{
			{ProductID: "p-1", Name: "Pad thai", Quantity: 2, UnitPrice: "8.00", LineSubtotal: "16.00"},
			{ProductID: "p-2", Name: "Spring rolls", Quantity: 1, UnitPrice: "4.50"},
		},
		Discount:        "2.00",
		DeliveryCharge:  "3.00",
		TotalPrice:      "20.50",
		FinalAmount:     "21.50",
		DeliveryAddress: CheckoutAddress{Street: "1 Main St", Location: CheckoutLocation{Lat: 40.7128, Lon: -74.0060}},
		PickupAddress:   CheckoutAddress{Street: "Thai House", Location: CheckoutLocation{Lat: 40.7150, Lon: -74.0100}},
	}
}

func encode(t *testing.T, msg CheckoutConfirmed) []byte {
	t.Helper()
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	return raw
}

func TestDecodeCheckoutConfirmed(t *testing.T) {
	orderID := kernel.NewUUID()

	payload, err := DecodeCheckoutConfirmed(encode(t, checkoutMessage(orderID)))

	require.NoError(t, err)
	assert.True(t, payload.OrderID.IsEqual(orderID))
	require.Len(t, payload.Items, 2)
	assert.Equal(t, "16.00", payload.Items[0].LineSubtotal().String())
	assert.Equal(t, "4.50", payload.Items[1].LineSubtotal().String())
	require.NotNil(t, payload.DeclaredFinal)
	assert.Equal(t, "21.50", payload.DeclaredFinal.String())
	assert.Equal(t, "Thai House", payload.PickupAddress.Street())
}

func TestDecodeCheckoutConfirmed_Invalid(t *testing.T) {
	tests := map[string]func(*CheckoutConfirmed){
		"bad order id":       func(m *CheckoutConfirmed) { m.OrderID = "nope" },
		"subtotal mismatch":  func(m *CheckoutConfirmed) { m.Items[0].LineSubtotal = "15.00" },
		"negative price":     func(m *CheckoutConfirmed) { m.Items[1].UnitPrice = "-1" },
		"latitude":           func(m *CheckoutConfirmed) { m.DeliveryAddress.Location.Lat = 123 },
		"half declared":      func(m *CheckoutConfirmed) { m.FinalAmount = "" },
		"unparseable charge": func(m *CheckoutConfirmed) { m.DeliveryCharge = "three" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			msg := checkoutMessage(kernel.NewUUID())
			mutate(&msg)

			_, err := DecodeCheckoutConfirmed(encode(t, msg))

			require.Error(t, err)
			assert.Equal(t, errs.CodeInvalidArgument, errs.CodeOf(err))
		})
	}

	_, err := DecodeCheckoutConfirmed([]byte("{not json"))
	assert.Equal(t, errs.CodeInvalidArgument, errs.CodeOf(err))
}

func TestConsumer_CreatesOrdersAndSkipsPoison(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	clock := fixedClock{now: time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC)}
	handler := commands.NewCreateOrderCommandHandler(orderUoWFactory{factory}, nil, clock, discardLogger())

	orderID := kernel.NewUUID()
	valid := kafka.Message{Offset: 1, Value: encode(t, checkoutMessage(orderID))}
	poison := kafka.Message{Offset: 2, Value: []byte("garbage")}

	reader := new(MockReader)
	reader.On("FetchMessage", mock.Anything).Return(valid, nil).Once()
	reader.On("FetchMessage", mock.Anything).Return(poison, nil).Once()
	reader.On("FetchMessage", mock.Anything).Run(func(mock.Arguments) { cancel() }).
		Return(kafka.Message{}, context.Canceled).Once()
	reader.On("CommitMessages", mock.Anything, []kafka.Message{valid}).Return(nil).Once()
	reader.On("CommitMessages", mock.Anything, []kafka.Message{poison}).Return(nil).Once()

	consumer := newCheckoutConfirmedConsumer(reader, handler, kernel.SystemActor(kernel.NewUUID()), discardLogger(), time.Millisecond)

	require.NoError(t, consumer.Run(ctx))
	reader.AssertExpectations(t)

	created, err := factory.Create().OrderRepository().Get(t.Context(), orderID)
	require.NoError(t, err)
	assert.Equal(t, order.Pending, created.Status())
	assert.Equal(t, "21.50", created.Pricing().FinalAmount().String())
	assert.Equal(t, kernel.RoleSystem, created.History()[0].Actor().Role())
}

func TestConsumer_RetriesTransientFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	msg := kafka.Message{Offset: 7, Value: encode(t, checkoutMessage(kernel.NewUUID()))}

	creator := new(MockCreator)
	creator.On("Handle", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset")).Once()
	creator.On("Handle", mock.Anything, mock.Anything).Return(&order.Order{}, nil).Once()

	reader := new(MockReader)
	reader.On("FetchMessage", mock.Anything).Return(msg, nil).Once()
	reader.On("FetchMessage", mock.Anything).Run(func(mock.Arguments) { cancel() }).
		Return(kafka.Message{}, context.Canceled).Once()
	reader.On("CommitMessages", mock.Anything, []kafka.Message{msg}).Return(nil).Once()

	consumer := newCheckoutConfirmedConsumer(reader, creator, kernel.SystemActor(kernel.NewUUID()), discardLogger(), time.Millisecond)

	require.NoError(t, consumer.Run(ctx))
	creator.AssertNumberOfCalls(t, "Handle", 2)
	reader.AssertExpectations(t)
}
