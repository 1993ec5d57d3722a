package commands_test

import (
	"context"
	"testing"
	"time"

	"fooddelivery/internal/core/application/usecases/commands"
	"fooddelivery/internal/core/domain/model/dispatch"
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/domain/model/partner"
	"fooddelivery/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 2, 18, 30, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var clock = fixedClock{now: testNow}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ListActive(ctx context.Context, filter ports.ActiveOrdersFilter) ([]*order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockPartnerRepository struct{ mock.Mock }

func (m *MockPartnerRepository) Add(ctx context.Context, p *partner.Partner) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPartnerRepository) Update(ctx context.Context, p *partner.Partner) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPartnerRepository) Get(ctx context.Context, id kernel.UUID) (*partner.Partner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Partner), args.Error(1)
}

func (m *MockPartnerRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*partner.Partner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Partner), args.Error(1)
}

func (m *MockPartnerRepository) FindAvailableNear(ctx context.Context, box kernel.BoundingBox) ([]*partner.Partner, error) {
	args := m.Called(ctx, box)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*partner.Partner), args.Error(1)
}

func (m *MockPartnerRepository) List(ctx context.Context) ([]*partner.Partner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*partner.Partner), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) PartnerRepository() ports.PartnerRepository {
	args := m.Called()
	return args.Get(0).(ports.PartnerRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockPartnerUoWFactory struct{ mock.Mock }

func (m *MockPartnerUoWFactory) Create() commands.PartnerUoW {
	args := m.Called()
	return args.Get(0).(commands.PartnerUoW)
}

type MockOfferStore struct{ mock.Mock }

func (m *MockOfferStore) Replace(ctx context.Context, batch *dispatch.Broadcast) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockOfferStore) Get(ctx context.Context, orderID kernel.UUID) (*dispatch.Broadcast, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dispatch.Broadcast), args.Error(1)
}

func (m *MockOfferStore) Resolve(ctx context.Context, orderID, winner kernel.UUID) error {
	args := m.Called(ctx, orderID, winner)
	return args.Error(0)
}

func (m *MockOfferStore) WithdrawAll(ctx context.Context, orderID kernel.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOfferStore) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, events ...ports.OrderChangedEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type MockAttemptLimiter struct{ mock.Mock }

func (m *MockAttemptLimiter) Allow(key string) bool {
	args := m.Called(key)
	return args.Bool(0)
}

func eventOfKind(kind ports.EventKind) any {
	return mock.MatchedBy(func(events []ports.OrderChangedEvent) bool {
		return len(events) == 1 && events[0].Kind == kind
	})
}

type actors struct {
	customer kernel.Actor
	vendor   kernel.Actor
	partner  kernel.Actor
	admin    kernel.Actor
}

func newActors(t *testing.T) actors {
	t.Helper()
	mk := func(role kernel.Role) kernel.Actor {
		a, err := kernel.NewActor(kernel.NewUUID(), role)
		require.NoError(t, err)
		return a
	}
	return actors{
		customer: mk(kernel.RoleCustomer),
		vendor:   mk(kernel.RoleVendor),
		partner:  mk(kernel.RoleDeliveryPartner),
		admin:    mk(kernel.RoleAdmin),
	}
}

func newLocation(t *testing.T, lat, lon float64) kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation(lat, lon)
	require.NoError(t, err)
	return loc
}

func newAddress(t *testing.T, street string, lat, lon float64) kernel.Address {
	t.Helper()
	addr, err := kernel.NewAddress(street, newLocation(t, lat, lon))
	require.NoError(t, err)
	return addr
}

func newItems(t *testing.T) []order.Item {
	t.Helper()
	item, err := order.NewItem("sku-ramen", "Shoyu Ramen", 2, kernel.MustMoney("11.00"))
	require.NoError(t, err)
	return []order.Item{item}
}

// newOrder walks a fresh order along the happy path up to status. Terminal targets
// other than Delivered are reached directly from Pending.
func newOrder(t *testing.T, a actors, status order.Status) *order.Order {
	t.Helper()
	o, err := order.NewOrder(order.NewOrderParams{
		ID:              kernel.NewUUID(),
		CustomerID:      a.customer.ID(),
		VendorID:        a.vendor.ID(),
		Items:           newItems(t),
		Discount:        kernel.ZeroMoney,
		DeliveryCharge:  kernel.MustMoney("3.00"),
		DeliveryAddress: newAddress(t, "Oranienstrasse 12", 52.5010, 13.4180),
		PickupAddress:   newAddress(t, "Alexanderplatz 1", 52.5200, 13.4050),
		CreatedBy:       a.customer,
		At:              testNow,
	})
	require.NoError(t, err)

	if status == order.Rejected || status == order.Canceled {
		_, err = o.AttemptTransition(status, a.admin, testNow, order.TransitionOptions{})
		require.NoError(t, err)
		return o
	}

	for _, next := range []order.Status{order.Accepted, order.Assigned, order.PickedUp, order.OnTheWay, order.Delivered} {
		if o.Status() == status {
			break
		}
		switch next {
		case order.Assigned:
			require.NoError(t, o.AssignPartner(a.partner.ID(), "5307", a.partner, testNow))
			continue
		case order.Delivered:
			require.NoError(t, o.VerifyDeliveryCode("5307", testNow))
		}
		_, err = o.AttemptTransition(next, a.admin, testNow, order.TransitionOptions{})
		require.NoError(t, err)
	}
	require.Equal(t, status, o.Status())
	return o
}

func newPartnerFor(t *testing.T, a kernel.Actor) *partner.Partner {
	t.Helper()
	p, err := partner.NewPartner(a.ID(), "Rider", newLocation(t, 52.5230, 13.4100))
	require.NoError(t, err)
	return p
}
