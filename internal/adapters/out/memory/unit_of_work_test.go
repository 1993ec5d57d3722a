package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"fooddelivery/internal/adapters/out/memoffers"
	"fooddelivery/internal/adapters/out/memory"
	"fooddelivery/internal/core/application/usecases/commands"
	"fooddelivery/internal/core/domain/model/dispatch"
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/domain/model/partner"
	"fooddelivery/internal/core/domain/services"
	"fooddelivery/internal/core/ports"
	"fooddelivery/internal/pkg/errs"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 2, 18, 30, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type uowFactory struct{ factory *memory.UnitOfWorkFactory }

func (f uowFactory) Create() commands.UoW { return f.factory.Create() }

func newActor(t *testing.T, role kernel.Role) kernel.Actor {
	t.Helper()
	a, err := kernel.NewActor(kernel.NewUUID(), role)
	require.NoError(t, err)
	return a
}

func newAddress(t *testing.T, street string, lat, lon float64) kernel.Address {
	t.Helper()
	loc, err := kernel.NewLocation(lat, lon)
	require.NoError(t, err)
	addr, err := kernel.NewAddress(street, loc)
	require.NoError(t, err)
	return addr
}

func newOrder(t *testing.T, customer, vendor kernel.Actor) *order.Order {
	t.Helper()
	item, err := order.NewItem("sku-gyoza", "Gyoza", 3, kernel.MustMoney("4.50"))
	require.NoError(t, err)

	o, err := order.NewOrder(order.NewOrderParams{
		ID:              kernel.NewUUID(),
		CustomerID:      customer.ID(),
		VendorID:        vendor.ID(),
		Items:           []order.Item{item},
		Discount:        kernel.ZeroMoney,
		DeliveryCharge:  kernel.MustMoney("2.50"),
		DeliveryAddress: newAddress(t, "Oranienstrasse 12", 52.5010, 13.4180),
		PickupAddress:   newAddress(t, "Alexanderplatz 1", 52.5200, 13.4050),
		CreatedBy:       customer,
		At:              testNow,
	})
	require.NoError(t, err)
	return o
}

func newPartner(t *testing.T, id kernel.UUID, name string, lat, lon float64) *partner.Partner {
	t.Helper()
	loc, err := kernel.NewLocation(lat, lon)
	require.NoError(t, err)
	p, err := partner.NewPartner(id, name, loc)
	require.NoError(t, err)
	return p
}

func TestUnitOfWork_CommitMakesWritesVisible(t *testing.T) {
	ctx := t.Context()
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	o := newOrder(t, newActor(t, kernel.RoleCustomer), newActor(t, kernel.RoleVendor))

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.OrderRepository().Add(ctx, o))

	_, err := factory.Create().OrderRepository().Get(ctx, o.ID())
	require.Equal(t, errs.CodeNotFound, errs.CodeOf(err))

	staged, err := uow.OrderRepository().Get(ctx, o.ID())
	require.NoError(t, err)
	require.Equal(t, o.ID(), staged.ID())

	require.NoError(t, uow.Commit(ctx))
	require.NoError(t, uow.Rollback(ctx))

	stored, err := factory.Create().OrderRepository().Get(ctx, o.ID())
	require.NoError(t, err)
	require.Equal(t, order.Pending, stored.Status())
	require.Len(t, stored.History(), 1)
}

func TestUnitOfWork_RollbackDiscardsWrites(t *testing.T) {
	ctx := t.Context()
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	customer := newActor(t, kernel.RoleCustomer)
	o := newOrder(t, customer, newActor(t, kernel.RoleVendor))
	require.NoError(t, factory.Create().OrderRepository().Add(ctx, o))

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	loaded, err := uow.OrderRepository().GetForUpdate(ctx, o.ID())
	require.NoError(t, err)
	_, err = loaded.AttemptTransition(order.Canceled, customer, testNow, order.TransitionOptions{})
	require.NoError(t, err)
	require.NoError(t, uow.OrderRepository().Update(ctx, loaded))
	require.NoError(t, uow.Rollback(ctx))

	stored, err := factory.Create().OrderRepository().Get(ctx, o.ID())
	require.NoError(t, err)
	require.Equal(t, order.Pending, stored.Status())
	require.Equal(t, o.Version(), stored.Version())
}

func TestUnitOfWork_CommitWithoutBegin(t *testing.T) {
	uow := memory.NewUnitOfWorkFactory(memory.NewStore()).Create()

	require.ErrorIs(t, uow.Commit(t.Context()), memory.ErrNoActiveTransaction)
	require.NoError(t, uow.Rollback(t.Context()))
}

func TestOrderRepository_StaleUpdateIsRejected(t *testing.T) {
	ctx := t.Context()
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	customer, vendor := newActor(t, kernel.RoleCustomer), newActor(t, kernel.RoleVendor)
	o := newOrder(t, customer, vendor)
	require.NoError(t, factory.Create().OrderRepository().Add(ctx, o))

	first, err := factory.Create().OrderRepository().Get(ctx, o.ID())
	require.NoError(t, err)
	second, err := factory.Create().OrderRepository().Get(ctx, o.ID())
	require.NoError(t, err)

	_, err = first.AttemptTransition(order.Accepted, vendor, testNow, order.TransitionOptions{})
	require.NoError(t, err)
	require.NoError(t, factory.Create().OrderRepository().Update(ctx, first))

	_, err = second.AttemptTransition(order.Canceled, customer, testNow, order.TransitionOptions{})
	require.NoError(t, err)
	err = factory.Create().OrderRepository().Update(ctx, second)
	require.ErrorIs(t, err, errs.ErrConcurrentModification)

	stored, err := factory.Create().OrderRepository().Get(ctx, o.ID())
	require.NoError(t, err)
	require.Equal(t, order.Accepted, stored.Status())
	require.Equal(t, o.Version()+1, stored.Version())
}

func TestOrderRepository_GetForUpdateWaitsForHolder(t *testing.T) {
	ctx := t.Context()
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	o := newOrder(t, newActor(t, kernel.RoleCustomer), newActor(t, kernel.RoleVendor))
	require.NoError(t, factory.Create().OrderRepository().Add(ctx, o))

	holder := factory.Create()
	require.NoError(t, holder.Begin(ctx))
	_, err := holder.OrderRepository().GetForUpdate(ctx, o.ID())
	require.NoError(t, err)

	waiter := factory.Create()
	require.NoError(t, waiter.Begin(ctx))
	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = waiter.OrderRepository().GetForUpdate(short, o.ID())
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, holder.Commit(ctx))

	_, err = waiter.OrderRepository().GetForUpdate(ctx, o.ID())
	require.NoError(t, err)
	require.NoError(t, waiter.Rollback(ctx))
}

func TestOrderRepository_ListActive(t *testing.T) {
	ctx := t.Context()
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	customer, vendor := newActor(t, kernel.RoleCustomer), newActor(t, kernel.RoleVendor)

	active := newOrder(t, customer, vendor)
	canceled := newOrder(t, customer, vendor)
	_, err := canceled.AttemptTransition(order.Canceled, customer, testNow, order.TransitionOptions{})
	require.NoError(t, err)
	foreign := newOrder(t, newActor(t, kernel.RoleCustomer), vendor)

	repo := factory.Create().OrderRepository()
	for _, o := range []*order.Order{active, canceled, foreign} {
		require.NoError(t, repo.Add(ctx, o))
	}

	customerID := customer.ID()
	mine, err := repo.ListActive(ctx, ports.ActiveOrdersFilter{CustomerID: &customerID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, active.ID(), mine[0].ID())

	vendorID := vendor.ID()
	vendors, err := repo.ListActive(ctx, ports.ActiveOrdersFilter{VendorID: &vendorID})
	require.NoError(t, err)
	require.Len(t, vendors, 2)
}

func TestPartnerRepository_FindAvailableNear(t *testing.T) {
	ctx := t.Context()
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	repo := factory.Create().PartnerRepository()

	near := newPartner(t, kernel.NewUUID(), "Alex", 52.5230, 13.4100)
	far := newPartner(t, kernel.NewUUID(), "Bea", 52.4000, 13.4050)
	offline := newPartner(t, kernel.NewUUID(), "Cem", 52.5210, 13.4060)
	offline.SetAvailability(false)
	busy := newPartner(t, kernel.NewUUID(), "Dara", 52.5220, 13.4070)
	require.NoError(t, busy.StartDelivery(kernel.NewUUID()))

	for _, p := range []*partner.Partner{near, far, offline, busy} {
		require.NoError(t, repo.Add(ctx, p))
	}

	pickup, err := kernel.NewLocation(52.5200, 13.4050)
	require.NoError(t, err)

	found, err := repo.FindAvailableNear(ctx, pickup.BoundingBox(5))
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, near.ID(), found[0].ID())

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, "Alex", all[0].Name())
}

func TestPartnerRepository_AddTwice(t *testing.T) {
	ctx := t.Context()
	repo := memory.NewUnitOfWorkFactory(memory.NewStore()).Create().PartnerRepository()
	p := newPartner(t, kernel.NewUUID(), "Alex", 52.5230, 13.4100)

	require.NoError(t, repo.Add(ctx, p))
	require.ErrorIs(t, repo.Add(ctx, p), errs.ErrConcurrentModification)
}

// Every partner in the batch claims at once; the order row decides the winner.
func TestConcurrentClaims_ExactlyOneWins(t *testing.T) {
	const claimants = 8

	ctx := t.Context()
	store := memory.NewStore()
	factory := memory.NewUnitOfWorkFactory(store)
	offers := memoffers.NewStore()
	clock := fixedClock{now: testNow}

	customer, vendor := newActor(t, kernel.RoleCustomer), newActor(t, kernel.RoleVendor)
	o := newOrder(t, customer, vendor)
	_, err := o.AttemptTransition(order.Accepted, vendor, testNow, order.TransitionOptions{})
	require.NoError(t, err)
	require.NoError(t, factory.Create().OrderRepository().Add(ctx, o))

	partners := make([]kernel.Actor, 0, claimants)
	ids := make([]kernel.UUID, 0, claimants)
	for range claimants {
		a := newActor(t, kernel.RoleDeliveryPartner)
		partners = append(partners, a)
		ids = append(ids, a.ID())
		require.NoError(t, factory.Create().PartnerRepository().Add(ctx, newPartner(t, a.ID(), "Rider", 52.5230, 13.4100)))
	}

	batch, err := dispatch.NewBroadcast(o.ID(), ids, testNow.Add(-5*time.Second), 30*time.Second)
	require.NoError(t, err)
	require.NoError(t, offers.Replace(ctx, batch))

	generator, err := services.NewOTPGenerator(services.DefaultOTPLength)
	require.NoError(t, err)
	handler := commands.NewPartnerClaimCommandHandler(uowFactory{factory}, offers, generator, nil, clock, nil)

	results := make([]error, claimants)
	var wg sync.WaitGroup
	for i, a := range partners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cmd, err := commands.NewPartnerClaimCommand(o.ID(), a)
			if err != nil {
				results[i] = err
				return
			}
			_, results[i] = handler.Handle(ctx, cmd)
		}()
	}
	wg.Wait()

	var winner kernel.UUID
	wins := 0
	for i, err := range results {
		if err == nil {
			wins++
			winner = ids[i]
			continue
		}
		require.Equal(t, errs.CodeAlreadyClaimed, errs.CodeOf(err))
	}
	require.Equal(t, 1, wins)

	stored, err := factory.Create().OrderRepository().Get(ctx, o.ID())
	require.NoError(t, err)
	require.Equal(t, order.Assigned, stored.Status())
	require.True(t, winner.EqualPtr(stored.AssignedPartner()))
	require.Len(t, stored.DeliveryOTP(), services.DefaultOTPLength)

	busy, err := factory.Create().PartnerRepository().Get(ctx, winner)
	require.NoError(t, err)
	require.False(t, busy.IsIdle())

	settled, err := offers.Get(ctx, o.ID())
	require.NoError(t, err)
	require.Equal(t, dispatch.StateResolved, settled.State(testNow))
}
