package order_test

import (
	"testing"
	"time"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type parties struct {
	customer kernel.Actor
	vendor   kernel.Actor
	partner  kernel.Actor
	admin    kernel.Actor
}

func newParties(t *testing.T) parties {
	t.Helper()
	mk := func(role kernel.Role) kernel.Actor {
		a, err := kernel.NewActor(kernel.NewUUID(), role)
		require.NoError(t, err)
		return a
	}
	return parties{
		customer: mk(kernel.RoleCustomer),
		vendor:   mk(kernel.RoleVendor),
		partner:  mk(kernel.RoleDeliveryPartner),
		admin:    mk(kernel.RoleAdmin),
	}
}

func newAddress(t *testing.T, street string, lat, lon float64) kernel.Address {
	t.Helper()
	loc, err := kernel.NewLocation(lat, lon)
	require.NoError(t, err)
	addr, err := kernel.NewAddress(street, loc)
	require.NoError(t, err)
	return addr
}

func newItems(t *testing.T) []order.Item {
	t.Helper()
	pizza, err := order.NewItem("sku-pizza", "Margherita", 2, kernel.MustMoney("8.50"))
	require.NoError(t, err)
	cola, err := order.NewItem("sku-cola", "Cola", 1, kernel.MustMoney("2.00"))
	require.NoError(t, err)
	return []order.Item{pizza, cola}
}

func newPendingOrder(t *testing.T, p parties) *order.Order {
	t.Helper()
	o, err := order.NewOrder(order.NewOrderParams{
		ID:              kernel.NewUUID(),
		CustomerID:      p.customer.ID(),
		VendorID:        p.vendor.ID(),
		Items:           newItems(t),
		Discount:        kernel.MustMoney("1.00"),
		DeliveryCharge:  kernel.MustMoney("3.00"),
		DeliveryAddress: newAddress(t, "Torstrasse 1", 52.529, 13.401),
		PickupAddress:   newAddress(t, "Rosenthaler Strasse 2", 52.526, 13.402),
		CreatedBy:       p.customer,
		At:              testNow,
	})
	require.NoError(t, err)
	return o
}

func newAcceptedOrder(t *testing.T, p parties) *order.Order {
	t.Helper()
	o := newPendingOrder(t, p)
	_, err := o.AttemptTransition(order.Accepted, p.vendor, testNow, order.TransitionOptions{})
	require.NoError(t, err)
	return o
}

func newOnTheWayOrder(t *testing.T, p parties) *order.Order {
	t.Helper()
	o := newAcceptedOrder(t, p)
	require.NoError(t, o.AssignPartner(p.partner.ID(), "4821", p.partner, testNow))
	_, err := o.AttemptTransition(order.PickedUp, p.partner, testNow, order.TransitionOptions{})
	require.NoError(t, err)
	_, err = o.AttemptTransition(order.OnTheWay, p.partner, testNow, order.TransitionOptions{})
	require.NoError(t, err)
	return o
}
