package services_test

import (
	"testing"
	"time"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/domain/model/partner"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// pickup is in Berlin Mitte; see nearPartner/farPartner for distances.
const pickupLat, pickupLon = 52.5200, 13.4050

type actors struct {
	customer kernel.Actor
	vendor   kernel.Actor
	partner  kernel.Actor
	admin    kernel.Actor
}

func newActor(t *testing.T, role kernel.Role) kernel.Actor {
	t.Helper()
	a, err := kernel.NewActor(kernel.NewUUID(), role)
	require.NoError(t, err)
	return a
}

func newActors(t *testing.T) actors {
	t.Helper()
	return actors{
		customer: newActor(t, kernel.RoleCustomer),
		vendor:   newActor(t, kernel.RoleVendor),
		partner:  newActor(t, kernel.RoleDeliveryPartner),
		admin:    newActor(t, kernel.RoleAdmin),
	}
}

func newLocation(t *testing.T, lat, lon float64) kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation(lat, lon)
	require.NoError(t, err)
	return loc
}

func newOrder(t *testing.T, a actors, status order.Status) *order.Order {
	t.Helper()
	pickup, err := kernel.NewAddress("Alexanderplatz 1", newLocation(t, pickupLat, pickupLon))
	require.NoError(t, err)
	dropOff, err := kernel.NewAddress("Karl-Marx-Allee 90", newLocation(t, 52.5170, 13.4400))
	require.NoError(t, err)
	item, err := order.NewItem("sku-1", "Bowl", 1, kernel.MustMoney("9.90"))
	require.NoError(t, err)

	o, err := order.NewOrder(order.NewOrderParams{
		ID:              kernel.NewUUID(),
		CustomerID:      a.customer.ID(),
		VendorID:        a.vendor.ID(),
		Items:           []order.Item{item},
		Discount:        kernel.ZeroMoney,
		DeliveryCharge:  kernel.MustMoney("2.50"),
		DeliveryAddress: dropOff,
		PickupAddress:   pickup,
		CreatedBy:       a.customer,
		At:              testNow,
	})
	require.NoError(t, err)

	if status == order.Rejected || status == order.Canceled {
		_, err = o.AttemptTransition(status, a.admin, testNow, order.TransitionOptions{})
		require.NoError(t, err)
		return o
	}

	for _, next := range []order.Status{order.Accepted, order.Assigned, order.PickedUp, order.OnTheWay} {
		if o.Status() == status {
			break
		}
		if next == order.Assigned {
			require.NoError(t, o.AssignPartner(a.partner.ID(), "1234", a.partner, testNow))
			continue
		}
		_, err = o.AttemptTransition(next, a.admin, testNow, order.TransitionOptions{})
		require.NoError(t, err)
	}
	require.Equal(t, status, o.Status())
	return o
}

func newPartner(t *testing.T, lat, lon float64) *partner.Partner {
	t.Helper()
	p, err := partner.NewPartner(kernel.NewUUID(), "Partner", newLocation(t, lat, lon))
	require.NoError(t, err)
	return p
}

// nearPartner is ~0.7 km from pickup.
func nearPartner(t *testing.T) *partner.Partner {
	t.Helper()
	return newPartner(t, 52.5250, 13.4120)
}

// farPartner is ~11 km from pickup.
func farPartner(t *testing.T) *partner.Partner {
	t.Helper()
	return newPartner(t, 52.4200, 13.4050)
}
