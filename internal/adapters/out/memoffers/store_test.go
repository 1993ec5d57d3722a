package memoffers_test

import (
	"testing"
	"time"

	"fooddelivery/internal/adapters/out/memoffers"
	"fooddelivery/internal/core/domain/model/dispatch"
	"fooddelivery/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 2, 18, 30, 0, 0, time.UTC)

func newBatch(t *testing.T, orderID kernel.UUID, partners ...kernel.UUID) *dispatch.Broadcast {
	t.Helper()

	batch, err := dispatch.NewBroadcast(orderID, partners, now, 30*time.Second)
	require.NoError(t, err)
	return batch
}

func TestStore_GetUnknownOrder(t *testing.T) {
	store := memoffers.NewStore()

	batch, err := store.Get(t.Context(), kernel.NewUUID())

	require.NoError(t, err)
	require.Empty(t, batch.Offers())
	require.Equal(t, dispatch.StateNone, batch.State(now))
}

func TestStore_ReplaceDiscardsPreviousBatch(t *testing.T) {
	store := memoffers.NewStore()
	orderID := kernel.NewUUID()
	first, second := kernel.NewUUID(), kernel.NewUUID()

	require.NoError(t, store.Replace(t.Context(), newBatch(t, orderID, first)))
	require.NoError(t, store.Replace(t.Context(), newBatch(t, orderID, second)))

	batch, err := store.Get(t.Context(), orderID)
	require.NoError(t, err)
	require.Equal(t, []kernel.UUID{second}, batch.PartnerIDs())
}

func TestStore_Resolve(t *testing.T) {
	store := memoffers.NewStore()
	orderID := kernel.NewUUID()
	winner, loser := kernel.NewUUID(), kernel.NewUUID()
	require.NoError(t, store.Replace(t.Context(), newBatch(t, orderID, winner, loser)))

	require.NoError(t, store.Resolve(t.Context(), orderID, winner))

	batch, err := store.Get(t.Context(), orderID)
	require.NoError(t, err)
	require.Equal(t, dispatch.StateResolved, batch.State(now))

	got, ok := batch.Winner()
	require.True(t, ok)
	require.Equal(t, winner, got)

	offer, ok := batch.OfferFor(loser)
	require.True(t, ok)
	require.Equal(t, dispatch.OutcomeWithdrawn, offer.Outcome())
}

func TestStore_ResolveWithoutOfferOnlyWithdraws(t *testing.T) {
	store := memoffers.NewStore()
	orderID := kernel.NewUUID()
	require.NoError(t, store.Replace(t.Context(), newBatch(t, orderID, kernel.NewUUID())))

	require.NoError(t, store.Resolve(t.Context(), orderID, kernel.NewUUID()))

	batch, err := store.Get(t.Context(), orderID)
	require.NoError(t, err)
	require.Equal(t, dispatch.StateWithdrawn, batch.State(now))
}

func TestStore_WithdrawAll(t *testing.T) {
	store := memoffers.NewStore()
	orderID := kernel.NewUUID()
	require.NoError(t, store.Replace(t.Context(), newBatch(t, orderID, kernel.NewUUID(), kernel.NewUUID())))

	require.NoError(t, store.WithdrawAll(t.Context(), orderID))

	batch, err := store.Get(t.Context(), orderID)
	require.NoError(t, err)
	for _, offer := range batch.Offers() {
		require.Equal(t, dispatch.OutcomeWithdrawn, offer.Outcome())
	}
}

func TestStore_ExpireDue(t *testing.T) {
	store := memoffers.NewStore()
	orderID, settledID := kernel.NewUUID(), kernel.NewUUID()
	require.NoError(t, store.Replace(t.Context(), newBatch(t, orderID, kernel.NewUUID(), kernel.NewUUID())))
	require.NoError(t, store.Replace(t.Context(), newBatch(t, settledID, kernel.NewUUID())))
	require.NoError(t, store.WithdrawAll(t.Context(), settledID))

	count, err := store.ExpireDue(t.Context(), now.Add(10*time.Second))
	require.NoError(t, err)
	require.Zero(t, count)

	count, err = store.ExpireDue(t.Context(), now.Add(30*time.Second))
	require.NoError(t, err)
	require.Equal(t, 2, count)

	count, err = store.ExpireDue(t.Context(), now.Add(time.Minute))
	require.NoError(t, err)
	require.Zero(t, count)

	batch, err := store.Get(t.Context(), orderID)
	require.NoError(t, err)
	require.Equal(t, dispatch.StateExpired, batch.State(now))
}
