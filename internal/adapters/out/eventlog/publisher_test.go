package eventlog_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"fooddelivery/internal/adapters/out/eventlog"
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/ports"

	"github.com/stretchr/testify/require"
)

func TestPublisher_Publish(t *testing.T) {
	var buf bytes.Buffer
	publisher := eventlog.NewPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))
	orderID := kernel.NewUUID()

	err := publisher.Publish(t.Context(), ports.OrderChangedEvent{
		Kind:       ports.EventStatusChanged,
		OrderID:    orderID,
		Status:     order.Accepted,
		Actor:      kernel.SystemActor(kernel.NewUUID()),
		Version:    1,
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "order changed", record["msg"])
	require.Equal(t, "events", record["component"])
	require.Equal(t, orderID.String(), record["order_id"])
	require.Equal(t, "accepted", record["status"])
	require.NotContains(t, record, "partner_id")
}
