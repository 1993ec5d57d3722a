// Package eventlog publishes order-changed events to the application log. It is
// the event sink when no Kafka brokers are configured.
package eventlog

import (
	"context"
	"log/slog"

	"fooddelivery/internal/core/ports"
)

type Publisher struct {
	logger *slog.Logger
}

func NewPublisher(logger *slog.Logger) *Publisher {
	return &Publisher{logger: logger.With("component", "events")}
}

func (p *Publisher) Publish(ctx context.Context, events ...ports.OrderChangedEvent) error {
	for _, e := range events {
		attrs := []any{
			slog.String("kind", string(e.Kind)),
			slog.String("order_id", e.OrderID.String()),
			slog.String("status", e.Status.String()),
			slog.String("actor", e.Actor.String()),
			slog.Int("version", e.Version),
		}
		if e.PartnerID != nil {
			attrs = append(attrs, slog.String("partner_id", e.PartnerID.String()))
		}
		p.logger.InfoContext(ctx, "order changed", attrs...)
	}
	return nil
}
