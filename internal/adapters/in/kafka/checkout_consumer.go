// Package kafka consumes checkout-confirmed messages and turns each into a new
// order. Checkout is the pricing authority; the consumer only rebuilds the
// already-priced payload and hands it to the create-order use case.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"fooddelivery/internal/core/application/usecases/commands"
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
)

const defaultRetryDelay = 2 * time.Second

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type orderCreator interface {
	Handle(ctx context.Context, cmd commands.CreateOrderCommand) (*order.Order, error)
}

type CheckoutLocation struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type CheckoutAddress struct {
	Street   string           `json:"street"`
	Location CheckoutLocation `json:"location"`
}

type CheckoutItem struct {
	ProductID    string `json:"productId"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	UnitPrice    string `json:"unitPrice"`
	LineSubtotal string `json:"lineSubtotal"`
}

// CheckoutConfirmed is the message checkout publishes once a basket is paid for.
type CheckoutConfirmed struct {
	OrderID         string          `json:"orderId"`
	CustomerID      string          `json:"customerId"`
	VendorID        string          `json:"vendorId"`
	Items           []CheckoutItem  `json:"items"`
	Discount        string          `json:"discount"`
	DeliveryCharge  string          `json:"deliveryCharge"`
	TotalPrice      string          `json:"totalPrice"`
	FinalAmount     string          `json:"finalAmount"`
	DeliveryAddress CheckoutAddress `json:"deliveryAddress"`
	PickupAddress   CheckoutAddress `json:"pickupAddress"`
}

// DecodeCheckoutConfirmed parses a message value into a checkout payload. Every
// failure is a validation error: the message will never become valid on retry.
func DecodeCheckoutConfirmed(value []byte) (commands.CheckoutPayload, error) {
	var msg CheckoutConfirmed
	if err := json.Unmarshal(value, &msg); err != nil {
		return commands.CheckoutPayload{}, errs.NewValueIsInvalidErrorWithCause("message", err)
	}

	var payload commands.CheckoutPayload
	var errList []error
	collect := func(err error) {
		if err != nil {
			errList = append(errList, err)
		}
	}

	var err error
	payload.OrderID, err = kernel.UUIDFromString(msg.OrderID)
	collect(err)
	payload.CustomerID, err = kernel.UUIDFromString(msg.CustomerID)
	collect(err)
	payload.VendorID, err = kernel.UUIDFromString(msg.VendorID)
	collect(err)

	for _, it := range msg.Items {
		item, err := decodeItem(it)
		collect(err)
		if err == nil {
			payload.Items = append(payload.Items, item)
		}
	}

	payload.Discount, err = moneyOrZero(msg.Discount)
	collect(err)
	payload.DeliveryCharge, err = moneyOrZero(msg.DeliveryCharge)
	collect(err)

	if msg.TotalPrice != "" || msg.FinalAmount != "" {
		total, totalErr := kernel.MoneyFromString(msg.TotalPrice)
		final, finalErr := kernel.MoneyFromString(msg.FinalAmount)
		collect(totalErr)
		collect(finalErr)
		payload.DeclaredTotal, payload.DeclaredFinal = &total, &final
	}

	payload.DeliveryAddress, err = decodeAddress(msg.DeliveryAddress)
	collect(err)
	payload.PickupAddress, err = decodeAddress(msg.PickupAddress)
	collect(err)

	if err = errors.Join(errList...); err != nil {
		return commands.CheckoutPayload{}, err
	}
	return payload, nil
}

func decodeItem(it CheckoutItem) (order.Item, error) {
	price, err := kernel.MoneyFromString(it.UnitPrice)
	if err != nil {
		return order.Item{}, err
	}
	if it.LineSubtotal == "" {
		return order.NewItem(it.ProductID, it.Name, it.Quantity, price)
	}
	subtotal, err := kernel.MoneyFromString(it.LineSubtotal)
	if err != nil {
		return order.Item{}, err
	}
	return order.RestoreItem(it.ProductID, it.Name, it.Quantity, price, subtotal)
}

func decodeAddress(a CheckoutAddress) (kernel.Address, error) {
	loc, err := kernel.NewLocation(a.Location.Lat, a.Location.Lon)
	if err != nil {
		return kernel.Address{}, err
	}
	return kernel.NewAddress(a.Street, loc)
}

func moneyOrZero(s string) (kernel.Money, error) {
	if s == "" {
		return kernel.ZeroMoney, nil
	}
	return kernel.MoneyFromString(s)
}

// CheckoutConfirmedConsumer reads checkout-confirmed messages in a consumer group
// and commits each offset once its order exists. Messages that can never succeed
// are logged and skipped; anything else is retried until the context ends.
type CheckoutConfirmedConsumer struct {
	reader     messageReader
	creator    orderCreator
	actor      kernel.Actor
	logger     *slog.Logger
	retryDelay time.Duration
}

func NewCheckoutConfirmedConsumer(
	brokers []string,
	groupID, topic string,
	creator commands.CreateOrderCommandHandler,
	consumerID kernel.UUID,
	logger *slog.Logger,
) *CheckoutConfirmedConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return newCheckoutConfirmedConsumer(reader, creator, kernel.SystemActor(consumerID), logger, defaultRetryDelay)
}

func newCheckoutConfirmedConsumer(
	reader messageReader,
	creator orderCreator,
	actor kernel.Actor,
	logger *slog.Logger,
	retryDelay time.Duration,
) *CheckoutConfirmedConsumer {
	return &CheckoutConfirmedConsumer{
		reader:     reader,
		creator:    creator,
		actor:      actor,
		logger:     logger.With("component", "checkout-consumer"),
		retryDelay: retryDelay,
	}
}

// Run consumes until ctx is canceled. It returns nil on cancellation.
func (c *CheckoutConfirmedConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err = c.processWithRetry(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err = c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func (c *CheckoutConfirmedConsumer) Close() error {
	return c.reader.Close()
}

func (c *CheckoutConfirmedConsumer) processWithRetry(ctx context.Context, msg kafka.Message) error {
	for {
		err := c.process(ctx, msg)
		if err == nil {
			return nil
		}

		attrs := []any{
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
			slog.Any("error", err),
		}
		if errs.CodeOf(err) != errs.CodeInternal {
			c.logger.WarnContext(ctx, "skip checkout message", attrs...)
			return nil
		}

		c.logger.ErrorContext(ctx, "process checkout message, retrying", attrs...)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
}

func (c *CheckoutConfirmedConsumer) process(ctx context.Context, msg kafka.Message) error {
	payload, err := DecodeCheckoutConfirmed(msg.Value)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCreateOrderCommand(payload, c.actor)
	if err != nil {
		return err
	}

	created, err := c.creator.Handle(ctx, cmd)
	if err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "order created from checkout",
		slog.String("order_id", created.ID().String()),
		slog.Int64("offset", msg.Offset))
	return nil
}
