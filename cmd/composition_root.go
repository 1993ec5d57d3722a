package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	httpapi "fooddelivery/internal/adapters/in/http"
	kafkain "fooddelivery/internal/adapters/in/kafka"
	"fooddelivery/internal/adapters/out/eventlog"
	kafkaout "fooddelivery/internal/adapters/out/kafka"
	"fooddelivery/internal/adapters/out/memoffers"
	"fooddelivery/internal/adapters/out/memory"
	"fooddelivery/internal/adapters/out/postgres"
	"fooddelivery/internal/adapters/out/ratelimit"
	redisoffers "fooddelivery/internal/adapters/out/redis"
	"fooddelivery/internal/core/application/usecases/commands"
	"fooddelivery/internal/core/application/usecases/queries"
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/domain/services"
	"fooddelivery/internal/core/ports"
	"fooddelivery/internal/jobs"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// checkoutConsumerID is the stable identity orders created from checkout
// messages are attributed to.
var checkoutConsumerID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("fooddelivery/checkout-consumer"))

type CompositionRoot struct {
	cfg    Config
	logger *slog.Logger
	clock  ports.Clock

	uowFactory ports.UnitOfWorkFactory
	offers     ports.DispatchOfferStore
	events     ports.EventPublisher
	limiter    *ratelimit.KeyedLimiter

	broadcaster services.Broadcaster
	generator   services.OTPGenerator

	closers []func() error
}

// NewCompositionRoot connects the configured storage, offer store and event
// sink. Close releases whatever it opened.
func NewCompositionRoot(ctx context.Context, cfg Config, logger *slog.Logger) (*CompositionRoot, error) {
	broadcaster, err := services.NewBroadcaster(cfg.ServiceRadiusKm, cfg.BroadcastTimeout)
	if err != nil {
		return nil, err
	}
	generator, err := services.NewOTPGenerator(cfg.OTPLength)
	if err != nil {
		return nil, err
	}

	c := &CompositionRoot{
		cfg:         cfg,
		logger:      logger,
		clock:       ports.SystemClock{},
		broadcaster: broadcaster,
		generator:   generator,
	}
	c.limiter = ratelimit.NewKeyedLimiter(cfg.OTPAttemptBurst, cfg.OTPAttemptInterval, c.clock)

	if err = c.openStorage(ctx); err != nil {
		return nil, errors.Join(err, c.Close())
	}
	if err = c.openOffers(ctx); err != nil {
		return nil, errors.Join(err, c.Close())
	}
	c.openEvents()

	return c, nil
}

func (c *CompositionRoot) openStorage(ctx context.Context) error {
	if c.cfg.Storage == StorageMemory {
		c.uowFactory = memory.NewUnitOfWorkFactory(memory.NewStore())
		return nil
	}

	db, err := gorm.Open(gormpostgres.Open(c.cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	c.closers = append(c.closers, sqlDB.Close)

	if err = postgres.AutoMigrate(db.WithContext(ctx)); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	c.uowFactory = postgres.NewGormUnitOfWorkFactory(db)
	return nil
}

func (c *CompositionRoot) openOffers(ctx context.Context) error {
	if c.cfg.Offers == OffersMemory {
		c.offers = memoffers.NewStore()
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: c.cfg.RedisAddr, Password: c.cfg.RedisPassword})
	c.closers = append(c.closers, client.Close)
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	c.offers = redisoffers.NewOfferStore(client, c.cfg.RedisPrefix, c.cfg.OfferRetention)
	return nil
}

func (c *CompositionRoot) openEvents() {
	if c.cfg.Events == EventsLog {
		c.events = eventlog.NewPublisher(c.logger)
		return
	}

	publisher := kafkaout.NewPublisher(c.cfg.KafkaBrokers, c.cfg.KafkaOrderChangedTopic, c.cfg.KafkaWriteTimeout)
	c.closers = append(c.closers, publisher.Close)
	c.events = publisher
}

// Close releases connections in reverse order of opening.
func (c *CompositionRoot) Close() error {
	var errList []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errList = append(errList, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(errList...)
}

func (c *CompositionRoot) cancelPolicy() order.CancelPolicy {
	return order.CancelPolicy{AllowLateCancel: c.cfg.AllowLateCancel}
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) orderUoW() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) partnerUoW() commands.PartnerUoWFactory {
	return FuncPartnerUoWFactory(func() commands.PartnerUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) handlerLogger(name string) *slog.Logger {
	return c.logger.With("component", name)
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoW(), c.events, c.clock, c.handlerLogger("create_order"))
}

func (c *CompositionRoot) CreateVendorDecisionCommandHandler() commands.VendorDecisionCommandHandler {
	return commands.NewVendorDecisionCommandHandler(
		c.uow(), c.offers, c.events, c.cancelPolicy(), c.clock, c.handlerLogger("vendor_decision"))
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(
		c.uow(), c.offers, c.events, c.cancelPolicy(), c.clock, c.handlerLogger("cancel_order"))
}

func (c *CompositionRoot) CreateBroadcastToPartnersCommandHandler() commands.BroadcastToPartnersCommandHandler {
	return commands.NewBroadcastToPartnersCommandHandler(
		c.uow(), c.broadcaster, c.offers, c.events, c.clock, c.handlerLogger("broadcast"))
}

func (c *CompositionRoot) CreatePartnerClaimCommandHandler() commands.PartnerClaimCommandHandler {
	return commands.NewPartnerClaimCommandHandler(
		c.uow(), c.offers, c.generator, c.events, c.clock, c.handlerLogger("partner_claim"))
}

func (c *CompositionRoot) CreateVerifyOTPCommandHandler() commands.VerifyOTPCommandHandler {
	return commands.NewVerifyOTPCommandHandler(
		c.orderUoW(), services.NewOTPVerifier(), c.limiter, c.events, c.clock, c.handlerLogger("verify_otp"))
}

func (c *CompositionRoot) CreateAdvanceDeliveryStatusCommandHandler() commands.AdvanceDeliveryStatusCommandHandler {
	return commands.NewAdvanceDeliveryStatusCommandHandler(c.uow(), c.events, c.clock, c.handlerLogger("delivery_status"))
}

func (c *CompositionRoot) CreateOverrideDeliveryChargeCommandHandler() commands.OverrideDeliveryChargeCommandHandler {
	return commands.NewOverrideDeliveryChargeCommandHandler(
		c.orderUoW(), c.events, c.clock, c.handlerLogger("delivery_charge"))
}

func (c *CompositionRoot) CreateCreatePartnerCommandHandler() commands.CreatePartnerCommandHandler {
	return commands.NewCreatePartnerCommandHandler(c.partnerUoW())
}

func (c *CompositionRoot) CreateUpdatePartnerAvailabilityCommandHandler() commands.UpdatePartnerAvailabilityCommandHandler {
	return commands.NewUpdatePartnerAvailabilityCommandHandler(c.partnerUoW())
}

func (c *CompositionRoot) CreateExpireBroadcastsCommandHandler() commands.ExpireBroadcastsCommandHandler {
	return commands.NewExpireBroadcastsCommandHandler(c.offers, c.clock, c.handlerLogger("expire_broadcasts"))
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateGetActiveOrdersQueryHandler() queries.GetActiveOrdersQueryHandler {
	return queries.NewGetActiveOrdersQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateGetBroadcastStatusQueryHandler() queries.GetBroadcastStatusQueryHandler {
	return queries.NewGetBroadcastStatusQueryHandler(c.uowFactory, c.offers, c.clock)
}

func (c *CompositionRoot) CreateGetPartnersQueryHandler() queries.GetPartnersQueryHandler {
	return queries.NewGetPartnersQueryHandler(c.uowFactory)
}

// CreateHTTPServer wires every use case into the REST adapter.
func (c *CompositionRoot) CreateHTTPServer() *httpapi.Server {
	return httpapi.NewServer(httpapi.Handlers{
		CreateOrder:               c.CreateCreateOrderCommandHandler(),
		VendorDecision:            c.CreateVendorDecisionCommandHandler(),
		CancelOrder:               c.CreateCancelOrderCommandHandler(),
		BroadcastToPartners:       c.CreateBroadcastToPartnersCommandHandler(),
		PartnerClaim:              c.CreatePartnerClaimCommandHandler(),
		VerifyOTP:                 c.CreateVerifyOTPCommandHandler(),
		AdvanceDeliveryStatus:     c.CreateAdvanceDeliveryStatusCommandHandler(),
		OverrideDeliveryCharge:    c.CreateOverrideDeliveryChargeCommandHandler(),
		CreatePartner:             c.CreateCreatePartnerCommandHandler(),
		UpdatePartnerAvailability: c.CreateUpdatePartnerAvailabilityCommandHandler(),
		GetOrder:                  c.CreateGetOrderQueryHandler(),
		GetActiveOrders:           c.CreateGetActiveOrdersQueryHandler(),
		GetBroadcastStatus:        c.CreateGetBroadcastStatusQueryHandler(),
		GetPartners:               c.CreateGetPartnersQueryHandler(),
	}, c.clock)
}

func (c *CompositionRoot) CreateAuthenticator() *httpapi.Authenticator {
	return httpapi.NewAuthenticator(c.cfg.JWTSecret)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateExpireBroadcastsCommandHandler(),
		c.cfg.ExpirySchedule,
		c.limiter,
		c.cfg.OTPAttemptIdle,
		c.logger,
	)
}

// CreateCheckoutConsumer returns nil when no checkout topic is configured.
func (c *CompositionRoot) CreateCheckoutConsumer() *kafkain.CheckoutConfirmedConsumer {
	if c.cfg.KafkaCheckoutConfirmedTopic == "" {
		return nil
	}

	consumerID, _ := kernel.UUIDFromGoogle(checkoutConsumerID)
	return kafkain.NewCheckoutConfirmedConsumer(
		c.cfg.KafkaBrokers,
		c.cfg.KafkaConsumerGroup,
		c.cfg.KafkaCheckoutConfirmedTopic,
		c.CreateCreateOrderCommandHandler(),
		consumerID,
		c.logger,
	)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncPartnerUoWFactory func() commands.PartnerUoW

func (f FuncPartnerUoWFactory) Create() commands.PartnerUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
