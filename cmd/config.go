package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	OffersMemory = "memory"
	OffersRedis  = "redis"

	EventsLog   = "log"
	EventsKafka = "kafka"
)

type Config struct {
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	Storage    string `envconfig:"STORAGE" default:"memory"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"fooddelivery"`
	DBSslMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	Offers         string        `envconfig:"OFFERS" default:"memory"`
	RedisAddr      string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword  string        `envconfig:"REDIS_PASSWORD"`
	RedisPrefix    string        `envconfig:"REDIS_PREFIX" default:"fooddelivery"`
	OfferRetention time.Duration `envconfig:"OFFER_RETENTION" default:"1h"`

	Events                      string        `envconfig:"EVENTS" default:"log"`
	KafkaBrokers                []string      `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaConsumerGroup          string        `envconfig:"KAFKA_CONSUMER_GROUP" default:"fooddelivery"`
	KafkaCheckoutConfirmedTopic string        `envconfig:"KAFKA_CHECKOUT_CONFIRMED_TOPIC"`
	KafkaOrderChangedTopic      string        `envconfig:"KAFKA_ORDER_CHANGED_TOPIC" default:"order.changed"`
	KafkaWriteTimeout           time.Duration `envconfig:"KAFKA_WRITE_TIMEOUT" default:"10s"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	OTPLength        int           `envconfig:"OTP_LENGTH" default:"4"`
	BroadcastTimeout time.Duration `envconfig:"BROADCAST_TIMEOUT" default:"30s"`
	ServiceRadiusKm  float64       `envconfig:"SERVICE_RADIUS_KM" default:"5"`
	AllowLateCancel  bool          `envconfig:"ALLOW_LATE_CANCEL" default:"false"`
	ExpirySchedule   string        `envconfig:"EXPIRY_SCHEDULE" default:"* * * * * *"`

	OTPAttemptBurst    int           `envconfig:"OTP_ATTEMPT_BURST" default:"5"`
	OTPAttemptInterval time.Duration `envconfig:"OTP_ATTEMPT_INTERVAL" default:"30s"`
	OTPAttemptIdle     time.Duration `envconfig:"OTP_ATTEMPT_IDLE" default:"1h"`
}

// LoadConfig reads an optional .env file into the environment and then parses
// the environment. Variables already set win over the file.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errList []error
	if c.Storage != StorageMemory && c.Storage != StoragePostgres {
		errList = append(errList, fmt.Errorf("STORAGE must be %s or %s, got %q", StorageMemory, StoragePostgres, c.Storage))
	}
	if c.Offers != OffersMemory && c.Offers != OffersRedis {
		errList = append(errList, fmt.Errorf("OFFERS must be %s or %s, got %q", OffersMemory, OffersRedis, c.Offers))
	}
	if c.Events != EventsLog && c.Events != EventsKafka {
		errList = append(errList, fmt.Errorf("EVENTS must be %s or %s, got %q", EventsLog, EventsKafka, c.Events))
	}
	if c.BroadcastTimeout <= 0 {
		errList = append(errList, errors.New("BROADCAST_TIMEOUT must be positive"))
	}
	if c.ServiceRadiusKm <= 0 {
		errList = append(errList, errors.New("SERVICE_RADIUS_KM must be positive"))
	}
	return errors.Join(errList...)
}

// DSN is the Postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%v port=%v user=%v password=%v dbname=%v sslmode=%v",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}
