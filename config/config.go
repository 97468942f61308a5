package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/viper"
)

type Config struct {
	ServiceName string `mapstructure:"SERVICE_NAME"`
	HTTPAddr    string `mapstructure:"HTTP_ADDR"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	StoreDriver string `mapstructure:"STORE_DRIVER"`
	DBHost      string `mapstructure:"DB_HOST"`
	DBPort      string `mapstructure:"DB_PORT"`
	DBName      string `mapstructure:"DB_NAME"`
	DBUser      string `mapstructure:"DB_USER"`
	DBPassword  string `mapstructure:"DB_PASSWORD"`

	RedisHost string `mapstructure:"REDIS_HOST"`
	RedisPort string `mapstructure:"REDIS_PORT"`

	KafkaBroker      string `mapstructure:"KAFKA_BROKER"`
	OrderEventsTopic string `mapstructure:"ORDER_EVENTS_TOPIC"`
	ReportGroupID    string `mapstructure:"REPORT_GROUP_ID"`

	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	JWTTTL        time.Duration `mapstructure:"JWT_TTL"`
	PublicBaseURL string        `mapstructure:"PUBLIC_BASE_URL"`
	AnonCartTTL   time.Duration `mapstructure:"ANON_CART_TTL"`

	LedgerRetryAttempts int           `mapstructure:"LEDGER_RETRY_ATTEMPTS"`
	LedgerRetryBackoff  time.Duration `mapstructure:"LEDGER_RETRY_BACKOFF"`
	ReconcileInterval   time.Duration `mapstructure:"RECONCILE_INTERVAL"`

	LoyaltyRedemptionEnabled bool `mapstructure:"LOYALTY_REDEMPTION_ENABLED"`
	LoyaltyAccrualEnabled    bool `mapstructure:"LOYALTY_ACCRUAL_ENABLED"`

	AdminLogin    string `mapstructure:"ADMIN_LOGIN"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`

	LoginRatePerSecond float64  `mapstructure:"LOGIN_RATE_PER_SECOND"`
	LoginBurst         int      `mapstructure:"LOGIN_BURST"`
	TrustedProxies     []string `mapstructure:"TRUSTED_PROXIES"`

	OrderSvcURL  string `mapstructure:"ORDER_SVC_URL"`
	ReportSvcURL string `mapstructure:"REPORT_SVC_URL"`
	FrontendDir  string `mapstructure:"FRONTEND_DIR"`
}

const defaultJWTSecret = "change-me"

// ErrDefaultJWTSecret is returned when a persistent deployment would sign tokens
// with the built-in development key.
var ErrDefaultJWTSecret = errors.New("JWT_SECRET must be set when STORE_DRIVER=postgres")

var defaults = map[string]interface{}{
	"SERVICE_NAME":               "order-svc",
	"HTTP_ADDR":                  ":8081",
	"LOG_LEVEL":                  "info",
	"STORE_DRIVER":               "postgres",
	"DB_HOST":                    "localhost",
	"DB_PORT":                    "5432",
	"DB_NAME":                    "tabletap",
	"DB_USER":                    "postgres",
	"DB_PASSWORD":                "",
	"REDIS_HOST":                 "localhost",
	"REDIS_PORT":                 "6379",
	"KAFKA_BROKER":               "localhost:9092",
	"ORDER_EVENTS_TOPIC":         "order-events",
	"REPORT_GROUP_ID":            "report-svc",
	"JWT_SECRET":                 defaultJWTSecret,
	"JWT_TTL":                    24 * time.Hour,
	"PUBLIC_BASE_URL":            "http://localhost:8080",
	"ANON_CART_TTL":              7 * 24 * time.Hour,
	"LEDGER_RETRY_ATTEMPTS":      3,
	"LEDGER_RETRY_BACKOFF":       200 * time.Millisecond,
	"RECONCILE_INTERVAL":         30 * time.Second,
	"LOYALTY_REDEMPTION_ENABLED": true,
	"LOYALTY_ACCRUAL_ENABLED":    true,
	"ADMIN_LOGIN":                "",
	"ADMIN_PASSWORD":             "",
	"LOGIN_RATE_PER_SECOND":      1.0,
	"LOGIN_BURST":                5,
	"TRUSTED_PROXIES":            []string{"127.0.0.1/32", "::1/128", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"},
	"ORDER_SVC_URL":              "http://localhost:8081",
	"REPORT_SVC_URL":             "http://localhost:8083",
	"FRONTEND_DIR":               "",
}

// Load reads configuration from the environment, optionally layered over the file
// named by CONFIG_FILE. Environment values always win.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.StoreDriver == "postgres" && cfg.JWTSecret == defaultJWTSecret {
		return nil, ErrDefaultJWTSecret
	}
	return cfg, nil
}

// MustLoad is Load for main packages.
func MustLoad(serviceName, httpAddr string) *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if cfg.ServiceName == defaults["SERVICE_NAME"] {
		cfg.ServiceName = serviceName
	}
	if cfg.HTTPAddr == defaults["HTTP_ADDR"] && httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	return cfg
}

func (c *Config) PostgresDSN() string {
	return "host=" + c.DBHost + " port=" + c.DBPort + " user=" + c.DBUser +
		" password=" + c.DBPassword + " dbname=" + c.DBName + " sslmode=disable"
}

func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func MustInitPostgres(cfg *Config) *sql.DB {
	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err = db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return db
}

func MustInitRedis(cfg *Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr(),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	return client
}

func NewKafkaReader(cfg *Config, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: strings.Split(cfg.KafkaBroker, ","),
		Topic:   topic,
		GroupID: groupID,
	})
}

func NewKafkaWriter(cfg *Config, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(cfg.KafkaBroker, ",")...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}
