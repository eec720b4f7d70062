package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Config хранит все параметры приложения. Значения берутся из окружения
// (локально — через .env, см. godotenv в main).
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	RabbitMQ RabbitMQConfig
	Queues   QueueConfig
	Rewards  RewardsConfig
	Proof    ProofConfig
}

type AppConfig struct {
	LogLevel string `envconfig:"CARGO_LOG_LEVEL" default:"info"`
	// OpsPort — порт служебного HTTP (healthz + metrics); 0 выключает его.
	OpsPort int `envconfig:"CARGO_OPS_PORT" default:"0"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"CARGO_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"CARGO_DB_PORT" default:"5432"`
	User     string `envconfig:"CARGO_DB_USER" default:"postgres"`
	Password string `envconfig:"CARGO_DB_PASSWORD" default:"postgres"`
	Database string `envconfig:"CARGO_DB_NAME" default:"cargo_rewards"`
	SSLMode  string `envconfig:"CARGO_DB_SSLMODE" default:"disable"`
	MaxConns int    `envconfig:"CARGO_DB_MAX_CONNS" default:"10"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode)
}

type RabbitMQConfig struct {
	Host     string `envconfig:"CARGO_RABBIT_HOST" default:"localhost"`
	Port     int    `envconfig:"CARGO_RABBIT_PORT" default:"5672"`
	User     string `envconfig:"CARGO_RABBIT_USER" default:"guest"`
	Password string `envconfig:"CARGO_RABBIT_PASSWORD" default:"guest"`
	VHost    string `envconfig:"CARGO_RABBIT_VHOST" default:"/"`
}

func (r RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/%s", r.User, r.Password, r.Host, r.Port, r.VHost)
}

// QueueConfig — имена очередей; совпадают с именами у внешних систем,
// поэтому меняются только синхронно с ними.
type QueueConfig struct {
	Scan          string `envconfig:"CARGO_QUEUE_SCAN" default:"work_qr_queue"`
	Orders        string `envconfig:"CARGO_QUEUE_ORDERS" default:"orders_queue"`
	Preparation   string `envconfig:"CARGO_QUEUE_PREPARATION" default:"qr_events"`
	Feedback      string `envconfig:"CARGO_QUEUE_FEEDBACK" default:"feedback_queue"`
	Notifications string `envconfig:"CARGO_QUEUE_NOTIFICATIONS" default:"telegram_queue"`
}

// RewardsConfig — фиксированные величины вознаграждений в баллах.
type RewardsConfig struct {
	CompletionPoints  decimal.Decimal `envconfig:"CARGO_REWARD_COMPLETION" default:"1"`
	PreparationPoints decimal.Decimal `envconfig:"CARGO_REWARD_PREPARATION" default:"1"`
	FeedbackPoints    decimal.Decimal `envconfig:"CARGO_REWARD_FEEDBACK" default:"1"`
	ProofPoints       decimal.Decimal `envconfig:"CARGO_REWARD_PROOF" default:"1"`
}

type ProofConfig struct {
	Port           int    `envconfig:"CARGO_PROOF_PORT" default:"8080"`
	MediaDir       string `envconfig:"CARGO_PROOF_MEDIA_DIR" default:"./media/delivery_proofs"`
	MaxUploadBytes int64  `envconfig:"CARGO_PROOF_MAX_UPLOAD_BYTES" default:"104857600"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}
