package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SeedAccount is an account opened for every newly registered user.
type SeedAccount struct {
	Name           string
	OpeningBalance decimal.Decimal
}

type LedgerConfig struct {
	StorageDriver     string
	SeedAccounts      []SeedAccount
	VoucherTTL        time.Duration
	VoucherCodeLength int
	MaturityCron      string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether any broker is configured.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

func LoadLedgerConfig() *LedgerConfig {
	return &LedgerConfig{
		StorageDriver: getEnv("STORAGE_DRIVER", "postgres"),
		SeedAccounts: []SeedAccount{
			{Name: getEnv("SEED_PRIMARY_ACCOUNT", "Wall Street Bank"), OpeningBalance: getEnvAsDecimal("SEED_PRIMARY_BALANCE", decimal.NewFromInt(3500))},
			{Name: getEnv("SEED_SAVINGS_ACCOUNT", "Prime Savings"), OpeningBalance: getEnvAsDecimal("SEED_SAVINGS_BALANCE", decimal.NewFromInt(1200))},
		},
		VoucherTTL:        getEnvAsDuration("VOUCHER_TTL", 15*time.Minute),
		VoucherCodeLength: getEnvAsInt("VOUCHER_CODE_LENGTH", 10),
		MaturityCron:      getEnv("MATURITY_CRON", "@every 1h"),
	}
}

func LoadKafkaConfig() *KafkaConfig {
	return &KafkaConfig{
		Brokers: getEnvAsList("KAFKA_BROKERS"),
		Topic:   getEnv("KAFKA_TOPIC", "ledger.events"),
	}
}

func LoadSMTPConfig() *SMTPConfig {
	return &SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     getEnv("SMTP_PORT", "587"),
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsDecimal(key string, defaultVal decimal.Decimal) decimal.Decimal {
	if val := os.Getenv(key); val != "" {
		if d, err := decimal.NewFromString(val); err == nil && !d.IsNegative() {
			return d
		}
	}
	return defaultVal
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
