package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pyrecrest/service-booking/internal/common/config"
	bookingDomain "github.com/pyrecrest/service-booking/internal/domain/booking"
	"github.com/pyrecrest/service-booking/internal/domain/property"
)

// Store drivers.
const (
	StorePostgres = "postgres"
	StoreAzTables = "aztables"
	StoreMemory   = "memory"
)

// TableConfig holds Azure Table Storage settings.
type TableConfig struct {
	ConnectionString string
	TableName        string
}

// MailConfig holds outgoing email settings. An empty API key logs emails instead of sending.
type MailConfig struct {
	SendGridAPIKey string
	FromAddress    string
	FromName       string
	AdminEmail     string
	ApproverEmail  string
}

// SeedAdminConfig is the bootstrap admin created at startup when Email and PasswordHash are set.
type SeedAdminConfig struct {
	Name         string
	Email        string
	PasswordHash string
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port           string
	AppEnv         string
	StoreDriver    string
	DBConfig       config.DatabaseConfig
	TableConfig    TableConfig
	JWTConfig      config.JWTConfig
	ApprovalTTL    time.Duration
	KafkaConfig    config.KafkaConfig
	RedisConfig    config.RedisConfig
	Mail           MailConfig
	SeedAdmin      SeedAdminConfig
	PublicBaseURL  string
	AllowedOrigins []string
	MigrationsDir  string

	Bank               bookingDomain.BankDetails
	HoldWindow         time.Duration
	SweepInterval      time.Duration
	Location           *time.Location
	TaxRateBasisPoints int64
	Properties         []property.Property
}

// Load reads configuration from environment variables and the optional config file.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("BOOKING")
	if err != nil {
		return nil, err
	}
	setDefaults(v)

	cfg := &ServiceConfig{
		Port:        config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:      config.GetAppEnv(v),
		StoreDriver: strings.ToLower(v.GetString("STORE_DRIVER")),
		DBConfig:    config.LoadDatabaseConfig(v, "DB_NAME"),
		TableConfig: TableConfig{
			ConnectionString: v.GetString("TABLES_CONNECTION_STRING"),
			TableName:        v.GetString("TABLES_TABLE_NAME"),
		},
		JWTConfig:   config.LoadJWTConfig(v),
		ApprovalTTL: v.GetDuration("APPROVAL_TOKEN_TTL"),
		KafkaConfig: config.LoadKafkaConfig(v),
		RedisConfig: config.LoadRedisConfig(v),
		Mail: MailConfig{
			SendGridAPIKey: v.GetString("SENDGRID_API_KEY"),
			FromAddress:    v.GetString("MAIL_FROM_ADDRESS"),
			FromName:       v.GetString("MAIL_FROM_NAME"),
			AdminEmail:     v.GetString("ADMIN_NOTIFICATION_EMAIL"),
			ApproverEmail:  v.GetString("ADMIN_APPROVER_EMAIL"),
		},
		SeedAdmin: SeedAdminConfig{
			Name:         v.GetString("ADMIN_NAME"),
			Email:        v.GetString("ADMIN_EMAIL"),
			PasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
		},
		PublicBaseURL:  v.GetString("PUBLIC_BASE_URL"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		MigrationsDir:  v.GetString("MIGRATIONS_DIR"),
		Bank: bookingDomain.BankDetails{
			AccountName:   v.GetString("BANK_ACCOUNT_NAME"),
			AccountNumber: v.GetString("BANK_ACCOUNT_NUMBER"),
			BankName:      v.GetString("BANK_NAME"),
		},
		HoldWindow:         v.GetDuration("HOLD_WINDOW"),
		SweepInterval:      v.GetDuration("SWEEP_INTERVAL"),
		TaxRateBasisPoints: bookingDomain.TaxRateToBasisPoints(v.GetFloat64("TAX_RATE")),
	}

	switch cfg.StoreDriver {
	case StorePostgres, StoreAzTables, StoreMemory:
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if cfg.StoreDriver == StoreAzTables && cfg.TableConfig.ConnectionString == "" {
		return nil, fmt.Errorf("TABLES_CONNECTION_STRING is required for the %s store", StoreAzTables)
	}
	if cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("SWEEP_INTERVAL must be positive")
	}
	if v.GetFloat64("TAX_RATE") < 0 {
		return nil, fmt.Errorf("TAX_RATE cannot be negative")
	}

	cfg.Location, err = time.LoadLocation(v.GetString("TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	if err := v.UnmarshalKey("properties", &cfg.Properties); err != nil {
		return nil, fmt.Errorf("invalid properties: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_NAME", "booking")
	v.SetDefault("STORE_DRIVER", StorePostgres)
	v.SetDefault("TABLES_TABLE_NAME", "pyrecrest")
	v.SetDefault("APPROVAL_TOKEN_TTL", "168h")
	v.SetDefault("MAIL_FROM_ADDRESS", "bookings@pyrecrest.com")
	v.SetDefault("MAIL_FROM_NAME", "Pyrecrest")
	v.SetDefault("ADMIN_NAME", "Administrator")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("BANK_ACCOUNT_NAME", "Pyrecrest Limited")
	v.SetDefault("BANK_ACCOUNT_NUMBER", "1234567890")
	v.SetDefault("BANK_NAME", "GTBank")
	v.SetDefault("HOLD_WINDOW", "24h")
	v.SetDefault("SWEEP_INTERVAL", "5m")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("TAX_RATE", 0.0)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
