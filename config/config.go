// Package config loads application configuration from environment variables.
// Load is called explicitly at startup and the resulting Config is passed to
// the components that need it; nothing reads the environment afterwards.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"prizedraw/database"
	"prizedraw/domain/entities"
)

// Config holds all application configuration
type Config struct {
	// HTTP
	HTTPAddr  string
	JWTSecret string

	// Database
	DatabaseURL  string
	DatabaseName string

	// Payment provider
	PaymentAPIBaseURL  string
	PaymentAPIKey      string
	PaymentIPNSecret   string
	PaymentCallbackURL string
	PayCurrency        string
	PriceCurrency      string

	// Deposit policy
	MinimumDeposit decimal.Decimal
	ReferralBonus  decimal.Decimal

	// Withdrawal policy
	MinimumWithdrawal    decimal.Decimal
	WithdrawalFeePercent decimal.Decimal

	// Ticket policy
	BaseTicketCap int
	ReferralTiers []entities.ReferralTier

	// Environment: "development" or "production"
	Environment string
}

// Load reads configuration from the environment. Required keys fail loudly;
// policy knobs fall back to sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:  getEnvWithDefault("HTTP_ADDR", ":8080"),
		JWTSecret: os.Getenv("JWT_SECRET"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		PaymentAPIBaseURL:  getEnvWithDefault("PAYMENT_API_BASE_URL", "https://api.nowpayments.io"),
		PaymentAPIKey:      os.Getenv("PAYMENT_API_KEY"),
		PaymentIPNSecret:   os.Getenv("PAYMENT_IPN_SECRET"),
		PaymentCallbackURL: os.Getenv("PAYMENT_CALLBACK_URL"),
		PayCurrency:        getEnvWithDefault("PAY_CURRENCY", "usdttrc20"),
		PriceCurrency:      getEnvWithDefault("PRICE_CURRENCY", "usd"),

		MinimumDeposit:       decimal.NewFromInt(10),
		ReferralBonus:        decimal.NewFromInt(5),
		MinimumWithdrawal:    decimal.NewFromInt(20),
		WithdrawalFeePercent: decimal.NewFromInt(18),

		BaseTicketCap: 10,

		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	for key, target := range map[string]*decimal.Decimal{
		"MINIMUM_DEPOSIT":        &cfg.MinimumDeposit,
		"REFERRAL_BONUS":         &cfg.ReferralBonus,
		"MINIMUM_WITHDRAWAL":     &cfg.MinimumWithdrawal,
		"WITHDRAWAL_FEE_PERCENT": &cfg.WithdrawalFeePercent,
	} {
		if raw := os.Getenv(key); raw != "" {
			value, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", key, err)
			}
			*target = value
		}
	}

	if raw := os.Getenv("BASE_TICKET_CAP"); raw != "" {
		ticketCap, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid BASE_TICKET_CAP: %w", err)
		}
		cfg.BaseTicketCap = ticketCap
	}

	if raw := os.Getenv("REFERRAL_TIERS"); raw != "" {
		var tiers []entities.ReferralTier
		if err := json.Unmarshal([]byte(raw), &tiers); err != nil {
			return nil, fmt.Errorf("invalid REFERRAL_TIERS: %w", err)
		}
		cfg.ReferralTiers = entities.SortTiers(tiers)
	}

	return cfg, nil
}

// GetDatabaseURL constructs the full database URL from base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ResolveURL(c.DatabaseURL, c.DatabaseName)
}

func getEnvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
