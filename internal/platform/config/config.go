package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Currency handling
	BaseCurrency          string
	ConvertibleCurrencies []string
	RatesURL              string
	RatesTTL              time.Duration
	RatesFetchTimeout     time.Duration

	// BalanceStrategy selects how account balances are produced: "derived"
	// sums transactions at read time, "cached" maintains a balance column.
	BalanceStrategy string

	// Rate limit for the unauthenticated auth endpoints, e.g. "10-M".
	AuthRateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "budgetbook-backend")
	viper.SetDefault("BASE_CURRENCY", "EUR")
	viper.SetDefault("CONVERTIBLE_CURRENCIES", "EUR,USD,GBP,CHF")
	viper.SetDefault("RATES_URL", "")
	viper.SetDefault("RATES_TTL", "1h")
	viper.SetDefault("RATES_FETCH_TIMEOUT", "10s")
	viper.SetDefault("BALANCE_STRATEGY", "derived")
	viper.SetDefault("AUTH_RATE_LIMIT", "10-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.BaseCurrency = strings.ToUpper(strings.TrimSpace(viper.GetString("BASE_CURRENCY")))

	convertible := []string{}
	for _, code := range strings.Split(viper.GetString("CONVERTIBLE_CURRENCIES"), ",") {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			convertible = append(convertible, code)
		}
	}
	cfg.ConvertibleCurrencies = convertible

	cfg.RatesURL = viper.GetString("RATES_URL")
	if cfg.RatesURL == "" {
		log.Println("Warning: RATES_URL not set. Currency conversion will be unavailable.")
	}

	ratesTTLStr := viper.GetString("RATES_TTL")
	ratesTTL, err := time.ParseDuration(ratesTTLStr)
	if err != nil {
		ratesTTL = time.Hour
		log.Printf("Warning: Invalid value for RATES_TTL ('%s'). Defaulting to %s.\n", ratesTTLStr, ratesTTL.String())
	}
	cfg.RatesTTL = ratesTTL

	ratesTimeoutStr := viper.GetString("RATES_FETCH_TIMEOUT")
	ratesTimeout, err := time.ParseDuration(ratesTimeoutStr)
	if err != nil {
		ratesTimeout = 10 * time.Second
		log.Printf("Warning: Invalid value for RATES_FETCH_TIMEOUT ('%s'). Defaulting to %s.\n", ratesTimeoutStr, ratesTimeout.String())
	}
	cfg.RatesFetchTimeout = ratesTimeout

	cfg.BalanceStrategy = strings.ToLower(viper.GetString("BALANCE_STRATEGY"))
	if cfg.BalanceStrategy != "derived" && cfg.BalanceStrategy != "cached" {
		log.Printf("Warning: Unknown BALANCE_STRATEGY ('%s'). Defaulting to derived.\n", cfg.BalanceStrategy)
		cfg.BalanceStrategy = "derived"
	}

	cfg.AuthRateLimit = viper.GetString("AUTH_RATE_LIMIT")

	return cfg, nil
}
