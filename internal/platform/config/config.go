package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/core/matching"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL        string
	Port               string
	IsProduction       bool
	EnableDBCheck      bool
	JWTSecret          string
	StorageDriver      string
	MigrationsPath     string
	RateLimit          string
	CORSAllowedOrigins []string

	// Matching tolerances for bank reconciliation.
	Matching matching.Options

	// CategoryAccounts maps a transaction category to an account code.
	CategoryAccounts map[string]string
}

// LoadConfig loads configuration from environment variables, a .env file if present,
// and an optional YAML/JSON file named by CONFIG_FILE.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", true)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("AMOUNT_TOLERANCE", matching.DefaultAmountTolerance.String())
	v.SetDefault("DATE_WINDOW_DAYS", matching.DefaultDateWindowDays)
	v.SetDefault("FUZZY_THRESHOLD", matching.DefaultFuzzyThreshold)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		DatabaseURL:    v.GetString("PGSQL_URL"),
		Port:           v.GetString("PORT"),
		IsProduction:   v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:  v.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		StorageDriver:  strings.ToLower(v.GetString("STORAGE_DRIVER")),
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),
		RateLimit:      v.GetString("RATE_LIMIT"),
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when STORAGE_DRIVER is %s", StorageDriverPostgres)
		}
	case StorageDriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	tolerance, err := decimal.NewFromString(v.GetString("AMOUNT_TOLERANCE"))
	if err != nil {
		return nil, fmt.Errorf("invalid AMOUNT_TOLERANCE: %w", err)
	}
	cfg.Matching = matching.Options{
		AmountTolerance: tolerance,
		DateWindowDays:  v.GetInt("DATE_WINDOW_DAYS"),
		FuzzyThreshold:  v.GetFloat64("FUZZY_THRESHOLD"),
	}

	cfg.CategoryAccounts, err = parseCategoryAccounts(v.Get("CATEGORY_ACCOUNTS"))
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseCategoryAccounts accepts either "category=code,category=code" (environment)
// or a map (config file).
func parseCategoryAccounts(raw interface{}) (map[string]string, error) {
	out := make(map[string]string)
	switch val := raw.(type) {
	case nil:
	case string:
		for _, pair := range strings.Split(val, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			category, code, ok := strings.Cut(pair, "=")
			if !ok || strings.TrimSpace(category) == "" || strings.TrimSpace(code) == "" {
				return nil, fmt.Errorf("invalid CATEGORY_ACCOUNTS entry %q, expected category=code", pair)
			}
			out[strings.TrimSpace(category)] = strings.TrimSpace(code)
		}
	case map[string]interface{}:
		for category, code := range val {
			out[category] = fmt.Sprint(code)
		}
	case map[string]string:
		for category, code := range val {
			out[category] = code
		}
	default:
		return nil, fmt.Errorf("unsupported CATEGORY_ACCOUNTS value of type %T", raw)
	}
	return out, nil
}
