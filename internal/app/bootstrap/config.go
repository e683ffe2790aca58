package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for M04.
// It merges file defaults and environment overrides to support both local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int

	DatabaseURL string
	RedisURL    string

	KafkaBrokers                 []string
	KafkaTopicAccountProvisioned string

	AccessControlURL string
	BillingURL       string
	RemoteTimeout    time.Duration

	BcryptCost int

	DefaultPlanSlug     string
	DefaultBillingCycle string

	PrecheckTimeout time.Duration
	IdempotencyTTL  time.Duration

	RateLimitIPThreshold         int
	RateLimitIdentifierThreshold int
	RateLimitWindow              time.Duration

	MaxDBConns int32
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL      string   `yaml:"postgres_url"`
		RedisURL         string   `yaml:"redis_url"`
		KafkaBrokers     []string `yaml:"kafka_brokers"`
		AccessControlURL string   `yaml:"access_control_url"`
		BillingURL       string   `yaml:"billing_url"`
	} `yaml:"dependencies"`
	Provisioning struct {
		DefaultPlanSlug     string `yaml:"default_plan_slug"`
		DefaultBillingCycle string `yaml:"default_billing_cycle"`
	} `yaml:"provisioning"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:                    "M04-Account-Provisioning-Service",
		HTTPPort:                     8084,
		KafkaTopicAccountProvisioned: "identity.provisioned",
		RemoteTimeout:                5 * time.Second,
		BcryptCost:                   12,
		DefaultPlanSlug:              "free",
		DefaultBillingCycle:          "monthly",
		PrecheckTimeout:              5 * time.Second,
		IdempotencyTTL:               7 * 24 * time.Hour,
		RateLimitIPThreshold:         20,
		RateLimitIdentifierThreshold: 6,
		RateLimitWindow:              time.Minute,
		MaxDBConns:                   20,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = f.Dependencies.KafkaBrokers
		}
		if f.Dependencies.AccessControlURL != "" {
			cfg.AccessControlURL = f.Dependencies.AccessControlURL
		}
		if f.Dependencies.BillingURL != "" {
			cfg.BillingURL = f.Dependencies.BillingURL
		}
		if f.Provisioning.DefaultPlanSlug != "" {
			cfg.DefaultPlanSlug = f.Provisioning.DefaultPlanSlug
		}
		if f.Provisioning.DefaultBillingCycle != "" {
			cfg.DefaultBillingCycle = f.Provisioning.DefaultBillingCycle
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopicAccountProvisioned = envOrDefault("KAFKA_TOPIC_ACCOUNT_PROVISIONED", cfg.KafkaTopicAccountProvisioned)
	cfg.AccessControlURL = envOrDefault("ACCESS_CONTROL_URL", cfg.AccessControlURL)
	cfg.BillingURL = envOrDefault("BILLING_URL", cfg.BillingURL)
	cfg.DefaultPlanSlug = envOrDefault("DEFAULT_PLAN_SLUG", cfg.DefaultPlanSlug)
	cfg.DefaultBillingCycle = envOrDefault("DEFAULT_BILLING_CYCLE", cfg.DefaultBillingCycle)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.BcryptCost = envInt("BCRYPT_ROUNDS", cfg.BcryptCost)
	cfg.RateLimitIPThreshold = envInt("PROVISION_RATE_LIMIT_IP_THRESHOLD", cfg.RateLimitIPThreshold)
	cfg.RateLimitIdentifierThreshold = envInt("PROVISION_RATE_LIMIT_IDENTIFIER_THRESHOLD", cfg.RateLimitIdentifierThreshold)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.RemoteTimeout = time.Duration(envInt("REMOTE_TIMEOUT_SECONDS", int(cfg.RemoteTimeout.Seconds()))) * time.Second
	cfg.PrecheckTimeout = time.Duration(envInt("PRECHECK_TIMEOUT_SECONDS", int(cfg.PrecheckTimeout.Seconds()))) * time.Second
	cfg.IdempotencyTTL = time.Duration(envInt("IDEMPOTENCY_TTL_HOURS", int(cfg.IdempotencyTTL.Hours()))) * time.Hour
	cfg.RateLimitWindow = time.Duration(envInt("PROVISION_RATE_LIMIT_WINDOW_SECONDS", int(cfg.RateLimitWindow.Seconds()))) * time.Second

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if cfg.AccessControlURL == "" {
		return Config{}, fmt.Errorf("missing ACCESS_CONTROL_URL")
	}
	if cfg.BillingURL == "" {
		return Config{}, fmt.Errorf("missing BILLING_URL")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envCSV parses comma-separated env vars and removes empty segments.
func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		parts = append(parts, trimmed)
	}
	if len(parts) == 0 {
		return fallback
	}
	return parts
}
