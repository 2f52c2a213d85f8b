package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"parking-facility/internal/parking"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Facility   FacilityConfig   `mapstructure:"facility"`
	Allocation AllocationConfig `mapstructure:"allocation"`
	Pricing    PricingConfig    `mapstructure:"pricing"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development, staging, production
	Version     string `mapstructure:"version"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type TelemetryConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ServiceName    string        `mapstructure:"service_name"`
	Endpoint       string        `mapstructure:"endpoint"`
	ExportInterval time.Duration `mapstructure:"export_interval"`
}

type FacilityConfig struct {
	// LayoutFile is a YAML layout; empty means the built-in demo facility.
	LayoutFile        string `mapstructure:"layout_file"`
	EnforceEntryGates bool   `mapstructure:"enforce_entry_gates"`
}

type AllocationConfig struct {
	Strategy string `mapstructure:"strategy"` // nearest, first_available
}

type PricingConfig struct {
	Strategy              string            `mapstructure:"strategy"` // hourly, flat
	HourlyRates           map[string]string `mapstructure:"hourly_rates"`
	FallbackRate          string            `mapstructure:"fallback_rate"`
	SpotMultipliers       map[string]string `mapstructure:"spot_multipliers"`
	ExtraServiceSurcharge string            `mapstructure:"extra_service_surcharge"`
	FlatRate              string            `mapstructure:"flat_rate"`
}

const envPrefix = "PARKING"

// Load reads defaults, then the optional YAML file at path, then PARKING_*
// environment overrides (PARKING_SERVER_PORT overrides server.port).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to bind config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "parking-facility")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "parking-facility")
	v.SetDefault("telemetry.endpoint", "http://localhost:4318")
	v.SetDefault("telemetry.export_interval", "10s")

	v.SetDefault("facility.layout_file", "")
	v.SetDefault("facility.enforce_entry_gates", true)

	v.SetDefault("allocation.strategy", "nearest")

	v.SetDefault("pricing.strategy", "hourly")
	v.SetDefault("pricing.hourly_rates", map[string]string{
		"car":           "40",
		"bike":          "15",
		"electric_bike": "20",
		"truck":         "80",
	})
	v.SetDefault("pricing.fallback_rate", "50")
	v.SetDefault("pricing.spot_multipliers", map[string]string{
		"standard": "1.0",
		"charging": "1.2",
	})
	v.SetDefault("pricing.extra_service_surcharge", "10")
	v.SetDefault("pricing.flat_rate", "40")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return errors.New("app name is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Telemetry.Enabled {
		if err := validateEndpoint(c.Telemetry.Endpoint); err != nil {
			return err
		}
	}

	if _, err := c.AllocationStrategy(); err != nil {
		return err
	}

	if _, err := c.PricingStrategy(); err != nil {
		return err
	}

	return nil
}

// validateEndpoint requires an absolute http(s) URL; the exporters append
// /v1/traces and /v1/metrics to it.
func validateEndpoint(endpoint string) error {
	if endpoint == "" {
		return errors.New("telemetry endpoint is required when telemetry is enabled")
	}
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("telemetry endpoint must be an http(s) URL such as http://localhost:4318, got %q", endpoint)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// AllocationStrategy builds the configured spot selection policy.
func (c *Config) AllocationStrategy() (parking.AllocationStrategy, error) {
	switch strings.ToLower(c.Allocation.Strategy) {
	case "", "nearest":
		return parking.NearestSpotStrategy{}, nil
	case "first_available":
		return parking.FirstAvailableStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown allocation strategy: %q", c.Allocation.Strategy)
	}
}

// PricingStrategy builds the configured tariff.
func (c *Config) PricingStrategy() (parking.PricingStrategy, error) {
	p := c.Pricing

	surcharge, err := parseAmount("pricing.extra_service_surcharge", p.ExtraServiceSurcharge)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(p.Strategy) {
	case "", "hourly":
	case "flat":
		rate, err := parseAmount("pricing.flat_rate", p.FlatRate)
		if err != nil {
			return nil, err
		}
		return parking.FlatRatePricingStrategy{RatePerHour: rate, SurchargePerHour: surcharge}, nil
	default:
		return nil, fmt.Errorf("unknown pricing strategy: %q", p.Strategy)
	}

	fallback, err := parseAmount("pricing.fallback_rate", p.FallbackRate)
	if err != nil {
		return nil, err
	}

	rates := make(map[parking.VehicleClass]decimal.Decimal, len(p.HourlyRates))
	for name, raw := range p.HourlyRates {
		class, err := parking.ParseVehicleClass(name)
		if err != nil {
			return nil, fmt.Errorf("pricing.hourly_rates: %w", err)
		}
		if rates[class], err = parseAmount("pricing.hourly_rates."+name, raw); err != nil {
			return nil, err
		}
	}

	multipliers := make(map[parking.SpotClass]decimal.Decimal, len(p.SpotMultipliers))
	for name, raw := range p.SpotMultipliers {
		class, err := parking.ParseSpotClass(name)
		if err != nil {
			return nil, fmt.Errorf("pricing.spot_multipliers: %w", err)
		}
		if multipliers[class], err = parseAmount("pricing.spot_multipliers."+name, raw); err != nil {
			return nil, err
		}
	}

	return parking.NewHourlyPricingStrategy(rates, fallback, multipliers, surcharge), nil
}

func parseAmount(key, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid amount %q", key, raw)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s: amount must not be negative", key)
	}
	return d, nil
}
