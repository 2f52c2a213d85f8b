package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-facility/internal/parking"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_WithDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "parking-facility", cfg.App.Name)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.True(t, cfg.Facility.EnforceEntryGates)
	assert.Empty(t, cfg.Facility.LayoutFile)

	alloc, err := cfg.AllocationStrategy()
	require.NoError(t, err)
	assert.IsType(t, parking.NearestSpotStrategy{}, alloc)

	pricing, err := cfg.PricingStrategy()
	require.NoError(t, err)
	price := pricing.CalculatePrice(parking.VehicleCar, parking.SpotCharging, 61, true)
	assert.True(t, decimal.NewFromInt(116).Equal(price), "got %s", price)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PARKING_SERVER_PORT", "9191")
	t.Setenv("PARKING_ALLOCATION_STRATEGY", "first_available")
	t.Setenv("PARKING_FACILITY_ENFORCE_ENTRY_GATES", "false")
	t.Setenv("PARKING_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Facility.EnforceEntryGates)

	alloc, err := cfg.AllocationStrategy()
	require.NoError(t, err)
	assert.IsType(t, parking.FirstAvailableStrategy{}, alloc)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeFile(t, "parking.yaml", `
app:
  environment: production
server:
  port: 7000
  write_timeout: 5s
pricing:
  strategy: flat
  flat_rate: 25
  extra_service_surcharge: "2.5"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.WriteTimeout)

	pricing, err := cfg.PricingStrategy()
	require.NoError(t, err)
	require.IsType(t, parking.FlatRatePricingStrategy{}, pricing)
	price := pricing.CalculatePrice(parking.VehicleTruck, parking.SpotCharging, 90, true)
	assert.True(t, decimal.NewFromInt(55).Equal(price), "got %s", price)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty app name", func(c *Config) { c.App.Name = "" }},
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"telemetry without endpoint", func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.Endpoint = ""
		}},
		{"telemetry endpoint without scheme", func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.Endpoint = "localhost:4318"
		}},
		{"telemetry endpoint with other scheme", func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.Endpoint = "grpc://collector:4317"
		}},
		{"unknown allocation", func(c *Config) { c.Allocation.Strategy = "random" }},
		{"unknown pricing", func(c *Config) { c.Pricing.Strategy = "auction" }},
		{"bad rate", func(c *Config) { c.Pricing.HourlyRates = map[string]string{"car": "cheap"} }},
		{"negative surcharge", func(c *Config) { c.Pricing.ExtraServiceSurcharge = "-1" }},
		{"unknown vehicle class", func(c *Config) { c.Pricing.HourlyRates = map[string]string{"plane": "10"} }},
		{"unknown spot class", func(c *Config) { c.Pricing.SpotMultipliers = map[string]string{"valet": "2"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_TelemetryEnabledWithDefaultEndpoint(t *testing.T) {
	t.Setenv("PARKING_TELEMETRY_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "http://localhost:4318", cfg.Telemetry.Endpoint)
}

func TestPricingStrategy_CustomRates(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Pricing.HourlyRates = map[string]string{"car": "12.50"}
	cfg.Pricing.SpotMultipliers = map[string]string{"charging": "2"}
	cfg.Pricing.FallbackRate = "9"
	cfg.Pricing.ExtraServiceSurcharge = "1"

	pricing, err := cfg.PricingStrategy()
	require.NoError(t, err)

	car := pricing.CalculatePrice(parking.VehicleCar, parking.SpotCharging, 120, true)
	assert.True(t, decimal.NewFromInt(52).Equal(car), "got %s", car)

	truck := pricing.CalculatePrice(parking.VehicleTruck, parking.SpotStandard, 30, false)
	assert.True(t, decimal.NewFromInt(9).Equal(truck), "got %s", truck)
}
