package parking

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBilledHours(t *testing.T) {
	tests := []struct {
		minutes int64
		want    int64
	}{
		{0, 0},
		{1, 1},
		{59, 1},
		{60, 1},
		{61, 2},
		{90, 2},
		{120, 2},
		{121, 3},
		{24 * 60, 24},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BilledHours(tt.minutes), "minutes=%d", tt.minutes)
	}
}

func TestHourlyPricingDefaults(t *testing.T) {
	p := DefaultHourlyPricingStrategy()

	assertPrice(t, "40", p.CalculatePrice(VehicleCar, SpotStandard, 1, false))
	assertPrice(t, "80", p.CalculatePrice(VehicleCar, SpotStandard, 61, false))
	assertPrice(t, "80", p.CalculatePrice(VehicleCar, SpotStandard, 120, false))
	assertPrice(t, "15", p.CalculatePrice(VehicleBike, SpotStandard, 30, false))
	assertPrice(t, "160", p.CalculatePrice(VehicleTruck, SpotStandard, 90, false))
	assertPrice(t, "48", p.CalculatePrice(VehicleCar, SpotCharging, 60, false))
	assertPrice(t, "58", p.CalculatePrice(VehicleCar, SpotCharging, 60, true))
	assertPrice(t, "68", p.CalculatePrice(VehicleElectricBike, SpotCharging, 61, true))
}

func TestHourlyPricingFallbacks(t *testing.T) {
	p := DefaultHourlyPricingStrategy()

	assertPrice(t, "50", p.CalculatePrice("unmapped", SpotStandard, 10, false))
	assertPrice(t, "40", p.CalculatePrice(VehicleCar, "unmapped", 10, false))
}

func TestHourlyPricingIsMonotoneInDuration(t *testing.T) {
	p := DefaultHourlyPricingStrategy()

	prev := decimal.Zero
	for m := int64(1); m <= 600; m++ {
		price := p.CalculatePrice(VehicleCar, SpotCharging, m, true)
		assert.True(t, price.GreaterThanOrEqual(prev), "price dropped at %d minutes", m)
		prev = price
	}
}

func TestNewHourlyPricingStrategyCopiesMaps(t *testing.T) {
	rates := map[VehicleClass]decimal.Decimal{VehicleCar: decimal.NewFromInt(5)}
	p := NewHourlyPricingStrategy(rates, decimal.NewFromInt(7), nil, decimal.NewFromInt(1))

	rates[VehicleCar] = decimal.NewFromInt(500)

	assertPrice(t, "5", p.HourlyRate(VehicleCar))
	assertPrice(t, "7", p.HourlyRate(VehicleTruck))
	assertPrice(t, "1", p.Multiplier(SpotCharging))
}

func TestFlatRatePricing(t *testing.T) {
	p := FlatRatePricingStrategy{RatePerHour: decimal.NewFromInt(25), SurchargePerHour: decimal.RequireFromString("2.5")}

	assertPrice(t, "25", p.CalculatePrice(VehicleTruck, SpotCharging, 1, false))
	assertPrice(t, "50", p.CalculatePrice(VehicleBike, SpotStandard, 61, false))
	assertPrice(t, "55", p.CalculatePrice(VehicleCar, SpotCharging, 120, true))
}
