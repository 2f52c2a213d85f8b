package parking

import "github.com/shopspring/decimal"

// PricingStrategy must be a pure function of its arguments.
type PricingStrategy interface {
	CalculatePrice(vehicle VehicleClass, spot SpotClass, durationMinutes int64, extraServiceUsed bool) decimal.Decimal
}

// BilledHours rounds a stay up to whole hours: 1..60 minutes bill as one
// hour, 61..120 as two.
func BilledHours(durationMinutes int64) int64 {
	if durationMinutes <= 0 {
		return 0
	}
	return (durationMinutes + 59) / 60
}

var (
	defaultHourlyRates = map[VehicleClass]decimal.Decimal{
		VehicleCar:          decimal.NewFromInt(40),
		VehicleBike:         decimal.NewFromInt(15),
		VehicleElectricBike: decimal.NewFromInt(20),
		VehicleTruck:        decimal.NewFromInt(80),
	}
	defaultFallbackRate    = decimal.NewFromInt(50)
	defaultSpotMultipliers = map[SpotClass]decimal.Decimal{
		SpotStandard: decimal.NewFromInt(1),
		SpotCharging: decimal.RequireFromString("1.2"),
	}
	defaultExtraServiceSurcharge = decimal.NewFromInt(10)
)

// HourlyPricingStrategy bills rate(vehicle) × hours × multiplier(spot), plus a
// per-hour surcharge when the extra service was used.
type HourlyPricingStrategy struct {
	hourlyRates      map[VehicleClass]decimal.Decimal
	fallbackRate     decimal.Decimal
	spotMultipliers  map[SpotClass]decimal.Decimal
	surchargePerHour decimal.Decimal
}

func NewHourlyPricingStrategy(
	hourlyRates map[VehicleClass]decimal.Decimal,
	fallbackRate decimal.Decimal,
	spotMultipliers map[SpotClass]decimal.Decimal,
	surchargePerHour decimal.Decimal,
) *HourlyPricingStrategy {
	rates := make(map[VehicleClass]decimal.Decimal, len(hourlyRates))
	for k, v := range hourlyRates {
		rates[k] = v
	}
	multipliers := make(map[SpotClass]decimal.Decimal, len(spotMultipliers))
	for k, v := range spotMultipliers {
		multipliers[k] = v
	}
	return &HourlyPricingStrategy{
		hourlyRates:      rates,
		fallbackRate:     fallbackRate,
		spotMultipliers:  multipliers,
		surchargePerHour: surchargePerHour,
	}
}

func DefaultHourlyPricingStrategy() *HourlyPricingStrategy {
	return NewHourlyPricingStrategy(defaultHourlyRates, defaultFallbackRate, defaultSpotMultipliers, defaultExtraServiceSurcharge)
}

func (p *HourlyPricingStrategy) HourlyRate(vehicle VehicleClass) decimal.Decimal {
	if rate, ok := p.hourlyRates[vehicle]; ok {
		return rate
	}
	return p.fallbackRate
}

func (p *HourlyPricingStrategy) Multiplier(spot SpotClass) decimal.Decimal {
	if m, ok := p.spotMultipliers[spot]; ok {
		return m
	}
	return decimal.NewFromInt(1)
}

func (p *HourlyPricingStrategy) CalculatePrice(vehicle VehicleClass, spot SpotClass, durationMinutes int64, extraServiceUsed bool) decimal.Decimal {
	hours := decimal.NewFromInt(BilledHours(durationMinutes))
	price := p.HourlyRate(vehicle).Mul(hours).Mul(p.Multiplier(spot))
	if extraServiceUsed {
		price = price.Add(p.surchargePerHour.Mul(hours))
	}
	return price
}

// FlatRatePricingStrategy ignores vehicle and spot class.
type FlatRatePricingStrategy struct {
	RatePerHour      decimal.Decimal
	SurchargePerHour decimal.Decimal
}

func (p FlatRatePricingStrategy) CalculatePrice(_ VehicleClass, _ SpotClass, durationMinutes int64, extraServiceUsed bool) decimal.Decimal {
	hours := decimal.NewFromInt(BilledHours(durationMinutes))
	price := p.RatePerHour.Mul(hours)
	if extraServiceUsed {
		price = price.Add(p.SurchargePerHour.Mul(hours))
	}
	return price
}
