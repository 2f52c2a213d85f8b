package parking

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticket records one occupancy episode. The lot hands out copies; the
// registry entry is the only instance that ever changes, and only once.
type Ticket struct {
	ID                  string
	SpotID              string
	EntryGateID         string
	LicensePlate        string
	VehicleClass        VehicleClass
	SpotClass           SpotClass
	ExtraServiceCapable bool
	EntryTime           time.Time

	// Zero until the ticket is closed; set together.
	ExitTime   time.Time
	FinalPrice decimal.Decimal
	closed     bool
}

func newTicket(id string, spot *ParkingSpot, entryGateID string, vehicle Vehicle, entryTime time.Time) *Ticket {
	return &Ticket{
		ID:                  id,
		SpotID:              spot.ID(),
		EntryGateID:         entryGateID,
		LicensePlate:        vehicle.LicensePlate,
		VehicleClass:        vehicle.Class,
		SpotClass:           spot.Class(),
		ExtraServiceCapable: spot.ExtraServiceCapable(),
		EntryTime:           entryTime,
	}
}

func (t Ticket) Closed() bool {
	return t.closed
}

// DurationMinutes is the billable stay, never less than one minute.
func (t Ticket) DurationMinutes(exitTime time.Time) int64 {
	minutes := int64(exitTime.Sub(t.EntryTime) / time.Minute)
	if minutes < 1 {
		return 1
	}
	return minutes
}

// closeAndPrice is idempotent: a closed ticket keeps its exit time and price.
func (t *Ticket) closeAndPrice(pricing PricingStrategy, exitTime time.Time, extraServiceUsed bool) decimal.Decimal {
	if t.closed {
		return t.FinalPrice
	}
	t.ExitTime = exitTime
	t.FinalPrice = pricing.CalculatePrice(
		t.VehicleClass,
		t.SpotClass,
		t.DurationMinutes(exitTime),
		extraServiceUsed,
	)
	t.closed = true
	return t.FinalPrice
}
