package parking

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func assertPrice(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "expected price %s, got %s", want, got)
}

func newDemoLot(t *testing.T, opts ...Option) *ParkingLot {
	t.Helper()
	pl, err := NewParkingLotFromLayout(DemoLayout(), DefaultHourlyPricingStrategy(), NearestSpotStrategy{}, opts...)
	require.NoError(t, err)
	return pl
}

func mustVehicle(t *testing.T, plate string, class VehicleClass) Vehicle {
	t.Helper()
	v, err := NewVehicle(plate, class)
	require.NoError(t, err)
	return v
}

// assertConsistent checks that a spot is occupied exactly when an open
// ticket points back at it.
func assertConsistent(t *testing.T, pl *ParkingLot) {
	t.Helper()
	open := map[string]Ticket{}
	for _, tk := range pl.Tickets() {
		if !tk.Closed() {
			open[tk.ID] = tk
		}
	}
	occupied := 0
	for _, s := range pl.Spots() {
		if !s.Occupied {
			assert.Empty(t, s.CurrentTicketID, "free spot %s has a ticket", s.ID)
			continue
		}
		occupied++
		tk, ok := open[s.CurrentTicketID]
		if assert.True(t, ok, "spot %s points at %q which is not an open ticket", s.ID, s.CurrentTicketID) {
			assert.Equal(t, s.ID, tk.SpotID)
		}
	}
	assert.Equal(t, len(open), occupied)
}
