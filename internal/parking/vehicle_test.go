package parking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVehicle(t *testing.T) {
	vehicle, err := NewVehicle("KA01HH1234", VehicleCar)
	require.NoError(t, err)

	assert.Equal(t, "KA01HH1234", vehicle.LicensePlate)
	assert.Equal(t, VehicleCar, vehicle.Class)
}

func TestNewVehicleValidation(t *testing.T) {
	_, err := NewVehicle("  ", VehicleCar)
	assert.Error(t, err)

	_, err = NewVehicle("KA01HH1234", "spaceship")
	assert.ErrorIs(t, err, ErrInvalidVehicleClass)
}

func TestParseVehicleClass(t *testing.T) {
	for _, c := range VehicleClasses() {
		got, err := ParseVehicleClass(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	got, err := ParseVehicleClass(" Electric_Bike ")
	require.NoError(t, err)
	assert.Equal(t, VehicleElectricBike, got)

	_, err = ParseVehicleClass("bus")
	assert.ErrorIs(t, err, ErrInvalidVehicleClass)
}

func TestParseGateDirectionAndSpotClass(t *testing.T) {
	d, err := ParseGateDirection("EXIT")
	require.NoError(t, err)
	assert.Equal(t, GateExit, d)

	_, err = ParseGateDirection("both")
	assert.ErrorIs(t, err, ErrInvalidLayout)

	c, err := ParseSpotClass("charging")
	require.NoError(t, err)
	assert.Equal(t, SpotCharging, c)

	_, err = ParseSpotClass("valet")
	assert.ErrorIs(t, err, ErrInvalidLayout)
}
