package parking

import (
	"fmt"
	"strings"
)

type VehicleClass string

const (
	VehicleBike         VehicleClass = "bike"
	VehicleElectricBike VehicleClass = "electric_bike"
	VehicleCar          VehicleClass = "car"
	VehicleTruck        VehicleClass = "truck"
)

var vehicleClasses = []VehicleClass{VehicleBike, VehicleElectricBike, VehicleCar, VehicleTruck}

// VehicleClasses lists every known class in a fixed order.
func VehicleClasses() []VehicleClass {
	out := make([]VehicleClass, len(vehicleClasses))
	copy(out, vehicleClasses)
	return out
}

func ParseVehicleClass(s string) (VehicleClass, error) {
	c := VehicleClass(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range vehicleClasses {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVehicleClass, s)
}

// Vehicle is owned by the caller. The lot only reads it during Park.
type Vehicle struct {
	LicensePlate string
	Class        VehicleClass
}

func NewVehicle(licensePlate string, class VehicleClass) (Vehicle, error) {
	if strings.TrimSpace(licensePlate) == "" {
		return Vehicle{}, fmt.Errorf("license plate is required")
	}
	if _, err := ParseVehicleClass(string(class)); err != nil {
		return Vehicle{}, err
	}
	return Vehicle{
		LicensePlate: licensePlate,
		Class:        class,
	}, nil
}
