package parking

import "fmt"

// Layout is the facility description supplied once at construction.
type Layout struct {
	Gates []GateSpec `yaml:"gates" json:"gates"`
	Spots []SpotSpec `yaml:"spots" json:"spots"`
}

type GateSpec struct {
	ID        string `yaml:"id" json:"id"`
	Floor     int    `yaml:"floor" json:"floor"`
	Direction string `yaml:"direction" json:"direction"`
}

type SpotSpec struct {
	ID        string         `yaml:"id" json:"id"`
	Floor     int            `yaml:"floor" json:"floor"`
	Class     string         `yaml:"class" json:"class"`
	Vehicles  []string       `yaml:"vehicles" json:"vehicles"`
	Distances map[string]int `yaml:"distances" json:"distances"`
}

func (l Layout) Build() ([]EntryExitGate, []*ParkingSpot, error) {
	gates := make([]EntryExitGate, 0, len(l.Gates))
	for i, g := range l.Gates {
		direction, err := ParseGateDirection(g.Direction)
		if err != nil {
			return nil, nil, fmt.Errorf("gate %d (%q): %w", i, g.ID, err)
		}
		gates = append(gates, NewEntryExitGate(g.ID, g.Floor, direction))
	}

	spots := make([]*ParkingSpot, 0, len(l.Spots))
	for i, s := range l.Spots {
		class, err := ParseSpotClass(s.Class)
		if err != nil {
			return nil, nil, fmt.Errorf("spot %d (%q): %w", i, s.ID, err)
		}
		vehicles := make([]VehicleClass, 0, len(s.Vehicles))
		for _, v := range s.Vehicles {
			vc, err := ParseVehicleClass(v)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: spot %d (%q): %v", ErrInvalidLayout, i, s.ID, err)
			}
			vehicles = append(vehicles, vc)
		}
		spots = append(spots, NewParkingSpot(s.ID, s.Floor, class, vehicles, s.Distances))
	}
	return gates, spots, nil
}

func NewParkingLotFromLayout(l Layout, pricing PricingStrategy, allocation AllocationStrategy, opts ...Option) (*ParkingLot, error) {
	gates, spots, err := l.Build()
	if err != nil {
		return nil, err
	}
	return NewParkingLot(gates, spots, pricing, allocation, opts...)
}

// DemoLayout is a two-floor facility with two entry gates and one exit:
// five standard spots and three charging spots on floor 1, five standard
// spots on floor 2.
func DemoLayout() Layout {
	all := []string{"bike", "electric_bike", "car", "truck"}
	l := Layout{
		Gates: []GateSpec{
			{ID: "G1", Floor: 0, Direction: "entry"},
			{ID: "G2", Floor: 0, Direction: "entry"},
			{ID: "X1", Floor: 0, Direction: "exit"},
		},
	}
	for i := 1; i <= 5; i++ {
		l.Spots = append(l.Spots, SpotSpec{
			ID: fmt.Sprintf("S1-%d", i), Floor: 1, Class: "standard", Vehicles: all,
			Distances: map[string]int{"G1": 10 + i, "G2": 20 + i},
		})
	}
	for i := 1; i <= 3; i++ {
		l.Spots = append(l.Spots, SpotSpec{
			ID: fmt.Sprintf("C1-%d", i), Floor: 1, Class: "charging", Vehicles: []string{"electric_bike", "car"},
			Distances: map[string]int{"G1": 15 + i, "G2": 25 + i},
		})
	}
	for i := 1; i <= 5; i++ {
		l.Spots = append(l.Spots, SpotSpec{
			ID: fmt.Sprintf("S2-%d", i), Floor: 2, Class: "standard", Vehicles: all,
			Distances: map[string]int{"G1": 30 + i, "G2": 40 + i},
		})
	}
	return l
}
