package parking

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

type SpotClass string

const (
	SpotStandard SpotClass = "standard"
	SpotCharging SpotClass = "charging"
)

func ParseSpotClass(s string) (SpotClass, error) {
	switch c := SpotClass(strings.ToLower(strings.TrimSpace(s))); c {
	case SpotStandard, SpotCharging:
		return c, nil
	default:
		return "", fmt.Errorf("%w: unknown spot class %q", ErrInvalidLayout, s)
	}
}

// Unreachable is the distance reported for a gate missing from a spot's table.
const Unreachable = math.MaxInt

// ParkingSpot is mutated only by the lot, under its lock.
// occupied is true iff currentTicketID is non-empty.
type ParkingSpot struct {
	id            string
	floor         int
	class         SpotClass
	compatible    map[VehicleClass]struct{}
	gateDistances map[string]int

	occupied        bool
	currentTicketID string
}

func NewParkingSpot(id string, floor int, class SpotClass, compatible []VehicleClass, gateDistances map[string]int) *ParkingSpot {
	set := make(map[VehicleClass]struct{}, len(compatible))
	for _, c := range compatible {
		set[c] = struct{}{}
	}
	distances := make(map[string]int, len(gateDistances))
	for gate, d := range gateDistances {
		distances[gate] = d
	}
	return &ParkingSpot{
		id:            id,
		floor:         floor,
		class:         class,
		compatible:    set,
		gateDistances: distances,
	}
}

func (s *ParkingSpot) ID() string { return s.id }
func (s *ParkingSpot) Floor() int { return s.floor }
func (s *ParkingSpot) Class() SpotClass { return s.class }
func (s *ParkingSpot) IsOccupied() bool { return s.occupied }
func (s *ParkingSpot) IsAvailable() bool { return !s.occupied }
func (s *ParkingSpot) CurrentTicketID() string { return s.currentTicketID }
func (s *ParkingSpot) ExtraServiceCapable() bool { return s.class == SpotCharging }

func (s *ParkingSpot) Compatible(class VehicleClass) bool {
	_, ok := s.compatible[class]
	return ok
}

func (s *ParkingSpot) DistanceTo(gateID string) int {
	d, ok := s.gateDistances[gateID]
	if !ok {
		return Unreachable
	}
	return d
}

func (s *ParkingSpot) occupy(ticketID string) {
	s.occupied = true
	s.currentTicketID = ticketID
}

func (s *ParkingSpot) release() {
	s.occupied = false
	s.currentTicketID = ""
}

// View returns a copy that shares no state with the spot.
func (s *ParkingSpot) View() SpotView {
	compatible := make([]VehicleClass, 0, len(s.compatible))
	for _, c := range vehicleClasses {
		if s.Compatible(c) {
			compatible = append(compatible, c)
		}
	}
	distances := make(map[string]int, len(s.gateDistances))
	for gate, d := range s.gateDistances {
		distances[gate] = d
	}
	return SpotView{
		ID:                  s.id,
		Floor:               s.floor,
		Class:               s.class,
		CompatibleVehicles:  compatible,
		GateDistances:       distances,
		ExtraServiceCapable: s.ExtraServiceCapable(),
		Occupied:            s.occupied,
		CurrentTicketID:     s.currentTicketID,
	}
}

type SpotView struct {
	ID                  string         `json:"id"`
	Floor               int            `json:"floor"`
	Class               SpotClass      `json:"class"`
	CompatibleVehicles  []VehicleClass `json:"compatible_vehicles"`
	GateDistances       map[string]int `json:"gate_distances"`
	ExtraServiceCapable bool           `json:"extra_service_capable"`
	Occupied            bool           `json:"occupied"`
	CurrentTicketID     string         `json:"current_ticket_id,omitempty"`
}

func sortedGateIDs(distances map[string]int) []string {
	ids := make([]string, 0, len(distances))
	for id := range distances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
