package parking

// AllocationStrategy picks one free spot compatible with the vehicle. It must
// not mutate the inventory; returning false means the lot is full for that
// vehicle class.
type AllocationStrategy interface {
	FindSpot(spots []*ParkingSpot, vehicle Vehicle, entryGateID string) (*ParkingSpot, bool)
}

func eligible(s *ParkingSpot, vehicle Vehicle) bool {
	return s.IsAvailable() && s.Compatible(vehicle.Class)
}

// NearestSpotStrategy selects the eligible spot closest to the entry gate.
// Equal distances fall back to the lower spot id. Spots with no distance to
// the gate are still eligible but rank last.
type NearestSpotStrategy struct{}

func (NearestSpotStrategy) FindSpot(spots []*ParkingSpot, vehicle Vehicle, entryGateID string) (*ParkingSpot, bool) {
	var best *ParkingSpot
	bestDistance := 0
	for _, s := range spots {
		if !eligible(s, vehicle) {
			continue
		}
		d := s.DistanceTo(entryGateID)
		if best == nil || d < bestDistance || (d == bestDistance && s.ID() < best.ID()) {
			best, bestDistance = s, d
		}
	}
	return best, best != nil
}

// FirstAvailableStrategy fills the lowest floor first, then the lowest spot id,
// regardless of the entry gate.
type FirstAvailableStrategy struct{}

func (FirstAvailableStrategy) FindSpot(spots []*ParkingSpot, vehicle Vehicle, _ string) (*ParkingSpot, bool) {
	var best *ParkingSpot
	for _, s := range spots {
		if !eligible(s, vehicle) {
			continue
		}
		if best == nil || s.Floor() < best.Floor() || (s.Floor() == best.Floor() && s.ID() < best.ID()) {
			best = s
		}
	}
	return best, best != nil
}
