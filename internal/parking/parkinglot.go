package parking

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Option func(*ParkingLot)

// WithClock replaces time.Now for entry and exit timestamps.
func WithClock(now func() time.Time) Option {
	return func(pl *ParkingLot) {
		pl.now = now
	}
}

func WithTicketIDGenerator(next func() string) Option {
	return func(pl *ParkingLot) {
		pl.newTicketID = next
	}
}

// WithGateDirectionPolicy controls whether Park rejects exit-only gates.
// Enforcement is on by default.
func WithGateDirectionPolicy(enforceEntry bool) Option {
	return func(pl *ParkingLot) {
		pl.enforceEntryGates = enforceEntry
	}
}

// ParkingLot owns the gate, spot and ticket registries. Park and Unpark hold
// the write lock for their whole mutation so readers never see a spot
// occupied without its ticket registered, or the reverse.
type ParkingLot struct {
	mu sync.RWMutex

	gates     []EntryExitGate
	gatesByID map[string]EntryExitGate
	spots     []*ParkingSpot
	spotsByID map[string]*ParkingSpot
	tickets   map[string]*Ticket

	pricing    PricingStrategy
	allocation AllocationStrategy

	now               func() time.Time
	newTicketID       func() string
	enforceEntryGates bool
}

func NewParkingLot(gates []EntryExitGate, spots []*ParkingSpot, pricing PricingStrategy, allocation AllocationStrategy, opts ...Option) (*ParkingLot, error) {
	if pricing == nil || allocation == nil {
		return nil, fmt.Errorf("pricing and allocation strategies are required")
	}

	pl := &ParkingLot{
		gatesByID:         make(map[string]EntryExitGate, len(gates)),
		spotsByID:         make(map[string]*ParkingSpot, len(spots)),
		tickets:           make(map[string]*Ticket),
		pricing:           pricing,
		allocation:        allocation,
		now:               time.Now,
		newTicketID:       func() string { return uuid.New().String() },
		enforceEntryGates: true,
	}
	for _, opt := range opts {
		opt(pl)
	}

	for _, g := range gates {
		if g.ID == "" {
			return nil, fmt.Errorf("%w: gate id is required", ErrInvalidLayout)
		}
		if _, dup := pl.gatesByID[g.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate gate %q", ErrInvalidLayout, g.ID)
		}
		if g.Direction != GateEntry && g.Direction != GateExit {
			return nil, fmt.Errorf("%w: gate %q has unknown direction %q", ErrInvalidLayout, g.ID, g.Direction)
		}
		pl.gatesByID[g.ID] = g
		pl.gates = append(pl.gates, g)
	}

	for _, s := range spots {
		if err := pl.validateSpot(s); err != nil {
			return nil, err
		}
		pl.spotsByID[s.ID()] = s
		pl.spots = append(pl.spots, s)
	}

	return pl, nil
}

func (pl *ParkingLot) validateSpot(s *ParkingSpot) error {
	if s == nil || s.ID() == "" {
		return fmt.Errorf("%w: spot id is required", ErrInvalidLayout)
	}
	if _, dup := pl.spotsByID[s.ID()]; dup {
		return fmt.Errorf("%w: duplicate spot %q", ErrInvalidLayout, s.ID())
	}
	if s.Class() != SpotStandard && s.Class() != SpotCharging {
		return fmt.Errorf("%w: spot %q has unknown class %q", ErrInvalidLayout, s.ID(), s.Class())
	}
	if len(s.compatible) == 0 {
		return fmt.Errorf("%w: spot %q accepts no vehicle class", ErrInvalidLayout, s.ID())
	}
	for c := range s.compatible {
		if _, err := ParseVehicleClass(string(c)); err != nil {
			return fmt.Errorf("%w: spot %q: %v", ErrInvalidLayout, s.ID(), err)
		}
	}
	for _, gateID := range sortedGateIDs(s.gateDistances) {
		if _, ok := pl.gatesByID[gateID]; !ok {
			return fmt.Errorf("%w: spot %q references gate %q: %w", ErrInvalidLayout, s.ID(), gateID, ErrInvalidGate)
		}
		if s.gateDistances[gateID] < 0 {
			return fmt.Errorf("%w: spot %q has negative distance to gate %q", ErrInvalidLayout, s.ID(), gateID)
		}
	}
	if s.IsOccupied() {
		return fmt.Errorf("%w: spot %q is occupied at construction", ErrInvalidLayout, s.ID())
	}
	return nil
}

func (pl *ParkingLot) Park(vehicle Vehicle, entryGateID string) (Ticket, error) {
	if _, err := ParseVehicleClass(string(vehicle.Class)); err != nil {
		return Ticket{}, err
	}

	gate, ok := pl.gatesByID[entryGateID]
	if !ok {
		return Ticket{}, fmt.Errorf("%w: %q", ErrInvalidGate, entryGateID)
	}
	if pl.enforceEntryGates && !gate.IsEntry() {
		return Ticket{}, fmt.Errorf("%w: %q", ErrGateNotEntry, entryGateID)
	}

	pl.mu.Lock()
	defer pl.mu.Unlock()

	spot, found := pl.allocation.FindSpot(pl.spots, vehicle, entryGateID)
	if !found {
		return Ticket{}, fmt.Errorf("%w for %s at gate %q", ErrNoSpotAvailable, vehicle.Class, entryGateID)
	}
	// A custom strategy could hand back something it should not have.
	if spot == nil {
		return Ticket{}, fmt.Errorf("allocation reported a spot but returned none")
	}
	if !eligible(spot, vehicle) || pl.spotsByID[spot.ID()] != spot {
		return Ticket{}, fmt.Errorf("allocation returned ineligible spot %q", spot.ID())
	}

	ticketID := pl.newTicketID()
	if _, dup := pl.tickets[ticketID]; dup {
		return Ticket{}, fmt.Errorf("ticket id collision on %q", ticketID)
	}

	ticket := newTicket(ticketID, spot, entryGateID, vehicle, pl.now())
	pl.tickets[ticketID] = ticket
	spot.occupy(ticketID)

	return *ticket, nil
}

// Unpark closes the ticket and frees its spot. Repeating it on a closed
// ticket returns the stored price without touching anything.
func (pl *ParkingLot) Unpark(ticketID string, extraServiceUsed bool) (decimal.Decimal, error) {
	price, _, err := pl.unpark(ticketID, extraServiceUsed)
	return price, err
}

// unpark also reports whether this call was the one that closed the ticket.
func (pl *ParkingLot) unpark(ticketID string, extraServiceUsed bool) (decimal.Decimal, bool, error) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	ticket, ok := pl.tickets[ticketID]
	if !ok {
		return decimal.Zero, false, fmt.Errorf("%w: %q", ErrUnknownTicket, ticketID)
	}
	if ticket.Closed() {
		return ticket.FinalPrice, false, nil
	}

	price := ticket.closeAndPrice(pl.pricing, pl.now(), extraServiceUsed)
	if spot, ok := pl.spotsByID[ticket.SpotID]; ok && spot.CurrentTicketID() == ticket.ID {
		spot.release()
	}
	return price, true, nil
}

func (pl *ParkingLot) Gates() []EntryExitGate {
	out := make([]EntryExitGate, len(pl.gates))
	copy(out, pl.gates)
	return out
}

func (pl *ParkingLot) Gate(id string) (EntryExitGate, error) {
	g, ok := pl.gatesByID[id]
	if !ok {
		return EntryExitGate{}, fmt.Errorf("%w: %q", ErrInvalidGate, id)
	}
	return g, nil
}

// Spots lists every spot in construction order with live occupancy.
func (pl *ParkingLot) Spots() []SpotView {
	pl.mu.RLock()
	defer pl.mu.RUnlock()

	out := make([]SpotView, 0, len(pl.spots))
	for _, s := range pl.spots {
		out = append(out, s.View())
	}
	return out
}

func (pl *ParkingLot) Spot(id string) (SpotView, error) {
	pl.mu.RLock()
	defer pl.mu.RUnlock()

	s, ok := pl.spotsByID[id]
	if !ok {
		return SpotView{}, fmt.Errorf("%w: %q", ErrUnknownSpot, id)
	}
	return s.View(), nil
}

func (pl *ParkingLot) Ticket(id string) (Ticket, error) {
	pl.mu.RLock()
	defer pl.mu.RUnlock()

	t, ok := pl.tickets[id]
	if !ok {
		return Ticket{}, fmt.Errorf("%w: %q", ErrUnknownTicket, id)
	}
	return *t, nil
}

// Tickets returns every issued ticket, oldest first.
func (pl *ParkingLot) Tickets() []Ticket {
	pl.mu.RLock()
	defer pl.mu.RUnlock()

	out := make([]Ticket, 0, len(pl.tickets))
	for _, t := range pl.tickets {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EntryTime.Equal(out[j].EntryTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].EntryTime.Before(out[j].EntryTime)
	})
	return out
}

type ClassAvailability struct {
	Compatible int `json:"compatible"`
	Available  int `json:"available"`
}

type Stats struct {
	Capacity    int                                `json:"capacity"`
	Occupied    int                                `json:"occupied"`
	Available   int                                `json:"available"`
	OpenTickets int                                `json:"open_tickets"`
	ByVehicle   map[VehicleClass]ClassAvailability `json:"by_vehicle"`
}

func (pl *ParkingLot) Stats() Stats {
	pl.mu.RLock()
	defer pl.mu.RUnlock()

	st := Stats{
		Capacity:  len(pl.spots),
		ByVehicle: make(map[VehicleClass]ClassAvailability, len(vehicleClasses)),
	}
	for _, c := range vehicleClasses {
		st.ByVehicle[c] = ClassAvailability{}
	}
	for _, s := range pl.spots {
		if s.IsOccupied() {
			st.Occupied++
		}
		for _, c := range vehicleClasses {
			if !s.Compatible(c) {
				continue
			}
			ca := st.ByVehicle[c]
			ca.Compatible++
			if s.IsAvailable() {
				ca.Available++
			}
			st.ByVehicle[c] = ca
		}
	}
	st.Available = st.Capacity - st.Occupied
	for _, t := range pl.tickets {
		if !t.Closed() {
			st.OpenTickets++
		}
	}
	return st
}

func (pl *ParkingLot) Capacity() int {
	return len(pl.spots)
}
