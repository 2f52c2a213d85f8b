package parking

import "errors"

var (
	ErrNoSpotAvailable     = errors.New("no compatible spot available")
	ErrUnknownTicket       = errors.New("unknown ticket")
	ErrInvalidGate         = errors.New("invalid gate")
	ErrGateNotEntry        = errors.New("gate is not an entry gate")
	ErrUnknownSpot         = errors.New("unknown spot")
	ErrInvalidVehicleClass = errors.New("invalid vehicle class")
	ErrInvalidLayout       = errors.New("invalid facility layout")
)
