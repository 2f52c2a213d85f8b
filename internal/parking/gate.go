package parking

import (
	"fmt"
	"strings"
)

type GateDirection string

const (
	GateEntry GateDirection = "entry"
	GateExit  GateDirection = "exit"
)

func ParseGateDirection(s string) (GateDirection, error) {
	switch d := GateDirection(strings.ToLower(strings.TrimSpace(s))); d {
	case GateEntry, GateExit:
		return d, nil
	default:
		return "", fmt.Errorf("%w: unknown gate direction %q", ErrInvalidLayout, s)
	}
}

type EntryExitGate struct {
	ID        string        `json:"id"`
	Floor     int           `json:"floor"`
	Direction GateDirection `json:"direction"`
}

func NewEntryExitGate(id string, floor int, direction GateDirection) EntryExitGate {
	return EntryExitGate{
		ID:        id,
		Floor:     floor,
		Direction: direction,
	}
}

func (g EntryExitGate) IsEntry() bool {
	return g.Direction == GateEntry
}

func (g EntryExitGate) IsExit() bool {
	return g.Direction == GateExit
}
