package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"parking-facility/internal/logging"
	"parking-facility/internal/parking"
)

// Error codes carried in the response envelope.
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeNoSpotAvailable     = "NO_SPOT_AVAILABLE"
	CodeInvalidGate         = "INVALID_GATE"
	CodeGateNotEntry        = "GATE_NOT_ENTRY"
	CodeInvalidVehicleClass = "INVALID_VEHICLE_CLASS"
	CodeUnknownTicket       = "UNKNOWN_TICKET"
	CodeUnknownSpot         = "UNKNOWN_SPOT"
	CodeInternal            = "INTERNAL_ERROR"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type ParkRequest struct {
	VehicleClass string `json:"vehicle_class"`
	LicensePlate string `json:"license_plate"`
	GateID       string `json:"gate_id"`
}

type UnparkRequest struct {
	TicketID         string `json:"ticket_id"`
	ExtraServiceUsed bool   `json:"extra_service_used"`
}

type TicketResponse struct {
	ID                  string     `json:"id"`
	SpotID              string     `json:"spot_id"`
	EntryGateID         string     `json:"entry_gate_id"`
	LicensePlate        string     `json:"license_plate"`
	VehicleClass        string     `json:"vehicle_class"`
	SpotClass           string     `json:"spot_class"`
	ExtraServiceCapable bool       `json:"extra_service_capable"`
	EntryTime           time.Time  `json:"entry_time"`
	Closed              bool       `json:"closed"`
	ExitTime            *time.Time `json:"exit_time,omitempty"`
	FinalPrice          string     `json:"final_price,omitempty"`
}

type UnparkResponse struct {
	TicketID string         `json:"ticket_id"`
	Price    string         `json:"price"`
	Ticket   TicketResponse `json:"ticket"`
}

func newTicketResponse(t parking.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:                  t.ID,
		SpotID:              t.SpotID,
		EntryGateID:         t.EntryGateID,
		LicensePlate:        t.LicensePlate,
		VehicleClass:        string(t.VehicleClass),
		SpotClass:           string(t.SpotClass),
		ExtraServiceCapable: t.ExtraServiceCapable,
		EntryTime:           t.EntryTime,
		Closed:              t.Closed(),
	}
	if resp.Closed {
		exit := t.ExitTime
		resp.ExitTime = &exit
		resp.FinalPrice = t.FinalPrice.StringFixed(2)
	}
	return resp
}

// errorStatus maps lot errors to an HTTP status and envelope code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, parking.ErrNoSpotAvailable):
		return http.StatusConflict, CodeNoSpotAvailable
	case errors.Is(err, parking.ErrGateNotEntry):
		return http.StatusBadRequest, CodeGateNotEntry
	case errors.Is(err, parking.ErrInvalidGate):
		return http.StatusBadRequest, CodeInvalidGate
	case errors.Is(err, parking.ErrInvalidVehicleClass):
		return http.StatusBadRequest, CodeInvalidVehicleClass
	case errors.Is(err, parking.ErrUnknownTicket):
		return http.StatusNotFound, CodeUnknownTicket
	case errors.Is(err, parking.ErrUnknownSpot):
		return http.StatusNotFound, CodeUnknownSpot
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(logging.RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Code:    code,
		Meta:    extractMeta(ctx),
	})
}

// writeLotError renders an error returned by the parking lot.
func writeLotError(ctx context.Context, w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	WriteError(ctx, w, status, code, message)
}
