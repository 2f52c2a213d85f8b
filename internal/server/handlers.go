package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"parking-facility/internal/parking"
)

type Handler struct {
	lot         *parking.InstrumentedParkingLot
	serviceName string
}

func NewHandler(lot *parking.InstrumentedParkingLot, serviceName string) *Handler {
	return &Handler{lot: lot, serviceName: serviceName}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(r.Context(), w, http.StatusOK, "", HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
	})
}

func (h *Handler) ListGates(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(r.Context(), w, http.StatusOK, "Gates retrieved successfully", h.lot.Gates())
}

func (h *Handler) ListSpots(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(r.Context(), w, http.StatusOK, "Spots retrieved successfully", h.lot.GetStatus(r.Context()))
}

func (h *Handler) GetSpot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	spot, err := h.lot.Spot(chi.URLParam(r, "spotID"))
	if err != nil {
		writeLotError(ctx, w, err)
		return
	}
	WriteSuccess(ctx, w, http.StatusOK, "Spot retrieved successfully", spot)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(r.Context(), w, http.StatusOK, "Stats retrieved successfully", h.lot.Stats())
}

func (h *Handler) Park(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ParkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body")
		return
	}

	class, err := parking.ParseVehicleClass(req.VehicleClass)
	if err != nil {
		writeLotError(ctx, w, err)
		return
	}

	vehicle, err := parking.NewVehicle(req.LicensePlate, class)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	if req.GateID == "" {
		WriteError(ctx, w, http.StatusBadRequest, CodeInvalidGate, "gate_id is required")
		return
	}

	ticket, err := h.lot.Park(ctx, vehicle, req.GateID)
	if err != nil {
		writeLotError(ctx, w, err)
		return
	}

	WriteSuccess(ctx, w, http.StatusCreated, "Vehicle parked successfully", newTicketResponse(ticket))
}

func (h *Handler) Unpark(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UnparkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body")
		return
	}

	if req.TicketID == "" {
		WriteError(ctx, w, http.StatusBadRequest, CodeInvalidRequest, "ticket_id is required")
		return
	}

	price, err := h.lot.Unpark(ctx, req.TicketID, req.ExtraServiceUsed)
	if err != nil {
		writeLotError(ctx, w, err)
		return
	}

	ticket, err := h.lot.GetTicket(ctx, req.TicketID)
	if err != nil {
		writeLotError(ctx, w, err)
		return
	}

	WriteSuccess(ctx, w, http.StatusOK, "Ticket closed successfully", UnparkResponse{
		TicketID: req.TicketID,
		Price:    price.StringFixed(2),
		Ticket:   newTicketResponse(ticket),
	})
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticket, err := h.lot.GetTicket(ctx, chi.URLParam(r, "ticketID"))
	if err != nil {
		writeLotError(ctx, w, err)
		return
	}
	WriteSuccess(ctx, w, http.StatusOK, "Ticket retrieved successfully", newTicketResponse(ticket))
}
