package parking

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"parking-facility/internal/logging"
)

type InstrumentedParkingLot struct {
	*ParkingLot
	telemetry *TelemetryProvider
	logger    *logging.Logger

	// Metrics
	parkOperations    metric.Int64Counter
	unparkOperations  metric.Int64Counter
	occupancyGauge    metric.Int64UpDownCounter
	revenue           metric.Float64Counter
	operationDuration metric.Float64Histogram
	totalSpotsGauge   metric.Int64UpDownCounter
}

func NewInstrumentedParkingLot(base *ParkingLot, telemetry *TelemetryProvider, logger *logging.Logger) (*InstrumentedParkingLot, error) {
	meter := telemetry.Meter()

	parkOperations, err := meter.Int64Counter("park_operations_total",
		metric.WithDescription("Total number of park operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	unparkOperations, err := meter.Int64Counter("unpark_operations_total",
		metric.WithDescription("Total number of unpark operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("parking_lot_occupancy",
		metric.WithDescription("Current number of occupied parking spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	revenue, err := meter.Float64Counter("revenue_total",
		metric.WithDescription("Total amount billed on closed tickets"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("operation_duration_seconds",
		metric.WithDescription("Duration of parking lot operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	totalSpotsGauge, err := meter.Int64UpDownCounter("parking_lot_total_spots",
		metric.WithDescription("Total number of parking spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = logging.Nop()
	}

	ipl := &InstrumentedParkingLot{
		ParkingLot:        base,
		telemetry:         telemetry,
		logger:            logger,
		parkOperations:    parkOperations,
		unparkOperations:  unparkOperations,
		occupancyGauge:    occupancyGauge,
		revenue:           revenue,
		operationDuration: operationDuration,
		totalSpotsGauge:   totalSpotsGauge,
	}

	totalSpotsGauge.Add(context.Background(), int64(base.Capacity()))

	return ipl, nil
}

func (ipl *InstrumentedParkingLot) Telemetry() *TelemetryProvider {
	return ipl.telemetry
}

// outcome is the status label for an operation error.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNoSpotAvailable):
		return "no_spot"
	case errors.Is(err, ErrUnknownTicket):
		return "unknown_ticket"
	case errors.Is(err, ErrInvalidGate), errors.Is(err, ErrGateNotEntry):
		return "invalid_gate"
	case errors.Is(err, ErrInvalidVehicleClass):
		return "invalid_vehicle"
	default:
		return "failed"
	}
}

func (ipl *InstrumentedParkingLot) Park(ctx context.Context, vehicle Vehicle, entryGateID string) (Ticket, error) {
	tracer := ipl.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "parking_lot.park",
		trace.WithAttributes(
			attribute.String("vehicle.license_plate", vehicle.LicensePlate),
			attribute.String("vehicle.class", string(vehicle.Class)),
			attribute.String("gate.id", entryGateID),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("finding_available_spot")

	ticket, err := ipl.ParkingLot.Park(vehicle, entryGateID)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "park"),
		attribute.String("vehicle_class", string(vehicle.Class)),
		attribute.String("status", outcome(err)),
	}

	log := ipl.logger.WithContext(ctx)
	if err != nil {
		span.RecordError(err)
		// A full lot is a normal answer, not a failed request.
		if !errors.Is(err, ErrNoSpotAvailable) {
			span.SetStatus(codes.Error, err.Error())
		}
		log.Warn("park rejected",
			zap.String("vehicle_class", string(vehicle.Class)),
			zap.String("gate_id", entryGateID),
			zap.Error(err))
	} else {
		labels = append(labels, attribute.String("spot_class", string(ticket.SpotClass)))
		span.SetAttributes(
			attribute.String("ticket.id", ticket.ID),
			attribute.String("spot.id", ticket.SpotID),
		)
		span.AddEvent("spot_allocated", trace.WithAttributes(
			attribute.String("spot.id", ticket.SpotID),
		))
		ipl.occupancyGauge.Add(ctx, 1)
		log.Info("vehicle parked",
			zap.String("ticket_id", ticket.ID),
			zap.String("spot_id", ticket.SpotID),
			zap.String("vehicle_class", string(vehicle.Class)),
			zap.String("gate_id", entryGateID))
	}

	ipl.parkOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ipl.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return ticket, err
}

func (ipl *InstrumentedParkingLot) Unpark(ctx context.Context, ticketID string, extraServiceUsed bool) (decimal.Decimal, error) {
	tracer := ipl.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "parking_lot.unpark",
		trace.WithAttributes(
			attribute.String("ticket.id", ticketID),
			attribute.Bool("extra_service_used", extraServiceUsed),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("closing_ticket")

	price, closedNow, err := ipl.ParkingLot.unpark(ticketID, extraServiceUsed)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "unpark"),
		attribute.String("status", outcome(err)),
	}

	log := ipl.logger.WithContext(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn("unpark rejected", zap.String("ticket_id", ticketID), zap.Error(err))
	} else {
		amount, _ := price.Float64()
		span.SetAttributes(attribute.String("ticket.price", price.String()))
		if closedNow {
			span.AddEvent("spot_released")
			ipl.occupancyGauge.Add(ctx, -1)
			ipl.revenue.Add(ctx, amount)
			log.Info("vehicle left",
				zap.String("ticket_id", ticketID),
				zap.String("price", price.String()),
				zap.Bool("extra_service_used", extraServiceUsed))
		} else {
			labels = append(labels, attribute.Bool("repeat", true))
			span.AddEvent("ticket_already_closed")
			log.Info("repeat exit scan", zap.String("ticket_id", ticketID), zap.String("price", price.String()))
		}
	}

	ipl.unparkOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ipl.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return price, err
}

func (ipl *InstrumentedParkingLot) GetStatus(ctx context.Context) []SpotView {
	tracer := ipl.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "parking_lot.get_status")
	defer span.End()

	start := time.Now()

	spots := ipl.ParkingLot.Spots()

	occupied := 0
	for _, s := range spots {
		if s.Occupied {
			occupied++
		}
	}
	span.SetAttributes(
		attribute.Int("occupied_spots_count", occupied),
		attribute.Int("total_capacity", len(spots)),
	)

	ipl.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("operation", "get_status"),
		attribute.String("status", "success"),
	))

	return spots
}

func (ipl *InstrumentedParkingLot) GetTicket(ctx context.Context, ticketID string) (Ticket, error) {
	tracer := ipl.telemetry.Tracer()
	_, span := tracer.Start(ctx, "parking_lot.get_ticket",
		trace.WithAttributes(attribute.String("ticket.id", ticketID)))
	defer span.End()

	ticket, err := ipl.ParkingLot.Ticket(ticketID)
	if err != nil {
		span.AddEvent("ticket_not_found")
		return Ticket{}, err
	}
	span.SetAttributes(attribute.Bool("ticket.closed", ticket.Closed()))
	return ticket, nil
}
