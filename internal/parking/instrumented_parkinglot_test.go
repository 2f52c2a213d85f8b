package parking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"parking-facility/internal/logging"
)

type instrumentedFixture struct {
	lot    *InstrumentedParkingLot
	clock  *fakeClock
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	logs   *observer.ObservedLogs
}

func newInstrumentedFixture(t *testing.T) *instrumentedFixture {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()
	telemetry := NewTelemetryProviderWith(
		sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)),
		sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	)
	t.Cleanup(func() {
		if err := telemetry.Shutdown(context.Background()); err != nil {
			t.Errorf("Failed to shutdown telemetry: %v", err)
		}
	})

	core, logs := observer.New(zapcore.InfoLevel)
	clock := newFakeClock()
	ipl, err := NewInstrumentedParkingLot(newDemoLot(t, WithClock(clock.Now)), telemetry, logging.Wrap(zap.New(core)))
	require.NoError(t, err)

	return &instrumentedFixture{lot: ipl, clock: clock, spans: spans, reader: reader, logs: logs}
}

func (f *instrumentedFixture) collect(t *testing.T) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, f.reader.Collect(context.Background(), &rm))
	return rm
}

func int64Sum(rm metricdata.ResourceMetrics, name string) int64 {
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func float64Sum(rm metricdata.ResourceMetrics, name string) float64 {
	var total float64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[float64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func spanNames(spans *tracetest.SpanRecorder) []string {
	var names []string
	for _, s := range spans.Ended() {
		names = append(names, s.Name())
	}
	return names
}

func TestInstrumentedParkingLotIntegration(t *testing.T) {
	f := newInstrumentedFixture(t)
	ctx := context.Background()

	ticket, err := f.lot.Park(ctx, mustVehicle(t, "KA01HH1234", VehicleCar), "G1")
	require.NoError(t, err)
	assert.Equal(t, "S1-1", ticket.SpotID)

	status := f.lot.GetStatus(ctx)
	require.Len(t, status, 13)
	assert.True(t, status[0].Occupied)

	found, err := f.lot.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, found.ID)

	f.clock.Advance(90 * time.Minute)
	price, err := f.lot.Unpark(ctx, ticket.ID, false)
	require.NoError(t, err)
	assertPrice(t, "80", price)

	rm := f.collect(t)
	assert.Equal(t, int64(13), int64Sum(rm, "parking_lot_total_spots"))
	assert.Equal(t, int64(1), int64Sum(rm, "park_operations_total"))
	assert.Equal(t, int64(1), int64Sum(rm, "unpark_operations_total"))
	assert.Equal(t, int64(0), int64Sum(rm, "parking_lot_occupancy"))
	assert.InDelta(t, 80.0, float64Sum(rm, "revenue_total"), 0.0001)

	assert.Subset(t, spanNames(f.spans), []string{
		"parking_lot.park", "parking_lot.get_status", "parking_lot.get_ticket", "parking_lot.unpark",
	})

	messages := []string{}
	for _, e := range f.logs.All() {
		messages = append(messages, e.Message)
	}
	assert.Equal(t, []string{"vehicle parked", "vehicle left"}, messages)
}

func TestInstrumentedParkingLotRepeatUnparkCountsOnce(t *testing.T) {
	f := newInstrumentedFixture(t)
	ctx := context.Background()

	ticket, err := f.lot.Park(ctx, mustVehicle(t, "A", VehicleCar), "G1")
	require.NoError(t, err)

	first, err := f.lot.Unpark(ctx, ticket.ID, false)
	require.NoError(t, err)
	second, err := f.lot.Unpark(ctx, ticket.ID, false)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))

	rm := f.collect(t)
	assert.Equal(t, int64(0), int64Sum(rm, "parking_lot_occupancy"))
	assert.Equal(t, int64(2), int64Sum(rm, "unpark_operations_total"))
	assert.InDelta(t, 40.0, float64Sum(rm, "revenue_total"), 0.0001)
}

func TestInstrumentedParkingLotRecordsRejections(t *testing.T) {
	f := newInstrumentedFixture(t)
	ctx := context.Background()

	_, err := f.lot.Park(ctx, mustVehicle(t, "A", VehicleCar), "X1")
	assert.ErrorIs(t, err, ErrGateNotEntry)

	_, err = f.lot.Unpark(ctx, "missing", false)
	assert.ErrorIs(t, err, ErrUnknownTicket)

	_, err = f.lot.GetTicket(ctx, "missing")
	assert.ErrorIs(t, err, ErrUnknownTicket)

	rm := f.collect(t)
	assert.Equal(t, int64(1), int64Sum(rm, "park_operations_total"))
	assert.Equal(t, int64(0), int64Sum(rm, "parking_lot_occupancy"))
	assert.Equal(t, 2, f.logs.FilterMessageSnippet("rejected").Len())

	for _, s := range f.spans.Ended() {
		if s.Name() == "parking_lot.park" || s.Name() == "parking_lot.unpark" {
			assert.NotEmpty(t, s.Events(), "span %s should carry events", s.Name())
		}
	}
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", outcome(nil))
	assert.Equal(t, "no_spot", outcome(ErrNoSpotAvailable))
	assert.Equal(t, "unknown_ticket", outcome(ErrUnknownTicket))
	assert.Equal(t, "invalid_gate", outcome(ErrGateNotEntry))
	assert.Equal(t, "invalid_vehicle", outcome(ErrInvalidVehicleClass))
	assert.Equal(t, "failed", outcome(assert.AnError))
}
