package parking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Shell is the line-oriented gate operator console.
type Shell struct {
	lot     *InstrumentedParkingLot
	scanner *bufio.Scanner
	out     io.Writer
}

func NewShell(lot *InstrumentedParkingLot, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		lot:     lot,
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

func (s *Shell) Run(ctx context.Context) {
	tracer := s.lot.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for {
		if ctx.Err() != nil || !s.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))

		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}

	span.AddEvent("shell_ended")
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) processCommand(ctx context.Context, input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	command := parts[0]
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("command.name", command))

	switch command {
	case "park":
		s.handlePark(ctx, parts)
	case "unpark", "leave":
		s.handleUnpark(ctx, parts)
	case "status":
		s.handleStatus(ctx)
	case "gates":
		s.handleGates()
	case "ticket":
		s.handleTicket(ctx, parts)
	case "stats":
		s.handleStats()
	default:
		trace.SpanFromContext(ctx).AddEvent("unknown_command", trace.WithAttributes(
			attribute.String("unknown_command", command),
		))
		s.printf("Unknown command: %s\n", command)
	}
}

func (s *Shell) handlePark(ctx context.Context, parts []string) {
	if len(parts) != 4 {
		s.printf("Usage: park <vehicle_class> <license_plate> <gate_id>\n")
		return
	}

	class, err := ParseVehicleClass(parts[1])
	if err != nil {
		s.printf("Invalid vehicle class: %s\n", parts[1])
		return
	}
	vehicle, err := NewVehicle(parts[2], class)
	if err != nil {
		s.printf("Error: %s\n", err.Error())
		return
	}

	ticket, err := s.lot.Park(ctx, vehicle, parts[3])
	switch {
	case errors.Is(err, ErrNoSpotAvailable):
		s.printf("Sorry, no %s spot available\n", class)
	case errors.Is(err, ErrInvalidGate):
		s.printf("Unknown gate: %s\n", parts[3])
	case errors.Is(err, ErrGateNotEntry):
		s.printf("Gate %s is not an entry gate\n", parts[3])
	case err != nil:
		s.printf("Error: %s\n", err.Error())
	default:
		s.printf("Allocated spot %s, ticket %s\n", ticket.SpotID, ticket.ID)
	}
}

func (s *Shell) handleUnpark(ctx context.Context, parts []string) {
	if len(parts) < 2 || len(parts) > 3 {
		s.printf("Usage: unpark <ticket_id> [extra]\n")
		return
	}

	extra := false
	if len(parts) == 3 {
		switch strings.ToLower(parts[2]) {
		case "extra", "charging", "true", "yes":
			extra = true
		case "false", "no":
		default:
			s.printf("Usage: unpark <ticket_id> [extra]\n")
			return
		}
	}

	price, err := s.lot.Unpark(ctx, parts[1], extra)
	if errors.Is(err, ErrUnknownTicket) {
		s.printf("Unknown ticket: %s\n", parts[1])
		return
	}
	if err != nil {
		s.printf("Error: %s\n", err.Error())
		return
	}

	s.printf("Ticket %s closed, amount due: %s\n", parts[1], price.StringFixed(2))
}

func (s *Shell) handleStatus(ctx context.Context) {
	spots := s.lot.GetStatus(ctx)

	occupied := 0
	for _, spot := range spots {
		if spot.Occupied {
			occupied++
		}
	}
	if occupied == 0 {
		s.printf("Parking lot is empty\n")
		return
	}

	s.printf("Spot\tFloor\tClass\tTicket\n")
	for _, spot := range spots {
		if spot.Occupied {
			s.printf("%s\t%d\t%s\t%s\n", spot.ID, spot.Floor, spot.Class, spot.CurrentTicketID)
		}
	}
}

func (s *Shell) handleGates() {
	s.printf("Gate\tFloor\tDirection\n")
	for _, g := range s.lot.Gates() {
		s.printf("%s\t%d\t%s\n", g.ID, g.Floor, g.Direction)
	}
}

func (s *Shell) handleTicket(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.printf("Usage: ticket <ticket_id>\n")
		return
	}

	t, err := s.lot.GetTicket(ctx, parts[1])
	if err != nil {
		s.printf("Unknown ticket: %s\n", parts[1])
		return
	}

	if t.Closed() {
		s.printf("%s spot=%s vehicle=%s closed price=%s\n", t.ID, t.SpotID, t.VehicleClass, t.FinalPrice.StringFixed(2))
		return
	}
	s.printf("%s spot=%s vehicle=%s open since %s\n", t.ID, t.SpotID, t.VehicleClass, t.EntryTime.Format("15:04:05"))
}

func (s *Shell) handleStats() {
	st := s.lot.Stats()
	s.printf("Capacity: %d, occupied: %d, available: %d\n", st.Capacity, st.Occupied, st.Available)
	for _, c := range vehicleClasses {
		ca := st.ByVehicle[c]
		s.printf("%s\t%d/%d free\n", c, ca.Available, ca.Compatible)
	}
}
