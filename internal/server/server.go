package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"parking-facility/internal/config"
	"parking-facility/internal/logging"
	"parking-facility/internal/parking"
)

type Server struct {
	httpServer *http.Server
	logger     *logging.Logger
}

func NewServer(cfg config.ServerConfig, serviceName string, lot *parking.InstrumentedParkingLot, logger *logging.Logger) *Server {
	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      NewRouter(serviceName, lot, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Server{
		httpServer: httpServer,
		logger:     logger,
	}
}

// NewRouter wires the middleware chain and routes over lot.
func NewRouter(serviceName string, lot *parking.InstrumentedParkingLot, logger *logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	handler := NewHandler(lot, serviceName)

	r := chi.NewRouter()

	r.Use(TracingMiddleware(serviceName, lot.Telemetry().TracerProvider()))
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(RecoveryMiddleware(logger))
	r.Use(CORSMiddleware)

	r.Get("/health", handler.HealthCheck)
	r.Get("/metrics", promhttp.HandlerFor(newRegistry(lot), promhttp.HandlerOpts{}).ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/gates", handler.ListGates)
		r.Get("/spots", handler.ListSpots)
		r.Get("/spots/{spotID}", handler.GetSpot)
		r.Get("/stats", handler.GetStats)
		r.Post("/park", handler.Park)
		r.Post("/unpark", handler.Unpark)
		r.Get("/tickets/{ticketID}", handler.GetTicket)
	})

	return r
}

// newRegistry exposes process collectors and live spot gauges read from lot.
func newRegistry(lot *parking.InstrumentedParkingLot) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "parking_spots_capacity",
			Help: "Number of spots in the facility.",
		}, func() float64 { return float64(lot.Capacity()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "parking_spots_occupied",
			Help: "Number of spots currently occupied.",
		}, func() float64 { return float64(lot.Stats().Occupied) }),
	)

	for _, class := range parking.VehicleClasses() {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "parking_spots_available",
			Help:        "Free spots compatible with a vehicle class.",
			ConstLabels: prometheus.Labels{"vehicle_class": string(class)},
		}, func() float64 { return float64(lot.Stats().ByVehicle[class].Available) }))
	}

	return reg
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return fmt.Sprintf("http://%s", s.httpServer.Addr)
}
