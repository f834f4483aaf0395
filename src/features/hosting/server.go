package hosting

import (
	"fmt"
	"log/slog"

	"github.com/contre95/dispatch/src/features/config"
	"github.com/contre95/dispatch/src/features/dispatching"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsProvider reports the running totals of a dispatcher.
type StatsProvider interface {
	RunID() string
	Stats() dispatching.Summary
}

// Server exposes health, metrics and run statistics over HTTP.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server.
func NewServer(cfg config.Server, stats StatsProvider, registry *prometheus.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			logger.Error("Internal Server Error", "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
		AppName:               "Dispatch",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.PrintRoutes,
	})

	app.Use(LogAllRequestsMiddleware(logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	app.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(statsResponse(stats.RunID(), stats.Stats()))
	})

	return &Server{app: app, port: cfg.Port}
}

// App exposes the underlying fiber app, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the HTTP server. It blocks until Shutdown is called.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

type problem struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Reason      string `json:"reason"`
	Error       string `json:"error"`
}

type statsBody struct {
	RunID       string         `json:"run_id"`
	Seen        int            `json:"seen"`
	Transferred int            `json:"transferred"`
	Planned     int            `json:"planned"`
	Skipped     int            `json:"skipped"`
	Failed      int            `json:"failed"`
	Warnings    int            `json:"warnings"`
	Bytes       int64          `json:"bytes"`
	SkipReasons map[string]int `json:"skip_reasons"`
	Problems    []problem      `json:"problems"`
}

func statsResponse(runID string, s dispatching.Summary) statsBody {
	body := statsBody{
		RunID:       runID,
		Seen:        s.Seen,
		Transferred: s.Transferred,
		Planned:     s.Planned,
		Skipped:     s.Skipped,
		Failed:      s.Failed,
		Warnings:    s.Warnings,
		Bytes:       s.Bytes,
		SkipReasons: s.SkipReasons,
		Problems:    make([]problem, 0, len(s.Problems)),
	}
	for _, r := range s.Problems {
		p := problem{Source: r.Source, Destination: r.Destination, Reason: r.Reason}
		if r.Err != nil {
			p.Error = r.Err.Error()
		}
		body.Problems = append(body.Problems, p)
	}
	return body
}
