package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/username/attendance-tracker/internal/calendar"
	"github.com/username/attendance-tracker/internal/ledger"
	"github.com/username/attendance-tracker/internal/options"
)

// Config holds HTTP server settings
type Config struct {
	ReadTimeout time.Duration
}

// Server exposes the attendance engine over a JSON API.
// Handlers that touch the ledger or options run one at a time.
type Server struct {
	app      *fiber.App
	mu       sync.Mutex
	ledger   *ledger.Ledger
	calendar calendar.Calendar
	options  *options.Manager
	validate *validator.Validate
	logger   *zap.Logger
}

// New creates a Server with all routes registered
func New(l *ledger.Ledger, cal calendar.Calendar, opts *options.Manager, cfg Config, logger *zap.Logger) *Server {
	s := &Server{
		ledger:   l,
		calendar: cal,
		options:  opts,
		validate: validator.New(),
		logger:   logger,
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           cfg.ReadTimeout,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(s.requestLogger)
	s.routes()

	return s
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called
func (s *Server) Listen(addr string) error {
	s.logger.Info("HTTP API listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) routes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	api := s.app.Group("/api")

	months := api.Group("/months/:year/:month")
	months.Get("/", s.locked(s.getMonth))
	months.Delete("/", s.locked(s.clearMonth))
	months.Post("/days/:day", s.locked(s.markDay))
	months.Delete("/days/:day", s.locked(s.unmarkDay))
	months.Post("/days/:day/toggle", s.locked(s.toggleDay))

	api.Put("/goal", s.locked(s.putGoal))
	api.Get("/holidays/:year", s.getHolidays)

	api.Get("/export.csv", s.locked(s.exportCSV))
	api.Post("/import", s.locked(s.importCSV))

	api.Get("/stats/weekdays", s.locked(s.weekdayStats))
	api.Get("/stats/months", s.locked(s.monthlyStats))

	api.Get("/options", s.locked(s.getOptions))
	api.Put("/options", s.locked(s.putOptions))
}

func (s *Server) locked(handler fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return handler(c)
	}
}

// requestLogger tags each request with an ID and logs it when done
func (s *Server) requestLogger(c *fiber.Ctx) error {
	id := c.Get(fiber.HeaderXRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(fiber.HeaderXRequestID, id)
	c.Locals("request_id", id)

	start := time.Now()
	err := c.Next()
	if err != nil {
		// Let the error handler set the status before logging it
		if herr := s.app.ErrorHandler(c, err); herr != nil {
			s.logger.Error("Failed to write error response", zap.Error(herr))
		}
	}

	s.logger.Info("HTTP request",
		zap.String("request_id", id),
		zap.String("method", c.Method()),
		zap.String("path", c.OriginalURL()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("duration", time.Since(start)))

	return nil
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	if code == fiber.StatusInternalServerError {
		s.logger.Error("Request failed", zap.String("path", c.Path()), zap.Error(err))
	}

	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
