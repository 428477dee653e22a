// Package server exposes the chat runner over HTTP using Fiber.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hupe1980/jobtrack/core"
	"github.com/hupe1980/jobtrack/internal/util"
	"github.com/hupe1980/jobtrack/logging"
	"github.com/hupe1980/jobtrack/runner"
)

// Sender runs one chat turn. *runner.Runner implements it.
type Sender interface {
	Run(ctx context.Context, msg core.Message) (runner.Reply, error)
}

// Checker represents a dependency health check.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

type checkFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func (c checkFunc) Name() string                    { return c.name }
func (c checkFunc) Check(ctx context.Context) error { return c.fn(ctx) }

// NewCheck adapts fn (for example pgxpool.Pool.Ping) to a Checker.
func NewCheck(name string, fn func(ctx context.Context) error) Checker {
	return checkFunc{name: name, fn: fn}
}

// Options configures a Server.
type Options struct {
	// Checkers are probed by GET /health.
	Checkers []Checker
	// CheckTimeout bounds every health check.
	CheckTimeout time.Duration
	// NewConversationID assigns ids to requests without one.
	NewConversationID func() string
	// Now stamps inbound messages.
	Now func() time.Time
	// Logger provides structured logging. Defaults to NoOp.
	Logger logging.Logger
}

// Server serves GET /health and POST /agent/message.
type Server struct {
	app    *fiber.App
	sender Sender
	opts   Options
}

// New creates a server sending turns to sender.
func New(sender Sender, optFns ...func(o *Options)) *Server {
	opts := Options{
		CheckTimeout:      time.Second,
		NewConversationID: util.NewID,
		Now:               time.Now,
		Logger:            logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	s := &Server{
		app:    fiber.New(fiber.Config{AppName: "jobtrack", DisableStartupMessage: true}),
		sender: sender,
		opts:   opts,
	}
	s.app.Get("/health", s.health)
	s.app.Post("/agent/message", s.message)
	return s
}

// App returns the underlying Fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error { return s.app.Listen(addr) }

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error { return s.app.ShutdownWithContext(ctx) }

type errorResponse struct {
	Message string `json:"message"`
}

type messageRequest struct {
	Message        string `json:"message"`
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type messageResponse struct {
	Response              string  `json:"response"`
	Action                string  `json:"action_taken"`
	Intent                string  `json:"intent"`
	Confidence            float64 `json:"confidence"`
	RequiresClarification bool    `json:"requires_clarification"`
	ConversationID        string  `json:"conversation_id"`
}

func (s *Server) health(c *fiber.Ctx) error {
	checks := fiber.Map{}
	healthy := true
	for _, ch := range s.opts.Checkers {
		ctx, cancel := context.WithTimeout(c.UserContext(), s.opts.CheckTimeout)
		err := ch.Check(ctx)
		cancel()
		if err != nil {
			healthy = false
			checks[ch.Name()] = err.Error()
			s.opts.Logger.Warn("health check failed", "check", ch.Name(), "error", err)
			continue
		}
		checks[ch.Name()] = "ok"
	}
	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy", "checks": checks})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy", "service": "jobtrack", "checks": checks})
}

func (s *Server) message(c *fiber.Ctx) error {
	var req messageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(errorResponse{Message: "invalid JSON"})
	}
	if strings.TrimSpace(req.UserID) == "" {
		return c.Status(http.StatusBadRequest).JSON(errorResponse{Message: "user_id is required"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.Status(http.StatusBadRequest).JSON(errorResponse{Message: "message is required"})
	}
	if strings.TrimSpace(req.ConversationID) == "" {
		req.ConversationID = s.opts.NewConversationID()
	}

	reply, err := s.sender.Run(c.UserContext(), core.Message{
		Text:           req.Message,
		OwnerID:        req.UserID,
		ConversationID: req.ConversationID,
		Timestamp:      s.opts.Now(),
	})
	if err != nil {
		if errors.Is(err, core.ErrInvalidMessage) {
			return c.Status(http.StatusBadRequest).JSON(errorResponse{Message: err.Error()})
		}
		s.opts.Logger.Error("message failed", "owner_id", req.UserID, "conversation_id", req.ConversationID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(errorResponse{Message: "Internal server error"})
	}

	out := reply.Outcome
	return c.Status(http.StatusOK).JSON(messageResponse{
		Response:              reply.Text,
		Action:                string(out.Action),
		Intent:                strings.ToLower(string(out.Intent)),
		Confidence:            out.Confidence,
		RequiresClarification: out.RequiresClarification(),
		ConversationID:        req.ConversationID,
	})
}
