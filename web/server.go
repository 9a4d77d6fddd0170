// Package web serves the chat as a server-rendered page plus a small JSON API.
package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/sqlchat/pkg/chat"
	"github.com/papercomputeco/sqlchat/pkg/logger"
	"github.com/papercomputeco/sqlchat/pkg/transcript"
)

// Server hosts one chat session over HTTP. The session's disabled input gates
// submissions, so concurrent requests get 409 while a turn is in flight.
type Server struct {
	config  Config
	session *chat.Session
	logger  *zap.Logger
	server  *fiber.App
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TurnRequest is the JSON body of POST /api/turns.
type TurnRequest struct {
	Question string `json:"question"`
}

// TurnResponse lists the bubbles a turn appended.
type TurnResponse struct {
	Bubbles []*transcript.Bubble `json:"bubbles"`
	// Error is the failure message when the turn ended in an error bubble.
	Error string `json:"error,omitempty"`
}

// BubblesResponse lists bubbles from the log.
type BubblesResponse struct {
	Count   int                  `json:"count"`
	Bubbles []*transcript.Bubble `json:"bubbles"`
}

// New creates a new Server.
func New(config Config, session *chat.Session, logger *zap.Logger) (*Server, error) {
	if session == nil {
		return nil, errors.New("web server needs a chat session")
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	s := &Server{
		config:  config,
		session: session,
		logger:  logger,
		server:  app,
	}

	app.Get("/", s.handlePage)
	app.Post("/", s.handleForm)

	app.Post("/api/turns", s.handleTurn)
	app.Get("/api/bubbles", s.handleListBubbles)
	app.Get("/api/bubbles/:id", s.handleGetBubble)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	return s, nil
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting web server",
		zap.String("listen", s.config.ListenAddr),
		zap.String("endpoint", s.config.Endpoint),
	)

	return s.server.Listen(s.config.ListenAddr)
}

// RunWithListener serves on an existing listener.
func (s *Server) RunWithListener(ln net.Listener) error {
	s.logger.Info("starting web server", zap.String("listen", ln.Addr().String()))

	return s.server.Listener(ln)
}

// Shutdown stops the server.
func (s *Server) Shutdown() error {
	return s.server.Shutdown()
}

// Handler exposes the server as a net/http handler.
func (s *Server) Handler() http.Handler {
	return adaptor.FiberApp(s.server)
}

// handlePage renders the conversation page.
func (s *Server) handlePage(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := renderPage(&buf, s.session.State(), s.config.Endpoint); err != nil {
		s.logger.Error("failed to render page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// handleForm runs a turn for a form submission and redirects back to the
// bottom of the page.
func (s *Server) handleForm(c *fiber.Ctx) error {
	question := c.FormValue("question")

	if _, err := s.submit(c, question); err != nil {
		if errors.Is(err, chat.ErrBusy) {
			return c.Status(fiber.StatusConflict).SendString(err.Error())
		}
		return err
	}

	return c.Redirect("/#end", fiber.StatusSeeOther)
}

// handleTurn runs a turn for a JSON request and returns the new bubbles.
func (s *Server) handleTurn(c *fiber.Ctx) error {
	var req TurnRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Debug("failed to parse turn request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	t, err := s.submit(c, req.Question)
	if err != nil {
		if errors.Is(err, chat.ErrBusy) {
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: err.Error()})
		}
		return err
	}
	if t == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}

	resp := TurnResponse{Bubbles: t.Bubbles}
	if t.Err != nil {
		resp.Error = t.Err.Error()
	}
	return c.JSON(resp)
}

// handleListBubbles returns the log, or the part after ?after=<id>.
func (s *Server) handleListBubbles(c *fiber.Ctx) error {
	bubbles, err := s.session.Log().After(c.Query("after"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "bubble not found"})
	}

	return c.JSON(BubblesResponse{Count: len(bubbles), Bubbles: bubbles})
}

// handleGetBubble returns a single bubble by ID.
func (s *Server) handleGetBubble(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id parameter required"})
	}

	b, err := s.session.Log().Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "bubble not found"})
	}

	return c.JSON(b)
}

func (s *Server) submit(c *fiber.Ctx, question string) (*chat.Turn, error) {
	startTime := time.Now()

	t, err := s.session.Submit(c.UserContext(), question)
	if err != nil {
		s.logger.Debug("turn rejected", zap.Error(err))
		return nil, err
	}
	if t == nil {
		s.logger.Debug("ignored blank question")
		return nil, nil
	}

	fields := []zap.Field{
		zap.String("question", logger.Truncate(t.Question, 100)),
		zap.Duration("duration", time.Since(startTime)),
	}
	if t.Err != nil {
		s.logger.Info("turn failed", append(fields, zap.Error(t.Err))...)
	} else {
		s.logger.Info("turn answered", fields...)
	}

	return t, nil
}
