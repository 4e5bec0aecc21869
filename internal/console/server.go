// Package console exposes the daemon's operator surface: a small HTTP API
// for health and status, an optional JWT login, and a websocket stream of
// supervisor events.
package console

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/srreparos7z-rgb/lewisia/domain/entities"
	"github.com/srreparos7z-rgb/lewisia/domain/repositories"
	"github.com/srreparos7z-rgb/lewisia/internal/auth"
)

// StatusProvider reports the supervisor's current position in the cycle.
type StatusProvider interface {
	State() entities.ServiceState
	Recoveries() int
}

// LoginRequest is the payload for operator login.
type LoginRequest struct {
	Operator string `json:"operator"`
	Secret   string `json:"secret"`
}

// LoginResponse carries a signed operator token.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// StatusResponse is the /status payload.
type StatusResponse struct {
	State      string           `json:"state"`
	Recoveries int              `json:"recoveries"`
	Skills     []string         `json:"skills"`
	Turns      []*entities.Turn `json:"turns"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server is the operator console. When auth is nil the console runs open,
// which is the expected mode on a loopback-only bind.
type Server struct {
	echo    *echo.Echo
	hub     *Hub
	auth    *auth.Auth
	status  StatusProvider
	history repositories.TurnRepository
	skills  []string
	logger  *zap.Logger
}

// NewServer wires the console routes. History may be nil.
func NewServer(
	hub *Hub,
	authenticator *auth.Auth,
	status StatusProvider,
	history repositories.TurnRepository,
	skills []string,
	logger *zap.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:    e,
		hub:     hub,
		auth:    authenticator,
		status:  status,
		history: history,
		skills:  skills,
		logger:  logger,
	}

	e.GET("/health", s.health)
	e.GET("/status", s.getStatus, s.guard)
	e.GET("/ws", s.websocket, s.guard)
	if s.auth != nil {
		e.POST("/auth", s.login)
	}

	return s
}

// Start serves the console on addr, blocking until Shutdown.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops the HTTP server and disconnects streaming clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "lewisia",
	})
}

func (s *Server) getStatus(c echo.Context) error {
	response := StatusResponse{
		State:      s.status.State().String(),
		Recoveries: s.status.Recoveries(),
		Skills:     s.skills,
		Turns:      []*entities.Turn{},
	}

	if s.history != nil {
		turns, err := s.history.Recent(c.Request().Context(), 10)
		if err != nil {
			s.logger.Error("failed to load recent turns", zap.Error(err))
		} else if turns != nil {
			response.Turns = turns
		}
	}

	return c.JSON(http.StatusOK, response)
}

func (s *Server) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	if req.Operator == "" {
		req.Operator = "operator"
	}

	token, expiresAt, err := s.auth.Login(req.Operator, req.Secret)
	if err != nil {
		s.logger.Warn("console login rejected", zap.String("operator", req.Operator))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "authentication_failed",
			Message: "Invalid console secret",
		})
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}

func (s *Server) websocket(c echo.Context) error {
	return serveWS(s.hub, c, s.logger)
}

// guard enforces a Bearer token when authentication is configured.
func (s *Server) guard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.auth == nil {
			return next(c)
		}

		header := c.Request().Header.Get("Authorization")
		token := ""
		if strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
		if token == "" {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "missing_token",
				Message: "Bearer token required",
			})
		}

		if _, err := s.auth.Validate(token); err != nil {
			s.logger.Warn("console request rejected", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_token",
				Message: "Invalid or expired token",
			})
		}
		return next(c)
	}
}
