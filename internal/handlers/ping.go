package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/simplehq/simple-server/internal/version"
)

// PingHandler serves the unauthenticated liveness probe.
type PingHandler struct{}

// NewPingHandler creates a ping handler.
func NewPingHandler() *PingHandler {
	return &PingHandler{}
}

// Register mounts GET /ping on the Echo instance.
func (h *PingHandler) Register(e *echo.Echo) {
	e.GET("/ping", h.Ping)
}

// Ping returns 200 with the running server version.
func (h *PingHandler) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.GetInfo(),
	})
}
