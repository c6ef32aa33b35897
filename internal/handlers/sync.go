package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/simplehq/simple-server/internal/auth"
	"github.com/simplehq/simple-server/internal/directory"
)

// SyncHandler triggers an address book import for the caller.
type SyncHandler struct {
	reconciler *directory.Reconciler
}

// NewSyncHandler creates a sync handler.
func NewSyncHandler(reconciler *directory.Reconciler) *SyncHandler {
	return &SyncHandler{reconciler: reconciler}
}

// Register mounts POST /sync on the Echo instance.
func (h *SyncHandler) Register(e *echo.Echo) {
	e.POST("/sync", h.Sync)
}

// Sync godoc
// @Summary Sync address book
// @Description Import the caller's address book entries into the contact store
// @Tags sync
// @Success 200 {object} directory.SyncResult
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sync [post].
func (h *SyncHandler) Sync(c echo.Context) error {
	if h.reconciler == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "sync not configured")
	}
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	result, err := h.reconciler.Sync(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, directory.ErrAccessDenied) {
			return echo.NewHTTPError(http.StatusForbidden, "address book access denied")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}
