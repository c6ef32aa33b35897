package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/simplehq/simple-server/internal/auth"
	"github.com/simplehq/simple-server/internal/users"
)

// UsersHandler serves the caller's profile and preferences.
type UsersHandler struct {
	service *users.Service
}

// NewUsersHandler creates a users handler.
func NewUsersHandler(service *users.Service) *UsersHandler {
	return &UsersHandler{service: service}
}

// Register mounts the user routes on the Echo instance.
func (h *UsersHandler) Register(e *echo.Echo) {
	e.GET("/users/me", h.Me)
	e.GET("/users/me/preferences", h.GetPreferences)
	e.PATCH("/users/me/preferences", h.UpdatePreferences)
}

// Me godoc
// @Summary Current user
// @Description Return the authenticated user's profile
// @Tags users
// @Success 200 {object} users.User
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/me [get].
func (h *UsersHandler) Me(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	user, err := h.service.Get(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

// GetPreferences godoc
// @Summary Get preferences
// @Description Return the caller's preferences, creating defaults when absent
// @Tags users
// @Success 200 {object} users.Preferences
// @Failure 500 {object} ErrorResponse
// @Router /users/me/preferences [get].
func (h *UsersHandler) GetPreferences(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	prefs, err := h.service.GetPreferences(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, prefs)
}

// UpdatePreferences godoc
// @Summary Update preferences
// @Description Apply a partial preference update; omitted fields are unchanged
// @Tags users
// @Param payload body users.UpdatePreferencesRequest true "Preference update"
// @Success 200 {object} users.Preferences
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/me/preferences [patch].
func (h *UsersHandler) UpdatePreferences(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	var req users.UpdatePreferencesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	prefs, err := h.service.UpdatePreferences(c.Request().Context(), userID, req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, prefs)
}
