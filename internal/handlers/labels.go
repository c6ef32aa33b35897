package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/simplehq/simple-server/internal/auth"
	"github.com/simplehq/simple-server/internal/contacts"
	"github.com/simplehq/simple-server/internal/labels"
)

// LabelsHandler serves the caller's label list and label creation.
type LabelsHandler struct {
	gateway *contacts.Gateway
}

// CreateLabelRequest is the body for POST /labels.
type CreateLabelRequest struct {
	Name string `json:"name"`
}

// NewLabelsHandler creates a labels handler over the gateway.
func NewLabelsHandler(gateway *contacts.Gateway) *LabelsHandler {
	return &LabelsHandler{gateway: gateway}
}

// Register mounts the label routes on the Echo instance.
func (h *LabelsHandler) Register(e *echo.Echo) {
	group := e.Group("/labels")
	group.GET("", h.List)
	group.POST("", h.Create)
}

// List godoc
// @Summary List labels
// @Description Return the caller's labels in name order
// @Tags labels
// @Success 200 {object} map[string]any
// @Failure 500 {object} ErrorResponse
// @Router /labels [get].
func (h *LabelsHandler) List(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	items, err := h.gateway.RefreshLabels(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// Create godoc
// @Summary Create label
// @Description Create a label owned by the caller
// @Tags labels
// @Param payload body CreateLabelRequest true "Create request"
// @Success 200 {object} labels.Label
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /labels [post].
func (h *LabelsHandler) Create(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	var req CreateLabelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	label, err := h.gateway.CreateLabel(c.Request().Context(), userID, req.Name)
	if err != nil {
		if errors.Is(err, labels.ErrLabelExists) {
			return echo.NewHTTPError(http.StatusConflict, "label already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, label)
}
