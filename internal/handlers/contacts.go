package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/simplehq/simple-server/internal/auth"
	"github.com/simplehq/simple-server/internal/contacts"
)

// ContactsHandler serves the contact list, free-text ingestion, relevance
// search, and per-contact label links.
type ContactsHandler struct {
	gateway *contacts.Gateway
}

// IngestRequest is the body for POST /contacts.
type IngestRequest struct {
	Text string `json:"text"`
}

// NewContactsHandler creates a contacts handler over the gateway.
func NewContactsHandler(gateway *contacts.Gateway) *ContactsHandler {
	return &ContactsHandler{gateway: gateway}
}

// Register mounts the contact routes on the Echo instance.
func (h *ContactsHandler) Register(e *echo.Echo) {
	group := e.Group("/contacts")
	group.GET("", h.List)
	group.POST("", h.Ingest)
	group.GET("/search", h.Search)
	group.POST("/:id/labels/:label_id", h.AssignLabel)
	group.DELETE("/:id/labels/:label_id", h.RemoveLabel)
}

// List godoc
// @Summary List contacts
// @Description Return the caller's contacts, newest first
// @Tags contacts
// @Success 200 {object} map[string]any
// @Failure 500 {object} ErrorResponse
// @Router /contacts [get].
func (h *ContactsHandler) List(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	items, err := h.gateway.RefreshContacts(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// Ingest godoc
// @Summary Create contact from text
// @Description Extract contact fields from free text and store the contact
// @Tags contacts
// @Param payload body IngestRequest true "Ingest request"
// @Success 200 {object} contacts.IngestResult
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /contacts [post].
func (h *ContactsHandler) Ingest(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	var req IngestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Text) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}
	result, err := h.gateway.Ingest(c.Request().Context(), userID, req.Text)
	if err != nil {
		if errors.Is(err, contacts.ErrNameNotResolvable) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

// Search godoc
// @Summary Search contacts
// @Description Pattern search with a local relevance fallback
// @Tags contacts
// @Param q query string true "Search query"
// @Success 200 {object} map[string]any
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /contacts/search [get].
func (h *ContactsHandler) Search(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	items, err := h.gateway.Search(c.Request().Context(), userID, query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// AssignLabel godoc
// @Summary Assign label
// @Description Link an existing label to a contact
// @Tags contacts
// @Param id path string true "Contact id"
// @Param label_id path string true "Label id"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /contacts/{id}/labels/{label_id} [post].
func (h *ContactsHandler) AssignLabel(c echo.Context) error {
	userID, contactID, labelID, err := h.labelLinkParams(c)
	if err != nil {
		return err
	}
	if err := h.gateway.AssignLabel(c.Request().Context(), userID, contactID, labelID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveLabel godoc
// @Summary Remove label
// @Description Unlink a label from a contact
// @Tags contacts
// @Param id path string true "Contact id"
// @Param label_id path string true "Label id"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /contacts/{id}/labels/{label_id} [delete].
func (h *ContactsHandler) RemoveLabel(c echo.Context) error {
	userID, contactID, labelID, err := h.labelLinkParams(c)
	if err != nil {
		return err
	}
	if err := h.gateway.RemoveLabel(c.Request().Context(), userID, contactID, labelID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ContactsHandler) labelLinkParams(c echo.Context) (string, string, string, error) {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return "", "", "", err
	}
	contactID := strings.TrimSpace(c.Param("id"))
	if contactID == "" {
		return "", "", "", echo.NewHTTPError(http.StatusBadRequest, "contact id is required")
	}
	labelID := strings.TrimSpace(c.Param("label_id"))
	if labelID == "" {
		return "", "", "", echo.NewHTTPError(http.StatusBadRequest, "label id is required")
	}
	return userID, contactID, labelID, nil
}
