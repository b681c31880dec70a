package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/presensi-qr-api/internal/service"
	appErrors "github.com/noah-isme/presensi-qr-api/pkg/errors"
	"github.com/noah-isme/presensi-qr-api/pkg/response"
)

// CalendarHandler exposes academic calendar endpoints.
type CalendarHandler struct {
	calendar *service.CalendarService
}

// NewCalendarHandler constructs CalendarHandler.
func NewCalendarHandler(calendar *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendar: calendar}
}

// List godoc
// @Summary List calendar events
// @Tags Calendar
// @Produce json
// @Param month query string false "Filter by month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Router /calendar [get]
func (h *CalendarHandler) List(c *gin.Context) {
	events, err := h.calendar.List(c.Request.Context(), c.Query("month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events)
}

// Create godoc
// @Summary Create calendar event
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body service.CalendarEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Router /calendar [post]
func (h *CalendarHandler) Create(c *gin.Context) {
	var req service.CalendarEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	event, err := h.calendar.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Update calendar event
// @Tags Calendar
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body service.CalendarEventRequest true "Event payload"
// @Success 200 {object} response.Envelope
// @Router /calendar/{id} [put]
func (h *CalendarHandler) Update(c *gin.Context) {
	var req service.CalendarEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	event, err := h.calendar.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event)
}

// Delete godoc
// @Summary Delete calendar event
// @Tags Calendar
// @Produce json
// @Param id path string true "Event ID"
// @Success 204
// @Router /calendar/{id} [delete]
func (h *CalendarHandler) Delete(c *gin.Context) {
	if err := h.calendar.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
