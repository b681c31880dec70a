package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/presensi-qr-api/internal/service"
	appErrors "github.com/noah-isme/presensi-qr-api/pkg/errors"
	"github.com/noah-isme/presensi-qr-api/pkg/response"
)

// SchoolHandler exposes the singleton school profile.
type SchoolHandler struct {
	school *service.SchoolService
}

// NewSchoolHandler constructs SchoolHandler.
func NewSchoolHandler(school *service.SchoolService) *SchoolHandler {
	return &SchoolHandler{school: school}
}

// Get godoc
// @Summary Get school profile
// @Tags School
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /school [get]
func (h *SchoolHandler) Get(c *gin.Context) {
	school, err := h.school.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, school)
}

// Update godoc
// @Summary Replace school profile
// @Tags School
// @Accept json
// @Produce json
// @Param payload body service.UpdateSchoolRequest true "School payload"
// @Success 200 {object} response.Envelope
// @Router /school [put]
func (h *SchoolHandler) Update(c *gin.Context) {
	var req service.UpdateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	school, err := h.school.Update(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, school)
}
