package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/presensi-qr-api/internal/dto"
	"github.com/noah-isme/presensi-qr-api/internal/service"
	appErrors "github.com/noah-isme/presensi-qr-api/pkg/errors"
	"github.com/noah-isme/presensi-qr-api/pkg/response"
)

// CheckinHandler exposes the scan gate.
type CheckinHandler struct {
	checkin *service.CheckinService
}

// NewCheckinHandler constructs CheckinHandler.
func NewCheckinHandler(checkin *service.CheckinService) *CheckinHandler {
	return &CheckinHandler{checkin: checkin}
}

// Scan godoc
// @Summary Process one scanned QR code
// @Tags Checkin
// @Accept json
// @Produce json
// @Param payload body dto.ScanRequest true "Scanned code"
// @Success 200 {object} response.Envelope
// @Router /checkin/scan [post]
func (h *CheckinHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.checkin.Scan(c.Request.Context(), req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Status godoc
// @Summary Report whether the scan gate is cooling down
// @Tags Checkin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /checkin/status [get]
func (h *CheckinHandler) Status(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"coolingDown": h.checkin.CoolingDown()})
}

// Reset godoc
// @Summary Reopen the scan gate after a decision
// @Tags Checkin
// @Produce json
// @Success 204
// @Router /checkin/reset [post]
func (h *CheckinHandler) Reset(c *gin.Context) {
	h.checkin.Reset()
	response.NoContent(c)
}
