package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/presensi-qr-api/internal/models"
	"github.com/noah-isme/presensi-qr-api/internal/service"
	appErrors "github.com/noah-isme/presensi-qr-api/pkg/errors"
	"github.com/noah-isme/presensi-qr-api/pkg/response"
)

// PermissionHandler exposes the excused-absence queue.
type PermissionHandler struct {
	permissions *service.PermissionService
}

// NewPermissionHandler constructs PermissionHandler.
func NewPermissionHandler(permissions *service.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissions: permissions}
}

type verifyPermissionPayload struct {
	Status models.PermissionStatus `json:"status" binding:"required"`
}

// List godoc
// @Summary List permission requests
// @Tags Permissions
// @Produce json
// @Param status query string false "Filter by status (Menunggu, Disetujui, Ditolak)"
// @Success 200 {object} response.Envelope
// @Router /permissions [get]
func (h *PermissionHandler) List(c *gin.Context) {
	requests, err := h.permissions.List(c.Request.Context(), models.PermissionStatus(c.Query("status")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests)
}

// Create godoc
// @Summary Submit a permission request
// @Tags Permissions
// @Accept json
// @Produce json
// @Param payload body service.CreatePermissionRequest true "Permission payload"
// @Success 201 {object} response.Envelope
// @Router /permissions [post]
func (h *PermissionHandler) Create(c *gin.Context) {
	var req service.CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	permission, err := h.permissions.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, permission)
}

// Verify godoc
// @Summary Approve or reject a pending request
// @Tags Permissions
// @Accept json
// @Produce json
// @Param id path string true "Permission ID"
// @Param payload body verifyPermissionPayload true "Target status"
// @Success 200 {object} response.Envelope
// @Router /permissions/{id}/verify [post]
func (h *PermissionHandler) Verify(c *gin.Context) {
	var payload verifyPermissionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.permissions.Verify(c.Request.Context(), c.Param("id"), payload.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
