package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pudocs/dept-portal-api/internal/middleware"
	"github.com/pudocs/dept-portal-api/internal/service"
	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
	"github.com/pudocs/dept-portal-api/pkg/response"
)

// SyncHandler wires HTTP endpoints to the sync service.
type SyncHandler struct {
	service *service.SyncService
}

// NewSyncHandler creates a new handler.
func NewSyncHandler(svc *service.SyncService) *SyncHandler {
	return &SyncHandler{service: svc}
}

// Trigger godoc
// @Summary Trigger a cache warm-up
// @Description Starts a warm-up for the caller and waits for it to finish. A concurrent trigger joins the in-flight run.
// @Tags Sync
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /sync [post]
func (h *SyncHandler) Trigger(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.service.TriggerAndWait(c.Request.Context(), user)
	if err != nil {
		// Partial runs still report what was warmed.
		response.JSON(c, http.StatusOK, result, nil)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Status godoc
// @Summary Last-known sync state
// @Tags Sync
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /sync/status [get]
func (h *SyncHandler) Status(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	status, err := h.service.Status(c.Request.Context(), user.UID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Cancel godoc
// @Summary Cancel an in-flight warm-up
// @Tags Sync
// @Produce json
// @Success 204 {object} response.Envelope
// @Security BearerAuth
// @Router /sync [delete]
func (h *SyncHandler) Cancel(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	h.service.Cancel(user.UID)
	response.NoContent(c)
}
