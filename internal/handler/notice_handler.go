package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pudocs/dept-portal-api/internal/middleware"
	"github.com/pudocs/dept-portal-api/internal/models"
	"github.com/pudocs/dept-portal-api/internal/service"
	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
	"github.com/pudocs/dept-portal-api/pkg/response"
)

// NoticeHandler wires HTTP endpoints to the notice service.
type NoticeHandler struct {
	service *service.NoticeService
}

// NewNoticeHandler creates a new handler.
func NewNoticeHandler(svc *service.NoticeService) *NoticeHandler {
	return &NoticeHandler{service: svc}
}

func noticeFilterFromQuery(c *gin.Context) models.NoticeFilter {
	return models.NoticeFilter{
		Category: c.Query("category"),
		Audience: models.UserRole(c.Query("audience")),
		Status:   models.ApprovalStatus(c.Query("status")),
	}
}

// ListNotices godoc
// @Summary List notices
// @Description List notices; non-office callers only see approved ones
// @Tags Notices
// @Produce json
// @Param category query string false "Category"
// @Param audience query string false "Audience role"
// @Param status query string false "Approval status (office only)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /notices [get]
func (h *NoticeHandler) ListNotices(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	notices, err := h.service.ListNotices(c.Request.Context(), user.Role, noticeFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notices, nil)
}

// CreateNotice godoc
// @Summary Publish a notice
// @Description Staff submissions await office approval; office submissions publish immediately
// @Tags Notices
// @Accept json
// @Produce json
// @Param payload body service.CreateNoticeRequest true "Notice payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /notices [post]
func (h *NoticeHandler) CreateNotice(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid notice payload"))
		return
	}

	notice, err := h.service.CreateNotice(c.Request.Context(), user, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, notice)
}

// ReviewNotice godoc
// @Summary Approve or reject a pending notice
// @Tags Notices
// @Produce json
// @Param id path string true "Notice id"
// @Param decision query string true "approve or reject"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /notices/{id}/review [post]
func (h *NoticeHandler) ReviewNotice(c *gin.Context) {
	decision := c.Query("decision")
	if decision != "approve" && decision != "reject" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "decision must be approve or reject"))
		return
	}

	notice, err := h.service.ReviewNotice(c.Request.Context(), c.Param("id"), decision == "approve")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notice, nil)
}

// DeleteNotice godoc
// @Summary Delete a notice
// @Tags Notices
// @Produce json
// @Param id path string true "Notice id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /notices/{id} [delete]
func (h *NoticeHandler) DeleteNotice(c *gin.Context) {
	if err := h.service.DeleteNotice(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListEvents godoc
// @Summary List events
// @Description List events; non-office callers only see approved ones
// @Tags Events
// @Produce json
// @Param category query string false "Category"
// @Param audience query string false "Audience role"
// @Param status query string false "Approval status (office only)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /events [get]
func (h *NoticeHandler) ListEvents(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	events, err := h.service.ListEvents(c.Request.Context(), user.Role, noticeFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// CreateEvent godoc
// @Summary Schedule an event
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body service.CreateEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /events [post]
func (h *NoticeHandler) CreateEvent(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}

	event, err := h.service.CreateEvent(c.Request.Context(), user, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// ReviewEvent godoc
// @Summary Approve or reject a pending event
// @Tags Events
// @Produce json
// @Param id path string true "Event id"
// @Param decision query string true "approve or reject"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /events/{id}/review [post]
func (h *NoticeHandler) ReviewEvent(c *gin.Context) {
	decision := c.Query("decision")
	if decision != "approve" && decision != "reject" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "decision must be approve or reject"))
		return
	}

	event, err := h.service.ReviewEvent(c.Request.Context(), c.Param("id"), decision == "approve")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Tags Events
// @Produce json
// @Param id path string true "Event id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /events/{id} [delete]
func (h *NoticeHandler) DeleteEvent(c *gin.Context) {
	if err := h.service.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
