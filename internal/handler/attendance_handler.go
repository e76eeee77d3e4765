package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pudocs/dept-portal-api/internal/middleware"
	"github.com/pudocs/dept-portal-api/internal/service"
	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
	"github.com/pudocs/dept-portal-api/pkg/response"
)

// AttendanceHandler wires HTTP endpoints to the attendance service.
type AttendanceHandler struct {
	service *service.AttendanceService
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Mark godoc
// @Summary Mark a session's attendance
// @Description Re-marking the same date and subject replaces the earlier record
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.MarkAttendanceRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	record, err := h.service.Mark(c.Request.Context(), user.UID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Get godoc
// @Summary Get one session's attendance
// @Tags Attendance
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param subject path string true "Subject"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/{date}/{subject} [get]
func (h *AttendanceHandler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("date"), c.Param("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// List godoc
// @Summary List attendance sessions
// @Description Filter by date or by subject; one of the two is required
// @Tags Attendance
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD)"
// @Param subject query string false "Subject"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	if date := c.Query("date"); date != "" {
		records, err := h.service.ListByDate(c.Request.Context(), date)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, records, nil)
		return
	}
	if subject := c.Query("subject"); subject != "" {
		records, err := h.service.ListBySubject(c.Request.Context(), subject)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, records, nil)
		return
	}
	response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date or subject query parameter is required"))
}

// StudentSummary godoc
// @Summary Summarise a student's attendance for a subject
// @Tags Attendance
// @Produce json
// @Param register_number path string true "Register number"
// @Param subject query string true "Subject"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/summary/{register_number} [get]
func (h *AttendanceHandler) StudentSummary(c *gin.Context) {
	subject := c.Query("subject")
	if subject == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "subject query parameter is required"))
		return
	}

	summary, err := h.service.StudentSummary(c.Request.Context(), c.Param("register_number"), subject)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
