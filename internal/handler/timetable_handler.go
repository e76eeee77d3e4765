package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pudocs/dept-portal-api/internal/middleware"
	"github.com/pudocs/dept-portal-api/internal/service"
	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
	"github.com/pudocs/dept-portal-api/pkg/response"
)

// TimetableHandler wires HTTP endpoints to the timetable service.
type TimetableHandler struct {
	service *service.TimetableService
}

// NewTimetableHandler creates a new handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Get godoc
// @Summary Get a class timetable
// @Tags Timetables
// @Produce json
// @Param course query string true "Course"
// @Param program query string true "Program"
// @Param year query int true "Year of study"
// @Param section query string false "Section"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /timetables [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	tt, err := h.service.Get(c.Request.Context(), c.Query("course"), c.Query("program"), year, c.Query("section"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tt, nil)
}

// Save godoc
// @Summary Replace a class timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body service.SaveTimetableRequest true "Timetable payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /timetables [put]
func (h *TimetableHandler) Save(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SaveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}

	tt, err := h.service.Save(c.Request.Context(), user.UID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tt, nil)
}

// Delete godoc
// @Summary Delete a class timetable
// @Tags Timetables
// @Produce json
// @Param course query string true "Course"
// @Param program query string true "Program"
// @Param year query int true "Year of study"
// @Param section query string false "Section"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /timetables [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	if err := h.service.Delete(c.Request.Context(), c.Query("course"), c.Query("program"), year, c.Query("section")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
