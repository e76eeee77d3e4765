package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pudocs/dept-portal-api/internal/models"
	"github.com/pudocs/dept-portal-api/internal/service"
	"github.com/pudocs/dept-portal-api/pkg/response"
)

// ExportHandler wires HTTP endpoints to the export service.
type ExportHandler struct {
	service        *service.ExportService
	departmentName string
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService, departmentName string) *ExportHandler {
	if departmentName == "" {
		departmentName = "Department of Computer Science"
	}
	return &ExportHandler{service: svc, departmentName: departmentName}
}

// Roster godoc
// @Summary Export a class roster as CSV
// @Tags Exports
// @Produce json
// @Param course query string false "Course"
// @Param program query string false "Program"
// @Param year query int false "Year of study"
// @Param section query string false "Section"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /exports/roster [post]
func (h *ExportHandler) Roster(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	filter := models.StudentFilter{
		Course:  c.Query("course"),
		Program: c.Query("program"),
		Year:    year,
		Section: c.Query("section"),
	}

	url, err := h.service.RosterCSV(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"url": url}, nil)
}

// Marksheet godoc
// @Summary Export a student marksheet as PDF
// @Tags Exports
// @Produce json
// @Param register_number path string true "Register number"
// @Param exam_id path string true "Exam id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /exports/marksheet/{register_number}/{exam_id} [post]
func (h *ExportHandler) Marksheet(c *gin.Context) {
	url, err := h.service.MarksheetPDF(c.Request.Context(), h.departmentName, c.Param("register_number"), c.Param("exam_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"url": url}, nil)
}
