package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pudocs/dept-portal-api/internal/service"
	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
	"github.com/pudocs/dept-portal-api/pkg/response"
)

// ExamHandler wires HTTP endpoints to the exam service.
type ExamHandler struct {
	service *service.ExamService
}

// NewExamHandler creates a new handler.
func NewExamHandler(svc *service.ExamService) *ExamHandler {
	return &ExamHandler{service: svc}
}

// List godoc
// @Summary List exams
// @Tags Exams
// @Produce json
// @Param course query string false "Course"
// @Param program query string false "Program"
// @Param year query int false "Year of study"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /exams [get]
func (h *ExamHandler) List(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	exams, err := h.service.ListExams(c.Request.Context(), c.Query("course"), c.Query("program"), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exams, nil)
}

// Get godoc
// @Summary Get an exam
// @Tags Exams
// @Produce json
// @Param id path string true "Exam id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /exams/{id} [get]
func (h *ExamHandler) Get(c *gin.Context) {
	exam, err := h.service.GetExam(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Create godoc
// @Summary Schedule an exam
// @Tags Exams
// @Accept json
// @Produce json
// @Param payload body service.SaveExamRequest true "Exam payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /exams [post]
func (h *ExamHandler) Create(c *gin.Context) {
	var req service.SaveExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid exam payload"))
		return
	}

	exam, err := h.service.CreateExam(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exam)
}

// Update godoc
// @Summary Update an exam
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path string true "Exam id"
// @Param payload body service.SaveExamRequest true "Exam payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /exams/{id} [put]
func (h *ExamHandler) Update(c *gin.Context) {
	var req service.SaveExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid exam payload"))
		return
	}

	exam, err := h.service.UpdateExam(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Delete godoc
// @Summary Delete an exam
// @Tags Exams
// @Produce json
// @Param id path string true "Exam id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /exams/{id} [delete]
func (h *ExamHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteExam(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Eligibility godoc
// @Summary Check exam eligibility
// @Description Reports whether a student may sit the exam
// @Tags Exams
// @Produce json
// @Param id path string true "Exam id"
// @Param register_number query string true "Register number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /exams/{id}/eligibility [get]
func (h *ExamHandler) Eligibility(c *gin.Context) {
	registerNumber := c.Query("register_number")
	if registerNumber == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "register_number is required"))
		return
	}

	if err := h.service.CheckEligibility(c.Request.Context(), registerNumber, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"eligible": true}, nil)
}

// PublishResult godoc
// @Summary Publish a student's result
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body service.PublishResultRequest true "Result payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /results [post]
func (h *ExamHandler) PublishResult(c *gin.Context) {
	var req service.PublishResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid result payload"))
		return
	}

	result, err := h.service.PublishResult(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GetResult godoc
// @Summary Get one student's result for an exam
// @Tags Results
// @Produce json
// @Param register_number path string true "Register number"
// @Param exam_id path string true "Exam id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /results/{register_number}/{exam_id} [get]
func (h *ExamHandler) GetResult(c *gin.Context) {
	result, err := h.service.GetResult(c.Request.Context(), c.Param("register_number"), c.Param("exam_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ListResults godoc
// @Summary List a student's results
// @Tags Results
// @Produce json
// @Param register_number path string true "Register number"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /results/{register_number} [get]
func (h *ExamHandler) ListResults(c *gin.Context) {
	results, err := h.service.ListResults(c.Request.Context(), c.Param("register_number"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}
