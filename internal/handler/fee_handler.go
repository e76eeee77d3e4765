package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pudocs/dept-portal-api/internal/service"
	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
	"github.com/pudocs/dept-portal-api/pkg/response"
)

// FeeHandler wires HTTP endpoints to the fee service.
type FeeHandler struct {
	service *service.FeeService
}

// NewFeeHandler creates a new handler.
func NewFeeHandler(svc *service.FeeService) *FeeHandler {
	return &FeeHandler{service: svc}
}

// Record godoc
// @Summary Record a fee payment
// @Description Writes the fee record and refreshes the student's fees_paid flag
// @Tags Fees
// @Accept json
// @Produce json
// @Param payload body service.RecordFeeRequest true "Fee payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /fees [post]
func (h *FeeHandler) Record(c *gin.Context) {
	var req service.RecordFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid fee payload"))
		return
	}

	record, err := h.service.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Get godoc
// @Summary Get a fee record
// @Tags Fees
// @Produce json
// @Param id path string true "Fee record id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /fees/{id} [get]
func (h *FeeHandler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// ListByStudent godoc
// @Summary List a student's fee history
// @Tags Fees
// @Produce json
// @Param register_number path string true "Register number"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fees/student/{register_number} [get]
func (h *FeeHandler) ListByStudent(c *gin.Context) {
	records, err := h.service.ListByStudent(c.Request.Context(), c.Param("register_number"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}
