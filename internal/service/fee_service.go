package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pudocs/dept-portal-api/internal/docstore"
	"github.com/pudocs/dept-portal-api/internal/models"
	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
)

type feeRepository interface {
	Save(ctx context.Context, record *models.FeeRecord) error
	Find(ctx context.Context, id string) (*models.FeeRecord, error)
	ListByStudent(ctx context.Context, registerNumber string) ([]models.FeeRecord, error)
}

type studentWriter interface {
	FindByRegisterNumber(ctx context.Context, registerNumber string) (*models.Student, error)
	Update(ctx context.Context, existing, updated *models.Student) error
}

// RecordFeeRequest captures a fee status update for one academic year.
type RecordFeeRequest struct {
	RegisterNumber string `json:"register_number" validate:"required"`
	AcademicYear   string `json:"academic_year" validate:"required"`
	AmountDue      int64  `json:"amount_due" validate:"min=0"`
	AmountPaid     int64  `json:"amount_paid" validate:"min=0"`
	ReceiptNumber  string `json:"receipt_number"`
}

// FeeService manages fee records. Recording a payment also refreshes the
// student's fees_paid flag so eligibility checks see the current state.
type FeeService struct {
	repo      feeRepository
	students  studentWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeeService constructs the fee service.
func NewFeeService(repo feeRepository, students studentWriter, validate *validator.Validate, logger *zap.Logger) *FeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeService{repo: repo, students: students, validator: validate, logger: logger}
}

// Record writes a fee record and syncs the student's fees_paid flag.
func (s *FeeService) Record(ctx context.Context, req RecordFeeRequest) (*models.FeeRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fee payload")
	}

	student, err := s.students.FindByRegisterNumber(ctx, req.RegisterNumber)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	record := &models.FeeRecord{
		RegisterNumber: req.RegisterNumber,
		AcademicYear:   req.AcademicYear,
		AmountDue:      req.AmountDue,
		AmountPaid:     req.AmountPaid,
		ReceiptNumber:  req.ReceiptNumber,
		Paid:           req.AmountPaid >= req.AmountDue && req.AmountDue > 0,
	}
	if record.Paid {
		now := time.Now().UTC()
		record.PaidAt = &now
	}
	if err := s.repo.Save(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save fee record")
	}

	if student.FeesPaid != record.Paid {
		updated := *student
		updated.FeesPaid = record.Paid
		if err := s.students.Update(ctx, student, &updated); err != nil {
			// The fee record is the source of truth; flag drift only logged.
			s.logger.Warn("failed to sync fees_paid flag",
				zap.String("register_number", req.RegisterNumber),
				zap.Error(err))
		}
	}
	return record, nil
}

// Get fetches a fee record by id.
func (s *FeeService) Get(ctx context.Context, id string) (*models.FeeRecord, error) {
	record, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee record")
	}
	return record, nil
}

// ListByStudent returns a student's fee history.
func (s *FeeService) ListByStudent(ctx context.Context, registerNumber string) ([]models.FeeRecord, error) {
	records, err := s.repo.ListByStudent(ctx, registerNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fee records")
	}
	return records, nil
}
