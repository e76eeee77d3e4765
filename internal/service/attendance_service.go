package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pudocs/dept-portal-api/internal/docstore"
	"github.com/pudocs/dept-portal-api/internal/models"
	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
)

type attendanceRepository interface {
	Upsert(ctx context.Context, record *models.AttendanceRecord) error
	Find(ctx context.Context, date, subject string) (*models.AttendanceRecord, error)
	ListByDate(ctx context.Context, date string) ([]models.AttendanceRecord, error)
	ListBySubject(ctx context.Context, subject string) ([]models.AttendanceRecord, error)
}

// MarkAttendanceRequest is one class session's roll call.
type MarkAttendanceRequest struct {
	Date    string                   `json:"date" validate:"required,datetime=2006-01-02"`
	Subject string                   `json:"subject" validate:"required"`
	Course  string                   `json:"course" validate:"required"`
	Program string                   `json:"program" validate:"required"`
	Year    int                      `json:"year" validate:"required,min=1,max=6"`
	Section string                   `json:"section"`
	Entries []models.AttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}

// AttendanceService records and queries session attendance.
type AttendanceService struct {
	repo      attendanceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, validator: validate, logger: logger}
}

// Mark records a session's attendance. Marking the same date and subject
// again replaces the earlier record, which is how corrections are made.
func (s *AttendanceService) Mark(ctx context.Context, markedBy string, req MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	for _, entry := range req.Entries {
		switch entry.Status {
		case models.AttendancePresent, models.AttendanceAbsent, models.AttendanceLate, models.AttendanceExcused:
		default:
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attendance status "+string(entry.Status))
		}
	}

	record := &models.AttendanceRecord{
		Date:     req.Date,
		Subject:  req.Subject,
		Course:   req.Course,
		Program:  req.Program,
		Year:     req.Year,
		Section:  req.Section,
		MarkedBy: markedBy,
		Entries:  req.Entries,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	return record, nil
}

// Get fetches one session's record.
func (s *AttendanceService) Get(ctx context.Context, date, subject string) (*models.AttendanceRecord, error) {
	record, err := s.repo.Find(ctx, date, subject)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	return record, nil
}

// ListByDate returns every session marked on a date.
func (s *AttendanceService) ListByDate(ctx context.Context, date string) ([]models.AttendanceRecord, error) {
	records, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// ListBySubject returns every session for a subject.
func (s *AttendanceService) ListBySubject(ctx context.Context, subject string) ([]models.AttendanceRecord, error) {
	records, err := s.repo.ListBySubject(ctx, subject)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// StudentSummary tallies one student's attendance across a subject's sessions.
func (s *AttendanceService) StudentSummary(ctx context.Context, registerNumber, subject string) (map[models.AttendanceStatus]int, error) {
	records, err := s.ListBySubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	summary := make(map[models.AttendanceStatus]int)
	for _, record := range records {
		for _, entry := range record.Entries {
			if entry.RegisterNumber == registerNumber {
				summary[entry.Status]++
			}
		}
	}
	return summary, nil
}
