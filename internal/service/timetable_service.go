package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pudocs/dept-portal-api/internal/docstore"
	"github.com/pudocs/dept-portal-api/internal/models"
	"github.com/pudocs/dept-portal-api/internal/repository"
	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
)

type timetableRepository interface {
	Find(ctx context.Context, classID string) (*models.Timetable, error)
	Save(ctx context.Context, tt *models.Timetable) error
	Delete(ctx context.Context, classID string) error
}

// SaveTimetableRequest replaces the weekly schedule for one class.
type SaveTimetableRequest struct {
	Course  string                 `json:"course" validate:"required"`
	Program string                 `json:"program" validate:"required"`
	Year    int                    `json:"year" validate:"required,min=1,max=6"`
	Section string                 `json:"section"`
	Slots   []models.TimetableSlot `json:"slots" validate:"required,min=1,dive"`
}

// TimetableService manages class timetables.
type TimetableService struct {
	repo      timetableRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService constructs the timetable service.
func NewTimetableService(repo timetableRepository, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{repo: repo, validator: validate, logger: logger}
}

// Get fetches the timetable for a cohort.
func (s *TimetableService) Get(ctx context.Context, course, program string, year int, section string) (*models.Timetable, error) {
	classID := repository.ClassID(course, program, year, section)
	tt, err := s.repo.Find(ctx, classID)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return tt, nil
}

// Save replaces a class timetable wholesale.
func (s *TimetableService) Save(ctx context.Context, updatedBy string, req SaveTimetableRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	tt := &models.Timetable{
		Course:    req.Course,
		Program:   req.Program,
		Year:      req.Year,
		Section:   req.Section,
		Slots:     req.Slots,
		UpdatedBy: updatedBy,
	}
	if err := s.repo.Save(ctx, tt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save timetable")
	}
	return tt, nil
}

// Delete removes a class timetable.
func (s *TimetableService) Delete(ctx context.Context, course, program string, year int, section string) error {
	classID := repository.ClassID(course, program, year, section)
	if _, err := s.Get(ctx, course, program, year, section); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, classID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	return nil
}
