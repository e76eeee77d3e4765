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

type staffRepository interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, error)
	FindByEmail(ctx context.Context, email string) (*models.Staff, error)
	Create(ctx context.Context, staff *models.Staff) error
	Update(ctx context.Context, staff *models.Staff) error
	SoftDelete(ctx context.Context, email string) error
}

// SaveStaffRequest holds payload for creating or updating staff.
type SaveStaffRequest struct {
	Email           string   `json:"email" validate:"required,email"`
	FullName        string   `json:"full_name" validate:"required"`
	Designation     string   `json:"designation" validate:"required"`
	Department      string   `json:"department" validate:"required"`
	SubjectsHandled []string `json:"subjects_handled"`
	Phone           string   `json:"phone"`
	PhotoURL        string   `json:"photo_url"`
}

// StaffService handles staff use-cases.
type StaffService struct {
	repo      staffRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStaffService constructs the staff service.
func NewStaffService(repo staffRepository, validate *validator.Validate, logger *zap.Logger) *StaffService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{repo: repo, validator: validate, logger: logger}
}

// List returns staff. Soft-deleted members stay hidden unless requested.
func (s *StaffService) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, error) {
	staff, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staff")
	}
	return staff, nil
}

// Get returns one staff member by email, including soft-deleted records.
func (s *StaffService) Get(ctx context.Context, email string) (*models.Staff, error) {
	staff, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff")
	}
	return staff, nil
}

// Create registers a staff member keyed by email.
func (s *StaffService) Create(ctx context.Context, req SaveStaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "staff email already registered")
	} else if !errors.Is(err, docstore.ErrDocNotFound) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate staff email")
	}

	staff := &models.Staff{
		Email:           req.Email,
		FullName:        req.FullName,
		Designation:     req.Designation,
		Department:      req.Department,
		SubjectsHandled: req.SubjectsHandled,
		Phone:           req.Phone,
		PhotoURL:        req.PhotoURL,
		Active:          true,
	}
	if err := s.repo.Create(ctx, staff); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create staff")
	}
	return staff, nil
}

// Update modifies an existing staff record, preserving its Active flag.
func (s *StaffService) Update(ctx context.Context, email string, req SaveStaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}

	staff, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff")
	}

	staff.FullName = req.FullName
	staff.Designation = req.Designation
	staff.Department = req.Department
	staff.SubjectsHandled = req.SubjectsHandled
	staff.Phone = req.Phone
	staff.PhotoURL = req.PhotoURL

	if err := s.repo.Update(ctx, staff); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update staff")
	}
	return staff, nil
}

// Delete soft-deletes a staff member.
func (s *StaffService) Delete(ctx context.Context, email string) error {
	if err := s.repo.SoftDelete(ctx, email); err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "staff not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete staff")
	}
	return nil
}
