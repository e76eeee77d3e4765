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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	FindByRegisterNumber(ctx context.Context, registerNumber string) (*models.Student, error)
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	Exists(ctx context.Context, registerNumber string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, existing, updated *models.Student) error
	Delete(ctx context.Context, student *models.Student) error
}

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
	PatchFields(ctx context.Context, key string, fields map[string]interface{}) error
	Delete(ctx context.Context, key string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	RegisterNumber string   `json:"register_number" validate:"required"`
	FullName       string   `json:"full_name" validate:"required"`
	Email          string   `json:"email" validate:"required,email"`
	Course         string   `json:"course" validate:"required"`
	Program        string   `json:"program" validate:"required"`
	Year           int      `json:"year" validate:"required,min=1,max=6"`
	Section        string   `json:"section"`
	Phone          string   `json:"phone"`
	GuardianName   string   `json:"guardian_name"`
	GuardianPhone  string   `json:"guardian_phone"`
	Address        string   `json:"address"`
	PhotoURL       string   `json:"photo_url"`
	DocumentURLs   []string `json:"document_urls"`
}

// UpdateStudentRequest holds payload for updating students.
type UpdateStudentRequest struct {
	FullName      string   `json:"full_name" validate:"required"`
	Email         string   `json:"email" validate:"required,email"`
	Course        string   `json:"course" validate:"required"`
	Program       string   `json:"program" validate:"required"`
	Year          int      `json:"year" validate:"required,min=1,max=6"`
	Section       string   `json:"section"`
	Phone         string   `json:"phone"`
	GuardianName  string   `json:"guardian_name"`
	GuardianPhone string   `json:"guardian_phone"`
	Address       string   `json:"address"`
	PhotoURL      string   `json:"photo_url"`
	DocumentURLs  []string `json:"document_urls"`
	FeesPaid      bool     `json:"fees_paid"`
}

// StudentService handles student use-cases over the remote store with the
// local tier as read fallback.
type StudentService struct {
	repo      studentRepository
	cache     cacheStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, cache cacheStore, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns students matching the filter. On remote failure the caller's
// cached snapshot is served instead and flagged stale; only when the cache is
// empty too does the remote error surface.
func (s *StudentService) List(ctx context.Context, callerUID string, filter models.StudentFilter) ([]models.Student, bool, error) {
	students, err := s.repo.List(ctx, filter)
	if err == nil {
		if callerUID != "" {
			if cacheErr := s.cache.Set(ctx, repository.EntityListKey(callerUID, "students"), students); cacheErr != nil {
				s.logger.Warn("failed to warm student cache", zap.Error(cacheErr))
			}
		}
		return students, false, nil
	}

	s.logger.Warn("student list fell back to local cache", zap.Error(err))
	var cached []models.Student
	if callerUID != "" {
		if cacheErr := s.cache.Get(ctx, repository.EntityListKey(callerUID, "students"), &cached); cacheErr == nil {
			return filterCachedStudents(cached, filter), true, nil
		}
	}
	return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
}

// Get returns one student by register number.
func (s *StudentService) Get(ctx context.Context, registerNumber string) (*models.Student, error) {
	student, err := s.repo.FindByRegisterNumber(ctx, registerNumber)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student in both the partition and global copies.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	exists, err := s.repo.Exists(ctx, req.RegisterNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate register number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "register number already used")
	}

	student := &models.Student{
		RegisterNumber: req.RegisterNumber,
		FullName:       req.FullName,
		Email:          req.Email,
		Course:         req.Course,
		Program:        req.Program,
		Year:           req.Year,
		Section:        req.Section,
		Phone:          req.Phone,
		GuardianName:   req.GuardianName,
		GuardianPhone:  req.GuardianPhone,
		Address:        req.Address,
		PhotoURL:       req.PhotoURL,
		DocumentURLs:   req.DocumentURLs,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update modifies an existing student record in both copies.
func (s *StudentService) Update(ctx context.Context, registerNumber string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	existing, err := s.repo.FindByRegisterNumber(ctx, registerNumber)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	updated := *existing
	updated.FullName = req.FullName
	updated.Email = req.Email
	updated.Course = req.Course
	updated.Program = req.Program
	updated.Year = req.Year
	updated.Section = req.Section
	updated.Phone = req.Phone
	updated.GuardianName = req.GuardianName
	updated.GuardianPhone = req.GuardianPhone
	updated.Address = req.Address
	updated.PhotoURL = req.PhotoURL
	updated.DocumentURLs = req.DocumentURLs
	updated.FeesPaid = req.FeesPaid

	if err := s.repo.Update(ctx, existing, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return &updated, nil
}

// Delete removes a student from both copies and purges cached snapshots.
func (s *StudentService) Delete(ctx context.Context, registerNumber string) error {
	student, err := s.repo.FindByRegisterNumber(ctx, registerNumber)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.repo.Delete(ctx, student); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	if err := s.cache.DeleteByPattern(ctx, "entities:*:students"); err != nil {
		s.logger.Warn("failed to purge cached student lists", zap.Error(err))
	}
	return nil
}

func filterCachedStudents(students []models.Student, filter models.StudentFilter) []models.Student {
	out := make([]models.Student, 0, len(students))
	for _, s := range students {
		if filter.Course != "" && s.Course != filter.Course {
			continue
		}
		if filter.Program != "" && s.Program != filter.Program {
			continue
		}
		if filter.Year > 0 && s.Year != filter.Year {
			continue
		}
		if filter.Section != "" && s.Section != filter.Section {
			continue
		}
		out = append(out, s)
	}
	return out
}
