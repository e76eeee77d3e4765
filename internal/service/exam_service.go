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

type examRepository interface {
	ListExams(ctx context.Context, course, program string, year int) ([]models.Exam, error)
	FindExam(ctx context.Context, id string) (*models.Exam, error)
	SaveExam(ctx context.Context, exam *models.Exam) error
	DeleteExam(ctx context.Context, id string) error
	SaveResult(ctx context.Context, result *models.Result) error
	FindResult(ctx context.Context, registerNumber, examID string) (*models.Result, error)
	ListResultsByStudent(ctx context.Context, registerNumber string) ([]models.Result, error)
}

type studentLookup interface {
	FindByRegisterNumber(ctx context.Context, registerNumber string) (*models.Student, error)
}

// EligibilityFunc decides whether a student may sit an exam. The default
// admits students whose fees are cleared; departments with other gating
// rules supply their own.
type EligibilityFunc func(ctx context.Context, student *models.Student, exam *models.Exam) error

// FeesClearedEligibility admits a student only when fees are marked paid.
func FeesClearedEligibility(_ context.Context, student *models.Student, _ *models.Exam) error {
	if !student.FeesPaid {
		return appErrors.Clone(appErrors.ErrNotEligible, "fees not cleared for "+student.RegisterNumber)
	}
	return nil
}

// SaveExamRequest holds payload for scheduling an exam.
type SaveExamRequest struct {
	Name     string `json:"name" validate:"required"`
	Subject  string `json:"subject" validate:"required"`
	Course   string `json:"course" validate:"required"`
	Program  string `json:"program" validate:"required"`
	Year     int    `json:"year" validate:"required,min=1,max=6"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Session  string `json:"session"`
	MaxMarks int    `json:"max_marks" validate:"required,min=1"`
}

// PublishResultRequest holds a student's marks for one exam.
type PublishResultRequest struct {
	RegisterNumber string               `json:"register_number" validate:"required"`
	ExamID         string               `json:"exam_id" validate:"required"`
	Marks          []models.SubjectMark `json:"marks" validate:"required,min=1,dive"`
	Remarks        string               `json:"remarks"`
}

// ExamService manages exam schedules and result publication.
type ExamService struct {
	repo        examRepository
	students    studentLookup
	eligibility EligibilityFunc
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewExamService constructs the exam service. A nil eligibility function
// falls back to the fees-cleared rule.
func NewExamService(repo examRepository, students studentLookup, eligibility EligibilityFunc, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if eligibility == nil {
		eligibility = FeesClearedEligibility
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{repo: repo, students: students, eligibility: eligibility, validator: validate, logger: logger}
}

// ListExams returns exams for a cohort.
func (s *ExamService) ListExams(ctx context.Context, course, program string, year int) ([]models.Exam, error) {
	exams, err := s.repo.ListExams(ctx, course, program, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	return exams, nil
}

// GetExam fetches an exam by id.
func (s *ExamService) GetExam(ctx context.Context, id string) (*models.Exam, error) {
	exam, err := s.repo.FindExam(ctx, id)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	return exam, nil
}

// CreateExam schedules a new exam.
func (s *ExamService) CreateExam(ctx context.Context, req SaveExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}
	exam := &models.Exam{
		Name:     req.Name,
		Subject:  req.Subject,
		Course:   req.Course,
		Program:  req.Program,
		Year:     req.Year,
		Date:     req.Date,
		Session:  req.Session,
		MaxMarks: req.MaxMarks,
	}
	if err := s.repo.SaveExam(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam")
	}
	return exam, nil
}

// UpdateExam replaces an existing exam schedule.
func (s *ExamService) UpdateExam(ctx context.Context, id string, req SaveExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}
	existing, err := s.GetExam(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Name = req.Name
	existing.Subject = req.Subject
	existing.Course = req.Course
	existing.Program = req.Program
	existing.Year = req.Year
	existing.Date = req.Date
	existing.Session = req.Session
	existing.MaxMarks = req.MaxMarks
	if err := s.repo.SaveExam(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update exam")
	}
	return existing, nil
}

// DeleteExam removes an exam schedule.
func (s *ExamService) DeleteExam(ctx context.Context, id string) error {
	if _, err := s.GetExam(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteExam(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete exam")
	}
	return nil
}

// CheckEligibility reports whether a student may sit an exam.
func (s *ExamService) CheckEligibility(ctx context.Context, registerNumber, examID string) error {
	student, err := s.students.FindByRegisterNumber(ctx, registerNumber)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	exam, err := s.GetExam(ctx, examID)
	if err != nil {
		return err
	}
	return s.eligibility(ctx, student, exam)
}

// PublishResult records a student's marks for an exam. Total marks are
// recomputed server-side so clients cannot skew them.
func (s *ExamService) PublishResult(ctx context.Context, req PublishResultRequest) (*models.Result, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid result payload")
	}
	if err := s.CheckEligibility(ctx, req.RegisterNumber, req.ExamID); err != nil {
		return nil, err
	}
	exam, err := s.GetExam(ctx, req.ExamID)
	if err != nil {
		return nil, err
	}

	marks := make([]models.SubjectMark, len(req.Marks))
	for i, m := range req.Marks {
		m.Total = m.Internal + m.External
		marks[i] = m
	}
	result := &models.Result{
		RegisterNumber: req.RegisterNumber,
		ExamID:         req.ExamID,
		ExamName:       exam.Name,
		Marks:          marks,
		Remarks:        req.Remarks,
	}
	if err := s.repo.SaveResult(ctx, result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish result")
	}
	return result, nil
}

// GetResult fetches one student's result for an exam.
func (s *ExamService) GetResult(ctx context.Context, registerNumber, examID string) (*models.Result, error) {
	result, err := s.repo.FindResult(ctx, registerNumber, examID)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "result not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result")
	}
	return result, nil
}

// ListResults returns all published results for a student.
func (s *ExamService) ListResults(ctx context.Context, registerNumber string) ([]models.Result, error) {
	results, err := s.repo.ListResultsByStudent(ctx, registerNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list results")
	}
	return results, nil
}
