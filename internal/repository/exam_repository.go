package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pudocs/dept-portal-api/internal/docstore"
	"github.com/pudocs/dept-portal-api/internal/models"
)

// Collections backing examinations and published results.
const (
	ExamsCollection   = "exams"
	ResultsCollection = "results"
)

// ExamRepository manages exam schedules and result records.
type ExamRepository struct {
	store docstore.Store
}

// NewExamRepository constructs an ExamRepository.
func NewExamRepository(store docstore.Store) *ExamRepository {
	return &ExamRepository{store: store}
}

// ListExams returns exams for a cohort, earliest date first.
func (r *ExamRepository) ListExams(ctx context.Context, course, program string, year int) ([]models.Exam, error) {
	var filters []docstore.Filter
	if course != "" {
		filters = append(filters, docstore.Filter{Field: "course", Value: course})
	}
	if program != "" {
		filters = append(filters, docstore.Filter{Field: "program", Value: program})
	}
	if year > 0 {
		filters = append(filters, docstore.Filter{Field: "year", Value: year})
	}

	docs, err := r.store.Query(ctx, ExamsCollection, filters)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	exams := make([]models.Exam, 0, len(docs))
	for i := range docs {
		var e models.Exam
		if err := docstore.DataTo(&docs[i], &e); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	sort.Slice(exams, func(i, j int) bool { return exams[i].Date < exams[j].Date })
	return exams, nil
}

// FindExam fetches an exam by id.
func (r *ExamRepository) FindExam(ctx context.Context, id string) (*models.Exam, error) {
	doc, err := r.store.Get(ctx, ExamsCollection, id)
	if err != nil {
		return nil, err
	}
	var exam models.Exam
	if err := docstore.DataTo(doc, &exam); err != nil {
		return nil, err
	}
	return &exam, nil
}

// SaveExam creates or replaces an exam, generating its id when missing.
func (r *ExamRepository) SaveExam(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = now
	}
	exam.UpdatedAt = now
	if err := r.store.Set(ctx, ExamsCollection, exam.ID, exam); err != nil {
		return fmt.Errorf("save exam %s: %w", exam.ID, err)
	}
	return nil
}

// DeleteExam removes an exam schedule.
func (r *ExamRepository) DeleteExam(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, ExamsCollection, id); err != nil {
		return fmt.Errorf("delete exam %s: %w", id, err)
	}
	return nil
}

// SaveResult upserts a result record under its composite student+exam key.
// Results are write-once in practice; corrections re-upsert the same key.
func (r *ExamRepository) SaveResult(ctx context.Context, result *models.Result) error {
	result.ID = models.ResultKey(result.RegisterNumber, result.ExamID)
	now := time.Now().UTC()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = now
	}
	if result.PublishedAt.IsZero() {
		result.PublishedAt = now
	}
	if err := r.store.Set(ctx, ResultsCollection, result.ID, result); err != nil {
		return fmt.Errorf("save result %s: %w", result.ID, err)
	}
	return nil
}

// FindResult fetches the result for one student and exam.
func (r *ExamRepository) FindResult(ctx context.Context, registerNumber, examID string) (*models.Result, error) {
	doc, err := r.store.Get(ctx, ResultsCollection, models.ResultKey(registerNumber, examID))
	if err != nil {
		return nil, err
	}
	var result models.Result
	if err := docstore.DataTo(doc, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListResultsByStudent returns every published result for a student.
func (r *ExamRepository) ListResultsByStudent(ctx context.Context, registerNumber string) ([]models.Result, error) {
	docs, err := r.store.Query(ctx, ResultsCollection, []docstore.Filter{{Field: "register_number", Value: registerNumber}})
	if err != nil {
		return nil, fmt.Errorf("list results for %s: %w", registerNumber, err)
	}
	results := make([]models.Result, 0, len(docs))
	for i := range docs {
		var res models.Result
		if err := docstore.DataTo(&docs[i], &res); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].PublishedAt.After(results[j].PublishedAt) })
	return results, nil
}
