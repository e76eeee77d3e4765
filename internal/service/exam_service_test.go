package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pudocs/dept-portal-api/internal/docstore"
	"github.com/pudocs/dept-portal-api/internal/models"
	"github.com/pudocs/dept-portal-api/internal/repository"
	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
)

func newExamService(students map[string]*models.Student) (*ExamService, *docstore.MemStore) {
	store := docstore.NewMemStore()
	repo := repository.NewExamRepository(store)
	return NewExamService(repo, &staticStudentLookup{students: students}, nil, nil, nil), store
}

func scheduleExam(t *testing.T, svc *ExamService) *models.Exam {
	t.Helper()
	exam, err := svc.CreateExam(context.Background(), SaveExamRequest{
		Name:     "Semester 1 Internal",
		Subject:  "Data Structures",
		Course:   "PG",
		Program:  "M.Sc CS",
		Year:     1,
		Date:     "2026-11-10",
		MaxMarks: 100,
	})
	require.NoError(t, err)
	require.NotEmpty(t, exam.ID)
	return exam
}

func TestExamCreateRejectsBadDate(t *testing.T) {
	svc, _ := newExamService(nil)

	_, err := svc.CreateExam(context.Background(), SaveExamRequest{
		Name:     "Internal",
		Subject:  "DS",
		Course:   "PG",
		Program:  "M.Sc CS",
		Year:     1,
		Date:     "10-11-2026",
		MaxMarks: 100,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExamUpdateRoundTrip(t *testing.T) {
	svc, _ := newExamService(nil)
	exam := scheduleExam(t, svc)

	updated, err := svc.UpdateExam(context.Background(), exam.ID, SaveExamRequest{
		Name:     "Semester 1 Internal (rescheduled)",
		Subject:  "Data Structures",
		Course:   "PG",
		Program:  "M.Sc CS",
		Year:     1,
		Date:     "2026-11-17",
		MaxMarks: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-11-17", updated.Date)

	got, err := svc.GetExam(context.Background(), exam.ID)
	require.NoError(t, err)
	assert.Equal(t, "Semester 1 Internal (rescheduled)", got.Name)
}

func TestExamDeleteMissing(t *testing.T) {
	svc, _ := newExamService(nil)

	err := svc.DeleteExam(context.Background(), "no-such-exam")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEligibilityFeesCleared(t *testing.T) {
	svc, _ := newExamService(map[string]*models.Student{
		"CS2025001": {RegisterNumber: "CS2025001", FullName: "Asha Nair", FeesPaid: true},
		"CS2025002": {RegisterNumber: "CS2025002", FullName: "Ravi Kumar", FeesPaid: false},
	})
	exam := scheduleExam(t, svc)

	require.NoError(t, svc.CheckEligibility(context.Background(), "CS2025001", exam.ID))

	err := svc.CheckEligibility(context.Background(), "CS2025002", exam.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotEligible.Code, appErrors.FromError(err).Code)
}

func TestEligibilityUnknownStudent(t *testing.T) {
	svc, _ := newExamService(nil)
	exam := scheduleExam(t, svc)

	err := svc.CheckEligibility(context.Background(), "CS2099999", exam.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEligibilityCustomRule(t *testing.T) {
	store := docstore.NewMemStore()
	repo := repository.NewExamRepository(store)
	lookup := &staticStudentLookup{students: map[string]*models.Student{
		"CS2025002": {RegisterNumber: "CS2025002", FeesPaid: false, Year: 1},
	}}
	denySecondYears := func(_ context.Context, student *models.Student, _ *models.Exam) error {
		if student.Year > 1 {
			return appErrors.Clone(appErrors.ErrNotEligible, "second years sit supplementary only")
		}
		return nil
	}
	svc := NewExamService(repo, lookup, denySecondYears, nil, nil)
	exam := scheduleExam(t, svc)

	// custom rule replaces the fees gate entirely
	require.NoError(t, svc.CheckEligibility(context.Background(), "CS2025002", exam.ID))
}

func TestPublishResultRecomputesTotals(t *testing.T) {
	svc, _ := newExamService(map[string]*models.Student{
		"CS2025001": {RegisterNumber: "CS2025001", FeesPaid: true},
	})
	exam := scheduleExam(t, svc)

	result, err := svc.PublishResult(context.Background(), PublishResultRequest{
		RegisterNumber: "CS2025001",
		ExamID:         exam.ID,
		Marks: []models.SubjectMark{
			{Subject: "Data Structures", Internal: 18, External: 54, Total: 999},
			{Subject: "Operating Systems", Internal: 20, External: 61},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, exam.Name, result.ExamName)
	assert.Equal(t, 72, result.Marks[0].Total)
	assert.Equal(t, 81, result.Marks[1].Total)

	got, err := svc.GetResult(context.Background(), "CS2025001", exam.ID)
	require.NoError(t, err)
	assert.Equal(t, 72, got.Marks[0].Total)
}

func TestPublishResultBlockedForIneligible(t *testing.T) {
	svc, _ := newExamService(map[string]*models.Student{
		"CS2025002": {RegisterNumber: "CS2025002", FeesPaid: false},
	})
	exam := scheduleExam(t, svc)

	_, err := svc.PublishResult(context.Background(), PublishResultRequest{
		RegisterNumber: "CS2025002",
		ExamID:         exam.ID,
		Marks:          []models.SubjectMark{{Subject: "DS", Internal: 10, External: 40}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotEligible.Code, appErrors.FromError(err).Code)

	_, err = svc.GetResult(context.Background(), "CS2025002", exam.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestListResultsByStudent(t *testing.T) {
	svc, _ := newExamService(map[string]*models.Student{
		"CS2025001": {RegisterNumber: "CS2025001", FeesPaid: true},
	})
	first := scheduleExam(t, svc)
	second, err := svc.CreateExam(context.Background(), SaveExamRequest{
		Name:     "Semester 1 Model",
		Subject:  "Operating Systems",
		Course:   "PG",
		Program:  "M.Sc CS",
		Year:     1,
		Date:     "2026-12-01",
		MaxMarks: 100,
	})
	require.NoError(t, err)

	for _, examID := range []string{first.ID, second.ID} {
		_, err := svc.PublishResult(context.Background(), PublishResultRequest{
			RegisterNumber: "CS2025001",
			ExamID:         examID,
			Marks:          []models.SubjectMark{{Subject: "DS", Internal: 15, External: 50}},
		})
		require.NoError(t, err)
	}

	results, err := svc.ListResults(context.Background(), "CS2025001")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
