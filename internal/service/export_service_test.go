package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pudocs/dept-portal-api/internal/docstore"
	"github.com/pudocs/dept-portal-api/internal/models"
	"github.com/pudocs/dept-portal-api/internal/repository"
	"github.com/pudocs/dept-portal-api/pkg/config"
	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
)

// capturingUploader records the paths handed to the blob store.
type capturingUploader struct {
	paths []string
}

func (u *capturingUploader) Upload(_ context.Context, relPath string, _ []byte, _ string) (string, error) {
	u.paths = append(u.paths, relPath)
	return "https://blobs.example.com/" + relPath, nil
}

func newExportFixture(t *testing.T) (*ExportService, *capturingUploader, *repository.ExamRepository) {
	t.Helper()
	store := docstore.NewMemStore()
	students := repository.NewStudentRepository(store, nil)
	exams := repository.NewExamRepository(store)
	require.NoError(t, students.Create(context.Background(), &models.Student{
		RegisterNumber: "CS2025001",
		FullName:       "Asha Nair",
		Email:          "asha@example.edu",
		Course:         "PG",
		Program:        "M.Sc CS",
		Year:           1,
	}))
	blobs := &capturingUploader{}
	cfg := config.ExportsConfig{Enabled: true, PathPrefix: "exports"}
	return NewExportService(students, exams, blobs, cfg, nil), blobs, exams
}

func TestExportRosterPathHasNoPrefix(t *testing.T) {
	svc, blobs, _ := newExportFixture(t)

	url, err := svc.RosterCSV(context.Background(), models.StudentFilter{Course: "PG"})
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	// the blob store owns the prefix; the service path must not repeat it
	require.Len(t, blobs.paths, 1)
	assert.True(t, strings.HasPrefix(blobs.paths[0], "rosters/"), "got %s", blobs.paths[0])
	assert.NotContains(t, blobs.paths[0], "exports")
}

func TestExportMarksheetPathHasNoPrefix(t *testing.T) {
	svc, blobs, exams := newExportFixture(t)
	ctx := context.Background()

	exam := &models.Exam{Name: "Semester 1 Internal", Subject: "DS", Course: "PG", Program: "M.Sc CS", Year: 1, Date: "2026-11-10", MaxMarks: 100}
	require.NoError(t, exams.SaveExam(ctx, exam))
	require.NoError(t, exams.SaveResult(ctx, &models.Result{
		RegisterNumber: "CS2025001",
		ExamID:         exam.ID,
		ExamName:       exam.Name,
		Marks:          []models.SubjectMark{{Subject: "DS", Internal: 18, External: 54, Total: 72}},
	}))

	url, err := svc.MarksheetPDF(ctx, "Department of Computer Science", "CS2025001", exam.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	require.Len(t, blobs.paths, 1)
	assert.Equal(t, "marksheets/CS2025001_"+exam.ID+".pdf", blobs.paths[0])
}

func TestExportDisabled(t *testing.T) {
	store := docstore.NewMemStore()
	svc := NewExportService(repository.NewStudentRepository(store, nil), repository.NewExamRepository(store), &capturingUploader{}, config.ExportsConfig{}, nil)

	_, err := svc.RosterCSV(context.Background(), models.StudentFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
