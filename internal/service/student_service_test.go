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

// flakyStudentRepo wraps the real repository so listings can be made to fail
// on demand, simulating a remote outage.
type flakyStudentRepo struct {
	*repository.StudentRepository
	listErr error
}

func (r *flakyStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.StudentRepository.List(ctx, filter)
}

func newStudentFixture() (*StudentService, *flakyStudentRepo, *memCache) {
	repo := &flakyStudentRepo{StudentRepository: repository.NewStudentRepository(docstore.NewMemStore(), nil)}
	cache := newMemCache()
	return NewStudentService(repo, cache, nil, nil), repo, cache
}

func createStudentReq(registerNumber, name string, year int) CreateStudentRequest {
	return CreateStudentRequest{
		RegisterNumber: registerNumber,
		FullName:       name,
		Email:          registerNumber + "@example.edu",
		Course:         "PG",
		Program:        "M.Sc CS",
		Year:           year,
	}
}

func TestStudentCreateAndGet(t *testing.T) {
	svc, _, _ := newStudentFixture()

	created, err := svc.Create(context.Background(), createStudentReq("CS2025001", "Asha Nair", 1))
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), "CS2025001")
	require.NoError(t, err)
	assert.Equal(t, created.FullName, got.FullName)
}

func TestStudentCreateDuplicateRegisterNumber(t *testing.T) {
	svc, _, _ := newStudentFixture()
	_, err := svc.Create(context.Background(), createStudentReq("CS2025001", "Asha Nair", 1))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), createStudentReq("CS2025001", "Someone Else", 2))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStudentListWarmsCallerCache(t *testing.T) {
	svc, _, cache := newStudentFixture()
	_, err := svc.Create(context.Background(), createStudentReq("CS2025001", "Asha Nair", 1))
	require.NoError(t, err)

	students, stale, err := svc.List(context.Background(), "uid-1", models.StudentFilter{})
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Len(t, students, 1)
	assert.True(t, cache.has(repository.EntityListKey("uid-1", "students")))
}

func TestStudentListServesStaleCacheOnOutage(t *testing.T) {
	svc, repo, _ := newStudentFixture()
	_, err := svc.Create(context.Background(), createStudentReq("CS2025001", "Asha Nair", 1))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), createStudentReq("CS2025002", "Ravi Kumar", 2))
	require.NoError(t, err)

	_, _, err = svc.List(context.Background(), "uid-1", models.StudentFilter{})
	require.NoError(t, err)

	repo.listErr = context.DeadlineExceeded
	students, stale, err := svc.List(context.Background(), "uid-1", models.StudentFilter{Year: 2})
	require.NoError(t, err)
	assert.True(t, stale)
	require.Len(t, students, 1)
	assert.Equal(t, "Ravi Kumar", students[0].FullName)
}

func TestStudentListOutageWithColdCacheFails(t *testing.T) {
	svc, repo, _ := newStudentFixture()
	repo.listErr = context.DeadlineExceeded

	_, stale, err := svc.List(context.Background(), "uid-1", models.StudentFilter{})
	require.Error(t, err)
	assert.False(t, stale)
}

func TestStudentUpdateMovesCohort(t *testing.T) {
	svc, _, _ := newStudentFixture()
	_, err := svc.Create(context.Background(), createStudentReq("CS2025001", "Asha Nair", 1))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), "CS2025001", UpdateStudentRequest{
		FullName: "Asha Nair",
		Email:    "CS2025001@example.edu",
		Course:   "PG",
		Program:  "M.Sc CS",
		Year:     2,
		FeesPaid: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Year)
	assert.True(t, updated.FeesPaid)

	got, err := svc.Get(context.Background(), "CS2025001")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Year)
}

func TestStudentDeletePurgesCachedLists(t *testing.T) {
	svc, _, cache := newStudentFixture()
	_, err := svc.Create(context.Background(), createStudentReq("CS2025001", "Asha Nair", 1))
	require.NoError(t, err)
	_, _, err = svc.List(context.Background(), "uid-1", models.StudentFilter{})
	require.NoError(t, err)
	require.True(t, cache.has(repository.EntityListKey("uid-1", "students")))

	require.NoError(t, svc.Delete(context.Background(), "CS2025001"))
	assert.False(t, cache.has(repository.EntityListKey("uid-1", "students")))

	_, err = svc.Get(context.Background(), "CS2025001")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
