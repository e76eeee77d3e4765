package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pudocs/dept-portal-api/internal/docstore"
	"github.com/pudocs/dept-portal-api/internal/models"
)

func newStudent() *models.Student {
	return &models.Student{
		RegisterNumber: "CS2025001",
		FullName:       "Asha Nair",
		Email:          "asha@example.edu",
		Course:         "PG",
		Program:        "M.Sc CS",
		Year:           1,
	}
}

func TestStudentCreateWritesBothCopies(t *testing.T) {
	store := docstore.NewMemStore()
	repo := NewStudentRepository(store, nil)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newStudent()))

	// Global copy.
	global, err := store.Get(ctx, StudentsCollection, "CS2025001")
	require.NoError(t, err)

	// Partition copy under the derived collection name.
	partition, err := store.Get(ctx, "pg_msc_cs_year1", "CS2025001")
	require.NoError(t, err)

	assert.Equal(t, global.Data, partition.Data, "copies must be field-identical")
}

func TestStudentCreateRollsBackOnMirrorFailure(t *testing.T) {
	store := docstore.NewMemStore()
	boom := errors.New("unavailable")
	store.WriteErr = func(col, id string) error {
		if col == StudentsCollection {
			return boom
		}
		return nil
	}
	repo := NewStudentRepository(store, nil)

	err := repo.Create(context.Background(), newStudent())
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 0, store.Len(StudentsCollection))
	assert.Equal(t, 0, store.Len("pg_msc_cs_year1"))
}

func TestStudentPartitionReadRoundTrip(t *testing.T) {
	store := docstore.NewMemStore()
	repo := NewStudentRepository(store, nil)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newStudent()))

	students, err := repo.List(ctx, models.StudentFilter{Course: "PG", Program: "M.Sc CS", Year: 1})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "CS2025001", students[0].RegisterNumber)
}

func TestStudentUpdateRelocatesPartitionCopy(t *testing.T) {
	store := docstore.NewMemStore()
	repo := NewStudentRepository(store, nil)
	ctx := context.Background()

	existing := newStudent()
	require.NoError(t, repo.Create(ctx, existing))

	updated := *existing
	updated.Year = 2
	require.NoError(t, repo.Update(ctx, existing, &updated))

	_, err := store.Get(ctx, "pg_msc_cs_year1", "CS2025001")
	assert.ErrorIs(t, err, docstore.ErrDocNotFound, "old partition copy removed")

	_, err = store.Get(ctx, "pg_msc_cs_year2", "CS2025001")
	assert.NoError(t, err, "new partition copy present")

	got, err := repo.FindByRegisterNumber(ctx, "CS2025001")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Year)
}

func TestStudentDeleteRemovesBothCopies(t *testing.T) {
	store := docstore.NewMemStore()
	repo := NewStudentRepository(store, nil)
	ctx := context.Background()

	student := newStudent()
	require.NoError(t, repo.Create(ctx, student))
	require.NoError(t, repo.Delete(ctx, student))

	assert.Equal(t, 0, store.Len(StudentsCollection))
	assert.Equal(t, 0, store.Len("pg_msc_cs_year1"))
}

func TestStudentFindByEmail(t *testing.T) {
	store := docstore.NewMemStore()
	repo := NewStudentRepository(store, nil)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newStudent()))

	got, err := repo.FindByEmail(ctx, "asha@example.edu")
	require.NoError(t, err)
	assert.Equal(t, "CS2025001", got.RegisterNumber)

	_, err = repo.FindByEmail(ctx, "unknown@example.edu")
	assert.ErrorIs(t, err, docstore.ErrDocNotFound)
}

func TestStudentListGlobalFilters(t *testing.T) {
	store := docstore.NewMemStore()
	repo := NewStudentRepository(store, nil)
	ctx := context.Background()

	first := newStudent()
	require.NoError(t, repo.Create(ctx, first))

	second := newStudent()
	second.RegisterNumber = "CS2025002"
	second.Email = "ravi@example.edu"
	second.Program = "MCA"
	require.NoError(t, repo.Create(ctx, second))

	// Course-only filter cannot pin a partition; the global collection serves it.
	students, err := repo.List(ctx, models.StudentFilter{Course: "PG", Program: "MCA"})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "CS2025002", students[0].RegisterNumber)
}

func TestStudentMissingPartitionCopyLogged(t *testing.T) {
	store := docstore.NewMemStore()
	core, logs := observer.New(zap.WarnLevel)
	repo := NewStudentRepository(store, zap.New(core))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newStudent()))

	// a pre-transactional writer deleted only the partition copy
	require.NoError(t, store.Delete(ctx, "pg_msc_cs_year1", "CS2025001"))

	got, err := repo.FindByRegisterNumber(ctx, "CS2025001")
	require.NoError(t, err, "drift never fails the read")
	assert.Equal(t, "Asha Nair", got.FullName)

	entries := logs.FilterMessage("student missing from partition collection").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "pg_msc_cs_year1", entries[0].ContextMap()["partition"])
}

func TestStudentStalePartitionCopyLogged(t *testing.T) {
	store := docstore.NewMemStore()
	core, logs := observer.New(zap.WarnLevel)
	repo := NewStudentRepository(store, zap.New(core))
	ctx := context.Background()

	student := newStudent()
	require.NoError(t, repo.Create(ctx, student))

	// a pre-transactional writer updated only the partition copy
	stale := *student
	stale.FullName = "Asha N"
	stale.UpdatedAt = student.UpdatedAt.Add(time.Minute)
	require.NoError(t, store.Set(ctx, "pg_msc_cs_year1", "CS2025001", &stale))

	_, err := repo.FindByRegisterNumber(ctx, "CS2025001")
	require.NoError(t, err)

	entries := logs.FilterMessage("student partition copy diverged from global copy").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "CS2025001", entries[0].ContextMap()["register_number"])
}
