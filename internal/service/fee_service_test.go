package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pudocs/dept-portal-api/internal/docstore"
	"github.com/pudocs/dept-portal-api/internal/models"
	"github.com/pudocs/dept-portal-api/internal/repository"
	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
)

func newFeeFixture(t *testing.T) (*FeeService, *repository.StudentRepository) {
	t.Helper()
	store := docstore.NewMemStore()
	students := repository.NewStudentRepository(store, nil)
	require.NoError(t, students.Create(context.Background(), &models.Student{
		RegisterNumber: "CS2025001",
		FullName:       "Asha Nair",
		Email:          "asha@example.edu",
		Course:         "PG",
		Program:        "M.Sc CS",
		Year:           1,
	}))
	return NewFeeService(repository.NewFeeRepository(store), students, nil, nil), students
}

func TestFeeRecordFullPaymentSetsFeesPaid(t *testing.T) {
	svc, students := newFeeFixture(t)

	record, err := svc.Record(context.Background(), RecordFeeRequest{
		RegisterNumber: "CS2025001",
		AcademicYear:   "2026-27",
		AmountDue:      25000,
		AmountPaid:     25000,
		ReceiptNumber:  "RCPT-001",
	})
	require.NoError(t, err)
	assert.True(t, record.Paid)
	require.NotNil(t, record.PaidAt)

	student, err := students.FindByRegisterNumber(context.Background(), "CS2025001")
	require.NoError(t, err)
	assert.True(t, student.FeesPaid)
}

func TestFeeRecordPartialPaymentLeavesFlagUnset(t *testing.T) {
	svc, students := newFeeFixture(t)

	record, err := svc.Record(context.Background(), RecordFeeRequest{
		RegisterNumber: "CS2025001",
		AcademicYear:   "2026-27",
		AmountDue:      25000,
		AmountPaid:     10000,
	})
	require.NoError(t, err)
	assert.False(t, record.Paid)
	assert.Nil(t, record.PaidAt)

	student, err := students.FindByRegisterNumber(context.Background(), "CS2025001")
	require.NoError(t, err)
	assert.False(t, student.FeesPaid)
}

func TestFeeRecordUnknownStudent(t *testing.T) {
	svc, _ := newFeeFixture(t)

	_, err := svc.Record(context.Background(), RecordFeeRequest{
		RegisterNumber: "CS2099999",
		AcademicYear:   "2026-27",
		AmountDue:      25000,
		AmountPaid:     25000,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

// brokenStudentWriter finds students but refuses updates.
type brokenStudentWriter struct {
	students map[string]*models.Student
}

func (w *brokenStudentWriter) FindByRegisterNumber(_ context.Context, registerNumber string) (*models.Student, error) {
	student, ok := w.students[registerNumber]
	if !ok {
		return nil, docstore.ErrDocNotFound
	}
	return student, nil
}

func (w *brokenStudentWriter) Update(_ context.Context, _, _ *models.Student) error {
	return errors.New("remote unavailable")
}

func TestFeeRecordSurvivesFlagSyncFailure(t *testing.T) {
	store := docstore.NewMemStore()
	writer := &brokenStudentWriter{students: map[string]*models.Student{
		"CS2025001": {RegisterNumber: "CS2025001"},
	}}
	svc := NewFeeService(repository.NewFeeRepository(store), writer, nil, nil)

	record, err := svc.Record(context.Background(), RecordFeeRequest{
		RegisterNumber: "CS2025001",
		AcademicYear:   "2026-27",
		AmountDue:      25000,
		AmountPaid:     25000,
	})
	require.NoError(t, err, "fee record wins even when the flag sync fails")
	assert.True(t, record.Paid)

	got, err := svc.Get(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-27", got.AcademicYear)
}

func TestFeeListByStudent(t *testing.T) {
	svc, _ := newFeeFixture(t)

	for _, year := range []string{"2025-26", "2026-27"} {
		_, err := svc.Record(context.Background(), RecordFeeRequest{
			RegisterNumber: "CS2025001",
			AcademicYear:   year,
			AmountDue:      25000,
			AmountPaid:     25000,
		})
		require.NoError(t, err)
	}

	records, err := svc.ListByStudent(context.Background(), "CS2025001")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
