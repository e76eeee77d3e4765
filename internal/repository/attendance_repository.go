package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pudocs/dept-portal-api/internal/docstore"
	"github.com/pudocs/dept-portal-api/internal/models"
)

// AttendanceCollection holds session attendance keyed by date+subject.
const AttendanceCollection = "attendance"

// AttendanceRepository manages attendance session documents.
type AttendanceRepository struct {
	store docstore.Store
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(store docstore.Store) *AttendanceRepository {
	return &AttendanceRepository{store: store}
}

// Upsert writes a session record under its composite key. Re-marking the
// same date+subject replaces the earlier record.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	record.ID = models.AttendanceKey(record.Date, record.Subject)
	if record.MarkedAt.IsZero() {
		record.MarkedAt = time.Now().UTC()
	}
	if err := r.store.Set(ctx, AttendanceCollection, record.ID, record); err != nil {
		return fmt.Errorf("save attendance %s: %w", record.ID, err)
	}
	return nil
}

// Find fetches the record for one date and subject.
func (r *AttendanceRepository) Find(ctx context.Context, date, subject string) (*models.AttendanceRecord, error) {
	doc, err := r.store.Get(ctx, AttendanceCollection, models.AttendanceKey(date, subject))
	if err != nil {
		return nil, err
	}
	var record models.AttendanceRecord
	if err := docstore.DataTo(doc, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByDate returns every session marked on a date.
func (r *AttendanceRepository) ListByDate(ctx context.Context, date string) ([]models.AttendanceRecord, error) {
	docs, err := r.store.Query(ctx, AttendanceCollection, []docstore.Filter{{Field: "date", Value: date}})
	if err != nil {
		return nil, fmt.Errorf("list attendance for %s: %w", date, err)
	}
	records := make([]models.AttendanceRecord, 0, len(docs))
	for i := range docs {
		var rec models.AttendanceRecord
		if err := docstore.DataTo(&docs[i], &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Subject < records[j].Subject })
	return records, nil
}

// ListBySubject returns every session for a subject.
func (r *AttendanceRepository) ListBySubject(ctx context.Context, subject string) ([]models.AttendanceRecord, error) {
	docs, err := r.store.Query(ctx, AttendanceCollection, []docstore.Filter{{Field: "subject", Value: subject}})
	if err != nil {
		return nil, fmt.Errorf("list attendance for subject %s: %w", subject, err)
	}
	records := make([]models.AttendanceRecord, 0, len(docs))
	for i := range docs {
		var rec models.AttendanceRecord
		if err := docstore.DataTo(&docs[i], &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date < records[j].Date })
	return records, nil
}
