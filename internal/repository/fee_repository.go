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

// FeesCollection holds per-student fee records.
const FeesCollection = "fees"

// FeeRepository manages fee status documents.
type FeeRepository struct {
	store docstore.Store
}

// NewFeeRepository constructs a FeeRepository.
func NewFeeRepository(store docstore.Store) *FeeRepository {
	return &FeeRepository{store: store}
}

// Save creates or replaces a fee record, generating its id when missing.
func (r *FeeRepository) Save(ctx context.Context, record *models.FeeRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	if err := r.store.Set(ctx, FeesCollection, record.ID, record); err != nil {
		return fmt.Errorf("save fee record %s: %w", record.ID, err)
	}
	return nil
}

// Find fetches a fee record by id.
func (r *FeeRepository) Find(ctx context.Context, id string) (*models.FeeRecord, error) {
	doc, err := r.store.Get(ctx, FeesCollection, id)
	if err != nil {
		return nil, err
	}
	var record models.FeeRecord
	if err := docstore.DataTo(doc, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByStudent returns a student's fee records, newest academic year first.
func (r *FeeRepository) ListByStudent(ctx context.Context, registerNumber string) ([]models.FeeRecord, error) {
	docs, err := r.store.Query(ctx, FeesCollection, []docstore.Filter{{Field: "register_number", Value: registerNumber}})
	if err != nil {
		return nil, fmt.Errorf("list fees for %s: %w", registerNumber, err)
	}
	records := make([]models.FeeRecord, 0, len(docs))
	for i := range docs {
		var rec models.FeeRecord
		if err := docstore.DataTo(&docs[i], &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].AcademicYear > records[j].AcademicYear })
	return records, nil
}
