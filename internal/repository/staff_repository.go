package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pudocs/dept-portal-api/internal/docstore"
	"github.com/pudocs/dept-portal-api/internal/models"
)

// StaffCollection holds staff documents keyed by email.
const StaffCollection = "staff"

// StaffRepository manages staff documents. Delete is a soft delete: the
// Active flag flips false and the record stays addressable by email.
type StaffRepository struct {
	store docstore.Store
}

// NewStaffRepository constructs a StaffRepository.
func NewStaffRepository(store docstore.Store) *StaffRepository {
	return &StaffRepository{store: store}
}

// List returns staff matching the filter. Soft-deleted staff are excluded
// unless the filter opts in.
func (r *StaffRepository) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, error) {
	var filters []docstore.Filter
	if filter.Department != "" {
		filters = append(filters, docstore.Filter{Field: "department", Value: filter.Department})
	}
	if filter.Designation != "" {
		filters = append(filters, docstore.Filter{Field: "designation", Value: filter.Designation})
	}
	if !filter.IncludeDeleted {
		filters = append(filters, docstore.Filter{Field: "active", Value: true})
	}

	docs, err := r.store.Query(ctx, StaffCollection, filters)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}

	staff := make([]models.Staff, 0, len(docs))
	for i := range docs {
		var s models.Staff
		if err := docstore.DataTo(&docs[i], &s); err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	sort.Slice(staff, func(i, j int) bool { return staff[i].Email < staff[j].Email })
	return staff, nil
}

// FindByEmail returns the staff record regardless of its Active flag.
func (r *StaffRepository) FindByEmail(ctx context.Context, email string) (*models.Staff, error) {
	doc, err := r.store.Get(ctx, StaffCollection, email)
	if err != nil {
		return nil, err
	}
	var staff models.Staff
	if err := docstore.DataTo(doc, &staff); err != nil {
		return nil, err
	}
	return &staff, nil
}

// Create writes a new staff document.
func (r *StaffRepository) Create(ctx context.Context, staff *models.Staff) error {
	now := time.Now().UTC()
	if staff.CreatedAt.IsZero() {
		staff.CreatedAt = now
	}
	staff.UpdatedAt = now
	if err := r.store.Set(ctx, StaffCollection, staff.Email, staff); err != nil {
		return fmt.Errorf("create staff %s: %w", staff.Email, err)
	}
	return nil
}

// Update replaces the staff document.
func (r *StaffRepository) Update(ctx context.Context, staff *models.Staff) error {
	staff.UpdatedAt = time.Now().UTC()
	if err := r.store.Set(ctx, StaffCollection, staff.Email, staff); err != nil {
		return fmt.Errorf("update staff %s: %w", staff.Email, err)
	}
	return nil
}

// SoftDelete flips the Active flag inside a transaction so a concurrent
// update cannot resurrect the record mid-delete.
func (r *StaffRepository) SoftDelete(ctx context.Context, email string) error {
	err := r.store.RunTransaction(ctx, func(tx docstore.Tx) error {
		doc, err := tx.Get(StaffCollection, email)
		if err != nil {
			return err
		}
		var staff models.Staff
		if err := docstore.DataTo(doc, &staff); err != nil {
			return err
		}
		staff.Active = false
		staff.UpdatedAt = time.Now().UTC()
		return tx.Set(StaffCollection, email, &staff)
	})
	if err != nil {
		return fmt.Errorf("soft delete staff %s: %w", email, err)
	}
	return nil
}
