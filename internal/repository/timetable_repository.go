package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/pudocs/dept-portal-api/internal/docstore"
	"github.com/pudocs/dept-portal-api/internal/models"
)

// TimetablesCollection holds weekly timetables keyed by class id.
const TimetablesCollection = "timetables"

// TimetableRepository manages timetable documents.
type TimetableRepository struct {
	store docstore.Store
}

// NewTimetableRepository constructs a TimetableRepository.
func NewTimetableRepository(store docstore.Store) *TimetableRepository {
	return &TimetableRepository{store: store}
}

// ClassID derives the timetable document id for a cohort.
func ClassID(course, program string, year int, section string) string {
	id := docstore.PartitionCollection(course, program, year)
	if section != "" {
		id += "_" + section
	}
	return id
}

// Find fetches the timetable for a class.
func (r *TimetableRepository) Find(ctx context.Context, classID string) (*models.Timetable, error) {
	doc, err := r.store.Get(ctx, TimetablesCollection, classID)
	if err != nil {
		return nil, err
	}
	var tt models.Timetable
	if err := docstore.DataTo(doc, &tt); err != nil {
		return nil, err
	}
	return &tt, nil
}

// Save replaces the timetable for its class.
func (r *TimetableRepository) Save(ctx context.Context, tt *models.Timetable) error {
	if tt.ClassID == "" {
		tt.ClassID = ClassID(tt.Course, tt.Program, tt.Year, tt.Section)
	}
	tt.UpdatedAt = time.Now().UTC()
	if err := r.store.Set(ctx, TimetablesCollection, tt.ClassID, tt); err != nil {
		return fmt.Errorf("save timetable %s: %w", tt.ClassID, err)
	}
	return nil
}

// Delete removes a class timetable.
func (r *TimetableRepository) Delete(ctx context.Context, classID string) error {
	if err := r.store.Delete(ctx, TimetablesCollection, classID); err != nil {
		return fmt.Errorf("delete timetable %s: %w", classID, err)
	}
	return nil
}
