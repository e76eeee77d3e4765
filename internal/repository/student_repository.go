package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/pudocs/dept-portal-api/internal/docstore"
	"github.com/pudocs/dept-portal-api/internal/models"
)

// StudentsCollection is the flat global collection holding every student.
const StudentsCollection = "students"

// StudentRepository manages student documents. Every student lives in two
// places: the class-partition collection derived from course/program/year and
// the global collection. Both copies are written and deleted inside a single
// transaction so they cannot diverge.
type StudentRepository struct {
	store  docstore.Store
	logger *zap.Logger
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(store docstore.Store, logger *zap.Logger) *StudentRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentRepository{store: store, logger: logger}
}

// List returns students matching the filter. When the filter pins down a
// class partition the partition collection is queried directly; otherwise the
// global collection is filtered field by field.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	var (
		col     string
		filters []docstore.Filter
	)
	if filter.Partitioned() {
		col = docstore.PartitionCollection(filter.Course, filter.Program, filter.Year)
		if filter.Section != "" {
			filters = append(filters, docstore.Filter{Field: "section", Value: filter.Section})
		}
	} else {
		col = StudentsCollection
		if filter.Course != "" {
			filters = append(filters, docstore.Filter{Field: "course", Value: filter.Course})
		}
		if filter.Program != "" {
			filters = append(filters, docstore.Filter{Field: "program", Value: filter.Program})
		}
		if filter.Year > 0 {
			filters = append(filters, docstore.Filter{Field: "year", Value: filter.Year})
		}
		if filter.Section != "" {
			filters = append(filters, docstore.Filter{Field: "section", Value: filter.Section})
		}
	}

	docs, err := r.store.Query(ctx, col, filters)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	students := make([]models.Student, 0, len(docs))
	for i := range docs {
		var s models.Student
		if err := docstore.DataTo(&docs[i], &s); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	sort.Slice(students, func(i, j int) bool {
		return students[i].RegisterNumber < students[j].RegisterNumber
	})
	return students, nil
}

// FindByRegisterNumber loads a student from the global collection and checks
// the partition copy for drift left behind by pre-transactional writers.
func (r *StudentRepository) FindByRegisterNumber(ctx context.Context, registerNumber string) (*models.Student, error) {
	doc, err := r.store.Get(ctx, StudentsCollection, registerNumber)
	if err != nil {
		return nil, err
	}
	var student models.Student
	if err := docstore.DataTo(doc, &student); err != nil {
		return nil, err
	}

	r.checkPartitionDrift(ctx, &student)
	return &student, nil
}

// FindByEmail looks a student up through the global collection.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	docs, err := r.store.Query(ctx, StudentsCollection, []docstore.Filter{{Field: "email", Value: email}})
	if err != nil {
		return nil, fmt.Errorf("find student by email: %w", err)
	}
	if len(docs) == 0 {
		return nil, docstore.ErrDocNotFound
	}
	var student models.Student
	if err := docstore.DataTo(&docs[0], &student); err != nil {
		return nil, err
	}
	return &student, nil
}

// Exists reports whether a register number is already taken.
func (r *StudentRepository) Exists(ctx context.Context, registerNumber string) (bool, error) {
	_, err := r.store.Get(ctx, StudentsCollection, registerNumber)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check register number: %w", err)
	}
	return true, nil
}

// Create writes the partition and global copies atomically.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now

	partition := docstore.PartitionCollection(student.Course, student.Program, student.Year)
	err := r.store.RunTransaction(ctx, func(tx docstore.Tx) error {
		if err := tx.Set(partition, student.RegisterNumber, student); err != nil {
			return err
		}
		return tx.Set(StudentsCollection, student.RegisterNumber, student)
	})
	if err != nil {
		return fmt.Errorf("create student %s: %w", student.RegisterNumber, err)
	}
	return nil
}

// Update rewrites both copies, relocating the partition copy when the cohort
// fields changed.
func (r *StudentRepository) Update(ctx context.Context, existing, updated *models.Student) error {
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	oldPartition := docstore.PartitionCollection(existing.Course, existing.Program, existing.Year)
	newPartition := docstore.PartitionCollection(updated.Course, updated.Program, updated.Year)

	err := r.store.RunTransaction(ctx, func(tx docstore.Tx) error {
		if oldPartition != newPartition {
			if err := tx.Delete(oldPartition, existing.RegisterNumber); err != nil {
				return err
			}
		}
		if err := tx.Set(newPartition, updated.RegisterNumber, updated); err != nil {
			return err
		}
		return tx.Set(StudentsCollection, updated.RegisterNumber, updated)
	})
	if err != nil {
		return fmt.Errorf("update student %s: %w", updated.RegisterNumber, err)
	}
	return nil
}

// Delete removes the partition and global copies atomically.
func (r *StudentRepository) Delete(ctx context.Context, student *models.Student) error {
	partition := docstore.PartitionCollection(student.Course, student.Program, student.Year)
	err := r.store.RunTransaction(ctx, func(tx docstore.Tx) error {
		if err := tx.Delete(partition, student.RegisterNumber); err != nil {
			return err
		}
		return tx.Delete(StudentsCollection, student.RegisterNumber)
	})
	if err != nil {
		return fmt.Errorf("delete student %s: %w", student.RegisterNumber, err)
	}
	return nil
}

// checkPartitionDrift logs when the partition copy is missing or stale.
// Documents written before transactional dual writes can still be drifted;
// detection is best-effort and never fails the read.
func (r *StudentRepository) checkPartitionDrift(ctx context.Context, student *models.Student) {
	partition := docstore.PartitionCollection(student.Course, student.Program, student.Year)
	doc, err := r.store.Get(ctx, partition, student.RegisterNumber)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			r.logger.Warn("student missing from partition collection",
				zap.String("register_number", student.RegisterNumber),
				zap.String("partition", partition))
		}
		return
	}

	var copy models.Student
	if err := docstore.DataTo(doc, &copy); err != nil {
		return
	}
	if !copy.UpdatedAt.Equal(student.UpdatedAt) {
		r.logger.Warn("student partition copy diverged from global copy",
			zap.String("register_number", student.RegisterNumber),
			zap.String("partition", partition),
			zap.Time("partition_updated_at", copy.UpdatedAt),
			zap.Time("global_updated_at", student.UpdatedAt))
	}
}
