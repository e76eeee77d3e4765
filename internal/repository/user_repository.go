package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pudocs/dept-portal-api/internal/docstore"
	"github.com/pudocs/dept-portal-api/internal/models"
)

// Collections backing identity profiles and manual registrations.
const (
	ProfilesCollection            = "profiles"
	ManualRegistrationsCollection = "manual_registrations"
)

// UserRepository manages profile documents keyed by identity-provider UID and
// the manual-registration records keyed by email.
type UserRepository struct {
	store docstore.Store
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(store docstore.Store) *UserRepository {
	return &UserRepository{store: store}
}

// FindProfileByUID returns the profile for an identity UID.
func (r *UserRepository) FindProfileByUID(ctx context.Context, uid string) (*models.UserProfile, error) {
	doc, err := r.store.Get(ctx, ProfilesCollection, uid)
	if err != nil {
		return nil, err
	}
	var profile models.UserProfile
	if err := docstore.DataTo(doc, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindProfileByEmail queries the profiles collection by email. UID lookup is
// the primary path; this exists for the role probe chain.
func (r *UserRepository) FindProfileByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	docs, err := r.store.Query(ctx, ProfilesCollection, []docstore.Filter{{Field: "email", Value: email}})
	if err != nil {
		return nil, fmt.Errorf("find profile by email: %w", err)
	}
	if len(docs) == 0 {
		return nil, docstore.ErrDocNotFound
	}
	var profile models.UserProfile
	if err := docstore.DataTo(&docs[0], &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SaveProfile creates or replaces a profile document.
func (r *UserRepository) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	if err := r.store.Set(ctx, ProfilesCollection, profile.UID, profile); err != nil {
		return fmt.Errorf("save profile %s: %w", profile.UID, err)
	}
	return nil
}

// FindManualByEmail returns the manual-registration record for an email.
func (r *UserRepository) FindManualByEmail(ctx context.Context, email string) (*models.ManualRegistration, error) {
	doc, err := r.store.Get(ctx, ManualRegistrationsCollection, email)
	if err != nil {
		return nil, err
	}
	var reg models.ManualRegistration
	if err := docstore.DataTo(doc, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// CreateManual registers an office/parent account keyed by email.
func (r *UserRepository) CreateManual(ctx context.Context, reg *models.ManualRegistration) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = time.Now().UTC()
	}
	if err := r.store.Set(ctx, ManualRegistrationsCollection, reg.Email, reg); err != nil {
		return fmt.Errorf("create manual registration %s: %w", reg.Email, err)
	}
	return nil
}

// UpdateManual replaces a manual-registration record.
func (r *UserRepository) UpdateManual(ctx context.Context, reg *models.ManualRegistration) error {
	if err := r.store.Set(ctx, ManualRegistrationsCollection, reg.Email, reg); err != nil {
		return fmt.Errorf("update manual registration %s: %w", reg.Email, err)
	}
	return nil
}
