package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pudocs/dept-portal-api/internal/docstore"
	"github.com/pudocs/dept-portal-api/internal/models"
	"github.com/pudocs/dept-portal-api/internal/repository"
	"github.com/pudocs/dept-portal-api/pkg/config"
	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
)

type userRepository interface {
	FindProfileByUID(ctx context.Context, uid string) (*models.UserProfile, error)
	FindProfileByEmail(ctx context.Context, email string) (*models.UserProfile, error)
	SaveProfile(ctx context.Context, profile *models.UserProfile) error
	FindManualByEmail(ctx context.Context, email string) (*models.ManualRegistration, error)
	CreateManual(ctx context.Context, reg *models.ManualRegistration) error
	UpdateManual(ctx context.Context, reg *models.ManualRegistration) error
}

type staffLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.Staff, error)
}

type studentEmailLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
}

// RegisterManualRequest provisions an office or parent account with a locally
// stored password.
type RegisterManualRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=6"`
	FullName string          `json:"full_name" validate:"required"`
	Role     models.UserRole `json:"role" validate:"required,oneof=OFFICE PARENT"`
}

// AuthService authenticates users against the identity provider or the
// manual-registration store, resolves their role through the probe chain, and
// issues session tokens.
type AuthService struct {
	identity  identityClient
	users     userRepository
	staff     staffLookup
	students  studentEmailLookup
	cache     cacheStore
	jwtCfg    config.JWTConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(identity identityClient, users userRepository, staff staffLookup, students studentEmailLookup, cache cacheStore, jwtCfg config.JWTConfig, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		identity:  identity,
		users:     users,
		staff:     staff,
		students:  students,
		cache:     cache,
		jwtCfg:    jwtCfg,
		validator: validate,
		logger:    logger,
	}
}

// ResolveRole walks the probe chain for an email: staff wins over student,
// student over manual registration, and an unknown email is auto-provisioned
// as a student profile. The outcome is tagged with its source so callers can
// tell a directory hit from a default.
func (s *AuthService) ResolveRole(ctx context.Context, uid, email string) (*models.RoleResolution, error) {
	now := time.Now().UTC()

	if staff, err := s.staff.FindByEmail(ctx, email); err == nil {
		if !staff.Active {
			return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "staff account is inactive")
		}
		role := models.RoleStaff
		if staff.Designation == "Office" {
			role = models.RoleOffice
		}
		profile := s.refreshProfile(ctx, uid, email, staff.FullName, role)
		return &models.RoleResolution{Role: role, Source: models.RoleSourceStaff, Profile: profile, Resolved: now}, nil
	} else if !errors.Is(err, docstore.ErrDocNotFound) {
		return nil, fmt.Errorf("probe staff: %w", err)
	}

	if student, err := s.students.FindByEmail(ctx, email); err == nil {
		profile := s.refreshProfile(ctx, uid, email, student.FullName, models.RoleStudent)
		return &models.RoleResolution{Role: models.RoleStudent, Source: models.RoleSourceStudent, Profile: profile, Resolved: now}, nil
	} else if !errors.Is(err, docstore.ErrDocNotFound) {
		return nil, fmt.Errorf("probe students: %w", err)
	}

	if reg, err := s.users.FindManualByEmail(ctx, email); err == nil {
		if !reg.Active {
			return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
		}
		profile := s.refreshProfile(ctx, uid, email, reg.FullName, reg.Role)
		return &models.RoleResolution{Role: reg.Role, Source: models.RoleSourceManual, Profile: profile, Resolved: now}, nil
	} else if !errors.Is(err, docstore.ErrDocNotFound) {
		return nil, fmt.Errorf("probe manual registrations: %w", err)
	}

	profile := s.refreshProfile(ctx, uid, email, "", models.RoleStudent)
	return &models.RoleResolution{Role: models.RoleStudent, Source: models.RoleSourceProvisioned, Profile: profile, Resolved: now}, nil
}

// refreshProfile upserts the uid-keyed profile with the resolved role. The
// profile write is best-effort; login still succeeds without it.
func (s *AuthService) refreshProfile(ctx context.Context, uid, email, fullName string, role models.UserRole) *models.UserProfile {
	profile, err := s.users.FindProfileByUID(ctx, uid)
	if err != nil {
		profile = &models.UserProfile{UID: uid, Email: email, Active: true}
	}
	profile.Role = role
	if fullName != "" {
		profile.FullName = fullName
	}
	if err := s.users.SaveProfile(ctx, profile); err != nil {
		s.logger.Warn("failed to refresh profile", zap.String("uid", uid), zap.Error(err))
	}
	return profile
}

// LoginWithIDToken authenticates a Firebase-backed user.
func (s *AuthService) LoginWithIDToken(ctx context.Context, req models.TokenLoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	token, err := s.identity.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired id token")
	}

	resolution, err := s.ResolveRole(ctx, token.UID, token.Email)
	if err != nil {
		return nil, err
	}

	fullName := ""
	if resolution.Profile != nil {
		fullName = resolution.Profile.FullName
	}
	return s.issueSession(ctx, models.UserInfo{
		UID:      token.UID,
		Email:    token.Email,
		FullName: fullName,
		Role:     resolution.Role,
	}, resolution.Source)
}

// LoginManual authenticates an office or parent account registered outside
// the identity provider.
func (s *AuthService) LoginManual(ctx context.Context, req models.ManualLoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	reg, err := s.users.FindManualByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}
	if !reg.Active {
		return nil, appErrors.ErrInactiveAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(reg.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	return s.issueSession(ctx, models.UserInfo{
		UID:      reg.ID,
		Email:    reg.Email,
		FullName: reg.FullName,
		Role:     reg.Role,
	}, models.RoleSourceManual)
}

// Register provisions a profile for a fresh identity-provider account and
// signs the user in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid register payload")
	}
	token, err := s.identity.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired id token")
	}

	resolution, err := s.ResolveRole(ctx, token.UID, token.Email)
	if err != nil {
		return nil, err
	}
	if resolution.Profile != nil && req.FullName != "" {
		resolution.Profile.FullName = req.FullName
		if err := s.users.SaveProfile(ctx, resolution.Profile); err != nil {
			s.logger.Warn("failed to store full name", zap.String("uid", token.UID), zap.Error(err))
		}
	}

	return s.issueSession(ctx, models.UserInfo{
		UID:      token.UID,
		Email:    token.Email,
		FullName: req.FullName,
		Role:     resolution.Role,
	}, resolution.Source)
}

// RegisterManual creates an office or parent account with a bcrypt-hashed
// password stored alongside the record.
func (s *AuthService) RegisterManual(ctx context.Context, req RegisterManualRequest) (*models.ManualRegistration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid register payload")
	}
	if _, err := s.users.FindManualByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, docstore.ErrDocNotFound) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	reg := &models.ManualRegistration{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         req.Role,
		Active:       true,
	}
	if err := s.users.CreateManual(ctx, reg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
	}
	return reg, nil
}

// ChangePassword rotates a credential after re-authentication. Firebase
// accounts present a fresh ID token; manual accounts present their current
// password. A failed re-auth leaves the stored credential untouched.
func (s *AuthService) ChangePassword(ctx context.Context, user models.UserInfo, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid password payload")
	}

	if req.IDToken != "" {
		token, err := s.identity.VerifyIDToken(ctx, req.IDToken)
		if err != nil || token.UID != user.UID {
			return appErrors.Clone(appErrors.ErrUnauthorized, "re-authentication failed")
		}
		if err := s.identity.UpdatePassword(ctx, user.UID, req.NewPassword); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
		}
		return nil
	}

	reg, err := s.users.FindManualByEmail(ctx, user.Email)
	if err != nil {
		if errors.Is(err, docstore.ErrDocNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(reg.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	reg.PasswordHash = string(hash)
	if err := s.users.UpdateManual(ctx, reg); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}
	return nil
}

// Logout clears the cached session and profile for a user.
func (s *AuthService) Logout(ctx context.Context, uid string) error {
	for _, key := range []string{
		repository.SessionKey(uid),
		repository.ProfileKey(uid),
		repository.SyncStatusKey(uid),
	} {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to clear cached key on logout", zap.String("key", key), zap.Error(err))
		}
	}
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("entities:%s:*", uid)); err != nil {
		s.logger.Warn("failed to clear cached entities on logout", zap.String("uid", uid), zap.Error(err))
	}
	return nil
}

// ValidateToken parses and verifies a session token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

// CurrentSession returns the cached session snapshot for a user.
func (s *AuthService) CurrentSession(ctx context.Context, uid string) (*models.Session, error) {
	var session models.Session
	if err := s.cache.Get(ctx, repository.SessionKey(uid), &session); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active session")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return &session, nil
}

func (s *AuthService) issueSession(ctx context.Context, user models.UserInfo, source models.RoleSource) (*models.LoginResponse, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.jwtCfg.Expiration)

	claims := models.JWTClaims{
		UID:   user.UID,
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtCfg.Issuer,
			Subject:   user.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	session := models.Session{
		UID:       user.UID,
		Email:     user.Email,
		Role:      user.Role,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}
	if err := s.cache.Set(ctx, repository.SessionKey(user.UID), session); err != nil {
		s.logger.Warn("failed to cache session", zap.String("uid", user.UID), zap.Error(err))
	}

	return &models.LoginResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.jwtCfg.Expiration.Seconds()),
		IssuedAt:    now,
		User:        user,
		RoleSource:  source,
	}, nil
}
