package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pudocs/dept-portal-api/internal/docstore"
	"github.com/pudocs/dept-portal-api/internal/models"
	"github.com/pudocs/dept-portal-api/internal/repository"
	"github.com/pudocs/dept-portal-api/pkg/config"
	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
)

type authFixture struct {
	svc      *AuthService
	store    *docstore.MemStore
	identity *fakeIdentity
	cache    *memCache
	students *repository.StudentRepository
	staff    *repository.StaffRepository
	users    *repository.UserRepository
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store := docstore.NewMemStore()
	identity := newFakeIdentity()
	cache := newMemCache()
	users := repository.NewUserRepository(store)
	staff := repository.NewStaffRepository(store)
	students := repository.NewStudentRepository(store, nil)

	jwtCfg := config.JWTConfig{Secret: "test_secret", Expiration: time.Hour, Issuer: "dept-portal-api"}
	svc := NewAuthService(identity, users, staff, students, cache, jwtCfg, nil, nil)
	return &authFixture{svc: svc, store: store, identity: identity, cache: cache, students: students, staff: staff, users: users}
}

func (f *authFixture) seedStaff(t *testing.T, email string, active bool) {
	t.Helper()
	require.NoError(t, f.staff.Create(context.Background(), &models.Staff{
		Email:       email,
		FullName:    "Meera Iyer",
		Designation: "Assistant Professor",
		Department:  "Computer Science",
		Active:      active,
	}))
}

func (f *authFixture) seedStudent(t *testing.T, email string) {
	t.Helper()
	require.NoError(t, f.students.Create(context.Background(), &models.Student{
		RegisterNumber: "CS2025001",
		FullName:       "Asha Nair",
		Email:          email,
		Course:         "PG",
		Program:        "M.Sc CS",
		Year:           1,
	}))
}

func TestResolveRoleStaffWinsOverStudent(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	// Same email in both directories: staff takes precedence.
	f.seedStaff(t, "dual@example.edu", true)
	f.seedStudent(t, "dual@example.edu")

	res, err := f.svc.ResolveRole(ctx, "uid-1", "dual@example.edu")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, res.Role)
	assert.Equal(t, models.RoleSourceStaff, res.Source)
}

func TestResolveRoleStudent(t *testing.T) {
	f := newAuthFixture(t)

	f.seedStudent(t, "asha@example.edu")

	res, err := f.svc.ResolveRole(context.Background(), "uid-2", "asha@example.edu")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, res.Role)
	assert.Equal(t, models.RoleSourceStudent, res.Source)
	require.NotNil(t, res.Profile)
	assert.Equal(t, "Asha Nair", res.Profile.FullName)
}

func TestResolveRoleManualRegistration(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.RegisterManual(ctx, RegisterManualRequest{
		Email:    "office@example.edu",
		Password: "secret123",
		FullName: "Office Desk",
		Role:     models.RoleOffice,
	})
	require.NoError(t, err)

	res, err := f.svc.ResolveRole(ctx, "uid-3", "office@example.edu")
	require.NoError(t, err)
	assert.Equal(t, models.RoleOffice, res.Role)
	assert.Equal(t, models.RoleSourceManual, res.Source)
}

func TestResolveRoleAutoProvision(t *testing.T) {
	f := newAuthFixture(t)

	res, err := f.svc.ResolveRole(context.Background(), "uid-4", "nobody@example.edu")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, res.Role)
	assert.Equal(t, models.RoleSourceProvisioned, res.Source)

	// The probe chain persists a uid-keyed profile.
	profile, err := f.users.FindProfileByUID(context.Background(), "uid-4")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, profile.Role)
}

func TestResolveRoleInactiveStaff(t *testing.T) {
	f := newAuthFixture(t)
	f.seedStaff(t, "gone@example.edu", false)

	_, err := f.svc.ResolveRole(context.Background(), "uid-5", "gone@example.edu")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestLoginWithIDToken(t *testing.T) {
	f := newAuthFixture(t)
	f.seedStudent(t, "asha@example.edu")
	f.identity.tokens["good-token"] = IdentityToken{UID: "uid-7", Email: "asha@example.edu"}

	res, err := f.svc.LoginWithIDToken(context.Background(), models.TokenLoginRequest{IDToken: "good-token"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, models.RoleStudent, res.User.Role)
	assert.Equal(t, models.RoleSourceStudent, res.RoleSource)

	// Session snapshot lands in the local tier.
	assert.True(t, f.cache.has(repository.SessionKey("uid-7")))

	claims, err := f.svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "uid-7", claims.UID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestLoginWithBadIDToken(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.LoginWithIDToken(context.Background(), models.TokenLoginRequest{IDToken: "bogus"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestLoginManualWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.RegisterManual(ctx, RegisterManualRequest{
		Email:    "parent@example.edu",
		Password: "correct-horse",
		FullName: "Parent One",
		Role:     models.RoleParent,
	})
	require.NoError(t, err)

	_, err = f.svc.LoginManual(ctx, models.ManualLoginRequest{Email: "parent@example.edu", Password: "wrong"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)

	// The right password still works.
	res, err := f.svc.LoginManual(ctx, models.ManualLoginRequest{Email: "parent@example.edu", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleParent, res.User.Role)
}

func TestChangePasswordWrongCurrentLeavesHashUntouched(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg, err := f.svc.RegisterManual(ctx, RegisterManualRequest{
		Email:    "office@example.edu",
		Password: "original-pass",
		FullName: "Office Desk",
		Role:     models.RoleOffice,
	})
	require.NoError(t, err)

	user := models.UserInfo{UID: reg.ID, Email: reg.Email, Role: reg.Role}
	err = f.svc.ChangePassword(ctx, user, models.ChangePasswordRequest{
		CurrentPassword: "not-the-password",
		NewPassword:     "new-pass-123",
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)

	// Old credential still valid, new one is not.
	_, err = f.svc.LoginManual(ctx, models.ManualLoginRequest{Email: "office@example.edu", Password: "original-pass"})
	assert.NoError(t, err)
	_, err = f.svc.LoginManual(ctx, models.ManualLoginRequest{Email: "office@example.edu", Password: "new-pass-123"})
	assert.Error(t, err)
}

func TestChangePasswordManualSuccess(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg, err := f.svc.RegisterManual(ctx, RegisterManualRequest{
		Email:    "office@example.edu",
		Password: "original-pass",
		FullName: "Office Desk",
		Role:     models.RoleOffice,
	})
	require.NoError(t, err)

	user := models.UserInfo{UID: reg.ID, Email: reg.Email, Role: reg.Role}
	require.NoError(t, f.svc.ChangePassword(ctx, user, models.ChangePasswordRequest{
		CurrentPassword: "original-pass",
		NewPassword:     "new-pass-123",
	}))

	_, err = f.svc.LoginManual(ctx, models.ManualLoginRequest{Email: "office@example.edu", Password: "new-pass-123"})
	assert.NoError(t, err)
}

func TestChangePasswordFirebaseReauth(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.identity.tokens["fresh-token"] = IdentityToken{UID: "uid-9", Email: "asha@example.edu"}

	user := models.UserInfo{UID: "uid-9", Email: "asha@example.edu", Role: models.RoleStudent}
	require.NoError(t, f.svc.ChangePassword(ctx, user, models.ChangePasswordRequest{
		IDToken:     "fresh-token",
		NewPassword: "new-pass-123",
	}))
	assert.Equal(t, "new-pass-123", f.identity.passwordUpdates["uid-9"])

	// A token minted for another uid is rejected.
	f.identity.tokens["other-token"] = IdentityToken{UID: "someone-else", Email: "x@example.edu"}
	err := f.svc.ChangePassword(ctx, user, models.ChangePasswordRequest{
		IDToken:     "other-token",
		NewPassword: "hijack",
	})
	assert.Error(t, err)
}

func TestRegisterManualDuplicate(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	req := RegisterManualRequest{
		Email:    "office@example.edu",
		Password: "secret123",
		FullName: "Office Desk",
		Role:     models.RoleOffice,
	}
	_, err := f.svc.RegisterManual(ctx, req)
	require.NoError(t, err)

	_, err = f.svc.RegisterManual(ctx, req)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestLogoutClearsCachedState(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.cache.Set(ctx, repository.SessionKey("uid-1"), "s"))
	require.NoError(t, f.cache.Set(ctx, repository.EntityListKey("uid-1", "notices"), []string{"n"}))
	require.NoError(t, f.cache.Set(ctx, repository.EntityListKey("uid-2", "notices"), []string{"n"}))

	require.NoError(t, f.svc.Logout(ctx, "uid-1"))

	assert.False(t, f.cache.has(repository.SessionKey("uid-1")))
	assert.False(t, f.cache.has(repository.EntityListKey("uid-1", "notices")))
	assert.True(t, f.cache.has(repository.EntityListKey("uid-2", "notices")))
}
