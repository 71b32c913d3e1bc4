package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaltrack/vitaltrack-api/internal/model"
	pkgauth "github.com/vitaltrack/vitaltrack-api/pkg/auth"
	apperrors "github.com/vitaltrack/vitaltrack-api/pkg/errors"
	"github.com/vitaltrack/vitaltrack-api/pkg/validator"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return apperrors.NewConflict("email already registered", nil)
		}
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NewNotFound("user")
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.NewNotFound("user")
}

func (f *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	f.users[u.ID] = u
	return nil
}

type fakeTokenRepo struct {
	revoked map[string]time.Time
}

func (f *fakeTokenRepo) Revoke(_ context.Context, tokenID string, until time.Time) error {
	f.revoked[tokenID] = until
	return nil
}

func (f *fakeTokenRepo) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := f.revoked[tokenID]
	return ok, nil
}

type fakeEmail struct {
	welcomes []string
	fail     bool
}

func (f *fakeEmail) SendWelcome(to, name string) error {
	if f.fail {
		return errors.New("smtp unavailable")
	}
	f.welcomes = append(f.welcomes, to)
	return nil
}

func (f *fakeEmail) SendRiskAlert(to, patientName string, highRiskProba float64) error {
	return nil
}

type fixture struct {
	svc    *Service
	users  *fakeUserRepo
	tokens *fakeTokenRepo
	email  *fakeEmail
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		users:  &fakeUserRepo{users: map[uuid.UUID]*model.User{}},
		tokens: &fakeTokenRepo{revoked: map[string]time.Time{}},
		email:  &fakeEmail{},
	}
	jwtSvc := pkgauth.NewJWTService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	f.svc = NewService(f.users, f.tokens, jwtSvc, f.email, validator.New())
	return f
}

func registerReq() *model.RegisterRequest {
	return &model.RegisterRequest{
		Name:     "Alex",
		Email:    "alex@example.com",
		Password: "long enough password",
	}
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	tokens, err := f.svc.Register(context.Background(), registerReq())
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	require.NotNil(t, tokens.User)
	assert.Equal(t, model.RoleUser, tokens.User.Role)
	assert.NotEqual(t, "long enough password", tokens.User.PasswordHash, "password must be hashed")
	assert.Equal(t, []string{"alex@example.com"}, f.email.welcomes)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerReq())
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, registerReq())
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "",
		Email:    "not-an-email",
		Password: "short",
	})
	require.Error(t, err)
	appErr := apperrors.FromError(err)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Len(t, appErr.Fields, 3)
}

func TestRegisterEmailFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.email.fail = true

	_, err := f.svc.Register(context.Background(), registerReq())
	assert.NoError(t, err)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerReq())
	require.NoError(t, err)

	tokens, err := f.svc.Login(ctx, &model.LoginRequest{
		Email:    "alex@example.com",
		Password: "long enough password",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	require.NotNil(t, tokens.User)
	assert.NotNil(t, tokens.User.LastLoginAt)
}

func TestLoginBadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerReq())
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, &model.LoginRequest{
		Email:    "alex@example.com",
		Password: "wrong password!",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))

	// Unknown accounts fail identically, without leaking existence.
	_, err = f.svc.Login(ctx, &model.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever works",
	})
	require.Error(t, err)
	appErr := apperrors.FromError(err)
	assert.Equal(t, apperrors.KindUnauthenticated, appErr.Kind)
	assert.Equal(t, "invalid credentials", appErr.Message)
}

func TestVerifyAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tokens, err := f.svc.Register(ctx, registerReq())
	require.NoError(t, err)

	principal, err := f.svc.VerifyAccess(ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, tokens.User.ID, principal.ID)
	assert.Equal(t, "alex@example.com", principal.Email)
	assert.Equal(t, model.RoleUser, principal.Role)

	_, err = f.svc.VerifyAccess(ctx, "garbage")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tokens, err := f.svc.Register(ctx, registerReq())
	require.NoError(t, err)

	_, err = f.svc.VerifyAccess(ctx, tokens.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, tokens.AccessToken))

	_, err = f.svc.VerifyAccess(ctx, tokens.AccessToken)
	require.Error(t, err)
	appErr := apperrors.FromError(err)
	assert.Equal(t, apperrors.KindUnauthenticated, appErr.Kind)
	assert.Equal(t, "token revoked", appErr.Message)
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tokens, err := f.svc.Register(ctx, registerReq())
	require.NoError(t, err)

	refreshed, err := f.svc.Refresh(ctx, &model.RefreshRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// An access token is not accepted where a refresh token is expected.
	_, err = f.svc.Refresh(ctx, &model.RefreshRequest{RefreshToken: tokens.AccessToken})
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
}

func TestVerifyAccessDeletedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tokens, err := f.svc.Register(ctx, registerReq())
	require.NoError(t, err)

	delete(f.users.users, tokens.User.ID)

	_, err = f.svc.VerifyAccess(ctx, tokens.AccessToken)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tokens, err := f.svc.Register(ctx, registerReq())
	require.NoError(t, err)

	name := "Alexandra"
	phone := "+15551234567"
	updated, err := f.svc.UpdateUser(ctx, tokens.User.ID, &model.UpdateUserRequest{
		Name:  &name,
		Phone: &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alexandra", updated.Name)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, "+15551234567", *updated.Phone)
}
