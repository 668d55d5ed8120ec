package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphichelper/internal/config"
	"graphichelper/internal/models"
	"graphichelper/internal/repository"
	"graphichelper/internal/security"
	"graphichelper/internal/session"
)

type fakeUsers struct {
	byName map[string]models.User
	byID   map[string]models.User
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (models.User, error) {
	user, ok := f.byName[username]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

type fakeSessions struct {
	created  []models.ServerSession
	deleted  []string
	rotated  []models.ServerSession
	byHash   map[string]models.ServerSession
	countErr error
}

func (f *fakeSessions) Create(_ context.Context, s models.ServerSession) error {
	f.created = append(f.created, s)
	return nil
}

func (f *fakeSessions) FindByRefreshHash(_ context.Context, userID string, hash []byte) (models.ServerSession, error) {
	s, ok := f.byHash[string(hash)]
	if !ok || s.UserID != userID {
		return models.ServerSession{}, repository.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessions) RotateRefresh(_ context.Context, s models.ServerSession) error {
	f.rotated = append(f.rotated, s)
	return nil
}

func (f *fakeSessions) DeleteByID(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return repository.ErrSessionNotFound
}

func (f *fakeSessions) CountByUser(_ context.Context, _ string) (int, error) {
	return len(f.created), f.countErr
}

func (f *fakeSessions) DeleteOldestSessions(_ context.Context, _ string, _ int) error {
	return nil
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Security: config.SecurityConfig{
			JWTAccessSecret:  "test-secret",
			JWTAccessTTL:     time.Minute,
			SessionTTL:       time.Hour,
			MaxSessions:      5,
			RemoteCallBudget: time.Second,
		},
	}
}

func newTestAuthService(t *testing.T, password string, isAdmin bool) (*AuthService, *fakeSessions, models.User) {
	t.Helper()

	hash, err := security.HashPassword(password)
	require.NoError(t, err)

	user := models.User{
		ID:           "user-1",
		Username:     "alice",
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	}

	users := &fakeUsers{
		byName: map[string]models.User{user.Username: user},
		byID:   map[string]models.User{user.ID: user},
	}
	sessions := &fakeSessions{byHash: map[string]models.ServerSession{}}

	svc := NewAuthService(users, sessions, testConfig(), zerolog.Nop())
	return svc, sessions, user
}

func TestVerify(t *testing.T) {
	svc, _, user := newTestAuthService(t, "swordfish", false)

	t.Run("matching pair returns identity and admin flag", func(t *testing.T) {
		got, err := svc.Verify(context.Background(), "alice", "swordfish")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.False(t, got.IsAdmin)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Verify(context.Background(), "alice", "not-it")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Verify(context.Background(), "mallory", "swordfish")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLoginCreatesSessionOnDashboard(t *testing.T) {
	svc, sessions, user := newTestAuthService(t, "swordfish", true)

	result, err := svc.Login(context.Background(), LoginInput{Username: "alice", Password: "swordfish"})
	require.NoError(t, err)

	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.True(t, result.State.Authenticated)
	assert.Equal(t, session.PageDashboard, result.State.Page)
	assert.True(t, result.State.IsAdmin)

	require.Len(t, sessions.created, 1)
	created := sessions.created[0]
	assert.Equal(t, user.ID, created.UserID)
	assert.Equal(t, string(session.PageDashboard), created.CurrentPage)
	assert.Equal(t, security.HashRefreshToken(result.RefreshToken), created.RefreshTokenHash)

	claims, err := security.ParseAccessToken(result.AccessToken, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, created.ID, claims.SessionID)
}

func TestLoginFailureCreatesNoSession(t *testing.T) {
	svc, sessions, _ := newTestAuthService(t, "swordfish", false)

	_, err := svc.Login(context.Background(), LoginInput{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, sessions.created)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, sessions, user := newTestAuthService(t, "swordfish", false)

	token, hash, err := security.GenerateRefreshToken(48)
	require.NoError(t, err)
	sessions.byHash[string(hash)] = models.ServerSession{
		ID:               "sess-1",
		UserID:           user.ID,
		RefreshTokenHash: hash,
		CurrentPage:      string(session.PageHistory),
		ExpiresAt:        time.Now().Add(time.Hour),
	}

	result, err := svc.Refresh(context.Background(), RefreshInput{UserID: user.ID, RefreshToken: token})
	require.NoError(t, err)

	assert.NotEqual(t, token, result.RefreshToken)
	assert.Equal(t, session.PageHistory, result.State.Page)
	require.Len(t, sessions.rotated, 1)
	assert.NotEqual(t, hash, sessions.rotated[0].RefreshTokenHash)
}

func TestRefreshExpiredSessionRejected(t *testing.T) {
	svc, sessions, user := newTestAuthService(t, "swordfish", false)

	token, hash, err := security.GenerateRefreshToken(48)
	require.NoError(t, err)
	sessions.byHash[string(hash)] = models.ServerSession{
		ID:               "sess-1",
		UserID:           user.ID,
		RefreshTokenHash: hash,
		ExpiresAt:        time.Now().Add(-time.Minute),
	}

	_, err = svc.Refresh(context.Background(), RefreshInput{UserID: user.ID, RefreshToken: token})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Contains(t, sessions.deleted, "sess-1")
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc, _, _ := newTestAuthService(t, "swordfish", false)

	// fakeSessions.DeleteByID always reports not-found; logout must absorb it
	assert.NoError(t, svc.Logout(context.Background(), "gone"))
}
