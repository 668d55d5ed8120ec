package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"graphichelper/internal/config"
	"graphichelper/internal/ids"
	"graphichelper/internal/models"
	"graphichelper/internal/repository"
	"graphichelper/internal/security"
	"graphichelper/internal/session"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type userReader interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
}

type sessionStore interface {
	Create(ctx context.Context, s models.ServerSession) error
	FindByRefreshHash(ctx context.Context, userID string, refreshHash []byte) (models.ServerSession, error)
	RotateRefresh(ctx context.Context, s models.ServerSession) error
	DeleteByID(ctx context.Context, id string) error
	CountByUser(ctx context.Context, userID string) (int, error)
	DeleteOldestSessions(ctx context.Context, userID string, keepLatest int) error
}

// AuthService verifies credentials and manages the server-session lifecycle.
type AuthService struct {
	users    userReader
	sessions sessionStore
	cfg      *config.AppConfig
	log      zerolog.Logger
}

func NewAuthService(users userReader, sessions sessionStore, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		log:      log,
	}
}

// Verify checks a username/password pair against the user store. Username
// lookup and hash check both fold into ErrInvalidCredentials so the caller
// cannot distinguish an unknown user from a wrong password.
func (s *AuthService) Verify(ctx context.Context, username, password string) (models.User, error) {
	ctx, cancel := s.remoteCallContext(ctx)
	defer cancel()

	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

type LoginInput struct {
	Username  string
	Password  string
	IPAddress string
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	SessionID    string
	User         models.User
	State        session.State
}

// Login runs the credential check and, on success, creates a server session
// whose state machine lands on the dashboard.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	user, err := s.Verify(ctx, input.Username, input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	return s.createSession(ctx, user, input.IPAddress)
}

func (s *AuthService) createSession(ctx context.Context, user models.User, ipAddress string) (AuthResult, error) {
	refreshToken, refreshHash, err := security.GenerateRefreshToken(48)
	if err != nil {
		return AuthResult{}, err
	}

	state := session.NewState().LoginSucceeded(user.ID, user.IsAdmin)

	serverSession := models.ServerSession{
		ID:               ids.New(),
		UserID:           user.ID,
		RefreshTokenHash: refreshHash,
		CurrentPage:      string(state.Page),
		IPAddress:        ipAddress,
		ExpiresAt:        time.Now().Add(s.cfg.Security.SessionTTL),
	}

	accessToken, err := security.GenerateAccessToken(
		s.cfg.Security.JWTAccessSecret,
		user.ID,
		serverSession.ID,
		user.IsAdmin,
		s.cfg.Security.JWTAccessTTL,
	)
	if err != nil {
		return AuthResult{}, err
	}

	storeCtx, cancel := s.remoteCallContext(ctx)
	defer cancel()

	if err := s.sessions.Create(storeCtx, serverSession); err != nil {
		return AuthResult{}, err
	}

	if err := s.enforceSessionLimit(storeCtx, user.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("enforce session limit failed")
	}

	return AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    serverSession.ID,
		User:         user,
		State:        state,
	}, nil
}

func (s *AuthService) enforceSessionLimit(ctx context.Context, userID string) error {
	count, err := s.sessions.CountByUser(ctx, userID)
	if err != nil {
		return err
	}
	if count <= s.cfg.Security.MaxSessions {
		return nil
	}
	return s.sessions.DeleteOldestSessions(ctx, userID, s.cfg.Security.MaxSessions)
}

type RefreshInput struct {
	UserID       string
	RefreshToken string
}

// Refresh rotates the refresh token and issues a new access token. The user
// row is re-read so a role change is reflected in the new token.
func (s *AuthService) Refresh(ctx context.Context, input RefreshInput) (AuthResult, error) {
	ctx, cancel := s.remoteCallContext(ctx)
	defer cancel()

	user, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	refreshHash := security.HashRefreshToken(input.RefreshToken)
	serverSession, err := s.sessions.FindByRefreshHash(ctx, input.UserID, refreshHash)
	if err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	if serverSession.ExpiresAt.Before(time.Now()) {
		_ = s.sessions.DeleteByID(ctx, serverSession.ID)
		return AuthResult{}, ErrInvalidCredentials
	}

	refreshToken, newHash, err := security.GenerateRefreshToken(48)
	if err != nil {
		return AuthResult{}, err
	}

	serverSession.RefreshTokenHash = newHash
	serverSession.ExpiresAt = time.Now().Add(s.cfg.Security.SessionTTL)

	if err := s.sessions.RotateRefresh(ctx, serverSession); err != nil {
		return AuthResult{}, err
	}

	accessToken, err := security.GenerateAccessToken(
		s.cfg.Security.JWTAccessSecret,
		user.ID,
		serverSession.ID,
		user.IsAdmin,
		s.cfg.Security.JWTAccessTTL,
	)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    serverSession.ID,
		User:         user,
		State: session.State{
			Authenticated: true,
			UserID:        user.ID,
			IsAdmin:       user.IsAdmin,
			Page:          session.Page(serverSession.CurrentPage),
		},
	}, nil
}

// Logout destroys the server session, returning the state machine to
// LoggedOut for that browser session. Idempotent.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	ctx, cancel := s.remoteCallContext(ctx)
	defer cancel()

	err := s.sessions.DeleteByID(ctx, sessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil
	}
	return err
}

func (s *AuthService) remoteCallContext(ctx context.Context) (context.Context, context.CancelFunc) {
	budget := s.cfg.Security.RemoteCallBudget
	if budget <= 0 {
		budget = 5 * time.Second
	}
	return context.WithTimeout(ctx, budget)
}
