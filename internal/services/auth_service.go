package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vendora/backend/internal/auth"
	"github.com/vendora/backend/internal/models"
	"go.uber.org/zap"
)

// ActiveSessionWarning is returned by Login when the account already holds a live token.
const ActiveSessionWarning = "There is already an active session using your account"

// AuthService registers users, issues tokens and tracks their sessions.
type AuthService struct {
	users    UserRepository
	ledger   *LedgerService
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenManager
	sessions auth.SessionStore
	logger   *zap.Logger
}

// LoginResult is a freshly issued token and the user it belongs to.
type LoginResult struct {
	Token   string
	Claims  *auth.Claims
	User    *models.User
	Warning string
}

func NewAuthService(users UserRepository, ledger *LedgerService, hasher *auth.PasswordHasher, tokens *auth.TokenManager, sessions auth.SessionStore, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:    users,
		ledger:   ledger,
		hasher:   hasher,
		tokens:   tokens,
		sessions: sessions,
		logger:   logger.Named("auth"),
	}
}

// Signup opens the zero-balance account and then stores the user. Usernames are
// case-insensitive and stored lowercased.
//
// The account is created first so a stored user always has one. An account left
// behind by an earlier signup whose user insert failed is reused.
func (s *AuthService) Signup(ctx context.Context, username, password, role string) (*models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	role = strings.ToLower(strings.TrimSpace(role))
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if _, err := s.ledger.RegisterAccount(ctx, username); err != nil && !errors.Is(err, ErrAccountExists) {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicateRecord) {
			return nil, fmt.Errorf("%w: %s", ErrUserExists, username)
		}
		return nil, fmt.Errorf("create user %s: %w", username, err)
	}

	s.logger.Info("user signed up", zap.String("username", username), zap.String("role", role))
	return user, nil
}

// Login checks the password and issues a token. An already active session does not
// block the login; it is reported through LoginResult.Warning.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user %s: %w", username, err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Info("invalid password", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	active, err := s.sessions.Active(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list sessions of %s: %w", username, err)
	}

	token, claims, err := s.tokens.Issue(user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	if err := s.sessions.Register(ctx, auth.SessionFromClaims(claims)); err != nil {
		return nil, fmt.Errorf("register session: %w", err)
	}

	result := &LoginResult{Token: token, Claims: claims, User: user}
	if len(active) > 0 {
		result.Warning = ActiveSessionWarning
	}

	s.logger.Info("user logged in",
		zap.String("username", username),
		zap.Int("other_sessions", len(active)))
	return result, nil
}

// Logout revokes the token described by claims.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := s.sessions.Revoke(ctx, auth.SessionFromClaims(claims)); err != nil {
		return fmt.Errorf("revoke session %s: %w", claims.ID, err)
	}
	return nil
}

// LogoutAll revokes every active token of username and returns how many there were.
func (s *AuthService) LogoutAll(ctx context.Context, username string) (int, error) {
	n, err := s.sessions.RevokeAll(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("revoke sessions of %s: %w", username, err)
	}
	s.logger.Info("all sessions revoked", zap.String("username", username), zap.Int("count", n))
	return n, nil
}

func (s *AuthService) Sessions(ctx context.Context, username string) ([]auth.Session, error) {
	return s.sessions.Active(ctx, username)
}
