// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login and access-token refresh.
package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/dbsauth/internal/common"
	"github.com/dmitrijs2005/dbsauth/internal/logging"
	"github.com/dmitrijs2005/dbsauth/internal/server/auth"
	"github.com/dmitrijs2005/dbsauth/internal/server/models"
	"github.com/dmitrijs2005/dbsauth/internal/server/repositories/users"
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, hash string) (bool, error)
}

// TokenIssuer mints and verifies signed tokens.
type TokenIssuer interface {
	IssueAccessToken(userID, email string) (string, error)
	IssueRefreshToken(userID, email string) (string, error)
	Verify(token string) (*auth.Identity, error)
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Session is the result of a successful register or login.
type Session struct {
	User models.UserSummary
	TokenPair
}

// dummyPassword feeds the timing-parity hash used for unknown emails.
const dummyPassword = "dbsauth-timing-parity"

// UserService provides authentication operations:
//   - Register: create a user and open a session
//   - Login: verify credentials and open a session
//   - Refresh: mint a new access token from a refresh token
//
// It keeps no per-request state.
type UserService struct {
	users  users.Repository
	hasher PasswordHasher
	tokens TokenIssuer
	logger logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService constructs a UserService.
func NewUserService(repo users.Repository, hasher PasswordHasher, tokens TokenIssuer, logger logging.Logger) *UserService {
	return &UserService{
		users:  repo,
		hasher: hasher,
		tokens: tokens,
		logger: logger.With("module", "services/user"),
	}
}

// Register creates a user and returns a session for it. It returns
// common.ErrUserExists when the email is taken and common.ErrValidation for
// missing fields or an over-long password.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*Session, error) {
	if name == "" || email == "" || password == "" {
		return nil, common.ErrValidation
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrUserExists
	case !errors.Is(err, common.ErrorNotFound):
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		if errors.Is(err, common.ErrPasswordTooLong) {
			return nil, common.ErrValidation
		}
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, common.ErrorInternal
	}

	user, err := s.users.Create(ctx, &models.User{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrUserExists) {
			return nil, common.ErrUserExists
		}
		s.logger.Error(ctx, "user create failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return s.newSession(ctx, user)
}

// Login checks email and password. Unknown emails and wrong passwords both
// yield common.ErrInvalidCredentials after comparable bcrypt work.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, common.ErrValidation
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.burnVerify(ctx, password)
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		s.logger.Error(ctx, "password verification failed", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return s.newSession(ctx, user)
}

// Refresh verifies refreshToken and returns a new access token for its
// subject. The refresh token itself is not rotated.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", common.ErrRefreshTokenRequired
	}

	id, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return "", common.ErrInvalidToken
	}

	access, err := s.tokens.IssueAccessToken(id.UserID, id.Email)
	if err != nil {
		s.logger.Error(ctx, "access token signing failed", "user_id", id.UserID, "error", err)
		return "", common.ErrorInternal
	}
	return access, nil
}

// --- helpers below ---

func (s *UserService) newSession(ctx context.Context, user *models.User) (*Session, error) {
	access, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error(ctx, "access token signing failed", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	refresh, err := s.tokens.IssueRefreshToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error(ctx, "refresh token signing failed", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	return &Session{
		User:      user.Summary(),
		TokenPair: TokenPair{AccessToken: access, RefreshToken: refresh},
	}, nil
}

// burnVerify runs one bcrypt comparison against a throwaway hash so a miss
// costs about as much as a wrong password.
func (s *UserService) burnVerify(ctx context.Context, password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(context.Background(), dummyPassword)
		if err != nil {
			s.logger.Warn(ctx, "dummy hash unavailable", "error", err)
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash == "" {
		return
	}
	_, _ = s.hasher.Verify(ctx, password, s.dummyHash)
}
