// Package auth issues and verifies JWTs and hashes passwords.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/dbsauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of both access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Identity is what a verified token says about its bearer.
type Identity struct {
	UserID string
	Email  string
}

// TokenService signs HS256 tokens with a fixed secret. It is immutable after
// construction and safe for concurrent use.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

// Option configures a TokenService.
type Option func(*TokenService)

// WithClock replaces time.Now for issuing and verifying tokens.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(secret []byte, accessTTL, refreshTTL time.Duration, opts ...Option) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("token service: empty secret")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token service: token lifetimes must be positive")
	}

	s := &TokenService{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	return s, nil
}

// IssueAccessToken returns a short-lived token for userID.
func (s *TokenService) IssueAccessToken(userID, email string) (string, error) {
	return s.sign(userID, email, s.accessTTL)
}

// IssueRefreshToken returns a long-lived token for userID.
func (s *TokenService) IssueRefreshToken(userID, email string) (string, error) {
	return s.sign(userID, email, s.refreshTTL)
}

// Verify checks the signature, algorithm and expiry of tokenString. Any
// failure yields common.ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (*Identity, error) {
	claims := &Claims{}

	token, err := s.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return &Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

func (s *TokenService) sign(userID, email string, ttl time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
