// Package auth guards the API behind a single configured login.
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/cuotas/internal/apperr"
)

// CredentialStore checks a username and password pair.
type CredentialStore interface {
	Verify(ctx context.Context, username, password string) error
}

// StaticCredentials holds one username and the bcrypt hash of its password.
type StaticCredentials struct {
	username string
	hash     []byte
}

func NewStaticCredentials(username, passwordHash string) *StaticCredentials {
	return &StaticCredentials{username: username, hash: []byte(passwordHash)}
}

func (c *StaticCredentials) Verify(_ context.Context, username, password string) error {
	if len(c.hash) == 0 {
		return fmt.Errorf("%w: login disabled", apperr.ErrUnauthorized)
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(c.hash, []byte(password))

	if !userOK || passErr != nil {
		return fmt.Errorf("%w: invalid username or password", apperr.ErrUnauthorized)
	}

	return nil
}

type Claims struct {
	jwt.RegisteredClaims
}

type Token struct {
	Value     string
	ExpiresAt time.Time
}

type Service struct {
	creds  CredentialStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(creds CredentialStore, secret string, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		creds:  creds,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Login checks the credentials and issues an HS256 token for username.
func (s *Service) Login(ctx context.Context, username, password string) (*Token, error) {
	if err := s.creds.Verify(ctx, username, password); err != nil {
		return nil, err
	}

	now := s.now()
	expires := now.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	return &Token{Value: signed, ExpiresAt: expires}, nil
}

// Verify parses and validates a token issued by Login.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnauthorized, err)
	}

	return &claims, nil
}

type contextKey struct{}

// WithSubject stores the authenticated username in ctx.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, contextKey{}, subject)
}

// Subject returns the username stored by WithSubject.
func Subject(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(contextKey{}).(string)
	return s, ok
}
