// Package auth resolves logged-in principals: user records, password
// verification, and JWT session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ringsidehq/ringside/internal/adapters/docstore"
	"github.com/ringsidehq/ringside/internal/domain/model"
)

// Default session configuration constants.
const (
	defaultTokenTTL = 8 * time.Hour
	tokenIssuer     = "ringside"
)

// Principal is the resolved identity attached to a request. It is passed
// explicitly through context; there is no ambient global session.
type Principal struct {
	UID   string
	Email string
	Name  string
	Role  model.Role
}

// IsAdmin reports whether the principal may use admin operations.
func (p Principal) IsAdmin() bool { return p.Role == model.RoleAdmin }

// Claims is the JWT payload for a session token.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and verifies session tokens against the users collection.
type Service struct {
	store docstore.Store
	hmac  []byte
	ttl   time.Duration
	now   func() time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithTokenTTL sets the session token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source for token issue/expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an auth service signing tokens with the given HMAC secret.
func New(store docstore.Store, secret string, opts ...Option) *Service {
	s := &Service{
		store: store,
		hmac:  []byte(secret),
		ttl:   defaultTokenTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user record with a bcrypt password hash. Email
// uniqueness is checked by query first; a failure after the identity write
// leaves an orphaned record, which is accepted rather than rolled back.
func (s *Service) Register(ctx context.Context, email, name, password string, role model.Role) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !role.Valid() {
		return model.User{}, fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}

	var existing []model.User
	if err := s.store.Query(ctx, docstore.CollectionUsers, docstore.Filter{"email": email}, &existing); err != nil {
		return model.User{}, fmt.Errorf("check email: %w", err)
	}
	if len(existing) > 0 {
		return model.User{}, fmt.Errorf("%w: %s", ErrEmailTaken, email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: string(hash),
	}
	id, _, err := s.store.Create(ctx, docstore.CollectionUsers, user)
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	user.UID = id
	return user, nil
}

// Login verifies the password for an email and returns a signed session
// token plus the user record.
func (s *Service) Login(ctx context.Context, email, password string) (string, model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var users []model.User
	if err := s.store.Query(ctx, docstore.CollectionUsers, docstore.Filter{"email": email}, &users); err != nil {
		return "", model.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if len(users) == 0 {
		return "", model.User{}, ErrInvalidCredentials
	}
	user := users[0]

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", model.User{}, ErrInvalidCredentials
	}

	token, err := s.issue(user)
	if err != nil {
		return "", model.User{}, err
	}
	return token, user, nil
}

// issue signs a session token for the user.
func (s *Service) issue(user model.User) (string, error) {
	now := s.now()
	claims := &Claims{
		Email: user.Email,
		Name:  user.Name,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.hmac)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify parses a session token and returns the principal it carries.
func (s *Service) Verify(tokenStr string) (Principal, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method", ErrInvalidToken)
		}
		return s.hmac, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Principal{}, ErrInvalidToken
	}

	role := model.Role(claims.Role)
	if !role.Valid() {
		return Principal{}, fmt.Errorf("%w: %s", ErrUnknownRole, claims.Role)
	}
	return Principal{
		UID:   claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  role,
	}, nil
}

// HasUsers reports whether any user record exists. The very first
// registration bootstraps the admin account without a session.
func (s *Service) HasUsers(ctx context.Context) (bool, error) {
	var users []model.User
	if err := s.store.Query(ctx, docstore.CollectionUsers, nil, &users); err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return len(users) > 0, nil
}

// LookupRole fetches a user's current role by uid.
func (s *Service) LookupRole(ctx context.Context, uid string) (model.Role, error) {
	var user model.User
	if err := s.store.Get(ctx, docstore.CollectionUsers, uid, &user); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrUnknownUser, uid)
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}
	return user.Role, nil
}
