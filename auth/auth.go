// Package auth issues and verifies the JWTs carried in the x-auth-token
// header and hashes user passwords.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/arkantrust/vidly/models"
)

// ErrInvalidToken wraps every token verification failure.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload of an auth token.
type Claims struct {
	ID      string `json:"_id"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// UserID parses the subject user's ObjectId.
func (c *Claims) UserID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.ID)
}

// Service signs tokens with a process-wide HMAC key.
type Service struct {
	key  []byte
	ttl  time.Duration
	cost int
	now  func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTokenTTL sets an expiry on issued tokens. Zero, the default, issues
// tokens that never expire.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithBcryptCost sets the bcrypt cost used by HashPassword.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// New returns a Service signing with key. An empty key is an error: the
// process must not start without one.
func New(key string, opts ...Option) (*Service, error) {
	if key == "" {
		return nil, errors.New("auth: signing key is not defined")
	}
	s := &Service{
		key:  []byte(key),
		cost: bcrypt.DefaultCost,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cost < bcrypt.MinCost || s.cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("auth: bcrypt cost %d out of range [%d, %d]", s.cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return s, nil
}

// IssueToken signs a token identifying u and its admin flag.
func (s *Service) IssueToken(u *models.User) (string, error) {
	now := s.now()
	claims := &Claims{
		ID:      u.ID.Hex(),
		IsAdmin: u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// VerifyToken checks the signature of token and returns its claims.
func (s *Service) VerifyToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.key, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword returns the bcrypt hash of plain.
func (s *Service) HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// ComparePassword reports whether plain matches hash. bcrypt compares in
// constant time.
func (s *Service) ComparePassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

type claimsKey struct{}

// WithClaims returns a copy of ctx carrying c.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims stored by WithClaims.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok && c != nil
}
