package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/arkantrust/vidly/auth"
	"github.com/arkantrust/vidly/models"
)

const testKey = "test-private-key"

func newService(t *testing.T, opts ...auth.Option) *auth.Service {
	t.Helper()
	opts = append([]auth.Option{auth.WithBcryptCost(bcrypt.MinCost)}, opts...)
	svc, err := auth.New(testKey, opts...)
	require.NoError(t, err)
	return svc
}

func TestNewRequiresKey(t *testing.T) {
	_, err := auth.New("")
	assert.Error(t, err)

	_, err = auth.New(testKey, auth.WithBcryptCost(bcrypt.MaxCost+1))
	assert.Error(t, err)
}

func TestIssueTokenRoundTrip(t *testing.T) {
	svc := newService(t)
	user := &models.User{ID: primitive.NewObjectID(), IsAdmin: true}

	token, err := svc.IssueToken(user)
	require.NoError(t, err)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.ID)
	assert.True(t, claims.IsAdmin)
	assert.Nil(t, claims.ExpiresAt, "tokens do not expire unless a ttl is configured")

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestIssuedTokenIsStandardHS256(t *testing.T) {
	svc := newService(t)
	user := &models.User{ID: primitive.NewObjectID()}

	token, err := svc.IssueToken(user)
	require.NoError(t, err)

	// Any JWT library holding the key must be able to read it.
	decoded := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(token, decoded, func(*jwt.Token) (interface{}, error) {
		return []byte(testKey), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), decoded["_id"])
	assert.Equal(t, false, decoded["isAdmin"])
}

func TestVerifyTokenRejects(t *testing.T) {
	svc := newService(t)
	other, err := auth.New("another-key")
	require.NoError(t, err)

	foreign, err := other.IssueToken(&models.User{ID: primitive.NewObjectID()})
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"_id": "x"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "a"},
		{"wrong key", foreign},
		{"alg none", unsigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.VerifyToken(tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestTokenTTL(t *testing.T) {
	svc := newService(t, auth.WithTokenTTL(time.Millisecond))
	token, err := svc.IssueToken(&models.User{ID: primitive.NewObjectID()})
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)
	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	svc := newService(t)

	hash, err := svc.HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.True(t, svc.ComparePassword(hash, "password123"))
	assert.False(t, svc.ComparePassword(hash, "password124"))
	assert.False(t, svc.ComparePassword("not-a-hash", "password123"))

	_, err = svc.HashPassword(strings.Repeat("p", 73))
	assert.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
}

func TestClaimsContext(t *testing.T) {
	_, ok := auth.ClaimsFromContext(context.Background())
	assert.False(t, ok)

	want := &auth.Claims{ID: primitive.NewObjectID().Hex()}
	got, ok := auth.ClaimsFromContext(auth.WithClaims(context.Background(), want))
	require.True(t, ok)
	assert.Same(t, want, got)
}
