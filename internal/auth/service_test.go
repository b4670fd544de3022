package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexpath/flexpath/internal/db"
	"github.com/flexpath/flexpath/internal/typeid"
)

func testUser() db.User {
	return db.User{
		ID:          typeid.NewUserID(),
		Email:       "ada@example.com",
		DisplayName: "Ada",
	}
}

func TestTokenRoundTrip(t *testing.T) {
	s := NewService(nil, "test-secret")
	user := testUser()

	creds, err := s.credentialsFor(user)
	require.NoError(t, err)
	assert.Equal(t, user.ID, creds.Account.ID)
	assert.InDelta(t, time.Now().Add(tokenTTL).Unix(), creds.ExpiresAt, 5)

	subject, err := s.ValidateToken(creds.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	s := NewService(nil, "test-secret")
	creds, err := s.credentialsFor(testUser())
	require.NoError(t, err)

	other := NewService(nil, "different-secret")
	_, err = other.ValidateToken(creds.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsNonUserSubject(t *testing.T) {
	s := NewService(nil, "test-secret")

	// Signed with our secret but carrying a document ID as subject: not a
	// token this service minted for a user.
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   typeid.NewDocumentID(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	require.NoError(t, err)

	_, err = s.ValidateToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	s := NewService(nil, "test-secret")

	claims := jwt.RegisteredClaims{
		Subject:   typeid.NewUserID(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}
	stale, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	require.NoError(t, err)

	_, err = s.ValidateToken(stale)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRegisterPayloadValidate(t *testing.T) {
	valid := registerPayload{Email: "ada@example.com", Password: "longenough", DisplayName: "Ada"}
	assert.Empty(t, valid.validate())

	bad := valid
	bad.Email = "not-an-email"
	assert.NotEmpty(t, bad.validate())

	bad = valid
	bad.Password = "short"
	assert.NotEmpty(t, bad.validate())

	bad = valid
	bad.DisplayName = "   "
	assert.NotEmpty(t, bad.validate())
}
