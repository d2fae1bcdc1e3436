package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/internal/constants"
	inErrors "github.com/Alturino/storefront/internal/errors"
)

const secret = "secret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func validClaims(subject string, role string) Claims {
	now := time.Now()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.AppUserService,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{constants.AudienceUser},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
		},
		Role: role,
	}
}

func TestVerifyToken(t *testing.T) {
	userId := uuid.New()
	expired := validClaims(userId.String(), "")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongIssuer := validClaims(userId.String(), "")
	wrongIssuer.Issuer = "someone-else"

	tests := []struct {
		name        string
		token       string
		expectedErr error
		isAdmin     bool
	}{
		{
			name:  "given valid token should return claims",
			token: sign(t, jwt.SigningMethodHS256, []byte(secret), validClaims(userId.String(), "")),
		},
		{
			name:    "given admin token should return admin claims",
			token:   sign(t, jwt.SigningMethodHS256, []byte(secret), validClaims(userId.String(), RoleAdmin)),
			isAdmin: true,
		},
		{
			name:        "given token signed with other secret should return error",
			token:       sign(t, jwt.SigningMethodHS256, []byte("other"), validClaims(userId.String(), "")),
			expectedErr: inErrors.ErrTokenInvalid,
		},
		{
			name:        "given expired token should return error",
			token:       sign(t, jwt.SigningMethodHS256, []byte(secret), expired),
			expectedErr: inErrors.ErrTokenInvalid,
		},
		{
			name:        "given token with other issuer should return error",
			token:       sign(t, jwt.SigningMethodHS256, []byte(secret), wrongIssuer),
			expectedErr: inErrors.ErrTokenInvalid,
		},
		{
			name:        "given garbage should return error",
			token:       "not-a-token",
			expectedErr: inErrors.ErrTokenInvalid,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			claims, err := VerifyToken(context.Background(), secret, test.token)
			if test.expectedErr != nil {
				assert.True(t, errors.Is(err, test.expectedErr))
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			actual, err := claims.UserID()
			require.NoError(t, err)
			assert.Equal(t, userId, actual)
			assert.Equal(t, test.isAdmin, claims.IsAdmin())
		})
	}
}

func TestUserIdFromContext(t *testing.T) {
	_, err := UserIdFromContext(context.Background())
	assert.ErrorIs(t, err, inErrors.ErrEmptyAuth)

	userId := uuid.New()
	claims := validClaims(userId.String(), "")
	c := AttachClaims(context.Background(), &claims)
	actual, err := UserIdFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, userId, actual)

	claims.Subject = ""
	_, err = UserIdFromContext(c)
	assert.ErrorIs(t, err, inErrors.ErrEmptySubject)
}
