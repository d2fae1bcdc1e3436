package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/internal/constants"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/session"
	"github.com/Alturino/storefront/internal/token"
)

const secret = "secret"

func sign(t *testing.T, subject string, role string) string {
	t.Helper()
	now := time.Now()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.AppUserService,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{constants.AudienceUser},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
		},
		Role: role,
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func decodeStatusCode(t *testing.T, body io.Reader) float64 {
	t.Helper()
	envelope := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(body).Decode(&envelope))
	return envelope["statusCode"].(float64)
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestLoggingKeepsBodyAndRequestID(t *testing.T) {
	var body string
	var requestID string
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		requestID = log.RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/orders/checkout", strings.NewReader(`{"phone":"0800"}`))
	req.Header.Set(inHttp.HeaderRequestID, "req-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.JSONEq(t, `{"phone":"0800"}`, body)
	assert.Equal(t, "req-1", requestID)
	assert.Equal(t, "req-1", rec.Header().Get(inHttp.HeaderRequestID))
}

func TestRecoverPanic(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
	}{
		{name: "error value", value: io.ErrUnexpectedEOF},
		{name: "string value", value: "boom"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			handler := RecoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(test.value)
			}))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
		})
	}
}

func TestSession(t *testing.T) {
	var seen uuid.UUID
	handler := Session("session", time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = session.IDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	issued := seen
	assert.NotEqual(t, uuid.Nil, issued)
	assert.Equal(t, issued.String(), cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: issued.String()})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, issued, seen)

	req = httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "not-a-uuid"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Len(t, rec.Result().Cookies(), 1)
	assert.NotEqual(t, issued, seen)
}

func TestAuthenticate(t *testing.T) {
	userId := uuid.New()
	tests := []struct {
		name          string
		authorization string
		guard         func(http.Handler) http.Handler
		expected      int
	}{
		{name: "anonymous passes optional auth", guard: func(h http.Handler) http.Handler { return h }, expected: http.StatusNoContent},
		{name: "invalid token is rejected", authorization: "Bearer nope", guard: func(h http.Handler) http.Handler { return h }, expected: http.StatusUnauthorized},
		{name: "wrong scheme is rejected", authorization: "Basic abc", guard: func(h http.Handler) http.Handler { return h }, expected: http.StatusUnauthorized},
		{name: "anonymous fails require user", guard: RequireUser, expected: http.StatusUnauthorized},
		{name: "user passes require user", authorization: "Bearer " + sign(t, userId.String(), ""), guard: RequireUser, expected: http.StatusNoContent},
		{name: "user fails require admin", authorization: "Bearer " + sign(t, userId.String(), ""), guard: RequireAdmin, expected: http.StatusForbidden},
		{name: "anonymous fails require admin", guard: RequireAdmin, expected: http.StatusUnauthorized},
		{name: "admin passes require admin", authorization: "Bearer " + sign(t, userId.String(), token.RoleAdmin), guard: RequireAdmin, expected: http.StatusNoContent},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			handler := Authenticate(secret)(test.guard(ok))
			req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
			if test.authorization != "" {
				req.Header.Set(inHttp.HeaderAuthorization, test.authorization)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, test.expected, rec.Code)
			if test.expected != http.StatusNoContent {
				assert.Equal(t, float64(test.expected), decodeStatusCode(t, rec.Body))
			}
		})
	}
}
