package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/dashboard/response"
	"github.com/Alturino/storefront/dashboard/service"
	"github.com/Alturino/storefront/internal/constants"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/metrics"
	"github.com/Alturino/storefront/internal/middleware"
	"github.com/Alturino/storefront/internal/repository/memory"
	"github.com/Alturino/storefront/internal/token"
	productResponse "github.com/Alturino/storefront/product/response"
)

func TestDashboardController(t *testing.T) {
	const secret = "secret"
	store := memory.NewStore(memory.WithProducts(
		productResponse.Product{ID: uuid.New(), Name: "Classic Tee", Category: "clothes"},
	))
	router := mux.NewRouter()
	router.Use(middleware.Authenticate(secret))
	AttachDashboardController(router, service.NewDashboardService(store, metrics.New(prometheus.NewRegistry())))

	now := time.Now()
	adminToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.AppUserService,
			Subject:   uuid.NewString(),
			Audience:  jwt.ClaimStrings{constants.AudienceUser},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
		},
		Role: token.RoleAdmin,
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.Header.Set(inHttp.HeaderAuthorization, "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body := struct {
		Data response.Dashboard `json:"data"`
	}{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, int64(1), body.Data.TotalProducts)
	assert.Len(t, body.Data.ChartLabels, 7)
	assert.Equal(t, []string{"clothes"}, body.Data.CatLabels)
}
