package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/cart/response"
	"github.com/Alturino/storefront/cart/service"
	"github.com/Alturino/storefront/internal/metrics"
	"github.com/Alturino/storefront/internal/middleware"
	"github.com/Alturino/storefront/internal/repository/memory"
	"github.com/Alturino/storefront/internal/session"
	productResponse "github.com/Alturino/storefront/product/response"
)

type envelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
	Data       struct {
		Cart response.Cart `json:"cart"`
	} `json:"data"`
}

func TestCartController(t *testing.T) {
	product := productResponse.Product{ID: uuid.New(), Name: "Classic Tee", Price: decimal.NewFromInt(10), Image: "tee.png"}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	svc := service.NewCartService(
		session.NewRedisStore(client, time.Hour),
		memory.NewStore(memory.WithProducts(product)),
		metrics.New(prometheus.NewRegistry()),
	)
	router := mux.NewRouter()
	router.Use(middleware.Session("session", time.Hour))
	AttachCartController(router, svc)

	cookie := &http.Cookie{Name: "session", Value: uuid.NewString()}
	do := func(method string, target string, body string) (int, envelope) {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, target, nil)
		} else {
			req = httptest.NewRequest(method, target, strings.NewReader(body))
		}
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		decoded := envelope{}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&decoded))
		return rec.Code, decoded
	}

	code, body := do(http.MethodGet, "/cart", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, body.Data.Cart.Items)

	addBody := `{"productId":"` + product.ID.String() + `","price":"10","size":"M","qty":"2"}`
	code, body = do(http.MethodPost, "/cart/items", addBody)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, body.Success)
	require.Len(t, body.Data.Cart.Items, 1)
	assert.Equal(t, int32(2), body.Data.Cart.Items[0].Qty)
	assert.Equal(t, "Classic Tee", body.Data.Cart.Items[0].Name)
	lineId := body.Data.Cart.Items[0].ID.String()

	code, body = do(http.MethodPost, "/cart/items", addBody)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body.Data.Cart.Items, 1)
	assert.Equal(t, int32(4), body.Data.Cart.Count)
	assert.True(t, decimal.NewFromInt(40).Equal(body.Data.Cart.Subtotal))

	code, body = do(http.MethodPatch, "/cart/items/"+lineId, `{"direction":"dec"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int32(3), body.Data.Cart.Items[0].Qty)

	code, body = do(http.MethodPatch, "/cart/items/"+lineId, `{"direction":"sideways"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid quantity direction", body.Message)

	code, _ = do(http.MethodDelete, "/cart/items/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(http.MethodPost, "/cart/items", `{"productId":"`+uuid.NewString()+`","qty":1}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(http.MethodPost, "/cart/items", `{"qty":1}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = do(http.MethodDelete, "/cart/items/"+lineId, "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body.Data.Cart.Items)
}
