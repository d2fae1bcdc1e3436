package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/Alturino/storefront/cart/domain"
)

func TestRedisStoreAgainstRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	c := context.Background()

	redisContainer, err := tcRedis.Run(c, "redis:7.4-alpine")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	})

	uri, err := redisContainer.ConnectionString(c)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { client.Close() })

	store := NewRedisStore(client, time.Minute)
	id := uuid.New()
	cart := domain.AddItem(domain.Cart{}, domain.LineItem{
		ProductID: uuid.New(),
		Name:      "Tee",
		Price:     decimal.NewFromInt(10),
		Qty:       2,
	})
	require.NoError(t, store.SaveSession(c, Session{ID: id, Cart: cart}))

	ttl, err := client.TTL(c, Key(id)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	sess, err := store.FindSession(c, id)
	require.NoError(t, err)
	require.Len(t, sess.Cart.Items, 1)
	assert.Equal(t, int32(2), sess.Cart.Items[0].Qty)

	require.NoError(t, store.RemoveSession(c, id))
	sess, err = store.FindSession(c, id)
	require.NoError(t, err)
	assert.True(t, sess.Cart.IsEmpty())
}
