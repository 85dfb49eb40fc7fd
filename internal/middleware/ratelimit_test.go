package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return rdb
}

func TestCheckRateLimit(t *testing.T) {
	t.Setenv("APP_ENV", "")
	rdb := testRedis(t)
	ctx := context.Background()

	t.Run("AllowsUpToLimit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			allowed, err := CheckRateLimit(ctx, rdb, "give_badge", "user:1", 3, time.Minute)
			assert.NoError(t, err)
			assert.True(t, allowed)
		}

		allowed, err := CheckRateLimit(ctx, rdb, "give_badge", "user:1", 3, time.Minute)
		assert.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("SeparateResourcesAndIDs", func(t *testing.T) {
		allowed, err := CheckRateLimit(ctx, rdb, "give_badge", "user:2", 3, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = CheckRateLimit(ctx, rdb, "signup", "user:1", 3, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("NilRedisFailsOpen", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			allowed, err := CheckRateLimit(ctx, nil, "give_badge", "user:3", 1, time.Minute)
			assert.NoError(t, err)
			assert.True(t, allowed)
		}
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Setenv("APP_ENV", "")
	rdb := testRedis(t)

	app := fiber.New()
	app.Get("/limited", RateLimit(rdb, 2, time.Minute, "limited"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		statuses = append(statuses, resp.StatusCode)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
}
