package cache

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/petnest/internal/server/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "petnest:session:abc", sessionKey("abc"))
	assert.Equal(t, "petnest:revoked:abc", revokedKey("abc"))
}

func TestEncodeDecode(t *testing.T) {
	ts := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	in := &models.Session{
		Token: "tok", UserID: 9, ExpiresAt: ts.Add(time.Hour), IPAddress: "1.2.3.4", UserAgent: "ua", CreatedAt: ts,
	}

	raw, err := encode(in)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "tok", "token is the key, not part of the value")

	out, err := decode("tok", raw)
	require.NoError(t, err)
	assert.Equal(t, in.UserID, out.UserID)
	assert.True(t, in.ExpiresAt.Equal(out.ExpiresAt))
	assert.Equal(t, "tok", out.Token)
	assert.Equal(t, "1.2.3.4", out.IPAddress)

	_, err = decode("tok", []byte("{"))
	require.Error(t, err)
}

func TestConnect_BadURL(t *testing.T) {
	_, err := Connect(context.Background(), "redis://:badport:x/")
	require.Error(t, err)
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := Connect(ctx, "127.0.0.1:1")
	require.Error(t, err)
}

func TestRedisSessionCache_ErrorsSurface(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	defer client.Close()
	c := NewRedisSessionCache(client)
	ctx := context.Background()

	_, err := c.Get(ctx, "tok")
	assert.Error(t, err)
	assert.Error(t, c.Set(ctx, &models.Session{Token: "tok", UserID: 1}, time.Minute))
	assert.Error(t, c.Revoke(ctx, time.Minute, "tok"))
}

func TestRedisSessionCache_SetNonPositiveTTL(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()

	// no round trip happens, so the unreachable server does not matter
	require.NoError(t, NewRedisSessionCache(client).Set(context.Background(), &models.Session{Token: "t"}, 0))
}

func TestRedisSessionCache_RevokeNothing(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()

	require.NoError(t, NewRedisSessionCache(client).Revoke(context.Background(), time.Minute))
}
