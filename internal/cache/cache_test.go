package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilClient_IsNoop(t *testing.T) {
	var c *Client
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	data, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.DeletePrefix(ctx, "k"))
	assert.False(t, c.GetJSON(ctx, "k", &struct{}{}))
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestUnreachableRedis_FailsSafe(t *testing.T) {
	// nothing listens on port 1
	c := New("127.0.0.1:1", "", 0)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	data, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, c.Delete(ctx, "a", "b"))

	var out []string
	c.SetJSON(ctx, "list", []string{"x"}, time.Minute)
	assert.False(t, c.GetJSON(ctx, "list", &out))
	assert.Error(t, c.Ping(ctx))
}

func TestClient_JSONAndDeletePrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	defer c.Close()
	ctx := context.Background()

	c.SetJSON(ctx, "users:all", []string{"alice"}, time.Minute)
	c.SetJSON(ctx, "users:role:ADMIN", []string{"root"}, time.Minute)
	c.SetJSON(ctx, "user:7", "alice", time.Minute)
	c.SetJSON(ctx, "stats:dashboard", 1, time.Minute)
	assert.True(t, mr.Exists("academics:users:all"))

	var out []string
	require.True(t, c.GetJSON(ctx, "users:all", &out))
	assert.Equal(t, []string{"alice"}, out)

	require.NoError(t, c.DeletePrefix(ctx, "users:"))
	assert.False(t, c.GetJSON(ctx, "users:all", &out))
	assert.False(t, c.GetJSON(ctx, "users:role:ADMIN", &out))

	var name string
	assert.True(t, c.GetJSON(ctx, "user:7", &name), "user:7 does not share the users: prefix")
	var n int
	assert.True(t, c.GetJSON(ctx, "stats:dashboard", &n))

	require.NoError(t, c.Delete(ctx, "user:7", "stats:dashboard"))
	assert.False(t, c.GetJSON(ctx, "user:7", &name))
	assert.False(t, c.GetJSON(ctx, "stats:dashboard", &n))
}
