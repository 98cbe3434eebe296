package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisabledClientIsAlwaysAMiss(t *testing.T) {
	ctx := context.Background()

	for name, c := range map[string]*Client{"nil": nil, "empty addr": New("", "", 0)} {
		t.Run(name, func(t *testing.T) {
			assert.False(t, c.Enabled())
			assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

			got, err := c.Get(ctx, "k")
			assert.NoError(t, err)
			assert.Nil(t, got)

			var dst []string
			c.SetJSON(ctx, "k", []string{"a"}, time.Minute)
			assert.False(t, c.GetJSON(ctx, "k", &dst))
			assert.NoError(t, c.Delete(ctx, "k"))
			assert.NoError(t, c.Close())
		})
	}
}

func TestUnreachableRedisFailsSafe(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := New("127.0.0.1:1", "", 0)
	defer c.Close()

	assert.True(t, c.Enabled())
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Delete(ctx, "k"))
}
