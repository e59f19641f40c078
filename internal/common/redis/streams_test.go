package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishToStream_EncodesValues(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	id, err := PublishToStream(ctx, client, "cts:events", map[string]interface{}{
		"type":       "calculation.completed",
		"calculated": 3,
		"ok":         true,
		"counts":     map[string]int{"orders": 2},
	}, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	msgs, err := ReadRange(ctx, client, "cts:events")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "calculation.completed", msgs[0].Values["type"])
	assert.Equal(t, "3", msgs[0].Values["calculated"])
	assert.Equal(t, "true", msgs[0].Values["ok"])
	assert.Equal(t, `{"orders":2}`, msgs[0].Values["counts"])
}
