package redis

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/carewatch-api/pkg/messaging"
)

func TestNewRedisBroker_BadURL(t *testing.T) {
	_, err := NewRedisBroker(Config{URL: "not-a-url"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse Redis URL")
}

func TestPublish_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	b := newBroker(client, "carewatch:", nil)

	err := b.Publish(context.Background(), "alert.dispatched", messaging.Message{Type: "alert.dispatched"})
	assert.Error(t, err)
	assert.Equal(t, "closed", b.cb.State())
}
