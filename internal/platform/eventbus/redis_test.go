package eventbus

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poll-registry/internal/domain/poll"
)

func TestEncode(t *testing.T) {
	at := time.Unix(1000, 0).UTC()
	b, err := Encode(poll.Event{Seq: 4, Type: poll.EventVoteCast, PollID: 2, Actor: "bob", At: at, Choice: 1})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, "VoteCast", doc["type"])
	assert.EqualValues(t, 4, doc["seq"])
	assert.EqualValues(t, 1, doc["choice"])
	assert.NotContains(t, doc, "end_time")
	assert.NotContains(t, doc, "question")
}

func TestDefaultChannel(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	assert.Equal(t, DefaultChannel, NewRedisPublisher(client, "").Channel())
	assert.Equal(t, "custom", NewRedisPublisher(client, "custom").Channel())
}

func TestPublishUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	p := NewRedisPublisher(client, "")
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Error(t, p.Publish(ctx, poll.Event{Type: poll.EventPollClosed}))
	assert.Error(t, p.Ping(ctx))
}
