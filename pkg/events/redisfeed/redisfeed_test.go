package redisfeed

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNewDefaults(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	f := New(client, "", nil)
	if f.channel != DefaultChannel || f.logger == nil {
		t.Errorf("defaults not applied: %+v", f)
	}
}

func TestSubscribeUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := New(client, "", nil).Subscribe(ctx); err == nil {
		t.Error("Subscribe to unreachable redis should fail")
	}
}
