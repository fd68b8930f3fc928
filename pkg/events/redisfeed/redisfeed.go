// Package redisfeed subscribes to orchestrator events published on a Redis
// pub/sub channel as JSON.
package redisfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/taskgraph/pkg/events"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "taskgraph:events"

// Feed is an events.Feed backed by Redis pub/sub.
type Feed struct {
	client  *redis.Client
	channel string
	logger  *log.Logger
}

// New returns a feed on channel. A nil logger discards.
func New(client *redis.Client, channel string, logger *log.Logger) *Feed {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Feed{client: client, channel: channel, logger: logger}
}

// Subscribe opens a subscription and confirms it before returning. Payloads
// that fail to decode are logged and skipped.
func (f *Feed) Subscribe(ctx context.Context) (<-chan events.Event, error) {
	ps := f.client.Subscribe(ctx, f.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", f.channel, err)
	}

	out := make(chan events.Event, events.DefaultBuffer)
	go func() {
		defer close(out)
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				e, err := events.Decode([]byte(msg.Payload))
				if err != nil {
					f.logger.Warn("skipping event", "channel", msg.Channel, "err", err)
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Publish sends e on the feed's channel.
func (f *Feed) Publish(ctx context.Context, e events.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, f.channel, data).Err()
}

var _ events.Feed = (*Feed)(nil)
