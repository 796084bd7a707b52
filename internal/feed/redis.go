// Package feed delivers store change notifications to live subscribers.
//
// Channel format:
//   - {prefix}:changes:{collection}
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"grouporder/internal/domain"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const DefaultPrefix = "grouporder"

// RedisFeed implements domain.ChangeFeed on Redis Pub/Sub so every instance of
// the service sees every mutation.
type RedisFeed struct {
	client *redis.Client
	prefix string
	log    *logrus.Logger
}

var _ domain.ChangeFeed = (*RedisFeed)(nil)

func NewRedisFeed(client *redis.Client, prefix string, logger *logrus.Logger) *RedisFeed {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisFeed{client: client, prefix: prefix, log: logger}
}

func (f *RedisFeed) channel(c domain.Collection) string {
	return fmt.Sprintf("%s:changes:%s", f.prefix, c)
}

func (f *RedisFeed) Publish(ctx context.Context, change domain.Change) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}
	channel := f.channel(change.Collection)
	if err := f.client.Publish(ctx, channel, data).Err(); err != nil {
		f.log.WithFields(logrus.Fields{
			"channel": channel,
			"error":   err.Error(),
		}).Error("Failed to publish change")
		return domain.Upstream("publish change", err)
	}
	f.log.WithFields(logrus.Fields{
		"channel": channel,
		"op":      change.Op,
		"id":      change.ID,
	}).Debug("Change published")
	return nil
}

// Subscribe listens on the channels of the given collections, or on all of
// them when none is named. The returned channel is closed after the cancel
// func is called or ctx ends; cancel waits for the receiving goroutine to exit.
func (f *RedisFeed) Subscribe(ctx context.Context, collections ...domain.Collection) (<-chan domain.Change, func(), error) {
	if len(collections) == 0 {
		collections = domain.AllCollections
	}
	channels := make([]string, 0, len(collections))
	for _, c := range collections {
		channels = append(channels, f.channel(c))
	}

	subCtx, cancel := context.WithCancel(ctx)
	pubsub := f.client.Subscribe(subCtx, channels...)

	if _, err := pubsub.Receive(subCtx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, nil, domain.Upstream("subscribe to changes", err)
	}

	out := make(chan domain.Change, 16)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer close(out)
		defer func() { _ = pubsub.Close() }()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var change domain.Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					f.log.WithFields(logrus.Fields{
						"channel": msg.Channel,
						"error":   err.Error(),
					}).Warn("Failed to unmarshal change")
					continue
				}
				select {
				case out <- change:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	f.log.WithField("channels", strings.Join(channels, ",")).Debug("Subscribed to change channels")

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
	return out, stop, nil
}
