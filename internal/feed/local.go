package feed

import (
	"context"
	"sync"

	"grouporder/internal/domain"

	"github.com/sirupsen/logrus"
)

type localSubscriber struct {
	ch          chan domain.Change
	collections map[domain.Collection]bool
}

// LocalFeed fans changes out to subscribers of the same process. Slow
// subscribers drop changes instead of blocking publishers; a later change
// still triggers a fresh snapshot.
type LocalFeed struct {
	mu          sync.RWMutex
	subscribers map[*localSubscriber]struct{}
	log         *logrus.Logger
}

var _ domain.ChangeFeed = (*LocalFeed)(nil)

func NewLocalFeed(logger *logrus.Logger) *LocalFeed {
	return &LocalFeed{
		subscribers: make(map[*localSubscriber]struct{}),
		log:         logger,
	}
}

func (f *LocalFeed) Publish(_ context.Context, change domain.Change) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for sub := range f.subscribers {
		if len(sub.collections) > 0 && !sub.collections[change.Collection] {
			continue
		}
		select {
		case sub.ch <- change:
		default:
			f.log.WithField("collection", change.Collection).Warn("Subscriber buffer full, change dropped")
		}
	}
	return nil
}

func (f *LocalFeed) Subscribe(ctx context.Context, collections ...domain.Collection) (<-chan domain.Change, func(), error) {
	sub := &localSubscriber{
		ch:          make(chan domain.Change, 64),
		collections: make(map[domain.Collection]bool, len(collections)),
	}
	for _, c := range collections {
		sub.collections[c] = true
	}

	f.mu.Lock()
	f.subscribers[sub] = struct{}{}
	f.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-subCtx.Done()
		f.mu.Lock()
		delete(f.subscribers, sub)
		close(sub.ch)
		f.mu.Unlock()
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
	return sub.ch, stop, nil
}
