package client

import (
	"context"
	"sync"

	"github.com/krakosik/pollbot/internal/dto"
	"github.com/sirupsen/logrus"
)

type memoryBroker struct {
	subscribers     map[string]chan dto.PollEvent
	subscriberMutex sync.RWMutex
}

func newMemoryBroker() Broker {
	logrus.Warn("Using in-memory poll event broker (RabbitMQ not available)")
	return &memoryBroker{
		subscribers: make(map[string]chan dto.PollEvent),
	}
}

// Publish never blocks; a subscriber with a full buffer misses the event.
func (b *memoryBroker) Publish(_ context.Context, event dto.PollEvent) error {
	b.subscriberMutex.RLock()
	defer b.subscriberMutex.RUnlock()

	for _, events := range b.subscribers {
		select {
		case events <- event:
		default:
		}
	}
	return nil
}

func (b *memoryBroker) Subscribe(id string) (<-chan dto.PollEvent, error) {
	b.subscriberMutex.Lock()
	defer b.subscriberMutex.Unlock()

	if events, exists := b.subscribers[id]; exists {
		return events, nil
	}

	events := make(chan dto.PollEvent, 100)
	b.subscribers[id] = events
	return events, nil
}

func (b *memoryBroker) Unsubscribe(id string) error {
	b.subscriberMutex.Lock()
	defer b.subscriberMutex.Unlock()

	if events, exists := b.subscribers[id]; exists {
		close(events)
		delete(b.subscribers, id)
	}
	return nil
}

func (b *memoryBroker) Close() error {
	b.subscriberMutex.Lock()
	defer b.subscriberMutex.Unlock()

	for id, events := range b.subscribers {
		close(events)
		delete(b.subscribers, id)
	}
	return nil
}
