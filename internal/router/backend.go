package router

import (
	"context"
	"sync"

	"github.com/msto63/nsms/internal/message"
)

// Backend delivers outgoing messages to a carrier.
type Backend interface {
	Name() string
	Send(ctx context.Context, msg *message.Message) error
}

// TesterBackend keeps outgoing messages in memory and hands each one to its
// subscribers. The websocket tester and the console read replies from it.
type TesterBackend struct {
	name        string
	subscribers map[int]chan *message.Message
	nextID      int
	mu          sync.Mutex
}

// NewTesterBackend creates a tester backend. An empty name yields "tester".
func NewTesterBackend(name string) *TesterBackend {
	return &TesterBackend{
		name:        message.TesterBackend(name),
		subscribers: make(map[int]chan *message.Message),
	}
}

// Name returns the backend name.
func (b *TesterBackend) Name() string {
	return b.name
}

// Send hands a copy of msg, marked sent, to every subscriber. Messages are
// not retained; the message log already stores them. Subscribers that are
// not keeping up miss the message rather than blocking the router.
func (b *TesterBackend) Send(ctx context.Context, msg *message.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sent := *msg
	sent.Status = message.StatusSent

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- &sent:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel receiving every message sent from now on and
// a function that ends the subscription.
func (b *TesterBackend) Subscribe(buffer int) (<-chan *message.Message, func()) {
	if buffer < 1 {
		buffer = 16
	}
	ch := make(chan *message.Message, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}
