// broker/broker.go
package broker

import (
	"sync"
)

// Broker fans messages out to topic subscribers. Publish never blocks: a
// subscriber whose buffer is full misses the message.
type Broker[T any] struct {
	subscribers map[string][]chan T
	bufferSize  int
	mu          sync.RWMutex
}

func NewBroker[T any](bufferSize int) *Broker[T] {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Broker[T]{
		subscribers: make(map[string][]chan T),
		bufferSize:  bufferSize,
	}
}

func (b *Broker[T]) Subscribe(topic string) <-chan T {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan T, b.bufferSize)
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	return ch
}

func (b *Broker[T]) Unsubscribe(topic string, ch <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if chans, ok := b.subscribers[topic]; ok {
		for i, c := range chans {
			if c == ch {
				b.subscribers[topic] = append(chans[:i], chans[i+1:]...)
				close(c)
				break
			}
		}
	}
}

// Publish returns the number of subscribers that received msg.
func (b *Broker[T]) Publish(topic string, msg T) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	delivered := 0
	for _, ch := range b.subscribers[topic] {
		select {
		case ch <- msg:
			delivered++
		default:
		}
	}
	return delivered
}

func (b *Broker[T]) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}
