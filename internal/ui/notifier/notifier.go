// Package notifier provides a simple broadcast mechanism for SSE updates.
package notifier

import "sync"

// bufferSize is the number of undelivered values a listener may hold.
const bufferSize = 8

// Notifier broadcasts values to all subscribed listeners.
type Notifier[T any] struct {
	mu        sync.RWMutex
	listeners map[chan T]struct{}
}

// New creates a new Notifier instance.
func New[T any]() *Notifier[T] {
	return &Notifier[T]{
		listeners: make(map[chan T]struct{}),
	}
}

// Subscribe returns a channel that receives every broadcast value.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier[T]) Subscribe() chan T {
	ch := make(chan T, bufferSize)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier[T]) Unsubscribe(ch chan T) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Len returns the number of subscribed listeners.
func (n *Notifier[T]) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// Broadcast sends v to all listeners.
// Non-blocking: if a listener's channel is full, the value is dropped for it.
func (n *Notifier[T]) Broadcast(v T) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- v:
		default:
			// Channel full, skip (listener will catch up on next broadcast)
		}
	}
}
