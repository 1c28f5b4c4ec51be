// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package eventbus implements the default in-process "Event bus" external
// port named in spec.md §5.3: a topic-keyed publish/subscribe registry
// that every subsystem uses to emit and receive AuthenticatedMessage
// envelopes instead of addressing each other directly. Subsystems in this
// module are otherwise decoupled from one another.
package eventbus

import (
	"sync"

	"github.com/NerfedChou/Quantum-Chain-sub004/envelope"
)

// Handler processes one delivered envelope. A Handler must not block for
// long; subscribers that need to do real work should hand the envelope off
// to their own goroutine/queue.
type Handler func(env *envelope.Envelope)

// Bus is a topic-keyed publish/subscribe registry. The zero value is not
// usable; construct with New.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]subscription
	nextID      uint64
}

type subscription struct {
	id      uint64
	handler Handler
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{subscribers: make(map[string][]subscription)}
}

// Subscription is an opaque handle returned by Subscribe, used to
// Unsubscribe later.
type Subscription struct {
	topic string
	id    uint64
}

// Subscribe registers handler to be called, synchronously and in
// registration order, for every envelope Published to topic. It returns a
// Subscription handle for later Unsubscribe.
func (b *Bus) Subscribe(topic string, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subscribers[topic] = append(b.subscribers[topic], subscription{id: id, handler: handler})
	return Subscription{topic: topic, id: id}
}

// Unsubscribe removes a previously registered subscription. It is a no-op
// if sub was already removed.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subscribers[sub.topic]
	for i, s := range subs {
		if s.id == sub.id {
			b.subscribers[sub.topic] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Publish delivers env to every handler currently subscribed to topic, in
// registration order. Publish takes a snapshot of the subscriber list
// before calling any handler, so a handler that subscribes or
// unsubscribes during delivery does not affect the current Publish call.
func (b *Bus) Publish(topic string, env *envelope.Envelope) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subscribers[topic]))
	copy(subs, b.subscribers[topic])
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(env)
	}
}

// SubscriberCount reports how many handlers are currently registered for
// topic, for statistics/testing.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}
