/*
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package events carries transient delivery notifications from the
// ingestion path to live observers. Events are not persisted and not
// replayed; the store remains the source of truth.
package events

import (
	"sync"

	"go.uber.org/atomic"
)

// DefaultCapacity bounds how many events a subscriber may have pending
// before it starts losing the oldest ones.
const DefaultCapacity = 16

type Kind int

const (
	// KindDelivered means a message was just stored. Obj is set.
	KindDelivered Kind = iota
	// KindRead means a message in Receiver's mailbox transitioned to
	// read. Obj is nil; the mailbox id is all an observer needs to
	// adjust an unread counter.
	KindRead
)

// MessageSummary mirrors the entry shape of the query API.
type MessageSummary struct {
	Subject string `json:"subject"`
	ID      string `json:"id"`
	Read    bool   `json:"read"`
}

type Event struct {
	Kind     Kind            `json:"-"`
	Obj      *MessageSummary `json:"obj,omitempty"`
	Receiver string          `json:"receiver"`
}

// Bus is a broadcast channel with independent, lossy subscribers.
// Publishing never blocks: a subscriber that has fallen more than the
// bus capacity behind loses its oldest pending events.
type Bus struct {
	mu       sync.Mutex
	subs     map[*Subscriber]struct{}
	capacity int
}

func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{
		subs:     make(map[*Subscriber]struct{}),
		capacity: capacity,
	}
}

// Publish fans the event out to every current subscriber. It succeeds
// whether or not anyone is listening.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		select {
		case sub.ch <- ev:
		default:
			// Full: skip the oldest pending event and try once more.
			// If the subscriber drained in between, the second send
			// lands; otherwise this event is the one lost.
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- ev:
			default:
			}
		}
	}
}

// Subscribe registers a new observer. Events published before the call
// are never seen by it.
func (b *Bus) Subscribe() *Subscriber {
	sub := &Subscriber{
		bus: b,
		ch:  make(chan Event, b.capacity),
	}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

type Subscriber struct {
	bus    *Bus
	ch     chan Event
	closed atomic.Bool
}

// C is the subscriber's receive stream. It is closed by Close.
func (s *Subscriber) C() <-chan Event {
	return s.ch
}

// Close detaches the subscriber from the bus and closes its channel.
// Safe to call more than once.
func (s *Subscriber) Close() {
	if !s.closed.CAS(false, true) {
		return
	}
	s.bus.mu.Lock()
	delete(s.bus.subs, s)
	s.bus.mu.Unlock()
	close(s.ch)
}
