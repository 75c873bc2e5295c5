// Package feed is a small publish/subscribe primitive for state snapshots.
//
// Every subscriber owns a one-slot mailbox. Publishing replaces whatever the
// mailbox still holds, so a slow reader skips straight to the newest value and
// never observes an older value after a newer one.
package feed

import (
	"sync"
	"time"
)

// Event is one published value, numbered in publish order starting at 1.
type Event[T any] struct {
	Seq         uint64    `json:"seq"`
	Value       T         `json:"value"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Feed fans published values out to subscribers.
type Feed[T any] struct {
	mu          sync.Mutex
	seq         uint64
	latest      *Event[T]
	subscribers map[*Subscription[T]]struct{}
	closed      bool
}

// New creates an empty feed
func New[T any]() *Feed[T] {
	return &Feed[T]{
		subscribers: make(map[*Subscription[T]]struct{}),
	}
}

// Publish stamps v with the next sequence number and delivers it to every
// subscriber. Publishing on a closed feed is a no-op that returns the zero event.
func (f *Feed[T]) Publish(v T) Event[T] {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return Event[T]{}
	}

	f.seq++
	ev := Event[T]{Seq: f.seq, Value: v, PublishedAt: time.Now()}
	f.latest = &ev

	for sub := range f.subscribers {
		sub.offer(ev)
	}
	return ev
}

// Latest returns the most recent event, if any was published
func (f *Feed[T]) Latest() (Event[T], bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.latest == nil {
		return Event[T]{}, false
	}
	return *f.latest, true
}

// Subscribe registers a new subscriber. If a value was already published the
// subscriber receives it first.
func (f *Feed[T]) Subscribe() *Subscription[T] {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub := &Subscription[T]{
		feed: f,
		ch:   make(chan Event[T], 1),
		quit: make(chan struct{}),
	}
	if f.closed {
		sub.finish()
		return sub
	}

	if f.latest != nil {
		sub.ch <- *f.latest
	}
	f.subscribers[sub] = struct{}{}
	return sub
}

// Len returns the number of live subscribers
func (f *Feed[T]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}

// Close ends every subscription. Later publishes are dropped.
func (f *Feed[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	for sub := range f.subscribers {
		sub.finish()
	}
	f.subscribers = make(map[*Subscription[T]]struct{})
}

func (f *Feed[T]) remove(sub *Subscription[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if sub.done {
		return
	}
	delete(f.subscribers, sub)
	sub.finish()
}

// Subscription receives events from a Feed until closed.
type Subscription[T any] struct {
	feed *Feed[T]
	ch   chan Event[T]
	quit chan struct{}
	// guarded by feed.mu
	done bool
	once sync.Once
}

// Updates returns the channel of events. It is closed when the subscription
// or the feed is closed.
func (s *Subscription[T]) Updates() <-chan Event[T] {
	return s.ch
}

// Done is closed together with Updates. Unlike Updates it can be watched
// without consuming events.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.quit
}

// Close detaches the subscription from its feed. Safe to call more than once.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		s.feed.remove(s)
	})
}

// offer must be called with feed.mu held. Only the publisher sends, so after
// draining the stale slot the send cannot block.
func (s *Subscription[T]) offer(ev Event[T]) {
	select {
	case <-s.ch:
	default:
	}
	s.ch <- ev
}

// finish must be called with feed.mu held
func (s *Subscription[T]) finish() {
	s.done = true
	close(s.ch)
	close(s.quit)
}
