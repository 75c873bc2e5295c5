package feed

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, sub *Subscription[T]) Event[T] {
	t.Helper()
	select {
	case ev, ok := <-sub.Updates():
		require.True(t, ok, "subscription closed unexpectedly")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event[T]{}
}

func TestSubscribeReceivesLatestFirst(t *testing.T) {
	f := New[string]()
	f.Publish("one")
	f.Publish("two")

	sub := f.Subscribe()
	defer sub.Close()

	ev := receive(t, sub)
	assert.Equal(t, uint64(2), ev.Seq)
	assert.Equal(t, "two", ev.Value)
}

func TestSubscribeBeforeAnyPublish(t *testing.T) {
	f := New[int]()
	sub := f.Subscribe()
	defer sub.Close()

	select {
	case <-sub.Updates():
		t.Fatal("no event expected before first publish")
	default:
	}

	f.Publish(7)
	ev := receive(t, sub)
	assert.Equal(t, uint64(1), ev.Seq)
	assert.Equal(t, 7, ev.Value)
}

func TestSlowSubscriberSkipsToNewest(t *testing.T) {
	f := New[int]()
	sub := f.Subscribe()
	defer sub.Close()

	for i := 1; i <= 5; i++ {
		f.Publish(i)
	}

	ev := receive(t, sub)
	assert.Equal(t, uint64(5), ev.Seq)
	assert.Equal(t, 5, ev.Value)
}

func TestEventsNeverGoBackwards(t *testing.T) {
	f := New[int]()
	sub := f.Subscribe()
	defer sub.Close()

	const total = 500
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= total; i++ {
			f.Publish(i)
		}
	}()

	var last uint64
	for last < total {
		ev := receive(t, sub)
		require.Greater(t, ev.Seq, last)
		require.Equal(t, int(ev.Seq), ev.Value)
		last = ev.Seq
	}
	wg.Wait()
}

func TestCloseSubscription(t *testing.T) {
	f := New[int]()
	sub := f.Subscribe()
	require.Equal(t, 1, f.Len())

	sub.Close()
	sub.Close()

	assert.Equal(t, 0, f.Len())
	_, ok := <-sub.Updates()
	assert.False(t, ok)
	_, ok = <-sub.Done()
	assert.False(t, ok)

	// publishing after a subscriber left must not panic
	f.Publish(1)
}

func TestDoneDoesNotConsumeEvents(t *testing.T) {
	f := New[int]()
	sub := f.Subscribe()
	defer sub.Close()

	f.Publish(7)
	select {
	case <-sub.Done():
		t.Fatal("done closed on a live subscription")
	default:
	}

	ev := <-sub.Updates()
	assert.Equal(t, 7, ev.Value)
}

func TestCloseFeed(t *testing.T) {
	f := New[int]()
	sub := f.Subscribe()
	f.Close()

	_, ok := <-sub.Updates()
	assert.False(t, ok)
	_, ok = <-sub.Done()
	assert.False(t, ok)
	sub.Close()

	ev := f.Publish(3)
	assert.Zero(t, ev.Seq)

	late := f.Subscribe()
	_, ok = <-late.Updates()
	assert.False(t, ok)
	_, ok = <-late.Done()
	assert.False(t, ok)
	late.Close()
}

func TestLatest(t *testing.T) {
	f := New[string]()
	_, ok := f.Latest()
	assert.False(t, ok)

	f.Publish("a")
	ev, ok := f.Latest()
	require.True(t, ok)
	assert.Equal(t, "a", ev.Value)
	assert.False(t, ev.PublishedAt.IsZero())
}
