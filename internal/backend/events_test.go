package backend

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvEvent(t *testing.T, ch chan AuthEvent) AuthEvent {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("expected an event")
		return ""
	}
}

func TestBroadcaster_FanOutAndUnsubscribe(t *testing.T) {
	var b broadcaster

	ch1 := make(chan AuthEvent, 4)
	ch2 := make(chan AuthEvent, 4)
	unsub1 := b.subscribe(func(e AuthEvent, s *Session) { ch1 <- e })
	b.subscribe(func(e AuthEvent, s *Session) { ch2 <- e })

	b.emit(EventSignedIn, nil)
	require.Equal(t, EventSignedIn, recvEvent(t, ch1))
	require.Equal(t, EventSignedIn, recvEvent(t, ch2))

	unsub1()
	b.emit(EventSignedOut, nil)
	require.Equal(t, EventSignedOut, recvEvent(t, ch2))

	select {
	case e := <-ch1:
		t.Fatalf("unsubscribed handler received %q", e)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroadcaster_EmitWithoutSubscribersIsSafe(t *testing.T) {
	var b broadcaster
	assert.NotPanics(t, func() { b.emit(EventSignedOut, nil) })
}

// A re-login emits signed_out then signed_in back to back; subscribers must
// see them in that order or a stale sign-out clobbers the fresh session.
func TestBroadcaster_DeliversInEmissionOrder(t *testing.T) {
	var b broadcaster

	var mu sync.Mutex
	var got []AuthEvent
	b.subscribe(func(e AuthEvent, s *Session) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})

	const pairs = 500
	want := make([]AuthEvent, 0, 2*pairs)
	for i := 0; i < pairs; i++ {
		b.emit(EventSignedOut, nil)
		b.emit(EventSignedIn, nil)
		want = append(want, EventSignedOut, EventSignedIn)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == len(want)
	}, 5*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, want, got)
}
