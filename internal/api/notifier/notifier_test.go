package notifier

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_Subscribe_Unsubscribe(t *testing.T) {
	n := New()

	ch := n.Subscribe()
	require.NotNil(t, ch)
	assert.Equal(t, 1, n.Listeners())

	n.Unsubscribe(ch)
	assert.Equal(t, 0, n.Listeners())

	_, open := <-ch
	assert.False(t, open, "channel closed on unsubscribe")

	// A second unsubscribe is a no-op.
	n.Unsubscribe(ch)
}

func TestNotifier_Publish(t *testing.T) {
	n := New()

	ch1 := n.Subscribe()
	ch2 := n.Subscribe()
	defer n.Unsubscribe(ch1)
	defer n.Unsubscribe(ch2)

	ev := n.Publish(5)
	assert.Equal(t, uint64(1), ev.Version)
	assert.Equal(t, 5, ev.Relations)
	assert.NotEmpty(t, ev.ID)

	for _, ch := range []chan Event{ch1, ch2} {
		select {
		case got := <-ch:
			assert.Equal(t, ev, got)
		case <-time.After(100 * time.Millisecond):
			t.Fatal("listener did not receive event")
		}
	}
}

func TestNotifier_SlowListenerSeesLatest(t *testing.T) {
	n := New()
	ch := n.Subscribe()
	defer n.Unsubscribe(ch)

	done := make(chan struct{})
	go func() {
		n.Publish(1)
		n.Publish(2)
		n.Publish(3)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on full channel")
	}

	got := <-ch
	assert.Equal(t, uint64(3), got.Version)
	assert.Equal(t, 3, got.Relations)
	assert.Equal(t, uint64(3), n.Version())
}

func TestNotifier_Concurrent(t *testing.T) {
	n := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := n.Subscribe()
			n.Publish(i)
			n.Unsubscribe(ch)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, n.Listeners())
	assert.Equal(t, uint64(10), n.Version())
}
