package ws

import (
	"testing"
	"time"
)

// A push to a closed client must return instead of blocking on the egress
// channel, since the write pump that drains it is already gone.
func TestPushToEgressAfterClose(t *testing.T) {
	c := NewClient("id-1", "ada", nil, testManager)
	c.markClosed()

	done := make(chan struct{})
	go func() {
		c.PushToEgress(Event{Type: EventTurnUpdate})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("push to a closed client blocked")
	}
}

func TestMarkClosedIsIdempotent(t *testing.T) {
	c := NewClient("id-2", "ben", nil, testManager)
	c.markClosed()
	c.markClosed()
}
