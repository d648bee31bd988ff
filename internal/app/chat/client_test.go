package chat

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueueOnlyClient(buffer int) *Client {
	return &Client{
		send:   make(chan []byte, buffer),
		logger: zerolog.Nop(),
	}
}

func TestEnqueueAfterTeardown(t *testing.T) {
	c := newQueueOnlyClient(sendQueueSize)

	require.NoError(t, c.Enqueue(Envelope{Event: EventJoinedRoom}))

	c.closeSend()

	// Fan-out arriving after teardown must fail cleanly, never reach the
	// closed channel.
	assert.Error(t, c.Enqueue(Envelope{Event: EventNewMessage}))

	// Teardown is idempotent.
	c.closeSend()
	assert.Error(t, c.Enqueue(Envelope{Event: EventNewMessage}))
}

func TestEnqueueConcurrentWithTeardown(t *testing.T) {
	c := newQueueOnlyClient(4)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				// Errors (queue full, closed) are expected; a panic is not.
				_ = c.Enqueue(Envelope{Event: EventUserTyping})
			}
		}()
	}

	c.closeSend()
	wg.Wait()

	assert.Error(t, c.Enqueue(Envelope{Event: EventUserTyping}))
}

func TestEnqueueDropsWhenQueueFull(t *testing.T) {
	c := newQueueOnlyClient(1)

	require.NoError(t, c.Enqueue(Envelope{Event: EventJoinedRoom}))
	assert.Error(t, c.Enqueue(Envelope{Event: EventJoinedRoom}))
}
