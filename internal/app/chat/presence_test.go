package chat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresenceTrackerEdges(t *testing.T) {
	p := NewPresenceTracker()

	assert.False(t, p.IsOnline("alice"))

	// Only the first connection reports the online transition.
	assert.True(t, p.OnConnect("alice"))
	assert.False(t, p.OnConnect("alice"))
	assert.True(t, p.IsOnline("alice"))

	// Only the last disconnection reports the offline transition.
	assert.False(t, p.OnDisconnect("alice"))
	assert.True(t, p.OnDisconnect("alice"))
	assert.False(t, p.IsOnline("alice"))
}

func TestPresenceTrackerUnknownUser(t *testing.T) {
	p := NewPresenceTracker()

	// A stray disconnect must not underflow into a negative count.
	assert.False(t, p.OnDisconnect("ghost"))
	assert.True(t, p.OnConnect("ghost"))
	assert.True(t, p.OnDisconnect("ghost"))
}

func TestPresenceTrackerOnlineCount(t *testing.T) {
	p := NewPresenceTracker()

	p.OnConnect("alice")
	p.OnConnect("alice")
	p.OnConnect("bob")

	assert.Equal(t, 2, p.OnlineCount())

	p.OnDisconnect("alice")
	assert.Equal(t, 2, p.OnlineCount())
	p.OnDisconnect("alice")
	assert.Equal(t, 1, p.OnlineCount())
}

func TestPresenceTrackerConcurrentTransitions(t *testing.T) {
	p := NewPresenceTracker()

	const devices = 64
	results := make(chan bool, devices)

	var wg sync.WaitGroup
	for i := 0; i < devices; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- p.OnConnect("alice")
		}()
	}
	wg.Wait()
	close(results)

	// Exactly one goroutine observed the offline→online edge.
	cameOnline := 0
	for r := range results {
		if r {
			cameOnline++
		}
	}
	assert.Equal(t, 1, cameOnline)

	offline := make(chan bool, devices)
	for i := 0; i < devices; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			offline <- p.OnDisconnect("alice")
		}()
	}
	wg.Wait()
	close(offline)

	wentOffline := 0
	for r := range offline {
		if r {
			wentOffline++
		}
	}
	assert.Equal(t, 1, wentOffline)
	assert.False(t, p.IsOnline("alice"))
}
