package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerRoomDelivery(t *testing.T) {
	b := NewBroker()
	a := newFakeSubscriber("c-a")
	c := newFakeSubscriber("c-c")

	b.SubscribeRoom("general", a)
	b.SubscribeRoom("general", c)

	b.DeliverToRoom("general", Envelope{Event: "ping"})
	assert.Equal(t, []string{"ping"}, a.eventNames())
	assert.Equal(t, []string{"ping"}, c.eventNames())

	b.DeliverToRoomExcept("general", "c-a", Envelope{Event: "pong"})
	assert.Equal(t, []string{"ping"}, a.eventNames())
	assert.Equal(t, []string{"ping", "pong"}, c.eventNames())
}

func TestBrokerDeliveryToEmptyRoom(t *testing.T) {
	b := NewBroker()

	// Addressing a room with no subscribers is a silent no-op.
	b.DeliverToRoom("nowhere", Envelope{Event: "ping"})
}

func TestBrokerUserChannel(t *testing.T) {
	b := NewBroker()
	d1 := newFakeSubscriber("c-1")
	d2 := newFakeSubscriber("c-2")
	other := newFakeSubscriber("c-3")

	b.BindUser("alice", d1)
	b.BindUser("alice", d2)
	b.BindUser("bob", other)

	b.DeliverToUser("alice", Envelope{Event: "direct"})

	assert.Equal(t, []string{"direct"}, d1.eventNames())
	assert.Equal(t, []string{"direct"}, d2.eventNames())
	assert.Empty(t, other.eventNames())
}

func TestBrokerUnsubscribeRoom(t *testing.T) {
	b := NewBroker()
	a := newFakeSubscriber("c-a")

	assert.False(t, b.UnsubscribeRoom("general", "c-a"))

	b.SubscribeRoom("general", a)
	assert.True(t, b.IsSubscribed("general", "c-a"))

	assert.True(t, b.UnsubscribeRoom("general", "c-a"))
	assert.False(t, b.IsSubscribed("general", "c-a"))
	assert.False(t, b.UnsubscribeRoom("general", "c-a"))

	b.DeliverToRoom("general", Envelope{Event: "ping"})
	assert.Empty(t, a.eventNames())
}

func TestBrokerDropAll(t *testing.T) {
	b := NewBroker()
	a := newFakeSubscriber("c-a")
	peer := newFakeSubscriber("c-p")

	b.BindUser("alice", a)
	b.SubscribeRoom("general", a)
	b.SubscribeRoom("side", a)
	b.SubscribeRoom("general", peer)

	b.DropAll("c-a")

	b.DeliverToRoom("general", Envelope{Event: "ping"})
	b.DeliverToRoom("side", Envelope{Event: "ping"})
	b.DeliverToUser("alice", Envelope{Event: "direct"})

	assert.Empty(t, a.eventNames())
	require.Equal(t, []string{"ping"}, peer.eventNames())

	// A second drop for the same connection is harmless.
	b.DropAll("c-a")
}

func TestBrokerSlowSubscriberIsSkipped(t *testing.T) {
	b := NewBroker()
	slow := newFakeSubscriber("c-slow")
	slow.fail = true
	fast := newFakeSubscriber("c-fast")

	b.SubscribeRoom("general", slow)
	b.SubscribeRoom("general", fast)

	// A full queue on one subscriber never blocks delivery to the rest.
	b.DeliverToRoom("general", Envelope{Event: "ping"})
	assert.Equal(t, []string{"ping"}, fast.eventNames())
	assert.Empty(t, slow.eventNames())
}
