package chat

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parley/internal/app/user"
)

func TestSessionRegistryRegisterAndLookup(t *testing.T) {
	r := NewSessionRegistry()

	_, overwrote := r.Register("c-1", user.User{ID: "alice"})
	assert.False(t, overwrote)

	identity, ok := r.Lookup("c-1")
	require.True(t, ok)
	assert.Equal(t, "alice", identity.ID)

	_, ok = r.Lookup("c-2")
	assert.False(t, ok)
}

func TestSessionRegistryMultiDevice(t *testing.T) {
	r := NewSessionRegistry()

	r.Register("c-1", user.User{ID: "alice"})
	r.Register("c-2", user.User{ID: "alice"})
	r.Register("c-3", user.User{ID: "bob"})

	assert.Equal(t, 2, r.CountForUser("alice"))
	assert.Equal(t, 1, r.CountForUser("bob"))
	assert.Equal(t, 3, r.Len())
	assert.ElementsMatch(t, []string{"c-1", "c-2"}, r.ConnectionsForUser("alice"))

	r.Unregister("c-1")
	assert.Equal(t, 1, r.CountForUser("alice"))
	r.Unregister("c-2")
	assert.Equal(t, 0, r.CountForUser("alice"))
	assert.Empty(t, r.ConnectionsForUser("alice"))
}

func TestSessionRegistryUnregisterUnknown(t *testing.T) {
	r := NewSessionRegistry()

	_, ok := r.Unregister("c-ghost")
	assert.False(t, ok)

	// Repeated unregister of a real entry only succeeds once.
	r.Register("c-1", user.User{ID: "alice"})
	_, ok = r.Unregister("c-1")
	assert.True(t, ok)
	_, ok = r.Unregister("c-1")
	assert.False(t, ok)
}

func TestSessionRegistryDuplicateOverwrites(t *testing.T) {
	r := NewSessionRegistry()

	r.Register("c-1", user.User{ID: "alice"})
	previous, overwrote := r.Register("c-1", user.User{ID: "bob"})

	require.True(t, overwrote)
	assert.Equal(t, "alice", previous.ID)

	identity, ok := r.Lookup("c-1")
	require.True(t, ok)
	assert.Equal(t, "bob", identity.ID)

	// The old user index must not keep a ghost connection.
	assert.Equal(t, 0, r.CountForUser("alice"))
	assert.Equal(t, 1, r.CountForUser("bob"))
	assert.Equal(t, 1, r.Len())
}

func TestSessionRegistryConcurrentAccess(t *testing.T) {
	r := NewSessionRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			connID := fmt.Sprintf("c-%d", n)
			r.Register(connID, user.User{ID: fmt.Sprintf("u-%d", n%5)})
			r.Lookup(connID)
			r.Unregister(connID)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, r.Len())
}
