package randx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIDIsValidAndUnique(t *testing.T) {
	a := NewID()
	b := NewID()

	assert.True(t, IsValidID(a))
	assert.True(t, IsValidID(b))
	assert.NotEqual(t, a, b)
}

func TestConnectionID(t *testing.T) {
	assert.True(t, IsValidID(ConnectionID()))
}

func TestIsValidID(t *testing.T) {
	assert.True(t, IsValidID("a2720360-5734-4e52-a9a4-9f4f1ab9a1b2"))
	assert.False(t, IsValidID(""))
	assert.False(t, IsValidID("not-a-uuid"))
}

func TestPairKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, PairKey("alice", "bob"), PairKey("bob", "alice"))
	assert.Equal(t, "alice:bob", PairKey("bob", "alice"))

	// Distinct pairs produce distinct keys.
	assert.NotEqual(t, PairKey("alice", "bob"), PairKey("alice", "carol"))
}
