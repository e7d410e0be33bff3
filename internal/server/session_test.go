package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/gfc-explorer/internal/model"
)

func TestSessionStoreMintsID(t *testing.T) {
	s := newSessionStore(time.Minute)

	id := s.Set("", model.DefaultSelection("Reno, NV"))
	require.NotEmpty(t, id)
	assert.Equal(t, 1, s.Len())

	sel, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, "Reno, NV", sel.CBSAName)
}

func TestSessionStoreOverwrite(t *testing.T) {
	s := newSessionStore(time.Minute)

	id := s.Set("", model.DefaultSelection("Reno, NV"))
	same := s.Set(id, model.DefaultSelection("Elko, NV"))
	assert.Equal(t, id, same)
	assert.Equal(t, 1, s.Len())

	sel, _ := s.Get(id)
	assert.Equal(t, "Elko, NV", sel.CBSAName)
}

func TestSessionStoreExpiry(t *testing.T) {
	s := newSessionStore(10 * time.Millisecond)
	id := s.Set("", model.DefaultSelection("Reno, NV"))

	time.Sleep(20 * time.Millisecond)
	_, ok := s.Get(id)
	assert.False(t, ok)
}

func TestSessionStoreUnknownID(t *testing.T) {
	s := newSessionStore(time.Minute)
	_, ok := s.Get("nope")
	assert.False(t, ok)
	_, ok = s.Get("")
	assert.False(t, ok)
}

func TestSessionStoreDefaultTTL(t *testing.T) {
	s := newSessionStore(0)
	assert.Equal(t, 30*time.Minute, s.ttl)
}
