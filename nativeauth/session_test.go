package nativeauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreCleanIsIdempotent(t *testing.T) {
	s := NewStore()
	assert.False(t, s.Authorizing())
	assert.False(t, s.InClosingWindow())

	// clean from every reachable state lands in the same place
	s.Clean()
	assert.False(t, s.Authorizing())

	s.Start(func(string) bool { return true })
	s.Clean()
	assert.False(t, s.Authorizing())
	assert.False(t, s.InClosingWindow())

	s.Start(func(string) bool { return true })
	s.Closing()
	s.Clean()
	assert.False(t, s.Authorizing())
	assert.False(t, s.InClosingWindow())

	s.Clean()
	s.Clean()
	assert.False(t, s.Authorizing())
}

func TestStoreTransitions(t *testing.T) {
	s := NewStore()
	s.Start(func(string) bool { return true })
	assert.True(t, s.Authorizing())
	assert.False(t, s.InClosingWindow())

	s.Closing()
	assert.True(t, s.Authorizing())
	assert.True(t, s.InClosingWindow())
}

func TestStoreClosingRequiresAttempt(t *testing.T) {
	s := NewStore()
	s.Closing()
	assert.False(t, s.InClosingWindow())

	s.Start(func(string) bool { return true })
	s.Clean()
	s.Closing()
	assert.False(t, s.InClosingWindow())
}

func TestStoreRedirect(t *testing.T) {
	s := NewStore()
	assert.False(t, s.Redirect("app://callback"), "no hook registered")

	var got string
	s.Start(func(u string) bool {
		got = u
		return true
	})
	assert.True(t, s.Redirect("app://callback?code=abc"))
	assert.Equal(t, "app://callback?code=abc", got)

	s.Clean()
	assert.False(t, s.Redirect("app://callback"), "clean drops the hook")
}

func TestStoreRedirectHookMayUseStore(t *testing.T) {
	s := NewStore()
	s.Start(func(string) bool {
		s.Clean() // must not deadlock
		return true
	})
	assert.True(t, s.Redirect("app://callback"))
	assert.False(t, s.Authorizing())
}
