// Package nativeauth implements the authorization handshake used when the
// application runs inside a native shell (a mobile app or web view). The
// identity provider's page is opened in a browser surface supplied by the
// shell, and the result comes back through a custom-scheme redirect delivered
// by the host environment.
package nativeauth

import "sync"

// RedirectHook handles a custom-scheme redirect delivered by the host. It
// reports whether it consumed the event so the host dispatcher can fall
// through to other handlers otherwise.
type RedirectHook func(redirectURL string) bool

// Store tracks the progress of a single authorization attempt: whether one is
// in flight and whether a browser-close event is waiting on cancellation
// confirmation. The redirect hook and the close-event handler are the only
// writers; the mutex makes their race well defined regardless of which thread
// the shell delivers events on.
type Store struct {
	mu          sync.Mutex
	authorizing bool
	closing     bool
	onRedirect  RedirectHook
}

func NewStore() *Store {
	return &Store{}
}

// Start marks an attempt as in flight and registers the hook to run when the
// host delivers the redirect.
func (s *Store) Start(hook RedirectHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authorizing = true
	s.closing = false
	s.onRedirect = hook
}

// Closing records that the browser surface reported a close while an attempt
// was in flight. Cancellation is not confirmed until the grace window passes
// without a redirect. A close observed with no attempt in flight is ignored.
func (s *Store) Closing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.authorizing {
		s.closing = true
	}
}

// Clean unconditionally resets the store to its initial state and drops the
// registered hook. Idempotent; every attempt ends here no matter how.
func (s *Store) Clean() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authorizing = false
	s.closing = false
	s.onRedirect = nil
}

// Authorizing reports whether an attempt is in flight.
func (s *Store) Authorizing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authorizing
}

// InClosingWindow reports whether a browser close is awaiting cancellation
// confirmation.
func (s *Store) InClosingWindow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

// Redirect invokes the registered hook with the delivered redirect URL and
// reports whether the event was consumed. The hook runs outside the store's
// lock so it is free to call back into the store.
func (s *Store) Redirect(redirectURL string) bool {
	s.mu.Lock()
	hook := s.onRedirect
	s.mu.Unlock()
	if hook == nil {
		return false
	}
	return hook(redirectURL)
}
