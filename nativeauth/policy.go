package nativeauth

import (
	"time"

	"github.com/authlite/shellauth/common"
	"github.com/authlite/shellauth/common/env"
	"github.com/authlite/shellauth/common/settings"
)

const (
	// DefaultGraceWindow is how long a browser close is given to turn out to
	// be a legitimate redirect before it is confirmed as user cancellation.
	DefaultGraceWindow = time.Second

	// DefaultAttemptTimeout bounds a whole attempt against a surface that
	// never reports anything back.
	DefaultAttemptTimeout = 5 * time.Minute
)

// Policy carries the timing knobs of an authorization attempt. It is injected
// into the Coordinator so tests can run with zero or near-zero windows instead
// of depending on wall-clock timers.
type Policy struct {
	// GraceWindow delays cancellation confirmation after a close event. Zero
	// confirms synchronously.
	GraceWindow time.Duration
	// AttemptTimeout fails the attempt if nothing terminal happened by then.
	// Zero disables the timeout.
	AttemptTimeout time.Duration
}

// PlatformPolicy returns the policy for the current platform. Apple web views
// report a close only after navigation has fully settled, so there is no race
// to absorb and the window is zero; everywhere else a close can fire spuriously
// close to a legitimate redirect and gets the default window.
func PlatformPolicy() Policy {
	p := Policy{
		GraceWindow:    DefaultGraceWindow,
		AttemptTimeout: DefaultAttemptTimeout,
	}
	if common.Family() == common.FamilyApple {
		// Close only fires after navigation settled; nothing to wait out.
		p.GraceWindow = 0
		return p
	}
	if d := settings.GetDuration(settings.GraceWindowKey); d > 0 {
		p.GraceWindow = d
	}
	if raw, ok := env.Get[string](env.GraceWindow); ok {
		if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
			p.GraceWindow = d
		}
	}
	return p
}
