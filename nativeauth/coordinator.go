package nativeauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/authlite/shellauth/browser"
	"github.com/authlite/shellauth/oauth"
)

const tracerName = "github.com/authlite/shellauth/nativeauth"

var (
	// ErrNilCallback is returned synchronously when Authorize is called
	// without a completion callback. Nothing is opened in that case.
	ErrNilCallback = errors.New("authorize: callback must not be nil")

	// ErrAuthorizationInFlight is returned synchronously when Authorize is
	// called while a previous attempt has not terminated yet.
	ErrAuthorizationInFlight = errors.New("another authorization attempt is in flight")

	// ErrUserCanceled reports that the user closed the browser surface before
	// the redirect came back.
	ErrUserCanceled = errors.New("user canceled")

	// ErrAttemptTimeout reports that the surface never produced a terminal
	// event within the attempt timeout.
	ErrAttemptTimeout = errors.New("authorization attempt timed out")
)

// CompletionFunc receives the single terminal outcome of an authorization
// attempt: a token result on success, an error otherwise. It is invoked at
// most once per attempt.
type CompletionFunc func(err error, result *oauth.TokenResult)

// Exchanger is the delegated OAuth client boundary: it turns a delivered
// redirect URL into tokens. Everything about URL parsing, PKCE and the token
// endpoint lives behind it.
type Exchanger interface {
	ExchangeRedirect(ctx context.Context, redirectURL string) (*oauth.TokenResult, error)
}

// Coordinator drives the native authorization round-trip: open the authorize
// URL in a shell-supplied browser surface, wait for the custom-scheme redirect
// to come back through HandleRedirect, and deliver exactly one terminal
// outcome to the caller. A browser close is only confirmed as cancellation
// after the policy's grace window, since on most platforms a close can race a
// legitimate redirect.
type Coordinator struct {
	agents   browser.Acquirer
	exchange Exchanger
	policy   Policy
	store    *Store
	inFlight atomic.Bool
}

func NewCoordinator(agents browser.Acquirer, exchange Exchanger, policy Policy) *Coordinator {
	return &Coordinator{
		agents:   agents,
		exchange: exchange,
		policy:   policy,
		store:    NewStore(),
	}
}

// attempt owns the one-shot completion of a single Authorize call. finish is
// the only way out and fires at most once; whichever of redirect, close
// confirmation, open failure or timeout gets there first wins, and the losers
// become no-ops.
type attempt struct {
	id    string
	coord *Coordinator
	cb    CompletionFunc
	span  trace.Span

	once  sync.Once
	done  atomic.Bool
	timer *time.Timer
}

func (a *attempt) finish(err error, result *oauth.TokenResult) bool {
	fired := false
	a.once.Do(func() {
		fired = true
		a.done.Store(true)
		if a.timer != nil {
			a.timer.Stop()
		}
		a.coord.store.Clean()
		a.coord.inFlight.Store(false)
		if err != nil {
			a.span.RecordError(err)
			slog.Warn("authorization attempt failed", "attempt", a.id, "error", err)
		} else {
			slog.Debug("authorization attempt succeeded", "attempt", a.id)
		}
		a.span.End()
		a.cb(err, result)
	})
	if !fired {
		slog.Error("authorization attempt resolved more than once; dropping", "attempt", a.id, "error", err)
	}
	return fired
}

// Authorize opens authorizeURL in a browser surface and arranges for cb to be
// invoked exactly once with the outcome. Invalid usage and a concurrent
// attempt are reported synchronously through the return value; every other
// failure, including agent acquisition, goes through cb. Browser launches are
// not retried.
func (c *Coordinator) Authorize(ctx context.Context, authorizeURL string, cb CompletionFunc) error {
	if cb == nil {
		return ErrNilCallback
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return ErrAuthorizationInFlight
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "authorize")
	a := &attempt{
		id:    uuid.NewString(),
		coord: c,
		cb:    cb,
		span:  span,
	}
	slog.Debug("starting native authorization", "attempt", a.id)

	agent, err := c.agents.Acquire(ctx)
	if err != nil {
		a.finish(fmt.Errorf("acquiring browser agent: %w", err), nil)
		return nil
	}

	c.store.Start(func(redirectURL string) bool {
		if !c.store.Authorizing() {
			return false
		}
		// The surface closing itself after this point is the redirect's doing,
		// not the user's.
		agent.Close()
		c.store.Clean()
		go func() {
			result, err := c.exchange.ExchangeRedirect(ctx, redirectURL)
			if err != nil {
				a.finish(fmt.Errorf("exchanging authorization code: %w", err), nil)
				return
			}
			a.finish(nil, result)
		}()
		return true
	})

	if c.policy.AttemptTimeout > 0 {
		a.timer = time.AfterFunc(c.policy.AttemptTimeout, func() {
			if a.finish(ErrAttemptTimeout, nil) {
				agent.Close()
			}
		})
	}

	if err := agent.Open(authorizeURL, func(evt browser.Event) {
		c.onAgentEvent(a, evt)
	}); err != nil {
		a.finish(fmt.Errorf("opening browser agent: %w", err), nil)
	}
	return nil
}

func (c *Coordinator) onAgentEvent(a *attempt, evt browser.Event) {
	// Surfaces can report events after their attempt terminated, e.g. a close
	// landing while a newer attempt owns the store. Those must not touch state.
	if a.done.Load() {
		slog.Debug("dropping event from terminated attempt", "attempt", a.id, "event", string(evt.Kind))
		return
	}
	switch evt.Kind {
	case browser.KindClosed:
		// Ambiguous: the user may have dismissed the surface, or the platform
		// closed it after navigation completed while the redirect is still in
		// flight. Hold cancellation for the grace window and let a redirect
		// clear it.
		c.store.Closing()
		confirmCancel := func() {
			if !c.store.InClosingWindow() {
				return
			}
			a.finish(ErrUserCanceled, nil)
		}
		if c.policy.GraceWindow <= 0 {
			confirmCancel()
		} else {
			time.AfterFunc(c.policy.GraceWindow, confirmCancel)
		}
	default:
		// loaded and anything unknown carry no state transition
		slog.Debug("browser agent event", "attempt", a.id, "event", string(evt.Kind))
	}
}

// HandleRedirect relays a custom-scheme redirect delivered by the host
// environment into the in-flight attempt, reporting whether it was consumed.
func (c *Coordinator) HandleRedirect(redirectURL string) bool {
	return c.store.Redirect(redirectURL)
}
