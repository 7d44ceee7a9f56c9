// Package browser abstracts the OS-level browser or web-view surface used to
// present an identity provider's authorization page. The embedding shell
// supplies the concrete implementation; this package only fixes the contract
// the authorization protocol is built on.
package browser

import "context"

// EventKind identifies a lifecycle event reported by an open browser surface.
type EventKind string

const (
	// KindLoaded fires when the surface has finished loading a page.
	KindLoaded EventKind = "loaded"
	// KindClosed fires when the surface has been closed, whether by the user
	// or by the platform after navigation completed.
	KindClosed EventKind = "closed"
)

// Event is a lifecycle notification from an open browser surface. Kinds other
// than the ones defined above are ignored by consumers.
type Event struct {
	Kind EventKind
}

// Agent is a single browser surface. Open presents the given URL and streams
// lifecycle events to onEvent until the surface is closed. Close dismisses the
// surface and is safe to call repeatedly, including on a surface that was
// never opened or is already gone.
type Agent interface {
	Open(url string, onEvent func(Event)) error
	Close()
}

// Acquirer hands out a browser surface. Acquisition can fail, e.g. when no
// browser component is available in the current shell.
type Acquirer interface {
	Acquire(ctx context.Context) (Agent, error)
}

// AcquirerFunc adapts a function to the Acquirer interface.
type AcquirerFunc func(ctx context.Context) (Agent, error)

func (f AcquirerFunc) Acquire(ctx context.Context) (Agent, error) {
	return f(ctx)
}
