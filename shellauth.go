// Package shellauth manages authentication sessions for applications embedded
// in a component-tree UI framework. On web-style hosts login is a plain
// browser redirect the host page handles itself; inside a native shell (a
// mobile app or web view) it runs the nativeauth handshake: open the identity
// provider in a shell-supplied browser surface, wait for the custom-scheme
// redirect to be relayed back through OnRedirectURI, and exchange the code for
// tokens.
package shellauth

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Xuanwo/go-locale"
	"github.com/google/uuid"

	"github.com/authlite/shellauth/app"
	"github.com/authlite/shellauth/browser"
	"github.com/authlite/shellauth/common"
	"github.com/authlite/shellauth/common/env"
	"github.com/authlite/shellauth/common/reporting"
	"github.com/authlite/shellauth/common/settings"
	"github.com/authlite/shellauth/events"
	"github.com/authlite/shellauth/internal"
	"github.com/authlite/shellauth/nativeauth"
	"github.com/authlite/shellauth/oauth"
)

// AuthState labels the session state carried on AuthEvent.
type AuthState string

const (
	StateIdle          AuthState = "idle"
	StateAuthorizing   AuthState = "authorizing"
	StateAuthenticated AuthState = "authenticated"
	StateError         AuthState = "error"
)

// AuthEvent is published on the events bus whenever the session state changes.
// The embedding UI subscribes to it to drive user/loading/error state.
type AuthEvent struct {
	State AuthState
	Email string
	Err   string
}

// OpenURLEvent asks the embedding application to navigate the current page to
// URL. Emitted for the non-native flow, where the redirect round-trip belongs
// to the host page.
type OpenURLEvent struct {
	URL string
}

// Options configures a Client. Issuer and ClientID are required unless they
// were persisted by a previous run.
type Options struct {
	DataDir  string
	LogDir   string
	Locale   string
	DeviceID string
	LogLevel string

	Issuer      string
	ClientID    string
	RedirectURI string
	Scopes      []string

	// Native forces the flow selection. Leave nil to follow the platform:
	// native inside mobile shells, redirect everywhere else.
	Native *bool

	// Agents supplies browser surfaces for the native flow. The embedding
	// shell provides the implementation.
	Agents browser.Acquirer

	// policy overrides the platform grace-window and timeout tuning. Tests
	// use it to avoid waiting out the real windows.
	policy *nativeauth.Policy
}

// Client is the embedder-facing entry point. Each Client publishes its
// session and navigation events on its own bus; see Events.
type Client struct {
	oauth  *oauth.Client
	coord  *nativeauth.Coordinator
	bus    *events.Bus
	native bool
	locale string
}

func NewClient(opts Options) (*Client, error) {
	if opts.Locale == "" {
		// The frontend's locale is preferred since it is what the user
		// actually sees; fall back to the system locale when it isn't passed.
		if tag, err := locale.Detect(); err != nil {
			opts.Locale = "en-US"
		} else {
			opts.Locale = tag.String()
		}
	}
	if opts.DataDir == "" {
		if dir, ok := env.Get[string](env.DataPath); ok {
			opts.DataDir = dir
		} else {
			base, err := os.UserConfigDir()
			if err != nil {
				return nil, fmt.Errorf("no data directory available: %w", err)
			}
			opts.DataDir = filepath.Join(base, app.Name)
		}
	}
	if opts.LogDir == "" {
		if dir, ok := env.Get[string](env.LogPath); ok {
			opts.LogDir = dir
		} else {
			opts.LogDir = opts.DataDir
		}
	}

	if err := settings.Init(opts.DataDir); err != nil {
		return nil, fmt.Errorf("failed to initialize settings: %w", err)
	}
	if dsn, ok := env.Get[string](env.SentryDSN); ok {
		reporting.Init(dsn, app.Version)
	}

	if opts.LogLevel == "" {
		if lvl, ok := env.Get[string](env.LogLevel); ok {
			opts.LogLevel = lvl
		} else {
			opts.LogLevel = settings.GetString(settings.LogLevelKey)
		}
	}
	level, err := internal.ParseLogLevel(opts.LogLevel)
	if err != nil {
		slog.Warn("unknown log level, using info", "level", opts.LogLevel)
	}
	logger, _, err := internal.NewFileLogger(filepath.Join(opts.LogDir, app.LogFileName), level)
	if err != nil {
		return nil, fmt.Errorf("could not create log: %w", err)
	}
	slog.SetDefault(logger)
	settings.Set(settings.LogPathKey, opts.LogDir)

	if opts.DeviceID == "" {
		opts.DeviceID = settings.GetString(settings.DeviceIDKey)
		if opts.DeviceID == "" {
			opts.DeviceID = uuid.NewString()
		}
	}
	settings.Set(settings.DeviceIDKey, opts.DeviceID)
	settings.Set(settings.LocaleKey, opts.Locale)

	cfg, err := resolveOAuthConfig(opts)
	if err != nil {
		return nil, err
	}

	native := common.IsNativeShell()
	if settings.Get(settings.NativeKey) != nil {
		native = settings.GetBool(settings.NativeKey)
	}
	if opts.Native != nil {
		native = *opts.Native
		settings.Set(settings.NativeKey, native)
	}
	if native && opts.Agents == nil {
		return nil, fmt.Errorf("native flow requires a browser agent acquirer")
	}

	policy := nativeauth.PlatformPolicy()
	if opts.policy != nil {
		policy = *opts.policy
	}

	c := &Client{
		oauth:  oauth.NewClient(cfg),
		bus:    events.NewBus(),
		native: native,
		locale: opts.Locale,
	}
	c.coord = nativeauth.NewCoordinator(opts.Agents, c.oauth, policy)
	slog.Debug("initialized client", "dataDir", opts.DataDir, "logDir", opts.LogDir,
		"locale", opts.Locale, "native", native)
	return c, nil
}

// resolveOAuthConfig merges the provider settings passed on Options with what
// a previous run persisted, persisting anything new.
func resolveOAuthConfig(opts Options) (oauth.Config, error) {
	cfg := oauth.Config{
		Issuer:      opts.Issuer,
		ClientID:    opts.ClientID,
		RedirectURI: opts.RedirectURI,
		Scopes:      opts.Scopes,
	}
	if cfg.Issuer == "" {
		cfg.Issuer = settings.GetString(settings.IssuerKey)
	}
	if cfg.ClientID == "" {
		cfg.ClientID = settings.GetString(settings.ClientIDKey)
	}
	if cfg.RedirectURI == "" {
		cfg.RedirectURI = settings.GetString(settings.RedirectURIKey)
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = settings.GetStringSlice(settings.ScopesKey)
	}
	if cfg.Issuer == "" || cfg.ClientID == "" {
		return cfg, fmt.Errorf("issuer and client ID are required")
	}
	settings.Set(settings.IssuerKey, cfg.Issuer)
	settings.Set(settings.ClientIDKey, cfg.ClientID)
	settings.Set(settings.RedirectURIKey, cfg.RedirectURI)
	settings.Set(settings.ScopesKey, cfg.Scopes)
	return cfg, nil
}

// LoginWithRedirect starts a login. On non-native hosts it hands the authorize
// URL to the embedding page via OpenURLEvent and the redirect round-trip stays
// with the host. On native shells it runs the nativeauth handshake,
// fire-and-forget: outcomes are logged and published as AuthEvents.
func (c *Client) LoginWithRedirect(ctx context.Context) error {
	tx := c.oauth.AuthorizeURL(c.locale)
	if !c.native {
		slog.Debug("starting redirect login", "state", tx.State)
		events.EmitOn(c.bus, OpenURLEvent{URL: tx.URL})
		return nil
	}

	slog.Debug("starting native login", "state", tx.State)
	events.EmitOn(c.bus, AuthEvent{State: StateAuthorizing})
	return c.coord.Authorize(ctx, tx.URL, func(err error, result *oauth.TokenResult) {
		if err != nil {
			slog.Error("native login failed", "error", err)
			events.EmitOn(c.bus, AuthEvent{State: StateError, Err: err.Error()})
			return
		}
		email := rememberUser(result)
		slog.Info("native login succeeded", "email", email)
		events.EmitOn(c.bus, AuthEvent{State: StateAuthenticated, Email: email})
	})
}

// rememberUser persists the signed-in user snapshot from the ID token and
// returns the email, if any.
func rememberUser(result *oauth.TokenResult) string {
	if result == nil || result.IDToken == "" {
		return ""
	}
	claims, err := oauth.DecodeIDToken(result.IDToken)
	if err != nil {
		slog.Warn("could not decode ID token claims", "error", err)
		return ""
	}
	settings.Set(settings.EmailKey, claims.Email)
	settings.Set(settings.UserIDKey, claims.Subject)
	return claims.Email
}

// OnRedirectURI is the host environment's entry point for custom-scheme
// redirects. It reports whether the URL was consumed by an in-flight
// authorization attempt so the host dispatcher can fall through otherwise.
func (c *Client) OnRedirectURI(redirectURL string) bool {
	consumed := c.coord.HandleRedirect(redirectURL)
	slog.Debug("redirect URI delivered", "consumed", consumed)
	return consumed
}

// Email returns the signed-in user's email, or empty when logged out.
func (c *Client) Email() string {
	return settings.GetString(settings.EmailKey)
}

// Logout clears the persisted user snapshot. Token revocation at the provider
// is out of scope here.
func (c *Client) Logout() error {
	if err := settings.Set(settings.EmailKey, ""); err != nil {
		return err
	}
	if err := settings.Set(settings.UserIDKey, ""); err != nil {
		return err
	}
	events.EmitOn(c.bus, AuthEvent{State: StateIdle})
	return nil
}

// Events is the bus this client publishes AuthEvents and OpenURLEvents on.
// Each client has its own; subscriptions on one client never observe another.
func (c *Client) Events() *events.Bus {
	return c.bus
}
