// Package oauth wraps the token-exchange side of the login flow: building
// authorize URLs with PKCE and exchanging the code that comes back on the
// redirect for tokens. It knows nothing about browser surfaces or the native
// handshake; the nativeauth coordinator drives it through the Exchanger
// boundary.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"

	"github.com/authlite/shellauth/traces"
)

// Config identifies the application at the identity provider.
type Config struct {
	// Issuer is the provider's base URL, e.g. https://tenant.example.com.
	Issuer      string
	ClientID    string
	RedirectURI string
	Scopes      []string
}

// TokenResult carries the tokens obtained from a completed exchange.
type TokenResult struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64
}

// Transaction is one authorize round-trip in progress. URL is what the browser
// surface should open; State ties the redirect back to this transaction.
type Transaction struct {
	URL   string
	State string
}

var ErrUnknownState = errors.New("redirect carries an unknown or expired state")

// pendingTTL bounds how long an authorize transaction waits for its redirect.
// Logins abandoned in the browser are swept so they do not accumulate for the
// process lifetime.
const pendingTTL = 10 * time.Minute

type pendingAuth struct {
	verifier string
	created  time.Time
}

// Client builds authorize URLs and exchanges redirect codes for tokens.
// Exchanges go through a retrying, trace-instrumented HTTP client. Safe for
// concurrent use.
type Client struct {
	conf *oauth2.Config
	http *http.Client

	mu      sync.Mutex
	pending map[string]pendingAuth // keyed by state
}

func NewClient(cfg Config) *Client {
	retry := retryablehttp.NewClient()
	retry.RetryMax = 3
	retry.RetryWaitMin = 500 * time.Millisecond
	retry.Logger = nil
	retry.HTTPClient.Transport = traces.NewRoundTripper(nil)

	return &Client{
		conf: &oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: cfg.RedirectURI,
			Scopes:      cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.Issuer + "/authorize",
				TokenURL: cfg.Issuer + "/oauth/token",
			},
		},
		http:    retry.StandardClient(),
		pending: make(map[string]pendingAuth),
	}
}

// AuthorizeURL starts a transaction: a fresh state nonce and PKCE verifier are
// generated and remembered until the matching redirect is exchanged. locale,
// when non-empty, is passed through as ui_locales so the provider renders its
// pages in the user's language.
func (c *Client) AuthorizeURL(locale string) *Transaction {
	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	opts := []oauth2.AuthCodeOption{oauth2.S256ChallengeOption(verifier)}
	if locale != "" {
		opts = append(opts, oauth2.SetAuthURLParam("ui_locales", locale))
	}

	now := time.Now()
	c.mu.Lock()
	c.sweepPendingLocked(now)
	c.pending[state] = pendingAuth{verifier: verifier, created: now}
	c.mu.Unlock()

	return &Transaction{
		URL:   c.conf.AuthCodeURL(state, opts...),
		State: state,
	}
}

// ExchangeRedirect completes the transaction named by the redirect's state
// parameter, exchanging its code for tokens. Provider-reported errors on the
// redirect (e.g. access_denied) surface as errors without hitting the token
// endpoint.
func (c *Client) ExchangeRedirect(ctx context.Context, redirectURL string) (*TokenResult, error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redirect URL: %w", err)
	}
	q := u.Query()

	if errCode := q.Get("error"); errCode != "" {
		desc := q.Get("error_description")
		if desc == "" {
			desc = errCode
		}
		return nil, fmt.Errorf("authorization failed: %s", desc)
	}
	code := q.Get("code")
	if code == "" {
		return nil, errors.New("redirect carries no authorization code")
	}

	verifier, ok := c.takeVerifier(q.Get("state"))
	if !ok {
		return nil, ErrUnknownState
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	tok, err := c.conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	result := &TokenResult{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if idToken, ok := tok.Extra("id_token").(string); ok {
		result.IDToken = idToken
	}
	if !tok.Expiry.IsZero() {
		result.ExpiresIn = int64(time.Until(tok.Expiry).Seconds())
	}
	return result, nil
}

func (c *Client) takeVerifier(state string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[state]
	if !ok {
		return "", false
	}
	delete(c.pending, state)
	if time.Since(p.created) > pendingTTL {
		return "", false
	}
	return p.verifier, true
}

func (c *Client) sweepPendingLocked(now time.Time) {
	for state, p := range c.pending {
		if now.Sub(p.created) > pendingTTL {
			delete(c.pending, state)
		}
	}
}
