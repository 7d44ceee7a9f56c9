package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(issuer string) Config {
	return Config{
		Issuer:      issuer,
		ClientID:    "client-123",
		RedirectURI: "app://callback",
		Scopes:      []string{"openid", "email"},
	}
}

func TestAuthorizeURL(t *testing.T) {
	c := NewClient(testConfig("https://idp.example.com"))
	tx := c.AuthorizeURL("fr-FR")

	u, err := url.Parse(tx.URL)
	require.NoError(t, err)
	assert.Equal(t, "idp.example.com", u.Host)
	assert.Equal(t, "/authorize", u.Path)

	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client-123", q.Get("client_id"))
	assert.Equal(t, "app://callback", q.Get("redirect_uri"))
	assert.Equal(t, "openid email", q.Get("scope"))
	assert.Equal(t, tx.State, q.Get("state"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.Equal(t, "fr-FR", q.Get("ui_locales"))
}

func TestAuthorizeURLStatesAreUnique(t *testing.T) {
	c := NewClient(testConfig("https://idp.example.com"))
	assert.NotEqual(t, c.AuthorizeURL("").State, c.AuthorizeURL("").State)
}

func TestExchangeRedirect(t *testing.T) {
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at-abc",
			"id_token":      "idt-abc",
			"refresh_token": "rt-abc",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	tx := c.AuthorizeURL("")

	result, err := c.ExchangeRedirect(context.Background(),
		"app://callback?code=code-abc&state="+tx.State)
	require.NoError(t, err)

	assert.Equal(t, "at-abc", result.AccessToken)
	assert.Equal(t, "idt-abc", result.IDToken)
	assert.Equal(t, "rt-abc", result.RefreshToken)
	assert.InDelta(t, 3600, result.ExpiresIn, 60)

	assert.Equal(t, "authorization_code", gotForm.Get("grant_type"))
	assert.Equal(t, "code-abc", gotForm.Get("code"))
	assert.NotEmpty(t, gotForm.Get("code_verifier"))
}

func TestExchangeRedirectProviderError(t *testing.T) {
	c := NewClient(testConfig("https://idp.example.com"))
	tx := c.AuthorizeURL("")

	_, err := c.ExchangeRedirect(context.Background(),
		"app://callback?error=access_denied&error_description=user+said+no&state="+tx.State)
	assert.ErrorContains(t, err, "user said no")
}

func TestExchangeRedirectNoCode(t *testing.T) {
	c := NewClient(testConfig("https://idp.example.com"))
	_, err := c.ExchangeRedirect(context.Background(), "app://callback?state=whatever")
	assert.ErrorContains(t, err, "no authorization code")
}

func TestExchangeRedirectUnknownState(t *testing.T) {
	c := NewClient(testConfig("https://idp.example.com"))
	_, err := c.ExchangeRedirect(context.Background(), "app://callback?code=abc&state=bogus")
	assert.ErrorIs(t, err, ErrUnknownState)
}

func TestAbandonedTransactionsExpire(t *testing.T) {
	c := NewClient(testConfig("https://idp.example.com"))
	stale := c.AuthorizeURL("")

	// backdate the entry past the TTL, as if the redirect never came back
	c.mu.Lock()
	p := c.pending[stale.State]
	p.created = time.Now().Add(-pendingTTL - time.Minute)
	c.pending[stale.State] = p
	c.mu.Unlock()

	// starting a fresh transaction sweeps the stale one
	c.AuthorizeURL("")
	c.mu.Lock()
	_, ok := c.pending[stale.State]
	c.mu.Unlock()
	assert.False(t, ok, "expired transaction must be swept")

	_, err := c.ExchangeRedirect(context.Background(),
		"app://callback?code=abc&state="+stale.State)
	assert.ErrorIs(t, err, ErrUnknownState)
}

func TestExchangeRedirectStateIsSingleUse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at", "token_type": "Bearer",
		})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	tx := c.AuthorizeURL("")
	redirect := "app://callback?code=abc&state=" + tx.State

	_, err := c.ExchangeRedirect(context.Background(), redirect)
	require.NoError(t, err)
	_, err = c.ExchangeRedirect(context.Background(), redirect)
	assert.ErrorIs(t, err, ErrUnknownState)
}
