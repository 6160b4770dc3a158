// Package oauth adapts the Google and Facebook OAuth flows behind one
// provider-agnostic client: authorization-URL construction, code-for-token
// exchange and profile retrieval normalized into a single account shape.
package oauth

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Provider identifies a third-party OAuth identity service. The string value
// is also the stored accountType of a connected account.
type Provider string

const (
	ProviderGoogle   Provider = "Google"
	ProviderFacebook Provider = "Facebook"
)

// ParseProvider resolves a URL path segment ("google", "facebook") to a Provider.
func ParseProvider(s string) (Provider, bool) {
	switch strings.ToLower(s) {
	case "google":
		return ProviderGoogle, true
	case "facebook":
		return ProviderFacebook, true
	}
	return "", false
}

// Config holds the per-provider application credentials.
type Config struct {
	GoogleID       string `env:"GOOGLE_OAUTH_ID"`
	GoogleSecret   string `env:"GOOGLE_OAUTH_SECRET"`
	FacebookID     string `env:"FACEBOOK_OAUTH_ID"`
	FacebookSecret string `env:"FACEBOOK_OAUTH_SECRET"`
}

// Credentials returns the client id/secret pair for the provider and whether
// both are configured.
func (c Config) Credentials(p Provider) (id, secret string, ok bool) {
	switch p {
	case ProviderGoogle:
		return c.GoogleID, c.GoogleSecret, c.GoogleID != "" && c.GoogleSecret != ""
	case ProviderFacebook:
		return c.FacebookID, c.FacebookSecret, c.FacebookID != "" && c.FacebookSecret != ""
	}
	return "", "", false
}

// exchangeTimeout bounds every outbound call to a provider.
const exchangeTimeout = 10 * time.Second

type endpoints struct {
	auth    string
	token   string
	profile string
}

var providerEndpoints = map[Provider]endpoints{
	ProviderGoogle: {
		auth:    "https://accounts.google.com/o/oauth2/auth",
		token:   "https://oauth2.googleapis.com/token",
		profile: "https://www.googleapis.com/oauth2/v1/userinfo?alt=json",
	},
	ProviderFacebook: {
		auth:    "https://www.facebook.com/dialog/oauth",
		token:   "https://graph.facebook.com/v14.0/oauth/access_token",
		profile: "https://graph.facebook.com/v14.0/me",
	},
}

// Client performs the OAuth flow for one provider and one redirect URI.
// It is cheap to construct per request and holds no mutable state.
type Client struct {
	provider     Provider
	clientID     string
	clientSecret string
	redirectURI  string
	httpClient   *http.Client
	endpoints    endpoints
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the outbound HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithEndpoints overrides the provider token and profile endpoints.
// Intended for tests against local stub servers.
func WithEndpoints(token, profile string) Option {
	return func(c *Client) {
		if token != "" {
			c.endpoints.token = token
		}
		if profile != "" {
			c.endpoints.profile = profile
		}
	}
}

// New creates a client for one provider/redirect pair.
func New(provider Provider, clientID, clientSecret, redirectURI string, opts ...Option) *Client {
	c := &Client{
		provider:     provider,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		httpClient:   &http.Client{Timeout: exchangeTimeout},
		endpoints:    providerEndpoints[provider],
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the provider this client talks to.
func (c *Client) Provider() Provider {
	return c.provider
}

// AuthURL builds the provider authorization URL. The parameter order and
// encoding are part of the public contract with existing clients.
func (c *Client) AuthURL() string {
	return c.endpoints.auth +
		"?client_id=" + escape(c.clientID) +
		"&redirect_uri=" + escape(c.redirectURI) +
		"&scope=" + escape(c.scope()) +
		"&response_type=code"
}

func (c *Client) scope() string {
	switch c.provider {
	case ProviderGoogle:
		return "https://www.googleapis.com/auth/userinfo.profile https://www.googleapis.com/auth/userinfo.email"
	case ProviderFacebook:
		return "public_profile,email"
	}
	return ""
}

// escape query-encodes a value with %20 for spaces, matching RFC 3986
// percent-encoding rather than form encoding.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
