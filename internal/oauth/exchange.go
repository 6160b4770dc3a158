package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// AccessInfo is the provider's answer to a successful code exchange.
type AccessInfo struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// Exchange trades an authorization code for an access token. Any failure
// (non-2xx, network error, timeout) is reported as ErrExchangeFailed; the
// caller must treat it as "code invalid or expired" and never as a server
// fault.
func (c *Client) Exchange(ctx context.Context, code string) (AccessInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	switch c.provider {
	case ProviderGoogle:
		return c.exchangeGoogle(ctx, code)
	case ProviderFacebook:
		return c.exchangeFacebook(ctx, code)
	}
	return AccessInfo{}, fmt.Errorf("%w: unknown provider %q", ErrExchangeFailed, c.provider)
}

// exchangeGoogle posts a form-encoded grant_type=authorization_code request,
// delegated to the oauth2 package.
func (c *Client) exchangeGoogle(ctx context.Context, code string) (AccessInfo, error) {
	conf := &oauth2.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		RedirectURL:  c.redirectURI,
		Endpoint:     oauth2.Endpoint{AuthURL: c.endpoints.auth, TokenURL: c.endpoints.token},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return AccessInfo{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	return AccessInfo{
		AccessToken: tok.AccessToken,
		ExpiresIn:   tok.ExpiresIn,
		TokenType:   tok.TokenType,
	}, nil
}

// exchangeFacebook performs the Graph API GET exchange with query parameters.
func (c *Client) exchangeFacebook(ctx context.Context, code string) (AccessInfo, error) {
	u := c.endpoints.token +
		"?client_id=" + escape(c.clientID) +
		"&client_secret=" + escape(c.clientSecret) +
		"&redirect_uri=" + escape(c.redirectURI) +
		"&code=" + escape(code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return AccessInfo{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return AccessInfo{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return AccessInfo{}, fmt.Errorf("%w: facebook token endpoint returned status %d", ErrExchangeFailed, resp.StatusCode)
	}

	var info AccessInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return AccessInfo{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	if info.AccessToken == "" {
		return AccessInfo{}, fmt.Errorf("%w: facebook token endpoint returned no access token", ErrExchangeFailed)
	}
	return info, nil
}
