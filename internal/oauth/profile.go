package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lipoic/lipoic-backend/internal/model"
)

// AccountInfo is the normalized profile shape shared by all providers.
// Locale is set only when the provider reports one of the platform's
// supported locale tags.
type AccountInfo struct {
	ID      string
	Name    string
	Email   string
	Picture string
	Locale  model.Locale
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	Locale        string `json:"locale"`
}

type facebookUserInfo struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Picture   struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

// FetchProfile retrieves the provider's user-info with a valid access token
// and normalizes it into AccountInfo.
func (c *Client) FetchProfile(ctx context.Context, access AccessInfo) (AccountInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	switch c.provider {
	case ProviderGoogle:
		return c.fetchGoogleProfile(ctx, access.AccessToken)
	case ProviderFacebook:
		return c.fetchFacebookProfile(ctx, access.AccessToken)
	}
	return AccountInfo{}, fmt.Errorf("%w: unknown provider %q", ErrFetchProfileFailed, c.provider)
}

func (c *Client) fetchGoogleProfile(ctx context.Context, accessToken string) (AccountInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints.profile, nil)
	if err != nil {
		return AccountInfo{}, fmt.Errorf("%w: %v", ErrFetchProfileFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var info googleUserInfo
	if err := c.doJSON(req, &info); err != nil {
		return AccountInfo{}, err
	}

	account := AccountInfo{
		ID:      info.ID,
		Name:    info.Name,
		Email:   info.Email,
		Picture: info.Picture,
	}
	// Google reports a free-form locale; keep it only when supported.
	if locale, ok := model.ParseLocale(info.Locale); ok {
		account.Locale = locale
	}
	return account, nil
}

func (c *Client) fetchFacebookProfile(ctx context.Context, accessToken string) (AccountInfo, error) {
	u := c.endpoints.profile +
		"?fields=id,first_name,last_name,name,email,picture" +
		"&access_token=" + escape(accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return AccountInfo{}, fmt.Errorf("%w: %v", ErrFetchProfileFailed, err)
	}

	var info facebookUserInfo
	if err := c.doJSON(req, &info); err != nil {
		return AccountInfo{}, err
	}

	return AccountInfo{
		ID:      info.ID,
		Name:    info.Name,
		Email:   info.Email,
		Picture: info.Picture.Data.URL,
	}, nil
}

func (c *Client) doJSON(req *http.Request, v any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchProfileFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: provider returned status %d", ErrFetchProfileFailed, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrFetchProfileFailed, err)
	}
	return nil
}
