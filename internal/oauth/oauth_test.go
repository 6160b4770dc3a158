package oauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lipoic/lipoic-backend/internal/model"
	"github.com/lipoic/lipoic-backend/internal/oauth"
)

func TestParseProvider(t *testing.T) {
	t.Parallel()

	p, ok := oauth.ParseProvider("google")
	require.True(t, ok)
	assert.Equal(t, oauth.ProviderGoogle, p)

	p, ok = oauth.ParseProvider("Facebook")
	require.True(t, ok)
	assert.Equal(t, oauth.ProviderFacebook, p)

	_, ok = oauth.ParseProvider("twitter")
	assert.False(t, ok)
}

func TestAuthURL(t *testing.T) {
	t.Parallel()

	t.Run("google exact wire format", func(t *testing.T) {
		t.Parallel()
		c := oauth.New(oauth.ProviderGoogle, "test", "test", "https://localhost:3000/login")
		want := "https://accounts.google.com/o/oauth2/auth" +
			"?client_id=test" +
			"&redirect_uri=https%3A%2F%2Flocalhost%3A3000%2Flogin" +
			"&scope=https%3A%2F%2Fwww.googleapis.com%2Fauth%2Fuserinfo.profile%20https%3A%2F%2Fwww.googleapis.com%2Fauth%2Fuserinfo.email" +
			"&response_type=code"
		assert.Equal(t, want, c.AuthURL())
	})

	t.Run("facebook scope and endpoint", func(t *testing.T) {
		t.Parallel()
		c := oauth.New(oauth.ProviderFacebook, "fb-id", "fb-secret", "https://localhost:3000/login")
		want := "https://www.facebook.com/dialog/oauth" +
			"?client_id=fb-id" +
			"&redirect_uri=https%3A%2F%2Flocalhost%3A3000%2Flogin" +
			"&scope=public_profile%2Cemail" +
			"&response_type=code"
		assert.Equal(t, want, c.AuthURL())
	})
}

func TestExchangeGoogle(t *testing.T) {
	t.Parallel()

	t.Run("successful exchange", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
			assert.Equal(t, "the-code", r.FormValue("code"))

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "at-123",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
		}))
		defer srv.Close()

		c := oauth.New(oauth.ProviderGoogle, "id", "secret", "https://cb",
			oauth.WithEndpoints(srv.URL, ""))
		info, err := c.Exchange(context.Background(), "the-code")
		require.NoError(t, err)
		assert.Equal(t, "at-123", info.AccessToken)
		assert.Equal(t, "Bearer", info.TokenType)
	})

	t.Run("provider rejects the code", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
		}))
		defer srv.Close()

		c := oauth.New(oauth.ProviderGoogle, "id", "secret", "https://cb",
			oauth.WithEndpoints(srv.URL, ""))
		_, err := c.Exchange(context.Background(), "expired-code")
		require.ErrorIs(t, err, oauth.ErrExchangeFailed)
	})
}

func TestExchangeFacebook(t *testing.T) {
	t.Parallel()

	t.Run("query parameter exchange", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			q := r.URL.Query()
			assert.Equal(t, "fb-id", q.Get("client_id"))
			assert.Equal(t, "fb-secret", q.Get("client_secret"))
			assert.Equal(t, "the-code", q.Get("code"))

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "fb-at",
				"token_type":   "bearer",
				"expires_in":   5183944,
			})
		}))
		defer srv.Close()

		c := oauth.New(oauth.ProviderFacebook, "fb-id", "fb-secret", "https://cb",
			oauth.WithEndpoints(srv.URL, ""))
		info, err := c.Exchange(context.Background(), "the-code")
		require.NoError(t, err)
		assert.Equal(t, "fb-at", info.AccessToken)
		assert.EqualValues(t, 5183944, info.ExpiresIn)
	})

	t.Run("network failure", func(t *testing.T) {
		t.Parallel()
		c := oauth.New(oauth.ProviderFacebook, "fb-id", "fb-secret", "https://cb",
			oauth.WithEndpoints("http://127.0.0.1:1", ""))
		_, err := c.Exchange(context.Background(), "code")
		require.ErrorIs(t, err, oauth.ErrExchangeFailed)
	})

	t.Run("empty access token", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		c := oauth.New(oauth.ProviderFacebook, "fb-id", "fb-secret", "https://cb",
			oauth.WithEndpoints(srv.URL, ""))
		_, err := c.Exchange(context.Background(), "code")
		require.ErrorIs(t, err, oauth.ErrExchangeFailed)
	})
}

func TestFetchProfile(t *testing.T) {
	t.Parallel()

	t.Run("google flat shape with supported locale", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer at-123", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":             "g-1",
				"email":          "yui@gmail.com",
				"verified_email": true,
				"name":           "Yui Hirasawa",
				"given_name":     "Yui",
				"family_name":    "Hirasawa",
				"picture":        "https://lh3.example/p.png",
				"locale":         "zh-TW",
			})
		}))
		defer srv.Close()

		c := oauth.New(oauth.ProviderGoogle, "id", "secret", "https://cb",
			oauth.WithEndpoints("", srv.URL))
		account, err := c.FetchProfile(context.Background(), oauth.AccessInfo{AccessToken: "at-123"})
		require.NoError(t, err)
		assert.Equal(t, "g-1", account.ID)
		assert.Equal(t, "Yui Hirasawa", account.Name)
		assert.Equal(t, "yui@gmail.com", account.Email)
		assert.Equal(t, "https://lh3.example/p.png", account.Picture)
		assert.Equal(t, model.LocaleZhTW, account.Locale)
	})

	t.Run("google unsupported locale omitted", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": "g-2", "email": "a@b.com", "name": "A", "locale": "de-DE",
			})
		}))
		defer srv.Close()

		c := oauth.New(oauth.ProviderGoogle, "id", "secret", "https://cb",
			oauth.WithEndpoints("", srv.URL))
		account, err := c.FetchProfile(context.Background(), oauth.AccessInfo{AccessToken: "at"})
		require.NoError(t, err)
		assert.Empty(t, account.Locale)
	})

	t.Run("facebook nested picture shape", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "fb-at", q.Get("access_token"))
			assert.Contains(t, q.Get("fields"), "picture")

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":         "fb-1",
				"first_name": "Mio",
				"last_name":  "Akiyama",
				"name":       "Mio Akiyama",
				"email":      "mio@example.com",
				"picture": map[string]any{"data": map[string]any{
					"url": "https://graph.example/p.jpg", "width": 50, "height": 50,
				}},
			})
		}))
		defer srv.Close()

		c := oauth.New(oauth.ProviderFacebook, "id", "secret", "https://cb",
			oauth.WithEndpoints("", srv.URL))
		account, err := c.FetchProfile(context.Background(), oauth.AccessInfo{AccessToken: "fb-at"})
		require.NoError(t, err)
		assert.Equal(t, "fb-1", account.ID)
		assert.Equal(t, "Mio Akiyama", account.Name)
		assert.Equal(t, "https://graph.example/p.jpg", account.Picture)
		assert.Empty(t, account.Locale)
	})

	t.Run("provider error status", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "expired", http.StatusUnauthorized)
		}))
		defer srv.Close()

		c := oauth.New(oauth.ProviderGoogle, "id", "secret", "https://cb",
			oauth.WithEndpoints("", srv.URL))
		_, err := c.FetchProfile(context.Background(), oauth.AccessInfo{AccessToken: "stale"})
		require.ErrorIs(t, err, oauth.ErrFetchProfileFailed)
	})
}

func TestConfigCredentials(t *testing.T) {
	t.Parallel()

	cfg := oauth.Config{GoogleID: "gid", GoogleSecret: "gsec"}

	id, secret, ok := cfg.Credentials(oauth.ProviderGoogle)
	require.True(t, ok)
	assert.Equal(t, "gid", id)
	assert.Equal(t, "gsec", secret)

	_, _, ok = cfg.Credentials(oauth.ProviderFacebook)
	assert.False(t, ok)
}
