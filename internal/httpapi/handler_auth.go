package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lipoic/lipoic-backend/internal/model"
	"github.com/lipoic/lipoic-backend/internal/oauth"
	"github.com/lipoic/lipoic-backend/internal/service"
	"github.com/lipoic/lipoic-backend/pkg/clientip"
)

// AuthHandler serves the OAuth sign-in endpoints.
type AuthHandler struct {
	providers       oauth.Config
	auth            *service.Auth
	trustCloudflare bool
	oauthOpts       []oauth.Option
}

// NewAuthHandler builds the OAuth handler. Extra oauth options are applied to
// every per-request client; tests use them to point at stub providers.
func NewAuthHandler(providers oauth.Config, auth *service.Auth, trustCloudflare bool, oauthOpts ...oauth.Option) *AuthHandler {
	return &AuthHandler{
		providers:       providers,
		auth:            auth,
		trustCloudflare: trustCloudflare,
		oauthOpts:       oauthOpts,
	}
}

// client builds the per-request OAuth client, or writes the failure response
// and returns nil. failCode is the endpoint's enum value for a missing
// provider configuration.
func (h *AuthHandler) client(w http.ResponseWriter, r *http.Request, redirectURI string, failCode Code) *oauth.Client {
	provider, ok := oauth.ParseProvider(chi.URLParam(r, "provider"))
	if !ok {
		respond(w, http.StatusNotFound, CodeNotFound, nil)
		return nil
	}
	id, secret, ok := h.providers.Credentials(provider)
	if !ok {
		respond(w, http.StatusInternalServerError, failCode, nil)
		return nil
	}
	return oauth.New(provider, id, secret, redirectURI, h.oauthOpts...)
}

// AuthURL answers GET /authentication/{provider}/url?redirectUri=.
func (h *AuthHandler) AuthURL(w http.ResponseWriter, r *http.Request) {
	redirectURI := r.URL.Query().Get("redirectUri")
	if redirectURI == "" {
		respond(w, http.StatusBadRequest, CodeGetAuthURLError, nil)
		return
	}

	client := h.client(w, r, redirectURI, CodeGetAuthURLError)
	if client == nil {
		return
	}
	respondOK(w, map[string]string{"url": client.AuthURL()})
}

// Callback answers GET /authentication/{provider}/callback?code=&redirectUri=&locale=
// by exchanging the authorization code and returning a session token.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	authCode := q.Get("code")
	redirectURI := q.Get("redirectUri")
	locale, localeOK := model.ParseLocale(q.Get("locale"))

	if authCode == "" || redirectURI == "" || !localeOK {
		respond(w, http.StatusBadRequest, CodeOAuthCallbackError, nil)
		return
	}

	client := h.client(w, r, redirectURI, CodeOAuthCallbackError)
	if client == nil {
		return
	}

	ip := clientip.FromRequest(r, h.trustCloudflare)
	sessionToken, err := h.auth.LinkOAuthAccount(r.Context(), client, authCode, ip, locale)
	switch {
	case err == nil:
		respondOK(w, map[string]string{"token": sessionToken})
	case errors.Is(err, oauth.ErrExchangeFailed), errors.Is(err, oauth.ErrFetchProfileFailed):
		// the code is invalid or expired as far as the client is concerned
		respond(w, http.StatusBadRequest, CodeOAuthCallbackError, nil)
	default:
		respond(w, http.StatusInternalServerError, CodeOAuthCallbackError, nil)
	}
}
