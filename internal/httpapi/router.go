package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/lipoic/lipoic-backend/internal/oauth"
	"github.com/lipoic/lipoic-backend/internal/service"
	"github.com/lipoic/lipoic-backend/internal/token"
)

// Config tunes the outer HTTP surface.
type Config struct {
	// AllowedOrigins is the CORS allow list; "*" admits any origin.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	// TrustCloudflare switches client-IP extraction to the CF-Connecting-IP
	// header for deployments behind Cloudflare.
	TrustCloudflare bool `env:"CLOUDFLARE" envDefault:"false"`
}

// Deps bundles everything the router mounts.
type Deps struct {
	Log       *slog.Logger
	Config    Config
	Providers oauth.Config
	Tokens    *token.Service
	Users     service.UserStorage
	Auth      *service.Auth
	Accounts  *service.Account
	Classes   *service.Class

	// OAuthOptions is applied to every per-request OAuth client; tests use it
	// to point the flow at stub providers.
	OAuthOptions []oauth.Option
}

// NewRouter assembles the full REST surface.
func NewRouter(deps Deps) http.Handler {
	authn := NewAuthenticator(deps.Tokens, deps.Users)
	authH := NewAuthHandler(deps.Providers, deps.Auth, deps.Config.TrustCloudflare, deps.OAuthOptions...)
	userH := NewUserHandler(deps.Accounts, deps.Users, deps.Config.TrustCloudflare)
	classH := NewClassHandler(deps.Classes)

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(deps.Log))
	r.Use(recoverer(deps.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.Config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		respondOK(w, map[string]string{"message": "Hello, World!"})
	})

	r.Route("/authentication/{provider}", func(r chi.Router) {
		r.Get("/url", authH.AuthURL)
		r.Get("/callback", authH.Callback)
	})

	r.Route("/user", func(r chi.Router) {
		r.Post("/signup", userH.Signup)
		r.Get("/verify", userH.VerifyEmail)
		r.Post("/login", userH.Login)
		r.Get("/info/{userId}", userH.InfoByID)
		r.Get("/avatar/{userId}", userH.DownloadAvatar)

		r.Group(func(r chi.Router) {
			r.Use(authn.RequireAuth)
			r.Get("/info", userH.Info)
			r.Patch("/info", userH.UpdateInfo)
			r.Post("/avatar", userH.UploadAvatar)
			r.Delete("/avatar", userH.DeleteAvatar)
		})
	})

	r.Route("/class", func(r chi.Router) {
		r.Use(authn.RequireAuth)
		r.Post("/", classH.Create)
		r.Get("/{classId}", classH.Get)
		r.Post("/{classId}/join", classH.Join)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respond(w, http.StatusNotFound, CodeNotFound, nil)
	})

	return r
}
