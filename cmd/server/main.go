// Command server runs the Lipoic REST backend.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/lipoic/lipoic-backend/internal/httpapi"
	"github.com/lipoic/lipoic-backend/internal/oauth"
	"github.com/lipoic/lipoic-backend/internal/service"
	"github.com/lipoic/lipoic-backend/internal/store"
	"github.com/lipoic/lipoic-backend/internal/token"
	"github.com/lipoic/lipoic-backend/pkg/config"
	"github.com/lipoic/lipoic-backend/pkg/email"
	"github.com/lipoic/lipoic-backend/pkg/httpserver"
	"github.com/lipoic/lipoic-backend/pkg/logger"
	"github.com/lipoic/lipoic-backend/pkg/mongo"
)

type appConfig struct {
	Logger logger.Config
	Mongo  mongo.Config
	HTTP   httpserver.Config
	API    httpapi.Config
	Token  token.Config
	OAuth  oauth.Config
	Email  email.Config

	// ClientURL is the frontend origin embedded into verification links.
	ClientURL string `env:"CLIENT_URL" envDefault:"https://app.lipoic.org"`
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(cfg.Logger, os.Stdout)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	db, err := mongo.NewWithDatabase(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Client().Disconnect(context.Background()); err != nil {
			log.Warn("mongo disconnect", slog.Any("error", err))
		}
	}()

	tokens, err := token.New(cfg.Token)
	if err != nil {
		return err
	}

	var mailer email.Sender
	if cfg.Email.PostmarkServerToken != "" {
		mailer, err = email.NewPostmarkClient(cfg.Email)
		if err != nil {
			return err
		}
	} else {
		log.Warn("postmark not configured, writing emails to disk",
			slog.String("dir", cfg.Email.DevOutputDir))
		mailer = email.NewDevSender(cfg.Email.DevOutputDir)
	}

	users := store.NewUserStore(db)
	classes := store.NewClassStore(db)

	router := httpapi.NewRouter(httpapi.Deps{
		Log:       log,
		Config:    cfg.API,
		Providers: cfg.OAuth,
		Tokens:    tokens,
		Users:     users,
		Auth:      service.NewAuth(users, tokens),
		Accounts:  service.NewAccount(users, tokens, mailer, cfg.ClientURL),
		Classes:   service.NewClass(classes),
	})

	return httpserver.New(cfg.HTTP, log).Run(ctx, router)
}
