package main

import (
	"encoding/gob"
	"net/http"
	"os"

	"github.com/alexedwards/scs"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	zero "github.com/rs/zerolog/log"

	"github.com/corpushub/catalog/internal/archive"
	"github.com/corpushub/catalog/internal/auth"
	"github.com/corpushub/catalog/internal/config"
	"github.com/corpushub/catalog/internal/domain"
	"github.com/corpushub/catalog/internal/favorites"
	"github.com/corpushub/catalog/internal/notify"
	"github.com/corpushub/catalog/internal/store"
	"github.com/corpushub/catalog/internal/web"
)

func main() {
	zero.Logger = zero.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.ReadConfig()
	if err != nil {
		zero.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	// The identity store lives in its own logical shard, separated from the
	// rest of the application data.
	authStore := store.NewRedis(client, "auth")
	favStore := store.NewRedis(client, "favorites")

	notifier := notify.New(
		&notify.SMTPSender{Host: cfg.SMTPHost, Port: cfg.SMTPPort},
		cfg.AccessReqSender,
		cfg.AccessReqRecipients,
	)

	fav := favorites.New(favStore)
	arch, err := archive.New(cfg.CorplistPath, archive.Options{
		TagPrefix:      cfg.TagPrefix,
		MaxNumHints:    cfg.MaxNumHints,
		MaxPageSize:    cfg.MaxPageSize,
		DefaultLabel:   cfg.DefaultLabel,
		RegistryLocale: cfg.RegistryLocale,
		Favorites:      fav,
		Notifier:       notifier,
	})
	if err != nil {
		zero.Fatal().Err(err).Str("file", cfg.CorplistPath).Msg("failed to load corpus catalog")
	}

	authSvc := auth.New(authStore, cfg.AnonymousUserID, cfg.LogoutURL, cfg.IDHeaders, arch.PublicCorpora)

	gob.Register(domain.User{})
	manager := scs.NewCookieManager(cfg.SessionKey)

	handler := web.New(&cfg, arch, authSvc, fav, manager)
	router := chi.NewRouter()
	if cfg.Debug {
		router.Use(middleware.Logger)
	}
	handler.Mount(router)

	s := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	zero.Info().Str("addr", cfg.ListenAddr).Msg("started server")
	if err := s.ListenAndServe(); err != nil {
		zero.Fatal().Err(err).Msg("server stopped")
	}
}
