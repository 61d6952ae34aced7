// Package web is the HTTP surface of the catalog: JSON endpoints over chi,
// cookie sessions via scs.
package web

import (
	"encoding/json"
	"net/http"

	"github.com/alexedwards/scs"
	"github.com/corpushub/catalog/internal/archive"
	"github.com/corpushub/catalog/internal/auth"
	"github.com/corpushub/catalog/internal/config"
	"github.com/corpushub/catalog/internal/favorites"
	"github.com/rs/zerolog/log"
)

const (
	LoginRoute  = "/login"
	LogoutRoute = "/logout"
	CorporaPath = "/corpora"
)

type Handler struct {
	Config         *config.Configuration
	Archive        *archive.Archive
	Auth           *auth.Service
	Favorites      *favorites.Items
	SessionManager *scs.Manager
}

func New(cfg *config.Configuration, arch *archive.Archive, authSvc *auth.Service, fav *favorites.Items, manager *scs.Manager) Handler {
	return Handler{
		Config:         cfg,
		Archive:        arch,
		Auth:           authSvc,
		Favorites:      fav,
		SessionManager: manager,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn().Err(err).Msg("failed to write response body")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
