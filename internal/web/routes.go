package web

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) Mount(r chi.Router) {
	authenticated := AuthenticatedMiddleware(h)
	r.Use(SessionMiddleware(h))

	r.Post(LoginRoute, Login(h))
	r.Get(LogoutRoute, Logout(h))

	r.Route(CorporaPath, func(r chi.Router) {
		r.Get("/tree", CorpTree(h))
		r.Get("/search", SearchCorpora(h))
		r.Get("/state", ExportState(h))
		r.With(authenticated).Get("/favorites", GetFavorites(h))
		r.With(authenticated).Put("/favorites/{id}", AddFavorite(h))
		r.With(authenticated).Delete("/favorites/{id}", RemoveFavorite(h))
		r.Get("/{id}", CorpusInfo(h))
		r.With(authenticated).Post("/{id}/ask-access", AskAccess(h))
	})
}
