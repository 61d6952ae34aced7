package web

import (
	"net/http"
	"strconv"

	"github.com/alexedwards/scs"
	"github.com/go-chi/chi/v5"
)

// keywordSession adapts the scs cookie session to the archive's sticky
// keyword store.
type keywordSession struct {
	s *scs.Session
	w http.ResponseWriter
}

func (k keywordSession) Keywords() ([]string, bool) {
	exists, err := k.s.Exists(SessionKeywordsKey)
	if err != nil || !exists {
		return nil, false
	}
	var kws []string
	if err := k.s.GetObject(SessionKeywordsKey, &kws); err != nil {
		return nil, false
	}
	return kws, true
}

func (k keywordSession) SetKeywords(kws []string) error {
	if kws == nil {
		kws = []string{}
	}
	return k.s.PutObject(k.w, SessionKeywordsKey, kws)
}

// CorpTree returns the full navigation tree.
func CorpTree(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := GetUser(r.Context())
		writeJSON(w, http.StatusOK, handler.Archive.GetAll(u.ID))
	}
}

// CorpusInfo returns the metadata record for one corpus id. The lookup is
// total: unknown ids yield the broken sentinel, not a 404.
func CorpusInfo(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, handler.Archive.GetCorpusInfo(chi.URLParam(r, "id")))
	}
}

// SearchCorpora runs a paginated catalog search. Omitting the q parameter
// entirely reuses the session's sticky keywords; supplying it (even empty)
// replaces them.
func SearchCorpora(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := GetUser(r.Context())
		params := r.URL.Query()

		offset, _ := strconv.Atoi(params.Get("offset"))
		limit, _ := strconv.Atoi(params.Get("limit"))
		rawQuery := params.Get("q")
		explicit := params.Has("q")

		sess := keywordSession{s: RequestSession(r, handler.SessionManager), w: w}
		allowed := handler.Auth.PermittedCorpora(u.ID)
		result, err := handler.Archive.Search(sess, allowed, rawQuery, explicit, offset, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "search failed")
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// ExportState returns the widget bootstrap payload, including the session's
// current sticky keywords.
func ExportState(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := keywordSession{s: RequestSession(r, handler.SessionManager), w: w}
		writeJSON(w, http.StatusOK, handler.Archive.Export(sess))
	}
}

// GetFavorites returns the caller's saved corpora, resolved to full metadata
// records.
func GetFavorites(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := GetUser(r.Context())
		infos, err := handler.Archive.ExportFavorite(r.Context(), u.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load favorites")
			return
		}
		writeJSON(w, http.StatusOK, infos)
	}
}

func AddFavorite(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := GetUser(r.Context())
		if err := handler.Favorites.Add(r.Context(), u.ID, chi.URLParam(r, "id")); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save favorite")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{})
	}
}

func RemoveFavorite(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := GetUser(r.Context())
		if err := handler.Favorites.Remove(r.Context(), u.ID, chi.URLParam(r, "id")); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to remove favorite")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{})
	}
}

// AskAccess triggers an access-request notification for a corpus. Delivery
// failure comes back as an error payload, not an HTTP failure.
func AskAccess(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := GetUser(r.Context())
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "failed to parse form body")
			return
		}
		corpusID := chi.URLParam(r, "id")
		ok := handler.Archive.SendRequestEmail(r.Context(), corpusID, u, r.Form.Get("customMessage"))
		if !ok {
			writeJSON(w, http.StatusOK, map[string]string{
				"error": "Failed to send e-mail. Please try again later or contact system administrator",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{})
	}
}
