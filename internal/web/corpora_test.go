package web

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexedwards/scs"
	"github.com/alicebob/miniredis/v2"
	"github.com/corpushub/catalog/internal/archive"
	"github.com/corpushub/catalog/internal/auth"
	"github.com/corpushub/catalog/internal/config"
	"github.com/corpushub/catalog/internal/domain"
	"github.com/corpushub/catalog/internal/favorites"
	"github.com/corpushub/catalog/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
)

const corplistDoc = `
<corplist name="All">
  <corpus ident="susanne" name="Susanne Corpus" keywords="written,featured"/>
  <corplist name="Spoken">
    <corpus ident="ortofon" name="Ortofon" keywords="spoken" requestable="true"/>
  </corplist>
</corplist>`

type okNotifier struct{}

func (okNotifier) SendRequest(ctx context.Context, req domain.AccessRequest) bool { return true }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	path := filepath.Join(t.TempDir(), "corplist.xml")
	if err := os.WriteFile(path, []byte(corplistDoc), 0o600); err != nil {
		t.Fatal(err)
	}

	fav := favorites.New(store.NewRedis(client, "favorites"))
	arch, err := archive.New(path, archive.Options{
		TagPrefix:    "#",
		MaxNumHints:  10,
		MaxPageSize:  50,
		DefaultLabel: "featured",
		Favorites:    fav,
		Notifier:     okNotifier{},
	})
	if err != nil {
		t.Fatal(err)
	}

	authSvc := auth.New(store.NewRedis(client, "auth"), 0, "/", nil, arch.PublicCorpora)

	cfg := config.Configuration{TagPrefix: "#"}
	manager := scs.NewCookieManager("secret-test-session-key-32-bytes!")
	handler := New(&cfg, arch, authSvc, fav, manager)

	router := chi.NewRouter()
	handler.Mount(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func decodeJSON(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatal("failed to decode response:", err)
	}
}

func TestCorpTreeEndpoint(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp, err := client.Get(srv.URL + "/corpora/tree")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}

	var tree domain.TreeNode
	decodeJSON(t, resp, &tree)
	if tree.Name != "All" || len(tree.Corplist) != 2 {
		t.Errorf("unexpected tree: %+v", tree)
	}
}

func TestCorpusInfoEndpointIsTotal(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp, err := client.Get(srv.URL + "/corpora/nonsense")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for unknown id, got %d", resp.StatusCode)
	}
	var info domain.CorpusInfo
	decodeJSON(t, resp, &info)
	if info.Kind != domain.KindBroken {
		t.Errorf("expected broken sentinel, got %+v", info)
	}
}

func TestSearchStickyAcrossRequests(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	// Explicit keyword query stores the selection in the session.
	resp, err := client.Get(srv.URL + "/corpora/search?q=" + url.QueryEscape("#spoken"))
	if err != nil {
		t.Fatal(err)
	}
	var result domain.SearchResult
	decodeJSON(t, resp, &result)
	if diff := cmp.Diff([]string{"spoken"}, result.Keywords); diff != "" {
		t.Fatalf("keywords mismatch (-want +got):\n%s", diff)
	}
	if result.Total != 1 || result.Rows[0].ID != "ortofon" {
		t.Fatalf("unexpected result: %+v", result)
	}

	// A later request without any q parameter reuses the stored keywords.
	resp, err = client.Get(srv.URL + "/corpora/search")
	if err != nil {
		t.Fatal(err)
	}
	decodeJSON(t, resp, &result)
	if diff := cmp.Diff([]string{"spoken"}, result.Keywords); diff != "" {
		t.Errorf("expected sticky keywords (-want +got):\n%s", diff)
	}
}

func TestSearchNoMatchReturnsEmptyArray(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp, err := client.Get(srv.URL + "/corpora/search?q=zzz")
	if err != nil {
		t.Fatal(err)
	}
	var payload map[string]any
	decodeJSON(t, resp, &payload)
	rows, ok := payload["rows"].([]any)
	if !ok {
		t.Fatalf("expected rows to be a JSON array, got %T", payload["rows"])
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %v", rows)
	}
}

func TestSearchEmptyQueryMatchesAll(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp, err := client.Get(srv.URL + "/corpora/search?q=")
	if err != nil {
		t.Fatal(err)
	}
	var result domain.SearchResult
	decodeJSON(t, resp, &result)
	if result.Total != 2 {
		t.Errorf("expected full catalog, got total %d", result.Total)
	}
}

func TestFederatedIdentityFromHeaders(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/corpora/favorites", nil)
	req.Header.Set("Eppn", "jdoe@uni.example")
	req.Header.Set("Shib-Identity-Provider", "https://idp.example.org")
	req.Header.Set("Displayname", "Jane Doe")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected federated caller to be authenticated, got %d", resp.StatusCode)
	}
	var infos []domain.CorpusInfo
	decodeJSON(t, resp, &infos)
	if len(infos) != 0 {
		t.Errorf("expected no favorites yet, got %v", infos)
	}
}

// A first-time federated caller whose request also stores sticky keywords
// must keep both writes: the identity and the keywords go through the same
// session, so the later write must not clobber the earlier one.
func TestFederatedIdentitySurvivesKeywordWrite(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	req, _ := http.NewRequest(
		http.MethodGet,
		srv.URL+"/corpora/search?q="+url.QueryEscape("#spoken"),
		nil,
	)
	req.Header.Set("Eppn", "jdoe@uni.example")
	req.Header.Set("Shib-Identity-Provider", "https://idp.example.org")
	req.Header.Set("Displayname", "Jane Doe")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	var result domain.SearchResult
	decodeJSON(t, resp, &result)
	if diff := cmp.Diff([]string{"spoken"}, result.Keywords); diff != "" {
		t.Fatalf("keywords mismatch (-want +got):\n%s", diff)
	}

	// Follow-up request carries only the session cookie, no federated
	// headers: the stored identity must still authenticate it.
	resp, err = client.Get(srv.URL + "/corpora/favorites")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected stored identity to authenticate follow-up request, got %d", resp.StatusCode)
	}

	// And the sticky keywords from the same first request survive too.
	resp, err = client.Get(srv.URL + "/corpora/search")
	if err != nil {
		t.Fatal(err)
	}
	decodeJSON(t, resp, &result)
	if diff := cmp.Diff([]string{"spoken"}, result.Keywords); diff != "" {
		t.Errorf("expected sticky keywords to survive (-want +got):\n%s", diff)
	}
}

func TestAnonymousCannotAskAccess(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp, err := client.Post(
		srv.URL+"/corpora/ortofon/ask-access",
		"application/x-www-form-urlencoded",
		strings.NewReader("customMessage=please"),
	)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for anonymous caller, got %d", resp.StatusCode)
	}
}

func TestAskAccessAuthenticated(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	req, _ := http.NewRequest(
		http.MethodPost,
		srv.URL+"/corpora/ortofon/ask-access",
		strings.NewReader("customMessage=please"),
	)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Eppn", "jdoe@uni.example")
	req.Header.Set("Shib-Identity-Provider", "https://idp.example.org")
	req.Header.Set("Displayname", "Jane Doe")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	var payload map[string]string
	decodeJSON(t, resp, &payload)
	if payload["error"] != "" {
		t.Errorf("expected empty payload on success, got %v", payload)
	}
}

func TestLogoutRedirects(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp, err := client.Get(srv.URL + "/logout")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("expected redirect after logout, got %d", resp.StatusCode)
	}
}

func init() {
	gob.Register(domain.User{})
}
