// Package archive owns the corpus catalog: the navigation tree, the flat
// metadata mapping and the search surface over it. The loaded structures are
// immutable; a reload builds fresh ones and publishes them atomically, so
// concurrent readers never observe a partially built catalog.
package archive

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/corpushub/catalog/internal/corptree"
	"github.com/corpushub/catalog/internal/domain"
	"github.com/corpushub/catalog/internal/favorites"
	"github.com/rs/zerolog/log"
)

// Session is the slice of session behaviour the archive needs for sticky
// keyword persistence. Implementations are scoped to a single session id.
type Session interface {
	// Keywords returns the stored keyword sequence and whether one exists.
	Keywords() ([]string, bool)
	SetKeywords(kws []string) error
}

// Notifier dispatches corpus access requests; see the notify package.
type Notifier interface {
	SendRequest(ctx context.Context, req domain.AccessRequest) bool
}

type snapshot struct {
	tree     *domain.TreeNode
	metadata map[string]*domain.CorpusInfo
}

// Archive serves catalog lookups and search. All configuration is fixed at
// construction; only the snapshot pointer changes afterwards.
type Archive struct {
	snap atomic.Pointer[snapshot]

	tagPrefix      string
	maxNumHints    int
	maxPageSize    int
	defaultLabel   string
	registryLocale string

	favorites favorites.Provider
	notifier  Notifier
}

type Options struct {
	TagPrefix    string
	MaxNumHints  int
	MaxPageSize  int
	DefaultLabel string
	// RegistryLocale is the collator locale applied to corpora that do not
	// declare their own, and to broken sentinel records.
	RegistryLocale string
	Favorites      favorites.Provider
	Notifier       Notifier
}

// New builds an archive from the corpus-definition file at path. The initial
// load must succeed; a service with an empty catalog must not start.
func New(path string, opts Options) (*Archive, error) {
	a := &Archive{
		tagPrefix:      opts.TagPrefix,
		maxNumHints:    opts.MaxNumHints,
		maxPageSize:    opts.MaxPageSize,
		defaultLabel:   opts.DefaultLabel,
		registryLocale: opts.RegistryLocale,
		favorites:      opts.Favorites,
		notifier:       opts.Notifier,
	}
	if err := a.Load(path); err != nil {
		return nil, err
	}
	return a, nil
}

// Load parses the corpus-definition file and publishes the result. On error
// the previously published snapshot stays in place untouched.
func (a *Archive) Load(path string) error {
	tree, metadata, err := corptree.ParseFile(path, a.registryLocale)
	if err != nil {
		return err
	}
	a.snap.Store(&snapshot{tree: tree, metadata: metadata})
	log.Info().Int("corpora", len(metadata)).Str("file", path).Msg("corpus catalog loaded")
	return nil
}

// GetCorpusInfo is a total lookup: an id missing from the catalog yields the
// broken sentinel record, never an error.
func (a *Archive) GetCorpusInfo(id string) *domain.CorpusInfo {
	id = strings.ToLower(id)
	if info, ok := a.snap.Load().metadata[id]; ok {
		return info
	}
	return domain.BrokenCorpusInfo(id, a.registryLocale)
}

// GetAll returns the navigation tree. The tree is shared and read-only.
func (a *Archive) GetAll(userID int64) *domain.TreeNode {
	return a.snap.Load().tree
}

// GetList returns the allowed corpus ids in stable sorted order. A nil
// allowed set means no restriction.
func (a *Archive) GetList(allowed map[string]struct{}) []string {
	metadata := a.snap.Load().metadata
	ids := make([]string, 0, len(metadata))
	for id := range metadata {
		if allowed != nil {
			if _, ok := allowed[id]; !ok {
				continue
			}
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// PublicCorpora returns every catalog id, sorted. The auth layer uses it as
// the public visibility set.
func (a *Archive) PublicCorpora() []string {
	return a.GetList(nil)
}

// Export assembles the payload the caller renders UI state from, including
// the session's current sticky keywords.
func (a *Archive) Export(sess Session) map[string]any {
	kws, ok := sess.Keywords()
	if !ok {
		kws = []string{a.defaultLabel}
	}
	return map[string]any{
		"initial_keywords": kws,
		"tag_prefix":       a.tagPrefix,
		"max_num_hints":    a.maxNumHints,
	}
}

// ExportFavorite resolves the user's saved corpus ids through GetCorpusInfo;
// ids no longer present in the catalog come back as broken records.
func (a *Archive) ExportFavorite(ctx context.Context, userID int64) ([]*domain.CorpusInfo, error) {
	ids, err := a.favorites.ExportFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.CorpusInfo, 0, len(ids))
	for _, id := range ids {
		out = append(out, a.GetCorpusInfo(id))
	}
	return out, nil
}

// SendRequestEmail dispatches an access request for the given corpus on
// behalf of user. Delegates to the notifier; see its success semantics.
func (a *Archive) SendRequestEmail(ctx context.Context, corpusID string, user domain.User, customMessage string) bool {
	return a.notifier.SendRequest(ctx, domain.AccessRequest{
		CorpusID: corpusID,
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Message:  customMessage,
	})
}
