// Package favorites persists per-user saved corpus selections.
package favorites

import (
	"context"
	"sort"
	"strconv"

	"github.com/corpushub/catalog/internal/store"
)

// Provider is the collaborator interface the archive consumes when exporting
// a user's saved corpora.
type Provider interface {
	ExportFavorites(ctx context.Context, userID int64) ([]string, error)
}

// Items stores favorites as one hash per user in the backing store, the
// corpus id being the field name. Field values are unused.
type Items struct {
	store store.Store
}

func New(st store.Store) *Items {
	return &Items{store: st}
}

func userKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// ExportFavorites returns the user's saved corpus ids in stable sorted order.
func (f *Items) ExportFavorites(ctx context.Context, userID int64) ([]string, error) {
	m, err := f.store.HashGetAll(ctx, userKey(userID))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *Items) Add(ctx context.Context, userID int64, corpusID string) error {
	return f.store.HashSetMap(ctx, userKey(userID), map[string]string{corpusID: "1"})
}

func (f *Items) Remove(ctx context.Context, userID int64, corpusID string) error {
	return f.store.HashDelete(ctx, userKey(userID), corpusID)
}
