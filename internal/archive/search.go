package archive

import (
	"strings"

	"github.com/corpushub/catalog/internal/domain"
	"github.com/corpushub/catalog/internal/query"
	"github.com/rs/zerolog/log"
)

// Search runs a keyword/substring-filtered, paginated search over the corpora
// visible to the caller.
//
// Keyword selection is sticky within a session: when the caller supplies no
// query at all (explicit == false), the session's stored keyword sequence is
// reused; when an explicit query is supplied, its parsed keywords replace the
// stored sequence, even if there are none. The sequence is seeded with the
// default label on first touch.
func (a *Archive) Search(sess Session, allowed map[string]struct{}, rawQuery string, explicit bool, offset, limit int) (domain.SearchResult, error) {
	if _, ok := sess.Keywords(); !ok {
		if err := sess.SetKeywords([]string{a.defaultLabel}); err != nil {
			return domain.SearchResult{}, err
		}
	}
	if !explicit {
		rawQuery = ""
	}
	substrs, keywords := query.Parse(a.tagPrefix, rawQuery)
	if len(keywords) == 0 && !explicit {
		keywords, _ = sess.Keywords()
	} else {
		if err := sess.SetKeywords(keywords); err != nil {
			return domain.SearchResult{}, err
		}
	}
	log.Debug().Str("query", query.Join(a.tagPrefix, substrs, keywords)).Msg("effective corpus search")

	matched := a.match(allowed, substrs, keywords)

	if a.maxPageSize > 0 && (limit <= 0 || limit > a.maxPageSize) {
		limit = a.maxPageSize
	}
	total := len(matched)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	hints := total
	if a.maxNumHints > 0 && hints > a.maxNumHints {
		hints = a.maxNumHints
	}
	return domain.SearchResult{
		Rows:     matched[offset:end],
		Total:    total,
		Keywords: keywords,
		Hints:    hints,
	}, nil
}

// match collects the visible corpora satisfying every substring and keyword,
// ordered by id. An empty predicate matches every visible corpus.
func (a *Archive) match(allowed map[string]struct{}, substrs, keywords []string) []domain.CorpusListItem {
	metadata := a.snap.Load().metadata
	// Never nil: an empty page must serialize as an array, not null.
	rows := []domain.CorpusListItem{}
	for _, id := range a.GetList(allowed) {
		info := metadata[id]
		if !matchesSubstrings(info, substrs) || !matchesKeywords(info, keywords) {
			continue
		}
		rows = append(rows, domain.CorpusListItem{
			ID:          info.ID,
			Name:        info.Name,
			Web:         info.Web,
			Keywords:    info.Keywords,
			SampleSize:  info.SampleSize,
			Requestable: info.Requestable,
		})
	}
	return rows
}

func matchesSubstrings(info *domain.CorpusInfo, substrs []string) bool {
	name := strings.ToLower(info.Name)
	for _, s := range substrs {
		s = strings.ToLower(s)
		if !strings.Contains(info.ID, s) && !strings.Contains(name, s) {
			return false
		}
	}
	return true
}

func matchesKeywords(info *domain.CorpusInfo, keywords []string) bool {
	for _, kw := range keywords {
		found := false
		for _, have := range info.Keywords {
			if have == kw {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
