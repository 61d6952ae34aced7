package domain

// Kind distinguishes a regular catalog record from the sentinel returned for
// unknown corpus ids. Callers switch on it instead of testing for nil.
type Kind string

const (
	KindRegular Kind = "regular"
	KindBroken  Kind = "broken"
)

// UnknownMarker fills descriptive fields of a broken record so consumers never
// have to branch on field presence.
const UnknownMarker = "unknown"

// CorpusInfo is the full metadata record of a single corpus. ID is the sole
// join key between the navigation tree and the metadata mapping and never
// changes once assigned.
type CorpusInfo struct {
	Kind           Kind     `json:"kind"`
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Web            string   `json:"web,omitempty"`
	SentenceStruct string   `json:"sentence_struct,omitempty"`
	SpeechSegment  string   `json:"speech_segment,omitempty"`
	BibStruct      string   `json:"bib_struct,omitempty"`
	Tagset         string   `json:"tagset,omitempty"`
	CollatorLocale string   `json:"collator_locale"`
	SampleSize     int64    `json:"sample_size"`
	Citation       string   `json:"citation,omitempty"`
	Metadata       string   `json:"metadata,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	Requestable    bool     `json:"requestable"`
}

// BrokenCorpusInfo builds the sentinel record for an id missing from the
// catalog. All descriptive fields carry explicit unknown markers; the
// collator locale falls back to locale, or en_US when empty.
func BrokenCorpusInfo(id, locale string) *CorpusInfo {
	name := id
	if name == "" {
		name = UnknownMarker
	}
	if locale == "" {
		locale = "en_US"
	}
	return &CorpusInfo{
		Kind:           KindBroken,
		ID:             id,
		Name:           name,
		Web:            UnknownMarker,
		SentenceStruct: UnknownMarker,
		SpeechSegment:  UnknownMarker,
		BibStruct:      UnknownMarker,
		Tagset:         UnknownMarker,
		CollatorLocale: locale,
		SampleSize:     -1,
	}
}

// TreeNode is one node of the corpus navigation tree. Group nodes carry a name
// and children in document order; leaf nodes carry the corpus ident. The tree
// is built once per parse and read-only afterwards.
type TreeNode struct {
	Name     string      `json:"name"`
	Ident    string      `json:"ident,omitempty"`
	Corplist []*TreeNode `json:"corplist,omitempty"`
}

// CorpusListItem is the lightweight row returned by catalog search. It carries
// only what a listing page needs, not the full CorpusInfo.
type CorpusListItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Web         string   `json:"web,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	SampleSize  int64    `json:"sample_size"`
	Requestable bool     `json:"requestable"`
}

// SearchResult is one page of catalog search output. Keywords reflects the
// sticky keyword selection active after the search, so a UI can mirror it.
type SearchResult struct {
	Rows     []CorpusListItem `json:"rows"`
	Total    int              `json:"total"`
	Keywords []string         `json:"keywords"`
	Hints    int              `json:"hints"`
}
