// Package corptree parses the hierarchical corpus-definition XML into the
// navigation tree and the flat id -> metadata mapping backing the archive.
//
// Expected document structure:
//
//	<corplist name="...">
//	  <corpus ident="..." name="..." ... />
//	  <corplist name="...">...</corplist>
//	</corplist>
package corptree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/corpushub/catalog/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrParse = errors.New("corptree parse error")

const (
	elmGroup  = "corplist"
	elmCorpus = "corpus"
)

// node mirrors the raw document shape; the recursion in Children handles
// arbitrarily deep nesting.
type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []node     `xml:",any"`
}

func (n *node) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n *node) attrOr(name, fallback string) string {
	if v, ok := n.attr(name); ok {
		return v
	}
	return fallback
}

// ParseFile reads and parses the corpus-definition file at path. Corpora that
// do not declare a collator locale fall back to defaultLocale.
func ParseFile(path, defaultLocale string) (*domain.TreeNode, map[string]*domain.CorpusInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrParse, err)
	}
	defer f.Close()
	return Parse(f, defaultLocale)
}

// Parse walks the document and returns the navigation tree together with the
// metadata mapping keyed by lower-cased corpus ident. A later corpus element
// with an already seen ident overwrites the earlier one; a warning is logged
// but parsing continues.
func Parse(r io.Reader, defaultLocale string) (*domain.TreeNode, map[string]*domain.CorpusInfo, error) {
	if defaultLocale == "" {
		defaultLocale = "en_US"
	}
	var root node
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrParse, err)
	}
	if root.XMLName.Local != elmGroup {
		return nil, nil, fmt.Errorf("%w: unexpected root element <%s>", ErrParse, root.XMLName.Local)
	}

	metadata := make(map[string]*domain.CorpusInfo)
	tree, err := parseNode(&root, metadata, defaultLocale)
	if err != nil {
		return nil, nil, err
	}
	return tree, metadata, nil
}

func parseNode(elm *node, metadata map[string]*domain.CorpusInfo, defaultLocale string) (*domain.TreeNode, error) {
	out := &domain.TreeNode{}
	switch elm.XMLName.Local {
	case elmGroup:
		out.Name = elm.attrOr("name", "")
	case elmCorpus:
		ident, ok := elm.attr("ident")
		if !ok || ident == "" {
			return nil, fmt.Errorf("%w: corpus element without ident attribute", ErrParse)
		}
		out.Ident = strings.ToLower(ident)
		out.Name = elm.attrOr("name", out.Ident)
		if _, dup := metadata[out.Ident]; dup {
			log.Warn().Str("ident", out.Ident).Msg("duplicate corpus ident, overwriting earlier definition")
		}
		metadata[out.Ident] = corpusMetadata(elm, out.Ident, defaultLocale)
	}

	for i := range elm.Children {
		child := &elm.Children[i]
		if child.XMLName.Local != elmGroup && child.XMLName.Local != elmCorpus {
			continue
		}
		sub, err := parseNode(child, metadata, defaultLocale)
		if err != nil {
			return nil, err
		}
		out.Corplist = append(out.Corplist, sub)
	}
	return out, nil
}

func corpusMetadata(elm *node, ident, defaultLocale string) *domain.CorpusInfo {
	info := &domain.CorpusInfo{
		Kind:           domain.KindRegular,
		ID:             ident,
		Name:           elm.attrOr("name", ident),
		Web:            elm.attrOr("web", ""),
		SentenceStruct: elm.attrOr("sentence_struct", ""),
		SpeechSegment:  elm.attrOr("speech_segment", ""),
		BibStruct:      elm.attrOr("bib_struct", ""),
		Tagset:         elm.attrOr("tagset", ""),
		CollatorLocale: elm.attrOr("collator_locale", defaultLocale),
		SampleSize:     -1,
		Requestable:    elm.attrOr("requestable", "") == "true",
	}
	if raw, ok := elm.attr("sample_size"); ok {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			info.SampleSize = n
		}
	}
	if raw, ok := elm.attr("keywords"); ok {
		for _, kw := range strings.Split(raw, ",") {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				info.Keywords = append(info.Keywords, kw)
			}
		}
	}
	return info
}
