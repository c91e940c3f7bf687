// Package bioc reads and writes BioC documents: the XML the recognizers
// emit and the XML and JSON forms merged documents are published in.
package bioc

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

var (
	documentExpr   = xpath.MustCompile("//document")
	passageExpr    = xpath.MustCompile("passage")
	sentenceExpr   = xpath.MustCompile("sentence")
	annotationExpr = xpath.MustCompile(".//annotation")
	infonExpr      = xpath.MustCompile("infon")
	locationExpr   = xpath.MustCompile("location")
)

// Parsed is the first document of a BioC collection split into its
// skeleton and the raw annotations found anywhere inside it.
type Parsed struct {
	// Document holds passages and sentences with empty annotation lists.
	Document *domain.Document

	// Annotations are the raw annotations of every passage and sentence,
	// in document order.
	Annotations []domain.RawAnnotation
}

// Read parses a BioC XML collection. Parse failures wrap
// domain.ErrMalformedOutput.
func Read(r io.Reader) (*Parsed, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}
	docNode := xmlquery.QuerySelector(root, documentExpr)
	if docNode == nil {
		return nil, fmt.Errorf("%w: no document element", domain.ErrMalformedOutput)
	}

	doc := &domain.Document{
		ID:     strings.TrimSpace(childText(docNode, "id")),
		Infons: readInfons(docNode),
	}
	parsed := &Parsed{Document: doc}

	for _, pn := range xmlquery.QuerySelectorAll(docNode, passageExpr) {
		offset, err := readInt(childText(pn, "offset"))
		if err != nil {
			return nil, fmt.Errorf("%w: passage offset: %v", domain.ErrMalformedOutput, err)
		}
		passage := domain.Passage{
			Offset: offset,
			Text:   childText(pn, "text"),
			Infons: readInfons(pn),
		}
		for _, sn := range xmlquery.QuerySelectorAll(pn, sentenceExpr) {
			soff, err := readInt(childText(sn, "offset"))
			if err != nil {
				return nil, fmt.Errorf("%w: sentence offset: %v", domain.ErrMalformedOutput, err)
			}
			passage.Sentences = append(passage.Sentences, domain.Sentence{
				Offset: soff,
				Text:   childText(sn, "text"),
			})
		}
		for _, an := range xmlquery.QuerySelectorAll(pn, annotationExpr) {
			raw, err := readAnnotation(an)
			if err != nil {
				return nil, err
			}
			parsed.Annotations = append(parsed.Annotations, raw)
		}
		doc.Passages = append(doc.Passages, passage)
	}

	sort.SliceStable(doc.Passages, func(i, j int) bool {
		return doc.Passages[i].Offset < doc.Passages[j].Offset
	})
	return parsed, nil
}

func readAnnotation(n *xmlquery.Node) (domain.RawAnnotation, error) {
	raw := domain.RawAnnotation{
		ID:     n.SelectAttr("id"),
		Infons: readInfons(n),
		Text:   childText(n, "text"),
	}
	loc := xmlquery.QuerySelector(n, locationExpr)
	if loc == nil {
		return raw, fmt.Errorf("%w: annotation %s has no location", domain.ErrMalformedOutput, raw.ID)
	}
	var err error
	if raw.Offset, err = readInt(loc.SelectAttr("offset")); err != nil {
		return raw, fmt.Errorf("%w: annotation %s offset: %v", domain.ErrMalformedOutput, raw.ID, err)
	}
	if raw.Length, err = readInt(loc.SelectAttr("length")); err != nil {
		return raw, fmt.Errorf("%w: annotation %s length: %v", domain.ErrMalformedOutput, raw.ID, err)
	}
	return raw, nil
}

func readInfons(n *xmlquery.Node) map[string]string {
	nodes := xmlquery.QuerySelectorAll(n, infonExpr)
	if len(nodes) == 0 {
		return nil
	}
	infons := make(map[string]string, len(nodes))
	for _, in := range nodes {
		infons[in.SelectAttr("key")] = in.InnerText()
	}
	return infons
}

func childText(n *xmlquery.Node, name string) string {
	if c := n.SelectElement(name); c != nil {
		return c.InnerText()
	}
	return ""
}

// maxOffset bounds offsets and lengths so span ends cannot overflow.
const maxOffset = math.MaxInt32

func readInt(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %d", v)
	}
	if v > maxOffset {
		return 0, fmt.Errorf("value %d out of range", v)
	}
	return v, nil
}
