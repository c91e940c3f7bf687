package bioc

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

// Infon keys written on merged annotations.
const (
	infonType       = "type"
	infonIdentifier = "identifier"
	infonSymbol     = "symbol"
	infonLabel      = "label"
	infonOrigin     = "origin"
	infonDOItems    = "do_items"
)

// XML wire form.

type xmlCollection struct {
	XMLName   xml.Name      `xml:"collection"`
	Source    string        `xml:"source"`
	Date      string        `xml:"date"`
	Key       string        `xml:"key"`
	Documents []xmlDocument `xml:"document"`
}

type xmlInfon struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

type xmlDocument struct {
	ID       string       `xml:"id"`
	Infons   []xmlInfon   `xml:"infon"`
	Passages []xmlPassage `xml:"passage"`
}

type xmlPassage struct {
	Infons      []xmlInfon      `xml:"infon"`
	Offset      int             `xml:"offset"`
	Text        string          `xml:"text,omitempty"`
	Sentences   []xmlSentence   `xml:"sentence"`
	Annotations []xmlAnnotation `xml:"annotation"`
}

type xmlSentence struct {
	Offset      int             `xml:"offset"`
	Text        string          `xml:"text"`
	Annotations []xmlAnnotation `xml:"annotation"`
}

type xmlAnnotation struct {
	ID       string      `xml:"id,attr"`
	Infons   []xmlInfon  `xml:"infon"`
	Location xmlLocation `xml:"location"`
	Text     string      `xml:"text"`
}

type xmlLocation struct {
	Offset int `xml:"offset,attr"`
	Length int `xml:"length,attr"`
}

// JSON wire form, the layout of BioC JSON.

type jsonDocument struct {
	ID        string            `json:"id"`
	Infons    map[string]string `json:"infons"`
	Passages  []jsonPassage     `json:"passages"`
	Relations []struct{}        `json:"relations"`
}

type jsonPassage struct {
	Offset      int               `json:"offset"`
	Infons      map[string]string `json:"infons"`
	Text        string            `json:"text"`
	Sentences   []jsonSentence    `json:"sentences"`
	Annotations []jsonAnnotation  `json:"annotations"`
	Relations   []struct{}        `json:"relations"`
}

type jsonSentence struct {
	Offset      int               `json:"offset"`
	Infons      map[string]string `json:"infons"`
	Text        string            `json:"text"`
	Annotations []jsonAnnotation  `json:"annotations"`
	Relations   []struct{}        `json:"relations"`
}

type jsonAnnotation struct {
	ID        string         `json:"id"`
	Infons    jsonAnnInfons  `json:"infons"`
	Text      string         `json:"text"`
	Locations []jsonLocation `json:"locations"`
}

type jsonAnnInfons struct {
	Type       string       `json:"type"`
	Identifier string       `json:"identifier"`
	Symbol     string       `json:"symbol"`
	Label      string       `json:"label,omitempty"`
	Origin     string       `json:"origin,omitempty"`
	DOItems    []jsonDOItem `json:"do_items,omitempty"`
}

type jsonDOItem struct {
	Identifier string `json:"do_identifier"`
	Symbol     string `json:"do_symbol"`
}

type jsonLocation struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
}

// domain → XML

func toXMLDocument(doc *domain.Document) xmlDocument {
	out := xmlDocument{
		ID:       doc.ID,
		Infons:   toXMLInfons(doc.Infons),
		Passages: make([]xmlPassage, 0, len(doc.Passages)),
	}
	for i := range doc.Passages {
		p := &doc.Passages[i]
		xp := xmlPassage{
			Infons:      toXMLInfons(p.Infons),
			Offset:      p.Offset,
			Text:        p.Text,
			Annotations: make([]xmlAnnotation, 0, len(p.Annotations)),
		}
		for _, a := range p.Annotations {
			xp.Annotations = append(xp.Annotations, toXMLAnnotation(a))
		}
		for j := range p.Sentences {
			xs := xmlSentence{Offset: p.Sentences[j].Offset, Text: p.Sentences[j].Text}
			for _, a := range p.SentenceAnnotations(j) {
				xs.Annotations = append(xs.Annotations, toXMLAnnotation(a))
			}
			xp.Sentences = append(xp.Sentences, xs)
		}
		out.Passages = append(out.Passages, xp)
	}
	return out
}

func toXMLAnnotation(a domain.Annotation) xmlAnnotation {
	infons := []xmlInfon{
		{Key: infonType, Value: string(a.Type)},
		{Key: infonIdentifier, Value: a.Identifier},
		{Key: infonSymbol, Value: a.Symbol},
	}
	if a.Label != "" {
		infons = append(infons, xmlInfon{Key: infonLabel, Value: a.Label})
	}
	if a.Origin != "" {
		infons = append(infons, xmlInfon{Key: infonOrigin, Value: a.Origin})
	}
	if len(a.CrossRefs) > 0 {
		items := make([]string, len(a.CrossRefs))
		for i, ref := range a.CrossRefs {
			items[i] = ref.Identifier + "|" + ref.Symbol
		}
		infons = append(infons, xmlInfon{Key: infonDOItems, Value: strings.Join(items, ";")})
	}
	return xmlAnnotation{
		ID:       strconv.Itoa(a.ID),
		Infons:   infons,
		Location: xmlLocation{Offset: a.Span.Start, Length: a.Span.Length},
		Text:     a.Text,
	}
}

func toXMLInfons(m map[string]string) []xmlInfon {
	if len(m) == 0 {
		return nil
	}
	out := make([]xmlInfon, 0, len(m))
	for _, k := range sortedKeys(m) {
		out = append(out, xmlInfon{Key: k, Value: m[k]})
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// domain ⇄ JSON

func toJSONDocument(doc *domain.Document) jsonDocument {
	out := jsonDocument{
		ID:        doc.ID,
		Infons:    nonNil(doc.Infons),
		Passages:  make([]jsonPassage, 0, len(doc.Passages)),
		Relations: []struct{}{},
	}
	for i := range doc.Passages {
		p := &doc.Passages[i]
		jp := jsonPassage{
			Offset:      p.Offset,
			Infons:      nonNil(p.Infons),
			Text:        p.Text,
			Sentences:   make([]jsonSentence, 0, len(p.Sentences)),
			Annotations: toJSONAnnotations(p.Annotations),
			Relations:   []struct{}{},
		}
		for j := range p.Sentences {
			jp.Sentences = append(jp.Sentences, jsonSentence{
				Offset:      p.Sentences[j].Offset,
				Infons:      map[string]string{},
				Text:        p.Sentences[j].Text,
				Annotations: toJSONAnnotations(p.SentenceAnnotations(j)),
				Relations:   []struct{}{},
			})
		}
		out.Passages = append(out.Passages, jp)
	}
	return out
}

func toJSONAnnotations(anns []domain.Annotation) []jsonAnnotation {
	out := make([]jsonAnnotation, 0, len(anns))
	for _, a := range anns {
		ja := jsonAnnotation{
			ID: strconv.Itoa(a.ID),
			Infons: jsonAnnInfons{
				Type:       string(a.Type),
				Identifier: a.Identifier,
				Symbol:     a.Symbol,
				Label:      a.Label,
				Origin:     a.Origin,
			},
			Text:      a.Text,
			Locations: []jsonLocation{{Offset: a.Span.Start, Length: a.Span.Length}},
		}
		for _, ref := range a.CrossRefs {
			ja.Infons.DOItems = append(ja.Infons.DOItems, jsonDOItem{Identifier: ref.Identifier, Symbol: ref.Symbol})
		}
		out = append(out, ja)
	}
	return out
}

func fromJSONDocument(in jsonDocument) (*domain.Document, error) {
	doc := &domain.Document{
		ID:       in.ID,
		Infons:   nilIfEmpty(in.Infons),
		Passages: make([]domain.Passage, 0, len(in.Passages)),
	}
	for _, jp := range in.Passages {
		p := domain.Passage{
			Offset:      jp.Offset,
			Text:        jp.Text,
			Infons:      nilIfEmpty(jp.Infons),
			Annotations: make([]domain.Annotation, 0, len(jp.Annotations)),
		}
		index := make(map[string]int, len(jp.Annotations))
		for _, ja := range jp.Annotations {
			a, err := fromJSONAnnotation(ja)
			if err != nil {
				return nil, err
			}
			index[ja.ID] = len(p.Annotations)
			p.Annotations = append(p.Annotations, a)
		}
		for _, js := range jp.Sentences {
			s := domain.Sentence{Offset: js.Offset, Text: js.Text}
			for _, ja := range js.Annotations {
				i, ok := index[ja.ID]
				if !ok {
					return nil, fmt.Errorf("%w: sentence annotation %s not in passage", domain.ErrInvalidInput, ja.ID)
				}
				s.AnnotationRefs = append(s.AnnotationRefs, i)
			}
			p.Sentences = append(p.Sentences, s)
		}
		doc.Passages = append(doc.Passages, p)
	}
	return doc, nil
}

func fromJSONAnnotation(ja jsonAnnotation) (domain.Annotation, error) {
	id, err := strconv.Atoi(ja.ID)
	if err != nil {
		return domain.Annotation{}, fmt.Errorf("%w: annotation id %q", domain.ErrInvalidInput, ja.ID)
	}
	if len(ja.Locations) == 0 {
		return domain.Annotation{}, fmt.Errorf("%w: annotation %s has no location", domain.ErrInvalidInput, ja.ID)
	}
	a := domain.Annotation{
		ID:         id,
		Span:       domain.Span{Start: ja.Locations[0].Offset, Length: ja.Locations[0].Length},
		Text:       ja.Text,
		Type:       domain.EntityType(ja.Infons.Type),
		Identifier: ja.Infons.Identifier,
		Symbol:     ja.Infons.Symbol,
		Label:      ja.Infons.Label,
		Origin:     ja.Infons.Origin,
	}
	for _, item := range ja.Infons.DOItems {
		a.CrossRefs = append(a.CrossRefs, domain.CrossRef{Identifier: item.Identifier, Symbol: item.Symbol})
	}
	return a, nil
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func nilIfEmpty(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return m
}
