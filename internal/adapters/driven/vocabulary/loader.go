// Package vocabulary loads the reference vocabularies (gene, cancer,
// chemical, evidence, Disease Ontology) into an immutable ReferenceData
// snapshot.
package vocabulary

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/zeebo/blake3"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
	"github.com/custodia-labs/pubminer/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.ReferenceLoader = (*Loader)(nil)

// Minimum dictionary key lengths per vocabulary.
const (
	MinCancerKey   = 4
	MinChemicalKey = 4
	MinGeneKey     = 3
)

// tkiTerms are chemical class mentions with no vocabulary identifier.
var tkiTerms = []string{
	"tyrosine kinase inhibitor",
	"tyrosine kinase inhibitors",
	"tki",
	"tkis",
}

// Files locates the vocabulary files. Empty entries are skipped.
// Files ending in .xz are decompressed.
type Files struct {
	Gene      string
	Cancer    string
	Chemical  string
	Evidence  string
	DOID      string
	Stopwords string
}

// Loader builds ReferenceData from TSV files. The last snapshot is reused
// until a file's size or modification time changes.
type Loader struct {
	files Files

	mu     sync.Mutex
	stamp  string
	cached *domain.ReferenceData
}

// NewLoader creates a vocabulary loader.
func NewLoader(files Files) *Loader {
	return &Loader{files: files}
}

// NormaliseKey folds a surface form into a dictionary key: lower-case,
// non-word characters to spaces, runs of spaces collapsed. Word characters
// are letters, digits and underscore, as in the gap-fill scanner.
func NormaliseKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(unicode.ToLower(r))
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// Load returns the vocabulary snapshot. Failures wrap domain.ErrReferenceData.
func (l *Loader) Load(ctx context.Context) (*domain.ReferenceData, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stamp, err := l.fileStamp()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrReferenceData, err)
	}
	if l.cached != nil && stamp == l.stamp {
		return l.cached, nil
	}

	start := time.Now()
	ref, err := l.build(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrReferenceData, err)
	}
	logger.Info("Loaded vocabularies: %d terms, %d cancer identifiers in %s",
		ref.TermCount(), ref.CancerIdentifierCount(), time.Since(start).Round(time.Millisecond))

	l.cached, l.stamp = ref, stamp
	return ref, nil
}

// fileStamp summarises path, size and mtime of every configured file.
func (l *Loader) fileStamp() (string, error) {
	var b strings.Builder
	for _, path := range l.paths() {
		if path == "" {
			b.WriteString("-\x00")
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%s|%d|%d\x00", path, info.Size(), info.ModTime().UnixNano())
	}
	return b.String(), nil
}

func (l *Loader) paths() []string {
	return []string{l.files.DOID, l.files.Stopwords, l.files.Evidence, l.files.Cancer, l.files.Gene, l.files.Chemical}
}

// build reads every vocabulary. Terms are added evidence, cancer, gene,
// chemical so later vocabularies win on shared keys.
func (l *Loader) build(ctx context.Context) (*domain.ReferenceData, error) {
	b := domain.NewReferenceDataBuilder()
	sum := blake3.New()

	steps := []struct {
		name string
		path string
		load func(path string, sum io.Writer, b *domain.ReferenceDataBuilder) error
	}{
		{"doid", l.files.DOID, loadDOID},
		{"evidence", l.files.Evidence, loadEvidence},
		{"cancer", l.files.Cancer, loadCancer},
		{"gene", l.files.Gene, l.loadGene},
		{"chemical", l.files.Chemical, loadChemical},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fmt.Fprintf(sum, "%s\x00", step.name)
		if step.path == "" {
			logger.Debug("vocabulary %s not configured", step.name)
			continue
		}
		if err := step.load(step.path, sum, b); err != nil {
			return nil, fmt.Errorf("%s vocabulary %s: %w", step.name, step.path, err)
		}
	}

	for _, term := range tkiTerms {
		b.AddTerm(term, domain.DictionaryEntry{
			Identifier: domain.UnknownIdentifier,
			Symbol:     domain.UnknownSymbol,
			Type:       domain.EntityChemical,
		})
	}

	b.SetDigest(hex.EncodeToString(sum.Sum(nil)))
	return b.Build(), nil
}

func loadDOID(path string, sum io.Writer, b *domain.ReferenceDataBuilder) error {
	t, err := openTable(path, sum)
	if err != nil {
		return err
	}
	if err := t.require("identifier", "symbol"); err != nil {
		return err
	}
	for _, row := range t.rows {
		symbol := t.col(row, "symbol")
		if symbol == "" {
			continue
		}
		ids := append([]string{t.col(row, "identifier")}, splitList(t.col(row, "alt_identifiers"))...)
		for _, id := range ids {
			b.AddDOSymbol(id, symbol)
			b.AddIdentifierSymbol(id, symbol)
		}
	}
	return nil
}

func loadEvidence(path string, sum io.Writer, b *domain.ReferenceDataBuilder) error {
	t, err := openTable(path, sum)
	if err != nil {
		return err
	}
	if err := t.require("identifier", "symbol", "type"); err != nil {
		return err
	}
	for _, row := range t.rows {
		typ, label, ok := domain.ParseEntityType(t.col(row, "type"))
		if !ok {
			continue
		}
		entry := domain.DictionaryEntry{
			Identifier: t.col(row, "identifier"),
			Symbol:     t.col(row, "symbol"),
			Type:       typ,
			Label:      label,
		}
		addSynonyms(b, t, row, entry, 0, nil)
	}
	return nil
}

func loadCancer(path string, sum io.Writer, b *domain.ReferenceDataBuilder) error {
	t, err := openTable(path, sum)
	if err != nil {
		return err
	}
	if err := t.require("identifier", "symbol"); err != nil {
		return err
	}
	for _, row := range t.rows {
		id := t.col(row, "identifier")
		if id == "" {
			continue
		}
		var doIDs, aliases []string
		for _, other := range splitList(t.col(row, "other_identifiers")) {
			if strings.HasPrefix(other, "DOID:") {
				doIDs = append(doIDs, other)
			} else {
				aliases = append(aliases, other)
			}
		}
		b.AddCancerIdentifier(id, doIDs, aliases...)

		entry := domain.DictionaryEntry{Identifier: id, Symbol: t.col(row, "symbol"), Type: domain.EntityDisease}
		addSynonyms(b, t, row, entry, MinCancerKey, nil)
	}
	return nil
}

func (l *Loader) loadGene(path string, sum io.Writer, b *domain.ReferenceDataBuilder) error {
	var stop map[string]bool
	if l.files.Stopwords != "" {
		fmt.Fprint(sum, "stopwords\x00")
		var err error
		if stop, err = readLines(l.files.Stopwords, sum); err != nil {
			return fmt.Errorf("stopwords: %w", err)
		}
	}

	t, err := openTable(path, sum)
	if err != nil {
		return err
	}
	if err := t.require("identifier", "symbol"); err != nil {
		return err
	}
	for _, row := range t.rows {
		entry := domain.DictionaryEntry{Identifier: t.col(row, "identifier"), Symbol: t.col(row, "symbol"), Type: domain.EntityGene}
		addSynonyms(b, t, row, entry, MinGeneKey, stop)
	}
	return nil
}

func loadChemical(path string, sum io.Writer, b *domain.ReferenceDataBuilder) error {
	t, err := openTable(path, sum)
	if err != nil {
		return err
	}
	if err := t.require("identifier", "symbol"); err != nil {
		return err
	}
	for _, row := range t.rows {
		entry := domain.DictionaryEntry{Identifier: t.col(row, "identifier"), Symbol: t.col(row, "symbol"), Type: domain.EntityChemical}
		addSynonyms(b, t, row, entry, MinChemicalKey, nil)
	}
	return nil
}

// addSynonyms maps the symbol and every synonym of row to entry.
func addSynonyms(b *domain.ReferenceDataBuilder, t *table, row []string, entry domain.DictionaryEntry, minLen int, stop map[string]bool) {
	if entry.Identifier == "" {
		entry.Identifier = domain.UnknownIdentifier
	}
	if entry.Symbol == "" {
		entry.Symbol = domain.UnknownSymbol
	}
	b.AddIdentifierSymbol(entry.Identifier, entry.Symbol)

	forms := []string{entry.Symbol}
	for _, field := range t.cols(row, "synonyms") {
		forms = append(forms, splitList(field)...)
	}
	for _, form := range forms {
		if form == domain.UnknownSymbol {
			continue
		}
		key := NormaliseKey(form)
		if key == "" || len([]rune(key)) < minLen || stop[key] {
			continue
		}
		b.AddTerm(key, entry)
	}
}

// splitList splits a pipe-separated list, dropping blanks and "-".
func splitList(s string) []string {
	if s == "" || s == domain.UnknownSymbol {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, "|") {
		if part = strings.TrimSpace(part); part != "" && part != domain.UnknownSymbol {
			out = append(out, part)
		}
	}
	return out
}
