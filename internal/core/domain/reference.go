package domain

// DictionaryEntry is what a lower-cased surface form resolves to.
type DictionaryEntry struct {
	// Identifier is the vocabulary identifier or UnknownIdentifier.
	Identifier string

	// Symbol is the preferred display symbol.
	Symbol string

	// Type is the canonical entity type of the vocabulary.
	Type EntityType

	// Label is the evidence category for evidence vocabularies.
	Label string
}

// ReferenceData is the immutable vocabulary snapshot for one batch run.
// It is built once and shared read-only across workers.
type ReferenceData struct {
	terms             map[string]DictionaryEntry
	identifierSymbols map[string]string
	cancerCrossRefs   map[string][]string
	doSymbols         map[string]string
	digest            string
}

// LookupTerm resolves a normalised, lower-cased surface form.
func (r *ReferenceData) LookupTerm(key string) (DictionaryEntry, bool) {
	e, ok := r.terms[key]
	return e, ok
}

// Symbol returns the display symbol of an identifier.
func (r *ReferenceData) Symbol(identifier string) (string, bool) {
	s, ok := r.identifierSymbols[identifier]
	return s, ok
}

// IsCancerIdentifier reports whether identifier is in the Cancer-Identifier Set.
func (r *ReferenceData) IsCancerIdentifier(identifier string) bool {
	if identifier == "" || identifier == UnknownIdentifier {
		return false
	}
	_, ok := r.cancerCrossRefs[identifier]
	return ok
}

// CrossRefs returns the Disease Ontology references mapped from identifier.
func (r *ReferenceData) CrossRefs(identifier string) []CrossRef {
	ids := r.cancerCrossRefs[identifier]
	if len(ids) == 0 {
		return nil
	}
	refs := make([]CrossRef, 0, len(ids))
	for _, id := range ids {
		sym, ok := r.doSymbols[id]
		if !ok || sym == "" {
			sym = UnknownSymbol
		}
		refs = append(refs, CrossRef{Identifier: id, Symbol: sym})
	}
	return refs
}

// TermCount returns the number of dictionary surface forms.
func (r *ReferenceData) TermCount() int {
	return len(r.terms)
}

// CancerIdentifierCount returns the size of the Cancer-Identifier Set.
func (r *ReferenceData) CancerIdentifierCount() int {
	return len(r.cancerCrossRefs)
}

// Digest identifies the vocabulary snapshot the data was built from.
func (r *ReferenceData) Digest() string {
	return r.digest
}

// ReferenceDataBuilder accumulates vocabulary content. It is not safe for
// concurrent use; call Build once loading is complete.
type ReferenceDataBuilder struct {
	terms             map[string]DictionaryEntry
	identifierSymbols map[string]string
	cancerCrossRefs   map[string][]string
	doSymbols         map[string]string
	digest            string
}

// NewReferenceDataBuilder creates an empty builder.
func NewReferenceDataBuilder() *ReferenceDataBuilder {
	return &ReferenceDataBuilder{
		terms:             make(map[string]DictionaryEntry),
		identifierSymbols: make(map[string]string),
		cancerCrossRefs:   make(map[string][]string),
		doSymbols:         make(map[string]string),
	}
}

// AddTerm maps a normalised surface form to an entry. Later calls win.
func (b *ReferenceDataBuilder) AddTerm(key string, e DictionaryEntry) {
	if key == "" {
		return
	}
	b.terms[key] = e
}

// AddIdentifierSymbol records the display symbol of an identifier.
// The first symbol recorded for an identifier is kept.
func (b *ReferenceDataBuilder) AddIdentifierSymbol(identifier, symbol string) {
	if identifier == "" || identifier == UnknownIdentifier || symbol == "" {
		return
	}
	if _, ok := b.identifierSymbols[identifier]; !ok {
		b.identifierSymbols[identifier] = symbol
	}
}

// AddCancerIdentifier adds identifier to the Cancer-Identifier Set together
// with its Disease Ontology references. Aliases share the reference list.
func (b *ReferenceDataBuilder) AddCancerIdentifier(identifier string, doIDs []string, aliases ...string) {
	if identifier == "" {
		return
	}
	refs := append(b.cancerCrossRefs[identifier], doIDs...)
	b.cancerCrossRefs[identifier] = refs
	for _, alias := range aliases {
		if alias == "" {
			continue
		}
		if _, exists := b.cancerCrossRefs[alias]; exists {
			continue
		}
		b.cancerCrossRefs[alias] = refs
	}
}

// AddDOSymbol records the display name of a Disease Ontology identifier.
func (b *ReferenceDataBuilder) AddDOSymbol(identifier, symbol string) {
	if identifier == "" || symbol == "" {
		return
	}
	b.doSymbols[identifier] = symbol
}

// SetDigest records the snapshot digest.
func (b *ReferenceDataBuilder) SetDigest(digest string) {
	b.digest = digest
}

// Build returns the immutable snapshot. The builder must not be used afterwards.
func (b *ReferenceDataBuilder) Build() *ReferenceData {
	r := &ReferenceData{
		terms:             b.terms,
		identifierSymbols: b.identifierSymbols,
		cancerCrossRefs:   b.cancerCrossRefs,
		doSymbols:         b.doSymbols,
		digest:            b.digest,
	}
	*b = ReferenceDataBuilder{}
	return r
}
