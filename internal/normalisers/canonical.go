package normalisers

import (
	"strings"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
	"github.com/custodia-labs/pubminer/internal/logger"
)

// rawTypes maps recognizer type labels to canonical types.
// Labels not listed are dropped.
var rawTypes = map[string]domain.EntityType{
	"Gene":            domain.EntityGene,
	"Disease":         domain.EntityDisease,
	"Chemical":        domain.EntityChemical,
	"SNP":             domain.EntityMutation,
	"DNAMutation":     domain.EntityMutation,
	"ProteinMutation": domain.EntityMutation,
}

// cancerWords mark a disease mention as cancer-relevant regardless of its
// identifier.
var cancerWords = []string{
	"cancer",
	"tumor",
	"tumour",
	"neoplasm",
	"carcinoma",
	"malignancy",
	"malignancies",
	"metastases",
}

// identifierFields are tried in order after "Identifier" and "identifier".
var identifierFields = []struct {
	key    string
	prefix string
}{
	{"MESH", "MESH:"},
	{"OMIM", "OMIM:"},
	{"CHEBI", "CHEBI:"},
	{"NCBI Gene", ""},
}

// EntityTypeOf maps a raw type label to the canonical taxonomy.
func EntityTypeOf(label string) (domain.EntityType, bool) {
	t, ok := rawTypes[label]
	return t, ok
}

// ResolveIdentifier picks the identifier of a raw annotation from its infons.
func ResolveIdentifier(infons map[string]string) string {
	for _, key := range []string{"Identifier", "identifier"} {
		if v, ok := infons[key]; ok {
			return orUnknown(v)
		}
	}
	for _, f := range identifierFields {
		if v, ok := infons[f.key]; ok {
			if v = strings.TrimSpace(v); v == "" {
				return domain.UnknownIdentifier
			}
			return f.prefix + v
		}
	}
	return domain.UnknownIdentifier
}

func orUnknown(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return domain.UnknownIdentifier
	}
	return v
}

// IsCancerMention reports whether a disease annotation passes the cancer
// filter: a Cancer-Identifier Set member, or a mention containing a
// cancer-indicative word.
func IsCancerMention(ref *domain.ReferenceData, identifier, text string) bool {
	if ref.IsCancerIdentifier(identifier) {
		return true
	}
	lower := strings.ToLower(text)
	for _, w := range cancerWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// SymbolFor joins the display symbols of every identifier component.
func SymbolFor(ref *domain.ReferenceData, identifier string) string {
	parts := domain.Annotation{Identifier: identifier}.IdentifierParts()
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		if s, ok := ref.Symbol(p); ok {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		return domain.UnknownSymbol
	}
	return strings.Join(symbols, ";")
}

// Convert maps one raw annotation. The second value is false when the
// annotation is dropped.
func Convert(raw domain.RawAnnotation, req *driven.NormaliseRequest) (domain.Annotation, bool) {
	typ, ok := EntityTypeOf(raw.Infons["type"])
	if !ok {
		return domain.Annotation{}, false
	}

	span := raw.Span()
	text, ok := req.Text.TextAt(span)
	if !ok || text != raw.Text {
		logger.Debug("normalise %s: drop %q at %s, text mismatch", req.Output.DocumentID, raw.Text, span)
		return domain.Annotation{}, false
	}

	identifier := ResolveIdentifier(raw.Infons)
	ann := domain.Annotation{
		Span:       span,
		Text:       raw.Text,
		Type:       typ,
		Identifier: identifier,
		Origin:     string(req.Output.Kind),
	}

	if typ == domain.EntityDisease {
		if !IsCancerMention(req.Reference, identifier, raw.Text) {
			return domain.Annotation{}, false
		}
		ann.CrossRefs = req.Reference.CrossRefs(identifier)
	}

	ann.Symbol = SymbolFor(req.Reference, identifier)
	return ann, true
}

// ConvertAll maps every raw annotation of the request's output.
func ConvertAll(req *driven.NormaliseRequest) []domain.Annotation {
	anns := make([]domain.Annotation, 0, req.Output.Len())
	for _, raw := range req.Output.Annotations {
		if ann, ok := Convert(raw, req); ok {
			anns = append(anns, ann)
		}
	}
	return anns
}
