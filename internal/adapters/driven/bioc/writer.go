package bioc

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
)

// Ensure writers implement the interface.
var (
	_ driven.DocumentWriter = (*XMLFileWriter)(nil)
	_ driven.DocumentWriter = (*JSONFileWriter)(nil)
)

const (
	collectionSource = "PubMiner"
	collectionKey    = "BioC.key"
	doctype          = `<!DOCTYPE collection SYSTEM "BioC.dtd">`
)

// EncodeXML writes doc as a single-document BioC XML collection.
func EncodeXML(w io.Writer, doc *domain.Document) error {
	if _, err := io.WriteString(w, xml.Header+doctype+"\n"); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	coll := xmlCollection{
		Source:    collectionSource,
		Key:       collectionKey,
		Documents: []xmlDocument{toXMLDocument(doc)},
	}
	if err := enc.Encode(coll); err != nil {
		return fmt.Errorf("encode bioc xml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// EncodeJSON writes doc as a BioC JSON document.
func EncodeJSON(w io.Writer, doc *domain.Document) error {
	if err := json.NewEncoder(w).Encode(toJSONDocument(doc)); err != nil {
		return fmt.Errorf("encode bioc json: %w", err)
	}
	return nil
}

// MarshalJSON returns the BioC JSON form of doc.
func MarshalJSON(doc *domain.Document) ([]byte, error) {
	return json.Marshal(toJSONDocument(doc))
}

// UnmarshalJSON rebuilds a merged document from its BioC JSON form.
// Sentence annotations become references into the passage arena.
func UnmarshalJSON(data []byte) (*domain.Document, error) {
	var in jsonDocument
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return fromJSONDocument(in)
}

// XMLFileWriter publishes merged documents as BioC XML under
// <root>/<resource>/<batch>/<name>.
type XMLFileWriter struct {
	root string
}

// NewXMLFileWriter creates a writer rooted at root.
func NewXMLFileWriter(root string) *XMLFileWriter {
	return &XMLFileWriter{root: root}
}

// Name identifies the writer in logs.
func (w *XMLFileWriter) Name() string {
	return "bioc-xml"
}

// Write publishes the record's document.
func (w *XMLFileWriter) Write(_ context.Context, rec *domain.DocumentRecord) error {
	if rec == nil || rec.Document == nil {
		return domain.ErrInvalidInput
	}
	name := rec.Name
	if name == "" {
		name = rec.DocumentID + ".xml"
	}
	path := filepath.Join(w.root, rec.Resource, rec.Batch, name)
	return writeFile(path, func(f io.Writer) error {
		return EncodeXML(f, rec.Document)
	})
}

// JSONFileWriter publishes merged documents as BioC JSON in the sharded
// layout the upload area uses.
type JSONFileWriter struct {
	root string
}

// NewJSONFileWriter creates a writer rooted at root.
func NewJSONFileWriter(root string) *JSONFileWriter {
	return &JSONFileWriter{root: root}
}

// Name identifies the writer in logs.
func (w *JSONFileWriter) Name() string {
	return "bioc-json"
}

// Write publishes the record's document.
func (w *JSONFileWriter) Write(_ context.Context, rec *domain.DocumentRecord) error {
	if rec == nil || rec.Document == nil {
		return domain.ErrInvalidInput
	}
	rel, err := JSONPath(rec.Resource, rec.DocumentID)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(w.root, rel), func(f io.Writer) error {
		return EncodeJSON(f, rec.Document)
	})
}

// JSONPath returns the sharded location of a document's JSON file:
// <resource>/<last digit of shard>/<shard>/<id>.json where shard is the
// numeric ID divided by 10000, rounded up. PMC IDs carry the PMC prefix.
func JSONPath(resource, documentID string) (string, error) {
	digits := strings.TrimPrefix(strings.ToUpper(documentID), "PMC")
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: document id %q is not numeric", domain.ErrInvalidInput, documentID)
	}
	shard := strconv.FormatUint(uint64(math.Ceil(float64(n)/10000)), 10)
	name := digits
	if strings.EqualFold(resource, "PMC") {
		name = "PMC" + digits
	}
	return filepath.Join(resource, shard[len(shard)-1:], shard, name+".json"), nil
}

// writeFile writes through a temporary file renamed into place, so readers
// never observe a partial document.
func writeFile(path string, encode func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // already renamed on success

	if err := encode(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
